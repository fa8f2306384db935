package services

import (
	"math"

	"fleet-backend/internal/config"
)

// EarningsCalculator рассчитывает оплату за цикл: базовая ставка за час
// плюс бонус за быстрое выполнение.
type EarningsCalculator struct {
	cfg *config.Business
}

func NewEarningsCalculator(cfg *config.Business) *EarningsCalculator {
	return &EarningsCalculator{cfg: cfg}
}

// Compute возвращает заработок за цикл указанной длительности,
// округленный до двух знаков.
func (e *EarningsCalculator) Compute(durationMinutes int) float64 {
	hours := float64(durationMinutes) / 60
	earnings := e.cfg.BaseRatePerHour * hours
	if durationMinutes < e.cfg.EfficiencyBonusThresholdMinutes {
		earnings += e.cfg.EfficiencyBonusAmount
	}
	return round2(earnings)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
