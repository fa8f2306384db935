package config

import (
	"os"
	"strconv"
)

// Business содержит бизнес-константы системы. Все значения можно
// переопределить через переменные окружения без изменения кода.
type Business struct {
	// Расчет заработка
	BaseRatePerHour                 float64
	EfficiencyBonusThresholdMinutes int
	EfficiencyBonusAmount           float64

	// Целевые показатели
	TargetCycleTimeMinutes     int
	EfficiencyThresholdMinutes int

	// Пороги для оповещений
	FatigueThresholdHours      int
	DelayedCycleThresholdHours int
	ExtendedRestThresholdHours int

	// Пагинация
	DefaultLimit int
	MaxLimit     int
}

// LoadBusiness читает конфигурацию из переменных окружения,
// используя значения по умолчанию для отсутствующих переменных.
func LoadBusiness() *Business {
	return &Business{
		BaseRatePerHour:                 floatEnv("BASE_RATE_PER_HOUR", 50),
		EfficiencyBonusThresholdMinutes: intEnv("EFFICIENCY_BONUS_THRESHOLD_MINUTES", 60),
		EfficiencyBonusAmount:           floatEnv("EFFICIENCY_BONUS_AMOUNT", 20),
		TargetCycleTimeMinutes:          intEnv("TARGET_CYCLE_TIME_MINUTES", 55),
		EfficiencyThresholdMinutes:      intEnv("EFFICIENCY_THRESHOLD_MINUTES", 60),
		FatigueThresholdHours:           intEnv("FATIGUE_THRESHOLD_HOURS", 8),
		DelayedCycleThresholdHours:      intEnv("DELAYED_CYCLE_THRESHOLD_HOURS", 2),
		ExtendedRestThresholdHours:      intEnv("EXTENDED_REST_THRESHOLD_HOURS", 4),
		DefaultLimit:                    intEnv("DEFAULT_LIMIT", 50),
		MaxLimit:                        intEnv("MAX_LIMIT", 100),
	}
}

// Явный ноль — допустимое значение (например, нулевой бонус);
// значение по умолчанию используется только для незаданных или
// нечитаемых переменных.
func floatEnv(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	if val, err := strconv.ParseFloat(raw, 64); err == nil && val >= 0 {
		return val
	}
	return def
}

func intEnv(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	if val, err := strconv.Atoi(raw); err == nil && val >= 0 {
		return val
	}
	return def
}
