package services

import (
	"testing"

	"fleet-backend/internal/config"
)

func defaultBusinessConfig() *config.Business {
	return &config.Business{
		BaseRatePerHour:                 50,
		EfficiencyBonusThresholdMinutes: 60,
		EfficiencyBonusAmount:           20,
		TargetCycleTimeMinutes:          55,
		EfficiencyThresholdMinutes:      60,
		FatigueThresholdHours:           8,
		DelayedCycleThresholdHours:      2,
		ExtendedRestThresholdHours:      4,
		DefaultLimit:                    50,
		MaxLimit:                        100,
	}
}

func TestComputeEarnings(t *testing.T) {
	calc := NewEarningsCalculator(defaultBusinessConfig())

	cases := []struct {
		durationMinutes int
		want            float64
	}{
		{45, 57.50}, // 50*0.75 + бонус 20
		{59, 69.17}, // 50*59/60 + 20, округление до двух знаков
		{60, 50.00}, // ровно порог: бонуса нет
		{90, 75.00},
		{30, 45.00},
		{0, 20.00},
	}
	for _, tc := range cases {
		if got := calc.Compute(tc.durationMinutes); got != tc.want {
			t.Fatalf("Compute(%d) = %v, want %v", tc.durationMinutes, got, tc.want)
		}
	}
}

func TestComputeEarningsConfigurable(t *testing.T) {
	cfg := defaultBusinessConfig()
	cfg.BaseRatePerHour = 100
	cfg.EfficiencyBonusThresholdMinutes = 30
	cfg.EfficiencyBonusAmount = 5
	calc := NewEarningsCalculator(cfg)

	if got := calc.Compute(15); got != 30.00 {
		t.Fatalf("Compute(15) = %v, want 30.00", got)
	}
	if got := calc.Compute(30); got != 50.00 {
		t.Fatalf("Compute(30) = %v, want 50.00", got)
	}
}
