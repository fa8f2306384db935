package config

import (
	"testing"
)

func TestLoadBusinessDefaults(t *testing.T) {
	cfg := LoadBusiness()
	if cfg.BaseRatePerHour != 50 {
		t.Fatalf("expected default base rate 50, got %v", cfg.BaseRatePerHour)
	}
	if cfg.EfficiencyBonusAmount != 20 {
		t.Fatalf("expected default bonus 20, got %v", cfg.EfficiencyBonusAmount)
	}
	if cfg.FatigueThresholdHours != 8 {
		t.Fatalf("expected default fatigue threshold 8, got %d", cfg.FatigueThresholdHours)
	}
}

func TestLoadBusinessZeroBonus(t *testing.T) {
	// Явный ноль не подменяется значением по умолчанию
	t.Setenv("EFFICIENCY_BONUS_AMOUNT", "0")
	cfg := LoadBusiness()
	if cfg.EfficiencyBonusAmount != 0 {
		t.Fatalf("expected bonus 0, got %v", cfg.EfficiencyBonusAmount)
	}
}

func TestLoadBusinessInvalidValue(t *testing.T) {
	t.Setenv("BASE_RATE_PER_HOUR", "not-a-number")
	t.Setenv("FATIGUE_THRESHOLD_HOURS", "-1")
	cfg := LoadBusiness()
	if cfg.BaseRatePerHour != 50 {
		t.Fatalf("expected fallback base rate 50, got %v", cfg.BaseRatePerHour)
	}
	if cfg.FatigueThresholdHours != 8 {
		t.Fatalf("expected fallback fatigue threshold 8, got %d", cfg.FatigueThresholdHours)
	}
}
