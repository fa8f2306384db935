package services

import (
	"fmt"
	"testing"
	"time"

	"fleet-backend/internal/models"
	"fleet-backend/internal/repository"
)

func newTestStats(t *testing.T) (*StatsService, *repository.MemStore) {
	t.Helper()
	store := repository.NewMemStore()
	return NewStatsService(store, defaultBusinessConfig()), store
}

func seedCompletedCycle(t *testing.T, store *repository.MemStore, id string, start time.Time, durationMinutes int, earnings float64) {
	t.Helper()
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	if err := store.SaveCycle(&models.Cycle{
		ID:              id,
		TruckID:         "TRK-001",
		OperatorID:      1,
		StartTime:       start,
		EndTime:         &end,
		DurationMinutes: &durationMinutes,
		Earnings:        earnings,
		Status:          models.CycleStatusCompleted,
	}); err != nil {
		t.Fatalf("seedCompletedCycle: %v", err)
	}
}

func TestEfficiencyScoreBoundary(t *testing.T) {
	svc, store := newTestStats(t)
	start := time.Now().Add(-24 * time.Hour)

	// 6 циклов по 59 минут и 4 по 60: быстрыми считаются только строго
	// короче порога
	for i := 0; i < 6; i++ {
		seedCompletedCycle(t, store, fmt.Sprintf("CYC-FAST-%d", i), start, 59, 69.17)
	}
	for i := 0; i < 4; i++ {
		seedCompletedCycle(t, store, fmt.Sprintf("CYC-SLOW-%d", i), start, 60, 50)
	}

	stats, err := svc.Dashboard()
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.Performance.EfficiencyScore != 60 {
		t.Fatalf("expected efficiency score 60, got %d", stats.Performance.EfficiencyScore)
	}
}

func TestEfficiencyScoreEmpty(t *testing.T) {
	svc, _ := newTestStats(t)
	stats, err := svc.Dashboard()
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.Performance.EfficiencyScore != 0 {
		t.Fatalf("expected efficiency score 0 without cycles, got %d", stats.Performance.EfficiencyScore)
	}
}

func TestDashboardSummaryAndToday(t *testing.T) {
	svc, store := newTestStats(t)
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	store.SaveTruck(&models.Truck{ID: "TRK-001", Plate: "ABC-001", Status: models.TruckStatusActive})
	store.SaveTruck(&models.Truck{ID: "TRK-002", Plate: "ABC-002", Status: models.TruckStatusMaintenance})
	store.SaveOperator(&models.Operator{Code: "OP-001", Name: "Хуан", Status: models.OperatorStatusWorking})
	store.SaveOperator(&models.Operator{Code: "OP-002", Name: "Мария", Status: models.OperatorStatusAvailable})

	// Два цикла сегодня, один вчера
	seedCompletedCycle(t, store, "CYC-T1", now.Add(-2*time.Hour), 40, 53.33)
	seedCompletedCycle(t, store, "CYC-T2", now.Add(-1*time.Hour), 50, 61.67)
	seedCompletedCycle(t, store, "CYC-OLD", now.Add(-26*time.Hour), 90, 75)

	stats, err := svc.Dashboard()
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.Summary.Trucks.Total != 2 || stats.Summary.Trucks.Active != 1 || stats.Summary.Trucks.Maintenance != 1 {
		t.Fatalf("unexpected truck summary: %+v", stats.Summary.Trucks)
	}
	if stats.Summary.Operators.Working != 1 || stats.Summary.Operators.Available != 1 {
		t.Fatalf("unexpected operator summary: %+v", stats.Summary.Operators)
	}
	if stats.Summary.Cycles.Completed != 3 {
		t.Fatalf("unexpected cycle summary: %+v", stats.Summary.Cycles)
	}
	if stats.Today.CyclesCount != 2 {
		t.Fatalf("expected 2 cycles today, got %d", stats.Today.CyclesCount)
	}
	if stats.Today.AvgDurationMinutes != 45 {
		t.Fatalf("expected avg duration 45, got %d", stats.Today.AvgDurationMinutes)
	}
	if stats.Today.TotalEarnings != 115.00 {
		t.Fatalf("expected today earnings 115.00, got %v", stats.Today.TotalEarnings)
	}
	// Средняя длительность по всем завершенным: (40+50+90)/3 = 60
	if stats.Performance.AvgCycleTimeMinutes != 60 {
		t.Fatalf("expected avg cycle time 60, got %d", stats.Performance.AvgCycleTimeMinutes)
	}
}

func seedWorkingOperator(t *testing.T, store *repository.MemStore, code string, shiftStart time.Time) {
	t.Helper()
	if err := store.SaveOperator(&models.Operator{
		Code:       code,
		Name:       "Оператор " + code,
		Status:     models.OperatorStatusWorking,
		ShiftStart: &shiftStart,
	}); err != nil {
		t.Fatalf("seedWorkingOperator: %v", err)
	}
}

func TestFatigueAlertBoundary(t *testing.T) {
	svc, store := newTestStats(t)
	now := time.Date(2026, 8, 28, 16, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	// 7ч59м59с — порог не превышен, 8ч00м01с — превышен
	seedWorkingOperator(t, store, "OP-001", now.Add(-(8*time.Hour - time.Second)))
	seedWorkingOperator(t, store, "OP-002", now.Add(-(8*time.Hour + time.Second)))
	// Ровно 8 часов: строгое сравнение, оповещения нет
	seedWorkingOperator(t, store, "OP-003", now.Add(-8*time.Hour))

	alerts, err := svc.Alerts()
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected exactly one fatigue alert, got %d: %+v", len(alerts), alerts)
	}
	if alerts[0].Type != "fatigue_risk" || alerts[0].EntityID != "OP-002" {
		t.Fatalf("unexpected alert: %+v", alerts[0])
	}
	if alerts[0].Severity != SeverityHigh {
		t.Fatalf("expected high severity, got %s", alerts[0].Severity)
	}
}

func TestAlertsSortedBySeverity(t *testing.T) {
	svc, store := newTestStats(t)
	now := time.Date(2026, 8, 28, 16, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	// low: грузовик на техобслуживании
	store.SaveTruck(&models.Truck{ID: "TRK-009", Plate: "XYZ-009", Status: models.TruckStatusMaintenance})
	// high: усталость оператора
	seedWorkingOperator(t, store, "OP-001", now.Add(-9*time.Hour))
	// medium: затянувшийся цикл
	store.SaveCycle(&models.Cycle{
		ID:         "CYC-LONG",
		TruckID:    "TRK-009",
		OperatorID: 1,
		StartTime:  now.Add(-3 * time.Hour),
		Status:     models.CycleStatusInProgress,
	})
	// low: затянувшийся отдых
	restStart := now.Add(-5 * time.Hour)
	store.SaveOperator(&models.Operator{
		Code:      "OP-002",
		Name:      "Ана",
		Status:    models.OperatorStatusResting,
		UpdatedAt: restStart,
	})

	alerts, err := svc.Alerts()
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if len(alerts) != 4 {
		t.Fatalf("expected 4 alerts, got %d", len(alerts))
	}
	wantTypes := []string{"fatigue_risk", "delayed_cycle", "maintenance", "extended_rest"}
	for i, want := range wantTypes {
		if alerts[i].Type != want {
			t.Fatalf("alert %d: expected %s, got %s", i, want, alerts[i].Type)
		}
	}
}

func TestOperatorsReport(t *testing.T) {
	svc, store := newTestStats(t)
	store.SaveOperator(&models.Operator{
		Code: "OP-001", Name: "Хуан", Status: models.OperatorStatusAvailable,
		TotalCycles: 2, TotalHours: 1.5, TotalEarnings: 120,
	})
	start := time.Now().Add(-3 * time.Hour)
	seedCompletedCycle(t, store, "CYC-1", start, 45, 57.50)
	seedCompletedCycle(t, store, "CYC-2", start.Add(time.Hour), 55, 65.83)

	report, err := svc.OperatorsReport()
	if err != nil {
		t.Fatalf("OperatorsReport: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("expected 1 operator, got %d", len(report))
	}
	m := report[0]
	if m.Stats.AvgCycleTime != 50 {
		t.Fatalf("expected avg 50, got %d", m.Stats.AvgCycleTime)
	}
	if m.Stats.BestCycleTime != 45 {
		t.Fatalf("expected best 45, got %d", m.Stats.BestCycleTime)
	}
	if m.Stats.AvgEarningsPerCycle != 60.00 {
		t.Fatalf("expected avg earnings 60.00, got %v", m.Stats.AvgEarningsPerCycle)
	}
}
