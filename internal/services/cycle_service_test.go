package services

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"fleet-backend/internal/models"
	"fleet-backend/internal/repository"
)

func newTestService(t *testing.T) (*CycleService, *repository.MemStore) {
	t.Helper()
	store := repository.NewMemStore()
	svc := NewCycleService(store, NewEarningsCalculator(defaultBusinessConfig()))
	return svc, store
}

func seedTruck(t *testing.T, store *repository.MemStore, id string, status models.TruckStatus) {
	t.Helper()
	if err := store.SaveTruck(&models.Truck{
		ID:       id,
		Plate:    "ABC-" + id[len(id)-3:],
		Status:   status,
		Location: "Патио A",
	}); err != nil {
		t.Fatalf("seedTruck: %v", err)
	}
}

func seedOperator(t *testing.T, store *repository.MemStore, code string, status models.OperatorStatus) uint {
	t.Helper()
	operator := &models.Operator{
		Code:   code,
		Name:   "Оператор " + code,
		Status: status,
	}
	if err := store.SaveOperator(operator); err != nil {
		t.Fatalf("seedOperator: %v", err)
	}
	return operator.ID
}

func TestStartLockstep(t *testing.T) {
	svc, store := newTestService(t)
	seedTruck(t, store, "TRK-001", models.TruckStatusResting)
	opID := seedOperator(t, store, "OP-001", models.OperatorStatusAvailable)

	cycle, err := svc.Start("TRK-001", opID, "Зона погрузки")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if cycle.Status != models.CycleStatusInProgress {
		t.Fatalf("expected cycle in_progress, got %s", cycle.Status)
	}
	if !strings.HasPrefix(cycle.ID, "CYC-") {
		t.Fatalf("unexpected cycle id format: %s", cycle.ID)
	}
	if cycle.StartLocation != "Зона погрузки" {
		t.Fatalf("expected start location from request, got %q", cycle.StartLocation)
	}

	truck, _ := store.GetTruck("TRK-001")
	if truck.Status != models.TruckStatusActive {
		t.Fatalf("expected truck active, got %s", truck.Status)
	}
	if truck.CurrentOperatorID == nil || *truck.CurrentOperatorID != opID {
		t.Fatalf("expected truck bound to operator %d", opID)
	}
	if truck.CycleStartTime == nil {
		t.Fatalf("expected cycle_start_time set")
	}

	operator, _ := store.GetOperator(opID)
	if operator.Status != models.OperatorStatusWorking {
		t.Fatalf("expected operator working, got %s", operator.Status)
	}
	if operator.CurrentTruckID == nil || *operator.CurrentTruckID != "TRK-001" {
		t.Fatalf("expected operator bound to TRK-001")
	}
	if operator.ShiftStart == nil {
		t.Fatalf("expected shift_start set")
	}
}

func TestStartDefaultsLocationToTruck(t *testing.T) {
	svc, store := newTestService(t)
	seedTruck(t, store, "TRK-001", models.TruckStatusResting)
	opID := seedOperator(t, store, "OP-001", models.OperatorStatusAvailable)

	cycle, err := svc.Start("TRK-001", opID, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if cycle.StartLocation != "Патио A" {
		t.Fatalf("expected truck location as default, got %q", cycle.StartLocation)
	}
}

func TestStartPreconditions(t *testing.T) {
	svc, store := newTestService(t)
	seedTruck(t, store, "TRK-001", models.TruckStatusResting)
	seedTruck(t, store, "TRK-002", models.TruckStatusMaintenance)
	opID := seedOperator(t, store, "OP-001", models.OperatorStatusAvailable)
	restingID := seedOperator(t, store, "OP-002", models.OperatorStatusResting)

	if _, err := svc.Start("TRK-999", opID, ""); !errors.Is(err, ErrTruckNotFound) {
		t.Fatalf("expected ErrTruckNotFound, got %v", err)
	}
	if _, err := svc.Start("TRK-002", opID, ""); !errors.Is(err, ErrTruckUnavailable) {
		t.Fatalf("expected ErrTruckUnavailable, got %v", err)
	}
	if _, err := svc.Start("TRK-001", 999, ""); !errors.Is(err, ErrOperatorNotFound) {
		t.Fatalf("expected ErrOperatorNotFound, got %v", err)
	}
	if _, err := svc.Start("TRK-001", restingID, ""); !errors.Is(err, ErrOperatorUnavailable) {
		t.Fatalf("expected ErrOperatorUnavailable, got %v", err)
	}

	// После неудачных попыток состояние не изменилось
	truck, _ := store.GetTruck("TRK-001")
	if truck.Status != models.TruckStatusResting {
		t.Fatalf("expected truck still resting, got %s", truck.Status)
	}
}

func TestStartWithOfflineOperator(t *testing.T) {
	svc, store := newTestService(t)
	seedTruck(t, store, "TRK-001", models.TruckStatusResting)
	opID := seedOperator(t, store, "OP-005", models.OperatorStatusOffline)

	// Запуск блокирует только отдыхающего оператора; оператор вне смены
	// может сразу начать цикл
	cycle, err := svc.Start("TRK-001", opID, "")
	if err != nil {
		t.Fatalf("Start with offline operator: %v", err)
	}
	if cycle.Status != models.CycleStatusInProgress {
		t.Fatalf("expected cycle in_progress, got %s", cycle.Status)
	}

	operator, _ := store.GetOperator(opID)
	if operator.Status != models.OperatorStatusWorking {
		t.Fatalf("expected operator working, got %s", operator.Status)
	}
	if operator.ShiftStart == nil {
		t.Fatalf("expected shift_start set")
	}
}

func TestStartConflictActiveCycle(t *testing.T) {
	svc, store := newTestService(t)
	seedTruck(t, store, "TRK-001", models.TruckStatusResting)
	seedTruck(t, store, "TRK-002", models.TruckStatusResting)
	opA := seedOperator(t, store, "OP-001", models.OperatorStatusAvailable)
	opB := seedOperator(t, store, "OP-002", models.OperatorStatusAvailable)

	if _, err := svc.Start("TRK-001", opA, ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Тот же грузовик с другим оператором
	if _, err := svc.Start("TRK-001", opB, ""); !errors.Is(err, ErrConflictActiveCycle) {
		t.Fatalf("expected ErrConflictActiveCycle for busy truck, got %v", err)
	}
	// Тот же оператор на другом грузовике
	if _, err := svc.Start("TRK-002", opA, ""); !errors.Is(err, ErrConflictActiveCycle) {
		t.Fatalf("expected ErrConflictActiveCycle for busy operator, got %v", err)
	}
}

func TestConcurrentStartMutualExclusion(t *testing.T) {
	svc, store := newTestService(t)
	seedTruck(t, store, "TRK-001", models.TruckStatusResting)
	opA := seedOperator(t, store, "OP-001", models.OperatorStatusAvailable)
	opB := seedOperator(t, store, "OP-002", models.OperatorStatusAvailable)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, opID := range []uint{opA, opB} {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := svc.Start("TRK-001", id, "")
			results <- err
		}(opID)
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrConflictActiveCycle):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one success and one conflict, got %d/%d", successes, conflicts)
	}

	cycles, _ := store.ListCycles(repository.CycleFilter{Status: models.CycleStatusInProgress})
	if len(cycles) != 1 {
		t.Fatalf("expected exactly one in_progress cycle, got %d", len(cycles))
	}
}

func TestCompleteAccounting(t *testing.T) {
	svc, store := newTestService(t)
	seedTruck(t, store, "TRK-001", models.TruckStatusResting)
	opID := seedOperator(t, store, "OP-001", models.OperatorStatusAvailable)

	t0 := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return t0 }

	cycle, err := svc.Start("TRK-001", opID, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	svc.now = func() time.Time { return t0.Add(45 * time.Minute) }
	completed, err := svc.Complete(cycle.ID, "Зона разгрузки")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if completed.Status != models.CycleStatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}
	if completed.DurationMinutes == nil || *completed.DurationMinutes != 45 {
		t.Fatalf("expected duration 45, got %v", completed.DurationMinutes)
	}
	if completed.Earnings != 57.50 {
		t.Fatalf("expected earnings 57.50, got %v", completed.Earnings)
	}
	if completed.EndTime == nil || !completed.EndTime.Equal(t0.Add(45*time.Minute)) {
		t.Fatalf("unexpected end_time: %v", completed.EndTime)
	}
	if completed.EndLocation != "Зона разгрузки" {
		t.Fatalf("unexpected end_location: %q", completed.EndLocation)
	}

	truck, _ := store.GetTruck("TRK-001")
	if truck.Status != models.TruckStatusResting {
		t.Fatalf("expected truck resting, got %s", truck.Status)
	}
	if truck.CurrentOperatorID != nil || truck.CycleStartTime != nil {
		t.Fatalf("expected truck released")
	}
	if truck.TotalCycles != 1 {
		t.Fatalf("expected truck total_cycles 1, got %d", truck.TotalCycles)
	}

	operator, _ := store.GetOperator(opID)
	if operator.Status != models.OperatorStatusAvailable {
		t.Fatalf("expected operator available, got %s", operator.Status)
	}
	if operator.CurrentTruckID != nil {
		t.Fatalf("expected operator released")
	}
	if operator.TotalCycles != 1 {
		t.Fatalf("expected operator total_cycles 1, got %d", operator.TotalCycles)
	}
	if operator.TotalHours != 0.75 {
		t.Fatalf("expected total_hours 0.75, got %v", operator.TotalHours)
	}
	if operator.TotalEarnings != 57.50 {
		t.Fatalf("expected total_earnings 57.50, got %v", operator.TotalEarnings)
	}
	// Смена не закрывается завершением цикла
	if operator.ShiftStart == nil || !operator.ShiftStart.Equal(t0) {
		t.Fatalf("expected shift_start retained, got %v", operator.ShiftStart)
	}
}

func TestDoubleCompleteInvalidState(t *testing.T) {
	svc, store := newTestService(t)
	seedTruck(t, store, "TRK-001", models.TruckStatusResting)
	opID := seedOperator(t, store, "OP-001", models.OperatorStatusAvailable)

	cycle, err := svc.Start("TRK-001", opID, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Complete(cycle.ID, ""); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := svc.Complete(cycle.ID, ""); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second complete, got %v", err)
	}

	// Счетчики изменились ровно один раз
	truck, _ := store.GetTruck("TRK-001")
	if truck.TotalCycles != 1 {
		t.Fatalf("expected total_cycles 1 after double complete, got %d", truck.TotalCycles)
	}
}

func TestCompleteNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Complete("CYC-MISSING", ""); !errors.Is(err, ErrCycleNotFound) {
		t.Fatalf("expected ErrCycleNotFound, got %v", err)
	}
}

func TestShiftStartStickyAcrossCycles(t *testing.T) {
	svc, store := newTestService(t)
	seedTruck(t, store, "TRK-001", models.TruckStatusResting)
	opID := seedOperator(t, store, "OP-001", models.OperatorStatusAvailable)

	t0 := time.Date(2026, 8, 28, 6, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return t0 }
	first, err := svc.Start("TRK-001", opID, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	svc.now = func() time.Time { return t0.Add(30 * time.Minute) }
	if _, err := svc.Complete(first.ID, ""); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	// Второй цикл той же смены
	svc.now = func() time.Time { return t0.Add(time.Hour) }
	if _, err := svc.Start("TRK-001", opID, ""); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	operator, _ := store.GetOperator(opID)
	if operator.ShiftStart == nil || !operator.ShiftStart.Equal(t0) {
		t.Fatalf("expected shift_start %v retained, got %v", t0, operator.ShiftStart)
	}
}

func TestUpdateLocation(t *testing.T) {
	svc, store := newTestService(t)
	seedTruck(t, store, "TRK-001", models.TruckStatusResting)
	opID := seedOperator(t, store, "OP-001", models.OperatorStatusAvailable)

	cycle, err := svc.Start("TRK-001", opID, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := svc.UpdateLocation(cycle.ID, "Патио B"); err != nil {
		t.Fatalf("UpdateLocation: %v", err)
	}
	truck, _ := store.GetTruck("TRK-001")
	if truck.Location != "Патио B" {
		t.Fatalf("expected location updated, got %q", truck.Location)
	}

	if _, err := svc.Complete(cycle.ID, ""); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := svc.UpdateLocation(cycle.ID, "Патио C"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for finished cycle, got %v", err)
	}
	if err := svc.UpdateLocation("CYC-MISSING", "Патио C"); !errors.Is(err, ErrCycleNotFound) {
		t.Fatalf("expected ErrCycleNotFound, got %v", err)
	}
}

func TestCancelReleasesResources(t *testing.T) {
	svc, store := newTestService(t)
	seedTruck(t, store, "TRK-001", models.TruckStatusResting)
	opID := seedOperator(t, store, "OP-001", models.OperatorStatusAvailable)

	cycle, err := svc.Start("TRK-001", opID, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancelled, err := svc.Cancel(cycle.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != models.CycleStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if cancelled.DurationMinutes != nil || cancelled.Earnings != 0 {
		t.Fatalf("expected no duration/earnings on cancel")
	}

	truck, _ := store.GetTruck("TRK-001")
	operator, _ := store.GetOperator(opID)
	if truck.Status != models.TruckStatusResting || operator.Status != models.OperatorStatusAvailable {
		t.Fatalf("expected resources released, got truck=%s operator=%s", truck.Status, operator.Status)
	}
	if truck.TotalCycles != 0 || operator.TotalCycles != 0 {
		t.Fatalf("expected counters unchanged on cancel")
	}

	// Отмена освободила ресурсы: новый цикл можно начать
	if _, err := svc.Start("TRK-001", opID, ""); err != nil {
		t.Fatalf("Start after cancel: %v", err)
	}
}

func TestMaintenanceAndRestAdministration(t *testing.T) {
	svc, store := newTestService(t)
	seedTruck(t, store, "TRK-001", models.TruckStatusResting)
	opID := seedOperator(t, store, "OP-001", models.OperatorStatusAvailable)

	truck, err := svc.SetTruckMaintenance("TRK-001")
	if err != nil {
		t.Fatalf("SetTruckMaintenance: %v", err)
	}
	if truck.Status != models.TruckStatusMaintenance {
		t.Fatalf("expected maintenance, got %s", truck.Status)
	}
	if _, err := svc.Start("TRK-001", opID, ""); !errors.Is(err, ErrTruckUnavailable) {
		t.Fatalf("expected ErrTruckUnavailable, got %v", err)
	}
	if _, err := svc.ActivateTruck("TRK-001"); err != nil {
		t.Fatalf("ActivateTruck: %v", err)
	}

	// Грузовик с активным циклом нельзя отправить на техобслуживание
	cycle, err := svc.Start("TRK-001", opID, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.SetTruckMaintenance("TRK-001"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for active truck, got %v", err)
	}
	// Работающего оператора нельзя отправить на отдых
	if _, err := svc.RestOperator(opID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for working operator, got %v", err)
	}
	if _, err := svc.Complete(cycle.ID, ""); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	operator, err := svc.RestOperator(opID)
	if err != nil {
		t.Fatalf("RestOperator: %v", err)
	}
	if operator.Status != models.OperatorStatusResting {
		t.Fatalf("expected resting, got %s", operator.Status)
	}
	if operator.ShiftStart != nil {
		t.Fatalf("expected shift_start cleared on rest")
	}
	if _, err := svc.Start("TRK-001", opID, ""); !errors.Is(err, ErrOperatorUnavailable) {
		t.Fatalf("expected ErrOperatorUnavailable, got %v", err)
	}
	if _, err := svc.ResumeOperator(opID); err != nil {
		t.Fatalf("ResumeOperator: %v", err)
	}
	if _, err := svc.Start("TRK-001", opID, ""); err != nil {
		t.Fatalf("Start after resume: %v", err)
	}
}
