package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"fleet-backend/internal/models"
	"fleet-backend/internal/repository"

	"github.com/google/uuid"
)

// CycleService управляет жизненным циклом рейсов. Каждая операция
// выполняет проверки и изменения трех сущностей (цикл, грузовик,
// оператор) в одной транзакции хранилища.
type CycleService struct {
	store    repository.Store
	earnings *EarningsCalculator
	now      func() time.Time
}

func NewCycleService(store repository.Store, earnings *EarningsCalculator) *CycleService {
	return &CycleService{
		store:    store,
		earnings: earnings,
		now:      time.Now,
	}
}

// generateCycleID формирует идентификатор вида CYC-<base36 метка>-<фрагмент UUID>
func generateCycleID(now time.Time) string {
	timestamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	fragment := strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
	return "CYC-" + timestamp + "-" + fragment
}

// Start запускает новый цикл. Проверки выполняются по порядку, первая
// неудача прерывает операцию: существование грузовика, его доступность,
// существование оператора, его доступность, отсутствие активного цикла
// у обоих. При успехе грузовик переходит в active, оператор в working.
func (s *CycleService) Start(truckID string, operatorID uint, startLocation string) (*models.Cycle, error) {
	var cycle *models.Cycle
	err := s.store.Transaction(func(tx repository.Store) error {
		truck, err := tx.GetTruck(truckID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("грузовик %s: %w", truckID, ErrTruckNotFound)
			}
			return err
		}
		if truck.Status == models.TruckStatusMaintenance {
			return fmt.Errorf("грузовик %s: %w", truckID, ErrTruckUnavailable)
		}

		operator, err := tx.GetOperator(operatorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("оператор %d: %w", operatorID, ErrOperatorNotFound)
			}
			return err
		}
		if operator.Status == models.OperatorStatusResting {
			return fmt.Errorf("оператор %s: %w", operator.Code, ErrOperatorUnavailable)
		}

		// Взаимное исключение: не более одного активного цикла на
		// грузовик и на оператора
		if _, err := tx.FindActiveCycle(truckID, operatorID); err == nil {
			return ErrConflictActiveCycle
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if !truck.Status.CanTransition(models.TruckStatusActive) {
			return fmt.Errorf("грузовик %s в статусе %s: %w", truckID, truck.Status, ErrInvalidState)
		}
		if !operator.Status.CanTransition(models.OperatorStatusWorking) {
			return fmt.Errorf("оператор %s в статусе %s: %w", operator.Code, operator.Status, ErrInvalidState)
		}

		now := s.now()
		location := startLocation
		if location == "" {
			location = truck.Location
		}

		cycle = &models.Cycle{
			ID:            generateCycleID(now),
			TruckID:       truckID,
			OperatorID:    operatorID,
			StartTime:     now,
			StartLocation: location,
			Status:        models.CycleStatusInProgress,
		}
		if err := tx.CreateCycle(cycle); err != nil {
			return err
		}

		truck.Status = models.TruckStatusActive
		truck.CurrentOperatorID = &operatorID
		truck.CycleStartTime = &now
		if err := tx.SaveTruck(truck); err != nil {
			return err
		}

		operator.Status = models.OperatorStatusWorking
		operator.CurrentTruckID = &truckID
		// shift_start устанавливается один раз на непрерывную смену и
		// сохраняется между циклами до явного ухода на отдых
		if operator.ShiftStart == nil {
			operator.ShiftStart = &now
		}
		return tx.SaveOperator(operator)
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// Complete завершает цикл: фиксирует время окончания, длительность и
// заработок, возвращает грузовик в resting, оператора в available и
// обновляет их накопительные счетчики. Частично завершенное состояние
// снаружи транзакции не наблюдаемо.
func (s *CycleService) Complete(cycleID string, endLocation string) (*models.Cycle, error) {
	var cycle *models.Cycle
	err := s.store.Transaction(func(tx repository.Store) error {
		var err error
		cycle, err = tx.GetCycle(cycleID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("цикл %s: %w", cycleID, ErrCycleNotFound)
			}
			return err
		}
		if cycle.Status != models.CycleStatusInProgress {
			return fmt.Errorf("цикл %s уже в статусе %s: %w", cycleID, cycle.Status, ErrInvalidState)
		}

		truck, err := tx.GetTruck(cycle.TruckID)
		if err != nil {
			return err
		}
		operator, err := tx.GetOperator(cycle.OperatorID)
		if err != nil {
			return err
		}

		now := s.now()
		durationMinutes := int(math.Round(now.Sub(cycle.StartTime).Minutes()))
		earnings := s.earnings.Compute(durationMinutes)

		location := endLocation
		if location == "" {
			location = truck.Location
		}

		cycle.EndTime = &now
		cycle.EndLocation = location
		cycle.DurationMinutes = &durationMinutes
		cycle.Earnings = earnings
		cycle.Status = models.CycleStatusCompleted
		if err := tx.SaveCycle(cycle); err != nil {
			return err
		}

		truck.Status = models.TruckStatusResting
		truck.CurrentOperatorID = nil
		truck.CycleStartTime = nil
		truck.TotalCycles++
		if err := tx.SaveTruck(truck); err != nil {
			return err
		}

		operator.Status = models.OperatorStatusAvailable
		operator.CurrentTruckID = nil
		operator.TotalHours = round2(operator.TotalHours + float64(durationMinutes)/60)
		operator.TotalCycles++
		operator.TotalEarnings = round2(operator.TotalEarnings + earnings)
		// shift_start здесь не сбрасывается: смена продолжается, пока
		// оператор явно не уйдет на отдых
		return tx.SaveOperator(operator)
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// Cancel — административная отмена цикла. Освобождает грузовик и
// оператора так же, как завершение, но не начисляет заработок и не
// увеличивает счетчики.
func (s *CycleService) Cancel(cycleID string) (*models.Cycle, error) {
	var cycle *models.Cycle
	err := s.store.Transaction(func(tx repository.Store) error {
		var err error
		cycle, err = tx.GetCycle(cycleID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("цикл %s: %w", cycleID, ErrCycleNotFound)
			}
			return err
		}
		if cycle.Status != models.CycleStatusInProgress {
			return fmt.Errorf("цикл %s уже в статусе %s: %w", cycleID, cycle.Status, ErrInvalidState)
		}

		truck, err := tx.GetTruck(cycle.TruckID)
		if err != nil {
			return err
		}
		operator, err := tx.GetOperator(cycle.OperatorID)
		if err != nil {
			return err
		}

		now := s.now()
		cycle.EndTime = &now
		cycle.Status = models.CycleStatusCancelled
		if err := tx.SaveCycle(cycle); err != nil {
			return err
		}

		truck.Status = models.TruckStatusResting
		truck.CurrentOperatorID = nil
		truck.CycleStartTime = nil
		if err := tx.SaveTruck(truck); err != nil {
			return err
		}

		operator.Status = models.OperatorStatusAvailable
		operator.CurrentTruckID = nil
		return tx.SaveOperator(operator)
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// UpdateLocation обновляет местоположение грузовика по активному циклу.
func (s *CycleService) UpdateLocation(cycleID string, location string) error {
	return s.store.Transaction(func(tx repository.Store) error {
		cycle, err := tx.GetCycle(cycleID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("цикл %s: %w", cycleID, ErrCycleNotFound)
			}
			return err
		}
		if cycle.Status != models.CycleStatusInProgress {
			return fmt.Errorf("местоположение можно обновлять только у активного цикла, цикл %s в статусе %s: %w",
				cycleID, cycle.Status, ErrInvalidState)
		}
		truck, err := tx.GetTruck(cycle.TruckID)
		if err != nil {
			return err
		}
		truck.Location = location
		return tx.SaveTruck(truck)
	})
}

// SetTruckMaintenance переводит грузовик на техобслуживание. Грузовик с
// активным циклом перевести нельзя.
func (s *CycleService) SetTruckMaintenance(truckID string) (*models.Truck, error) {
	var truck *models.Truck
	err := s.store.Transaction(func(tx repository.Store) error {
		var err error
		truck, err = tx.GetTruck(truckID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("грузовик %s: %w", truckID, ErrTruckNotFound)
			}
			return err
		}
		if !truck.Status.CanTransition(models.TruckStatusMaintenance) {
			return fmt.Errorf("грузовик %s в статусе %s: %w", truckID, truck.Status, ErrInvalidState)
		}
		truck.Status = models.TruckStatusMaintenance
		return tx.SaveTruck(truck)
	})
	if err != nil {
		return nil, err
	}
	return truck, nil
}

// ActivateTruck возвращает грузовик с техобслуживания в resting.
func (s *CycleService) ActivateTruck(truckID string) (*models.Truck, error) {
	var truck *models.Truck
	err := s.store.Transaction(func(tx repository.Store) error {
		var err error
		truck, err = tx.GetTruck(truckID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("грузовик %s: %w", truckID, ErrTruckNotFound)
			}
			return err
		}
		if truck.Status != models.TruckStatusMaintenance {
			return fmt.Errorf("грузовик %s не на техобслуживании (статус %s): %w", truckID, truck.Status, ErrInvalidState)
		}
		truck.Status = models.TruckStatusResting
		return tx.SaveTruck(truck)
	})
	if err != nil {
		return nil, err
	}
	return truck, nil
}

// RestOperator отправляет оператора на отдых и закрывает его смену.
// Оператор с активным циклом уйти на отдых не может.
func (s *CycleService) RestOperator(operatorID uint) (*models.Operator, error) {
	var operator *models.Operator
	err := s.store.Transaction(func(tx repository.Store) error {
		var err error
		operator, err = tx.GetOperator(operatorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("оператор %d: %w", operatorID, ErrOperatorNotFound)
			}
			return err
		}
		if !operator.Status.CanTransition(models.OperatorStatusResting) {
			return fmt.Errorf("оператор %s в статусе %s: %w", operator.Code, operator.Status, ErrInvalidState)
		}
		operator.Status = models.OperatorStatusResting
		operator.ShiftStart = nil
		return tx.SaveOperator(operator)
	})
	if err != nil {
		return nil, err
	}
	return operator, nil
}

// ResumeOperator возвращает оператора с отдыха в available.
func (s *CycleService) ResumeOperator(operatorID uint) (*models.Operator, error) {
	var operator *models.Operator
	err := s.store.Transaction(func(tx repository.Store) error {
		var err error
		operator, err = tx.GetOperator(operatorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("оператор %d: %w", operatorID, ErrOperatorNotFound)
			}
			return err
		}
		if operator.Status != models.OperatorStatusResting && operator.Status != models.OperatorStatusOffline {
			return fmt.Errorf("оператор %s в статусе %s: %w", operator.Code, operator.Status, ErrInvalidState)
		}
		operator.Status = models.OperatorStatusAvailable
		return tx.SaveOperator(operator)
	})
	if err != nil {
		return nil, err
	}
	return operator, nil
}
