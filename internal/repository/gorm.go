package repository

import (
	"errors"
	"fmt"

	"fleet-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore — реализация Store поверх GORM/PostgreSQL. Внутри транзакции
// чтения выполняются с SELECT ... FOR UPDATE, чтобы два параллельных
// запуска цикла на одном грузовике не прошли проверку одновременно.
type GormStore struct {
	db     *gorm.DB
	locked bool
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, locked: true})
	})
}

// query добавляет блокировку строк, если мы внутри транзакции
func (s *GormStore) query() *gorm.DB {
	if s.locked {
		return s.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return s.db
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) GetTruck(id string) (*models.Truck, error) {
	var truck models.Truck
	if err := s.query().First(&truck, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &truck, nil
}

func (s *GormStore) SaveTruck(truck *models.Truck) error {
	return s.db.Save(truck).Error
}

func (s *GormStore) ListTrucks() ([]models.Truck, error) {
	var trucks []models.Truck
	if err := s.db.Order("id").Find(&trucks).Error; err != nil {
		return nil, err
	}
	return trucks, nil
}

func (s *GormStore) GetOperator(id uint) (*models.Operator, error) {
	var operator models.Operator
	if err := s.query().First(&operator, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &operator, nil
}

func (s *GormStore) GetOperatorByTag(tagID string) (*models.Operator, error) {
	var operator models.Operator
	if err := s.query().First(&operator, "nfc_tag_id = ?", tagID).Error; err != nil {
		return nil, translateErr(err)
	}
	return &operator, nil
}

func (s *GormStore) SaveOperator(operator *models.Operator) error {
	return s.db.Save(operator).Error
}

func (s *GormStore) ListOperators() ([]models.Operator, error) {
	var operators []models.Operator
	if err := s.db.Order("code").Find(&operators).Error; err != nil {
		return nil, err
	}
	return operators, nil
}

func (s *GormStore) GetCycle(id string) (*models.Cycle, error) {
	var cycle models.Cycle
	if err := s.query().First(&cycle, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &cycle, nil
}

func (s *GormStore) FindActiveCycle(truckID string, operatorID uint) (*models.Cycle, error) {
	var cycle models.Cycle
	err := s.query().
		Where("(truck_id = ? OR operator_id = ?) AND status = ?",
			truckID, operatorID, models.CycleStatusInProgress).
		First(&cycle).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &cycle, nil
}

func (s *GormStore) CreateCycle(cycle *models.Cycle) error {
	if err := s.db.Create(cycle).Error; err != nil {
		return fmt.Errorf("ошибка создания цикла: %w", err)
	}
	return nil
}

func (s *GormStore) SaveCycle(cycle *models.Cycle) error {
	return s.db.Save(cycle).Error
}

func (s *GormStore) ListCycles(filter CycleFilter) ([]models.Cycle, error) {
	q := s.db.Model(&models.Cycle{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TruckID != "" {
		q = q.Where("truck_id = ?", filter.TruckID)
	}
	if filter.OperatorID != 0 {
		q = q.Where("operator_id = ?", filter.OperatorID)
	}
	q = q.Preload("Truck").Preload("Operator").Order("start_time DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var cycles []models.Cycle
	if err := q.Find(&cycles).Error; err != nil {
		return nil, err
	}
	return cycles, nil
}
