package repository

import (
	"errors"

	"fleet-backend/internal/models"
)

// ErrNotFound возвращается, когда запрошенная запись отсутствует в хранилище.
var ErrNotFound = errors.New("запись не найдена")

// CycleFilter задает параметры выборки циклов.
type CycleFilter struct {
	Status     models.CycleStatus
	TruckID    string
	OperatorID uint
	Limit      int
}

// Store — интерфейс хранилища для сущностей парка. Менеджер жизненного
// цикла работает с хранилищем только через этот интерфейс; внутри
// Transaction все чтения блокируют затронутые строки до коммита.
type Store interface {
	// Transaction выполняет fn атомарно: все изменения либо
	// фиксируются целиком, либо откатываются при ошибке.
	Transaction(fn func(tx Store) error) error

	GetTruck(id string) (*models.Truck, error)
	SaveTruck(truck *models.Truck) error
	ListTrucks() ([]models.Truck, error)

	GetOperator(id uint) (*models.Operator, error)
	GetOperatorByTag(tagID string) (*models.Operator, error)
	SaveOperator(operator *models.Operator) error
	ListOperators() ([]models.Operator, error)

	GetCycle(id string) (*models.Cycle, error)
	// FindActiveCycle ищет незавершенный цикл, ссылающийся на данный
	// грузовик или данного оператора.
	FindActiveCycle(truckID string, operatorID uint) (*models.Cycle, error)
	CreateCycle(cycle *models.Cycle) error
	SaveCycle(cycle *models.Cycle) error
	ListCycles(filter CycleFilter) ([]models.Cycle, error)
}
