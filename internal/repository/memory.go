package repository

import (
	"fmt"
	"sort"
	"sync"

	"fleet-backend/internal/models"
)

// MemStore — хранилище в памяти. Используется в тестах и для локального
// запуска без базы данных. Transaction сериализует доступ одним мьютексом,
// поэтому свойство взаимного исключения выполняется так же, как и в
// PostgreSQL с блокировкой строк.
type MemStore struct {
	mu             sync.Mutex
	trucks         map[string]models.Truck
	operators      map[uint]models.Operator
	cycles         map[string]models.Cycle
	nextOperatorID uint
}

func NewMemStore() *MemStore {
	return &MemStore{
		trucks:         make(map[string]models.Truck),
		operators:      make(map[uint]models.Operator),
		cycles:         make(map[string]models.Cycle),
		nextOperatorID: 1,
	}
}

func (m *MemStore) Transaction(fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Снимок состояния для отката при ошибке
	trucks := copyMap(m.trucks)
	operators := copyMap(m.operators)
	cycles := copyMap(m.cycles)

	if err := fn(&memTx{m}); err != nil {
		m.trucks = trucks
		m.operators = operators
		m.cycles = cycles
		return err
	}
	return nil
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// memTx выполняет операции без захвата мьютекса: он уже удерживается
// на время всей транзакции.
type memTx struct {
	m *MemStore
}

func (t *memTx) Transaction(fn func(tx Store) error) error { return fn(t) }

func (t *memTx) GetTruck(id string) (*models.Truck, error)       { return t.m.getTruck(id) }
func (t *memTx) SaveTruck(truck *models.Truck) error             { return t.m.saveTruck(truck) }
func (t *memTx) ListTrucks() ([]models.Truck, error)             { return t.m.listTrucks() }
func (t *memTx) GetOperator(id uint) (*models.Operator, error)   { return t.m.getOperator(id) }
func (t *memTx) GetOperatorByTag(tag string) (*models.Operator, error) {
	return t.m.getOperatorByTag(tag)
}
func (t *memTx) SaveOperator(operator *models.Operator) error { return t.m.saveOperator(operator) }
func (t *memTx) ListOperators() ([]models.Operator, error)    { return t.m.listOperators() }
func (t *memTx) GetCycle(id string) (*models.Cycle, error)    { return t.m.getCycle(id) }
func (t *memTx) FindActiveCycle(truckID string, operatorID uint) (*models.Cycle, error) {
	return t.m.findActiveCycle(truckID, operatorID)
}
func (t *memTx) CreateCycle(cycle *models.Cycle) error          { return t.m.createCycle(cycle) }
func (t *memTx) SaveCycle(cycle *models.Cycle) error            { return t.m.saveCycle(cycle) }
func (t *memTx) ListCycles(f CycleFilter) ([]models.Cycle, error) { return t.m.listCycles(f) }

func (m *MemStore) GetTruck(id string) (*models.Truck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getTruck(id)
}

func (m *MemStore) SaveTruck(truck *models.Truck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveTruck(truck)
}

func (m *MemStore) ListTrucks() ([]models.Truck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listTrucks()
}

func (m *MemStore) GetOperator(id uint) (*models.Operator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOperator(id)
}

func (m *MemStore) GetOperatorByTag(tagID string) (*models.Operator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOperatorByTag(tagID)
}

func (m *MemStore) SaveOperator(operator *models.Operator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveOperator(operator)
}

func (m *MemStore) ListOperators() ([]models.Operator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listOperators()
}

func (m *MemStore) GetCycle(id string) (*models.Cycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCycle(id)
}

func (m *MemStore) FindActiveCycle(truckID string, operatorID uint) (*models.Cycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findActiveCycle(truckID, operatorID)
}

func (m *MemStore) CreateCycle(cycle *models.Cycle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCycle(cycle)
}

func (m *MemStore) SaveCycle(cycle *models.Cycle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCycle(cycle)
}

func (m *MemStore) ListCycles(filter CycleFilter) ([]models.Cycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCycles(filter)
}

func (m *MemStore) getTruck(id string) (*models.Truck, error) {
	truck, ok := m.trucks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &truck, nil
}

func (m *MemStore) saveTruck(truck *models.Truck) error {
	m.trucks[truck.ID] = *truck
	return nil
}

func (m *MemStore) listTrucks() ([]models.Truck, error) {
	trucks := make([]models.Truck, 0, len(m.trucks))
	for _, truck := range m.trucks {
		trucks = append(trucks, truck)
	}
	sort.Slice(trucks, func(i, j int) bool { return trucks[i].ID < trucks[j].ID })
	return trucks, nil
}

func (m *MemStore) getOperator(id uint) (*models.Operator, error) {
	operator, ok := m.operators[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &operator, nil
}

func (m *MemStore) getOperatorByTag(tagID string) (*models.Operator, error) {
	for _, operator := range m.operators {
		if operator.NFCTagID != nil && *operator.NFCTagID == tagID {
			op := operator
			return &op, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStore) saveOperator(operator *models.Operator) error {
	if operator.ID == 0 {
		operator.ID = m.nextOperatorID
		m.nextOperatorID++
	} else if operator.ID >= m.nextOperatorID {
		m.nextOperatorID = operator.ID + 1
	}
	m.operators[operator.ID] = *operator
	return nil
}

func (m *MemStore) listOperators() ([]models.Operator, error) {
	operators := make([]models.Operator, 0, len(m.operators))
	for _, operator := range m.operators {
		operators = append(operators, operator)
	}
	sort.Slice(operators, func(i, j int) bool { return operators[i].Code < operators[j].Code })
	return operators, nil
}

func (m *MemStore) getCycle(id string) (*models.Cycle, error) {
	cycle, ok := m.cycles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &cycle, nil
}

func (m *MemStore) findActiveCycle(truckID string, operatorID uint) (*models.Cycle, error) {
	for _, cycle := range m.cycles {
		if cycle.Status != models.CycleStatusInProgress {
			continue
		}
		if cycle.TruckID == truckID || cycle.OperatorID == operatorID {
			c := cycle
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStore) createCycle(cycle *models.Cycle) error {
	if _, exists := m.cycles[cycle.ID]; exists {
		return fmt.Errorf("цикл %s уже существует", cycle.ID)
	}
	m.cycles[cycle.ID] = *cycle
	return nil
}

func (m *MemStore) saveCycle(cycle *models.Cycle) error {
	m.cycles[cycle.ID] = *cycle
	return nil
}

func (m *MemStore) listCycles(filter CycleFilter) ([]models.Cycle, error) {
	cycles := make([]models.Cycle, 0, len(m.cycles))
	for _, cycle := range m.cycles {
		if filter.Status != "" && cycle.Status != filter.Status {
			continue
		}
		if filter.TruckID != "" && cycle.TruckID != filter.TruckID {
			continue
		}
		if filter.OperatorID != 0 && cycle.OperatorID != filter.OperatorID {
			continue
		}
		if truck, ok := m.trucks[cycle.TruckID]; ok {
			t := truck
			cycle.Truck = &t
		}
		if operator, ok := m.operators[cycle.OperatorID]; ok {
			op := operator
			cycle.Operator = &op
		}
		cycles = append(cycles, cycle)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i].StartTime.After(cycles[j].StartTime) })
	if filter.Limit > 0 && len(cycles) > filter.Limit {
		cycles = cycles[:filter.Limit]
	}
	return cycles, nil
}
