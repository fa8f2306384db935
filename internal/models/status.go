package models

// Допустимые переходы статусов для каждой сущности. Переходы заданы
// направленным графом: всё, чего нет в таблице, запрещено.
var truckTransitions = map[TruckStatus][]TruckStatus{
	TruckStatusResting:     {TruckStatusActive, TruckStatusMaintenance},
	TruckStatusActive:      {TruckStatusResting},
	TruckStatusMaintenance: {TruckStatusResting},
}

var operatorTransitions = map[OperatorStatus][]OperatorStatus{
	OperatorStatusAvailable: {OperatorStatusWorking, OperatorStatusResting, OperatorStatusOffline},
	OperatorStatusWorking:   {OperatorStatusAvailable},
	OperatorStatusResting:   {OperatorStatusAvailable, OperatorStatusOffline},
	// Оператор вне смены может сразу начать цикл: запуск блокирует
	// только статус resting
	OperatorStatusOffline: {OperatorStatusAvailable, OperatorStatusWorking},
}

var cycleTransitions = map[CycleStatus][]CycleStatus{
	CycleStatusInProgress: {CycleStatusCompleted, CycleStatusCancelled},
	// Терминальные статусы: из completed и cancelled переходов нет
	CycleStatusCompleted: {},
	CycleStatusCancelled: {},
}

// CanTransition проверяет, допустим ли переход статуса грузовика.
// Переход в тот же статус всегда разрешен.
func (s TruckStatus) CanTransition(to TruckStatus) bool {
	if s == to {
		return true
	}
	for _, next := range truckTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransition проверяет, допустим ли переход статуса оператора.
func (s OperatorStatus) CanTransition(to OperatorStatus) bool {
	if s == to {
		return true
	}
	for _, next := range operatorTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransition проверяет, допустим ли переход статуса цикла.
func (s CycleStatus) CanTransition(to CycleStatus) bool {
	if s == to {
		return true
	}
	for _, next := range cycleTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
