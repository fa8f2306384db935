package models

import (
	"time"
)

type CycleStatus string

const (
	CycleStatusInProgress CycleStatus = "in_progress" // Цикл выполняется
	CycleStatusCompleted  CycleStatus = "completed"   // Цикл завершен
	CycleStatusCancelled  CycleStatus = "cancelled"   // Цикл отменен администратором
)

type Cycle struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(30)"`
	TruckID         string      `json:"truck_id" gorm:"not null;type:varchar(10);index"`
	OperatorID      uint        `json:"operator_id" gorm:"not null;index"`
	StartTime       time.Time   `json:"start_time" gorm:"not null;index"`
	EndTime         *time.Time  `json:"end_time,omitempty" gorm:"default:null"`
	DurationMinutes *int        `json:"duration_minutes,omitempty" gorm:"default:null"`
	StartLocation   string      `json:"start_location,omitempty" gorm:"type:varchar(255)"`
	EndLocation     string      `json:"end_location,omitempty" gorm:"type:varchar(255)"`
	Earnings        float64     `json:"earnings" gorm:"type:decimal(10,2);default:0"`
	Status          CycleStatus `json:"status" gorm:"type:varchar(20);default:'in_progress';index"`
	CreatedAt       time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
	Truck           *Truck      `json:"-" gorm:"foreignKey:TruckID"`
	Operator        *Operator   `json:"-" gorm:"foreignKey:OperatorID"`
}

type CycleResponse struct {
	ID              string      `json:"id"`
	TruckID         string      `json:"truck_id"`
	OperatorID      uint        `json:"operator_id"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         *time.Time  `json:"end_time,omitempty"`
	DurationMinutes *int        `json:"duration_minutes,omitempty"`
	StartLocation   string      `json:"start_location,omitempty"`
	EndLocation     string      `json:"end_location,omitempty"`
	Earnings        float64     `json:"earnings"`
	Status          CycleStatus `json:"status"`
	TruckPlate      string      `json:"truck_plate,omitempty"`
	OperatorCode    string      `json:"operator_code,omitempty"`
	OperatorName    string      `json:"operator_name,omitempty"`
}

// NewCycleResponse собирает DTO цикла вместе с данными грузовика и оператора
func NewCycleResponse(cycle *Cycle) CycleResponse {
	resp := CycleResponse{
		ID:              cycle.ID,
		TruckID:         cycle.TruckID,
		OperatorID:      cycle.OperatorID,
		StartTime:       cycle.StartTime,
		EndTime:         cycle.EndTime,
		DurationMinutes: cycle.DurationMinutes,
		StartLocation:   cycle.StartLocation,
		EndLocation:     cycle.EndLocation,
		Earnings:        cycle.Earnings,
		Status:          cycle.Status,
	}
	if cycle.Truck != nil {
		resp.TruckPlate = cycle.Truck.Plate
	}
	if cycle.Operator != nil {
		resp.OperatorCode = cycle.Operator.Code
		resp.OperatorName = cycle.Operator.Name
	}
	return resp
}
