package models

import (
	"time"
)

type OperatorStatus string

const (
	OperatorStatusWorking   OperatorStatus = "working"   // Оператор выполняет цикл
	OperatorStatusResting   OperatorStatus = "resting"   // Оператор на отдыхе, новые циклы запрещены
	OperatorStatusAvailable OperatorStatus = "available" // Оператор готов к работе
	OperatorStatusOffline   OperatorStatus = "offline"   // Оператор не на смене
)

type Operator struct {
	ID             uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Code           string         `json:"code" gorm:"unique;not null;type:varchar(10);index"`
	Name           string         `json:"name" gorm:"not null;type:varchar(255)"`
	Status         OperatorStatus `json:"status" gorm:"type:varchar(20);default:'available';index"`
	NFCTagID       *string        `json:"nfc_tag_id,omitempty" gorm:"column:nfc_tag_id;unique;default:null;index"`
	TotalHours     float64        `json:"total_hours" gorm:"type:decimal(10,2);default:0"`
	TotalCycles    int            `json:"total_cycles" gorm:"default:0"`
	TotalEarnings  float64        `json:"total_earnings" gorm:"type:decimal(10,2);default:0"`
	CurrentTruckID *string        `json:"current_truck_id,omitempty" gorm:"type:varchar(10);default:null"`
	ShiftStart     *time.Time     `json:"shift_start,omitempty" gorm:"default:null"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

type OperatorResponse struct {
	ID             uint           `json:"id"`
	Code           string         `json:"code"`
	Name           string         `json:"name"`
	Status         OperatorStatus `json:"status"`
	TotalHours     float64        `json:"total_hours"`
	TotalCycles    int            `json:"total_cycles"`
	TotalEarnings  float64        `json:"total_earnings"`
	CurrentTruckID *string        `json:"current_truck_id,omitempty"`
	ShiftStart     *time.Time     `json:"shift_start,omitempty"`
}
