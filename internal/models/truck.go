package models

import (
	"time"
)

type TruckStatus string

const (
	TruckStatusActive      TruckStatus = "active"      // Грузовик выполняет цикл
	TruckStatusResting     TruckStatus = "resting"     // Грузовик свободен
	TruckStatusMaintenance TruckStatus = "maintenance" // Грузовик на техобслуживании
)

type Truck struct {
	ID                string      `json:"id" gorm:"primaryKey;type:varchar(10)"`
	Plate             string      `json:"plate" gorm:"unique;not null;type:varchar(10)"`
	Status            TruckStatus `json:"status" gorm:"type:varchar(20);default:'resting';index"`
	Location          string      `json:"location" gorm:"type:varchar(255)"`
	CurrentOperatorID *uint       `json:"current_operator_id,omitempty" gorm:"default:null"`
	CycleStartTime    *time.Time  `json:"cycle_start_time,omitempty" gorm:"default:null"`
	TotalCycles       int         `json:"total_cycles" gorm:"default:0"`
	CreatedAt         time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

type TruckResponse struct {
	ID                string      `json:"id"`
	Plate             string      `json:"plate"`
	Status            TruckStatus `json:"status"`
	Location          string      `json:"location"`
	CurrentOperatorID *uint       `json:"current_operator_id,omitempty"`
	CycleStartTime    *time.Time  `json:"cycle_start_time,omitempty"`
	TotalCycles       int         `json:"total_cycles"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
