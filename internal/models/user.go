package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Роли пользователей системы
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleOperator   = "operador"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"unique;not null;type:varchar(50)"`
	Email        string    `json:"email" gorm:"unique;not null;type:varchar(255)"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null;type:varchar(255)"`
	Role         string    `json:"role" gorm:"default:'operador';type:varchar(20)"`
	OperatorID   *uint     `json:"operator_id,omitempty" gorm:"default:null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime;type:timestamp with time zone"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime;type:timestamp with time zone"`
}

type UserResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OperatorID *uint     `json:"operator_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SetPassword хеширует пароль перед сохранением
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword сравнивает пароль с сохраненным хешем
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
