package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"fleet-backend/internal/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var trucks = []models.Truck{
	{ID: "TRK-001", Plate: "ABC-1234", Status: models.TruckStatusResting, Location: "Патио A"},
	{ID: "TRK-002", Plate: "DEF-5678", Status: models.TruckStatusResting, Location: "Патио A"},
	{ID: "TRK-003", Plate: "GHI-9012", Status: models.TruckStatusResting, Location: "Патио B"},
	{ID: "TRK-004", Plate: "JKL-3456", Status: models.TruckStatusResting, Location: "Патио B"},
	{ID: "TRK-005", Plate: "MNO-7890", Status: models.TruckStatusMaintenance, Location: "Мастерская"},
}

var operators = []models.Operator{
	{Code: "OP-001", Name: "Хуан Перес", Status: models.OperatorStatusAvailable},
	{Code: "OP-002", Name: "Карлос Гомес", Status: models.OperatorStatusAvailable},
	{Code: "OP-003", Name: "Мигель Торрес", Status: models.OperatorStatusAvailable},
	{Code: "OP-004", Name: "Луис Рамирес", Status: models.OperatorStatusAvailable},
	{Code: "OP-005", Name: "Педро Санчес", Status: models.OperatorStatusOffline},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используем переменные окружения")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		log.Fatal("Ошибка подключения к базе данных:", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Truck{}, &models.Operator{}, &models.Cycle{}); err != nil {
		log.Fatal("Ошибка миграции базы данных:", err)
	}

	// Повторный запуск не трогает уже существующие записи
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&trucks).Error; err != nil {
		log.Fatal("Ошибка создания грузовиков:", err)
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&operators).Error; err != nil {
		log.Fatal("Ошибка создания операторов:", err)
	}

	// Администратор по умолчанию
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin12345"
	}

	var existing models.User
	if err := db.Where("username = ?", "admin").First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		admin := models.User{
			Username: "admin",
			Email:    "admin@fleet.local",
			Role:     models.RoleAdmin,
		}
		if err := admin.SetPassword(adminPassword); err != nil {
			log.Fatal("Ошибка хеширования пароля:", err)
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Fatal("Ошибка создания администратора:", err)
		}
		log.Println("Создан пользователь admin")
	}

	log.Printf("Готово: %d грузовиков, %d операторов", len(trucks), len(operators))
}
