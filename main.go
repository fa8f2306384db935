package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"fleet-backend/internal/config"
	"fleet-backend/internal/middleware"
	"fleet-backend/internal/models"
	"fleet-backend/internal/routes"
	"fleet-backend/internal/services"
	"fleet-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func connectWithRetry(dsn string, maxAttempts int, delay time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxAttempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
		if err == nil {
			// Настройка пула соединений с БД
			sqlDB, err := db.DB()
			if err != nil {
				return nil, fmt.Errorf("не удалось получить доступ к sql.DB: %w", err)
			}

			maxOpenConns := 100
			maxIdleConns := 25
			connMaxLifetime := 60

			if val, err := strconv.Atoi(os.Getenv("DB_MAX_OPEN_CONNS")); err == nil && val > 0 {
				maxOpenConns = val
			}
			if val, err := strconv.Atoi(os.Getenv("DB_MAX_IDLE_CONNS")); err == nil && val > 0 {
				maxIdleConns = val
			}
			if val, err := strconv.Atoi(os.Getenv("DB_CONN_MAX_LIFETIME_MINUTES")); err == nil && val > 0 {
				connMaxLifetime = val
			}

			sqlDB.SetMaxOpenConns(maxOpenConns)
			sqlDB.SetMaxIdleConns(maxIdleConns)
			sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Minute)

			return db, nil
		}
		log.Printf("Попытка подключения к БД %d из %d не удалась: %v\n", i+1, maxAttempts, err)
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("не удалось подключиться к базе данных после %d попыток: %v", maxAttempts, err)
}

// connectToRedis устанавливает соединение с Redis для черного списка токенов
func connectToRedis() (*redis.Client, error) {
	redisHost := os.Getenv("REDIS_HOST")
	redisPort := os.Getenv("REDIS_PORT")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	if redisHost == "" {
		redisHost = "localhost"
	}
	if redisPort == "" {
		redisPort = "6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", redisHost, redisPort),
		Password:     redisPassword,
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 10,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}

	return rdb, nil
}

func main() {
	// Устанавливаем режим релиза для продакшена
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используем переменные окружения")
	}

	// Бизнес-константы парка (тарифы, пороги оповещений)
	cfg := config.LoadBusiness()

	// Подключение к базе данных
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
	)

	db, err := connectWithRetry(dsn, 5, 5*time.Second)
	if err != nil {
		log.Fatal("Ошибка подключения к базе данных:", err)
	}

	// Подключение к Redis для черного списка токенов
	redisClient, err := connectToRedis()
	if err != nil {
		log.Println("Предупреждение: Redis недоступен, отзыв токенов отключен:", err)
	} else {
		log.Println("Успешное подключение к Redis")
		defer redisClient.Close()
		services.SetRedisClient(redisClient)
	}

	// Автоматическая миграция моделей
	if err := db.AutoMigrate(
		&models.User{},
		&models.Truck{},
		&models.Operator{},
		&models.Cycle{},
	); err != nil {
		log.Fatal("Ошибка миграции базы данных:", err)
	}

	// Запускаем WebSocket менеджер
	websocket.StartManager()

	// Создаем Gin роутер
	r := gin.New()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// Middleware для сбора метрик
	r.Use(middleware.PrometheusMiddleware())

	// Настройка доверенных прокси
	r.SetTrustedProxies([]string{"127.0.0.1"})

	// Настройка CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Эндпоинт для метрик Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Проверка работоспособности системы
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// API группа
	api := r.Group("/api")

	// Настраиваем маршруты
	routes.SetupRoutes(api, db, cfg)

	// WebSocket маршрут вне группы /api для совместимости с клиентом
	r.GET("/ws", websocket.Handler())

	// Получаем порт из переменных окружения
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// HTTP сервер с настроенными таймаутами
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Сервер запущен на порту %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Ошибка запуска сервера: %s", err)
		}
	}()

	// Ожидаем сигнал для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Получен сигнал завершения, закрываем соединения...")

	// Даем 30 секунд на завершение текущих запросов
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Ошибка при graceful shutdown: %s", err)
	}

	log.Println("Сервер корректно завершил работу")
}
