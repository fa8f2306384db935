package routes

import (
	"fleet-backend/internal/config"
	"fleet-backend/internal/handlers"
	"fleet-backend/internal/middleware"
	"fleet-backend/internal/models"
	"fleet-backend/internal/repository"
	"fleet-backend/internal/services"
	"fleet-backend/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(api *gin.RouterGroup, db *gorm.DB, cfg *config.Business) {
	store := repository.NewGormStore(db)
	earnings := services.NewEarningsCalculator(cfg)
	cycleService := services.NewCycleService(store, earnings)
	statsService := services.NewStatsService(store, cfg)

	// Публичные маршруты для аутентификации
	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.AuthRegister(db))
		auth.POST("/login", handlers.AuthLogin(db))
		auth.POST("/refresh", handlers.AuthRefresh(db))
	}

	// Защищенные маршруты (требуют аутентификации)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth())
	{
		// Текущий пользователь и выход из системы
		protected.GET("/auth/me", handlers.GetCurrentUser(db))
		protected.POST("/auth/logout", handlers.AuthLogout())

		// Роуты для циклов
		protected.POST("/cycles/start", handlers.CycleStart(cycleService))
		protected.POST("/cycles/:id/complete", handlers.CycleComplete(cycleService))
		protected.PUT("/cycles/:id/location", handlers.CycleUpdateLocation(cycleService))
		protected.GET("/cycles", handlers.CycleList(store, cfg))
		protected.GET("/cycles/:id", handlers.CycleGetByID(store))

		// Роуты для грузовиков
		protected.GET("/trucks", handlers.TruckList(store))
		protected.GET("/trucks/:id", handlers.TruckGetByID(store))

		// Роуты для операторов
		protected.GET("/operators", handlers.OperatorList(store))
		protected.GET("/operators/:id", handlers.OperatorGetByID(store))

		// Аналитика и оповещения
		protected.GET("/analytics/dashboard", handlers.AnalyticsDashboard(statsService))
		protected.GET("/analytics/operators", handlers.AnalyticsOperators(statsService))
		protected.GET("/analytics/trucks", handlers.AnalyticsTrucks(statsService))
		protected.GET("/analytics/alerts", handlers.AnalyticsAlerts(statsService))

		// NFC метки операторов
		protected.POST("/nfc/verify", handlers.NFCVerify(store))

		// WebSocket подключение для получения обновлений в реальном времени
		protected.GET("/ws", websocket.Handler())
	}

	// Административные операции
	admin := protected.Group("")
	admin.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSupervisor))
	{
		admin.POST("/cycles/:id/cancel", handlers.CycleCancel(cycleService))
		admin.PUT("/trucks/:id/maintenance", handlers.TruckSetMaintenance(cycleService))
		admin.PUT("/trucks/:id/activate", handlers.TruckActivate(cycleService))
		admin.PUT("/operators/:id/rest", handlers.OperatorRest(cycleService))
		admin.PUT("/operators/:id/resume", handlers.OperatorResume(cycleService))
		admin.POST("/nfc/register", handlers.NFCRegister(store))
	}
}
