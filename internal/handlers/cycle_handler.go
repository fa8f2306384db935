package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"fleet-backend/internal/config"
	"fleet-backend/internal/middleware"
	"fleet-backend/internal/models"
	"fleet-backend/internal/repository"
	"fleet-backend/internal/services"
	"fleet-backend/internal/websocket"

	"github.com/gin-gonic/gin"
)

// respondLifecycleError сопоставляет ошибки жизненного цикла с HTTP-статусами
func respondLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTruckNotFound),
		errors.Is(err, services.ErrOperatorNotFound),
		errors.Is(err, services.ErrCycleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrConflictActiveCycle):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrTruckUnavailable),
		errors.Is(err, services.ErrOperatorUnavailable),
		errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка базы данных"})
	}
}

// Запуск нового цикла
func CycleStart(svc *services.CycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			TruckID       string `json:"truck_id" binding:"required"`
			OperatorID    uint   `json:"operator_id" binding:"required"`
			StartLocation string `json:"start_location"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "truck_id и operator_id обязательны"})
			return
		}

		cycle, err := svc.Start(req.TruckID, req.OperatorID, req.StartLocation)
		if err != nil {
			respondLifecycleError(c, err)
			return
		}

		middleware.CyclesStartedTotal.Inc()
		websocket.NotifyCycleUpdate(cycle)

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Цикл успешно запущен",
			"cycle":   models.NewCycleResponse(cycle),
		})
	}
}

// Завершение цикла
func CycleComplete(svc *services.CycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			EndLocation string `json:"end_location"`
		}
		// Тело запроса не обязательно
		_ = c.ShouldBindJSON(&req)

		cycle, err := svc.Complete(c.Param("id"), req.EndLocation)
		if err != nil {
			respondLifecycleError(c, err)
			return
		}

		middleware.CyclesCompletedTotal.Inc()
		middleware.CycleEarningsTotal.Add(cycle.Earnings)
		if cycle.DurationMinutes != nil {
			middleware.CycleDuration.Observe(float64(*cycle.DurationMinutes))
		}
		websocket.NotifyCycleUpdate(cycle)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Цикл успешно завершен",
			"cycle":   models.NewCycleResponse(cycle),
		})
	}
}

// Отмена цикла администратором
func CycleCancel(svc *services.CycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cycle, err := svc.Cancel(c.Param("id"))
		if err != nil {
			respondLifecycleError(c, err)
			return
		}

		middleware.CyclesCancelledTotal.Inc()
		websocket.NotifyCycleUpdate(cycle)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Цикл отменен",
			"cycle":   models.NewCycleResponse(cycle),
		})
	}
}

// Обновление местоположения активного цикла
func CycleUpdateLocation(svc *services.CycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Location string `json:"location" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Поле location обязательно"})
			return
		}

		if err := svc.UpdateLocation(c.Param("id"), req.Location); err != nil {
			respondLifecycleError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Местоположение обновлено",
			"cycle_id": c.Param("id"),
			"location": req.Location,
		})
	}
}

// Получение списка циклов с фильтрами
func CycleList(store repository.Store, cfg *config.Business) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repository.CycleFilter{
			Status:  models.CycleStatus(c.Query("status")),
			TruckID: c.Query("truck_id"),
			Limit:   cfg.DefaultLimit,
		}
		if raw := c.Query("operator_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Неверный operator_id"})
				return
			}
			filter.OperatorID = uint(id)
		}
		if raw := c.Query("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Неверный limit"})
				return
			}
			if limit > cfg.MaxLimit {
				limit = cfg.MaxLimit
			}
			filter.Limit = limit
		}

		cycles, err := store.ListCycles(filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка при получении циклов"})
			return
		}

		response := make([]models.CycleResponse, 0, len(cycles))
		for i := range cycles {
			response = append(response, models.NewCycleResponse(&cycles[i]))
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"cycles":  response,
			"total":   len(response),
		})
	}
}

// Получение цикла по идентификатору
func CycleGetByID(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cycle, err := store.GetCycle(c.Param("id"))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Цикл не найден"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка базы данных"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"cycle":   models.NewCycleResponse(cycle),
		})
	}
}
