package handlers

import (
	"errors"
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/repository"
	"fleet-backend/internal/services"
	"fleet-backend/internal/websocket"

	"github.com/gin-gonic/gin"
)

func truckResponse(truck *models.Truck) models.TruckResponse {
	return models.TruckResponse{
		ID:                truck.ID,
		Plate:             truck.Plate,
		Status:            truck.Status,
		Location:          truck.Location,
		CurrentOperatorID: truck.CurrentOperatorID,
		CycleStartTime:    truck.CycleStartTime,
		TotalCycles:       truck.TotalCycles,
		UpdatedAt:         truck.UpdatedAt,
	}
}

// Список грузовиков парка
func TruckList(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		trucks, err := store.ListTrucks()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка при получении грузовиков"})
			return
		}

		response := make([]models.TruckResponse, 0, len(trucks))
		var active int
		for i := range trucks {
			if trucks[i].Status == models.TruckStatusActive {
				active++
			}
			response = append(response, truckResponse(&trucks[i]))
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"trucks":  response,
			"total":   len(response),
			"active":  active,
		})
	}
}

// Получение грузовика по идентификатору
func TruckGetByID(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		truck, err := store.GetTruck(c.Param("id"))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Грузовик не найден"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка базы данных"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "truck": truckResponse(truck)})
	}
}

// Перевод грузовика на техобслуживание (для админов)
func TruckSetMaintenance(svc *services.CycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		truck, err := svc.SetTruckMaintenance(c.Param("id"))
		if err != nil {
			respondLifecycleError(c, err)
			return
		}
		websocket.NotifyTruckUpdate(truck)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Грузовик переведен на техобслуживание",
			"truck":   truckResponse(truck),
		})
	}
}

// Возврат грузовика с техобслуживания (для админов)
func TruckActivate(svc *services.CycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		truck, err := svc.ActivateTruck(c.Param("id"))
		if err != nil {
			respondLifecycleError(c, err)
			return
		}
		websocket.NotifyTruckUpdate(truck)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Грузовик возвращен в работу",
			"truck":   truckResponse(truck),
		})
	}
}
