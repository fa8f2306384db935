package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"fleet-backend/internal/models"
	"fleet-backend/internal/repository"
	"fleet-backend/internal/services"
	"fleet-backend/internal/websocket"

	"github.com/gin-gonic/gin"
)

func operatorResponse(operator *models.Operator) models.OperatorResponse {
	return models.OperatorResponse{
		ID:             operator.ID,
		Code:           operator.Code,
		Name:           operator.Name,
		Status:         operator.Status,
		TotalHours:     operator.TotalHours,
		TotalCycles:    operator.TotalCycles,
		TotalEarnings:  operator.TotalEarnings,
		CurrentTruckID: operator.CurrentTruckID,
		ShiftStart:     operator.ShiftStart,
	}
}

func operatorIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Неверный идентификатор оператора"})
		return 0, false
	}
	return uint(id), true
}

// Список операторов
func OperatorList(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		operators, err := store.ListOperators()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка при получении операторов"})
			return
		}

		response := make([]models.OperatorResponse, 0, len(operators))
		var available int
		for i := range operators {
			if operators[i].Status == models.OperatorStatusAvailable {
				available++
			}
			response = append(response, operatorResponse(&operators[i]))
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"operators": response,
			"total":     len(response),
			"available": available,
		})
	}
}

// Получение оператора по идентификатору
func OperatorGetByID(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := operatorIDParam(c)
		if !ok {
			return
		}
		operator, err := store.GetOperator(id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Оператор не найден"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка базы данных"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "operator": operatorResponse(operator)})
	}
}

// Отправка оператора на отдых (для админов)
func OperatorRest(svc *services.CycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := operatorIDParam(c)
		if !ok {
			return
		}
		operator, err := svc.RestOperator(id)
		if err != nil {
			respondLifecycleError(c, err)
			return
		}
		websocket.NotifyOperatorUpdate(operator)
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Оператор отправлен на отдых",
			"operator": operatorResponse(operator),
		})
	}
}

// Возврат оператора с отдыха (для админов)
func OperatorResume(svc *services.CycleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := operatorIDParam(c)
		if !ok {
			return
		}
		operator, err := svc.ResumeOperator(id)
		if err != nil {
			respondLifecycleError(c, err)
			return
		}
		websocket.NotifyOperatorUpdate(operator)
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Оператор снова доступен",
			"operator": operatorResponse(operator),
		})
	}
}
