package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"fleet-backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// Проверка NFC метки и получение данных оператора
func NFCVerify(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			TagID string `json:"tag_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Поле tag_id обязательно"})
			return
		}

		operator, err := store.GetOperatorByTag(req.TagID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"success":  false,
					"verified": false,
					"error":    "NFC метка не зарегистрирована",
					"tag_id":   req.TagID,
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка базы данных"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"verified": true,
			"operator": operatorResponse(operator),
			"message":  fmt.Sprintf("Добро пожаловать, %s!", operator.Name),
		})
	}
}

// Привязка NFC метки к оператору
func NFCRegister(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			OperatorID uint   `json:"operator_id" binding:"required"`
			TagID      string `json:"tag_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "operator_id и tag_id обязательны"})
			return
		}

		operator, err := store.GetOperator(req.OperatorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Оператор не найден"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка базы данных"})
			return
		}

		// Метка не должна быть привязана к другому оператору
		if existing, err := store.GetOperatorByTag(req.TagID); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   fmt.Sprintf("NFC метка уже привязана к оператору %s", existing.Code),
			})
			return
		} else if !errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка базы данных"})
			return
		}

		operator.NFCTagID = &req.TagID
		if err := store.SaveOperator(operator); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка при сохранении оператора"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  fmt.Sprintf("NFC метка привязана к оператору %s", operator.Code),
			"operator": operatorResponse(operator),
		})
	}
}
