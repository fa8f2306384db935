package handlers

import (
	"log"
	"net/http"
	"time"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username   string `json:"username" binding:"required,min=3"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role"`
	OperatorID *uint  `json:"operator_id"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthResponse struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message,omitempty"`
	Token        string               `json:"token,omitempty"`
	RefreshToken string               `json:"refresh_token,omitempty"`
	User         *models.UserResponse `json:"user,omitempty"`
	Error        string               `json:"error,omitempty"`
}

func userResponse(user *models.User) *models.UserResponse {
	return &models.UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       user.Role,
		OperatorID: user.OperatorID,
		CreatedAt:  user.CreatedAt,
	}
}

// Регистрация нового пользователя
func AuthRegister(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Printf("Ошибка валидации данных: %v", err)
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Неверный формат данных",
				Error:   err.Error(),
			})
			return
		}

		// Проверяем, заняты ли имя пользователя или email
		var existingUser models.User
		if result := db.Where("username = ? OR email = ?", req.Username, req.Email).First(&existingUser); result.Error == nil {
			message := "Имя пользователя уже занято"
			if existingUser.Email == req.Email {
				message = "Email уже зарегистрирован"
			}
			c.JSON(http.StatusBadRequest, AuthResponse{Success: false, Message: message})
			return
		}

		role := req.Role
		if role == "" {
			role = models.RoleOperator
		}

		// Для роли оператора проверяем привязку к существующему оператору
		if role == models.RoleOperator && req.OperatorID != nil {
			var operator models.Operator
			if err := db.First(&operator, *req.OperatorID).Error; err != nil {
				c.JSON(http.StatusBadRequest, AuthResponse{Success: false, Message: "Неверный идентификатор оператора"})
				return
			}
			var operatorUser models.User
			if result := db.Where("operator_id = ?", *req.OperatorID).First(&operatorUser); result.Error == nil {
				c.JSON(http.StatusBadRequest, AuthResponse{Success: false, Message: "У этого оператора уже есть пользователь"})
				return
			}
		}

		user := models.User{
			Username:   req.Username,
			Email:      req.Email,
			Role:       role,
			OperatorID: req.OperatorID,
		}
		if err := user.SetPassword(req.Password); err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{Success: false, Message: "Ошибка при обработке пароля"})
			return
		}

		if result := db.Create(&user); result.Error != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{Success: false, Message: "Ошибка при создании пользователя"})
			return
		}

		token, err := utils.GenerateJWT(user.ID, user.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{Success: false, Message: "Ошибка при создании токена"})
			return
		}
		refreshToken, err := utils.GenerateRefreshToken(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{Success: false, Message: "Ошибка при создании токена"})
			return
		}

		c.JSON(http.StatusCreated, AuthResponse{
			Success:      true,
			Token:        token,
			RefreshToken: refreshToken,
			User:         userResponse(&user),
		})
	}
}

// Вход по имени пользователя и паролю
func AuthLogin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, AuthResponse{Success: false, Message: "Неверный формат данных"})
			return
		}

		var user models.User
		if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, AuthResponse{Success: false, Message: "Неверное имя пользователя или пароль"})
			return
		}
		if !user.CheckPassword(req.Password) {
			c.JSON(http.StatusUnauthorized, AuthResponse{Success: false, Message: "Неверное имя пользователя или пароль"})
			return
		}

		token, err := utils.GenerateJWT(user.ID, user.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{Success: false, Message: "Ошибка при создании токена"})
			return
		}
		refreshToken, err := utils.GenerateRefreshToken(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{Success: false, Message: "Ошибка при создании токена"})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success:      true,
			Token:        token,
			RefreshToken: refreshToken,
			User:         userResponse(&user),
		})
	}
}

// Обновление access токена по refresh токену
func AuthRefresh(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, AuthResponse{Success: false, Message: "Поле refresh_token обязательно"})
			return
		}

		claims, err := utils.ValidateRefreshToken(req.RefreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, AuthResponse{Success: false, Message: "Недействительный refresh токен"})
			return
		}
		if services.IsTokenRevoked(c.Request.Context(), req.RefreshToken) {
			c.JSON(http.StatusUnauthorized, AuthResponse{Success: false, Message: "Refresh токен отозван"})
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, AuthResponse{Success: false, Message: "Пользователь не найден"})
			return
		}

		token, err := utils.GenerateJWT(user.ID, user.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{Success: false, Message: "Ошибка при создании токена"})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			Token:   token,
			User:    userResponse(&user),
		})
	}
}

// Выход: отзыв текущего access токена через черный список
func AuthLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, exists := c.Get("token")
		if !exists {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Токен не найден"})
			return
		}

		if err := services.RevokeToken(c.Request.Context(), token.(string), utils.AccessTokenTTL()); err != nil {
			log.Printf("Ошибка отзыва токена: %v", err)
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Выход выполнен, но токен не отозван",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Выход выполнен"})
	}
}

// Информация о текущем пользователе
func GetCurrentUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := c.Get("user_id")

		// Для системного админ-токена пользователя в базе нет
		if userID.(uint) == 0 {
			role, _ := c.Get("role")
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"user": gin.H{
					"id":   0,
					"role": role,
					"time": time.Now().Format(time.RFC3339),
				},
			})
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Пользователь не найден"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": userResponse(&user)})
	}
}
