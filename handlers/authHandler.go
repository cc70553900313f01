package handlers

import (
	"net/http"

	"habitflow/db"
	"habitflow/middleware"
	"habitflow/models"
	"habitflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=4"`
}

func Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}

	if err := middleware.ValidateStruct(input); err != nil {
		utils.Logger.Warn("register_validation_failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Имя пользователя от 3 до 50 символов, пароль не менее 4",
		})
		return
	}

	var existing models.User
	if err := db.DB.Where("username = ?", input.Username).First(&existing).Error; err == nil {
		utils.Logger.Warn("register_user_exists", zap.String("username", input.Username))
		c.JSON(http.StatusConflict, gin.H{"error": "Пользователь с таким именем уже существует"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.Logger.Error("register_hash_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка хэширования пароля"})
		return
	}

	user := models.User{
		Username:     input.Username,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		utils.Logger.Error("register_db_create_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка создания пользователя"})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		utils.Logger.Error("register_token_generation_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка генерации токена"})
		return
	}

	utils.Logger.Info("register_success",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
	)

	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

func Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}

	var user models.User
	if err := db.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		utils.Logger.Warn("login_user_not_found", zap.String("username", input.Username))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверный логин или пароль"})
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		utils.Logger.Warn("login_incorrect_password", zap.String("username", input.Username))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверный логин или пароль"})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка генерации токена"})
		return
	}

	utils.Logger.Info("user_logged_in", zap.Uint("user_id", user.ID))

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

func Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, user)
}
