package handlers

import (
	"net/http"
	"strconv"

	"habitflow/cache"
	"habitflow/db"
	"habitflow/middleware"
	"habitflow/models"
	"habitflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type categoryInput struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
	Icon  string `json:"icon"`
}

func GetCategories(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var categories []models.Category
	if err := db.DB.Where("user_id = ?", currentUser.ID).Find(&categories).Error; err != nil {
		utils.Logger.Error("get_categories_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении категорий"})
		return
	}

	c.JSON(http.StatusOK, categories)
}

func GetCategory(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	category, found := ownedCategory(c, currentUser.ID)
	if !found {
		return
	}

	c.JSON(http.StatusOK, category)
}

func CreateCategory(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input categoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}
	if err := middleware.ValidateStruct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.Category{
		UserID: currentUser.ID,
		Name:   input.Name,
		Icon:   models.ParseIcon(input.Icon),
	}
	if input.Color != "" {
		category.Color = input.Color
	}

	if err := db.DB.Create(&category).Error; err != nil {
		utils.Logger.Error("create_category_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании категории"})
		return
	}

	cache.Default.InvalidateCategories(currentUser.ID)
	c.JSON(http.StatusCreated, category)
}

func UpdateCategory(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	category, found := ownedCategory(c, currentUser.ID)
	if !found {
		return
	}

	var input struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
		Icon  *string `json:"icon"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if input.Color != nil {
		if err := middleware.ValidateVar(*input.Color, "hexcolor"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Недопустимый цвет"})
			return
		}
	}

	if input.Name != nil {
		category.Name = *input.Name
	}
	if input.Color != nil {
		category.Color = *input.Color
	}
	if input.Icon != nil {
		category.Icon = models.ParseIcon(*input.Icon)
	}

	if err := db.DB.Save(&category).Error; err != nil {
		utils.Logger.Error("update_category_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	cache.Default.InvalidateCategories(currentUser.ID)
	c.JSON(http.StatusOK, category)
}

func DeleteCategory(c *gin.Context) {
	currentUser, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	category, found := ownedCategory(c, currentUser.ID)
	if !found {
		return
	}

	// Снимаем связи с привычками перед удалением
	if err := db.DB.Exec("DELETE FROM habit_categories WHERE category_id = ?", category.ID).Error; err != nil {
		utils.Logger.Warn("clear_category_links_failed", zap.Error(err))
	}

	if err := db.DB.Delete(&category).Error; err != nil {
		utils.Logger.Error("delete_category_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	cache.Default.InvalidateCategories(currentUser.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

func ownedCategory(c *gin.Context, userID uint) (models.Category, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
		return models.Category{}, false
	}

	var category models.Category
	if err := db.DB.Where("user_id = ?", userID).First(&category, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return models.Category{}, false
	}
	return category, true
}
