package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"backend_uchet/models"
)

// EquipmentAPI представляет API для работы с оборудованием и категориями
type EquipmentAPI struct {
	DB *gorm.DB
}

// NewEquipmentAPI создает новый экземпляр EquipmentAPI
func NewEquipmentAPI(db *gorm.DB) *EquipmentAPI {
	return &EquipmentAPI{DB: db}
}

// checkEquipmentReferences проверяет внешние ключи оборудования перед записью
func (api *EquipmentAPI) checkEquipmentReferences(c *gin.Context, equipment *models.Equipment) bool {
	if equipment.CategoryID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Категория обязательна"})
		return false
	}

	var category models.EquipmentCategory
	if err := api.DB.First(&category, equipment.CategoryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Категория не найдена"})
		return false
	}

	if equipment.DepartmentID != nil {
		var dept models.Department
		if err := api.DB.First(&dept, *equipment.DepartmentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Отдел не найден"})
			return false
		}
	}

	if equipment.ResponsibleEmployeeID != nil {
		var employee models.Employee
		if err := api.DB.First(&employee, *equipment.ResponsibleEmployeeID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ответственный сотрудник не найден"})
			return false
		}
	}

	return true
}

// validateEquipment проверяет поля оборудования
func validateEquipment(c *gin.Context, equipment *models.Equipment) bool {
	equipment.Name = strings.TrimSpace(equipment.Name)
	if equipment.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Наименование оборудования не может быть пустым"})
		return false
	}
	if !models.IsValidEquipmentStatus(equipment.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус оборудования"})
		return false
	}
	if !models.IsValidEquipmentUnit(equipment.Unit) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестная единица измерения"})
		return false
	}
	if !equipment.Quantity.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Количество должно быть положительным"})
		return false
	}
	return true
}

// CreateEquipment создает новую единицу оборудования
func (api *EquipmentAPI) CreateEquipment(c *gin.Context) {
	var equipment models.Equipment
	if err := c.ShouldBindJSON(&equipment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	if equipment.Status == "" {
		equipment.Status = models.EquipmentStatusInUse
	}
	if equipment.Unit == "" {
		equipment.Unit = models.EquipmentUnitPieces
	}

	if !validateEquipment(c, &equipment) || !api.checkEquipmentReferences(c, &equipment) {
		return
	}

	if err := api.DB.Create(&equipment).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ошибка при создании оборудования: " + err.Error()})
		return
	}

	api.DB.Preload("Department").Preload("Category").Preload("ResponsibleEmployee").
		First(&equipment, equipment.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Оборудование успешно создано",
		"data":    equipment,
	})
}

// GetEquipment возвращает список оборудования с фильтрами
func (api *EquipmentAPI) GetEquipment(c *gin.Context) {
	var equipment []models.Equipment
	query := api.DB.Model(&models.Equipment{}).
		Preload("Department").Preload("Category").Preload("ResponsibleEmployee")

	if departmentID := c.Query("department_id"); departmentID != "" {
		if departmentID == "null" {
			// Оборудование на складе (не закреплено за отделом)
			query = query.Where("department_id IS NULL")
		} else {
			query = query.Where("department_id = ?", departmentID)
		}
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	page, limit, offset := Pagination(c)

	var total int64
	query.Count(&total)

	if err := query.Order("name").Limit(limit).Offset(offset).Find(&equipment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка оборудования"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       equipment,
		"pagination": PaginationResponse(page, limit, total),
	})
}

// GetEquipmentItem возвращает единицу оборудования по ID
func (api *EquipmentAPI) GetEquipmentItem(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var equipment models.Equipment
	if err := api.DB.Preload("Department").Preload("Category").Preload("ResponsibleEmployee").
		First(&equipment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Оборудование не найдено"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске оборудования"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": equipment})
}

// UpdateEquipment обновляет единицу оборудования
func (api *EquipmentAPI) UpdateEquipment(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var equipment models.Equipment
	if err := api.DB.First(&equipment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Оборудование не найдено"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске оборудования"})
		}
		return
	}

	var updateData models.Equipment
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	if updateData.Name != "" {
		equipment.Name = updateData.Name
	}
	if updateData.Status != "" {
		equipment.Status = updateData.Status
	}
	if updateData.Unit != "" {
		equipment.Unit = updateData.Unit
	}
	if !updateData.Quantity.IsZero() {
		equipment.Quantity = updateData.Quantity
	}
	if updateData.CategoryID != 0 {
		equipment.CategoryID = updateData.CategoryID
	}
	equipment.SerialNumber = updateData.SerialNumber
	equipment.PurchaseDate = updateData.PurchaseDate
	equipment.DepartmentID = updateData.DepartmentID
	equipment.ResponsibleEmployeeID = updateData.ResponsibleEmployeeID

	if !validateEquipment(c, &equipment) || !api.checkEquipmentReferences(c, &equipment) {
		return
	}

	if err := api.DB.Save(&equipment).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ошибка при обновлении оборудования: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Оборудование успешно обновлено",
		"data":    equipment,
	})
}

// DeleteEquipment удаляет единицу оборудования. Зависимых записей у
// оборудования нет, перевод не требуется.
func (api *EquipmentAPI) DeleteEquipment(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var equipment models.Equipment
	if err := api.DB.First(&equipment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Оборудование не найдено"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске оборудования"})
		}
		return
	}

	// Серийный номер уникален, после мягкого удаления он остался бы занят
	if err := api.DB.Unscoped().Delete(&equipment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении оборудования"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Оборудование успешно удалено"})
}

// CreateEquipmentCategory создает новую категорию оборудования
func (api *EquipmentAPI) CreateEquipmentCategory(c *gin.Context) {
	var category models.EquipmentCategory
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Название категории не может быть пустым"})
		return
	}

	if err := api.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ошибка при создании категории: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Категория успешно создана",
		"data":    category,
	})
}

// GetEquipmentCategories возвращает список категорий оборудования
func (api *EquipmentAPI) GetEquipmentCategories(c *gin.Context) {
	var categories []models.EquipmentCategory
	if err := api.DB.Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка категорий"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// DeleteEquipmentCategory удаляет категорию, если в ней нет оборудования
func (api *EquipmentAPI) DeleteEquipmentCategory(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var category models.EquipmentCategory
	if err := api.DB.First(&category, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Категория не найдена"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске категории"})
		}
		return
	}

	var equipmentCount int64
	api.DB.Model(&models.Equipment{}).Where("category_id = ?", id).Count(&equipmentCount)
	if equipmentCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Нельзя удалить категорию, в которой есть оборудование"})
		return
	}

	if err := api.DB.Delete(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении категории"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Категория успешно удалена"})
}
