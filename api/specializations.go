package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"backend_uchet/models"
	"backend_uchet/services"
)

// SpecializationAPI представляет API для работы со специальностями
type SpecializationAPI struct {
	DB        *gorm.DB
	Structure *services.StructureService
}

// NewSpecializationAPI создает новый экземпляр SpecializationAPI
func NewSpecializationAPI(db *gorm.DB, structure *services.StructureService) *SpecializationAPI {
	return &SpecializationAPI{DB: db, Structure: structure}
}

// CreateSpecialization создает новую специальность
func (api *SpecializationAPI) CreateSpecialization(c *gin.Context) {
	var spec models.Specialization
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	spec.Name = strings.TrimSpace(spec.Name)
	if spec.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Название специальности не может быть пустым"})
		return
	}
	if len([]rune(spec.Name)) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Название специальности слишком длинное"})
		return
	}

	spec.IsSentinel = false

	if err := api.DB.Create(&spec).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ошибка при создании специальности: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Специальность успешно создана",
		"data":    spec,
	})
}

// GetSpecializations возвращает список специальностей
func (api *SpecializationAPI) GetSpecializations(c *gin.Context) {
	var specs []models.Specialization
	if err := api.DB.Order("name").Find(&specs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка специальностей"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": specs})
}

// UpdateSpecialization обновляет специальность
func (api *SpecializationAPI) UpdateSpecialization(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var spec models.Specialization
	if err := api.DB.First(&spec, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Специальность не найдена"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске специальности"})
		}
		return
	}

	if spec.IsSentinel {
		c.JSON(http.StatusConflict, gin.H{"error": "Служебную специальность нельзя изменить"})
		return
	}

	var updateData struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	updateData.Name = strings.TrimSpace(updateData.Name)
	if updateData.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Название специальности не может быть пустым"})
		return
	}

	spec.Name = updateData.Name
	if err := api.DB.Save(&spec).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ошибка при обновлении специальности: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Специальность успешно обновлена",
		"data":    spec,
	})
}

// DeleteSpecialization удаляет специальность, переводя сотрудников на "Стажер"
func (api *SpecializationAPI) DeleteSpecialization(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	if err := api.Structure.DeleteSpecialization(id); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Специальность успешно удалена"})
}
