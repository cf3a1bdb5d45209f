package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"backend_uchet/models"
	"backend_uchet/services"
)

// PositionAPI представляет API для работы с должностями
type PositionAPI struct {
	DB        *gorm.DB
	Structure *services.StructureService
}

// NewPositionAPI создает новый экземпляр PositionAPI
func NewPositionAPI(db *gorm.DB, structure *services.StructureService) *PositionAPI {
	return &PositionAPI{DB: db, Structure: structure}
}

// CreatePosition создает новую должность с привязкой к отделам
func (api *PositionAPI) CreatePosition(c *gin.Context) {
	var request struct {
		Title         string `json:"title"`
		DepartmentIDs []uint `json:"department_ids"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	request.Title = strings.TrimSpace(request.Title)
	if request.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Название должности не может быть пустым"})
		return
	}

	position := models.Position{Title: request.Title}

	if len(request.DepartmentIDs) > 0 {
		var departments []models.Department
		if err := api.DB.Find(&departments, request.DepartmentIDs).Error; err != nil ||
			len(departments) != len(request.DepartmentIDs) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Один из указанных отделов не найден"})
			return
		}
		position.Departments = departments
	}

	if err := api.DB.Create(&position).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ошибка при создании должности: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Должность успешно создана",
		"data":    position,
	})
}

// GetPositions возвращает список должностей
func (api *PositionAPI) GetPositions(c *gin.Context) {
	var positions []models.Position
	query := api.DB.Model(&models.Position{}).Preload("Departments")

	if departmentID := c.Query("department_id"); departmentID != "" {
		query = query.Joins("JOIN department_positions ON department_positions.position_id = positions.id").
			Where("department_positions.department_id = ?", departmentID)
	}

	page, limit, offset := Pagination(c)

	var total int64
	query.Count(&total)

	if err := query.Order("title").Limit(limit).Offset(offset).Find(&positions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка должностей"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       positions,
		"pagination": PaginationResponse(page, limit, total),
	})
}

// GetPosition возвращает должность по ID
func (api *PositionAPI) GetPosition(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var position models.Position
	if err := api.DB.Preload("Departments").Preload("Employees").First(&position, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Должность не найдена"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске должности"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": position})
}

// UpdatePosition обновляет должность и ее привязку к отделам
func (api *PositionAPI) UpdatePosition(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var position models.Position
	if err := api.DB.First(&position, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Должность не найдена"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске должности"})
		}
		return
	}

	if position.IsSentinel {
		c.JSON(http.StatusConflict, gin.H{"error": "Служебную должность нельзя изменить"})
		return
	}

	var request struct {
		Title         *string `json:"title"`
		DepartmentIDs *[]uint `json:"department_ids"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	if request.Title != nil {
		title := strings.TrimSpace(*request.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Название должности не может быть пустым"})
			return
		}
		position.Title = title
	}

	if err := api.DB.Save(&position).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ошибка при обновлении должности: " + err.Error()})
		return
	}

	if request.DepartmentIDs != nil {
		var departments []models.Department
		if len(*request.DepartmentIDs) > 0 {
			if err := api.DB.Find(&departments, *request.DepartmentIDs).Error; err != nil ||
				len(departments) != len(*request.DepartmentIDs) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Один из указанных отделов не найден"})
				return
			}
		}
		if err := api.DB.Model(&position).Association("Departments").Replace(departments); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении связей должности"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Должность успешно обновлена",
		"data":    position,
	})
}

// DeletePosition удаляет должность, переводя сотрудников на "Без должности"
func (api *PositionAPI) DeletePosition(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	if err := api.Structure.DeletePosition(id); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Должность успешно удалена"})
}
