package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"backend_uchet/models"
	"backend_uchet/services"
)

// DepartmentAPI представляет API для работы с отделами
type DepartmentAPI struct {
	DB        *gorm.DB
	Structure *services.StructureService
}

// NewDepartmentAPI создает новый экземпляр DepartmentAPI
func NewDepartmentAPI(db *gorm.DB, structure *services.StructureService) *DepartmentAPI {
	return &DepartmentAPI{DB: db, Structure: structure}
}

// CreateDepartment создает новый отдел
func (api *DepartmentAPI) CreateDepartment(c *gin.Context) {
	var dept models.Department
	if err := c.ShouldBindJSON(&dept); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	dept.Name = strings.TrimSpace(dept.Name)
	if dept.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Название отдела не может быть пустым"})
		return
	}

	// Флаг служебной записи выставляется только при начальной инициализации
	dept.IsSentinel = false

	if err := api.DB.Create(&dept).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ошибка при создании отдела: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Отдел успешно создан",
		"data":    dept,
	})
}

// GetDepartments возвращает список отделов
func (api *DepartmentAPI) GetDepartments(c *gin.Context) {
	var departments []models.Department
	query := api.DB.Model(&models.Department{})

	if name := c.Query("name"); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	page, limit, offset := Pagination(c)

	var total int64
	query.Count(&total)

	if err := query.Order("name").Limit(limit).Offset(offset).Find(&departments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка отделов"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       departments,
		"pagination": PaginationResponse(page, limit, total),
	})
}

// GetDepartment возвращает отдел с сотрудниками, оборудованием и должностями
func (api *DepartmentAPI) GetDepartment(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var dept models.Department
	if err := api.DB.Preload("Employees").Preload("Equipment").Preload("Positions").
		First(&dept, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Отдел не найден"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске отдела"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dept})
}

// UpdateDepartment обновляет отдел
func (api *DepartmentAPI) UpdateDepartment(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var dept models.Department
	if err := api.DB.First(&dept, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Отдел не найден"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске отдела"})
		}
		return
	}

	if dept.IsSentinel {
		c.JSON(http.StatusConflict, gin.H{"error": "Служебный отдел нельзя переименовать"})
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
		c.JSON(http.StatusBadRequest, gin.H{"error": "Название отдела не может быть пустым"})
		return
	}

	dept.Name = updateData.Name
	if err := api.DB.Save(&dept).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ошибка при обновлении отдела: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Отдел успешно обновлен",
		"data":    dept,
	})
}

// DeleteDepartment удаляет отдел. Сотрудники переводятся в "Резерв",
// оборудование снимается с отдела.
func (api *DepartmentAPI) DeleteDepartment(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	if err := api.Structure.DeleteDepartment(id); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Отдел успешно удален"})
}
