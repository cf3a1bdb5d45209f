package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"backend_uchet/models"
)

// EmployeeAPI представляет API для работы с сотрудниками
type EmployeeAPI struct {
	DB *gorm.DB
}

// NewEmployeeAPI создает новый экземпляр EmployeeAPI
func NewEmployeeAPI(db *gorm.DB) *EmployeeAPI {
	return &EmployeeAPI{DB: db}
}

// checkEmployeeReferences проверяет внешние ключи сотрудника перед записью
func (api *EmployeeAPI) checkEmployeeReferences(c *gin.Context, employee *models.Employee) bool {
	if employee.SpecializationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Специальность обязательна"})
		return false
	}

	var spec models.Specialization
	if err := api.DB.First(&spec, employee.SpecializationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Специальность не найдена"})
		return false
	}

	if employee.DepartmentID != nil {
		var dept models.Department
		if err := api.DB.First(&dept, *employee.DepartmentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Отдел не найден"})
			return false
		}
	}

	if employee.PositionID != nil {
		var position models.Position
		if err := api.DB.First(&position, *employee.PositionID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Должность не найдена"})
			return false
		}
	}

	return true
}

// CreateEmployee создает нового сотрудника
func (api *EmployeeAPI) CreateEmployee(c *gin.Context) {
	var employee models.Employee
	if err := c.ShouldBindJSON(&employee); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	employee.LastName = strings.TrimSpace(employee.LastName)
	employee.FirstName = strings.TrimSpace(employee.FirstName)
	if employee.LastName == "" || employee.FirstName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Фамилия и имя обязательны"})
		return
	}

	if !api.checkEmployeeReferences(c, &employee) {
		return
	}

	if err := api.DB.Create(&employee).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ошибка при создании сотрудника: " + err.Error()})
		return
	}

	api.DB.Preload("Department").Preload("Position").Preload("Specialization").
		First(&employee, employee.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Сотрудник успешно создан",
		"data":    employee,
	})
}

// GetEmployees возвращает список сотрудников с фильтрами
func (api *EmployeeAPI) GetEmployees(c *gin.Context) {
	var employees []models.Employee
	query := api.DB.Model(&models.Employee{}).
		Preload("Department").Preload("Position").Preload("Specialization")

	if departmentID := c.Query("department_id"); departmentID != "" {
		query = query.Where("department_id = ?", departmentID)
	}
	if positionID := c.Query("position_id"); positionID != "" {
		query = query.Where("position_id = ?", positionID)
	}
	if specializationID := c.Query("specialization_id"); specializationID != "" {
		query = query.Where("specialization_id = ?", specializationID)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("last_name LIKE ? OR first_name LIKE ?", pattern, pattern)
	}

	page, limit, offset := Pagination(c)

	var total int64
	query.Count(&total)

	if err := query.Order("last_name, first_name").Limit(limit).Offset(offset).
		Find(&employees).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка сотрудников"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       employees,
		"pagination": PaginationResponse(page, limit, total),
	})
}

// GetEmployee возвращает сотрудника по ID
func (api *EmployeeAPI) GetEmployee(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var employee models.Employee
	if err := api.DB.Preload("Department").Preload("Position").Preload("Specialization").
		First(&employee, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Сотрудник не найден"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске сотрудника"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": employee})
}

// UpdateEmployee полностью заменяет данные сотрудника: обязательные поля
// должны присутствовать в запросе, пропущенные необязательные сбрасываются
func (api *EmployeeAPI) UpdateEmployee(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var employee models.Employee
	if err := api.DB.First(&employee, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Сотрудник не найден"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске сотрудника"})
		}
		return
	}

	var updateData models.Employee
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	updateData.LastName = strings.TrimSpace(updateData.LastName)
	updateData.FirstName = strings.TrimSpace(updateData.FirstName)
	if updateData.LastName == "" || updateData.FirstName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Фамилия и имя обязательны"})
		return
	}

	employee.LastName = updateData.LastName
	employee.FirstName = updateData.FirstName
	employee.MiddleName = updateData.MiddleName
	employee.Phone = updateData.Phone
	employee.DepartmentID = updateData.DepartmentID
	employee.PositionID = updateData.PositionID
	employee.SpecializationID = updateData.SpecializationID

	if !api.checkEmployeeReferences(c, &employee) {
		return
	}

	if err := api.DB.Save(&employee).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ошибка при обновлении сотрудника: " + err.Error()})
		return
	}

	api.DB.Preload("Department").Preload("Position").Preload("Specialization").
		First(&employee, employee.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Сотрудник успешно обновлен",
		"data":    employee,
	})
}

// DeleteEmployee удаляет сотрудника
func (api *EmployeeAPI) DeleteEmployee(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var employee models.Employee
	if err := api.DB.First(&employee, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Сотрудник не найден"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске сотрудника"})
		}
		return
	}

	if err := api.DB.Delete(&employee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении сотрудника"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Сотрудник успешно удален"})
}
