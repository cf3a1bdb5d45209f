package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"backend_uchet/models"
	"backend_uchet/services"
)

// FuelAPI представляет API для журнала топливных операций
type FuelAPI struct {
	DB     *gorm.DB
	Ledger *services.LedgerService
}

// NewFuelAPI создает новый экземпляр FuelAPI
func NewFuelAPI(db *gorm.DB, ledger *services.LedgerService) *FuelAPI {
	return &FuelAPI{DB: db, Ledger: ledger}
}

// CreateTransaction записывает топливную операцию в журнал
func (api *FuelAPI) CreateTransaction(c *gin.Context) {
	var transaction models.FuelTransaction
	if err := c.ShouldBindJSON(&transaction); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	if err := api.Ledger.CreateFuelTransaction(&transaction); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Операция успешно записана",
		"data":    transaction,
	})
}

// GetTransactions возвращает журнал топливных операций с фильтрами
func (api *FuelAPI) GetTransactions(c *gin.Context) {
	var transactions []models.FuelTransaction
	query := api.DB.Model(&models.FuelTransaction{}).
		Preload("Department").Preload("Employee")

	if departmentID := c.Query("department_id"); departmentID != "" {
		query = query.Where("department_id = ?", departmentID)
	}
	if fuelType := c.Query("fuel_type"); fuelType != "" {
		query = query.Where("fuel_type = ?", fuelType)
	}
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	page, limit, offset := Pagination(c)

	var total int64
	query.Count(&total)

	if err := query.Order("entry_date DESC, id DESC").Limit(limit).Offset(offset).
		Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении журнала операций"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       transactions,
		"pagination": PaginationResponse(page, limit, total),
	})
}

// DeleteTransaction удаляет запись из журнала топливных операций
func (api *FuelAPI) DeleteTransaction(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var transaction models.FuelTransaction
	if err := api.DB.First(&transaction, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Операция не найдена"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске операции"})
		}
		return
	}

	if err := api.DB.Delete(&transaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении операции"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Операция успешно удалена"})
}

// GetLatestReading возвращает последние показания одометра для
// предзаполнения формы расхода
func (api *FuelAPI) GetLatestReading(c *gin.Context) {
	departmentID, err := strconv.ParseUint(c.Query("department_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Не указан отдел"})
		return
	}
	fuelType := c.Query("fuel_type")
	if !models.IsValidFuelType(fuelType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный вид топлива"})
		return
	}

	transaction, err := api.Ledger.GetLatestFuelReading(uint(departmentID), fuelType)
	if err != nil {
		RespondError(c, err)
		return
	}

	if transaction == nil {
		c.JSON(http.StatusOK, gin.H{"no_prior_data": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"no_prior_data": false,
		"data":          transaction,
	})
}

// GetStatistics возвращает подневную статистику расхода топлива
func (api *FuelAPI) GetStatistics(c *gin.Context) {
	departmentID, err := strconv.ParseUint(c.Query("department_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Не указан отдел"})
		return
	}
	fuelType := c.Query("fuel_type")

	buckets, err := api.Ledger.GetFuelStatistics(uint(departmentID), fuelType)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": buckets})
}

// GetBalance возвращает текущий баланс топлива отдела
func (api *FuelAPI) GetBalance(c *gin.Context) {
	departmentID, err := strconv.ParseUint(c.Query("department_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Не указан отдел"})
		return
	}
	fuelType := c.Query("fuel_type")
	if !models.IsValidFuelType(fuelType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный вид топлива"})
		return
	}

	balance, err := api.Ledger.ComputeFuelBalance(uint(departmentID), fuelType)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"department_id": departmentID,
			"fuel_type":     fuelType,
			"balance":       balance,
		},
	})
}
