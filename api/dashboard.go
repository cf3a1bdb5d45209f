package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"backend_uchet/models"
	"backend_uchet/services"
)

// DashboardStats структура для сводной статистики
type DashboardStats struct {
	TotalDepartments     int64           `json:"total_departments"`
	TotalEmployees       int64           `json:"total_employees"`
	TotalEquipment       int64           `json:"total_equipment"`
	BrokenEquipment      int64           `json:"broken_equipment"`
	UnassignedEquipment  int64           `json:"unassigned_equipment"`
	ReserveEmployees     int64           `json:"reserve_employees"`
	MonthUtilityTotal    decimal.Decimal `json:"month_utility_total"`
	MonthFuelExpense     decimal.Decimal `json:"month_fuel_expense"`
	LastUpdated          time.Time       `json:"last_updated"`
}

// DashboardAPI представляет API сводной статистики
type DashboardAPI struct {
	DB    *gorm.DB
	Cache *services.CacheService
}

// NewDashboardAPI создает новый экземпляр DashboardAPI
func NewDashboardAPI(db *gorm.DB, cache *services.CacheService) *DashboardAPI {
	return &DashboardAPI{DB: db, Cache: cache}
}

// GetDashboardStats возвращает сводную статистику. Результат кэшируется,
// кэш сбрасывается при записи в журналы.
func (api *DashboardAPI) GetDashboardStats(c *gin.Context) {
	ctx := context.Background()
	cacheKey := services.StatsCacheKey("dashboard")

	if api.Cache != nil {
		var cached DashboardStats
		if found, err := api.Cache.Get(ctx, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"data": cached, "cached": true})
			return
		}
	}

	stats := DashboardStats{LastUpdated: time.Now()}

	api.DB.Model(&models.Department{}).Where("is_sentinel = ?", false).Count(&stats.TotalDepartments)
	api.DB.Model(&models.Employee{}).Count(&stats.TotalEmployees)
	api.DB.Model(&models.Equipment{}).Count(&stats.TotalEquipment)
	api.DB.Model(&models.Equipment{}).Where("status = ?", models.EquipmentStatusBroken).
		Count(&stats.BrokenEquipment)
	api.DB.Model(&models.Equipment{}).Where("department_id IS NULL").
		Count(&stats.UnassignedEquipment)

	// Сотрудники в резервном отделе
	var reserve models.Department
	if err := api.DB.Where("is_sentinel = ?", true).First(&reserve).Error; err == nil {
		api.DB.Model(&models.Employee{}).Where("department_id = ?", reserve.ID).
			Count(&stats.ReserveEmployees)
	}

	// Итоги текущего месяца по журналам
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats.MonthUtilityTotal = decimal.Zero
	var payments []models.UtilityPayment
	if err := api.DB.Where("payment_month >= ?", monthStart).Find(&payments).Error; err == nil {
		for i := range payments {
			stats.MonthUtilityTotal = stats.MonthUtilityTotal.Add(payments[i].Amount)
		}
	}

	stats.MonthFuelExpense = decimal.Zero
	var transactions []models.FuelTransaction
	if err := api.DB.Where("entry_date >= ? AND kind = ?", monthStart, models.FuelKindExpense).
		Find(&transactions).Error; err == nil {
		for i := range transactions {
			stats.MonthFuelExpense = stats.MonthFuelExpense.Add(transactions[i].TotalAmount)
		}
	}

	if api.Cache != nil {
		api.Cache.Set(ctx, cacheKey, stats, services.CacheTTLShort)
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
