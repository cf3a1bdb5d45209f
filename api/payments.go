package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"backend_uchet/models"
	"backend_uchet/services"
)

// PaymentAPI представляет API для журнала коммунальных платежей
type PaymentAPI struct {
	DB          *gorm.DB
	Ledger      *services.LedgerService
	Cache       *services.CacheService
	ReceiptsDir string
}

// NewPaymentAPI создает новый экземпляр PaymentAPI
func NewPaymentAPI(db *gorm.DB, ledger *services.LedgerService, cache *services.CacheService, receiptsDir string) *PaymentAPI {
	return &PaymentAPI{DB: db, Ledger: ledger, Cache: cache, ReceiptsDir: receiptsDir}
}

// CreatePayment записывает коммунальный платеж в журнал. Сумма
// пересчитывается сервисом из показаний и тарифа.
func (api *PaymentAPI) CreatePayment(c *gin.Context) {
	var payment models.UtilityPayment
	if err := c.ShouldBindJSON(&payment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	if err := api.Ledger.CreateUtilityPayment(&payment); err != nil {
		RespondError(c, err)
		return
	}

	// Статистика изменилась, сбрасываем кэш
	if api.Cache != nil {
		api.Cache.InvalidateStats(context.Background())
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Платеж успешно записан",
		"data":    payment,
	})
}

// GetPayments возвращает журнал платежей с фильтрами
func (api *PaymentAPI) GetPayments(c *gin.Context) {
	var payments []models.UtilityPayment
	query := api.DB.Model(&models.UtilityPayment{}).
		Preload("Department").Preload("Employee")

	if departmentID := c.Query("department_id"); departmentID != "" {
		query = query.Where("department_id = ?", departmentID)
	}
	if paymentType := c.Query("type"); paymentType != "" {
		query = query.Where("type = ?", paymentType)
	}
	if monthFrom := c.Query("month_from"); monthFrom != "" {
		query = query.Where("payment_month >= ?", monthFrom)
	}
	if monthTo := c.Query("month_to"); monthTo != "" {
		query = query.Where("payment_month <= ?", monthTo)
	}

	page, limit, offset := Pagination(c)

	var total int64
	query.Count(&total)

	if err := query.Order("payment_month DESC, id DESC").Limit(limit).Offset(offset).
		Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении журнала платежей"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       payments,
		"pagination": PaginationResponse(page, limit, total),
	})
}

// DeletePayment удаляет запись из журнала платежей
func (api *PaymentAPI) DeletePayment(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var payment models.UtilityPayment
	if err := api.DB.First(&payment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Платеж не найден"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске платежа"})
		}
		return
	}

	if err := api.DB.Delete(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении платежа"})
		return
	}

	if api.Cache != nil {
		api.Cache.InvalidateStats(context.Background())
	}

	c.JSON(http.StatusOK, gin.H{"message": "Платеж успешно удален"})
}

// GetLatestReading возвращает последние показания для предзаполнения формы.
// Параметр before_month (ГГГГ-ММ) ограничивает поиск более ранними месяцами.
// Отсутствие данных не является ошибкой: возвращается no_prior_data.
func (api *PaymentAPI) GetLatestReading(c *gin.Context) {
	departmentID, err := strconv.ParseUint(c.Query("department_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Не указан отдел"})
		return
	}
	paymentType := c.Query("type")
	if !models.IsValidUtilityType(paymentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный тип платежа"})
		return
	}

	var beforeMonth *time.Time
	if raw := c.Query("before_month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный месяц, ожидается формат ГГГГ-ММ"})
			return
		}
		beforeMonth = &parsed
	}

	payment, err := api.Ledger.GetLatestUtilityReading(uint(departmentID), paymentType, beforeMonth)
	if err != nil {
		RespondError(c, err)
		return
	}

	if payment == nil {
		c.JSON(http.StatusOK, gin.H{"no_prior_data": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"no_prior_data": false,
		"data":          payment,
	})
}

// GetStatistics возвращает помесячную статистику платежей для графиков
func (api *PaymentAPI) GetStatistics(c *gin.Context) {
	departmentID, err := strconv.ParseUint(c.Query("department_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Не указан отдел"})
		return
	}
	paymentType := c.Query("type")

	buckets, err := api.Ledger.GetUtilityStatistics(uint(departmentID), paymentType)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": buckets})
}

// UploadReceipt сохраняет фото квитанции и привязывает его к платежу.
// Файл получает уникальное имя, чтобы исключить коллизии загрузок.
func (api *PaymentAPI) UploadReceipt(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var payment models.UtilityPayment
	if err := api.DB.First(&payment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Платеж не найден"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при поиске платежа"})
		}
		return
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Файл квитанции не передан"})
		return
	}

	if err := os.MkdirAll(api.ReceiptsDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка создания каталога загрузок"})
		return
	}

	fileName := uuid.New().String() + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(api.ReceiptsDir, fileName)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка сохранения файла"})
		return
	}

	payment.ReceiptImage = fileName
	if err := api.DB.Save(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка привязки квитанции к платежу"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Квитанция успешно загружена",
		"data":    gin.H{"receipt_image": fileName},
	})
}
