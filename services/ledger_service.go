package services

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"backend_uchet/models"
)

// CalendarUnit определяет шаг группировки записей журнала
type CalendarUnit string

const (
	CalendarUnitDay   CalendarUnit = "day"   // ключ вида 2006-01-02 (топливо)
	CalendarUnitMonth CalendarUnit = "month" // ключ вида 2006-01 (коммуналка)
)

// LedgerEntry — одна запись журнала в виде, пригодном для группировки:
// дата, денежная сумма и потребление (дельта показаний или пробега)
type LedgerEntry struct {
	Date   time.Time
	Amount decimal.Decimal
	Delta  decimal.Decimal
}

// LedgerBucket — агрегат по одному календарному интервалу
type LedgerBucket struct {
	Key    string          `json:"key"`
	Amount decimal.Decimal `json:"amount"`
	Delta  decimal.Decimal `json:"delta"`
}

// LedgerService считает производные показатели по журналам платежей:
// последние показания для предзаполнения форм, календарную статистику
// для графиков и текущий баланс топлива
type LedgerService struct {
	DB       *gorm.DB
	Telegram *TelegramClient
}

// NewLedgerService создает новый экземпляр LedgerService
func NewLedgerService(db *gorm.DB, telegram *TelegramClient) *LedgerService {
	return &LedgerService{DB: db, Telegram: telegram}
}

// BucketByCalendarUnit группирует записи журнала по дням или месяцам (UTC)
// и по каждому интервалу независимо суммирует сумму и потребление.
// Интервалы без записей не включаются, результат отсортирован по ключу,
// порядок входных записей на результат не влияет.
func BucketByCalendarUnit(entries []LedgerEntry, unit CalendarUnit) []LedgerBucket {
	layout := "2006-01"
	if unit == CalendarUnitDay {
		layout = "2006-01-02"
	}

	sums := make(map[string]*LedgerBucket)
	for _, entry := range entries {
		key := entry.Date.UTC().Format(layout)
		bucket, ok := sums[key]
		if !ok {
			bucket = &LedgerBucket{Key: key, Amount: decimal.Zero, Delta: decimal.Zero}
			sums[key] = bucket
		}
		bucket.Amount = bucket.Amount.Add(entry.Amount)
		bucket.Delta = bucket.Delta.Add(entry.Delta)
	}

	buckets := make([]LedgerBucket, 0, len(sums))
	for _, bucket := range sums {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

// UtilityLedgerEntries переводит платежи в записи журнала: сумма платежа
// и дельта показаний (с ночной зоной), дата — месяц платежа
func UtilityLedgerEntries(payments []models.UtilityPayment) []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(payments))
	for i := range payments {
		entries = append(entries, LedgerEntry{
			Date:   payments[i].PaymentMonth,
			Amount: payments[i].Amount,
			Delta:  payments[i].ConsumptionDelta(),
		})
	}
	return entries
}

// FuelLedgerEntries переводит расходные топливные операции в записи журнала:
// стоимость и пройденное расстояние, дата — дата операции
func FuelLedgerEntries(transactions []models.FuelTransaction) []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(transactions))
	for i := range transactions {
		entries = append(entries, LedgerEntry{
			Date:   transactions[i].EntryDate,
			Amount: transactions[i].TotalAmount,
			Delta:  transactions[i].MileageDelta(),
		})
	}
	return entries
}

// GetLatestUtilityReading возвращает последний платеж отдела по типу для
// предзаполнения следующей записи. Необязательный beforeMonth ограничивает
// поиск платежами за месяцы строго раньше указанного, что позволяет
// предзаполнять запись задним числом. Если платежей нет, возвращает
// (nil, nil): отсутствие данных не является ошибкой.
func (s *LedgerService) GetLatestUtilityReading(departmentID uint, utilityType string, beforeMonth *time.Time) (*models.UtilityPayment, error) {
	query := s.DB.Where("department_id = ? AND type = ?", departmentID, utilityType)
	if beforeMonth != nil {
		query = query.Where("payment_month < ?", *beforeMonth)
	}

	var payment models.UtilityPayment
	err := query.Order("created_at DESC, id DESC").
		First(&payment).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске последнего платежа: %w", err)
	}
	return &payment, nil
}

// GetLatestFuelReading возвращает последнюю расходную операцию отдела по
// виду топлива для предзаполнения показаний одометра. (nil, nil) — данных нет.
func (s *LedgerService) GetLatestFuelReading(departmentID uint, fuelType string) (*models.FuelTransaction, error) {
	var transaction models.FuelTransaction
	err := s.DB.Where("department_id = ? AND fuel_type = ? AND kind = ?",
		departmentID, fuelType, models.FuelKindExpense).
		Order("created_at DESC, id DESC").
		First(&transaction).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске последней топливной операции: %w", err)
	}
	return &transaction, nil
}

// GetUtilityStatistics возвращает помесячную статистику платежей отдела
func (s *LedgerService) GetUtilityStatistics(departmentID uint, utilityType string) ([]LedgerBucket, error) {
	var payments []models.UtilityPayment
	query := s.DB.Where("department_id = ?", departmentID)
	if utilityType != "" {
		query = query.Where("type = ?", utilityType)
	}
	if err := query.Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении платежей: %w", err)
	}
	return BucketByCalendarUnit(UtilityLedgerEntries(payments), CalendarUnitMonth), nil
}

// GetFuelStatistics возвращает подневную статистику расхода топлива отдела
func (s *LedgerService) GetFuelStatistics(departmentID uint, fuelType string) ([]LedgerBucket, error) {
	var transactions []models.FuelTransaction
	query := s.DB.Where("department_id = ? AND kind = ?", departmentID, models.FuelKindExpense)
	if fuelType != "" {
		query = query.Where("fuel_type = ?", fuelType)
	}
	if err := query.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении топливных операций: %w", err)
	}
	return BucketByCalendarUnit(FuelLedgerEntries(transactions), CalendarUnitDay), nil
}

// ComputeFuelBalance возвращает текущий баланс топлива отдела:
// сумма поступлений минус сумма дельт пробега по расходным операциям.
// Баланс нигде не хранится и всегда пересчитывается из журнала.
func (s *LedgerService) ComputeFuelBalance(departmentID uint, fuelType string) (decimal.Decimal, error) {
	var transactions []models.FuelTransaction
	if err := s.DB.Where("department_id = ? AND fuel_type = ?", departmentID, fuelType).
		Find(&transactions).Error; err != nil {
		return decimal.Zero, fmt.Errorf("ошибка при получении топливных операций: %w", err)
	}

	balance := decimal.Zero
	for i := range transactions {
		switch transactions[i].Kind {
		case models.FuelKindIncome:
			balance = balance.Add(transactions[i].Amount)
		case models.FuelKindExpense:
			balance = balance.Sub(transactions[i].MileageDelta())
		}
	}
	return balance, nil
}

// CreateUtilityPayment проверяет платеж и записывает его в журнал.
// Сумма пересчитывается из показаний и тарифа, чтобы хранимое значение
// всегда совпадало с (current - previous) * price
func (s *LedgerService) CreateUtilityPayment(payment *models.UtilityPayment) error {
	if err := validateUtilityPayment(payment); err != nil {
		return err
	}

	if err := s.checkDepartmentExists(payment.DepartmentID); err != nil {
		return err
	}
	if payment.EmployeeID != nil {
		if err := s.checkEmployeeExists(*payment.EmployeeID); err != nil {
			return err
		}
	}

	payment.Amount = payment.ComputeAmount()

	if err := s.DB.Create(payment).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	return nil
}

// CreateFuelTransaction проверяет топливную операцию и записывает ее в журнал
func (s *LedgerService) CreateFuelTransaction(transaction *models.FuelTransaction) error {
	if err := validateFuelTransaction(transaction); err != nil {
		return err
	}

	if err := s.checkDepartmentExists(transaction.DepartmentID); err != nil {
		return err
	}
	if transaction.EmployeeID != nil {
		if err := s.checkEmployeeExists(*transaction.EmployeeID); err != nil {
			return err
		}
	}

	if transaction.Kind == models.FuelKindExpense {
		transaction.TotalAmount = transaction.ComputeTotalAmount()
	}

	if err := s.DB.Create(transaction).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	return nil
}

func validateUtilityPayment(payment *models.UtilityPayment) error {
	if payment.DepartmentID == 0 {
		return fmt.Errorf("%w: не указан отдел", ErrValidation)
	}
	if !models.IsValidUtilityType(payment.Type) {
		return fmt.Errorf("%w: неизвестный тип платежа %q", ErrValidation, payment.Type)
	}
	if payment.PreviousValue == nil || payment.CurrentValue == nil {
		return fmt.Errorf("%w: не указаны показания счетчика", ErrValidation)
	}
	if payment.CurrentValue.LessThan(*payment.PreviousValue) {
		return fmt.Errorf("%w: текущее показание меньше предыдущего", ErrValidation)
	}
	if (payment.PreviousNightValue == nil) != (payment.CurrentNightValue == nil) {
		return fmt.Errorf("%w: ночные показания указаны не полностью", ErrValidation)
	}
	if payment.PreviousNightValue != nil && payment.CurrentNightValue != nil &&
		payment.CurrentNightValue.LessThan(*payment.PreviousNightValue) {
		return fmt.Errorf("%w: текущее ночное показание меньше предыдущего", ErrValidation)
	}
	if !payment.PricePerUnit.IsPositive() {
		return fmt.Errorf("%w: тариф должен быть положительным", ErrValidation)
	}
	if payment.PaymentMonth.IsZero() {
		return fmt.Errorf("%w: не указан месяц платежа", ErrValidation)
	}
	return nil
}

func validateFuelTransaction(transaction *models.FuelTransaction) error {
	if transaction.DepartmentID == 0 {
		return fmt.Errorf("%w: не указан отдел", ErrValidation)
	}
	if !models.IsValidFuelType(transaction.FuelType) {
		return fmt.Errorf("%w: неизвестный вид топлива %q", ErrValidation, transaction.FuelType)
	}
	if !models.IsValidFuelKind(transaction.Kind) {
		return fmt.Errorf("%w: неизвестный вид операции %q", ErrValidation, transaction.Kind)
	}
	if transaction.EntryDate.IsZero() {
		return fmt.Errorf("%w: не указана дата операции", ErrValidation)
	}

	switch transaction.Kind {
	case models.FuelKindIncome:
		if !transaction.Amount.IsPositive() {
			return fmt.Errorf("%w: объем поступления должен быть положительным", ErrValidation)
		}
	case models.FuelKindExpense:
		if transaction.PreviousMileage == nil || transaction.CurrentMileage == nil {
			return fmt.Errorf("%w: не указаны показания одометра", ErrValidation)
		}
		if transaction.CurrentMileage.LessThan(*transaction.PreviousMileage) {
			return fmt.Errorf("%w: текущий пробег меньше предыдущего", ErrValidation)
		}
	}
	return nil
}

func (s *LedgerService) checkDepartmentExists(id uint) error {
	var count int64
	if err := s.DB.Model(&models.Department{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("ошибка при проверке отдела: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *LedgerService) checkEmployeeExists(id uint) error {
	var count int64
	if err := s.DB.Model(&models.Employee{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("ошибка при проверке сотрудника: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// CheckMissingMonthlyPayments находит отделы без коммунальных платежей за
// текущий месяц и отправляет напоминание. Запускается планировщиком.
func (s *LedgerService) CheckMissingMonthlyPayments() error {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	missing, err := s.departmentsWithoutPayments(monthStart)
	if err != nil {
		return err
	}

	for _, dept := range missing {
		message := fmt.Sprintf("Отдел %q: нет коммунальных платежей за %s",
			dept.Name, monthStart.Format("01.2006"))
		log.Printf("⚠️  %s", message)

		if s.Telegram != nil {
			if err := s.Telegram.SendReminder(message); err != nil {
				log.Printf("Ошибка отправки напоминания в Telegram: %v", err)
			}
		}
	}

	return nil
}

// departmentsWithoutPayments возвращает отделы без платежей за месяц,
// начинающийся с monthStart. Учитываются только платежи внутри этого
// месяца, запись с будущей датой напоминание не гасит.
func (s *LedgerService) departmentsWithoutPayments(monthStart time.Time) ([]models.Department, error) {
	monthEnd := monthStart.AddDate(0, 1, 0)

	var departments []models.Department
	if err := s.DB.Where("is_sentinel = ?", false).Find(&departments).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении отделов: %w", err)
	}

	missing := make([]models.Department, 0)
	for _, dept := range departments {
		var count int64
		if err := s.DB.Model(&models.UtilityPayment{}).
			Where("department_id = ? AND payment_month >= ? AND payment_month < ?",
				dept.ID, monthStart, monthEnd).
			Count(&count).Error; err != nil {
			log.Printf("Ошибка при проверке платежей отдела %q: %v", dept.Name, err)
			continue
		}
		if count == 0 {
			missing = append(missing, dept)
		}
	}
	return missing, nil
}
