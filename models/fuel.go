package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Виды топлива
const (
	FuelTypePetrol = "petrol"
	FuelTypeDiesel = "diesel"
	FuelTypeGas    = "gas"
)

// Виды топливных операций
const (
	FuelKindIncome  = "income"  // поступление топлива
	FuelKindExpense = "expense" // расход по пробегу
)

// FuelTransaction представляет операцию по топливу: поступление (income)
// с суммой или расход (expense) с показаниями пробега. Баланс топлива
// всегда пересчитывается из журнала операций.
type FuelTransaction struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`

	DepartmentID uint        `json:"department_id" gorm:"not null;index"`
	Department   *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`

	EmployeeID *uint     `json:"employee_id" gorm:"index"`
	Employee   *Employee `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`

	FuelType string `json:"fuel_type" gorm:"not null;type:varchar(20);index"` // petrol, diesel, gas
	Kind     string `json:"kind" gorm:"not null;type:varchar(10);index"`      // income, expense

	// Для поступления: объем поступившего топлива
	Amount decimal.Decimal `json:"amount" gorm:"type:decimal(12,3)"`

	// Для расхода: показания одометра до и после
	PreviousMileage *decimal.Decimal `json:"previous_mileage" gorm:"type:decimal(12,3)"`
	CurrentMileage  *decimal.Decimal `json:"current_mileage" gorm:"type:decimal(12,3)"`

	PricePerUnit decimal.Decimal `json:"price_per_unit" gorm:"type:decimal(10,2)"`
	TotalAmount  decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,3)"`

	ReceiptImage string `json:"receipt_image" gorm:"type:varchar(255)"`

	// Дата операции
	EntryDate time.Time `json:"entry_date" gorm:"not null;index"`
}

// TableName задает имя таблицы для модели FuelTransaction
func (FuelTransaction) TableName() string {
	return "fuel_transactions"
}

// MileageDelta возвращает пройденное расстояние для расходной операции.
// Отрицательная дельта не обрезается.
func (t *FuelTransaction) MileageDelta() decimal.Decimal {
	if t.PreviousMileage == nil || t.CurrentMileage == nil {
		return decimal.Zero
	}
	return t.CurrentMileage.Sub(*t.PreviousMileage)
}

// ComputeTotalAmount вычисляет стоимость расходной операции по дельте
// пробега и тарифу
func (t *FuelTransaction) ComputeTotalAmount() decimal.Decimal {
	return t.MileageDelta().Mul(t.PricePerUnit).Round(3)
}

// IsValidFuelType проверяет корректность вида топлива
func IsValidFuelType(fuelType string) bool {
	switch fuelType {
	case FuelTypePetrol, FuelTypeDiesel, FuelTypeGas:
		return true
	}
	return false
}

// IsValidFuelKind проверяет корректность вида топливной операции
func IsValidFuelKind(kind string) bool {
	switch kind {
	case FuelKindIncome, FuelKindExpense:
		return true
	}
	return false
}
