package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Типы коммунальных платежей
const (
	UtilityTypeElectricity = "electricity"
	UtilityTypeWater       = "water"
	UtilityTypeGas         = "gas"
	UtilityTypeHeating     = "heating"
)

// UtilityPayment представляет запись о коммунальном платеже отдела.
// Журнал платежей только пополняется, балансы и статистика всегда
// пересчитываются из записей, а не хранятся отдельно.
type UtilityPayment struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`

	DepartmentID uint        `json:"department_id" gorm:"not null;index"`
	Department   *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`

	// Ответственный сотрудник (необязателен)
	EmployeeID *uint     `json:"employee_id" gorm:"index"`
	Employee   *Employee `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`

	Type string `json:"type" gorm:"not null;type:varchar(20);index"` // electricity, water, gas, heating

	// Показания счетчика
	PreviousValue *decimal.Decimal `json:"previous_value" gorm:"type:decimal(12,3)"`
	CurrentValue  *decimal.Decimal `json:"current_value" gorm:"type:decimal(12,3)"`

	// Ночная зона (только для двухзонных счетчиков электроэнергии)
	PreviousNightValue *decimal.Decimal `json:"previous_night_value" gorm:"type:decimal(12,3)"`
	CurrentNightValue  *decimal.Decimal `json:"current_night_value" gorm:"type:decimal(12,3)"`

	// Тариф и итоговая сумма. Сумма хранится избыточно, но на момент записи
	// обязана совпадать с (current - previous) * price_per_unit
	PricePerUnit decimal.Decimal `json:"price_per_unit" gorm:"type:decimal(10,2);not null"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(12,3);not null"`

	// Фото квитанции (имя файла в каталоге загрузок)
	ReceiptImage string `json:"receipt_image" gorm:"type:varchar(255)"`

	// Месяц, за который произведен платеж
	PaymentMonth time.Time `json:"payment_month" gorm:"not null;index"`
}

// TableName задает имя таблицы для модели UtilityPayment
func (UtilityPayment) TableName() string {
	return "utility_payments"
}

// ComputeAmount вычисляет сумму платежа по показаниям и тарифу:
// (current - previous) * price, для двухзонного счетчика прибавляется
// ночная дельта по тому же тарифу. Отрицательная дельта не обрезается.
func (p *UtilityPayment) ComputeAmount() decimal.Decimal {
	amount := decimal.Zero
	if p.PreviousValue != nil && p.CurrentValue != nil {
		amount = p.CurrentValue.Sub(*p.PreviousValue).Mul(p.PricePerUnit)
	}
	if p.PreviousNightValue != nil && p.CurrentNightValue != nil {
		amount = amount.Add(p.CurrentNightValue.Sub(*p.PreviousNightValue).Mul(p.PricePerUnit))
	}
	return amount.Round(3)
}

// ConsumptionDelta возвращает потребление за период: дельта показаний
// плюс дельта ночной зоны, если она есть
func (p *UtilityPayment) ConsumptionDelta() decimal.Decimal {
	delta := decimal.Zero
	if p.PreviousValue != nil && p.CurrentValue != nil {
		delta = p.CurrentValue.Sub(*p.PreviousValue)
	}
	if p.PreviousNightValue != nil && p.CurrentNightValue != nil {
		delta = delta.Add(p.CurrentNightValue.Sub(*p.PreviousNightValue))
	}
	return delta
}

// IsValidUtilityType проверяет корректность типа коммунального платежа
func IsValidUtilityType(utilityType string) bool {
	switch utilityType {
	case UtilityTypeElectricity, UtilityTypeWater, UtilityTypeGas, UtilityTypeHeating:
		return true
	}
	return false
}
