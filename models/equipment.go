package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Статусы оборудования
const (
	EquipmentStatusInUse    = "in_use"
	EquipmentStatusNotInUse = "not_in_use"
	EquipmentStatusBroken   = "broken"
)

// Единицы измерения оборудования
const (
	EquipmentUnitPieces = "pcs"
	EquipmentUnitKg     = "kg"
	EquipmentUnitLiters = "l"
	EquipmentUnitMeters = "m"
)

// EquipmentCategory представляет категорию оборудования для группировки
type EquipmentCategory struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Name        string `json:"name" gorm:"not null;uniqueIndex;type:varchar(100)"`
	Description string `json:"description" gorm:"type:text"`

	// Связи
	Equipment []Equipment `json:"equipment,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName задает имя таблицы для модели EquipmentCategory
func (EquipmentCategory) TableName() string {
	return "equipment_categories"
}

// Equipment представляет единицу оборудования, закрепленную за отделом
type Equipment struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Основные характеристики
	Name         string     `json:"name" gorm:"not null;type:varchar(100)"`
	SerialNumber *string    `json:"serial_number" gorm:"uniqueIndex;type:varchar(100)"`
	PurchaseDate *time.Time `json:"purchase_date"`

	// Статус и количество
	Status   string          `json:"status" gorm:"default:'in_use';type:varchar(20)"` // in_use, not_in_use, broken
	Unit     string          `json:"unit" gorm:"default:'pcs';type:varchar(10)"`      // pcs, kg, l, m
	Quantity decimal.Decimal `json:"quantity" gorm:"type:decimal(10,3);not null"`

	// Отдел может быть не назначен (NULL = на складе).
	// При удалении отдела оборудование переводится в NULL, а не в "Резерв".
	DepartmentID *uint       `json:"department_id" gorm:"index"`
	Department   *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`

	// Категория обязательна
	CategoryID uint               `json:"category_id" gorm:"not null;index"`
	Category   *EquipmentCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`

	// Материально ответственное лицо
	ResponsibleEmployeeID *uint     `json:"responsible_employee_id" gorm:"index"`
	ResponsibleEmployee   *Employee `json:"responsible_employee,omitempty" gorm:"foreignKey:ResponsibleEmployeeID"`
}

// TableName задает имя таблицы для модели Equipment
func (Equipment) TableName() string {
	return "equipment"
}

// IsValidEquipmentStatus проверяет корректность статуса оборудования
func IsValidEquipmentStatus(status string) bool {
	switch status {
	case EquipmentStatusInUse, EquipmentStatusNotInUse, EquipmentStatusBroken:
		return true
	}
	return false
}

// IsValidEquipmentUnit проверяет корректность единицы измерения
func IsValidEquipmentUnit(unit string) bool {
	switch unit {
	case EquipmentUnitPieces, EquipmentUnitKg, EquipmentUnitLiters, EquipmentUnitMeters:
		return true
	}
	return false
}
