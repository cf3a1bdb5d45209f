package models

import (
	"time"

	"gorm.io/gorm"
)

// Specialization представляет специальность сотрудника
type Specialization struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Name string `json:"name" gorm:"not null;type:varchar(100)"`

	// Служебная запись "Стажер": специальность обязательна, при удалении
	// специальности сотрудники переводятся сюда, а не в NULL
	IsSentinel bool `json:"is_sentinel" gorm:"default:false;index"`

	// Связи
	Employees []Employee `json:"employees,omitempty" gorm:"foreignKey:SpecializationID"`
}

// TableName задает имя таблицы для модели Specialization
func (Specialization) TableName() string {
	return "specializations"
}

// Employee представляет сотрудника
type Employee struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Основная информация
	LastName   string `json:"last_name" gorm:"not null;type:varchar(50)"`
	FirstName  string `json:"first_name" gorm:"not null;type:varchar(50)"`
	MiddleName string `json:"middle_name" gorm:"type:varchar(50)"`
	Phone      string `json:"phone" gorm:"type:varchar(20)"`

	// Должность и отдел могут отсутствовать (NULL = не назначен)
	PositionID *uint     `json:"position_id" gorm:"index"`
	Position   *Position `json:"position,omitempty" gorm:"foreignKey:PositionID"`

	DepartmentID *uint       `json:"department_id" gorm:"index"`
	Department   *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`

	// Специальность обязательна и никогда не бывает NULL
	SpecializationID uint            `json:"specialization_id" gorm:"not null;index"`
	Specialization   *Specialization `json:"specialization,omitempty" gorm:"foreignKey:SpecializationID"`
}

// TableName задает имя таблицы для модели Employee
func (Employee) TableName() string {
	return "employees"
}

// GetFullName возвращает полное имя сотрудника
func (e *Employee) GetFullName() string {
	fullName := e.LastName + " " + e.FirstName
	if e.MiddleName != "" {
		fullName += " " + e.MiddleName
	}
	return fullName
}
