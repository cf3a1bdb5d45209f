package models

import (
	"time"

	"gorm.io/gorm"
)

// Канонические названия служебных (защищенных) записей. Строки с флагом
// is_sentinel создаются один раз при старте и не подлежат удалению.
const (
	DepartmentReserveName    = "Резерв"
	PositionUnemployedName   = "Без должности"
	SpecializationInternName = "Стажер"
)

// Исторические названия служебных записей из старых выгрузок. При первом
// запуске такие строки нормализуются к каноническому названию.
var (
	DepartmentReserveLegacyNames    = []string{"Резервный отдел", "Запас", "Reserve"}
	PositionUnemployedLegacyNames   = []string{"Безработный", "Нетрудоустроенный"}
	SpecializationInternLegacyNames = []string{"Стажёр", "Практикант"}
)

// Department представляет отдел организации
type Department struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Name string `json:"name" gorm:"not null;uniqueIndex;type:varchar(100)"`

	// Служебная запись "Резерв": сюда переводятся сотрудники удаленного отдела
	IsSentinel bool `json:"is_sentinel" gorm:"default:false;index"`

	// Связи
	Employees []Employee  `json:"employees,omitempty" gorm:"foreignKey:DepartmentID"`
	Equipment []Equipment `json:"equipment,omitempty" gorm:"foreignKey:DepartmentID"`
	Positions []Position  `json:"positions,omitempty" gorm:"many2many:department_positions;"`
}

// TableName задает имя таблицы для модели Department
func (Department) TableName() string {
	return "departments"
}

// Position представляет должность
type Position struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Title string `json:"title" gorm:"not null;type:varchar(100)"`

	// Служебная запись "Без должности"
	IsSentinel bool `json:"is_sentinel" gorm:"default:false;index"`

	// Связи
	Departments []Department `json:"departments,omitempty" gorm:"many2many:department_positions;"`
	Employees   []Employee   `json:"employees,omitempty" gorm:"foreignKey:PositionID"`
}

// TableName задает имя таблицы для модели Position
func (Position) TableName() string {
	return "positions"
}
