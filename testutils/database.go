package testutils

import (
	"backend_uchet/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB создает и настраивает тестовую базу данных в памяти.
// Эта функция должна использоваться во всех тестах для обеспечения
// консистентности схемы.
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Выполняем миграции в правильном порядке
	err = db.AutoMigrate(
		// Справочники без зависимостей
		&models.Specialization{},
		&models.Position{},
		&models.Department{},
		&models.EquipmentCategory{},

		// Зависимые сущности
		&models.Employee{},
		&models.Equipment{},

		// Журналы платежей
		&models.UtilityPayment{},
		&models.FuelTransaction{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
