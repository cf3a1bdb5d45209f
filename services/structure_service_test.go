package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"backend_uchet/models"
	"backend_uchet/testutils"
)

func setupStructureServiceTest(t *testing.T) (*gorm.DB, *StructureService) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)

	service := NewStructureService(db)
	require.NoError(t, service.EnsureSentinels())

	return db, service
}

func TestStructureService_EnsureSentinels(t *testing.T) {
	db, _ := setupStructureServiceTest(t)

	var reserve models.Department
	err := db.Where("is_sentinel = ?", true).First(&reserve).Error
	assert.NoError(t, err)
	assert.Equal(t, models.DepartmentReserveName, reserve.Name)

	var unemployed models.Position
	err = db.Where("is_sentinel = ?", true).First(&unemployed).Error
	assert.NoError(t, err)
	assert.Equal(t, models.PositionUnemployedName, unemployed.Title)

	var intern models.Specialization
	err = db.Where("is_sentinel = ?", true).First(&intern).Error
	assert.NoError(t, err)
	assert.Equal(t, models.SpecializationInternName, intern.Name)

	// Служебная должность привязана к резервному отделу
	var count int64
	db.Table("department_positions").
		Where("department_id = ? AND position_id = ?", reserve.ID, unemployed.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStructureService_EnsureSentinelsIdempotent(t *testing.T) {
	db, service := setupStructureServiceTest(t)

	// Повторный запуск не создает дубликатов
	assert.NoError(t, service.EnsureSentinels())
	assert.NoError(t, service.EnsureSentinels())

	var deptCount, posCount, specCount int64
	db.Model(&models.Department{}).Where("is_sentinel = ?", true).Count(&deptCount)
	db.Model(&models.Position{}).Where("is_sentinel = ?", true).Count(&posCount)
	db.Model(&models.Specialization{}).Where("is_sentinel = ?", true).Count(&specCount)

	assert.Equal(t, int64(1), deptCount)
	assert.Equal(t, int64(1), posCount)
	assert.Equal(t, int64(1), specCount)
}

func TestStructureService_EnsureSentinelsNormalizesLegacyName(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)

	// Строка со старым названием из исторической выгрузки
	legacy := models.Department{Name: models.DepartmentReserveLegacyNames[0]}
	require.NoError(t, db.Create(&legacy).Error)

	service := NewStructureService(db)
	require.NoError(t, service.EnsureSentinels())

	var reserve models.Department
	require.NoError(t, db.First(&reserve, legacy.ID).Error)
	assert.Equal(t, models.DepartmentReserveName, reserve.Name)
	assert.True(t, reserve.IsSentinel)

	// Новый отдел не создан
	var count int64
	db.Model(&models.Department{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStructureService_DeleteDepartmentReassignsDependents(t *testing.T) {
	db, service := setupStructureServiceTest(t)

	var reserve models.Department
	require.NoError(t, db.Where("is_sentinel = ?", true).First(&reserve).Error)
	var intern models.Specialization
	require.NoError(t, db.Where("is_sentinel = ?", true).First(&intern).Error)

	// Отдел "Альфа" с двумя сотрудниками и одной единицей оборудования
	alpha := models.Department{Name: "Альфа"}
	require.NoError(t, db.Create(&alpha).Error)

	category := models.EquipmentCategory{Name: "Оргтехника"}
	require.NoError(t, db.Create(&category).Error)

	first := models.Employee{
		LastName: "Иванов", FirstName: "Иван",
		DepartmentID: &alpha.ID, SpecializationID: intern.ID,
	}
	second := models.Employee{
		LastName: "Петров", FirstName: "Петр",
		DepartmentID: &alpha.ID, SpecializationID: intern.ID,
	}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	printer := models.Equipment{
		Name:         "Принтер",
		Status:       models.EquipmentStatusInUse,
		Unit:         models.EquipmentUnitPieces,
		Quantity:     decimal.NewFromInt(1),
		DepartmentID: &alpha.ID,
		CategoryID:   category.ID,
	}
	require.NoError(t, db.Create(&printer).Error)

	require.NoError(t, service.DeleteDepartment(alpha.ID))

	// Сотрудники переведены в резервный отдел
	var employees []models.Employee
	require.NoError(t, db.Find(&employees).Error)
	require.Len(t, employees, 2)
	for _, employee := range employees {
		require.NotNil(t, employee.DepartmentID)
		assert.Equal(t, reserve.ID, *employee.DepartmentID)
	}

	// Оборудование снято с отдела
	var equipment models.Equipment
	require.NoError(t, db.First(&equipment, printer.ID).Error)
	assert.Nil(t, equipment.DepartmentID)

	// Отдел больше не существует
	err := db.First(&models.Department{}, alpha.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStructureService_DeleteDepartmentFreesName(t *testing.T) {
	db, service := setupStructureServiceTest(t)

	dept := models.Department{Name: "Альфа"}
	require.NoError(t, db.Create(&dept).Error)
	require.NoError(t, service.DeleteDepartment(dept.ID))

	// Название освобождается: новый отдел с тем же названием создается
	recreated := models.Department{Name: "Альфа"}
	assert.NoError(t, db.Create(&recreated).Error)
	assert.NotEqual(t, dept.ID, recreated.ID)
}

func TestStructureService_DeleteDepartmentProtectsSentinel(t *testing.T) {
	db, service := setupStructureServiceTest(t)

	var reserve models.Department
	require.NoError(t, db.Where("is_sentinel = ?", true).First(&reserve).Error)

	err := service.DeleteDepartment(reserve.ID)
	assert.ErrorIs(t, err, ErrProtectedEntity)

	// Хранилище не изменилось
	var count int64
	db.Model(&models.Department{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStructureService_DeleteDepartmentNotFound(t *testing.T) {
	_, service := setupStructureServiceTest(t)

	err := service.DeleteDepartment(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStructureService_DeletePositionReassignsEmployees(t *testing.T) {
	db, service := setupStructureServiceTest(t)

	var unemployed models.Position
	require.NoError(t, db.Where("is_sentinel = ?", true).First(&unemployed).Error)
	var intern models.Specialization
	require.NoError(t, db.Where("is_sentinel = ?", true).First(&intern).Error)

	driver := models.Position{Title: "Водитель"}
	require.NoError(t, db.Create(&driver).Error)

	employee := models.Employee{
		LastName: "Сидоров", FirstName: "Семен",
		PositionID: &driver.ID, SpecializationID: intern.ID,
	}
	require.NoError(t, db.Create(&employee).Error)

	require.NoError(t, service.DeletePosition(driver.ID))

	var updated models.Employee
	require.NoError(t, db.First(&updated, employee.ID).Error)
	require.NotNil(t, updated.PositionID)
	assert.Equal(t, unemployed.ID, *updated.PositionID)

	err := db.First(&models.Position{}, driver.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStructureService_DeletePositionProtectsSentinel(t *testing.T) {
	db, service := setupStructureServiceTest(t)

	var unemployed models.Position
	require.NoError(t, db.Where("is_sentinel = ?", true).First(&unemployed).Error)

	err := service.DeletePosition(unemployed.ID)
	assert.ErrorIs(t, err, ErrProtectedEntity)
}

func TestStructureService_DeleteSpecializationReassignsEmployees(t *testing.T) {
	db, service := setupStructureServiceTest(t)

	var intern models.Specialization
	require.NoError(t, db.Where("is_sentinel = ?", true).First(&intern).Error)

	welder := models.Specialization{Name: "Сварщик"}
	require.NoError(t, db.Create(&welder).Error)

	employee := models.Employee{
		LastName: "Кузнецов", FirstName: "Олег",
		SpecializationID: welder.ID,
	}
	require.NoError(t, db.Create(&employee).Error)

	require.NoError(t, service.DeleteSpecialization(welder.ID))

	// Специальность обязательна: сотрудник переведен на "Стажер", не в NULL
	var updated models.Employee
	require.NoError(t, db.First(&updated, employee.ID).Error)
	assert.Equal(t, intern.ID, updated.SpecializationID)
}

func TestStructureService_DeleteSpecializationProtectsSentinel(t *testing.T) {
	db, service := setupStructureServiceTest(t)

	var intern models.Specialization
	require.NoError(t, db.Where("is_sentinel = ?", true).First(&intern).Error)

	var before int64
	db.Model(&models.Specialization{}).Count(&before)

	err := service.DeleteSpecialization(intern.ID)
	assert.ErrorIs(t, err, ErrProtectedEntity)

	var after int64
	db.Model(&models.Specialization{}).Count(&after)
	assert.Equal(t, before, after)
}
