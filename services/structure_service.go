package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"backend_uchet/models"
)

// StructureService отвечает за целостность оргструктуры: защищенные
// служебные записи и перевод зависимых строк при удалении отдела,
// должности или специальности. Удаление и перевод выполняются в одной
// транзакции, частичный перевод невозможен.
type StructureService struct {
	DB *gorm.DB
}

// NewStructureService создает новый экземпляр StructureService
func NewStructureService(db *gorm.DB) *StructureService {
	return &StructureService{DB: db}
}

// EnsureSentinels идемпотентно создает служебные записи при старте процесса:
// отдел "Резерв", должность "Без должности" и специальность "Стажер".
// Строки со старыми названиями из исторических выгрузок нормализуются к
// каноническому названию и помечаются флагом is_sentinel. Проверка и
// создание выполняются в транзакции, чтобы одновременный старт нескольких
// экземпляров не породил дубликаты.
func (s *StructureService) EnsureSentinels() error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		reserve, err := s.ensureSentinelDepartment(tx)
		if err != nil {
			return fmt.Errorf("ошибка создания отдела %q: %w", models.DepartmentReserveName, err)
		}

		unemployed, err := s.ensureSentinelPosition(tx)
		if err != nil {
			return fmt.Errorf("ошибка создания должности %q: %w", models.PositionUnemployedName, err)
		}

		if _, err := s.ensureSentinelSpecialization(tx); err != nil {
			return fmt.Errorf("ошибка создания специальности %q: %w", models.SpecializationInternName, err)
		}

		// Связываем "Без должности" с отделом "Резерв", если связи еще нет
		if err := tx.Model(reserve).Association("Positions").Append(unemployed); err != nil {
			return fmt.Errorf("ошибка привязки должности к резервному отделу: %w", err)
		}

		log.Println("✅ Служебные записи проверены")
		return nil
	})
}

func (s *StructureService) ensureSentinelDepartment(tx *gorm.DB) (*models.Department, error) {
	var dept models.Department
	err := tx.Where("is_sentinel = ?", true).First(&dept).Error
	if err == nil {
		return &dept, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	// Ищем строку по каноническому или историческому названию
	names := append([]string{models.DepartmentReserveName}, models.DepartmentReserveLegacyNames...)
	err = tx.Where("name IN ?", names).First(&dept).Error
	if err == nil {
		if dept.Name != models.DepartmentReserveName {
			log.Printf("⚠️  Отдел %q нормализован в %q", dept.Name, models.DepartmentReserveName)
		}
		dept.Name = models.DepartmentReserveName
		dept.IsSentinel = true
		return &dept, tx.Save(&dept).Error
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	dept = models.Department{Name: models.DepartmentReserveName, IsSentinel: true}
	return &dept, tx.Create(&dept).Error
}

func (s *StructureService) ensureSentinelPosition(tx *gorm.DB) (*models.Position, error) {
	var position models.Position
	err := tx.Where("is_sentinel = ?", true).First(&position).Error
	if err == nil {
		return &position, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	titles := append([]string{models.PositionUnemployedName}, models.PositionUnemployedLegacyNames...)
	err = tx.Where("title IN ?", titles).First(&position).Error
	if err == nil {
		if position.Title != models.PositionUnemployedName {
			log.Printf("⚠️  Должность %q нормализована в %q", position.Title, models.PositionUnemployedName)
		}
		position.Title = models.PositionUnemployedName
		position.IsSentinel = true
		return &position, tx.Save(&position).Error
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	position = models.Position{Title: models.PositionUnemployedName, IsSentinel: true}
	return &position, tx.Create(&position).Error
}

func (s *StructureService) ensureSentinelSpecialization(tx *gorm.DB) (*models.Specialization, error) {
	var spec models.Specialization
	err := tx.Where("is_sentinel = ?", true).First(&spec).Error
	if err == nil {
		return &spec, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	names := append([]string{models.SpecializationInternName}, models.SpecializationInternLegacyNames...)
	err = tx.Where("name IN ?", names).First(&spec).Error
	if err == nil {
		if spec.Name != models.SpecializationInternName {
			log.Printf("⚠️  Специальность %q нормализована в %q", spec.Name, models.SpecializationInternName)
		}
		spec.Name = models.SpecializationInternName
		spec.IsSentinel = true
		return &spec, tx.Save(&spec).Error
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	spec = models.Specialization{Name: models.SpecializationInternName, IsSentinel: true}
	return &spec, tx.Create(&spec).Error
}

// GetReserveDepartment возвращает служебный отдел "Резерв"
func (s *StructureService) GetReserveDepartment() (*models.Department, error) {
	var dept models.Department
	if err := s.DB.Where("is_sentinel = ?", true).First(&dept).Error; err != nil {
		return nil, fmt.Errorf("резервный отдел не найден, не выполнен EnsureSentinels: %w", err)
	}
	return &dept, nil
}

// DeleteDepartment удаляет отдел. Перед удалением все сотрудники отдела
// переводятся в "Резерв", а оборудование снимается с отдела (NULL = склад).
// Служебный отдел удалить нельзя.
func (s *StructureService) DeleteDepartment(id uint) error {
	var dept models.Department
	if err := s.DB.First(&dept, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка при поиске отдела: %w", err)
	}

	if dept.IsSentinel {
		return ErrProtectedEntity
	}

	reserve, err := s.GetReserveDepartment()
	if err != nil {
		return err
	}

	tx := s.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Переводим сотрудников в резервный отдел
	if err := tx.Model(&models.Employee{}).
		Where("department_id = ?", dept.ID).
		Update("department_id", reserve.ID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка перевода сотрудников в резерв: %w", err)
	}

	// Снимаем оборудование с отдела
	if err := tx.Model(&models.Equipment{}).
		Where("department_id = ?", dept.ID).
		Update("department_id", nil).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка снятия оборудования с отдела: %w", err)
	}

	// Убираем связи отдела с должностями
	if err := tx.Model(&dept).Association("Positions").Clear(); err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка удаления связей отдела с должностями: %w", err)
	}

	// Удаляем строку окончательно: у отдела уникальное название, мягкое
	// удаление навсегда заняло бы его для новых отделов
	if err := tx.Unscoped().Delete(&dept).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка удаления отдела: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	log.Printf("Отдел %q (ID %d) удален, зависимые записи переведены в резерв", dept.Name, dept.ID)
	return nil
}

// DeletePosition удаляет должность. Сотрудники с этой должностью
// переводятся на "Без должности". Служебную должность удалить нельзя.
func (s *StructureService) DeletePosition(id uint) error {
	var position models.Position
	if err := s.DB.First(&position, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка при поиске должности: %w", err)
	}

	if position.IsSentinel {
		return ErrProtectedEntity
	}

	var unemployed models.Position
	if err := s.DB.Where("is_sentinel = ?", true).First(&unemployed).Error; err != nil {
		return fmt.Errorf("должность %q не найдена, не выполнен EnsureSentinels: %w",
			models.PositionUnemployedName, err)
	}

	tx := s.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&models.Employee{}).
		Where("position_id = ?", position.ID).
		Update("position_id", unemployed.ID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка перевода сотрудников на служебную должность: %w", err)
	}

	if err := tx.Model(&position).Association("Departments").Clear(); err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка удаления связей должности с отделами: %w", err)
	}

	if err := tx.Delete(&position).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка удаления должности: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	log.Printf("Должность %q (ID %d) удалена", position.Title, position.ID)
	return nil
}

// DeleteSpecialization удаляет специальность. Специальность у сотрудника
// обязательна, поэтому сотрудники переводятся на "Стажер", а не в NULL.
func (s *StructureService) DeleteSpecialization(id uint) error {
	var spec models.Specialization
	if err := s.DB.First(&spec, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка при поиске специальности: %w", err)
	}

	if spec.IsSentinel {
		return ErrProtectedEntity
	}

	var intern models.Specialization
	if err := s.DB.Where("is_sentinel = ?", true).First(&intern).Error; err != nil {
		return fmt.Errorf("специальность %q не найдена, не выполнен EnsureSentinels: %w",
			models.SpecializationInternName, err)
	}

	tx := s.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&models.Employee{}).
		Where("specialization_id = ?", spec.ID).
		Update("specialization_id", intern.ID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка перевода сотрудников на служебную специальность: %w", err)
	}

	if err := tx.Delete(&spec).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("ошибка удаления специальности: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	log.Printf("Специальность %q (ID %d) удалена", spec.Name, spec.ID)
	return nil
}
