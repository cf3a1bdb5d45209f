package services

import "errors"

// Типизированные бизнес-ошибки. Хендлеры транслируют их в HTTP-статусы,
// сами сервисы HTTP не знают.
var (
	// ErrNotFound возвращается, когда запись с указанным ID не существует
	ErrNotFound = errors.New("запись не найдена")

	// ErrProtectedEntity возвращается при попытке удалить служебную запись
	// ("Резерв", "Без должности", "Стажер")
	ErrProtectedEntity = errors.New("служебная запись не подлежит удалению")

	// ErrConstraintViolation возвращается, когда хранилище отклонило запись
	// (дубликат уникального ключа, несуществующий внешний ключ)
	ErrConstraintViolation = errors.New("нарушение ограничения целостности")

	// ErrValidation возвращается при некорректных входных данных до любого
	// обращения к хранилищу
	ErrValidation = errors.New("некорректные данные")
)
