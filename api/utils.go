package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"backend_uchet/services"
)

// ParseID извлекает числовой ID из параметра пути
func ParseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID"})
		return 0, false
	}
	return uint(id), true
}

// RespondError транслирует бизнес-ошибку сервиса в HTTP-ответ
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Запись не найдена"})
	case errors.Is(err, services.ErrProtectedEntity):
		c.JSON(http.StatusConflict, gin.H{"error": "Служебная запись не подлежит удалению"})
	case errors.Is(err, services.ErrConstraintViolation):
		c.JSON(http.StatusConflict, gin.H{"error": "Конфликт данных: " + err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка: " + err.Error()})
	}
}

// Pagination извлекает параметры постраничного вывода из запроса
func Pagination(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit, (page - 1) * limit
}

// PaginationResponse формирует блок пагинации для списочных ответов
func PaginationResponse(page, limit int, total int64) gin.H {
	return gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"pages": (total + int64(limit) - 1) / int64(limit),
	}
}
