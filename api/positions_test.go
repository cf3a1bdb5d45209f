package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"backend_uchet/models"
	"backend_uchet/services"
	"backend_uchet/testutils"
)

func setupPositionTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := testutils.SetupTestDB()
	require.NoError(t, err)

	structure := services.NewStructureService(db)
	require.NoError(t, structure.EnsureSentinels())

	api := NewPositionAPI(db, structure)

	router := gin.New()
	router.POST("/api/positions", api.CreatePosition)
	router.GET("/api/positions", api.GetPositions)
	router.GET("/api/positions/:id", api.GetPosition)
	router.PUT("/api/positions/:id", api.UpdatePosition)
	router.DELETE("/api/positions/:id", api.DeletePosition)

	return router, db
}

func TestPositionAPI_CreatePositionWithDepartments(t *testing.T) {
	router, db := setupPositionTestAPI(t)

	dept := models.Department{Name: "Сервис"}
	require.NoError(t, db.Create(&dept).Error)

	body, _ := json.Marshal(map[string]interface{}{
		"title":          "Инженер",
		"department_ids": []uint{dept.ID},
	})
	req := httptest.NewRequest("POST", "/api/positions", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var position models.Position
	require.NoError(t, db.Preload("Departments").Where("title = ?", "Инженер").First(&position).Error)
	require.Len(t, position.Departments, 1)
	assert.Equal(t, dept.ID, position.Departments[0].ID)
}

func TestPositionAPI_CreatePositionUnknownDepartment(t *testing.T) {
	router, _ := setupPositionTestAPI(t)

	body, _ := json.Marshal(map[string]interface{}{
		"title":          "Техник",
		"department_ids": []uint{9999},
	})
	req := httptest.NewRequest("POST", "/api/positions", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPositionAPI_GetPositionsByDepartment(t *testing.T) {
	router, db := setupPositionTestAPI(t)

	dept := models.Department{Name: "Монтаж"}
	require.NoError(t, db.Create(&dept).Error)

	linked := models.Position{Title: "Монтажник", Departments: []models.Department{dept}}
	require.NoError(t, db.Create(&linked).Error)
	require.NoError(t, db.Create(&models.Position{Title: "Бухгалтер"}).Error)

	req := httptest.NewRequest("GET", "/api/positions?department_id="+itoa(dept.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []models.Position `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, "Монтажник", response.Data[0].Title)
}

func TestPositionAPI_UpdateSentinelForbidden(t *testing.T) {
	router, db := setupPositionTestAPI(t)

	var unemployed models.Position
	require.NoError(t, db.Where("is_sentinel = ?", true).First(&unemployed).Error)

	body, _ := json.Marshal(map[string]interface{}{"title": "Другое название"})
	req := httptest.NewRequest("PUT", "/api/positions/"+itoa(unemployed.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPositionAPI_DeletePosition(t *testing.T) {
	router, db := setupPositionTestAPI(t)

	position := models.Position{Title: "Кладовщик"}
	require.NoError(t, db.Create(&position).Error)

	req := httptest.NewRequest("DELETE", "/api/positions/"+itoa(position.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	err := db.First(&models.Position{}, position.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPositionAPI_DeleteSentinelForbidden(t *testing.T) {
	router, db := setupPositionTestAPI(t)

	var unemployed models.Position
	require.NoError(t, db.Where("is_sentinel = ?", true).First(&unemployed).Error)

	req := httptest.NewRequest("DELETE", "/api/positions/"+itoa(unemployed.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
