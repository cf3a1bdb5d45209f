package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"backend_uchet/models"
	"backend_uchet/services"
	"backend_uchet/testutils"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func setupDepartmentTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := testutils.SetupTestDB()
	require.NoError(t, err)

	structure := services.NewStructureService(db)
	require.NoError(t, structure.EnsureSentinels())

	api := NewDepartmentAPI(db, structure)

	router := gin.New()
	router.POST("/api/departments", api.CreateDepartment)
	router.GET("/api/departments", api.GetDepartments)
	router.GET("/api/departments/:id", api.GetDepartment)
	router.PUT("/api/departments/:id", api.UpdateDepartment)
	router.DELETE("/api/departments/:id", api.DeleteDepartment)

	return router, db
}

func TestDepartmentAPI_CreateDepartment(t *testing.T) {
	router, db := setupDepartmentTestAPI(t)

	body, _ := json.Marshal(map[string]interface{}{"name": "Монтажный отдел"})
	req := httptest.NewRequest("POST", "/api/departments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Отдел успешно создан", response["message"])

	var dept models.Department
	require.NoError(t, db.Where("name = ?", "Монтажный отдел").First(&dept).Error)
	// Флаг служебной записи снаружи выставить нельзя
	assert.False(t, dept.IsSentinel)
}

func TestDepartmentAPI_CreateDepartmentEmptyName(t *testing.T) {
	router, _ := setupDepartmentTestAPI(t)

	body, _ := json.Marshal(map[string]interface{}{"name": "   "})
	req := httptest.NewRequest("POST", "/api/departments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDepartmentAPI_CreateDepartmentDuplicateName(t *testing.T) {
	router, db := setupDepartmentTestAPI(t)

	require.NoError(t, db.Create(&models.Department{Name: "Склад"}).Error)

	body, _ := json.Marshal(map[string]interface{}{"name": "Склад"})
	req := httptest.NewRequest("POST", "/api/departments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDepartmentAPI_GetDepartments(t *testing.T) {
	router, db := setupDepartmentTestAPI(t)

	require.NoError(t, db.Create(&models.Department{Name: "Отдел продаж"}).Error)
	require.NoError(t, db.Create(&models.Department{Name: "Бухгалтерия"}).Error)

	req := httptest.NewRequest("GET", "/api/departments", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []models.Department `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	// Два созданных отдела плюс служебный "Резерв"
	assert.Len(t, response.Data, 3)
}

func TestDepartmentAPI_UpdateSentinelForbidden(t *testing.T) {
	router, db := setupDepartmentTestAPI(t)

	var reserve models.Department
	require.NoError(t, db.Where("is_sentinel = ?", true).First(&reserve).Error)

	body, _ := json.Marshal(map[string]interface{}{"name": "Другое название"})
	req := httptest.NewRequest("PUT", "/api/departments/"+itoa(reserve.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDepartmentAPI_DeleteDepartment(t *testing.T) {
	router, db := setupDepartmentTestAPI(t)

	dept := models.Department{Name: "Временный отдел"}
	require.NoError(t, db.Create(&dept).Error)

	req := httptest.NewRequest("DELETE", "/api/departments/"+itoa(dept.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	err := db.First(&models.Department{}, dept.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDepartmentAPI_DeleteSentinelForbidden(t *testing.T) {
	router, db := setupDepartmentTestAPI(t)

	var reserve models.Department
	require.NoError(t, db.Where("is_sentinel = ?", true).First(&reserve).Error)

	req := httptest.NewRequest("DELETE", "/api/departments/"+itoa(reserve.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Служебный отдел остался на месте
	assert.NoError(t, db.First(&models.Department{}, reserve.ID).Error)
}

func TestDepartmentAPI_DeleteNotFound(t *testing.T) {
	router, _ := setupDepartmentTestAPI(t)

	req := httptest.NewRequest("DELETE", "/api/departments/9999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
