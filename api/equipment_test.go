package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"backend_uchet/models"
	"backend_uchet/testutils"
)

func setupEquipmentTestAPI(t *testing.T) (*gin.Engine, *gorm.DB, models.EquipmentCategory) {
	gin.SetMode(gin.TestMode)

	db, err := testutils.SetupTestDB()
	require.NoError(t, err)

	category := models.EquipmentCategory{Name: "Инструменты"}
	require.NoError(t, db.Create(&category).Error)

	api := NewEquipmentAPI(db)

	router := gin.New()
	router.POST("/api/equipment", api.CreateEquipment)
	router.GET("/api/equipment", api.GetEquipment)
	router.GET("/api/equipment/:id", api.GetEquipmentItem)
	router.PUT("/api/equipment/:id", api.UpdateEquipment)
	router.DELETE("/api/equipment/:id", api.DeleteEquipment)
	router.POST("/api/equipment-categories", api.CreateEquipmentCategory)
	router.GET("/api/equipment-categories", api.GetEquipmentCategories)
	router.DELETE("/api/equipment-categories/:id", api.DeleteEquipmentCategory)

	return router, db, category
}

func TestEquipmentAPI_CreateEquipmentDefaults(t *testing.T) {
	router, db, category := setupEquipmentTestAPI(t)

	body, _ := json.Marshal(map[string]interface{}{
		"name":        "Перфоратор",
		"quantity":    "1",
		"category_id": category.ID,
	})
	req := httptest.NewRequest("POST", "/api/equipment", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var equipment models.Equipment
	require.NoError(t, db.Where("name = ?", "Перфоратор").First(&equipment).Error)
	assert.Equal(t, models.EquipmentStatusInUse, equipment.Status)
	assert.Equal(t, models.EquipmentUnitPieces, equipment.Unit)
	// Отдел не указан: оборудование числится на складе
	assert.Nil(t, equipment.DepartmentID)
}

func TestEquipmentAPI_CreateEquipmentBadStatus(t *testing.T) {
	router, _, category := setupEquipmentTestAPI(t)

	body, _ := json.Marshal(map[string]interface{}{
		"name":        "Лестница",
		"quantity":    "1",
		"status":      "lost",
		"category_id": category.ID,
	})
	req := httptest.NewRequest("POST", "/api/equipment", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEquipmentAPI_GetEquipmentWarehouseFilter(t *testing.T) {
	router, db, category := setupEquipmentTestAPI(t)

	dept := models.Department{Name: "Бригада 1"}
	require.NoError(t, db.Create(&dept).Error)

	assigned := models.Equipment{
		Name: "Сварочный аппарат", Status: models.EquipmentStatusInUse,
		Unit: models.EquipmentUnitPieces, Quantity: decimal.NewFromInt(1),
		DepartmentID: &dept.ID, CategoryID: category.ID,
	}
	warehouse := models.Equipment{
		Name: "Кабель", Status: models.EquipmentStatusNotInUse,
		Unit: models.EquipmentUnitMeters, Quantity: decimal.NewFromInt(100),
		CategoryID: category.ID,
	}
	require.NoError(t, db.Create(&assigned).Error)
	require.NoError(t, db.Create(&warehouse).Error)

	req := httptest.NewRequest("GET", "/api/equipment?department_id=null", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []models.Equipment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, "Кабель", response.Data[0].Name)
}

func TestEquipmentAPI_DeleteEquipmentFreesSerialNumber(t *testing.T) {
	router, db, category := setupEquipmentTestAPI(t)

	serial := "SN-001"
	old := models.Equipment{
		Name: "Ноутбук", Status: models.EquipmentStatusBroken,
		Unit: models.EquipmentUnitPieces, Quantity: decimal.NewFromInt(1),
		SerialNumber: &serial, CategoryID: category.ID,
	}
	require.NoError(t, db.Create(&old).Error)

	req := httptest.NewRequest("DELETE", "/api/equipment/"+itoa(old.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Серийный номер освобождается для замены списанной единицы
	replacement := models.Equipment{
		Name: "Ноутбук", Status: models.EquipmentStatusInUse,
		Unit: models.EquipmentUnitPieces, Quantity: decimal.NewFromInt(1),
		SerialNumber: &serial, CategoryID: category.ID,
	}
	assert.NoError(t, db.Create(&replacement).Error)
}

func TestEquipmentAPI_DeleteCategoryWithEquipment(t *testing.T) {
	router, db, category := setupEquipmentTestAPI(t)

	equipment := models.Equipment{
		Name: "Генератор", Status: models.EquipmentStatusInUse,
		Unit: models.EquipmentUnitPieces, Quantity: decimal.NewFromInt(1),
		CategoryID: category.ID,
	}
	require.NoError(t, db.Create(&equipment).Error)

	req := httptest.NewRequest("DELETE", "/api/equipment-categories/"+itoa(category.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Категория с оборудованием не удаляется
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, db.First(&models.EquipmentCategory{}, category.ID).Error)
}

func TestEquipmentAPI_DeleteEmptyCategory(t *testing.T) {
	router, db, _ := setupEquipmentTestAPI(t)

	empty := models.EquipmentCategory{Name: "Расходники"}
	require.NoError(t, db.Create(&empty).Error)

	req := httptest.NewRequest("DELETE", "/api/equipment-categories/"+itoa(empty.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	err := db.First(&models.EquipmentCategory{}, empty.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
