package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"backend_uchet/models"
	"backend_uchet/services"
	"backend_uchet/testutils"
)

func setupFuelTestAPI(t *testing.T) (*gin.Engine, *gorm.DB, models.Department) {
	gin.SetMode(gin.TestMode)

	db, err := testutils.SetupTestDB()
	require.NoError(t, err)

	department := models.Department{Name: "Автопарк"}
	require.NoError(t, db.Create(&department).Error)

	ledger := services.NewLedgerService(db, nil)
	api := NewFuelAPI(db, ledger)

	router := gin.New()
	router.POST("/api/fuel", api.CreateTransaction)
	router.GET("/api/fuel", api.GetTransactions)
	router.DELETE("/api/fuel/:id", api.DeleteTransaction)
	router.GET("/api/fuel/latest-reading", api.GetLatestReading)
	router.GET("/api/fuel/statistics", api.GetStatistics)
	router.GET("/api/fuel/balance", api.GetBalance)

	return router, db, department
}

func TestFuelAPI_CreateExpenseComputesTotal(t *testing.T) {
	router, db, department := setupFuelTestAPI(t)

	body, _ := json.Marshal(map[string]interface{}{
		"department_id":    department.ID,
		"fuel_type":        models.FuelTypePetrol,
		"kind":             models.FuelKindExpense,
		"previous_mileage": "1000",
		"current_mileage":  "1040",
		"price_per_unit":   "2",
		"entry_date":       "2024-04-01T00:00:00Z",
	})
	req := httptest.NewRequest("POST", "/api/fuel", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var transaction models.FuelTransaction
	require.NoError(t, db.First(&transaction).Error)
	// Стоимость пересчитана сервером: 40 * 2
	assert.True(t, transaction.TotalAmount.Equal(decimal.NewFromInt(80)))
}

func TestFuelAPI_CreateExpenseBadMileage(t *testing.T) {
	router, _, department := setupFuelTestAPI(t)

	body, _ := json.Marshal(map[string]interface{}{
		"department_id":    department.ID,
		"fuel_type":        models.FuelTypeDiesel,
		"kind":             models.FuelKindExpense,
		"previous_mileage": "2000",
		"current_mileage":  "1900",
		"entry_date":       "2024-04-01T00:00:00Z",
	})
	req := httptest.NewRequest("POST", "/api/fuel", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFuelAPI_GetBalance(t *testing.T) {
	router, db, department := setupFuelTestAPI(t)

	income := models.FuelTransaction{
		DepartmentID: department.ID,
		FuelType:     models.FuelTypePetrol,
		Kind:         models.FuelKindIncome,
		Amount:       decimal.NewFromInt(40),
		EntryDate:    time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&income).Error)

	previous := decimal.NewFromInt(100)
	current := decimal.NewFromInt(150)
	expense := models.FuelTransaction{
		DepartmentID:    department.ID,
		FuelType:        models.FuelTypePetrol,
		Kind:            models.FuelKindExpense,
		PreviousMileage: &previous,
		CurrentMileage:  &current,
		PricePerUnit:    decimal.NewFromInt(1),
		TotalAmount:     decimal.NewFromInt(50),
		EntryDate:       time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&expense).Error)

	req := httptest.NewRequest("GET",
		"/api/fuel/balance?department_id="+itoa(department.ID)+"&fuel_type=petrol", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			Balance decimal.Decimal `json:"balance"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	// Баланс может быть отрицательным: 40 - 50
	assert.True(t, response.Data.Balance.Equal(decimal.NewFromInt(-10)))
}

func TestFuelAPI_GetBalanceUnknownFuelType(t *testing.T) {
	router, _, department := setupFuelTestAPI(t)

	req := httptest.NewRequest("GET",
		"/api/fuel/balance?department_id="+itoa(department.ID)+"&fuel_type=kerosene", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFuelAPI_GetLatestReadingNoPriorData(t *testing.T) {
	router, _, department := setupFuelTestAPI(t)

	req := httptest.NewRequest("GET",
		"/api/fuel/latest-reading?department_id="+itoa(department.ID)+"&fuel_type=diesel", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["no_prior_data"])
}

func TestFuelAPI_DeleteTransaction(t *testing.T) {
	router, db, department := setupFuelTestAPI(t)

	income := models.FuelTransaction{
		DepartmentID: department.ID,
		FuelType:     models.FuelTypeGas,
		Kind:         models.FuelKindIncome,
		Amount:       decimal.NewFromInt(10),
		EntryDate:    time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&income).Error)

	req := httptest.NewRequest("DELETE", "/api/fuel/"+itoa(income.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	err := db.First(&models.FuelTransaction{}, income.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
