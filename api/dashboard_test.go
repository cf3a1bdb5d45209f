package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend_uchet/models"
	"backend_uchet/services"
	"backend_uchet/testutils"
)

func TestDashboardAPI_GetDashboardStats(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := testutils.SetupTestDB()
	require.NoError(t, err)

	structure := services.NewStructureService(db)
	require.NoError(t, structure.EnsureSentinels())

	var intern models.Specialization
	require.NoError(t, db.Where("is_sentinel = ?", true).First(&intern).Error)

	dept := models.Department{Name: "Производство"}
	require.NoError(t, db.Create(&dept).Error)

	require.NoError(t, db.Create(&models.Employee{
		LastName: "Иванов", FirstName: "Иван",
		DepartmentID: &dept.ID, SpecializationID: intern.ID,
	}).Error)

	category := models.EquipmentCategory{Name: "Станки"}
	require.NoError(t, db.Create(&category).Error)

	require.NoError(t, db.Create(&models.Equipment{
		Name: "Станок", Status: models.EquipmentStatusBroken,
		Unit: models.EquipmentUnitPieces, Quantity: decimal.NewFromInt(1),
		CategoryID: category.ID,
	}).Error)

	api := NewDashboardAPI(db, nil)
	router := gin.New()
	router.GET("/api/dashboard/stats", api.GetDashboardStats)

	req := httptest.NewRequest("GET", "/api/dashboard/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data DashboardStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	// Служебный "Резерв" в счетчик отделов не входит
	assert.Equal(t, int64(1), response.Data.TotalDepartments)
	assert.Equal(t, int64(1), response.Data.TotalEmployees)
	assert.Equal(t, int64(1), response.Data.TotalEquipment)
	assert.Equal(t, int64(1), response.Data.BrokenEquipment)
	assert.Equal(t, int64(1), response.Data.UnassignedEquipment)
	assert.False(t, response.Data.LastUpdated.IsZero())
}
