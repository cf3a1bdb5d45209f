package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"backend_uchet/services"
)

// ReportAPI представляет API для выгрузки отчетов
type ReportAPI struct {
	Reports *services.ReportService
}

// NewReportAPI создает новый экземпляр ReportAPI
func NewReportAPI(reports *services.ReportService) *ReportAPI {
	return &ReportAPI{Reports: reports}
}

// ExportReport формирует отчет и отдает файл. Тип отчета задается в пути,
// формат и фильтр по отделу — в query-параметрах.
func (api *ReportAPI) ExportReport(c *gin.Context) {
	reportType := c.Param("type")
	format := c.DefaultQuery("format", services.ReportFormatCSV)

	var departmentID uint
	if raw := c.Query("department_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID отдела"})
			return
		}
		departmentID = uint(parsed)
	}

	filePath, err := api.Reports.ExportReport(reportType, format, departmentID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.FileAttachment(filePath, "report."+format)
}
