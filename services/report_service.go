package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"backend_uchet/models"
)

// Типы отчетов
const (
	ReportTypeUtilityPayments  = "utility_payments"
	ReportTypeFuelTransactions = "fuel_transactions"
	ReportTypeEquipment        = "equipment"
)

// Форматы выгрузки отчетов
const (
	ReportFormatCSV   = "csv"
	ReportFormatExcel = "xlsx"
	ReportFormatPDF   = "pdf"
	ReportFormatJSON  = "json"
)

// ReportData содержит данные отчета в табличном виде
type ReportData struct {
	Headers []string                 `json:"headers"`
	Rows    []map[string]interface{} `json:"rows"`
}

// ReportService формирует выгрузки журналов и реестров в файлы
type ReportService struct {
	db         *gorm.DB
	reportsDir string
}

// NewReportService создает новый экземпляр ReportService
func NewReportService(db *gorm.DB, reportsDir string) *ReportService {
	return &ReportService{db: db, reportsDir: reportsDir}
}

// ExportReport собирает данные отчета и сохраняет файл в указанном формате.
// Возвращает путь к созданному файлу. Фильтр по отделу необязателен (0 = все).
func (rs *ReportService) ExportReport(reportType, format string, departmentID uint) (string, error) {
	var data *ReportData
	var err error

	switch reportType {
	case ReportTypeUtilityPayments:
		data, err = rs.buildUtilityPaymentsReport(departmentID)
	case ReportTypeFuelTransactions:
		data, err = rs.buildFuelTransactionsReport(departmentID)
	case ReportTypeEquipment:
		data, err = rs.buildEquipmentReport(departmentID)
	default:
		return "", fmt.Errorf("%w: неизвестный тип отчета %q", ErrValidation, reportType)
	}
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(rs.reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("ошибка создания каталога отчетов: %w", err)
	}

	fileName := fmt.Sprintf("report_%s_%s", reportType, time.Now().Format("20060102_150405"))

	switch format {
	case ReportFormatCSV:
		return rs.generateCSVReport(data, filepath.Join(rs.reportsDir, fileName+".csv"))
	case ReportFormatExcel:
		return rs.generateExcelReport(data, filepath.Join(rs.reportsDir, fileName+".xlsx"))
	case ReportFormatPDF:
		return rs.generatePDFReport(data, filepath.Join(rs.reportsDir, fileName+".pdf"))
	case ReportFormatJSON:
		return rs.generateJSONReport(data, filepath.Join(rs.reportsDir, fileName+".json"))
	default:
		return "", fmt.Errorf("%w: неизвестный формат %q", ErrValidation, format)
	}
}

// buildUtilityPaymentsReport собирает реестр коммунальных платежей
func (rs *ReportService) buildUtilityPaymentsReport(departmentID uint) (*ReportData, error) {
	var payments []models.UtilityPayment
	query := rs.db.Preload("Department").Preload("Employee").Order("payment_month")
	if departmentID != 0 {
		query = query.Where("department_id = ?", departmentID)
	}
	if err := query.Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении платежей: %w", err)
	}

	data := &ReportData{
		Headers: []string{"Месяц", "Отдел", "Тип", "Пред. показание", "Тек. показание", "Тариф", "Сумма", "Ответственный"},
		Rows:    make([]map[string]interface{}, 0, len(payments)),
	}

	for i := range payments {
		p := &payments[i]
		row := map[string]interface{}{
			"Месяц":  p.PaymentMonth.Format("01.2006"),
			"Тип":    p.Type,
			"Тариф":  p.PricePerUnit.StringFixed(2),
			"Сумма":  p.Amount.StringFixed(3),
		}
		if p.Department != nil {
			row["Отдел"] = p.Department.Name
		}
		if p.PreviousValue != nil {
			row["Пред. показание"] = p.PreviousValue.StringFixed(3)
		}
		if p.CurrentValue != nil {
			row["Тек. показание"] = p.CurrentValue.StringFixed(3)
		}
		if p.Employee != nil {
			row["Ответственный"] = p.Employee.GetFullName()
		}
		data.Rows = append(data.Rows, row)
	}

	return data, nil
}

// buildFuelTransactionsReport собирает журнал топливных операций
func (rs *ReportService) buildFuelTransactionsReport(departmentID uint) (*ReportData, error) {
	var transactions []models.FuelTransaction
	query := rs.db.Preload("Department").Order("entry_date")
	if departmentID != 0 {
		query = query.Where("department_id = ?", departmentID)
	}
	if err := query.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении топливных операций: %w", err)
	}

	data := &ReportData{
		Headers: []string{"Дата", "Отдел", "Топливо", "Операция", "Объем", "Пробег", "Стоимость"},
		Rows:    make([]map[string]interface{}, 0, len(transactions)),
	}

	for i := range transactions {
		t := &transactions[i]
		row := map[string]interface{}{
			"Дата":     t.EntryDate.Format("02.01.2006"),
			"Топливо":  t.FuelType,
			"Операция": t.Kind,
		}
		if t.Department != nil {
			row["Отдел"] = t.Department.Name
		}
		switch t.Kind {
		case models.FuelKindIncome:
			row["Объем"] = t.Amount.StringFixed(3)
		case models.FuelKindExpense:
			row["Пробег"] = t.MileageDelta().StringFixed(3)
			row["Стоимость"] = t.TotalAmount.StringFixed(3)
		}
		data.Rows = append(data.Rows, row)
	}

	return data, nil
}

// buildEquipmentReport собирает реестр оборудования
func (rs *ReportService) buildEquipmentReport(departmentID uint) (*ReportData, error) {
	var equipment []models.Equipment
	query := rs.db.Preload("Department").Preload("Category").Preload("ResponsibleEmployee").Order("name")
	if departmentID != 0 {
		query = query.Where("department_id = ?", departmentID)
	}
	if err := query.Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении оборудования: %w", err)
	}

	data := &ReportData{
		Headers: []string{"Наименование", "Серийный номер", "Категория", "Отдел", "Статус", "Количество", "Ед. изм.", "Ответственный"},
		Rows:    make([]map[string]interface{}, 0, len(equipment)),
	}

	for i := range equipment {
		eq := &equipment[i]
		row := map[string]interface{}{
			"Наименование": eq.Name,
			"Статус":       eq.Status,
			"Количество":   eq.Quantity.StringFixed(3),
			"Ед. изм.":     eq.Unit,
		}
		if eq.SerialNumber != nil {
			row["Серийный номер"] = *eq.SerialNumber
		}
		if eq.Category != nil {
			row["Категория"] = eq.Category.Name
		}
		if eq.Department != nil {
			row["Отдел"] = eq.Department.Name
		} else {
			row["Отдел"] = "Склад"
		}
		if eq.ResponsibleEmployee != nil {
			row["Ответственный"] = eq.ResponsibleEmployee.GetFullName()
		}
		data.Rows = append(data.Rows, row)
	}

	return data, nil
}

// generateCSVReport генерирует CSV файл отчета
func (rs *ReportService) generateCSVReport(data *ReportData, filePath string) (string, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(data.Headers); err != nil {
		return "", err
	}

	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			if value, ok := row[header]; ok {
				record[i] = fmt.Sprintf("%v", value)
			}
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	return filePath, nil
}

// generateExcelReport генерирует Excel файл отчета
func (rs *ReportService) generateExcelReport(data *ReportData, filePath string) (string, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Ошибка закрытия Excel файла: %v", err)
		}
	}()

	sheetName := "Отчет"
	f.SetSheetName("Sheet1", sheetName)

	// Записываем заголовки
	for i, header := range data.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	// Записываем данные
	for rowIdx, row := range data.Rows {
		for colIdx, header := range data.Headers {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if value, ok := row[header]; ok {
				f.SetCellValue(sheetName, cell, value)
			}
		}
	}

	// Добавляем автофильтр
	endCell, _ := excelize.CoordinatesToCellName(len(data.Headers), len(data.Rows)+1)
	f.AutoFilter(sheetName, "A1:"+endCell, []excelize.AutoFilterOptions{})

	if err := f.SaveAs(filePath); err != nil {
		return "", err
	}

	return filePath, nil
}

// generatePDFReport генерирует PDF файл отчета
func (rs *ReportService) generatePDFReport(data *ReportData, filePath string) (string, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)

	pdf.Cell(40, 10, "Otchet")
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 8)

	for _, header := range data.Headers {
		pdf.Cell(32, 8, header)
	}
	pdf.Ln(8)

	// Для PDF ограничиваем количество строк
	maxRows := 60
	for i, row := range data.Rows {
		if i >= maxRows {
			pdf.Cell(32, 8, "...")
			break
		}

		for _, header := range data.Headers {
			value := ""
			if val, ok := row[header]; ok {
				value = fmt.Sprintf("%.14s", fmt.Sprintf("%v", val))
			}
			pdf.Cell(32, 8, value)
		}
		pdf.Ln(6)
	}

	return filePath, pdf.OutputFileAndClose(filePath)
}

// generateJSONReport генерирует JSON файл отчета
func (rs *ReportService) generateJSONReport(data *ReportData, filePath string) (string, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	reportData := map[string]interface{}{
		"headers":      data.Headers,
		"data":         data.Rows,
		"generated_at": time.Now(),
	}

	return filePath, encoder.Encode(reportData)
}
