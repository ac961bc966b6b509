// Package export serializes extraction records to Excel, CSV and JSON.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yfgao/invoice-extract/internal/models"
)

// SheetName is the worksheet holding exported invoice data.
const SheetName = "发票数据"

// columnOrder is the export column order: the 13 preferred columns first,
// then every remaining record field so no export drops data.
var columnOrder = []string{
	"费用所属月份(审核月份)", "事业部", "大项目", "文件名", "姓名",
	"发票代码", "发票号码", "开票日期", "金额", "税率", "税额",
	"价税合计", "状态", "提取时间",
}

// amountColumns are the 1-based indices of 金额, 税额 and 价税合计.
var amountColumns = []int{9, 11, 12}

// Exporter writes record sets to downloadable formats.
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new exporter.
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// row flattens a record into the column order for textual exports.
func row(r *models.ExtractionRecord) []string {
	return []string{
		r.AuditMonth,
		r.BusinessUnit,
		r.Project,
		r.Filename,
		r.PersonName,
		r.InvoiceCode,
		r.InvoiceNumber,
		r.InvoiceDate,
		strconv.FormatFloat(r.Amount, 'f', 2, 64),
		r.TaxRate,
		strconv.FormatFloat(r.TaxAmount, 'f', 2, 64),
		strconv.FormatFloat(r.TotalAmount, 'f', 2, 64),
		r.Status,
		r.ExtractedAt,
	}
}

// rowValues flattens a record into typed cell values, keeping amounts
// numeric for spreadsheet consumers.
func rowValues(r *models.ExtractionRecord) []interface{} {
	return []interface{}{
		r.AuditMonth,
		r.BusinessUnit,
		r.Project,
		r.Filename,
		r.PersonName,
		r.InvoiceCode,
		r.InvoiceNumber,
		r.InvoiceDate,
		r.Amount,
		r.TaxRate,
		r.TaxAmount,
		r.TotalAmount,
		r.Status,
		r.ExtractedAt,
	}
}

// ToExcel serializes the records to an xlsx workbook.
func (e *Exporter) ToExcel(records []*models.ExtractionRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		e.logger.Warn("Failed to remove default sheet", zap.Error(err))
	}

	for col, header := range columnOrder {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build cell name: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, record := range records {
		for col, value := range rowValues(record) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell name: %w", err)
			}
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
		}
	}

	if len(records) > 0 {
		// NumFmt 2 renders amounts with two decimals.
		style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return nil, fmt.Errorf("failed to create amount style: %w", err)
		}
		for _, col := range amountColumns {
			top, err := excelize.CoordinatesToCellName(col, 2)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell name: %w", err)
			}
			bottom, err := excelize.CoordinatesToCellName(col, len(records)+1)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell name: %w", err)
			}
			if err := f.SetCellStyle(SheetName, top, bottom, style); err != nil {
				return nil, fmt.Errorf("failed to style amount column: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	e.logger.Debug("Exported records to Excel", zap.Int("count", len(records)))
	return buf.Bytes(), nil
}

// ToCSV serializes the records to CSV with the same column order.
func (e *Exporter) ToCSV(records []*models.ExtractionRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columnOrder); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, record := range records {
		if err := w.Write(row(record)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ToJSON serializes the records as a lossless JSON dump.
func (e *Exporter) ToJSON(records []*models.ExtractionRecord) ([]byte, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	return data, nil
}
