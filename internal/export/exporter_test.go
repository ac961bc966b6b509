package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yfgao/invoice-extract/internal/models"
)

func sampleRecords() []*models.ExtractionRecord {
	return []*models.ExtractionRecord{
		{
			AuditMonth:    "2024-03",
			BusinessUnit:  "华东事业部",
			Project:       "交付项目A",
			Filename:      "滴滴电子发票1_2_张三.pdf",
			PersonName:    "张三",
			InvoiceCode:   "1100234567",
			InvoiceNumber: "12345678",
			InvoiceDate:   "2024/03/05",
			Amount:        100.00,
			TaxRate:       "13%",
			TaxAmount:     13.00,
			TotalAmount:   113.00,
			Status:        models.StatusSuccess,
			ExtractedAt:   "2024/03/06 10:00:00",
		},
		{
			AuditMonth:   models.NotSelected,
			BusinessUnit: models.NotSelected,
			Project:      models.NotSelected,
			Filename:     "broken.pdf",
			PersonName:   models.UnknownName,
			TaxRate:      "0%",
			Status:       "失败: failed to open PDF",
			ExtractedAt:  "2024/03/06 10:00:01",
		},
	}
}

func newTestExporter() *Exporter {
	logger, _ := zap.NewDevelopment()
	return NewExporter(logger)
}

func TestToExcel(t *testing.T) {
	data, err := newTestExporter().ToExcel(sampleRecords())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	t.Run("only the data sheet exists", func(t *testing.T) {
		assert.Equal(t, []string{SheetName}, f.GetSheetList())
	})

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	t.Run("header lists preferred columns then the extraction timestamp", func(t *testing.T) {
		assert.Equal(t, columnOrder, rows[0])
		assert.Equal(t, "提取时间", rows[0][len(rows[0])-1])
	})

	t.Run("amount cells are numeric with two-decimal formatting", func(t *testing.T) {
		assert.Equal(t, "100.00", rows[1][8])
		assert.Equal(t, "13.00", rows[1][10])
		assert.Equal(t, "113.00", rows[1][11])

		value, err := f.GetCellValue(SheetName, "I2", excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		assert.Equal(t, "100", value)

		cellType, err := f.GetCellType(SheetName, "I2")
		require.NoError(t, err)
		assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	})

	t.Run("every record field is exported", func(t *testing.T) {
		assert.Equal(t, "2024/03/06 10:00:00", rows[1][13])
	})

	t.Run("failure rows keep their sentinels", func(t *testing.T) {
		assert.Equal(t, models.NotSelected, rows[2][0])
		assert.Equal(t, models.UnknownName, rows[2][4])
		assert.Equal(t, "失败: failed to open PDF", rows[2][12])
	})
}

func TestToCSV(t *testing.T) {
	data, err := newTestExporter().ToCSV(sampleRecords())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, columnOrder, rows[0])
	assert.Contains(t, rows[0], "提取时间")
	assert.Equal(t, "张三", rows[1][4])
	assert.Equal(t, "2024/03/05", rows[1][7])
	assert.Equal(t, "2024/03/06 10:00:00", rows[1][13])
	assert.Equal(t, "0.00", rows[2][8])
	assert.Equal(t, "2024/03/06 10:00:01", rows[2][13])
}

func TestToJSON(t *testing.T) {
	records := sampleRecords()

	data, err := newTestExporter().ToJSON(records)
	require.NoError(t, err)

	var decoded []*models.ExtractionRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, records[0], decoded[0])
	assert.Equal(t, records[1], decoded[1])
}
