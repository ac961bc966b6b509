// Package invoice extracts structured fields from invoice documents using
// the fixed pattern tables in internal/patterns.
package invoice

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/yfgao/invoice-extract/internal/models"
	"github.com/yfgao/invoice-extract/internal/patterns"
	"github.com/yfgao/invoice-extract/internal/pdftext"
)

// extractedAtLayout is the 提取时间 timestamp format.
const extractedAtLayout = "2006/01/02 15:04:05"

// Extractor populates an ExtractionRecord from the first page of a PDF.
type Extractor struct {
	reader pdftext.Reader
	logger *zap.Logger
}

// NewExtractor creates a new field extractor.
func NewExtractor(reader pdftext.Reader, logger *zap.Logger) *Extractor {
	return &Extractor{
		reader: reader,
		logger: logger,
	}
}

// Extract parses the invoice at pdfPath. It never fails: any error is
// captured into the record's status field, and the returned record always
// carries at least filename, timestamp and status so batch callers can
// enumerate one record per input path.
func (e *Extractor) Extract(pdfPath string) *models.ExtractionRecord {
	record := &models.ExtractionRecord{
		Filename:    filepath.Base(pdfPath),
		TaxRate:     "0%",
		ExtractedAt: time.Now().Format(extractedAtLayout),
	}

	text, err := e.reader.FirstPageText(pdfPath)
	if err != nil {
		e.logger.Warn("Invoice extraction failed",
			zap.String("file", record.Filename),
			zap.Error(err))
		record.Status = models.FailureStatus(err)
		return record
	}

	record.InvoiceCode = firstGroup(patterns.InvoiceCode, text)
	record.InvoiceNumber = firstGroup(patterns.InvoiceNumber, text)

	// A date no pattern recognizes is a gap, not a failure.
	record.InvoiceDate = extractDate(text)

	if amount, tax, ok := extractAmounts(text); ok {
		record.Amount = amount
		record.TaxAmount = tax
	}
	record.TotalAmount = record.Amount + record.TaxAmount
	if record.Amount > 0 {
		record.TaxRate = fmt.Sprintf("%.0f%%", record.TaxAmount/record.Amount*100)
	}

	record.Status = models.StatusSuccess

	e.logger.Debug("Invoice extracted",
		zap.String("file", record.Filename),
		zap.String("invoice_code", record.InvoiceCode),
		zap.String("invoice_number", record.InvoiceNumber),
		zap.Float64("amount", record.Amount))

	return record
}

// firstGroup returns the first captured group or the empty string.
func firstGroup(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	return ""
}

// extractDate tries the ordered date patterns and canonicalizes the first
// match to YYYY/MM/DD with zero-padded month and day. Returns the empty
// string when no pattern matches.
func extractDate(text string) string {
	for _, p := range patterns.DatePatterns {
		m := p.Expr.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return fmt.Sprintf("%s/%02d/%02d", m[1], month, day)
	}
	return ""
}

// extractAmounts resolves (amount, tax) in strict strategy priority:
// the table-row layout first, then at least two currency-symbol numbers
// where the first is amount and the second is tax. Strategies are never
// merged. ok is false when neither strategy yields a result.
func extractAmounts(text string) (amount, tax float64, ok bool) {
	if m := patterns.TableRowAmount.FindStringSubmatch(text); m != nil {
		// The percent group is informational only; the rate is always
		// recomputed from the amounts.
		amount, _ = strconv.ParseFloat(m[1], 64)
		tax, _ = strconv.ParseFloat(m[3], 64)
		return amount, tax, true
	}

	yuan := patterns.YuanAmount.FindAllStringSubmatch(text, -1)
	if len(yuan) >= 2 {
		amount, _ = strconv.ParseFloat(yuan[0][1], 64)
		tax, _ = strconv.ParseFloat(yuan[1][1], 64)
		return amount, tax, true
	}

	return 0, 0, false
}
