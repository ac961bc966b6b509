// Package service orchestrates extraction, enrichment and persistence.
package service

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yfgao/invoice-extract/internal/invoice"
	"github.com/yfgao/invoice-extract/internal/models"
	"github.com/yfgao/invoice-extract/internal/repository"
)

// Enrichment carries the operator-selected fields attached to every record
// in a batch before persistence.
type Enrichment struct {
	AuditMonth   string
	BusinessUnit string
	Project      string
}

// InvoiceService processes invoice files one at a time in a caller-driven
// loop and hands finished records to the persistence sink.
type InvoiceService struct {
	extractor *invoice.Extractor
	invoices  *repository.InvoiceRepository
	logs      *repository.OperationLogRepository
	logger    *zap.Logger
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(
	extractor *invoice.Extractor,
	invoices *repository.InvoiceRepository,
	logs *repository.OperationLogRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		extractor: extractor,
		invoices:  invoices,
		logs:      logs,
		logger:    logger,
	}
}

// ProcessFile extracts one invoice, resolves the person name, attaches the
// enrichment fields and persists the record when extraction succeeded.
// It always returns a record; extraction failures are carried in its status.
func (s *InvoiceService) ProcessFile(path string, enrich Enrichment, userID int64) *models.ExtractionRecord {
	record := s.extractor.Extract(path)
	record.PersonName = invoice.ResolveName(filepath.Base(path))
	record.AuditMonth = enrich.AuditMonth
	record.BusinessUnit = enrich.BusinessUnit
	record.Project = enrich.Project

	if record.Succeeded() {
		if err := s.invoices.Create(record, userID); err != nil {
			s.logger.Error("Failed to persist invoice record",
				zap.String("file", record.Filename),
				zap.Error(err))
		}
	}

	return record
}

// ProcessBatch runs ProcessFile over every path, one file fully processed
// before the next, and returns one record per input path. The batch never
// aborts on a per-file failure.
func (s *InvoiceService) ProcessBatch(paths []string, enrich Enrichment, userID int64) []*models.ExtractionRecord {
	records := make([]*models.ExtractionRecord, 0, len(paths))
	success := 0
	for _, path := range paths {
		record := s.ProcessFile(path, enrich, userID)
		if record.Succeeded() {
			success++
		}
		records = append(records, record)
	}

	s.logs.Log(userID, "批量处理完成",
		fmt.Sprintf("成功处理 %d/%d 个文件", success, len(paths)), "")
	s.logger.Info("Batch processing completed",
		zap.Int("total", len(paths)),
		zap.Int("success", success))

	return records
}

// ListByUser returns the user's recent invoices.
func (s *InvoiceService) ListByUser(userID int64, days int) ([]*models.Invoice, error) {
	return s.invoices.ListByUser(userID, days)
}

// Statistics returns the user's aggregate numbers.
func (s *InvoiceService) Statistics(userID int64) (*models.Statistics, error) {
	return s.invoices.Statistics(userID)
}
