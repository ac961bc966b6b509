package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/yfgao/invoice-extract/internal/models"
)

// InvoiceRepository handles invoice database operations. Create is the
// persistence sink extraction records are handed to.
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository.
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

// Create inserts an extraction record for the owning user. Unset enrichment
// fields are stored as the 未选择 sentinel, never as NULL.
func (r *InvoiceRepository) Create(record *models.ExtractionRecord, userID int64) error {
	query := `
		INSERT INTO invoices (
			user_id, shenheyuefen, shiyebu, daxiangmu, filename, person_name,
			invoice_code, invoice_number, invoice_date, amount, tax_rate,
			tax_amount, total_amount, status, extracted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		userID,
		orDefault(record.AuditMonth, models.NotSelected),
		orDefault(record.BusinessUnit, models.NotSelected),
		orDefault(record.Project, models.NotSelected),
		record.Filename,
		orDefault(record.PersonName, models.UnknownName),
		record.InvoiceCode,
		record.InvoiceNumber,
		record.InvoiceDate,
		record.Amount,
		record.TaxRate,
		record.TaxAmount,
		record.TotalAmount,
		record.Status,
		record.ExtractedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save invoice",
			zap.String("filename", record.Filename),
			zap.Error(err))
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	return nil
}

// ListByUser returns the user's invoices created within the last `days`
// days, newest first.
func (r *InvoiceRepository) ListByUser(userID int64, days int) ([]*models.Invoice, error) {
	query := `
		SELECT id, user_id, shenheyuefen, shiyebu, daxiangmu, filename,
			person_name, invoice_code, invoice_number, invoice_date, amount,
			tax_rate, tax_amount, total_amount, status, extracted_at, created_at
		FROM invoices
		WHERE user_id = ? AND date(created_at) >= date('now', ?)
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID, fmt.Sprintf("-%d days", days))
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		var inv models.Invoice
		err := rows.Scan(
			&inv.ID, &inv.UserID, &inv.AuditMonth, &inv.BusinessUnit,
			&inv.Project, &inv.Filename, &inv.PersonName, &inv.InvoiceCode,
			&inv.InvoiceNumber, &inv.InvoiceDate, &inv.Amount, &inv.TaxRate,
			&inv.TaxAmount, &inv.TotalAmount, &inv.Status, &inv.ExtractedAt,
			&inv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, &inv)
	}
	return invoices, rows.Err()
}

// Statistics aggregates the user's processed invoices.
func (r *InvoiceRepository) Statistics(userID int64) (*models.Statistics, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(tax_amount), 0)
		FROM invoices
		WHERE user_id = ?
	`

	var stats models.Statistics
	err := r.db.QueryRow(query, models.StatusSuccess, userID).Scan(
		&stats.TotalFiles, &stats.SuccessFiles, &stats.TotalAmount, &stats.TotalTax)
	if err != nil {
		r.logger.Error("Failed to compute statistics", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}

	stats.FailedFiles = stats.TotalFiles - stats.SuccessFiles
	stats.GrandTotal = stats.TotalAmount + stats.TotalTax
	if stats.TotalFiles > 0 {
		stats.SuccessRate = float64(stats.SuccessFiles) / float64(stats.TotalFiles) * 100
	}
	return &stats, nil
}

// orDefault substitutes def for the empty string.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
