package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yfgao/invoice-extract/internal/models"
	"github.com/yfgao/invoice-extract/pkg/database"
)

// newTestDB opens a throwaway SQLite database with the full schema applied.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).RunMigrations("../../migrations"))
	return db
}

func successRecord(filename string) *models.ExtractionRecord {
	return &models.ExtractionRecord{
		Filename:      filename,
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
	}
}

func TestInvoiceRepository_Create(t *testing.T) {
	db := newTestDB(t)
	logger, _ := zap.NewDevelopment()
	repo := NewInvoiceRepository(db.DB, logger)

	t.Run("empty enrichment fields are stored as sentinels", func(t *testing.T) {
		record := successRecord("a.pdf")
		record.PersonName = ""
		require.NoError(t, repo.Create(record, 1))

		var month, unit, project, person string
		err := db.QueryRow(`
			SELECT shenheyuefen, shiyebu, daxiangmu, person_name
			FROM invoices WHERE filename = ?`, "a.pdf").
			Scan(&month, &unit, &project, &person)
		require.NoError(t, err)
		assert.Equal(t, models.NotSelected, month)
		assert.Equal(t, models.NotSelected, unit)
		assert.Equal(t, models.NotSelected, project)
		assert.Equal(t, models.UnknownName, person)
	})

	t.Run("supplied enrichment fields are stored verbatim", func(t *testing.T) {
		record := successRecord("b.pdf")
		record.AuditMonth = "2024-03"
		record.BusinessUnit = "华东事业部"
		record.Project = "交付项目A"
		require.NoError(t, repo.Create(record, 1))

		var month, unit, project string
		err := db.QueryRow(`
			SELECT shenheyuefen, shiyebu, daxiangmu
			FROM invoices WHERE filename = ?`, "b.pdf").
			Scan(&month, &unit, &project)
		require.NoError(t, err)
		assert.Equal(t, "2024-03", month)
		assert.Equal(t, "华东事业部", unit)
		assert.Equal(t, "交付项目A", project)
	})
}

func TestInvoiceRepository_ListByUser(t *testing.T) {
	db := newTestDB(t)
	logger, _ := zap.NewDevelopment()
	repo := NewInvoiceRepository(db.DB, logger)

	require.NoError(t, repo.Create(successRecord("mine.pdf"), 1))
	require.NoError(t, repo.Create(successRecord("theirs.pdf"), 2))

	t.Run("returns only the user's invoices", func(t *testing.T) {
		invoices, err := repo.ListByUser(1, 30)
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, "mine.pdf", invoices[0].Filename)
		assert.Equal(t, int64(1), invoices[0].UserID)
		assert.Equal(t, "2024/03/06 10:00:00", invoices[0].ExtractedAt)
		assert.NotEmpty(t, invoices[0].CreatedAt)
	})

	t.Run("rows older than the window are excluded", func(t *testing.T) {
		_, err := db.Exec(
			"UPDATE invoices SET created_at = date('now', '-60 days') WHERE filename = ?",
			"mine.pdf")
		require.NoError(t, err)

		invoices, err := repo.ListByUser(1, 30)
		require.NoError(t, err)
		assert.Empty(t, invoices)
	})
}

func TestInvoiceRepository_Statistics(t *testing.T) {
	db := newTestDB(t)
	logger, _ := zap.NewDevelopment()
	repo := NewInvoiceRepository(db.DB, logger)

	t.Run("no invoices yields zeroed stats", func(t *testing.T) {
		stats, err := repo.Statistics(1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.TotalFiles)
		assert.Equal(t, 0.0, stats.SuccessRate)
	})

	t.Run("mixed results aggregate correctly", func(t *testing.T) {
		require.NoError(t, repo.Create(successRecord("ok1.pdf"), 1))
		require.NoError(t, repo.Create(successRecord("ok2.pdf"), 1))

		failed := &models.ExtractionRecord{
			Filename:    "bad.pdf",
			TaxRate:     "0%",
			Status:      "失败: failed to open PDF",
			ExtractedAt: "2024/03/06 10:00:01",
		}
		require.NoError(t, repo.Create(failed, 1))

		stats, err := repo.Statistics(1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalFiles)
		assert.Equal(t, int64(2), stats.SuccessFiles)
		assert.Equal(t, int64(1), stats.FailedFiles)
		assert.InDelta(t, 200.00, stats.TotalAmount, 0.001)
		assert.InDelta(t, 26.00, stats.TotalTax, 0.001)
		assert.InDelta(t, 226.00, stats.GrandTotal, 0.001)
		assert.InDelta(t, 66.666, stats.SuccessRate, 0.01)
	})
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	logger, _ := zap.NewDevelopment()
	repo := NewUserRepository(db.DB, logger)

	t.Run("seeded admin user is present", func(t *testing.T) {
		user, hash, err := repo.GetByUsername("admin")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "admin", user.Username)
		assert.Equal(t,
			"240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9",
			hash)
		assert.Nil(t, user.LastLogin)
	})

	t.Run("unknown user returns nil without error", func(t *testing.T) {
		user, hash, err := repo.GetByUsername("nobody")
		require.NoError(t, err)
		assert.Nil(t, user)
		assert.Empty(t, hash)
	})

	t.Run("last login is stamped after update", func(t *testing.T) {
		user, _, err := repo.GetByUsername("admin")
		require.NoError(t, err)

		require.NoError(t, repo.UpdateLastLogin(user.ID))

		user, _, err = repo.GetByUsername("admin")
		require.NoError(t, err)
		require.NotNil(t, user.LastLogin)
	})
}
