package repository

import (
	"database/sql"

	"go.uber.org/zap"
)

// OperationLogRepository records user actions for auditing.
type OperationLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOperationLogRepository creates a new operation log repository.
func NewOperationLogRepository(db *sql.DB, logger *zap.Logger) *OperationLogRepository {
	return &OperationLogRepository{db: db, logger: logger}
}

// Log inserts an operation log row. Failures are logged but not returned:
// audit logging must never break the calling operation.
func (r *OperationLogRepository) Log(userID int64, operationType, detail, ipAddress string) {
	_, err := r.db.Exec(`
		INSERT INTO operation_logs (user_id, operation_type, operation_detail, ip_address)
		VALUES (?, ?, ?, ?)
	`, userID, operationType, detail, ipAddress)
	if err != nil {
		r.logger.Error("Failed to record operation log",
			zap.Int64("user_id", userID),
			zap.String("type", operationType),
			zap.Error(err))
	}
}
