package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/yfgao/invoice-extract/internal/models"
)

// ConfigRepository reads system configuration and menu functions.
type ConfigRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewConfigRepository creates a new config repository.
func NewConfigRepository(db *sql.DB, logger *zap.Logger) *ConfigRepository {
	return &ConfigRepository{db: db, logger: logger}
}

// SystemConfig returns all system config key/value pairs.
func (r *ConfigRepository) SystemConfig() (map[string]string, error) {
	rows, err := r.db.Query("SELECT config_key, config_value FROM system_config")
	if err != nil {
		return nil, fmt.Errorf("failed to get system config: %w", err)
	}
	defer rows.Close()

	config := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan config row: %w", err)
		}
		config[key] = value
	}
	return config, rows.Err()
}

// MenuFunctions returns the active menu entries in sort order.
func (r *ConfigRepository) MenuFunctions() ([]models.MenuFunction, error) {
	rows, err := r.db.Query(`
		SELECT function_name, icon, description
		FROM menu_functions
		WHERE is_active = 1
		ORDER BY sort_order
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu functions: %w", err)
	}
	defer rows.Close()

	var items []models.MenuFunction
	for rows.Next() {
		var item models.MenuFunction
		if err := rows.Scan(&item.Name, &item.Icon, &item.Description); err != nil {
			return nil, fmt.Errorf("failed to scan menu row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
