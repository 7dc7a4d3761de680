package repository

import (
	"context"
	"log/slog"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS submitters (
		id BIGSERIAL PRIMARY KEY,
		chat_id BIGINT UNIQUE NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		submitter_id BIGINT NOT NULL REFERENCES submitters(id) ON DELETE CASCADE,
		original_product_name VARCHAR(500),
		translated_product_name VARCHAR(500),
		category VARCHAR(200),
		subcategory VARCHAR(200),
		price DECIMAL(10, 2),
		receipt_date DATE,
		currency VARCHAR(10),
		quantity DECIMAL(10, 2) DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_submitter_id ON products(submitter_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submitters_chat_id ON submitters(chat_id)`,
}

// InitSchema creates the submitters and products tables if they are absent.
func InitSchema(ctx context.Context, db Querier, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			logger.Error("repository.schema.failed", "error", err)
			return err
		}
	}
	logger.Info("repository.schema.ready")
	return nil
}
