package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avelichko/receipty/internal/entity"
)

// Querier is the slice of the pgx pool the store needs; pgxmock satisfies it
// in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const upsertSubmitterSQL = `
INSERT INTO submitters (chat_id)
VALUES ($1)
ON CONFLICT (chat_id) DO UPDATE SET updated_at = now()
RETURNING id`

const insertProductSQL = `
INSERT INTO products
  (submitter_id, original_product_name, translated_product_name,
   category, subcategory, price, receipt_date, currency, quantity)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9::numeric)`

// Store writes confirmed rows scoped to a submitter's internal id. It is the
// relational sink of the conversation engine.
type Store struct {
	db     Querier
	logger *slog.Logger
}

func NewStore(db Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Name identifies the sink in user-facing success messages.
func (s *Store) Name() string { return "базу данных" }

// GetOrCreateSubmitter maps the external chat identity to the internal row
// id, creating the submitter on first contact.
func (s *Store) GetOrCreateSubmitter(ctx context.Context, chatID int64) (int64, error) {
	var id int64
	if err := s.db.QueryRow(ctx, upsertSubmitterSQL, chatID).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert submitter %d: %w", chatID, err)
	}
	return id, nil
}

// SaveRows upserts the submitter and bulk-inserts the expanded rows in one
// batch round trip.
func (s *Store) SaveRows(ctx context.Context, submitterID int64, rows []entity.LineItem) error {
	if len(rows) == 0 {
		return nil
	}

	id, err := s.GetOrCreateSubmitter(ctx, submitterID)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		var date *string
		if row.ReceiptDate != "" {
			d := row.ReceiptDate
			date = &d
		}
		batch.Queue(insertProductSQL,
			id,
			row.OriginalName,
			row.TranslatedName,
			row.Category,
			row.Subcategory,
			row.UnitPrice.String(),
			date,
			row.Currency,
			row.Quantity.String(),
		)
	}

	br := s.db.SendBatch(ctx, batch)
	defer func() {
		if cerr := br.Close(); cerr != nil {
			s.logger.Warn("repository.batch.close_error", "error", cerr)
		}
	}()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert product row %d: %w", i, err)
		}
	}

	s.logger.Info("repository.rows.saved", "submitter_id", id, "rows", len(rows))
	return nil
}
