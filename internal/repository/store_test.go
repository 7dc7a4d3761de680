package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/receipty/internal/entity"
)

func row(name, price, date string) entity.LineItem {
	it := entity.NewLineItem()
	it.OriginalName = name
	it.TranslatedName = name
	it.UnitPrice = decimal.RequireFromString(price)
	it.Currency = "RSD"
	it.ReceiptDate = date
	return it
}

func TestGetOrCreateSubmitter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO submitters").
		WithArgs(int64(777)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(12)))

	store := NewStore(mock, nil)
	id, err := store.GetOrCreateSubmitter(context.Background(), 777)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRowsBatchesInserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO submitters").
		WithArgs(int64(777)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(12)))

	date := "2025-11-04"
	eb := mock.ExpectBatch()
	eb.ExpectExec("INSERT INTO products").
		WithArgs(int64(12), "Млеко", "Млеко", "Unknown", "Unknown", "154.99", &date, "RSD", "1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	eb.ExpectExec("INSERT INTO products").
		WithArgs(int64(12), "Хлеб", "Хлеб", "Unknown", "Unknown", "89.5", (*string)(nil), "RSD", "1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewStore(mock, nil)
	rows := []entity.LineItem{
		row("Млеко", "154.99", "2025-11-04"),
		row("Хлеб", "89.5", ""), // empty date stored as NULL
	}
	require.NoError(t, store.SaveRows(context.Background(), 777, rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRowsEmptyIsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewStore(mock, nil)
	require.NoError(t, store.SaveRows(context.Background(), 777, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRowsSubmitterFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO submitters").
		WithArgs(int64(777)).
		WillReturnError(errors.New("connection refused"))

	store := NewStore(mock, nil)
	err = store.SaveRows(context.Background(), 777, []entity.LineItem{row("x", "1", "")})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS submitters").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS products").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_products_submitter_id").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_submitters_chat_id").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, InitSchema(context.Background(), mock, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
