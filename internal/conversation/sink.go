package conversation

import (
	"context"

	"github.com/avelichko/receipty/internal/entity"
)

// Sink is one durable destination for confirmed, quantity-expanded rows.
// Sinks fail independently; the engine reports per-sink outcomes.
type Sink interface {
	Name() string
	SaveRows(ctx context.Context, submitterID int64, rows []entity.LineItem) error
}
