package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avelichko/receipty/constants"
	"github.com/avelichko/receipty/internal/common"
	"github.com/avelichko/receipty/internal/csvrepair"
	"github.com/avelichko/receipty/internal/entity"
)

// refusalPhrases mark responses where the model answered but declined to
// read the images; those are escalated to the next strategy, not parsed.
var refusalPhrases = []string{
	"unable to process images",
	"cannot process images",
}

// Pipeline runs the ordered prompt strategies against one extractor backend.
type Pipeline struct {
	extractor Extractor
	taxonomy  string // rendered category reference block
	audit     *AuditWriter
	logger    *slog.Logger
}

// NewPipeline wires a pipeline. taxonomyBlock is embedded into every prompt.
func NewPipeline(extractor Extractor, taxonomyBlock string, audit *AuditWriter, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if audit == nil {
		audit = NewAuditWriter("", logger)
	}
	return &Pipeline{
		extractor: extractor,
		taxonomy:  taxonomyBlock,
		audit:     audit,
		logger:    logger,
	}
}

// Run extracts line items from photos, escalating through the prompt ladder.
// A response that survives the raw-text checks is repaired, audited, and
// parsed; parsing to zero items is returned to the caller as an empty slice,
// not treated as a strategy failure. Only when every strategy fails does Run
// return a terminal error wrapping the last cause.
func (p *Pipeline) Run(ctx context.Context, photos [][]byte, language string) ([]entity.LineItem, string, error) {
	if len(photos) == 0 {
		return nil, "", fmt.Errorf("no photos to process")
	}

	strategies := Strategies()
	var lastErr error
	for attempt, s := range strategies {
		start := time.Now()
		prompt := s.Build(p.taxonomy, language)

		raw, err := p.extractor.Extract(ctx, photos, prompt)
		if err == nil {
			err = validateResponse(raw)
		}
		if err != nil {
			lastErr = err
			p.logger.Warn("extract.attempt.failed",
				"strategy", s.Name,
				"attempt", attempt+1,
				"error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			continue
		}

		cleaned := csvrepair.Normalize(csvrepair.Extract(raw, p.logger))
		p.audit.Save(cleaned)
		items := csvrepair.ParseItems(cleaned, p.logger)

		p.logger.Info("extract.attempt.ok",
			"strategy", s.Name,
			"attempt", attempt+1,
			"photos", len(photos),
			"items", len(items),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return items, cleaned, nil
	}

	p.logger.Error("extract.exhausted", "strategies", len(strategies), "error", lastErr)
	return nil, "", fmt.Errorf("%w: %w", common.ErrExhausted, lastErr)
}

// validateResponse rejects empty and refusal responses.
func validateResponse(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("empty response content")
	}
	low := strings.ToLower(raw)
	for _, phrase := range refusalPhrases {
		if strings.Contains(low, phrase) {
			return fmt.Errorf("%w: %s", common.ErrRefused, preview(raw))
		}
	}
	return nil
}

// Suspicious reports whether a parsed result is structurally valid but
// semantically degenerate: nothing at all, or every price zero while either
// every category is unknown or every name is empty. Callers re-invoke the
// whole pipeline exactly once for such results before accepting them.
func Suspicious(items []entity.LineItem) bool {
	if len(items) == 0 {
		return true
	}
	allZeroPrice := true
	allUnknown := true
	allEmptyNames := true
	for _, it := range items {
		if !it.UnitPrice.IsZero() {
			allZeroPrice = false
		}
		if !strings.EqualFold(it.Category, constants.UnknownCategory) ||
			!strings.EqualFold(it.Subcategory, constants.UnknownCategory) {
			allUnknown = false
		}
		if strings.TrimSpace(it.OriginalName) != "" || strings.TrimSpace(it.TranslatedName) != "" {
			allEmptyNames = false
		}
	}
	return allZeroPrice && (allUnknown || allEmptyNames)
}

func preview(s string) string {
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
