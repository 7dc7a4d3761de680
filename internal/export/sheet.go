// Package export appends confirmed line items to an XLSX workbook.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/avelichko/receipty/constants"
	"github.com/avelichko/receipty/internal/entity"
)

// SheetSink appends expanded rows to one tab of a workbook on disk, creating
// the workbook, tab, and header row as needed. Missing header columns are
// added after the existing ones so older workbooks keep their data.
type SheetSink struct {
	path   string
	tab    string
	logger *slog.Logger

	mu sync.Mutex // excelize files are not safe for concurrent writers
}

func NewSheetSink(path, tab string, logger *slog.Logger) *SheetSink {
	if tab == "" {
		tab = "receipts"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetSink{path: path, tab: tab, logger: logger}
}

// Name identifies the sink in user-facing success messages.
func (s *SheetSink) Name() string { return "Google Sheets" }

// SaveRows appends one workbook row per line item and saves the file.
func (s *SheetSink) SaveRows(ctx context.Context, submitterID int64, rows []entity.LineItem) error {
	if len(rows) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	f, created, err := s.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("export.workbook.close_error", "error", cerr)
		}
	}()

	header, err := s.ensureHeader(f)
	if err != nil {
		return err
	}

	existing, err := f.GetRows(s.tab)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", s.tab, err)
	}
	next := len(existing) + 1

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}

	for _, item := range rows {
		record := make([]any, len(header))
		set := func(name string, v any) {
			if i, ok := col[name]; ok {
				record[i] = v
			}
		}
		set("original_product_name", item.OriginalName)
		set("translated_product_name", item.TranslatedName)
		set("category", item.Category)
		set("subcategory", item.Subcategory)
		set("price", item.UnitPrice.String())
		set("receipt_date", item.ReceiptDate)
		set("currency", item.Currency)

		cell, _ := excelize.CoordinatesToCellName(1, next)
		if err := f.SetSheetRow(s.tab, cell, &record); err != nil {
			return fmt.Errorf("write row %d: %w", next, err)
		}
		next++
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook %q: %w", s.path, err)
	}

	s.logger.Info("export.rows.appended",
		"submitter", submitterID,
		"path", s.path,
		"tab", s.tab,
		"rows", len(rows),
		"created", created,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// open loads the workbook from disk or starts a fresh one.
func (s *SheetSink) open() (*excelize.File, bool, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return excelize.NewFile(), true, nil
		}
		return nil, false, fmt.Errorf("stat workbook %q: %w", s.path, err)
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, false, fmt.Errorf("open workbook %q: %w", s.path, err)
	}
	return f, false, nil
}

// ensureHeader makes sure the tab exists and its header row carries every
// expected column, appending any that are missing. It returns the effective
// header order.
func (s *SheetSink) ensureHeader(f *excelize.File) ([]string, error) {
	if idx, _ := f.GetSheetIndex(s.tab); idx == -1 {
		if _, err := f.NewSheet(s.tab); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", s.tab, err)
		}
	}
	idx, _ := f.GetSheetIndex(s.tab)
	f.SetActiveSheet(idx)

	rows, err := f.GetRows(s.tab)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", s.tab, err)
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	changed := len(header) == 0
	for _, want := range constants.ExportColumns {
		if !have[want] {
			header = append(header, want)
			changed = true
		}
	}
	if changed {
		hdr := make([]any, len(header))
		for i, h := range header {
			hdr[i] = h
		}
		if err := f.SetSheetRow(s.tab, "A1", &hdr); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		s.logger.Info("export.header.updated", "tab", s.tab, "columns", len(header))
	}
	return header, nil
}
