// Package conversation drives the per-submitter correction dialogue: photo
// intake, language and currency selection, extraction, line-item editing,
// and confirmation into the configured sinks.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avelichko/receipty/constants"
	"github.com/avelichko/receipty/internal/aggregator"
	"github.com/avelichko/receipty/internal/common"
	"github.com/avelichko/receipty/internal/entity"
	"github.com/avelichko/receipty/internal/extract"
	"github.com/avelichko/receipty/internal/ledger"
	"github.com/avelichko/receipty/internal/prefs"
)

// Runner is the extraction pipeline surface the engine depends on.
type Runner interface {
	Run(ctx context.Context, photos [][]byte, language string) ([]entity.LineItem, string, error)
}

// Preferences is the per-submitter MRU history store.
type Preferences interface {
	Recent(kind prefs.Kind, submitterID int64) []string
	Touch(kind prefs.Kind, submitterID int64, value string) error
}

// Catalog supplies the category tree for manual entry buttons.
type Catalog interface {
	Names() []string
	Subcategories(name string) []string
}

// Config tunes the engine.
type Config struct {
	// MaxMessageLength is the transport's message ceiling; long summaries
	// are chunked to fit, reserving room for the action buttons.
	MaxMessageLength int
}

// session is the whole conversational state for one submitter. All fields
// are guarded by mu; at most one in-flight submission exists per submitter.
type session struct {
	mu        sync.Mutex
	state     State
	photos    [][]byte
	language  string
	currency  string
	ledger    *ledger.Ledger
	rawCSV    string
	editIndex int
	manual    entity.LineItem
}

// Engine is the conversation state machine, one session per submitter.
type Engine struct {
	cfg       Config
	agg       *aggregator.Aggregator
	runner    Runner
	transport Transport
	prefs     Preferences
	catalog   Catalog
	sinks     []Sink
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[int64]*session
}

func NewEngine(cfg Config, agg *aggregator.Aggregator, runner Runner, transport Transport, preferences Preferences, catalog Catalog, sinks []Sink, logger *slog.Logger) *Engine {
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = 4000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:       cfg,
		agg:       agg,
		runner:    runner,
		transport: transport,
		prefs:     preferences,
		catalog:   catalog,
		sinks:     sinks,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[int64]*session),
	}
}

func (e *Engine) session(submitterID int64) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[submitterID]
	if !ok {
		s = &session{state: StateIdle}
		e.sessions[submitterID] = s
	}
	return s
}

// HandleStart greets a new submitter.
func (e *Engine) HandleStart(ctx context.Context, submitterID int64) {
	e.send(ctx, submitterID, msgWelcome)
}

// HandleHelp lists the available commands.
func (e *Engine) HandleHelp(ctx context.Context, submitterID int64) {
	e.send(ctx, submitterID, msgCommands)
}

// HandlePhoto ingests one photo event. Photos sharing a non-empty batchKey
// are buffered by the aggregator until the burst settles; a photo without a
// batch key forms a single-photo submission immediately.
func (e *Engine) HandlePhoto(ctx context.Context, submitterID int64, batchKey string, photo []byte) {
	s := e.session(submitterID)

	if batchKey == "" {
		s.mu.Lock()
		if s.state != StateIdle {
			s.mu.Unlock()
			e.send(ctx, submitterID, msgBusyPending)
			return
		}
		s.photos = [][]byte{photo}
		e.askLanguage(ctx, submitterID, s)
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	busy := s.state != StateIdle
	s.mu.Unlock()
	if busy {
		e.send(ctx, submitterID, msgBusyPending)
		return
	}

	if started := e.agg.Add(batchKey, photo); started {
		e.send(ctx, submitterID, msgFirstPhoto)
		bg := context.WithoutCancel(ctx)
		go func() {
			photos := e.agg.AwaitCompletion(bg, batchKey)
			if len(photos) == 0 {
				return
			}
			e.batchReady(bg, submitterID, photos)
		}()
		return
	}
	e.send(ctx, submitterID, fmt.Sprintf(msgPhotoN, e.agg.Size(batchKey)))
}

// batchReady hands an aggregated burst to the dialogue.
func (e *Engine) batchReady(ctx context.Context, submitterID int64, photos [][]byte) {
	s := e.session(submitterID)
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		e.send(ctx, submitterID, msgBusyPending)
		return
	}
	s.photos = photos
	e.askLanguage(ctx, submitterID, s)
	s.mu.Unlock()
}

// HandleAddProduct starts the manual entry flow.
func (e *Engine) HandleAddProduct(ctx context.Context, submitterID int64) {
	s := e.session(submitterID)
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		e.send(ctx, submitterID, msgBusyPending)
		return
	}
	s.state = StateManualName
	s.mu.Unlock()
	e.send(ctx, submitterID, msgManualStart)
}

// HandleSelection processes one button press, identified by its callback
// data. Unknown data and out-of-state events are dropped.
func (e *Engine) HandleSelection(ctx context.Context, submitterID int64, data string) {
	ev, ok := parseSelection(data)
	if !ok {
		e.logger.Debug("conversation.selection.unknown", "submitter", submitterID, "data", data)
		return
	}
	e.dispatch(ctx, submitterID, ev)
}

// HandleText processes free-text input. The current state decides what the
// text means; text arriving in a state that expects none is dropped.
func (e *Engine) HandleText(ctx context.Context, submitterID int64, text string) {
	s := e.session(submitterID)
	s.mu.Lock()
	kind, ok := textEvents[s.state]
	s.mu.Unlock()
	if !ok {
		e.logger.Debug("conversation.text.ignored", "submitter", submitterID)
		return
	}
	e.dispatch(ctx, submitterID, event{kind: kind, value: strings.TrimSpace(text)})
}

func (e *Engine) dispatch(ctx context.Context, submitterID int64, ev event) {
	s := e.session(submitterID)
	s.mu.Lock()
	if !permitted(ev.kind, s.state) {
		state := s.state
		s.mu.Unlock()
		e.logger.Debug("conversation.event.ignored",
			"submitter", submitterID, "state", state.String(), "event", ev.kind)
		return
	}
	cont := e.apply(ctx, submitterID, s, ev)
	s.mu.Unlock()
	if cont != nil {
		cont()
	}
}

// apply performs one transition under the session lock. Long-running work
// (extraction, persistence) is returned as a continuation executed after the
// lock is released; the intermediate state gates off concurrent events.
func (e *Engine) apply(ctx context.Context, submitterID int64, s *session, ev event) func() {
	switch ev.kind {

	case evLanguagePick, evLanguageText:
		lang := ev.value
		if lang == "" {
			e.send(ctx, submitterID, msgLangEmpty)
			return nil
		}
		if err := e.prefs.Touch(prefs.Languages, submitterID, lang); err != nil {
			e.logger.Warn("conversation.prefs.touch_failed", "submitter", submitterID, "error", err)
		}
		s.language = lang
		photos := s.photos
		s.photos = nil
		s.state = StateExtracting
		e.send(ctx, submitterID, fmt.Sprintf(msgLangChosen, lang))
		return func() { e.runExtraction(ctx, submitterID, photos, lang) }

	case evLanguageOther:
		s.state = StateAwaitLanguage
		e.send(ctx, submitterID, msgEnterLang)

	case evCurrencyPick, evCurrencyText:
		code := strings.ToUpper(ev.value)
		if !constants.IsCurrencyCode(code) {
			e.send(ctx, submitterID, msgCurInvalid)
			return nil
		}
		if err := e.prefs.Touch(prefs.Currencies, submitterID, code); err != nil {
			e.logger.Warn("conversation.prefs.touch_failed", "submitter", submitterID, "error", err)
		}
		s.currency = code
		s.ledger.SetCurrency(code)
		s.state = StateReview
		e.showReview(ctx, submitterID, s)

	case evCurrencyOther:
		s.state = StateAwaitCurrency
		e.send(ctx, submitterID, msgEnterCur)

	case evActionEdit:
		s.state = StateSelectItem
		e.sendKeyboard(ctx, submitterID, msgChooseItem, itemRows(s.ledger.Items()))

	case evActionConfirm:
		if s.ledger == nil || s.ledger.Len() == 0 {
			e.send(ctx, submitterID, msgNothing)
			return nil
		}
		s.ledger.StampDate(e.now().Format("2006-01-02"))
		rows := s.ledger.ExpandByQuantity()
		s.state = StatePersisting
		return func() { e.persist(ctx, submitterID, s, rows) }

	case evActionCancel:
		e.reset(s)
		e.send(ctx, submitterID, msgCancelled)

	case evActionBack:
		if s.state == StateChooseField {
			s.state = StateSelectItem
			e.sendKeyboard(ctx, submitterID, msgChooseItem, itemRows(s.ledger.Items()))
			return nil
		}
		s.state = StateReview
		e.showReview(ctx, submitterID, s)

	case evItemPick:
		it, err := s.ledger.Item(ev.index)
		if err != nil {
			e.send(ctx, submitterID, msgBadIndex)
			return nil
		}
		s.editIndex = ev.index
		s.state = StateChooseField
		e.sendKeyboard(ctx, submitterID, fmt.Sprintf(msgChooseField, it.DisplayName()), fieldRows())

	case evFieldQuantity:
		s.state = StateAwaitQuantity
		e.send(ctx, submitterID, msgEnterQty)

	case evFieldPrice:
		s.state = StateAwaitPrice
		e.send(ctx, submitterID, msgEnterPrice)

	case evFieldDelete:
		if err := s.ledger.Remove(s.editIndex); err != nil {
			e.send(ctx, submitterID, msgBadIndex)
			return nil
		}
		if s.ledger.Len() == 0 {
			e.reset(s)
			e.send(ctx, submitterID, msgAllDeleted)
			return nil
		}
		s.state = StateReview
		e.showReview(ctx, submitterID, s)

	case evQuantityText:
		q, err := parseAmount(ev.value)
		if err != nil {
			e.send(ctx, submitterID, msgQtyInvalid)
			return nil
		}
		if !q.IsPositive() {
			e.send(ctx, submitterID, msgQtyNotPos)
			return nil
		}
		if err := s.ledger.SetQuantity(s.editIndex, q); err != nil {
			e.send(ctx, submitterID, msgBadIndex)
			return nil
		}
		s.state = StateReview
		e.showReview(ctx, submitterID, s)

	case evPriceText:
		p, err := parseAmount(ev.value)
		if err != nil {
			e.send(ctx, submitterID, msgPriceInvalid)
			return nil
		}
		if p.IsNegative() {
			e.send(ctx, submitterID, msgPriceNeg)
			return nil
		}
		if err := s.ledger.SetPrice(s.editIndex, p); err != nil {
			e.send(ctx, submitterID, msgBadIndex)
			return nil
		}
		s.state = StateReview
		e.showReview(ctx, submitterID, s)

	case evManualNameText:
		if ev.value == "" {
			e.send(ctx, submitterID, msgManualNoName)
			return nil
		}
		s.manual = entity.NewLineItem()
		s.manual.OriginalName = ev.value
		s.manual.TranslatedName = ev.value
		s.manual.ReceiptDate = e.now().Format("2006-01-02")
		names := e.catalog.Names()
		if len(names) == 0 {
			s.state = StateManualPrice
			e.send(ctx, submitterID, fmt.Sprintf(msgManualPrice, s.manual.Category, s.manual.Subcategory))
			return nil
		}
		s.state = StateManualCategory
		e.sendKeyboard(ctx, submitterID, fmt.Sprintf(msgManualCategory, ev.value), listRows(names, "manual_category"))

	case evManualCategoryPick:
		s.manual.Category = ev.value
		subs := e.catalog.Subcategories(ev.value)
		if len(subs) == 0 {
			s.state = StateManualPrice
			e.send(ctx, submitterID, fmt.Sprintf(msgManualPrice, s.manual.Category, s.manual.Subcategory))
			return nil
		}
		s.state = StateManualSubcategory
		e.sendKeyboard(ctx, submitterID, fmt.Sprintf(msgManualSubcat, ev.value), listRows(subs, "manual_subcategory"))

	case evManualSubcategoryPick:
		s.manual.Subcategory = ev.value
		s.state = StateManualPrice
		e.send(ctx, submitterID, fmt.Sprintf(msgManualPrice, s.manual.Category, s.manual.Subcategory))

	case evManualPriceText:
		p, err := parseAmount(ev.value)
		if err != nil {
			e.send(ctx, submitterID, msgPriceInvalid)
			return nil
		}
		if p.IsNegative() {
			e.send(ctx, submitterID, msgPriceNeg)
			return nil
		}
		s.manual.UnitPrice = p
		s.state = StateManualCurrency
		rows := optionRows(e.prefs.Recent(prefs.Currencies, submitterID), "manual_currency")
		e.sendKeyboard(ctx, submitterID, fmt.Sprintf(msgManualCur, p.StringFixed(2)), rows)

	case evManualCurrencyPick, evManualCurrencyText:
		code := strings.ToUpper(ev.value)
		if !constants.IsCurrencyCode(code) {
			e.send(ctx, submitterID, msgCurInvalid)
			return nil
		}
		if err := e.prefs.Touch(prefs.Currencies, submitterID, code); err != nil {
			e.logger.Warn("conversation.prefs.touch_failed", "submitter", submitterID, "error", err)
		}
		s.manual.Currency = code
		item := s.manual
		s.state = StatePersisting
		return func() { e.persistManual(ctx, submitterID, s, item) }

	case evManualCurrencyOther:
		s.state = StateAwaitManualCurrency
		e.send(ctx, submitterID, msgEnterCur)
	}
	return nil
}

// askLanguage must be called with the session lock held and photos staged.
func (e *Engine) askLanguage(ctx context.Context, submitterID int64, s *session) {
	s.state = StateChooseLanguage
	rows := optionRows(e.prefs.Recent(prefs.Languages, submitterID), "language")
	e.sendKeyboard(ctx, submitterID, msgChooseLang, rows)
}

// runExtraction executes the pipeline without holding the session lock; the
// Extracting state keeps the session closed to other events meanwhile. A
// degenerate result is re-run once before being accepted.
func (e *Engine) runExtraction(ctx context.Context, submitterID int64, photos [][]byte, language string) {
	if len(photos) > 1 {
		e.send(ctx, submitterID, fmt.Sprintf(msgProcessingN, len(photos)))
	} else {
		e.send(ctx, submitterID, msgProcessing1)
	}

	items, rawCSV, err := e.runner.Run(ctx, photos, language)
	if err == nil && extract.Suspicious(items) {
		e.logger.Warn("conversation.extract.suspicious_retry",
			"submitter", submitterID, "items", len(items))
		if items2, csv2, err2 := e.runner.Run(ctx, photos, language); err2 == nil {
			items, rawCSV = items2, csv2
		}
	}

	s := e.session(submitterID)
	if err != nil {
		e.logger.Error("conversation.extract.failed", "submitter", submitterID, "error", err)
		s.mu.Lock()
		e.reset(s)
		s.mu.Unlock()
		e.send(ctx, submitterID, extractionErrorText(err))
		return
	}
	if len(items) == 0 {
		e.logger.Warn("conversation.extract.empty", "submitter", submitterID)
		s.mu.Lock()
		e.reset(s)
		s.mu.Unlock()
		e.send(ctx, submitterID, msgErrEmpty)
		return
	}

	s.mu.Lock()
	s.ledger = ledger.New(items)
	s.rawCSV = rawCSV
	s.state = StateChooseCurrency
	rows := optionRows(e.prefs.Recent(prefs.Currencies, submitterID), "currency")
	e.sendKeyboard(ctx, submitterID, msgChooseCur, rows)
	s.mu.Unlock()
}

// persist pushes the expanded rows through every sink. Any one success is
// enough to discard the submission; total failure keeps it for another
// confirm attempt.
func (e *Engine) persist(ctx context.Context, submitterID int64, s *session, rows []entity.LineItem) {
	saved := e.saveToSinks(ctx, submitterID, rows)

	s.mu.Lock()
	if len(saved) > 0 {
		e.reset(s)
		s.mu.Unlock()
		e.send(ctx, submitterID, fmt.Sprintf(msgSaved, strings.Join(saved, ", ")))
		return
	}
	s.state = StateReview
	s.mu.Unlock()
	e.send(ctx, submitterID, msgSaveFailed)
}

// persistManual saves a single manually entered item through the same sinks.
func (e *Engine) persistManual(ctx context.Context, submitterID int64, s *session, item entity.LineItem) {
	rows := ledger.New([]entity.LineItem{item}).ExpandByQuantity()
	saved := e.saveToSinks(ctx, submitterID, rows)

	s.mu.Lock()
	e.reset(s)
	s.mu.Unlock()

	if len(saved) > 0 {
		e.send(ctx, submitterID, fmt.Sprintf(msgManualSaved,
			item.OriginalName, strings.Join(saved, ", "),
			item.UnitPrice.StringFixed(2), item.Currency, item.ReceiptDate))
		return
	}
	e.send(ctx, submitterID, msgSaveFailed)
}

func (e *Engine) saveToSinks(ctx context.Context, submitterID int64, rows []entity.LineItem) []string {
	var saved []string
	for _, sink := range e.sinks {
		if err := sink.SaveRows(ctx, submitterID, rows); err != nil {
			e.logger.Error("conversation.persist.sink_failed",
				"submitter", submitterID, "sink", sink.Name(), "error", err)
			continue
		}
		e.logger.Info("conversation.persist.sink_ok",
			"submitter", submitterID, "sink", sink.Name(), "rows", len(rows))
		saved = append(saved, sink.Name())
	}
	return saved
}

// showReview must be called with the session lock held.
func (e *Engine) showReview(ctx context.Context, submitterID int64, s *session) {
	summary := Summary(s.ledger.Items(), s.currency)
	chunks := SplitMessage(summary, e.cfg.MaxMessageLength-200)
	for _, chunk := range chunks[:len(chunks)-1] {
		e.send(ctx, submitterID, chunk)
	}
	e.sendKeyboard(ctx, submitterID, chunks[len(chunks)-1], actionRows())
}

// reset must be called with the session lock held.
func (e *Engine) reset(s *session) {
	s.state = StateIdle
	s.photos = nil
	s.language = ""
	s.currency = ""
	s.ledger = nil
	s.rawCSV = ""
	s.editIndex = 0
	s.manual = entity.LineItem{}
}

func (e *Engine) send(ctx context.Context, submitterID int64, text string) {
	if err := e.transport.SendMessage(ctx, submitterID, text); err != nil {
		e.logger.Warn("conversation.send_failed", "submitter", submitterID, "error", err)
	}
}

func (e *Engine) sendKeyboard(ctx context.Context, submitterID int64, text string, rows [][]Button) {
	if err := e.transport.SendKeyboard(ctx, submitterID, text, rows); err != nil {
		e.logger.Warn("conversation.send_failed", "submitter", submitterID, "error", err)
	}
}

// parseSelection maps raw callback data to an event.
func parseSelection(data string) (event, bool) {
	switch {
	case data == "language_other":
		return event{kind: evLanguageOther}, true
	case strings.HasPrefix(data, "language_"):
		return event{kind: evLanguagePick, value: strings.TrimPrefix(data, "language_")}, true
	case data == "currency_other":
		return event{kind: evCurrencyOther}, true
	case strings.HasPrefix(data, "currency_"):
		return event{kind: evCurrencyPick, value: strings.TrimPrefix(data, "currency_")}, true
	case data == "action_edit":
		return event{kind: evActionEdit}, true
	case data == "action_confirm":
		return event{kind: evActionConfirm}, true
	case data == "action_cancel":
		return event{kind: evActionCancel}, true
	case data == "action_back":
		return event{kind: evActionBack}, true
	case strings.HasPrefix(data, "edit_product_"):
		idx, err := strconv.Atoi(strings.TrimPrefix(data, "edit_product_"))
		if err != nil {
			return event{}, false
		}
		return event{kind: evItemPick, index: idx}, true
	case data == "edit_quantity":
		return event{kind: evFieldQuantity}, true
	case data == "edit_price":
		return event{kind: evFieldPrice}, true
	case data == "edit_delete":
		return event{kind: evFieldDelete}, true
	case data == "manual_currency_other":
		return event{kind: evManualCurrencyOther}, true
	case strings.HasPrefix(data, "manual_currency_"):
		return event{kind: evManualCurrencyPick, value: strings.TrimPrefix(data, "manual_currency_")}, true
	case strings.HasPrefix(data, "manual_category_"):
		return event{kind: evManualCategoryPick, value: strings.TrimPrefix(data, "manual_category_")}, true
	case strings.HasPrefix(data, "manual_subcategory_"):
		return event{kind: evManualSubcategoryPick, value: strings.TrimPrefix(data, "manual_subcategory_")}, true
	}
	return event{}, false
}

// parseAmount accepts comma or period decimal separators.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(s)
}

// extractionErrorText maps a terminal pipeline failure to user guidance.
func extractionErrorText(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "cannot process images"):
		return msgErrFormat
	case errors.Is(err, common.ErrRefused):
		return msgErrRefused
	default:
		return msgErrGeneric
	}
}
