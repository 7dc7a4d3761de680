package conversation

// State is the per-submitter position in the correction dialogue.
type State int

const (
	StateIdle State = iota
	StateChooseLanguage
	StateAwaitLanguage
	StateExtracting
	StateChooseCurrency
	StateAwaitCurrency
	StateReview
	StateSelectItem
	StateChooseField
	StateAwaitQuantity
	StateAwaitPrice
	StatePersisting
	StateManualName
	StateManualCategory
	StateManualSubcategory
	StateManualPrice
	StateManualCurrency
	StateAwaitManualCurrency
)

var stateNames = map[State]string{
	StateIdle:                "idle",
	StateChooseLanguage:      "choose_language",
	StateAwaitLanguage:       "await_language",
	StateExtracting:          "extracting",
	StateChooseCurrency:      "choose_currency",
	StateAwaitCurrency:       "await_currency",
	StateReview:              "review",
	StateSelectItem:          "select_item",
	StateChooseField:         "choose_field",
	StateAwaitQuantity:       "await_quantity",
	StateAwaitPrice:          "await_price",
	StatePersisting:          "persisting",
	StateManualName:          "manual_name",
	StateManualCategory:      "manual_category",
	StateManualSubcategory:   "manual_subcategory",
	StateManualPrice:         "manual_price",
	StateManualCurrency:      "manual_currency",
	StateAwaitManualCurrency: "await_manual_currency",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// eventKind classifies one incoming chat event after parsing.
type eventKind int

const (
	evLanguagePick eventKind = iota
	evLanguageOther
	evLanguageText
	evCurrencyPick
	evCurrencyOther
	evCurrencyText
	evActionEdit
	evActionConfirm
	evActionCancel
	evActionBack
	evItemPick
	evFieldQuantity
	evFieldPrice
	evFieldDelete
	evQuantityText
	evPriceText
	evManualNameText
	evManualCategoryPick
	evManualSubcategoryPick
	evManualPriceText
	evManualCurrencyPick
	evManualCurrencyOther
	evManualCurrencyText
)

// event is one parsed chat interaction addressed to the machine.
type event struct {
	kind  eventKind
	value string
	index int
}

// allowed is the transition gate: an event kind delivered while the session
// is in a state not listed here is dropped as a contractual no-op (logged,
// never an error). Confirm is additionally allowed in Idle so a re-delivered
// confirm after a completed persistence can answer "nothing pending".
var allowed = map[eventKind][]State{
	evLanguagePick:          {StateChooseLanguage},
	evLanguageOther:         {StateChooseLanguage},
	evLanguageText:          {StateAwaitLanguage},
	evCurrencyPick:          {StateChooseCurrency},
	evCurrencyOther:         {StateChooseCurrency},
	evCurrencyText:          {StateAwaitCurrency},
	evActionEdit:            {StateReview, StateSelectItem},
	evActionConfirm:         {StateReview, StateIdle},
	evActionCancel:          {StateReview, StateSelectItem, StateChooseField, StateAwaitQuantity, StateAwaitPrice, StateChooseCurrency, StateAwaitCurrency, StateChooseLanguage, StateAwaitLanguage},
	evActionBack:            {StateSelectItem, StateChooseField},
	evItemPick:              {StateSelectItem},
	evFieldQuantity:         {StateChooseField},
	evFieldPrice:            {StateChooseField},
	evFieldDelete:           {StateChooseField},
	evQuantityText:          {StateAwaitQuantity},
	evPriceText:             {StateAwaitPrice},
	evManualNameText:        {StateManualName},
	evManualCategoryPick:    {StateManualCategory},
	evManualSubcategoryPick: {StateManualSubcategory},
	evManualPriceText:       {StateManualPrice},
	evManualCurrencyPick:    {StateManualCurrency},
	evManualCurrencyOther:   {StateManualCurrency},
	evManualCurrencyText:    {StateAwaitManualCurrency},
}

func permitted(kind eventKind, s State) bool {
	for _, st := range allowed[kind] {
		if st == s {
			return true
		}
	}
	return false
}

// textEvents maps the states that expect free-text input to the event the
// text represents. Text arriving in any other state is ignored.
var textEvents = map[State]eventKind{
	StateAwaitLanguage:       evLanguageText,
	StateAwaitCurrency:       evCurrencyText,
	StateAwaitQuantity:       evQuantityText,
	StateAwaitPrice:          evPriceText,
	StateManualName:          evManualNameText,
	StateManualPrice:         evManualPriceText,
	StateAwaitManualCurrency: evManualCurrencyText,
}
