package constants

import "strings"

// DefaultCurrencies seed the currency keyboard for submitters with no history.
var DefaultCurrencies = []string{"RSD", "EUR", "USD", "RUB"}

// MaxStoredPreferences caps the per-submitter MRU lists.
const MaxStoredPreferences = 6

// currencySymbols maps ISO 4217 codes to display symbols.
var currencySymbols = map[string]string{
	"RSD": "дин.",
	"EUR": "€",
	"USD": "$",
	"RUB": "₽",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"CHF": "CHF",
	"CAD": "C$",
	"AUD": "A$",
	"NZD": "NZ$",
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
	"PLN": "zł",
	"CZK": "Kč",
	"HUF": "Ft",
	"RON": "lei",
	"BGN": "лв",
	"HRK": "kn",
	"TRY": "₺",
	"INR": "₹",
	"KRW": "₩",
	"SGD": "S$",
	"HKD": "HK$",
	"MXN": "$",
	"BRL": "R$",
	"ZAR": "R",
}

// CurrencySymbol returns the display symbol for a currency code, or the
// code itself when no symbol is known.
func CurrencySymbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return code
}

// IsCurrencyCode reports whether s is exactly three ASCII letters.
func IsCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
