// Package i18n provides the message catalogs and locale-aware formatting
// used by user-facing surfaces. Catalogs are registered explicitly at
// startup; lookups for a missing locale or key fall back to English so a
// gap in a translation never blanks the UI.
package i18n

import (
	"fmt"
	"sync"
	"time"
)

// DefaultLocale is the fallback for unknown locales and missing keys.
const DefaultLocale = "en"

var (
	mu       sync.RWMutex
	catalogs = map[string]Catalog{}
)

// Catalog maps message keys to locale-specific templates. Templates use
// fmt verbs for their arguments.
type Catalog map[string]string

// Register installs a catalog for a locale, merging over any previously
// registered entries for the same locale.
func Register(locale string, c Catalog) {
	mu.Lock()
	defer mu.Unlock()
	existing, ok := catalogs[locale]
	if !ok {
		existing = Catalog{}
		catalogs[locale] = existing
	}
	for k, v := range c {
		existing[k] = v
	}
}

// Locales returns the registered locale codes.
func Locales() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(catalogs))
	for l := range catalogs {
		out = append(out, l)
	}
	return out
}

// Translator resolves messages for one locale.
type Translator struct {
	locale string
}

// NewTranslator returns a translator for the locale, falling back to the
// default when the locale has no catalog.
func NewTranslator(locale string) *Translator {
	mu.RLock()
	_, ok := catalogs[locale]
	mu.RUnlock()
	if !ok {
		locale = DefaultLocale
	}
	return &Translator{locale: locale}
}

// Locale returns the resolved locale code.
func (t *Translator) Locale() string {
	return t.locale
}

// T resolves a message key, formatting it with the given arguments. An
// unknown key returns the key itself so the gap is visible rather than
// silent.
func (t *Translator) T(key string, args ...interface{}) string {
	mu.RLock()
	template, ok := catalogs[t.locale][key]
	if !ok {
		template, ok = catalogs[DefaultLocale][key]
	}
	mu.RUnlock()
	if !ok {
		return key
	}
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}

// FormatDate renders a calendar date in the locale's conventional order.
func (t *Translator) FormatDate(d time.Time) string {
	switch t.locale {
	case "es":
		return d.Format("02/01/2006")
	default:
		return d.Format("Jan 2, 2006")
	}
}

// FormatDateTime renders a timestamp in the locale's conventional order.
func (t *Translator) FormatDateTime(d time.Time) string {
	switch t.locale {
	case "es":
		return d.Format("02/01/2006 15:04")
	default:
		return d.Format("Jan 2, 2006 3:04 PM")
	}
}

// FormatMoney renders a monetary amount with its currency code. Amounts
// are kept in major units; rendering always shows two decimals.
func (t *Translator) FormatMoney(amount float64, currency string) string {
	switch t.locale {
	case "es":
		return fmt.Sprintf("%.2f %s", amount, currency)
	default:
		return fmt.Sprintf("%s %.2f", currency, amount)
	}
}
