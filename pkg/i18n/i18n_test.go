package i18n

import (
	"testing"
	"time"
)

func TestTranslatorFallsBackToDefaultLocale(t *testing.T) {
	RegisterBuiltin()

	tr := NewTranslator("fr")
	if tr.Locale() != DefaultLocale {
		t.Errorf("Locale = %s, want %s", tr.Locale(), DefaultLocale)
	}
	if got := tr.T("patient.one"); got != "Patient" {
		t.Errorf("T(patient.one) = %q", got)
	}
}

func TestTranslatorMissingKeyReturnsKey(t *testing.T) {
	RegisterBuiltin()

	tr := NewTranslator("en")
	if got := tr.T("no.such.key"); got != "no.such.key" {
		t.Errorf("T = %q, want the key itself", got)
	}
}

func TestTranslatorMissingSpanishKeyFallsBackToEnglish(t *testing.T) {
	RegisterBuiltin()
	Register("en", Catalog{"only.en": "English only"})

	tr := NewTranslator("es")
	if got := tr.T("patient.one"); got != "Paciente" {
		t.Errorf("T(patient.one) = %q", got)
	}
	if got := tr.T("only.en"); got != "English only" {
		t.Errorf("T(only.en) = %q, want the English fallback", got)
	}
}

func TestTranslatorFormatsArguments(t *testing.T) {
	RegisterBuiltin()

	tr := NewTranslator("en")
	if got := tr.T("list.showing", 2, 40); got != "Showing 2 of 40" {
		t.Errorf("T(list.showing) = %q", got)
	}
}

func TestLocaleAwareFormatting(t *testing.T) {
	RegisterBuiltin()
	when := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

	en := NewTranslator("en")
	if got := en.FormatDate(when); got != "Mar 2, 2026" {
		t.Errorf("en FormatDate = %q", got)
	}
	if got := en.FormatMoney(177.5, "USD"); got != "USD 177.50" {
		t.Errorf("en FormatMoney = %q", got)
	}

	es := NewTranslator("es")
	if got := es.FormatDate(when); got != "02/03/2026" {
		t.Errorf("es FormatDate = %q", got)
	}
	if got := es.FormatMoney(177.5, "USD"); got != "177.50 USD" {
		t.Errorf("es FormatMoney = %q", got)
	}
}
