package report

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyCode prefixes every formatted amount.
const CurrencyCode = "IDR"

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatNumber groups thousands the Indonesian way: 1.234.567.
func FormatNumber(n int64) string {
	return idPrinter.Sprintf("%d", n)
}

// FormatIDR renders a whole-Rupiah amount as "IDR 1.234.567".
func FormatIDR(amount int64) string {
	return CurrencyCode + " " + FormatNumber(amount)
}

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatMonth renders a YYYY-MM key as "Oktober 2026". Keys that do not parse
// are returned unchanged.
func FormatMonth(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return indonesianMonths[t.Month()-1] + " " + t.Format("2006")
}

// FormatDate renders a date the way id-ID short dates look: 15/10/2026.
func FormatDate(t time.Time) string {
	return t.Format("2/1/2006")
}
