// internal/engine/normalize/parse.go
package normalize

import (
	"strconv"
	"strings"
	"time"

	"bi-agent/internal/models"
)

// currencySymbols covers the renderings the board service produces for money
// columns. Thousands separators and surrounding whitespace are stripped too.
var currencySymbols = []string{"$", "€", "£", "¥"}

// ParseMoney converts a currency-like string to its signed numeric value.
// Parenthesized numbers are negative: "$(1,200.50)" yields -1200.50.
func ParseMoney(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	// Accounting style puts the symbol outside the parentheses, or inside.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// ParseProbability normalizes percentage-like strings ("60%"), bare fractions
// (0.6), and bare percents (60) to a value in [0,1]. Values outside the range
// after conversion are clamped, not rejected.
func ParseProbability(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	percent := strings.Contains(s, "%")
	s = strings.TrimSpace(strings.ReplaceAll(s, "%", ""))

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if percent || v > 1 {
		v /= 100
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v, true
}

// dateLayouts are tried in order. The board service renders dates as ISO
// strings but imported boards carry looser formats.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate parses a date string tolerantly. Failure is reported via ok,
// never an error: a record with an unparseable date still contributes to
// non-time-filtered metrics.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// foldKey lowercases and collapses internal whitespace so column titles and
// status values compare case/space-insensitively.
func foldKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// titleCase uppercases the first letter of each word, matching how sector
// names are displayed.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// NormalizeSector trims and title-cases a sector value. Empty or
// whitespace-only input becomes SectorUnknown.
func NormalizeSector(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.SectorUnknown
	}
	return titleCase(s)
}

var canonicalStatuses = []string{
	models.StatusWon,
	models.StatusLost,
	models.StatusCompleted,
	models.StatusClosed,
	models.StatusCancelled,
	models.StatusActive,
	"In Progress",
	"Pending",
}

// CanonicalStatus maps a raw status to its canonical comparison form while
// keeping the trimmed original for display. Unrecognized statuses are
// title-cased so comparisons stay case-insensitive.
func CanonicalStatus(s string) (canonical, display string) {
	display = strings.TrimSpace(s)
	if display == "" {
		return "", ""
	}
	folded := foldKey(display)
	for _, c := range canonicalStatuses {
		if foldKey(c) == folded {
			return c, display
		}
	}
	return titleCase(display), display
}
