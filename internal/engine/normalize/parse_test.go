// internal/engine/normalize/parse_test.go
package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bi-agent/internal/models"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"plain integer", "1200", 1200, true},
		{"plain decimal", "1200.50", 1200.50, true},
		{"dollar sign", "$1200.50", 1200.50, true},
		{"thousands separators", "1,200,300", 1200300, true},
		{"symbol and separators", "$1,200.50", 1200.50, true},
		{"euro", "€950", 950, true},
		{"pound with spaces", " £ 2,500 ", 2500, true},
		{"parenthesized negative", "(1,200.50)", -1200.50, true},
		{"symbol inside parens", "($1,200.50)", -1200.50, true},
		{"symbol outside parens", "$(1,200.50)", -1200.50, true},
		{"explicit negative", "-450.25", -450.25, true},
		{"explicit positive", "+450.25", 450.25, true},
		{"empty", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"not a number", "pending", 0, false},
		{"mixed garbage", "$abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ParseMoney(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, v, 1e-9)
			}
		})
	}
}

func TestParseProbability(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"percent string", "60%", 0.6, true},
		{"bare fraction", "0.6", 0.6, true},
		{"bare percent value", "60", 0.6, true},
		{"one is a fraction", "1", 1, true},
		{"percent with spaces", " 75 % ", 0.75, true},
		{"over one hundred clamps", "150", 1, true},
		{"over one hundred percent clamps", "150%", 1, true},
		{"negative clamps to zero", "-20%", 0, true},
		{"empty", "", 0, false},
		{"not a number", "high", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ParseProbability(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, v, 1e-9)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		ok       bool
	}{
		{"iso", "2026-03-14", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), true},
		{"iso datetime", "2026-03-14 09:30:00", time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), true},
		{"slashes", "2026/03/14", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), true},
		{"us style", "03/14/2026", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), true},
		{"long form", "Mar 14, 2026", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "sometime soon", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.expected.Equal(v), "expected %v, got %v", tt.expected, v)
			}
		})
	}
}

func TestNormalizeSector(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"healthcare", "Healthcare"},
		{"  HEALTH CARE  ", "Health Care"},
		{"financial services", "Financial Services"},
		{"", models.SectorUnknown},
		{"   ", models.SectorUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeSector(tt.input))
	}
}

func TestCanonicalStatus(t *testing.T) {
	tests := []struct {
		input     string
		canonical string
		display   string
	}{
		{"won", models.StatusWon, "won"},
		{"WON", models.StatusWon, "WON"},
		{" in  progress ", "In Progress", "in  progress"},
		{"completed", models.StatusCompleted, "completed"},
		{"Negotiation", "Negotiation", "Negotiation"},
		{"", "", ""},
	}

	for _, tt := range tests {
		canonical, display := CanonicalStatus(tt.input)
		assert.Equal(t, tt.canonical, canonical)
		assert.Equal(t, tt.display, display)
	}
}
