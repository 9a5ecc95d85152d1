// internal/engine/normalize/normalizer_test.go
package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bi-agent/internal/common/logger"
	"bi-agent/internal/engine/caveats"
	"bi-agent/internal/models"
)

func record(name string, cells map[string]string) models.RawRecord {
	rec := models.RawRecord{ID: name, Name: name}
	// Fixed column order so auto-detection is deterministic in tests.
	for _, title := range []string{"Sector", "Status", "Deal Value", "Contract Value", "Budget", "Close Date", "Start Date", "End Date", "Probability", "Notes"} {
		if v, ok := cells[title]; ok {
			rec.ColumnValues = append(rec.ColumnValues, models.RawColumnValue{
				ID: title, Title: title, Text: v,
			})
		}
	}
	return rec
}

func TestNormalize_DealRecord(t *testing.T) {
	n := New(logger.NewTestLogger(t))
	cc := caveats.New()

	records := []models.RawRecord{
		record("Acme expansion", map[string]string{
			"Sector":      "healthcare",
			"Status":      "WON",
			"Deal Value":  "$1,200.50",
			"Close Date":  "2026-03-14",
			"Probability": "60%",
		}),
	}

	out := n.Normalize(models.SourceDeals, records, DefaultsFor(models.SourceDeals), cc)
	require.Len(t, out, 1)

	cr := out[0]
	assert.Equal(t, models.SourceDeals, cr.EntityType)
	require.NotNil(t, cr.Amount)
	assert.InDelta(t, 1200.50, *cr.Amount, 1e-9)
	assert.Equal(t, models.StatusWon, cr.Status)
	assert.Equal(t, "WON", cr.StatusDisplay)
	assert.Equal(t, "Healthcare", cr.Sector)
	require.NotNil(t, cr.Date)
	assert.Equal(t, 2026, cr.Date.Year())
	require.NotNil(t, cr.Probability)
	assert.InDelta(t, 0.6, *cr.Probability, 1e-9)
	assert.Empty(t, cc.Caveats())
}

func TestNormalize_MissingFieldsBecomeNullOrUnknown(t *testing.T) {
	n := New(logger.NewTestLogger(t))
	cc := caveats.New()

	records := []models.RawRecord{
		record("bare", map[string]string{"Status": "Active"}),
	}

	out := n.Normalize(models.SourceDeals, records, DefaultsFor(models.SourceDeals), cc)
	require.Len(t, out, 1)

	cr := out[0]
	assert.Nil(t, cr.Amount)
	assert.Nil(t, cr.Date)
	assert.Nil(t, cr.Probability)
	assert.Equal(t, models.SectorUnknown, cr.Sector)
}

func TestNormalize_UnparseableDateIsNilNotError(t *testing.T) {
	n := New(logger.NewTestLogger(t))
	cc := caveats.New()

	records := []models.RawRecord{
		record("d", map[string]string{
			"Deal Value": "100",
			"Close Date": "sometime in spring",
		}),
	}

	out := n.Normalize(models.SourceDeals, records, DefaultsFor(models.SourceDeals), cc)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Date)
	require.NotNil(t, out[0].Amount)
}

func TestNormalize_WorkOrderPrefersEndDate(t *testing.T) {
	n := New(logger.NewTestLogger(t))
	cc := caveats.New()

	records := []models.RawRecord{
		record("wo", map[string]string{
			"Contract Value": "5000",
			"Start Date":     "2026-01-01",
			"End Date":       "2026-06-30",
		}),
	}

	out := n.Normalize(models.SourceWorkOrders, records, DefaultsFor(models.SourceWorkOrders), cc)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Date)
	assert.Equal(t, 6, int(out[0].Date.Month()))
}

func TestNormalize_AmountAutoDetection(t *testing.T) {
	n := New(logger.NewTestLogger(t))
	cc := caveats.New()

	// No candidate amount title matches; "Budget" should be picked because a
	// majority of its values are currency-like.
	records := []models.RawRecord{
		record("a", map[string]string{"Budget": "$10,000", "Notes": "call back"}),
		record("b", map[string]string{"Budget": "€2,500", "Notes": "sent quote"}),
		record("c", map[string]string{"Budget": "tbd", "Notes": "on hold"}),
	}

	out := n.Normalize(models.SourceDeals, records, DefaultsFor(models.SourceDeals), cc)
	require.Len(t, out, 3)
	require.NotNil(t, out[0].Amount)
	assert.InDelta(t, 10000, *out[0].Amount, 1e-9)
	require.NotNil(t, out[1].Amount)
	assert.Nil(t, out[2].Amount)
}

func TestNormalize_MajorityParseFailureEmitsCaveat(t *testing.T) {
	n := New(logger.NewTestLogger(t))
	cc := caveats.New()

	records := []models.RawRecord{
		record("a", map[string]string{"Deal Value": "n/a"}),
		record("b", map[string]string{"Deal Value": "tbd"}),
		record("c", map[string]string{"Deal Value": "100"}),
	}

	out := n.Normalize(models.SourceDeals, records, DefaultsFor(models.SourceDeals), cc)
	require.Len(t, out, 3)
	require.Len(t, cc.Caveats(), 1)
	assert.Contains(t, cc.Caveats()[0], "amount")
}

func TestNormalize_SingleParseFailureStaysSilent(t *testing.T) {
	n := New(logger.NewTestLogger(t))
	cc := caveats.New()

	records := []models.RawRecord{
		record("a", map[string]string{"Deal Value": "n/a"}),
		record("b", map[string]string{"Deal Value": "100"}),
		record("c", map[string]string{"Deal Value": "200"}),
	}

	n.Normalize(models.SourceDeals, records, DefaultsFor(models.SourceDeals), cc)
	assert.Empty(t, cc.Caveats())
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := New(logger.NewTestLogger(t))
	out := n.Normalize(models.SourceDeals, nil, DefaultsFor(models.SourceDeals), caveats.New())
	assert.Nil(t, out)
}

func TestNormalize_ValueFallbackWhenTextEmpty(t *testing.T) {
	n := New(logger.NewTestLogger(t))
	cc := caveats.New()

	records := []models.RawRecord{
		{
			ID:   "1",
			Name: "raw value only",
			ColumnValues: []models.RawColumnValue{
				{ID: "v", Title: "Deal Value", Text: "", Value: `"750"`},
			},
		},
	}

	out := n.Normalize(models.SourceDeals, records, DefaultsFor(models.SourceDeals), cc)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Amount)
	assert.InDelta(t, 750, *out[0].Amount, 1e-9)
}
