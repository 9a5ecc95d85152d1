// internal/engine/normalize/candidates.go
package normalize

import "bi-agent/internal/models"

// Candidates lists, per semantic field, the column titles to try in priority
// order. Matching is case-insensitive and exact; the first title found on the
// board wins. Boards rename columns freely, so the lists carry the common
// variants seen in practice.
type Candidates struct {
	Amount      []string
	Status      []string
	Sector      []string
	DateStart   []string
	DateEnd     []string
	Probability []string
}

// DefaultsFor returns the candidate column titles for a record collection.
func DefaultsFor(source models.DataSource) Candidates {
	if source == models.SourceWorkOrders {
		return Candidates{
			Amount:      []string{"contract value", "value", "amount"},
			Status:      []string{"status", "stage"},
			Sector:      []string{"sector", "industry"},
			DateStart:   []string{"start date", "start"},
			DateEnd:     []string{"end date", "end", "finish date"},
			Probability: []string{"probability", "win probability"},
		}
	}
	return Candidates{
		Amount:      []string{"deal value", "amount", "value"},
		Status:      []string{"status", "stage"},
		Sector:      []string{"sector", "industry"},
		DateStart:   []string{"start date"},
		DateEnd:     []string{"close date", "expected close", "close"},
		Probability: []string{"probability", "win probability", "likelihood"},
	}
}
