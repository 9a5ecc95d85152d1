// internal/models/result.go
package models

// SectorTotals holds the per-sector aggregates of a sector breakdown.
type SectorTotals struct {
	Sector   string  `json:"sector"`
	Pipeline float64 `json:"pipeline"`
	Revenue  float64 `json:"revenue"`
}

// AnalyticsResult is the output of one aggregation run. Breakdown is set
// only for the sector_breakdown metric and preserves its computed order.
type AnalyticsResult struct {
	Metric      Metric         `json:"metric"`
	Value       *float64       `json:"value"`
	Breakdown   []SectorTotals `json:"breakdown,omitempty"`
	RecordCount int            `json:"recordCount"`
}
