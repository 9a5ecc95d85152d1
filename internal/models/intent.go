// internal/models/intent.go
package models

import (
	"fmt"
	"time"
)

// Metric identifies which aggregate the caller is asking for.
type Metric string

const (
	MetricPipelineValue       Metric = "pipeline_value"
	MetricRevenue             Metric = "revenue"
	MetricActiveProjectsValue Metric = "active_projects_value"
	MetricSectorBreakdown     Metric = "sector_breakdown"
)

// ValidMetric reports whether m is one of the supported metrics.
func ValidMetric(m Metric) bool {
	switch m {
	case MetricPipelineValue, MetricRevenue, MetricActiveProjectsValue, MetricSectorBreakdown:
		return true
	}
	return false
}

// DataSource identifies one of the two tracked record collections.
type DataSource string

const (
	SourceDeals      DataSource = "deals"
	SourceWorkOrders DataSource = "work_orders"
)

// ValidDataSource reports whether s is a known record collection.
func ValidDataSource(s DataSource) bool {
	return s == SourceDeals || s == SourceWorkOrders
}

// TimeframeKind distinguishes quarter from year timeframes.
type TimeframeKind string

const (
	TimeframeQuarter TimeframeKind = "quarter"
	TimeframeYear    TimeframeKind = "year"
)

// Timeframe is a calendar quarter or year used to filter records by date.
type Timeframe struct {
	Kind    TimeframeKind `json:"kind"`
	Year    int           `json:"year"`
	Quarter int           `json:"quarter,omitempty"` // 1..4, only for Kind == quarter
}

// Bounds returns the inclusive start and end of the timeframe in UTC.
func (t Timeframe) Bounds() (time.Time, time.Time) {
	if t.Kind == TimeframeQuarter {
		startMonth := time.Month((t.Quarter-1)*3 + 1)
		start := time.Date(t.Year, startMonth, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 3, 0).Add(-time.Nanosecond)
		return start, end
	}
	start := time.Date(t.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	return start, end
}

// Contains reports whether ts falls within the timeframe's inclusive bounds.
func (t Timeframe) Contains(ts time.Time) bool {
	start, end := t.Bounds()
	return !ts.Before(start) && !ts.After(end)
}

func (t Timeframe) String() string {
	if t.Kind == TimeframeQuarter {
		return fmt.Sprintf("%dQ%d", t.Year, t.Quarter)
	}
	return fmt.Sprintf("%d", t.Year)
}

// Intent is the structured representation of a user's question, sufficient
// to drive aggregation. Sector and Timeframe stay nil when the user did not
// specify them; downstream logic treats that as "didn't say", not "all".
type Intent struct {
	Metric     Metric     `json:"metric"`
	Sector     *string    `json:"sector,omitempty"`
	Timeframe  *Timeframe `json:"timeframe,omitempty"`
	DataSource DataSource `json:"dataSource"`
}
