// internal/engine/analytics/engine.go

// Package analytics computes metric values over canonical records. It is
// pure: no I/O, no clock, the same inputs always give the same result.
package analytics

import (
	"sort"

	"bi-agent/internal/common/config"
	"bi-agent/internal/common/logger"
	"bi-agent/internal/engine/caveats"
	"bi-agent/internal/models"
)

const emptyFilterCaveat = "no records matched the requested filters; the result reflects an empty data set"

type Engine struct {
	weighting string
	logger    logger.Logger
}

// New builds an engine. weighting selects how pipeline records without a
// probability are treated: WeightingOptimistic counts them at full value,
// WeightingStrict counts them as zero.
func New(weighting string, log logger.Logger) *Engine {
	if weighting == "" {
		weighting = config.WeightingOptimistic
	}
	return &Engine{
		weighting: weighting,
		logger:    log.WithFields(map[string]interface{}{"component": "analytics-engine"}),
	}
}

// Compute filters the records by the intent's sector and timeframe, then
// aggregates the requested metric. An empty filtered set yields a zero value
// and a caveat, never an error.
func (e *Engine) Compute(intent models.Intent, records []models.CanonicalRecord, cc *caveats.Collector) models.AnalyticsResult {
	filtered := filter(records, intent)

	// An empty input set already carries its own caveat upstream; only the
	// transition from some records to none is reported here.
	if len(records) > 0 && len(filtered) == 0 {
		cc.Caveat(emptyFilterCaveat)
	}

	result := models.AnalyticsResult{Metric: intent.Metric}

	switch intent.Metric {
	case models.MetricPipelineValue:
		result.Value, result.RecordCount = sum(filtered, isPipeline, e.pipelineValue)
	case models.MetricRevenue:
		result.Value, result.RecordCount = sum(filtered, isRevenue, amountOf)
	case models.MetricActiveProjectsValue:
		result.Value, result.RecordCount = sum(filtered, isActive, amountOf)
	case models.MetricSectorBreakdown:
		result.Breakdown = e.breakdown(filtered)
		result.RecordCount = len(filtered)
		total := 0.0
		for _, st := range result.Breakdown {
			total += st.Pipeline + st.Revenue
		}
		result.Value = &total
	}

	e.logger.Debug("metric computed", map[string]interface{}{
		"metric":      string(intent.Metric),
		"recordCount": result.RecordCount,
	})

	return result
}

// filter applies the sector filter, then the timeframe filter. Records with
// no date survive only when no timeframe filter is active.
func filter(records []models.CanonicalRecord, intent models.Intent) []models.CanonicalRecord {
	out := make([]models.CanonicalRecord, 0, len(records))
	for _, rec := range records {
		if intent.Sector != nil && rec.Sector != *intent.Sector {
			continue
		}
		if intent.Timeframe != nil {
			if rec.Date == nil || !intent.Timeframe.Contains(*rec.Date) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

func sum(records []models.CanonicalRecord, match func(models.CanonicalRecord) bool, value func(models.CanonicalRecord) float64) (*float64, int) {
	total := 0.0
	count := 0
	for _, rec := range records {
		if !match(rec) {
			continue
		}
		count++
		total += value(rec)
	}
	return &total, count
}

func isPipeline(rec models.CanonicalRecord) bool { return rec.Status != models.StatusWon }

func isRevenue(rec models.CanonicalRecord) bool { return rec.Status == models.StatusWon }

func isActive(rec models.CanonicalRecord) bool {
	switch rec.Status {
	case models.StatusCompleted, models.StatusClosed, models.StatusCancelled:
		return false
	}
	return true
}

func amountOf(rec models.CanonicalRecord) float64 {
	if rec.Amount == nil {
		return 0
	}
	return *rec.Amount
}

// pipelineValue weights an open record's amount by its win probability. A
// record with no probability counts at full value under optimistic weighting
// and at zero under strict weighting.
func (e *Engine) pipelineValue(rec models.CanonicalRecord) float64 {
	if rec.Amount == nil {
		return 0
	}
	if rec.Probability != nil {
		return *rec.Amount * *rec.Probability
	}
	if e.weighting == config.WeightingStrict {
		return 0
	}
	return *rec.Amount
}

// breakdown totals pipeline and revenue per sector. The result is sorted by
// pipeline+revenue descending; sectors with equal totals keep the order in
// which they first appeared in the record set.
func (e *Engine) breakdown(records []models.CanonicalRecord) []models.SectorTotals {
	index := make(map[string]int)
	var totals []models.SectorTotals

	for _, rec := range records {
		i, ok := index[rec.Sector]
		if !ok {
			i = len(totals)
			index[rec.Sector] = i
			totals = append(totals, models.SectorTotals{Sector: rec.Sector})
		}
		if isRevenue(rec) {
			totals[i].Revenue += amountOf(rec)
		} else {
			totals[i].Pipeline += e.pipelineValue(rec)
		}
	}

	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].Pipeline+totals[a].Revenue > totals[b].Pipeline+totals[b].Revenue
	})
	return totals
}
