// internal/engine/intent/heuristic.go
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"bi-agent/internal/engine/normalize"
	"bi-agent/internal/models"
)

// metricKeywords associates each metric with the phrases that vote for it.
// Multi-word phrases are matched as substrings of the normalized question,
// single words against whole tokens.
var metricKeywords = map[models.Metric][]string{
	models.MetricPipelineValue:       {"pipeline", "open deals", "forecast"},
	models.MetricRevenue:             {"revenue", "won", "earned", "closed won"},
	models.MetricActiveProjectsValue: {"active", "in progress", "ongoing"},
	models.MetricSectorBreakdown:     {"breakdown", "by sector", "per sector", "across sectors", "split"},
}

// metricPriority breaks keyword-score ties deterministically.
var metricPriority = []models.Metric{
	models.MetricSectorBreakdown,
	models.MetricRevenue,
	models.MetricActiveProjectsValue,
	models.MetricPipelineValue,
}

var workOrderHints = []string{"work order", "work orders", "operations", "project", "projects"}

var (
	quarterYearRe = regexp.MustCompile(`\b(20\d{2})\s*q([1-4])\b`)
	quarterRe     = regexp.MustCompile(`\bq([1-4])\b`)
	yearRe        = regexp.MustCompile(`\b(20\d{2})\b`)
)

// heuristicIntent derives an Intent from the question text alone. Fields the
// question does not determine stay nil so callers can distinguish "didn't
// say" from "said all".
func (r *Resolver) heuristicIntent(question string) models.Intent {
	q := foldQuestion(question)

	intent := models.Intent{Metric: detectMetric(q)}
	intent.Sector = r.detectSector(q)
	intent.Timeframe = detectTimeframe(q, r.now())
	intent.DataSource = detectDataSource(q, intent.Metric)
	return intent
}

func detectMetric(q string) models.Metric {
	tokens := tokenSet(q)

	scores := make(map[models.Metric]int)
	for metric, phrases := range metricKeywords {
		for _, phrase := range phrases {
			if strings.Contains(phrase, " ") {
				if strings.Contains(q, phrase) {
					scores[metric]++
				}
			} else if tokens[phrase] {
				scores[metric]++
			}
		}
	}

	best := models.MetricPipelineValue // default when nothing matches
	bestScore := 0
	for _, metric := range metricPriority {
		if scores[metric] > bestScore {
			best = metric
			bestScore = scores[metric]
		}
	}
	return best
}

func (r *Resolver) detectSector(q string) *string {
	for _, sector := range r.sectors {
		if strings.Contains(q, strings.ToLower(sector)) {
			normalized := normalize.NormalizeSector(sector)
			return &normalized
		}
	}
	return nil
}

func detectTimeframe(q string, now time.Time) *models.Timeframe {
	if strings.Contains(q, "last quarter") {
		tf := quarterOf(now)
		tf.Quarter--
		if tf.Quarter == 0 {
			tf.Quarter = 4
			tf.Year--
		}
		return &tf
	}
	if strings.Contains(q, "this quarter") || strings.Contains(q, "current quarter") {
		tf := quarterOf(now)
		return &tf
	}
	if strings.Contains(q, "last year") {
		return &models.Timeframe{Kind: models.TimeframeYear, Year: now.Year() - 1}
	}
	if strings.Contains(q, "this year") || strings.Contains(q, "current year") {
		return &models.Timeframe{Kind: models.TimeframeYear, Year: now.Year()}
	}

	if m := quarterYearRe.FindStringSubmatch(q); m != nil {
		year, _ := strconv.Atoi(m[1])
		quarter, _ := strconv.Atoi(m[2])
		return &models.Timeframe{Kind: models.TimeframeQuarter, Year: year, Quarter: quarter}
	}
	if m := quarterRe.FindStringSubmatch(q); m != nil {
		quarter, _ := strconv.Atoi(m[1])
		return &models.Timeframe{Kind: models.TimeframeQuarter, Year: now.Year(), Quarter: quarter}
	}
	if m := yearRe.FindStringSubmatch(q); m != nil {
		year, _ := strconv.Atoi(m[1])
		return &models.Timeframe{Kind: models.TimeframeYear, Year: year}
	}
	return nil
}

func detectDataSource(q string, metric models.Metric) models.DataSource {
	for _, hint := range workOrderHints {
		if strings.Contains(q, hint) {
			return models.SourceWorkOrders
		}
	}
	if metric == models.MetricActiveProjectsValue {
		return models.SourceWorkOrders
	}
	return models.SourceDeals
}

// ParseTimeframe parses an explicit timeframe override like "2026Q1", "Q3",
// "last quarter", or "2026". Relative references resolve against now.
func ParseTimeframe(s string, now time.Time) (*models.Timeframe, bool) {
	tf := detectTimeframe(foldQuestion(s), now)
	return tf, tf != nil
}

func quarterOf(now time.Time) models.Timeframe {
	return models.Timeframe{
		Kind:    models.TimeframeQuarter,
		Year:    now.Year(),
		Quarter: (int(now.Month())-1)/3 + 1,
	}
}

func foldQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func tokenSet(q string) map[string]bool {
	cleaned := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return ' '
	}, q)

	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(cleaned) {
		tokens[tok] = true
	}
	return tokens
}
