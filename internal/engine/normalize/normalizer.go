// internal/engine/normalize/normalizer.go

// Package normalize converts raw board records with schema-variable columns
// into canonical typed records. It never fails: unresolvable fields become
// nil (amount, date, probability) or "Unknown" (sector).
package normalize

import (
	"strings"

	"bi-agent/internal/common/errors"
	"bi-agent/internal/common/logger"
	"bi-agent/internal/engine/caveats"
	"bi-agent/internal/models"
)

type Normalizer struct {
	logger logger.Logger
}

func New(log logger.Logger) *Normalizer {
	return &Normalizer{
		logger: log.WithFields(map[string]interface{}{"component": "normalizer"}),
	}
}

// Normalize maps every raw record to a canonical record. Column resolution is
// first-match-wins over the candidate titles; the amount column falls back to
// auto-detection across the record set when no candidate title exists. A
// caveat is emitted only when a field fails to parse for the majority of
// records that carry a value.
func (n *Normalizer) Normalize(entity models.DataSource, records []models.RawRecord, cands Candidates, cc *caveats.Collector) []models.CanonicalRecord {
	if len(records) == 0 {
		return nil
	}

	titles := collectTitles(records)
	amountTitle := firstMatch(cands.Amount, titles)
	claimed := claimedTitles(cands, titles)
	if amountTitle == "" {
		amountTitle = n.autoDetectAmount(records, claimed)
	}

	out := make([]models.CanonicalRecord, 0, len(records))
	amountTried, amountFailed := 0, 0
	dateTried, dateFailed := 0, 0

	for _, rec := range records {
		byTitle := indexByTitle(rec)

		cr := models.CanonicalRecord{
			EntityType: entity,
			Name:       rec.Name,
			Sector:     models.SectorUnknown,
		}

		if amountTitle != "" {
			if raw := cellValue(byTitle, amountTitle); raw != "" {
				amountTried++
				if v, ok := ParseMoney(raw); ok {
					cr.Amount = &v
				} else {
					amountFailed++
				}
			}
		}

		if raw := lookup(byTitle, cands.Status); raw != "" {
			cr.Status, cr.StatusDisplay = CanonicalStatus(raw)
		}

		if raw := lookup(byTitle, cands.Sector); raw != "" {
			cr.Sector = NormalizeSector(raw)
		}

		// End/close dates take precedence over start dates so time filters
		// align with when value is realized.
		if raw := firstNonEmpty(lookup(byTitle, cands.DateEnd), lookup(byTitle, cands.DateStart)); raw != "" {
			dateTried++
			if t, ok := ParseDate(raw); ok {
				cr.Date = &t
			} else {
				dateFailed++
			}
		}

		if raw := lookup(byTitle, cands.Probability); raw != "" {
			if p, ok := ParseProbability(raw); ok {
				cr.Probability = &p
			}
		}

		out = append(out, cr)
	}

	if amountTried > 0 && amountFailed*2 > amountTried {
		cc.Caveat(errors.NewFieldParseFailedError("amount", string(entity)).Caveat())
	}
	if dateTried > 0 && dateFailed*2 > dateTried {
		cc.Caveat(errors.NewFieldParseFailedError("date", string(entity)).Caveat())
	}

	n.logger.Debug("normalized records", map[string]interface{}{
		"entity":      string(entity),
		"count":       len(out),
		"amountTitle": amountTitle,
	})

	return out
}

// autoDetectAmount scans unclaimed columns in board order and picks the first
// whose non-empty values parse as currency for a strict majority of records.
func (n *Normalizer) autoDetectAmount(records []models.RawRecord, claimed map[string]bool) string {
	for _, cv := range records[0].ColumnValues {
		key := foldKey(cv.Title)
		if key == "" || claimed[key] {
			continue
		}

		nonEmpty, parsed := 0, 0
		for _, rec := range records {
			raw := cellValue(indexByTitle(rec), key)
			if raw == "" {
				continue
			}
			nonEmpty++
			if _, ok := ParseMoney(raw); ok {
				parsed++
			}
		}
		if nonEmpty > 0 && parsed*2 > nonEmpty {
			n.logger.Info("auto-detected amount column", map[string]interface{}{
				"column": cv.Title,
			})
			return key
		}
	}
	return ""
}

func indexByTitle(rec models.RawRecord) map[string]models.RawColumnValue {
	byTitle := make(map[string]models.RawColumnValue, len(rec.ColumnValues))
	for _, cv := range rec.ColumnValues {
		key := foldKey(cv.Title)
		if _, exists := byTitle[key]; !exists {
			byTitle[key] = cv
		}
	}
	return byTitle
}

func collectTitles(records []models.RawRecord) map[string]bool {
	titles := make(map[string]bool)
	for _, rec := range records {
		for _, cv := range rec.ColumnValues {
			titles[foldKey(cv.Title)] = true
		}
	}
	return titles
}

// claimedTitles marks titles already bound to a non-amount semantic field so
// auto-detection will not shadow them.
func claimedTitles(cands Candidates, titles map[string]bool) map[string]bool {
	claimed := make(map[string]bool)
	for _, list := range [][]string{cands.Status, cands.Sector, cands.DateStart, cands.DateEnd, cands.Probability} {
		if m := firstMatch(list, titles); m != "" {
			claimed[m] = true
		}
	}
	return claimed
}

func firstMatch(candidates []string, titles map[string]bool) string {
	for _, c := range candidates {
		if titles[foldKey(c)] {
			return foldKey(c)
		}
	}
	return ""
}

func lookup(byTitle map[string]models.RawColumnValue, candidates []string) string {
	for _, c := range candidates {
		if cv, ok := byTitle[foldKey(c)]; ok {
			if v := cellValue0(cv); v != "" {
				return v
			}
		}
	}
	return ""
}

func cellValue(byTitle map[string]models.RawColumnValue, key string) string {
	cv, ok := byTitle[key]
	if !ok {
		return ""
	}
	return cellValue0(cv)
}

// cellValue0 prefers the human-readable text and falls back to the raw value
// with JSON quoting stripped.
func cellValue0(cv models.RawColumnValue) string {
	if t := strings.TrimSpace(cv.Text); t != "" {
		return t
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(cv.Value), `"`))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
