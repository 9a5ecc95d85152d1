// internal/engine/intent/resolver.go

// Package intent turns free-text business questions into structured intents.
// An AI provider is asked first; any failure, timeout, or malformed answer
// degrades silently to the deterministic keyword heuristics.
package intent

import (
	"context"
	stderrors "errors"
	"time"

	"bi-agent/internal/common/errors"
	"bi-agent/internal/common/logger"
	"bi-agent/internal/engine/normalize"
	"bi-agent/internal/models"
)

// Provider is the AI collaborator in intent mode. Implementations must honor
// ctx cancellation; the resolver never retries on its own.
type Provider interface {
	Interpret(ctx context.Context, question string) (*models.Intent, error)
}

// Overrides are explicit request fields that take precedence over anything
// inferred from the question text, by either path.
type Overrides struct {
	Sector     string
	Timeframe  string
	DataSource string
}

// Resolution carries the resolved intent plus how it was produced. The
// caller owns caveat ordering, so degradation is reported as data instead of
// being written to a collector here.
type Resolution struct {
	Intent         models.Intent
	Degraded       bool
	DegradedCaveat string
}

type Resolver struct {
	provider Provider
	sectors  []string
	now      func() time.Time
	logger   logger.Logger
}

// New builds a resolver. provider may be nil, in which case only the
// heuristic path runs (without a degradation caveat: there is nothing to
// degrade from). sectors is the known sector vocabulary; now is injectable
// for deterministic relative-timeframe resolution.
func New(provider Provider, sectors []string, now func() time.Time, log logger.Logger) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		provider: provider,
		sectors:  sectors,
		now:      now,
		logger:   log.WithFields(map[string]interface{}{"component": "intent-resolver"}),
	}
}

// Resolve produces the Intent for a question. Cascade: AI provider first,
// heuristics on any provider failure or invalid shape, explicit overrides
// last.
func (r *Resolver) Resolve(ctx context.Context, question string, ov Overrides) Resolution {
	res := Resolution{}

	if r.provider != nil {
		parsed, err := r.provider.Interpret(ctx, question)
		switch {
		case err != nil:
			res.Degraded = true
			if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
				res.DegradedCaveat = errors.NewIntentAPITimeoutError().Caveat()
			} else {
				res.DegradedCaveat = errors.NewIntentParsingFailedError(err).Caveat()
			}
			r.logger.Warn("provider interpretation failed, using heuristics", map[string]interface{}{
				"error": err.Error(),
			})
		case !validShape(parsed):
			res.Degraded = true
			res.DegradedCaveat = errors.NewIntentParsingFailedError(errMalformedIntent).Caveat()
			r.logger.Warn("provider returned malformed intent, using heuristics", nil)
		default:
			res.Intent = *parsed
		}
	}

	if r.provider == nil || res.Degraded {
		res.Intent = r.heuristicIntent(question)
	}

	r.applyOverrides(&res.Intent, ov)

	r.logger.Info("intent resolved", map[string]interface{}{
		"metric":     string(res.Intent.Metric),
		"dataSource": string(res.Intent.DataSource),
		"degraded":   res.Degraded,
	})

	return res
}

var errMalformedIntent = malformedIntentError{}

type malformedIntentError struct{}

func (malformedIntentError) Error() string { return "response did not match the intent schema" }

func validShape(in *models.Intent) bool {
	if in == nil || !models.ValidMetric(in.Metric) {
		return false
	}
	if in.DataSource != "" && !models.ValidDataSource(in.DataSource) {
		return false
	}
	if in.Timeframe != nil {
		tf := in.Timeframe
		if tf.Kind != models.TimeframeQuarter && tf.Kind != models.TimeframeYear {
			return false
		}
		if tf.Kind == models.TimeframeQuarter && (tf.Quarter < 1 || tf.Quarter > 4) {
			return false
		}
	}
	return true
}

func (r *Resolver) applyOverrides(in *models.Intent, ov Overrides) {
	if ov.Sector != "" {
		sector := normalize.NormalizeSector(ov.Sector)
		in.Sector = &sector
	}
	if ov.Timeframe != "" {
		if tf, ok := ParseTimeframe(ov.Timeframe, r.now()); ok {
			in.Timeframe = tf
		}
	}
	if ov.DataSource != "" && models.ValidDataSource(models.DataSource(ov.DataSource)) {
		in.DataSource = models.DataSource(ov.DataSource)
	}

	if in.DataSource == "" {
		in.DataSource = detectDataSource("", in.Metric)
	}
	if in.Sector != nil {
		normalized := normalize.NormalizeSector(*in.Sector)
		if normalized == models.SectorUnknown {
			in.Sector = nil
		} else {
			in.Sector = &normalized
		}
	}
}
