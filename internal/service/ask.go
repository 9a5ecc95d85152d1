// internal/service/ask.go

// Package service runs the question answering pipeline: resolve the intent,
// fetch and normalize the board records, aggregate the metric, and render a
// summary. Data problems never fail a request; they surface as caveats on a
// best-effort answer.
package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bi-agent/internal/common/config"
	"bi-agent/internal/common/errors"
	"bi-agent/internal/common/logger"
	"bi-agent/internal/common/metrics"
	"bi-agent/internal/common/observability"
	"bi-agent/internal/engine/analytics"
	"bi-agent/internal/engine/caveats"
	"bi-agent/internal/engine/intent"
	"bi-agent/internal/engine/normalize"
	"bi-agent/internal/models"
)

// ErrEmptyQuestion is the only request error the service produces; everything
// else degrades into caveats.
var ErrEmptyQuestion = stderrors.New("question must not be empty")

// BoardFetcher pulls raw records for a board.
type BoardFetcher interface {
	FetchRecords(ctx context.Context, boardID string) ([]models.RawRecord, error)
}

// Summarizer renders a prose summary of a computed result. A nil Summarizer
// (or a failing one) falls back to a deterministic formatted summary.
type Summarizer interface {
	Summarize(ctx context.Context, question string, result models.AnalyticsResult, caveatList []string) (string, error)
}

type AskRequest struct {
	Question   string `json:"question"`
	Sector     string `json:"sector,omitempty"`
	Timeframe  string `json:"timeframe,omitempty"`
	DataSource string `json:"dataSource,omitempty"`
}

type AskResponse struct {
	RequestID      string                `json:"requestId"`
	Question       string                `json:"question"`
	Intent         models.Intent         `json:"intent"`
	Value          *float64              `json:"value"`
	Breakdown      []models.SectorTotals `json:"breakdown,omitempty"`
	RecordCount    int                   `json:"recordCount"`
	Summary        string                `json:"summary"`
	Caveats        []string              `json:"caveats"`
	Clarifications []string              `json:"clarifications"`
}

type Service struct {
	boards     config.BoardsConfig
	resolver   *intent.Resolver
	fetcher    BoardFetcher
	normalizer *normalize.Normalizer
	engine     *analytics.Engine
	summarizer Summarizer
	obs        *observability.Observability
	logger     logger.Logger
}

func New(
	boards config.BoardsConfig,
	resolver *intent.Resolver,
	fetcher BoardFetcher,
	normalizer *normalize.Normalizer,
	engine *analytics.Engine,
	summarizer Summarizer,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	return &Service{
		boards:     boards,
		resolver:   resolver,
		fetcher:    fetcher,
		normalizer: normalizer,
		engine:     engine,
		summarizer: summarizer,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "ask-service"}),
	}
}

// Ask answers one business question end to end.
func (s *Service) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, ErrEmptyQuestion
	}

	start := time.Now()
	requestID := uuid.New().String()
	log := s.logger.WithFields(map[string]interface{}{"requestId": requestID})

	log.Info("question received", map[string]interface{}{"question": req.Question})

	resolution := s.resolver.Resolve(ctx, req.Question, intent.Overrides{
		Sector:     req.Sector,
		Timeframe:  req.Timeframe,
		DataSource: req.DataSource,
	})
	in := resolution.Intent

	cc := caveats.New()
	records := s.loadRecords(ctx, in.DataSource, cc, log)

	result := s.engine.Compute(in, records, cc)

	if resolution.Degraded {
		cc.Caveat(resolution.DegradedCaveat)
		metrics.IntentFallbacks.Inc()
	}

	s.collectClarifications(in, cc)

	summary := s.summarize(ctx, req.Question, result, in, cc)

	metricName := string(in.Metric)
	metrics.QuestionsProcessed.WithLabelValues(metricName).Inc()
	metrics.QuestionDuration.WithLabelValues(metricName).Observe(time.Since(start).Seconds())
	if s.obs != nil {
		s.obs.RecordQuestion(ctx, metricName, "success")
		s.obs.RecordQuestionDuration(ctx, time.Since(start), metricName)
	}

	log.Info("question answered", map[string]interface{}{
		"metric":      metricName,
		"recordCount": result.RecordCount,
		"caveats":     len(cc.Caveats()),
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return &AskResponse{
		RequestID:      requestID,
		Question:       req.Question,
		Intent:         in,
		Value:          result.Value,
		Breakdown:      result.Breakdown,
		RecordCount:    result.RecordCount,
		Summary:        summary,
		Caveats:        cc.Caveats(),
		Clarifications: cc.Clarifications(),
	}, nil
}

// loadRecords fetches and normalizes the board behind the intent's data
// source. Every failure mode collapses to an empty record set plus a caveat.
func (s *Service) loadRecords(ctx context.Context, source models.DataSource, cc *caveats.Collector, log logger.Logger) []models.CanonicalRecord {
	boardID := s.boards.BoardID(string(source))
	if boardID == "" {
		cc.Caveat(errors.NewBoardConfigMissingError(string(source)).Caveat())
		return nil
	}

	raw, err := s.fetcher.FetchRecords(ctx, boardID)
	if err != nil {
		metrics.UpstreamFetchFailures.WithLabelValues(string(source)).Inc()
		cc.Caveat(errors.NewUpstreamFetchError(string(source), err).Caveat())
		log.Warn("board fetch failed", map[string]interface{}{
			"source": string(source),
			"error":  err.Error(),
		})
		return nil
	}
	if len(raw) == 0 {
		cc.Caveat(fmt.Sprintf("the %s board returned no records", source))
		return nil
	}

	records := s.normalizer.Normalize(source, raw, normalize.DefaultsFor(source), cc)
	metrics.RecordsNormalized.WithLabelValues(string(source)).Add(float64(len(records)))
	return records
}

func (s *Service) collectClarifications(in models.Intent, cc *caveats.Collector) {
	if in.Sector == nil && in.Metric != models.MetricSectorBreakdown {
		cc.Clarification("No sector was specified; the result covers all sectors.")
	}
	if in.Timeframe == nil {
		cc.Clarification("No timeframe was specified; the result covers all dates.")
	}
}

func (s *Service) summarize(ctx context.Context, question string, result models.AnalyticsResult, in models.Intent, cc *caveats.Collector) string {
	if s.summarizer != nil {
		summary, err := s.summarizer.Summarize(ctx, question, result, cc.Caveats())
		if err == nil && summary != "" {
			return summary
		}
		if err != nil {
			cc.Caveat(errors.NewSummaryFailedError(err).Caveat())
		}
	}
	return formatSummary(result, in)
}

// formatSummary is the deterministic fallback used when no AI summary is
// available.
func formatSummary(result models.AnalyticsResult, in models.Intent) string {
	scope := describeScope(in)

	switch result.Metric {
	case models.MetricSectorBreakdown:
		if len(result.Breakdown) == 0 {
			return "No sector data is available" + scope + "."
		}
		top := result.Breakdown[0]
		return fmt.Sprintf("%d sectors%s; %s leads with $%.2f pipeline and $%.2f revenue.",
			len(result.Breakdown), scope, top.Sector, top.Pipeline, top.Revenue)
	case models.MetricRevenue:
		return fmt.Sprintf("Revenue%s is $%.2f across %d won records.", scope, value(result), result.RecordCount)
	case models.MetricActiveProjectsValue:
		return fmt.Sprintf("Active project value%s is $%.2f across %d records.", scope, value(result), result.RecordCount)
	default:
		return fmt.Sprintf("Pipeline value%s is $%.2f across %d open records.", scope, value(result), result.RecordCount)
	}
}

func describeScope(in models.Intent) string {
	var parts []string
	if in.Sector != nil {
		parts = append(parts, "in "+*in.Sector)
	}
	if in.Timeframe != nil {
		parts = append(parts, "for "+in.Timeframe.String())
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func value(result models.AnalyticsResult) float64 {
	if result.Value == nil {
		return 0
	}
	return *result.Value
}
