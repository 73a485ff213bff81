package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kova98/userlens.api/analysis"
	"github.com/kova98/userlens.api/data"
	"github.com/kova98/userlens.api/enums"
	"github.com/kova98/userlens.api/metrics"
	"github.com/kova98/userlens.api/models"
	"github.com/kova98/userlens.api/text"
)

const (
	maxRequestBody  = 4 << 10
	maxDetailLength = 500
)

type ReportAnalyzer interface {
	Analyze(ctx context.Context, username string) (*models.AnalysisReport, error)
}

type EventRecorder interface {
	Record(event data.AnalysisEvent) (uuid.UUID, error)
}

type AnalyzeHandler struct {
	logger   *slog.Logger
	analyzer ReportAnalyzer
	events   EventRecorder
	metrics  *metrics.Metrics
	timeout  time.Duration
}

// NewAnalyzeHandler builds the handler. events and m may be nil.
func NewAnalyzeHandler(logger *slog.Logger, analyzer ReportAnalyzer, events EventRecorder, m *metrics.Metrics, timeout time.Duration) *AnalyzeHandler {
	return &AnalyzeHandler{
		logger:   logger,
		analyzer: analyzer,
		events:   events,
		metrics:  m,
		timeout:  timeout,
	}
}

// Analyze accepts the username as a form field or as a JSON body.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) Result {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var username string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req models.AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return AnalysisFailed(http.StatusBadRequest, "Invalid request.", nil)
		}
		username = req.Username
	} else {
		username = r.FormValue("username")
	}

	return h.run(r.Context(), username)
}

func (h *AnalyzeHandler) AnalyzeByPath(w http.ResponseWriter, r *http.Request) Result {
	return h.run(r.Context(), r.PathValue("username"))
}

func (h *AnalyzeHandler) run(ctx context.Context, username string) Result {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	report, err := h.analyzer.Analyze(ctx, username)
	elapsed := time.Since(start)
	outcome := analysis.OutcomeOf(err)

	h.metrics.ObserveAnalysis(outcome, elapsed)
	h.record(username, outcome, report, err, elapsed)

	if err == nil {
		h.logger.Info("analysis completed", "username", report.Username, "outcome", outcome, "items", report.ContentStats.TotalContent, "elapsed_ms", elapsed.Milliseconds())
		return Ok(report)
	}

	h.logger.Warn("analysis failed", "username", username, "outcome", outcome, "error", err, "elapsed_ms", elapsed.Milliseconds())

	message := "Something went wrong. Please try again later."
	var failure *analysis.Failure
	if errors.As(err, &failure) {
		message = failure.Message()
	}

	return AnalysisFailed(StatusFor(outcome), message, err)
}

func (h *AnalyzeHandler) record(username string, outcome enums.Outcome, report *models.AnalysisReport, err error, elapsed time.Duration) {
	if h.events == nil {
		return
	}

	event := data.AnalysisEvent{
		Username:   username,
		Outcome:    string(outcome),
		DurationMs: elapsed.Milliseconds(),
	}
	if report != nil {
		event.Username = report.Username
		event.ItemCount = report.ContentStats.TotalContent
	}
	if err != nil {
		event.Detail = text.Truncate(err.Error(), maxDetailLength)
	}

	if _, rerr := h.events.Record(event); rerr != nil {
		h.logger.Error("failed to record analysis event", "username", username, "error", rerr)
	}
}

// StatusFor maps an analysis outcome to the HTTP status sent to the client.
func StatusFor(outcome enums.Outcome) int {
	switch outcome {
	case enums.OutcomeSuccess:
		return http.StatusOK
	case enums.OutcomeInputInvalid:
		return http.StatusBadRequest
	case enums.OutcomeUserNotFound:
		return http.StatusNotFound
	case enums.OutcomeUserSuspended:
		return http.StatusForbidden
	case enums.OutcomeInsufficientData:
		return http.StatusUnprocessableEntity
	case enums.OutcomeRateLimited, enums.OutcomeUnavailable, enums.OutcomeUnauthorized:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
