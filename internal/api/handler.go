package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eugenenazirov/pizza-teams/internal/assignment"
	"github.com/eugenenazirov/pizza-teams/internal/evaluation"
	"github.com/eugenenazirov/pizza-teams/internal/problem"
	"github.com/eugenenazirov/pizza-teams/internal/runner"
	"github.com/eugenenazirov/pizza-teams/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const defaultMaxRequestBytes = 16 << 20

// Runner executes assignment runs.
type Runner interface {
	Run(p *problem.Problem, strategy assignment.Strategy) (runner.Report, error)
}

// Handler wires the runner and storage dependencies into HTTP handlers.
type Handler struct {
	runner  Runner
	storage storage.Storage

	clock           func() time.Time
	maxRequestBytes int64
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMaxRequestBytes limits the size of uploaded problem and solution files.
func WithMaxRequestBytes(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxRequestBytes = n
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(run Runner, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		runner:  run,
		storage: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
		maxRequestBytes: defaultMaxRequestBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxRequestBytes))
	if err != nil {
		writeParseError(w, "Invalid problem", err)
		return
	}
	p, err := problem.Parse(bytes.NewReader(body))
	if err != nil {
		writeParseError(w, "Invalid problem", err)
		return
	}

	strategy := assignment.Strategy(strings.TrimSpace(r.URL.Query().Get("strategy")))
	report, err := h.runner.Run(p, strategy)
	if err != nil {
		switch {
		case errors.Is(err, assignment.ErrUnknownStrategy):
			writeError(w, http.StatusBadRequest, "Invalid request", err.Error(), "Use strategy=greedy or strategy=baseline")
		case errors.Is(err, assignment.ErrInvalidQuota):
			writeError(w, http.StatusUnprocessableEntity, "Invalid problem", err.Error())
		default:
			writeInternalError(w, err)
		}
		return
	}

	resp := newRunResponse(report.Run())
	resp.Violations = report.Violations
	if report.Valid {
		// invalid solutions are reported but never persisted
		if err := h.storage.SaveRun(r.Context(), report.Run()); err != nil {
			writeInternalError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			writeError(w, http.StatusBadRequest, "Invalid request", "limit must be a non-negative integer")
			return
		}
		limit = value
	}

	runs, err := h.storage.ListRuns(r.Context(), limit)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := listRunsResponse{Runs: make([]runResponse, 0, len(runs))}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, newRunResponse(run))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newRunResponse(run))
}

func (h *Handler) handleGetRunOutput(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", run.ID+".out"))
	w.WriteHeader(http.StatusOK)
	_ = problem.WriteSolution(w, run.Solution)
}

func (h *Handler) lookupRun(w http.ResponseWriter, r *http.Request) (storage.Run, bool) {
	id := r.PathValue("id")
	run, err := h.storage.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Run not found", fmt.Sprintf("no run with id %q", id))
			return storage.Run{}, false
		}
		writeInternalError(w, err)
		return storage.Run{}, false
	}
	return run, true
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request too large", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	p, err := problem.Parse(strings.NewReader(req.Problem))
	if err != nil {
		writeParseError(w, "Invalid problem", err)
		return
	}
	sol, err := problem.ParseSolution(strings.NewReader(req.Solution))
	if err != nil {
		writeParseError(w, "Invalid solution", err)
		return
	}

	resp := scoreResponse{
		Valid:      true,
		Violations: evaluation.Check(p, sol),
	}
	if len(resp.Violations) > 0 {
		resp.Valid = false
	} else {
		resp.Score = evaluation.Score(p, sol)
	}
	writeJSON(w, http.StatusOK, resp)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type scoreRequest struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
}

type scoreResponse struct {
	Valid      bool                   `json:"valid"`
	Score      int                    `json:"score"`
	Violations []evaluation.Violation `json:"violations,omitempty"`
}

type runResponse struct {
	RunID             string                 `json:"runId"`
	Strategy          string                 `json:"strategy"`
	CreatedAt         time.Time              `json:"createdAt"`
	Valid             bool                   `json:"valid"`
	Score             int                    `json:"score"`
	Deliveries        []problem.Delivery     `json:"deliveries"`
	TotalDeliveries   int                    `json:"totalDeliveries"`
	TotalPizzas       int                    `json:"totalPizzas"`
	Shortfalls        []storage.Shortfall    `json:"shortfalls,omitempty"`
	Violations        []evaluation.Violation `json:"violations,omitempty"`
	CalculationTimeMs int64                  `json:"calculationTimeMs"`
}

func newRunResponse(run storage.Run) runResponse {
	deliveries := run.Solution.Deliveries
	if deliveries == nil {
		deliveries = []problem.Delivery{}
	}
	return runResponse{
		RunID:             run.ID,
		Strategy:          run.Strategy,
		CreatedAt:         run.CreatedAt,
		Valid:             run.Valid,
		Score:             run.Score,
		Deliveries:        deliveries,
		TotalDeliveries:   len(deliveries),
		TotalPizzas:       run.Solution.PizzaCount(),
		Shortfalls:        run.Shortfalls,
		CalculationTimeMs: run.Duration.Milliseconds(),
	}
}

type listRunsResponse struct {
	Runs []runResponse `json:"runs"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeParseError(w http.ResponseWriter, message string, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, "Request too large", err.Error())
	case errors.Is(err, problem.ErrMalformedInput):
		writeError(w, http.StatusBadRequest, message, err.Error())
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
