package runner

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eugenenazirov/pizza-teams/internal/assignment"
	"github.com/eugenenazirov/pizza-teams/internal/config"
	"github.com/eugenenazirov/pizza-teams/internal/evaluation"
	"github.com/eugenenazirov/pizza-teams/internal/metrics"
	"github.com/eugenenazirov/pizza-teams/internal/problem"
	"github.com/eugenenazirov/pizza-teams/internal/storage"
)

// Report is the outcome of one run. Score is only set when Valid is true.
type Report struct {
	RunID      string
	Strategy   assignment.Strategy
	Solution   problem.Solution
	Valid      bool
	Score      int
	Shortfalls []*assignment.ShortfallError
	Violations []evaluation.Violation
	Duration   time.Duration
	CreatedAt  time.Time
}

// Run converts the report into its stored form.
func (r Report) Run() storage.Run {
	shortfalls := make([]storage.Shortfall, 0, len(r.Shortfalls))
	for _, sf := range r.Shortfalls {
		shortfalls = append(shortfalls, storage.Shortfall{TeamSize: sf.TeamSize, Requested: sf.Requested, Missing: sf.Missing})
	}
	return storage.Run{
		ID:         r.RunID,
		Strategy:   string(r.Strategy),
		CreatedAt:  r.CreatedAt,
		Valid:      r.Valid,
		Score:      r.Score,
		Solution:   r.Solution,
		Shortfalls: shortfalls,
		Duration:   r.Duration,
	}
}

// Runner executes assignment runs with the engines built from configuration.
type Runner struct {
	assigners       map[assignment.Strategy]assignment.Assigner
	defaultStrategy assignment.Strategy
	logger          *zap.Logger
	clock           func() time.Time
	newID           func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) {
		r.clock = clock
	}
}

// WithIDGenerator overrides how run ids are generated, primarily for tests.
func WithIDGenerator(newID func() string) Option {
	return func(r *Runner) {
		r.newID = newID
	}
}

// New builds a Runner with both engines configured from cfg.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*Runner, error) {
	policy, err := assignment.ParseOverlapPolicy(cfg.OverlapPolicy)
	if err != nil {
		return nil, err
	}
	engineOpts := []assignment.Option{
		assignment.WithWeights(assignment.Weights{Union: cfg.UnionWeight, Intersection: cfg.IntersectionWeight}),
		assignment.WithOverlapPolicy(policy),
		assignment.WithLogger(logger),
	}

	r := &Runner{
		assigners: make(map[assignment.Strategy]assignment.Assigner, 2),
		logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
		newID: uuid.NewString,
	}
	for _, strategy := range []assignment.Strategy{assignment.StrategyGreedy, assignment.StrategyBaseline} {
		a, err := assignment.New(strategy, engineOpts...)
		if err != nil {
			return nil, err
		}
		r.assigners[strategy] = a
	}

	r.defaultStrategy = assignment.Strategy(cfg.Strategy)
	if _, ok := r.assigners[r.defaultStrategy]; !ok {
		return nil, fmt.Errorf("%w: %q", assignment.ErrUnknownStrategy, cfg.Strategy)
	}

	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// DefaultStrategy returns the strategy used when Run is called without one.
func (r *Runner) DefaultStrategy() assignment.Strategy {
	return r.defaultStrategy
}

// Run assigns pizzas with the named strategy (the default when empty), checks
// the solution and scores it when valid. Teams left unformed are reported in
// the Report, not as an error; an invalid solution is likewise a normal
// outcome signalled by Valid.
func (r *Runner) Run(p *problem.Problem, strategy assignment.Strategy) (Report, error) {
	if strategy == "" {
		strategy = r.defaultStrategy
	}
	assigner, ok := r.assigners[strategy]
	if !ok {
		return Report{}, fmt.Errorf("%w: %q", assignment.ErrUnknownStrategy, strategy)
	}

	report := Report{
		RunID:     r.newID(),
		Strategy:  strategy,
		CreatedAt: r.clock(),
	}
	logger := r.logger.With(zap.String("run_id", report.RunID), zap.String("strategy", string(strategy)))

	start := time.Now()
	sol, err := assigner.Assign(p)
	report.Duration = time.Since(start)
	metrics.AssignmentDuration.WithLabelValues(string(strategy)).Observe(report.Duration.Seconds())

	if err != nil && !errors.Is(err, assignment.ErrInsufficientPizzas) {
		metrics.AssignmentRuns.WithLabelValues(string(strategy), "error").Inc()
		return Report{}, fmt.Errorf("assign: %w", err)
	}
	report.Solution = sol
	report.Shortfalls = assignment.Shortfalls(err)
	for _, sf := range report.Shortfalls {
		logger.Warn("teams left unformed",
			zap.Int("team_size", sf.TeamSize),
			zap.Int("missing_teams", sf.Missing),
			zap.Int("requested_teams", sf.Requested),
		)
		metrics.MissingTeams.WithLabelValues(strconv.Itoa(sf.TeamSize)).Add(float64(sf.Missing))
	}

	report.Violations = evaluation.Check(p, sol)
	report.Valid = len(report.Violations) == 0
	if !report.Valid {
		logger.Error("solution is invalid", zap.Int("violations", len(report.Violations)))
		metrics.AssignmentRuns.WithLabelValues(string(strategy), "invalid").Inc()
		return report, nil
	}

	report.Score = evaluation.Score(p, sol)
	metrics.LastScore.WithLabelValues(string(strategy)).Set(float64(report.Score))
	outcome := "valid"
	if len(report.Shortfalls) > 0 {
		outcome = "shortfall"
	}
	metrics.AssignmentRuns.WithLabelValues(string(strategy), outcome).Inc()

	logger.Info("assignment completed",
		zap.Int("deliveries", len(sol.Deliveries)),
		zap.Int("score", report.Score),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}
