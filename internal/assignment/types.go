package assignment

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/eugenenazirov/pizza-teams/internal/problem"
)

// Strategy names an assignment algorithm.
type Strategy string

const (
	StrategyGreedy   Strategy = "greedy"
	StrategyBaseline Strategy = "baseline"
)

// Assigner describes the behaviour required from an assignment algorithm.
//
// Assign never modifies the problem. When some teams cannot be formed it
// returns the partial solution together with an error wrapping
// ErrInsufficientPizzas; callers decide whether that is fatal.
type Assigner interface {
	Assign(p *problem.Problem) (problem.Solution, error)
	Strategy() Strategy
}

// Weights are the multipliers of the greedy candidate score.
type Weights struct {
	Union        int
	Intersection int
}

// DefaultWeights returns the union/intersection multipliers used unless overridden.
func DefaultWeights() Weights {
	return Weights{Union: 2, Intersection: 1}
}

// OverlapPolicy decides whether ingredient overlap between a candidate and the
// pizzas already chosen for a team is rewarded or penalised.
type OverlapPolicy string

const (
	// OverlapSizeDependent penalises overlap for teams of four and rewards it
	// for smaller teams.
	OverlapSizeDependent OverlapPolicy = "size-dependent"
	OverlapPenalize      OverlapPolicy = "penalize"
	OverlapReward        OverlapPolicy = "reward"
)

// ParseOverlapPolicy validates a policy name. An empty name selects OverlapSizeDependent.
func ParseOverlapPolicy(name string) (OverlapPolicy, error) {
	switch p := OverlapPolicy(name); p {
	case "":
		return OverlapSizeDependent, nil
	case OverlapSizeDependent, OverlapPenalize, OverlapReward:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOverlapPolicy, name)
	}
}

// Sign returns the factor applied to the intersection term for a team size.
func (p OverlapPolicy) Sign(teamSize int) int {
	switch p {
	case OverlapPenalize:
		return -1
	case OverlapReward:
		return 1
	default:
		if teamSize >= 4 {
			return -1
		}
		return 1
	}
}

// Option configures an Assigner.
type Option func(*options)

type options struct {
	weights Weights
	policy  OverlapPolicy
	logger  *zap.Logger
}

func defaultOptions() options {
	return options{
		weights: DefaultWeights(),
		policy:  OverlapSizeDependent,
		logger:  zap.NewNop(),
	}
}

// WithWeights overrides the greedy score multipliers.
func WithWeights(w Weights) Option {
	return func(o *options) {
		o.weights = w
	}
}

// WithOverlapPolicy selects how the intersection term is signed.
func WithOverlapPolicy(p OverlapPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLogger enables progress logging.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New returns the Assigner for a strategy name. An empty name selects the greedy engine.
func New(strategy Strategy, opts ...Option) (Assigner, error) {
	switch strategy {
	case "", StrategyGreedy:
		return NewGreedy(opts...), nil
	case StrategyBaseline:
		return NewBaseline(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

func validateQuota(q problem.Quota) error {
	for size, teams := range q {
		if teams < 0 || (teams > 0 && size <= 0) {
			return fmt.Errorf("%w: %d teams of %d", ErrInvalidQuota, teams, size)
		}
	}
	return nil
}
