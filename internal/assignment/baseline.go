package assignment

import (
	"slices"

	"go.uber.org/zap"

	"github.com/eugenenazirov/pizza-teams/internal/problem"
)

type baselineAssigner struct {
	opts options
}

// NewBaseline creates an Assigner that ignores ingredients entirely. Team
// sizes are served smallest first, each capped by how many full teams the
// remaining pizzas can form, and pizzas are handed out in ascending id order.
// It is a regression reference rather than a scoring strategy and never
// reports a shortfall.
func NewBaseline(opts ...Option) Assigner {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &baselineAssigner{opts: o}
}

func (b *baselineAssigner) Strategy() Strategy {
	return StrategyBaseline
}

func (b *baselineAssigner) Assign(p *problem.Problem) (problem.Solution, error) {
	if err := validateQuota(p.Quota); err != nil {
		return problem.Solution{}, err
	}

	remaining := p.PizzaIDs()
	sizes := p.Quota.Sizes()
	slices.Reverse(sizes)

	sol := problem.Solution{Deliveries: make([]problem.Delivery, 0, min(p.Quota.Teams(), len(remaining)))}
	for _, size := range sizes {
		teams := min(p.Quota[size], len(remaining)/size)
		b.opts.logger.Debug("assigning teams",
			zap.Int("team_size", size),
			zap.Int("teams", teams),
			zap.Int("requested", p.Quota[size]),
		)
		for i := 0; i < teams; i++ {
			ids := slices.Clone(remaining[:size])
			remaining = remaining[size:]
			sol.Deliveries = append(sol.Deliveries, problem.Delivery{TeamSize: size, PizzaIDs: ids})
		}
	}
	return sol, nil
}
