package assignment

import (
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/eugenenazirov/pizza-teams/internal/problem"
)

type greedyAssigner struct {
	opts options
}

// NewGreedy creates the ingredient-diversity greedy Assigner.
//
// Team sizes are served largest first. Each team is seeded with the pizza
// carrying the most ingredients; every further member is the candidate that
// maximises
//
//	Union·|chosen ∪ candidate| + sign·Intersection·|chosen ∩ candidate|
//
// where chosen is the union of the team's ingredients so far and sign comes
// from the OverlapPolicy.
func NewGreedy(opts ...Option) Assigner {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &greedyAssigner{opts: o}
}

func (g *greedyAssigner) Strategy() Strategy {
	return StrategyGreedy
}

func (g *greedyAssigner) Assign(p *problem.Problem) (problem.Solution, error) {
	if err := validateQuota(p.Quota); err != nil {
		return problem.Solution{}, err
	}

	pool := newPool(p)
	sol := problem.Solution{Deliveries: make([]problem.Delivery, 0, min(p.Quota.Teams(), pool.Len()))}
	var shortfalls []error

	for _, size := range p.Quota.Sizes() {
		requested := p.Quota[size]
		for i := 0; i < requested; i++ {
			if pool.Len() < size {
				sf := &ShortfallError{TeamSize: size, Requested: requested, Missing: requested - i}
				g.opts.logger.Warn("pool exhausted",
					zap.Int("team_size", size),
					zap.Int("missing_teams", sf.Missing),
					zap.Int("pool_remaining", pool.Len()),
				)
				shortfalls = append(shortfalls, sf)
				break
			}
			g.opts.logger.Debug("forming team",
				zap.Int("team_size", size),
				zap.Int("team", i+1),
				zap.Int("teams", requested),
			)
			sol.Deliveries = append(sol.Deliveries, g.formTeam(pool, size))
		}
	}

	return sol, errors.Join(shortfalls...)
}

func (g *greedyAssigner) formTeam(pool *pool, size int) problem.Delivery {
	seed := pool.takeLargest()
	ids := make([]int, 0, size)
	ids = append(ids, seed.pizzaID)

	chosen := make(map[problem.Ingredient]struct{}, len(seed.ingredients)*size)
	for _, ing := range seed.ingredients {
		chosen[ing] = struct{}{}
	}

	sign := g.opts.policy.Sign(size)
	w := g.opts.weights
	for len(ids) < size {
		next := pool.takeBest(func(candidate problem.IngredientSet) int {
			union, inter := overlap(chosen, candidate)
			return w.Union*union + sign*w.Intersection*inter
		})
		ids = append(ids, next.pizzaID)
		for _, ing := range next.ingredients {
			chosen[ing] = struct{}{}
		}
	}

	slices.Sort(ids)
	return problem.Delivery{TeamSize: size, PizzaIDs: ids}
}

// overlap returns |chosen ∪ candidate| and |chosen ∩ candidate|.
func overlap(chosen map[problem.Ingredient]struct{}, candidate problem.IngredientSet) (union, inter int) {
	for _, ing := range candidate {
		if _, ok := chosen[ing]; ok {
			inter++
		}
	}
	return len(chosen) + len(candidate) - inter, inter
}
