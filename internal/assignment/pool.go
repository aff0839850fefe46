package assignment

import (
	"slices"

	"github.com/eugenenazirov/pizza-teams/internal/problem"
)

type poolEntry struct {
	pizzaID     int
	ingredients problem.IngredientSet
}

// pool is the shrinking set of pizzas still available to the greedy engine.
// It holds one representative per configuration, in configuration order, and
// every search keeps the first of equally scored entries, so the lowest
// pizza id wins ties.
type pool struct {
	entries []poolEntry
}

func newPool(p *problem.Problem) *pool {
	entries := make([]poolEntry, 0, len(p.Configurations))
	for _, cfg := range p.Configurations {
		if len(cfg.PizzaIDs) == 0 {
			continue
		}
		entries = append(entries, poolEntry{
			pizzaID:     cfg.Representative(),
			ingredients: cfg.Ingredients,
		})
	}
	return &pool{entries: entries}
}

func (p *pool) Len() int {
	return len(p.entries)
}

// takeLargest removes and returns the entry with the most ingredients.
func (p *pool) takeLargest() poolEntry {
	return p.takeBest(func(set problem.IngredientSet) int {
		return len(set)
	})
}

// takeBest removes and returns the entry maximising score. The pool must not be empty.
func (p *pool) takeBest(score func(problem.IngredientSet) int) poolEntry {
	best := 0
	bestScore := score(p.entries[0].ingredients)
	for i := 1; i < len(p.entries); i++ {
		if s := score(p.entries[i].ingredients); s > bestScore {
			best, bestScore = i, s
		}
	}
	entry := p.entries[best]
	p.entries = slices.Delete(p.entries, best, best+1)
	return entry
}
