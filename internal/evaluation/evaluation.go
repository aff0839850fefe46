package evaluation

import (
	"github.com/eugenenazirov/pizza-teams/internal/problem"
)

// ViolationKind classifies why a solution is invalid.
type ViolationKind string

const (
	DuplicatePizza ViolationKind = "duplicate_pizza"
	UnknownPizza   ViolationKind = "unknown_pizza"
	SizeMismatch   ViolationKind = "size_mismatch"
)

// Violation describes one broken invariant. Delivery is the index of the
// offending delivery; PizzaID is -1 for size mismatches.
type Violation struct {
	Kind     ViolationKind `json:"kind"`
	Delivery int           `json:"delivery"`
	PizzaID  int           `json:"pizzaId"`
}

// Valid reports whether the solution delivers every pizza at most once, only
// delivers pizzas that exist, and declares each team size correctly.
func Valid(p *problem.Problem, s problem.Solution) bool {
	return len(Check(p, s)) == 0
}

// Check returns every invariant the solution breaks, in delivery order.
func Check(p *problem.Problem, s problem.Solution) []Violation {
	universe := make(map[int]struct{}, p.PizzaCount())
	for _, cfg := range p.Configurations {
		for _, id := range cfg.PizzaIDs {
			universe[id] = struct{}{}
		}
	}

	var violations []Violation
	seen := make(map[int]struct{}, s.PizzaCount())
	for i, d := range s.Deliveries {
		if d.TeamSize != len(d.PizzaIDs) {
			violations = append(violations, Violation{Kind: SizeMismatch, Delivery: i, PizzaID: -1})
		}
		for _, id := range d.PizzaIDs {
			if _, ok := universe[id]; !ok {
				violations = append(violations, Violation{Kind: UnknownPizza, Delivery: i, PizzaID: id})
			}
			if _, dup := seen[id]; dup {
				violations = append(violations, Violation{Kind: DuplicatePizza, Delivery: i, PizzaID: id})
				continue
			}
			seen[id] = struct{}{}
		}
	}
	return violations
}

// Score sums, over all deliveries, the square of the number of distinct
// ingredients the team receives. It is only meaningful for valid solutions;
// unknown pizza ids contribute no ingredients.
func Score(p *problem.Problem, s problem.Solution) int {
	index := p.IngredientIndex()

	total := 0
	distinct := make(map[problem.Ingredient]struct{})
	for _, d := range s.Deliveries {
		clear(distinct)
		for _, id := range d.PizzaIDs {
			for _, ing := range index[id] {
				distinct[ing] = struct{}{}
			}
		}
		total += len(distinct) * len(distinct)
	}
	return total
}
