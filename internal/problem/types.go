package problem

import (
	"math"
	"slices"
	"sort"
)

// Supported team sizes, largest first.
var TeamSizes = []int{4, 3, 2}

// Ingredient is an interned ingredient name.
type Ingredient int

// IngredientSet is a sorted, duplicate-free list of ingredients.
type IngredientSet []Ingredient

// Len returns the number of distinct ingredients in the set.
func (s IngredientSet) Len() int {
	return len(s)
}

// Configuration groups the pizzas that share one exact ingredient set.
// PizzaIDs is sorted ascending.
type Configuration struct {
	Ingredients IngredientSet
	PizzaIDs    []int
}

// Representative returns the lowest pizza id of the configuration.
func (c Configuration) Representative() int {
	return c.PizzaIDs[0]
}

// Quota maps a team size to the number of teams of that size requested.
type Quota map[int]int

// Sizes returns the team sizes with a positive quota in descending order.
func (q Quota) Sizes() []int {
	sizes := make([]int, 0, len(q))
	for size, teams := range q {
		if teams > 0 {
			sizes = append(sizes, size)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	return sizes
}

// Teams returns the total number of requested teams, saturating at math.MaxInt.
func (q Quota) Teams() int {
	total := 0
	for _, teams := range q {
		if teams <= 0 {
			continue
		}
		if teams > math.MaxInt-total {
			return math.MaxInt
		}
		total += teams
	}
	return total
}

// Problem is the immutable problem definition handed to the assignment engines.
// Configurations are ordered by first appearance in the input, which is the
// same as ascending representative pizza id.
type Problem struct {
	Configurations []Configuration
	Quota          Quota
	// Ingredients holds the ingredient names indexed by Ingredient.
	Ingredients []string
}

// PizzaCount returns the number of pizzas across all configurations.
func (p *Problem) PizzaCount() int {
	total := 0
	for _, cfg := range p.Configurations {
		total += len(cfg.PizzaIDs)
	}
	return total
}

// PizzaIDs returns every pizza id in ascending order.
func (p *Problem) PizzaIDs() []int {
	ids := make([]int, 0, p.PizzaCount())
	for _, cfg := range p.Configurations {
		ids = append(ids, cfg.PizzaIDs...)
	}
	slices.Sort(ids)
	return ids
}

// IngredientIndex maps every pizza id to the ingredient set of its configuration.
func (p *Problem) IngredientIndex() map[int]IngredientSet {
	index := make(map[int]IngredientSet, p.PizzaCount())
	for _, cfg := range p.Configurations {
		for _, id := range cfg.PizzaIDs {
			index[id] = cfg.Ingredients
		}
	}
	return index
}

// Delivery records the pizzas delivered to one team.
type Delivery struct {
	TeamSize int   `json:"teamSize"`
	PizzaIDs []int `json:"pizzaIds"`
}

// Solution is the ordered list of deliveries produced for a problem.
type Solution struct {
	Deliveries []Delivery `json:"deliveries"`
}

// PizzaCount returns the number of pizza ids across all deliveries.
func (s Solution) PizzaCount() int {
	total := 0
	for _, d := range s.Deliveries {
		total += len(d.PizzaIDs)
	}
	return total
}
