package problem

import (
	"slices"
	"strconv"
	"strings"
)

// Interner assigns integer ids to ingredient names in first-seen order.
type Interner struct {
	ids   map[string]Ingredient
	names []string
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]Ingredient)}
}

// Intern returns the id of name, allocating the next id on first sight.
func (in *Interner) Intern(name string) Ingredient {
	if id, ok := in.ids[name]; ok {
		return id
	}
	id := Ingredient(len(in.names))
	in.ids[name] = id
	in.names = append(in.names, name)
	return id
}

// Len returns the number of distinct names interned so far.
func (in *Interner) Len() int {
	return len(in.names)
}

// Names returns a copy of the interned names indexed by id.
func (in *Interner) Names() []string {
	return slices.Clone(in.names)
}

// Builder accumulates pizzas and quotas into a Problem.
type Builder struct {
	interner *Interner
	index    map[string]int
	configs  []Configuration
	quota    Quota
	next     int
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		interner: NewInterner(),
		index:    make(map[string]int),
		quota:    make(Quota),
	}
}

// SetQuota records the number of teams requested for a team size.
func (b *Builder) SetQuota(size, teams int) *Builder {
	b.quota[size] = teams
	return b
}

// AddPizza registers a pizza with the given ingredient names and returns its id.
// Ids are allocated sequentially from zero.
func (b *Builder) AddPizza(names ...string) int {
	id := b.next
	b.next++

	set := make(IngredientSet, 0, len(names))
	for _, name := range names {
		set = append(set, b.interner.Intern(name))
	}
	slices.Sort(set)
	set = slices.Compact(set)

	key := setKey(set)
	if pos, ok := b.index[key]; ok {
		b.configs[pos].PizzaIDs = append(b.configs[pos].PizzaIDs, id)
		return id
	}
	b.index[key] = len(b.configs)
	b.configs = append(b.configs, Configuration{Ingredients: set, PizzaIDs: []int{id}})
	return id
}

// Build returns the Problem. The builder may keep being used; the returned
// Problem does not share memory with it.
func (b *Builder) Build() *Problem {
	configs := make([]Configuration, len(b.configs))
	for i, cfg := range b.configs {
		configs[i] = Configuration{
			Ingredients: slices.Clone(cfg.Ingredients),
			PizzaIDs:    slices.Clone(cfg.PizzaIDs),
		}
	}
	quota := make(Quota, len(b.quota))
	for size, teams := range b.quota {
		quota[size] = teams
	}
	return &Problem{
		Configurations: configs,
		Quota:          quota,
		Ingredients:    b.interner.Names(),
	}
}

func setKey(set IngredientSet) string {
	var sb strings.Builder
	for i, ing := range set {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(ing)))
	}
	return sb.String()
}
