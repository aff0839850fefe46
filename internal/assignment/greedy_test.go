package assignment_test

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/pizza-teams/internal/assignment"
	"github.com/eugenenazirov/pizza-teams/internal/evaluation"
	"github.com/eugenenazirov/pizza-teams/internal/problem"
)

func TestGreedySmallScenario(t *testing.T) {
	b := problem.NewBuilder().SetQuota(2, 1).SetQuota(3, 0).SetQuota(4, 0)
	b.AddPizza("A")
	b.AddPizza("A", "B")
	b.AddPizza("B", "C")
	p := b.Build()

	for _, policy := range []assignment.OverlapPolicy{assignment.OverlapSizeDependent, assignment.OverlapPenalize, assignment.OverlapReward} {
		sol, err := assignment.NewGreedy(assignment.WithOverlapPolicy(policy)).Assign(p)
		require.NoError(t, err)
		require.Equal(t, []problem.Delivery{{TeamSize: 2, PizzaIDs: []int{1, 2}}}, sol.Deliveries, "policy %s", policy)
	}
}

// overlapProblem builds a pool where rewarding and penalising overlap pick
// different second members:
//
//	0: {A,B,C,D} seed
//	1: {A,B,C}   reward 2*4+3 = 11, penalize 2*4-3 = 5
//	2: {E}       reward 2*5+0 = 10, penalize 10
//	3: {A}       reward 2*4+1 = 9,  penalize 7
func overlapProblem(quota map[int]int) *problem.Problem {
	b := problem.NewBuilder()
	for size, teams := range quota {
		b.SetQuota(size, teams)
	}
	b.AddPizza("A", "B", "C", "D")
	b.AddPizza("A", "B", "C")
	b.AddPizza("E")
	b.AddPizza("A")
	return b.Build()
}

func TestGreedyOverlapSignChangesWinner(t *testing.T) {
	tests := []struct {
		name   string
		quota  map[int]int
		policy assignment.OverlapPolicy
		want   []int
	}{
		{name: "PairRewardedBySizePolicy", quota: map[int]int{2: 1}, policy: assignment.OverlapSizeDependent, want: []int{0, 1}},
		{name: "PairPenalized", quota: map[int]int{2: 1}, policy: assignment.OverlapPenalize, want: []int{0, 2}},
		{name: "TrioRewardedBySizePolicy", quota: map[int]int{3: 1}, policy: assignment.OverlapSizeDependent, want: []int{0, 1, 2}},
		{name: "TrioPenalized", quota: map[int]int{3: 1}, policy: assignment.OverlapPenalize, want: []int{0, 2, 3}},
		{name: "TrioRewarded", quota: map[int]int{3: 1}, policy: assignment.OverlapReward, want: []int{0, 1, 2}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			sol, err := assignment.NewGreedy(assignment.WithOverlapPolicy(tc.policy)).Assign(overlapProblem(tc.quota))
			require.NoError(t, err)
			require.Len(t, sol.Deliveries, 1)
			require.Equal(t, tc.want, sol.Deliveries[0].PizzaIDs)
		})
	}
}

func TestGreedyTeamOfFourPenalizesOverlap(t *testing.T) {
	// 0: {A,B,C,D,E} seed
	// 1: {A,B,C,D}   penalize 2*5-4 = 6, reward 14
	// 2: {F}         penalize 2*6 = 12,  reward 12
	// 3: {G}, 4: {H}
	b := problem.NewBuilder().SetQuota(4, 1)
	b.AddPizza("A", "B", "C", "D", "E")
	b.AddPizza("A", "B", "C", "D")
	b.AddPizza("F")
	b.AddPizza("G")
	b.AddPizza("H")
	p := b.Build()

	sol, err := assignment.NewGreedy().Assign(p)
	require.NoError(t, err)
	require.Equal(t, []int{0, 2, 3, 4}, sol.Deliveries[0].PizzaIDs)

	sol, err = assignment.NewGreedy(assignment.WithOverlapPolicy(assignment.OverlapReward)).Assign(p)
	require.NoError(t, err)
	require.Contains(t, sol.Deliveries[0].PizzaIDs, 1)
}

func TestGreedyTieBreakKeepsLowestID(t *testing.T) {
	b := problem.NewBuilder().SetQuota(2, 2)
	b.AddPizza("A", "B")
	b.AddPizza("C", "D")
	b.AddPizza("E", "F")
	b.AddPizza("G", "H")
	p := b.Build()

	sol, err := assignment.NewGreedy().Assign(p)
	require.NoError(t, err)
	require.Equal(t, []problem.Delivery{
		{TeamSize: 2, PizzaIDs: []int{0, 1}},
		{TeamSize: 2, PizzaIDs: []int{2, 3}},
	}, sol.Deliveries)
}

func TestGreedyServesLargestTeamsFirst(t *testing.T) {
	b := problem.NewBuilder().SetQuota(2, 1).SetQuota(3, 1).SetQuota(4, 1)
	for i := 0; i < 9; i++ {
		b.AddPizza(fmt.Sprintf("ing-%d", i))
	}

	sol, err := assignment.NewGreedy().Assign(b.Build())
	require.NoError(t, err)
	require.Len(t, sol.Deliveries, 3)
	require.Equal(t, 4, sol.Deliveries[0].TeamSize)
	require.Equal(t, 3, sol.Deliveries[1].TeamSize)
	require.Equal(t, 2, sol.Deliveries[2].TeamSize)
}

func TestGreedyShortfallKeepsSmallerSizes(t *testing.T) {
	tests := []struct {
		name      string
		quota     map[int]int
		pizzas    int
		want      *assignment.ShortfallError
		wantSizes []int
	}{
		{
			name:      "ThreesStillFormed",
			quota:     map[int]int{4: 3, 3: 1},
			pizzas:    7,
			want:      &assignment.ShortfallError{TeamSize: 4, Requested: 3, Missing: 2},
			wantSizes: []int{4, 3},
		},
		{
			name:      "PairsStillFormed",
			quota:     map[int]int{4: 2, 3: 0, 2: 1},
			pizzas:    6,
			want:      &assignment.ShortfallError{TeamSize: 4, Requested: 2, Missing: 1},
			wantSizes: []int{4, 2},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			b := problem.NewBuilder()
			for size, teams := range tc.quota {
				b.SetQuota(size, teams)
			}
			for i := 0; i < tc.pizzas; i++ {
				b.AddPizza(fmt.Sprintf("ing-%d", i))
			}
			p := b.Build()

			sol, err := assignment.NewGreedy(assignment.WithLogger(zaptest.NewLogger(t))).Assign(p)
			require.ErrorIs(t, err, assignment.ErrInsufficientPizzas)

			var sf *assignment.ShortfallError
			require.True(t, errors.As(err, &sf))
			require.Equal(t, tc.want, sf)
			require.Len(t, assignment.Shortfalls(err), 1)

			sizes := make([]int, 0, len(sol.Deliveries))
			for _, d := range sol.Deliveries {
				sizes = append(sizes, d.TeamSize)
			}
			require.Equal(t, tc.wantSizes, sizes)
			require.True(t, evaluation.Valid(p, sol))
		})
	}
}

func TestAssignWithHugeQuotaReportsShortfall(t *testing.T) {
	p, err := problem.Parse(strings.NewReader("3 9223372036854775807 1 0\n1 a\n1 b\n1 c\n"))
	require.NoError(t, err)

	for _, strategy := range []assignment.Strategy{assignment.StrategyGreedy, assignment.StrategyBaseline} {
		t.Run(string(strategy), func(t *testing.T) {
			a, err := assignment.New(strategy)
			require.NoError(t, err)

			var sol problem.Solution
			require.NotPanics(t, func() {
				sol, err = a.Assign(p)
			})
			require.True(t, evaluation.Valid(p, sol))
			if strategy == assignment.StrategyGreedy {
				// the team of three takes every pizza, no pair can follow
				require.Equal(t, 3, sol.PizzaCount())
				require.ErrorIs(t, err, assignment.ErrInsufficientPizzas)
				shortfalls := assignment.Shortfalls(err)
				require.Len(t, shortfalls, 1)
				require.Equal(t, 2, shortfalls[0].TeamSize)
			} else {
				// one pair, then a single pizza is too few for a team of three
				require.Equal(t, 2, sol.PizzaCount())
				require.NoError(t, err)
			}
		})
	}
}

func TestGreedyReportsEveryShortSize(t *testing.T) {
	b := problem.NewBuilder().SetQuota(4, 1).SetQuota(2, 3)
	for i := 0; i < 3; i++ {
		b.AddPizza(fmt.Sprintf("ing-%d", i))
	}

	sol, err := assignment.NewGreedy().Assign(b.Build())
	require.ErrorIs(t, err, assignment.ErrInsufficientPizzas)
	require.Equal(t, []*assignment.ShortfallError{
		{TeamSize: 4, Requested: 1, Missing: 1},
		{TeamSize: 2, Requested: 3, Missing: 2},
	}, assignment.Shortfalls(err))
	require.Len(t, sol.Deliveries, 1)
}

func TestGreedyOffersOneRepresentativePerConfiguration(t *testing.T) {
	b := problem.NewBuilder().SetQuota(2, 1)
	b.AddPizza("A", "B")
	b.AddPizza("A", "B")
	b.AddPizza("B", "A")
	p := b.Build()

	sol, err := assignment.NewGreedy().Assign(p)
	require.ErrorIs(t, err, assignment.ErrInsufficientPizzas)
	require.Empty(t, sol.Deliveries)
}

func TestGreedyRejectsInvalidQuota(t *testing.T) {
	p := &problem.Problem{Quota: problem.Quota{0: 1}}
	_, err := assignment.NewGreedy().Assign(p)
	require.ErrorIs(t, err, assignment.ErrInvalidQuota)
}

func TestGreedyDoesNotModifyProblem(t *testing.T) {
	p := randomProblem(rand.New(rand.NewPCG(7, 7)), 40, 12)
	before := p.Build()

	_, _ = assignment.NewGreedy().Assign(before)
	require.Equal(t, p.Build(), before)
}

func TestAssignersProduceValidSolutions(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 25; i++ {
		p := randomProblem(rng, 5+rng.IntN(60), 3+rng.IntN(15)).Build()
		for _, strategy := range []assignment.Strategy{assignment.StrategyGreedy, assignment.StrategyBaseline} {
			assigner, err := assignment.New(strategy)
			require.NoError(t, err)

			sol, err := assigner.Assign(p)
			if err != nil {
				require.ErrorIs(t, err, assignment.ErrInsufficientPizzas)
			}

			seen := make(map[int]bool)
			for _, d := range sol.Deliveries {
				require.Equal(t, d.TeamSize, len(d.PizzaIDs))
				for _, id := range d.PizzaIDs {
					require.False(t, seen[id], "pizza %d delivered twice", id)
					seen[id] = true
				}
			}
			require.True(t, evaluation.Valid(p, sol))
		}
	}
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	_, err := assignment.New("simulated-annealing")
	require.ErrorIs(t, err, assignment.ErrUnknownStrategy)

	a, err := assignment.New("")
	require.NoError(t, err)
	require.Equal(t, assignment.StrategyGreedy, a.Strategy())
}

func TestParseOverlapPolicy(t *testing.T) {
	p, err := assignment.ParseOverlapPolicy("")
	require.NoError(t, err)
	require.Equal(t, assignment.OverlapSizeDependent, p)

	_, err = assignment.ParseOverlapPolicy("ignore")
	require.ErrorIs(t, err, assignment.ErrUnknownOverlapPolicy)

	require.Equal(t, -1, assignment.OverlapSizeDependent.Sign(4))
	require.Equal(t, 1, assignment.OverlapSizeDependent.Sign(3))
	require.Equal(t, 1, assignment.OverlapSizeDependent.Sign(2))
}

func randomProblem(rng *rand.Rand, pizzas, ingredients int) *problem.Builder {
	b := problem.NewBuilder().
		SetQuota(2, rng.IntN(10)).
		SetQuota(3, rng.IntN(10)).
		SetQuota(4, rng.IntN(10))
	for i := 0; i < pizzas; i++ {
		n := 1 + rng.IntN(5)
		names := make([]string, n)
		for j := range names {
			names[j] = fmt.Sprintf("ing-%d", rng.IntN(ingredients))
		}
		b.AddPizza(names...)
	}
	return b
}

func BenchmarkGreedyAssign(b *testing.B) {
	p := randomProblem(rand.New(rand.NewPCG(3, 4)), 2000, 200).
		SetQuota(2, 200).SetQuota(3, 200).SetQuota(4, 200).
		Build()
	assigner := assignment.NewGreedy()
	for i := 0; i < b.N; i++ {
		_, _ = assigner.Assign(p)
	}
}
