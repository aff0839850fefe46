package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterDefaultIsIdempotent(t *testing.T) {
	require.NotPanics(t, func() {
		RegisterDefault()
		RegisterDefault()
	})

	AssignmentRuns.WithLabelValues("greedy", "valid").Inc()
	require.GreaterOrEqual(t, testutil.ToFloat64(AssignmentRuns.WithLabelValues("greedy", "valid")), 1.0)

	families, err := Registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["assignment_runs_total"])
}
