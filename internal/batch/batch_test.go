package batch

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"testing"

	"github.com/quakepath/geodesic"
	"github.com/quakepath/geodesic/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPairs(n int) []Pair {
	rng := rand.New(rand.NewSource(424242))
	pairs := make([]Pair, n)
	for i := range pairs {
		pairs[i] = Pair{
			ID:   fmt.Sprint(i),
			Lat1: rng.Float64()*160 - 80,
			Lon1: rng.Float64()*360 - 180,
			Lat2: rng.Float64()*160 - 80,
			Lon2: rng.Float64()*360 - 180,
		}
	}
	return pairs
}

func TestRunnerInverseKeepsOrder(t *testing.T) {
	pairs := randomPairs(500)
	r := NewRunner(geodesic.WGS84, 4)

	out, err := r.Inverse(context.Background(), pairs)
	require.NoError(t, err)
	require.Len(t, out, len(pairs))

	for i, o := range out {
		assert.Equal(t, pairs[i], o.Pair)
		want, werr := geodesic.WGS84.Inverse(o.Lat1, o.Lon1, o.Lat2, o.Lon2)
		assert.Equal(t, werr, o.Err)
		assert.Equal(t, want, o.Result)
	}
}

func TestRunnerInverseRecordsNonConvergence(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(geodesic.WGS84, 2)
	r.Logger = logging.New(&buf, "warn", "json")

	out, err := r.Inverse(context.Background(), []Pair{
		{ID: "ok", Lat1: 0, Lon1: 0, Lat2: 0, Lon2: 90},
		{ID: "antipodal", Lat1: 0, Lon1: 0, Lat2: 0.5, Lon2: 179.7},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.NoError(t, out[0].Err)
	assert.InDelta(t, 10018.754171390376, out[0].Result.Distance, 1e-6)

	assert.ErrorIs(t, out[1].Err, geodesic.ErrNotConverged)
	assert.Equal(t, geodesic.MaxIterations, out[1].Result.Iterations)

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"id":"antipodal"`)
	assert.Contains(t, buf.String(), "inverse did not converge")
	assert.NotContains(t, buf.String(), `"id":"ok"`)
}

func TestRunnerInverseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(geodesic.WGS84, 1).Inverse(ctx, randomPairs(10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunnerInverseEmpty(t *testing.T) {
	out, err := NewRunner(geodesic.Globe, 0).Inverse(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRunnerWorkers(t *testing.T) {
	assert.Equal(t, 3, NewRunner(geodesic.WGS84, 3).workers())
	assert.Equal(t, runtime.GOMAXPROCS(0), NewRunner(geodesic.WGS84, 0).workers())
	assert.Equal(t, runtime.GOMAXPROCS(0), NewRunner(geodesic.WGS84, -1).workers())
}
