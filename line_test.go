package geodesic

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineArcPositionMatchesInverse(t *testing.T) {
	inv, err := WGS84.Inverse(10, -70, -35, 20)
	require.NoError(t, err)

	l := WGS84.Line(10, -70, inv.Azimuth1)
	p := l.ArcPosition(inv.Arc)
	assert.InDelta(t, -35, p.Lat2, 1e-9)
	assert.InDelta(t, 20, p.Lon2, 1e-9)
	assert.InDelta(t, inv.Distance, p.Distance, 1e-9)
	assert.InDelta(t, inv.Azimuth2, p.Azimuth2, 1e-9)
	assert.Equal(t, inv.Arc, p.Arc)
	assert.Zero(t, p.Iterations)
}

func TestLineArcPositionStart(t *testing.T) {
	l := WGS84.Line(-20, 30, 40)
	p := l.ArcPosition(0)
	assert.InDelta(t, -20, p.Lat2, 1e-12)
	assert.InDelta(t, 30, p.Lon2, 1e-12)
	assert.InDelta(t, 40, p.Azimuth2, 1e-12)
	assert.InDelta(t, 0, p.Distance, 1e-12)

	lat, lon, azi := l.Origin()
	assert.Equal(t, []float64{-20, 30, 40}, []float64{lat, lon, azi})
	assert.Equal(t, WGS84, l.Ellipsoid())
}

func TestLinePositionAgreesWithArcPosition(t *testing.T) {
	l := WGS84.Line(52.2, 0.1, 123)
	for _, s := range []float64{0, 1, 250, 1000, 5000, 12000, 19000} {
		t.Run(fmt.Sprint(s), func(t *testing.T) {
			byDist, err := l.Position(s)
			require.NoError(t, err)
			byArc := l.ArcPosition(byDist.Arc)
			assert.InDelta(t, byDist.Lat2, byArc.Lat2, 1e-12)
			assert.InDelta(t, byDist.Lon2, byArc.Lon2, 1e-12)
			assert.InDelta(t, s, byArc.Distance, 1e-8)
		})
	}
}

func TestLinePositionBackwards(t *testing.T) {
	l := WGS84.Line(-20, 30, 40)
	p, err := l.Position(-1000)
	require.NoError(t, err)
	assert.Less(t, p.Arc, 0.0)
	assert.Equal(t, -1000.0, p.Distance)

	back, err := WGS84.Inverse(p.Lat2, p.Lon2, -20, 30)
	require.NoError(t, err)
	assert.InDelta(t, 1000, back.Distance, 1e-8)
	assert.InDelta(t, 40, back.Azimuth2, 1e-9)
}

func TestLineSpherical(t *testing.T) {
	l := Globe.Line(0, 0, 90)
	quarter := Globe.SemiMajor() * math.Pi / 2

	p := l.ArcPosition(90)
	assert.InDelta(t, 0, p.Lat2, 1e-12)
	assert.InDelta(t, 90, p.Lon2, 1e-12)
	assert.InDelta(t, quarter, p.Distance, 1e-9)

	q, err := l.Position(quarter)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Iterations)
	assert.InDelta(t, 90, q.Arc, 1e-12)
	assert.InDelta(t, 90, q.Lon2, 1e-12)
}

func TestDirectResultPoint(t *testing.T) {
	r := DirectResult{Lat2: 1, Lon2: 2}
	assert.Equal(t, GeoPoint{Lat: 1, Lon: 2, Radius: 6371}, r.Point(6371))
}

func BenchmarkLineArcPosition(b *testing.B) {
	l := WGS84.Line(37.3, 0, 95.5)
	for i := 0; i < b.N; i++ {
		l.ArcPosition(float64(i%180) + 0.5)
	}
}

func BenchmarkInverse(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = WGS84.Inverse(37.3, 0, 26.1, 41.5)
	}
}
