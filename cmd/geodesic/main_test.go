package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/quakepath/geodesic"
	"github.com/quakepath/geodesic/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestInverseJSON(t *testing.T) {
	out, _, err := run(t, "inverse", "-f", "json", "0", "0", "0", "90")
	require.NoError(t, err)

	var res inverseJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 10018.754171390376, res.Distance, 1e-6)
	assert.InDelta(t, 90, res.Azimuth1, 1e-9)
	assert.InDelta(t, -90, res.BackAzimuth, 1e-9)
	assert.InDelta(t, (2*6378.137+6356.752314)/3*math.Pi/2, res.GreatCircle, 1e-9)
	assert.InDelta(t, 90, res.GreatCircleAzimuth, 1e-9)
	assert.True(t, res.Converged)
}

func TestInverseGreatCircleAzimuth(t *testing.T) {
	out, _, err := run(t, "inverse", "-f", "json", "--", "10", "20", "-30", "40")
	require.NoError(t, err)

	var res inverseJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 154.9487490120877, res.GreatCircleAzimuth, 1e-9)
	assert.InDelta(t, res.GreatCircleAzimuth, res.Azimuth1, 1)
}

func TestInverseTable(t *testing.T) {
	out, _, err := run(t, "inverse", "0", "0", "45", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "DISTANCE (KM)")
	assert.Contains(t, out, "4984.944378")
}

func TestInverseNotConverged(t *testing.T) {
	out, stderr, err := run(t, "inverse", "-f", "json", "0", "0", "0.5", "179.7")
	require.Error(t, err)
	assert.ErrorIs(t, err, geodesic.ErrNotConverged)

	var res inverseJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Converged)
	assert.Equal(t, geodesic.MaxIterations, res.Iterations)
	assert.Contains(t, stderr, "reporting last iterate")
}

func TestInverseNegativeArguments(t *testing.T) {
	out, _, err := run(t, "inverse", "-f", "json", "--", "-10", "-20", "-10", "-30")
	require.NoError(t, err)

	var res inverseJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Greater(t, res.Distance, 1000.0)
}

func TestInverseBadArgument(t *testing.T) {
	_, _, err := run(t, "inverse", "0", "east", "0", "90")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument 2")

	_, _, err = run(t, "inverse", "0", "0", "0")
	assert.Error(t, err)
}

func TestDirectInternational1924(t *testing.T) {
	out, _, err := run(t, "direct", "-f", "json", "--ellipsoid", "international1924",
		"37.331931575", "0", "95.46656413611112", "4085.966703")
	require.NoError(t, err)

	var res directJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, geodesic.DMSToDecimal(26, 7, 42.83946), res.Lat2, 1e-6)
	assert.InDelta(t, geodesic.DMSToDecimal(41, 28, 35.50729), res.Lon2, 1e-6)
}

func TestDirectSphere(t *testing.T) {
	quarter := strconv.FormatFloat(6371*math.Pi/2, 'g', -1, 64)
	out, _, err := run(t, "direct", "-f", "json", "--sphere", "6371", "0", "0", "90", quarter)
	require.NoError(t, err)

	var res directJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 0, res.Lat2, 1e-9)
	assert.InDelta(t, 90, res.Lon2, 1e-9)
	assert.Equal(t, 1, res.Iterations)
	assert.InDelta(t, 0, res.GreatCircleLat, 1e-9)
	assert.InDelta(t, 90, res.GreatCircleLon, 1e-9)
}

func TestDirectTableGreatCircle(t *testing.T) {
	out, _, err := run(t, "direct", "--sphere", "6371", "0", "0", "0", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "GC LAT2")
	// 1000 km due north on a 6371 km sphere.
	assert.Contains(t, out, strconv.FormatFloat(1000/6371.0*180/math.Pi, 'f', 8, 64))
}

func TestLineGeoJSON(t *testing.T) {
	out, _, err := run(t, "line", "-f", "geojson", "-n", "4", "0", "0", "90", "10018.754171390376")
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection([]byte(out))
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	ls, ok := fc.Features[0].Geometry.(orb.LineString)
	require.True(t, ok)
	require.Len(t, ls, 5)
	assert.InDelta(t, 45, ls[2].Lon(), 1e-9)
}

func TestLineWKT(t *testing.T) {
	out, _, err := run(t, "line", "-f", "wkt", "-n", "2", "10", "20", "45", "500")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "LINESTRING"), out)
}

func TestLineWKTZeroDistance(t *testing.T) {
	_, _, err := run(t, "line", "-f", "wkt", "0", "0", "90", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geodesic linestring")
}

func TestLineTableWebMercator(t *testing.T) {
	out, _, err := run(t, "line", "--crs", "3857", "-n", "2", "0", "0", "90", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "AZIMUTH")
	assert.Contains(t, out, " X ")
	assert.Contains(t, out, "0.00000000")
}

func TestLineJSONGeocentric(t *testing.T) {
	out, _, err := run(t, "line", "-f", "json", "--crs", "4978", "-n", "1", "0", "0", "0", "0")
	require.NoError(t, err)

	var pts []pointJSON
	require.NoError(t, json.Unmarshal([]byte(out), &pts))
	require.Len(t, pts, 2)
	assert.InDelta(t, 6378137, pts[0].X, 1e-3)
	assert.InDelta(t, 0, pts[1].Y, 1e-3)
}

func TestLineTooFewSamples(t *testing.T) {
	_, _, err := run(t, "line", "-n", "0", "0", "0", "90", "100")
	assert.Error(t, err)
}

func TestGeog2Cart(t *testing.T) {
	out, _, err := run(t, "geog2cart", "-f", "json", "--", "6378", "0", "-90")
	require.NoError(t, err)

	var c map[string]float64
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.InDelta(t, 0, c["x"], 1e-9)
	assert.InDelta(t, -6378, c["y"], 1e-9)
	assert.InDelta(t, 0, c["z"], 1e-9)
}

func TestCart2Geog(t *testing.T) {
	out, _, err := run(t, "cart2geog", "-f", "json", "0", "0", "6378")
	require.NoError(t, err)

	var p map[string]float64
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.InDelta(t, 6378, p["radius"], 1e-9)
	assert.InDelta(t, 90, p["lat"], 1e-12)

	_, _, err = run(t, "cart2geog", "0", "0", "0")
	assert.ErrorIs(t, err, geodesic.ErrDomain)
}

func TestDMS(t *testing.T) {
	out, _, err := run(t, "dms", "37", "19", "54.95367")
	require.NoError(t, err)
	assert.Equal(t, "37.33193158\n", out)
}

const picksCSV = `1, ISC, ANMO, 35.1, -106.6, 1850.0, , 136.30, 326.6, P, , 2004-12-26, 01:18:21.30, , , , , , 2004-12-26, 01:00:00.00, 3.30, 95.98, 30.0
1, ISC, ANMO, 35.1, -106.6, 1850.0, , 136.30, 326.6, PcP, , 2004-12-26, 01:20:37.10, , , , , , 2004-12-26, 01:00:00.00, 3.30, 95.98, 30.0
2, ISC, COLA, 64.9, -147.8, 200.0, , 60.00, 10.0, P, , 2004-12-27, 02:00:00.00, , , , , , 2004-12-27, 01:50:00.00, 10.0, 120.0, 10.0
`

func writePicks(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "picks.csv")
	require.NoError(t, os.WriteFile(path, []byte(picksCSV), 0o644))
	return path
}

func TestPicksPaired(t *testing.T) {
	out, _, err := run(t, "picks", "-f", "json", "-p", "P", "-p", "PcP", writePicks(t))
	require.NoError(t, err)

	var res []pickJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 1)
	assert.Equal(t, "ANMO", res[0].Station)
	assert.InDelta(t, 136.32212440106488, res[0].Arc, 1e-8)
	assert.InDelta(t, 326.6136389740117, res[0].Computed, 1e-8)
	require.NotNil(t, res[0].Differential)
	assert.InDelta(t, 135.8, *res[0].Differential, 1e-9)
	assert.Empty(t, res[0].Error)
}

func TestPicksSinglePhaseTable(t *testing.T) {
	out, _, err := run(t, "picks", writePicks(t))
	require.NoError(t, err)
	assert.Contains(t, out, "ANMO")
	assert.Contains(t, out, "COLA")
	assert.Contains(t, out, "326.61")
	assert.Less(t, strings.Index(out, "ANMO"), strings.Index(out, "COLA"))
}

func TestPicksErrors(t *testing.T) {
	_, _, err := run(t, "picks", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = run(t, "picks", "-p", "P", "-p", "PcP", "-p", "S", writePicks(t))
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geodesic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ellipsoid:
  name: sphere
  sphereRadius: 1000
output:
  format: json
`), 0o644))

	out, _, err := run(t, "inverse", "--config", path, "0", "0", "0", "90")
	require.NoError(t, err)

	var res inverseJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 1000*math.Pi/2, res.Distance, 1e-9)
	assert.InDelta(t, res.Distance, res.GreatCircle, 1e-9)
}

func TestFlagOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geodesic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: json\n"), 0o644))

	out, _, err := run(t, "inverse", "--config", path, "-f", "table", "0", "0", "45", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "DISTANCE (KM)")
}

func TestBindFlagsMissingFlag(t *testing.T) {
	a := &app{v: config.New()}
	err := a.bindFlags(&cobra.Command{Use: "bare"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binding --ellipsoid")
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := run(t, "inverse", "-f", "csv", "0", "0", "0", "90")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format must be one of")
}

func TestDebugLogging(t *testing.T) {
	_, stderr, err := run(t, "dms", "--log-level", "debug", "1", "30", "0")
	require.NoError(t, err)
	assert.Contains(t, stderr, "configured")
}
