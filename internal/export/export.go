// Package export renders sampled geodesics and ray paths as GeoJSON or WKT
// and reprojects them out of geographic coordinates.
package export

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/quakepath/geodesic"
	"github.com/quakepath/geodesic/internal/raypath"
	"github.com/wroge/wgs84"
)

// EPSG codes accepted by Reproject.
const (
	EPSGLonLat      = 4326
	EPSGWebMercator = 3857
	EPSGGeocentric  = 4978
)

var (
	ErrTooFewSamples  = errors.New("export: need at least one interval")
	ErrUnsupportedCRS = errors.New("export: unsupported CRS")
)

// Point is a position on or below the reference surface. Depth is in km,
// positive down.
type Point struct {
	Lat, Lon float64
	Depth    float64
}

// Coord is a reprojected position. Units depend on the target CRS.
type Coord struct {
	X, Y, Z float64
}

// SampleLine returns n+1 evenly spaced positions along l from its origin to
// distance (km).
func SampleLine(l geodesic.Line, distance float64, n int) ([]geodesic.DirectResult, error) {
	if n < 1 {
		return nil, ErrTooFewSamples
	}
	out := make([]geodesic.DirectResult, 0, n+1)
	for i := 0; i <= n; i++ {
		p, err := l.Position(distance * float64(i) / float64(n))
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// SurfacePoints converts direct results to surface points.
func SurfacePoints(samples []geodesic.DirectResult) []Point {
	pts := make([]Point, len(samples))
	for i, s := range samples {
		pts[i] = Point{Lat: s.Lat2, Lon: s.Lon2}
	}
	return pts
}

// PathPoints converts a ray path to points.
func PathPoints(a raypath.GeoArrival) []Point {
	pts := make([]Point, len(a.Path))
	for i, s := range a.Path {
		pts[i] = Point{Lat: s.Lat, Lon: s.Lon, Depth: s.Depth}
	}
	return pts
}

func lineString(pts []Point) orb.LineString {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = orb.Point{p.Lon, p.Lat}
	}
	return ls
}

// LineGeoJSON encodes the samples as a single LineString feature. The
// feature carries the total distance in km.
func LineGeoJSON(samples []geodesic.DirectResult) ([]byte, error) {
	f := geojson.NewFeature(lineString(SurfacePoints(samples)))
	if n := len(samples); n > 0 {
		f.Properties["distance"] = samples[n-1].Distance
	}
	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	return fc.MarshalJSON()
}

// RayPathsGeoJSON encodes one LineString feature per arrival. GeoJSON
// positions are two dimensional so depths travel as a property.
func RayPathsGeoJSON(arrivals []raypath.GeoArrival) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, a := range arrivals {
		pts := PathPoints(a)
		depth := make([]float64, len(pts))
		for i, p := range pts {
			depth[i] = p.Depth
		}
		f := geojson.NewFeature(lineString(pts))
		f.Properties["phase"] = a.Phase
		f.Properties["time"] = a.Time
		f.Properties["rayParam"] = a.RayParam
		f.Properties["depth"] = depth
		f.Properties["approximate"] = a.Approximate
		fc.Append(f)
	}
	return fc.MarshalJSON()
}

// LineWKT returns the samples as a 2D LINESTRING in lon/lat order. Samples
// that do not span two distinct positions, such as a zero-length geodesic,
// are rejected by the geometry constructor.
func LineWKT(samples []geodesic.DirectResult) (string, error) {
	flat := make([]float64, 0, 2*len(samples))
	for _, s := range samples {
		flat = append(flat, s.Lon2, s.Lat2)
	}
	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return "", fmt.Errorf("geodesic linestring: %w", err)
	}
	return ls.AsText(), nil
}

// RayPathsWKT returns one LINESTRING Z per arrival with elevation in km, so
// that points below the surface have negative Z.
func RayPathsWKT(arrivals []raypath.GeoArrival) ([]string, error) {
	out := make([]string, 0, len(arrivals))
	for _, a := range arrivals {
		flat := make([]float64, 0, 3*len(a.Path))
		for _, p := range PathPoints(a) {
			flat = append(flat, p.Lon, p.Lat, -p.Depth)
		}
		ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXYZ))
		if err != nil {
			return nil, fmt.Errorf("ray path for %s: %w", a.Phase, err)
		}
		out = append(out, ls.AsText())
	}
	return out, nil
}

// Reproject transforms points from geographic coordinates on WGS84 to the
// CRS identified by epsg. Depth becomes a negative ellipsoidal height in
// metres. For 4326 X and Y are longitude and latitude.
func Reproject(pts []Point, epsg int) ([]Coord, error) {
	out := make([]Coord, len(pts))
	if epsg == EPSGLonLat {
		for i, p := range pts {
			out[i] = Coord{X: p.Lon, Y: p.Lat, Z: -p.Depth * 1000}
		}
		return out, nil
	}
	if epsg != EPSGWebMercator && epsg != EPSGGeocentric {
		return nil, fmt.Errorf("%w: EPSG:%d", ErrUnsupportedCRS, epsg)
	}

	f := wgs84.EPSG().Transform(EPSGLonLat, epsg)
	for i, p := range pts {
		x, y, z := f(p.Lon, p.Lat, -p.Depth*1000)
		out[i] = Coord{X: x, Y: y, Z: z}
	}
	if epsg == EPSGWebMercator {
		for i, p := range pts {
			out[i].Z = -p.Depth * 1000
		}
	}
	return out, nil
}
