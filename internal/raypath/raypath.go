// Package raypath attaches geographic coordinates to ray paths computed by an
// external 1-D travel-time model.
//
// Travel-time models work in epicentral angle and depth only. The decorator
// solves the source to station geodesic once, then places every path sample
// on that geodesic by its angular distance from the source.
package raypath

import (
	"context"
	"errors"
	"fmt"

	"github.com/quakepath/geodesic"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoModel is returned by a Decorator without a travel-time model.
var ErrNoModel = errors.New("raypath: no travel-time model")

// Sample is one point of a ray path as produced by the travel-time model.
type Sample struct {
	// P is the ray parameter (s/rad).
	P float64
	// Time since origin (s).
	Time float64
	// Dist is the epicentral distance from the source (radians).
	Dist float64
	// Depth below the surface (km).
	Depth float64
}

// Arrival is one seismic phase arriving at the station.
type Arrival struct {
	Phase    string
	Time     float64
	RayParam float64
	Path     []Sample
}

// Model is a 1-D travel-time model, such as an iasp91 or ak135 TauP
// implementation. Distances are epicentral angles in degrees and depths in
// kilometres.
type Model interface {
	RayPaths(ctx context.Context, sourceDepth, distance float64, phases []string) ([]Arrival, error)
	PiercePoints(ctx context.Context, sourceDepth, distance float64, phases []string) ([]Arrival, error)
}

// Source is an earthquake hypocentre.
type Source struct {
	Lat, Lon float64
	Depth    float64
}

// Station is a receiver on the surface.
type Station struct {
	Lat, Lon float64
}

// GeoSample is a path sample with its geographic position.
type GeoSample struct {
	Sample
	Lat, Lon float64
}

// GeoArrival is an Arrival whose path carries geographic positions.
// Approximate is set when the source-station geodesic did not converge and
// the path was placed on the last iterate.
type GeoArrival struct {
	Phase       string
	Time        float64
	RayParam    float64
	Path        []GeoSample
	Approximate bool
}

// Length returns the length of the path as the sum of straight segments
// between consecutive samples, placing each sample at radius-depth from the
// centre of the Earth.
func (a GeoArrival) Length(radius float64) float64 {
	var total float64
	var prev r3.Vec
	for i, s := range a.Path {
		c := geodesic.GeographicToCartesian(radius-s.Depth, s.Lat, s.Lon)
		v := r3.Vec{X: c.X, Y: c.Y, Z: c.Z}
		if i > 0 {
			total += r3.Norm(r3.Sub(v, prev))
		}
		prev = v
	}
	return total
}

// Decorator wraps a Model so that paths come back with latitudes and
// longitudes.
type Decorator struct {
	Ellipsoid geodesic.Ellipsoid
	Model     Model
}

// New returns a Decorator placing samples on geodesics of e.
func New(model Model, e geodesic.Ellipsoid) *Decorator {
	return &Decorator{Ellipsoid: e, Model: model}
}

// Geodesic solves the source to station inverse problem. Arc is the
// epicentral distance handed to the travel-time model. On non-convergence
// the last iterate is returned with an error matching
// geodesic.ErrNotConverged.
func (d *Decorator) Geodesic(src Source, sta Station) (geodesic.InverseResult, error) {
	inv, err := d.Ellipsoid.Inverse(src.Lat, src.Lon, sta.Lat, sta.Lon)
	if err != nil {
		return inv, fmt.Errorf("solve source-station geodesic: %w", err)
	}
	return inv, nil
}

// RayPathsGeo returns the ray paths of the given phases between src and sta
// with a position attached to every sample. When the geodesic does not
// converge, as for nearly antipodal stations, the arrivals are still returned,
// marked Approximate, together with an error matching
// geodesic.ErrNotConverged.
func (d *Decorator) RayPathsGeo(ctx context.Context, src Source, sta Station, phases []string) ([]GeoArrival, error) {
	return d.run(ctx, src, sta, phases, Model.RayPaths)
}

// PiercePointsGeo is RayPathsGeo for the pierce points of each phase.
func (d *Decorator) PiercePointsGeo(ctx context.Context, src Source, sta Station, phases []string) ([]GeoArrival, error) {
	return d.run(ctx, src, sta, phases, Model.PiercePoints)
}

type query func(m Model, ctx context.Context, sourceDepth, distance float64, phases []string) ([]Arrival, error)

func (d *Decorator) run(ctx context.Context, src Source, sta Station, phases []string, q query) ([]GeoArrival, error) {
	if d.Model == nil {
		return nil, ErrNoModel
	}
	inv, solveErr := d.Geodesic(src, sta)
	if solveErr != nil && !errors.Is(solveErr, geodesic.ErrNotConverged) {
		return nil, solveErr
	}
	arrivals, err := q(d.Model, ctx, src.Depth, inv.Arc, phases)
	if err != nil {
		return nil, fmt.Errorf("travel-time model: %w", err)
	}
	line := d.Ellipsoid.Line(src.Lat, src.Lon, inv.Azimuth1)
	out := Decorate(line, arrivals)
	if solveErr != nil {
		for i := range out {
			out[i].Approximate = true
		}
	}
	return out, solveErr
}

// Decorate places the samples of every arrival on line.
func Decorate(line geodesic.Line, arrivals []Arrival) []GeoArrival {
	out := make([]GeoArrival, 0, len(arrivals))
	for _, a := range arrivals {
		path := make([]GeoSample, len(a.Path))
		for i, s := range a.Path {
			pos := line.ArcPosition(geodesic.Degrees(s.Dist))
			path[i] = GeoSample{Sample: s, Lat: pos.Lat2, Lon: pos.Lon2}
		}
		out = append(out, GeoArrival{
			Phase:    a.Phase,
			Time:     a.Time,
			RayParam: a.RayParam,
			Path:     path,
		})
	}
	return out
}
