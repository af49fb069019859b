package geodesic

import (
	"errors"
	"fmt"
	"math"
)

// Iteration limit and tolerance shared by the inverse and direct solutions.
// 1e-12 rad is about 0.06 mm on the Earth.
const (
	MaxIterations = 500
	Tolerance     = 1e-12
)

// ErrNotConverged is matched by every *ConvergenceError.
var ErrNotConverged = errors.New("geodesic: iteration limit reached before convergence")

// ConvergenceError reports that an iterative solution hit MaxIterations.
// The result returned alongside it is the last iterate and is only
// approximate.
type ConvergenceError struct {
	Op         string
	Iterations int
	// Delta is the size of the last correction (radians).
	Delta float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("geodesic: %s did not converge after %d iterations (last step %.3g rad)",
		e.Op, e.Iterations, e.Delta)
}

// Is makes errors.Is(err, ErrNotConverged) true.
func (e *ConvergenceError) Is(target error) bool {
	return target == ErrNotConverged
}

// InverseResult is the solution of the inverse problem.
type InverseResult struct {
	// Distance from point 1 to point 2 in the unit of the ellipsoid axes.
	Distance float64
	// Azimuth1 is the azimuth at point 1, clockwise from north (degrees).
	Azimuth1 float64
	// Azimuth2 is the forward azimuth at point 2 (degrees).
	Azimuth2 float64
	// Arc is the arc length on the auxiliary sphere (degrees).
	Arc        float64
	Iterations int
}

// BackAzimuth returns the azimuth at point 2 pointing back to point 1.
func (r InverseResult) BackAzimuth() float64 {
	return Lon180(r.Azimuth2 + 180)
}

// DirectResult is the solution of the direct problem.
type DirectResult struct {
	Lat2 float64
	Lon2 float64
	// Azimuth2 is the forward azimuth at the destination (degrees).
	Azimuth2 float64
	// Arc is the arc length on the auxiliary sphere (degrees).
	Arc float64
	// Distance along the geodesic in the unit of the ellipsoid axes.
	Distance   float64
	Iterations int
}

// Point returns the destination as a GeoPoint with the given radius.
func (r DirectResult) Point(radius float64) GeoPoint {
	return GeoPoint{Lat: r.Lat2, Lon: r.Lon2, Radius: radius}
}

// Inverse solves the inverse geodesic problem with Vincenty's method.
//
// Param lat1 is latitude of point 1 (degrees).
// Param lon1 is longitude of point 1 (degrees).
// Param lat2 is latitude of point 2 (degrees).
// Param lon2 is longitude of point 2 (degrees).
//
// lat1 and lat2 should be in the range [-90,+90]. The azimuths returned are in
// the range (-180,+180]. Coincident points give a zero distance and zero
// azimuths.
//
// If λ has not settled to within Tolerance after MaxIterations, the last
// iterate is returned together with a *ConvergenceError. This happens for
// nearly antipodal points.
func (e Ellipsoid) Inverse(lat1, lon1, lat2, lon2 float64) (InverseResult, error) {
	f := e.f
	sinU1, cosU1 := e.reducedLatitude(lat1)
	sinU2, cosU2 := e.reducedLatitude(lat2)
	L := (lon2 - lon1) * radians
	λ := L

	var sinσ, cosσ, σ, sinα, cos2α, cos2σm, δ float64
	i := 0
	converged := false
	for i < MaxIterations {
		i++
		sinλ, cosλ := math.Sincos(λ)
		sinσ = math.Hypot(cosU2*sinλ, cosU1*sinU2-sinU1*cosU2*cosλ)
		if sinσ == 0 {
			return InverseResult{Iterations: i}, nil
		}
		cosσ = sinU1*sinU2 + cosU1*cosU2*cosλ
		σ = math.Atan2(sinσ, cosσ)
		sinα = cosU1 * cosU2 * sinλ / sinσ
		cos2α = 1 - sinα*sinα
		var C float64
		if cos2α == 0 {
			// equatorial line: B vanishes with u², so cos2σm is inert
			cos2σm = 0
		} else {
			cos2σm = cosσ - 2*sinU1*sinU2/cos2α
			C = e.correction(cos2α)
		}
		prev := λ
		λ = L + (1-C)*f*sinα*(σ+C*sinσ*(cos2σm+C*cosσ*(-1+2*cos2σm*cos2σm)))
		δ = math.Abs(λ - prev)
		if δ <= Tolerance {
			converged = true
			break
		}
	}

	A, B := e.series(cos2α)
	Δσ := deltaSigma(B, sinσ, cosσ, cos2σm)
	sinλ, cosλ := math.Sincos(λ)
	α1 := math.Atan2(cosU2*sinλ, cosU1*sinU2-sinU1*cosU2*cosλ)
	α2 := math.Atan2(cosU1*sinλ, -sinU1*cosU2+cosU1*sinU2*cosλ)
	res := InverseResult{
		Distance:   e.b * A * (σ - Δσ),
		Azimuth1:   Lon180(α1 * degrees),
		Azimuth2:   Lon180(α2 * degrees),
		Arc:        σ * degrees,
		Iterations: i,
	}
	if !converged {
		return res, &ConvergenceError{Op: "inverse", Iterations: i, Delta: δ}
	}
	return res, nil
}

// Direct solves the direct geodesic problem with Vincenty's method.
//
// Param lat1 is the latitude of point 1 (degrees).
// Param lon1 is the longitude of point 1 (degrees).
// Param azi1 is the azimuth at point 1 (degrees).
// Param s12 is the distance from point 1 to point 2 in the unit of the axes.
//
// The longitude and azimuth returned are in the range (-180,+180]. A
// *ConvergenceError is returned with the last iterate if σ does not settle.
func (e Ellipsoid) Direct(lat1, lon1, azi1, s12 float64) (DirectResult, error) {
	return e.Line(lat1, lon1, azi1).Position(s12)
}

// deltaSigma is Vincenty's Δσ series term.
func deltaSigma(B, sinσ, cosσ, cos2σm float64) float64 {
	return B * sinσ * (cos2σm + B/4*(cosσ*(-1+2*cos2σm*cos2σm)-
		B/6*cos2σm*(-3+4*sinσ*sinσ)*(-3+4*cos2σm*cos2σm)))
}
