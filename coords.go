package geodesic

import (
	"errors"
	"math"
)

// ErrDomain is returned when a geometric input has no defined answer, such as
// asking for the direction of the origin.
var ErrDomain = errors.New("geodesic: point has no defined direction")

// GeoPoint is a geographic position.
//
// Lat is in [-90,90] degrees, Lon is degrees east of Greenwich and Radius is
// the distance from the centre of the Earth in the caller's length unit.
type GeoPoint struct {
	Lat    float64
	Lon    float64
	Radius float64
}

// Colatitude returns the angle of the point from the north pole (degrees).
func (p GeoPoint) Colatitude() float64 {
	return Colatitude(p.Lat)
}

// Cartesian returns the point in the earth-centred cartesian frame.
func (p GeoPoint) Cartesian() CartesianPoint {
	return GeographicToCartesian(p.Radius, p.Lat, p.Lon)
}

// CartesianPoint is a position in the earth-centred frame where +Z points to
// the north pole, +X to (0N,0E) and +Y to (0N,90E).
type CartesianPoint struct {
	X, Y, Z float64
}

// Geographic returns the point as a GeoPoint. It fails with ErrDomain at the
// origin.
func (c CartesianPoint) Geographic() (GeoPoint, error) {
	return CartesianToGeographic(c.X, c.Y, c.Z)
}

// SphericalPoint is a position in spherical coordinates. Theta is the polar
// angle from +Z in [0,π] and Phi the azimuthal angle from +X in (-π,π], both
// in radians.
type SphericalPoint struct {
	R, Theta, Phi float64
}

// GeographicToCartesian converts a radius, latitude and longitude (degrees)
// to earth-centred cartesian coordinates in the unit of the radius.
func GeographicToCartesian(radius, lat, lon float64) CartesianPoint {
	θ := Radians(Colatitude(lat))
	φ := Radians(Lon360(lon))
	return SphericalToCartesian(SphericalPoint{R: radius, Theta: θ, Phi: φ})
}

// CartesianToGeographic converts earth-centred cartesian coordinates to a
// radius, latitude and longitude. The returned longitude is in (-180,180].
//
// ErrDomain is returned when x, y and z are all zero.
func CartesianToGeographic(x, y, z float64) (GeoPoint, error) {
	s, err := CartesianToSpherical(CartesianPoint{X: x, Y: y, Z: z})
	if err != nil {
		return GeoPoint{}, err
	}
	return GeoPoint{
		Lat:    90 - Degrees(s.Theta),
		Lon:    Lon180(Degrees(s.Phi)),
		Radius: s.R,
	}, nil
}

// SphericalToCartesian converts spherical coordinates to cartesian.
func SphericalToCartesian(s SphericalPoint) CartesianPoint {
	sinθ, cosθ := math.Sincos(s.Theta)
	sinφ, cosφ := math.Sincos(s.Phi)
	return CartesianPoint{
		X: s.R * cosφ * sinθ,
		Y: s.R * sinφ * sinθ,
		Z: s.R * cosθ,
	}
}

// CartesianToSpherical converts cartesian coordinates to spherical. The
// origin has no polar angle and yields ErrDomain.
func CartesianToSpherical(c CartesianPoint) (SphericalPoint, error) {
	r := math.Sqrt(c.X*c.X + c.Y*c.Y + c.Z*c.Z)
	if r == 0 || math.IsNaN(r) {
		return SphericalPoint{}, ErrDomain
	}
	// z/r can drift just outside [-1,1] for points on the axis
	cosθ := math.Max(-1, math.Min(1, c.Z/r))
	return SphericalPoint{
		R:     r,
		Theta: math.Acos(cosθ),
		Phi:   math.Atan2(c.Y, c.X),
	}, nil
}
