package geodesic

import (
	"fmt"
	"math"
)

// WGS84 conforming ellipsoid with axes in kilometres.
// https://en.wikipedia.org/wiki/World_Geodetic_System
var WGS84 = NewEllipsoid(6378.1370, 6356.752314)

// International1924 is the Hayford ellipsoid (kilometres) used for the worked
// examples in Vincenty's 1975 paper.
var International1924 = NewEllipsoid(6378.388, 6356.911946)

// Globe is a sphere with the mean radius of the Earth (kilometres).
var Globe = NewSpherical(6371.0)

// Ellipsoid is an oblate ellipsoid of revolution. It is a small immutable
// value and is meant to be passed by value to every computation that needs
// it.
type Ellipsoid struct {
	a, b, f   float64
	spherical bool
}

// NewEllipsoid returns the ellipsoid with semi-major axis a and semi-minor
// axis b. The unit of the axes is the unit of every distance computed on it.
//
// It panics if either axis is not a finite positive number or if b > a.
func NewEllipsoid(a, b float64) Ellipsoid {
	if !(a > 0) || math.IsInf(a, 0) {
		panic(fmt.Sprintf("geodesic: semi-major axis %v is not positive", a))
	}
	if !(b > 0) || math.IsInf(b, 0) {
		panic(fmt.Sprintf("geodesic: semi-minor axis %v is not positive", b))
	}
	if b > a {
		panic(fmt.Sprintf("geodesic: semi-minor axis %v exceeds semi-major axis %v", b, a))
	}
	return Ellipsoid{a: a, b: b, f: (a - b) / a, spherical: a == b}
}

// NewSpherical returns a sphere of the given radius. Flattening is forced to
// zero, so every ellipsoidal correction term vanishes.
func NewSpherical(radius float64) Ellipsoid {
	e := NewEllipsoid(radius, radius)
	e.f = 0
	return e
}

// SemiMajor returns the equatorial radius.
func (e Ellipsoid) SemiMajor() float64 {
	return e.a
}

// SemiMinor returns the polar radius.
func (e Ellipsoid) SemiMinor() float64 {
	return e.b
}

// Flattening returns (a-b)/a.
func (e Ellipsoid) Flattening() float64 {
	return e.f
}

// Spherical reports whether both axes are equal.
func (e Ellipsoid) Spherical() bool {
	return e.spherical
}

func (e Ellipsoid) String() string {
	if e.spherical {
		return fmt.Sprintf("sphere(r=%g)", e.a)
	}
	return fmt.Sprintf("ellipsoid(a=%g, b=%g, 1/f=%.6f)", e.a, e.b, 1/e.f)
}

// reducedLatitude returns sin and cos of atan((1-f)·tan(lat)).
func (e Ellipsoid) reducedLatitude(lat float64) (sinU, cosU float64) {
	tanU := (1 - e.f) * math.Tan(lat*radians)
	cosU = 1 / math.Sqrt(1+tanU*tanU)
	sinU = tanU * cosU
	return sinU, cosU
}

// series returns Vincenty's A and B coefficients for the given cos²α.
func (e Ellipsoid) series(cos2α float64) (A, B float64) {
	u2 := cos2α * (e.a*e.a - e.b*e.b) / (e.b * e.b)
	A = 1 + u2/16384*(4096+u2*(-768+u2*(320-175*u2)))
	B = u2 / 1024 * (256 + u2*(-128+u2*(74-47*u2)))
	return A, B
}

// correction returns Vincenty's C term.
func (e Ellipsoid) correction(cos2α float64) float64 {
	return e.f / 16 * cos2α * (4 + e.f*(4-3*cos2α))
}
