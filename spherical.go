package geodesic

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Great circles on a sphere, computed with unit vectors from the centre.

// unit returns the unit vector towards (lat, lon) with the east and north
// unit vectors of the local tangent plane.
func unit(lat, lon float64) (p, east, north r3.Vec) {
	sφ, cφ := math.Sincos(lat * radians)
	sλ, cλ := math.Sincos(lon * radians)
	p = r3.Vec{X: cφ * cλ, Y: cφ * sλ, Z: sφ}
	east = r3.Vec{X: -sλ, Y: cλ}
	north = r3.Vec{X: -sφ * cλ, Y: -sφ * sλ, Z: cφ}
	return p, east, north
}

// GreatCircleDistance returns the great-circle distance between two points on
// a sphere of the given radius, in the unit of the radius. The central angle
// is taken from atan2 of the cross and dot products, which stays accurate
// for both tiny and nearly antipodal separations.
func GreatCircleDistance(radius, lat1, lon1, lat2, lon2 float64) float64 {
	a, _, _ := unit(lat1, lon1)
	b, _, _ := unit(lat2, lon2)
	return radius * math.Atan2(r3.Norm(r3.Cross(a, b)), r3.Dot(a, b))
}

// InitialBearing returns the great-circle azimuth at point 1 towards point 2
// (degrees clockwise from north, in (-180,180]). Coincident points give 0.
func InitialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	_, east, north := unit(lat1, lon1)
	b, _, _ := unit(lat2, lon2)
	return Lon180(math.Atan2(r3.Dot(b, east), r3.Dot(b, north)) * degrees)
}

// FinalBearing returns the great-circle azimuth on arrival at point 2.
func FinalBearing(lat1, lon1, lat2, lon2 float64) float64 {
	return Lon180(InitialBearing(lat2, lon2, lat1, lon1) + 180)
}

// Destination returns the point reached by travelling distance along a great
// circle from (lat1, lon1) with the given initial bearing (degrees).
func Destination(radius, lat1, lon1, distance, bearing float64) (lat2, lon2 float64) {
	a, east, north := unit(lat1, lon1)
	sθ, cθ := math.Sincos(bearing * radians)
	sδ, cδ := math.Sincos(distance / radius)

	dir := r3.Add(r3.Scale(cθ, north), r3.Scale(sθ, east))
	p := r3.Add(r3.Scale(cδ, a), r3.Scale(sδ, dir))
	lat2 = math.Atan2(p.Z, math.Hypot(p.X, p.Y)) * degrees
	lon2 = Lon180(math.Atan2(p.Y, p.X) * degrees)
	return lat2, lon2
}
