package geodesic

import "math"

// Line is a geodesic leaving a fixed point at a fixed azimuth. The series
// coefficients that depend only on the start are computed once, so stepping
// along the line is cheaper than repeated calls to Direct.
type Line struct {
	e          Ellipsoid
	lat1, lon1 float64
	azi1       float64

	sinα1, cosα1 float64
	sinU1, cosU1 float64
	σ1           float64
	sinα, cos2α  float64
	A, B, C      float64
}

// Line returns the geodesic starting at (lat1, lon1) with azimuth azi1
// (degrees).
func (e Ellipsoid) Line(lat1, lon1, azi1 float64) Line {
	l := Line{e: e, lat1: lat1, lon1: lon1, azi1: azi1}
	l.sinα1, l.cosα1 = math.Sincos(azi1 * radians)
	l.sinU1, l.cosU1 = e.reducedLatitude(lat1)
	l.σ1 = math.Atan2(l.sinU1/l.cosU1, l.cosα1)
	l.sinα = l.cosU1 * l.sinα1
	l.cos2α = 1 - l.sinα*l.sinα
	l.A, l.B = e.series(l.cos2α)
	l.C = e.correction(l.cos2α)
	return l
}

// Ellipsoid returns the ellipsoid the line lies on.
func (l Line) Ellipsoid() Ellipsoid {
	return l.e
}

// Origin returns the start point and azimuth (degrees).
func (l Line) Origin() (lat1, lon1, azi1 float64) {
	return l.lat1, l.lon1, l.azi1
}

// Position returns the point at distance s12 along the line, in the unit of
// the ellipsoid axes. A negative distance walks the line backwards.
func (l Line) Position(s12 float64) (DirectResult, error) {
	σ0 := s12 / (l.e.b * l.A)
	σ := σ0
	var δ float64
	i := 0
	converged := false
	for i < MaxIterations {
		i++
		sinσ, cosσ := math.Sincos(σ)
		cos2σm := math.Cos(2*l.σ1 + σ)
		prev := σ
		σ = σ0 + deltaSigma(l.B, sinσ, cosσ, cos2σm)
		δ = math.Abs(σ - prev)
		if δ <= Tolerance {
			converged = true
			break
		}
	}
	res := l.at(σ)
	res.Distance = s12
	res.Iterations = i
	if !converged {
		return res, &ConvergenceError{Op: "direct", Iterations: i, Delta: δ}
	}
	return res, nil
}

// ArcPosition returns the point at arc length arc (degrees) on the auxiliary
// sphere. No iteration is needed, which makes it the cheap way to place
// samples given as epicentral angles. The distance along the line is
// reported in the result.
func (l Line) ArcPosition(arc float64) DirectResult {
	σ := arc * radians
	res := l.at(σ)
	sinσ, cosσ := math.Sincos(σ)
	cos2σm := math.Cos(2*l.σ1 + σ)
	res.Distance = l.e.b * l.A * (σ - deltaSigma(l.B, sinσ, cosσ, cos2σm))
	return res
}

func (l Line) at(σ float64) DirectResult {
	f := l.e.f
	sinσ, cosσ := math.Sincos(σ)
	cos2σm := math.Cos(2*l.σ1 + σ)
	x := l.sinU1*sinσ - l.cosU1*cosσ*l.cosα1
	φ2 := math.Atan2(l.sinU1*cosσ+l.cosU1*sinσ*l.cosα1,
		(1-f)*math.Hypot(l.sinα, x))
	λ := math.Atan2(sinσ*l.sinα1, l.cosU1*cosσ-l.sinU1*sinσ*l.cosα1)
	L := λ - (1-l.C)*f*l.sinα*(σ+l.C*sinσ*(cos2σm+l.C*cosσ*(-1+2*cos2σm*cos2σm)))
	α2 := math.Atan2(l.sinα, -x)
	return DirectResult{
		Lat2:     φ2 * degrees,
		Lon2:     Lon180(l.lon1 + L*degrees),
		Azimuth2: Lon180(α2 * degrees),
		Arc:      σ * degrees,
	}
}
