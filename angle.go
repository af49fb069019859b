package geodesic

import "math"

const radians = math.Pi / 180
const degrees = 180 / math.Pi

// Radians converts an angle from degrees to radians.
func Radians(deg float64) float64 {
	return deg * radians
}

// Degrees converts an angle from radians to degrees.
func Degrees(rad float64) float64 {
	return rad * degrees
}

// DMSToDecimal converts an angle given as degrees, minutes and seconds to
// decimal degrees.
//
// The components are summed as given. A southern or western angle must carry
// the sign on every component, e.g. DMSToDecimal(-33, -26, 0); passing
// DMSToDecimal(-33, 26, 0) silently yields -32.5666... and is not detected.
func DMSToDecimal(deg, min, sec float64) float64 {
	return deg + min/60 + sec/3600
}

// Colatitude returns the angle from the north pole (degrees).
func Colatitude(lat float64) float64 {
	return 90 - lat
}

// Lon360 maps a signed longitude east of Greenwich into the [0,360) form used
// before any trigonometry. Negative values are degrees west.
func Lon360(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	return lon
}

// Lon180 wraps a longitude or azimuth into (-180,180]. Every longitude and
// azimuth returned by this package passes through it.
func Lon180(degs float64) float64 {
	if degs <= -180 || degs > 180 {
		degs = math.Mod(degs, 360)
		if degs <= -180 {
			degs += 360
		} else if degs > 180 {
			degs -= 360
		}
	}
	return degs
}
