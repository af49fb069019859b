// Package correction adapts the travel-time correction libraries to the
// geodesic core. The libraries themselves are external; this package owns
// the conversions they expect (colatitude and azimuth in radians, fixed-width
// phase codes) and the lifetime of the tomography model.
package correction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quakepath/geodesic"
)

// ErrPhaseNotFound is returned when the ellipticity table has no entry for a
// phase.
var ErrPhaseNotFound = errors.New("correction: phase is not in the phase list")

// phaseCodeWidth is the minimum length of a phase code accepted by the
// ellipticity tables.
const phaseCodeWidth = 8

// PhaseCode right-pads phase with spaces to the width the ellipticity tables
// expect. Longer codes are returned unchanged.
func PhaseCode(phase string) string {
	if len(phase) >= phaseCodeWidth {
		return phase
	}
	return phase + strings.Repeat(" ", phaseCodeWidth-len(phase))
}

// EllipticityTable looks up ellipticity corrections.
//
// colat is the source colatitude and azimuth the azimuth from the source,
// both in radians. delta is the epicentral distance in degrees and depth the
// source depth in kilometres. found is false when the phase is unknown.
type EllipticityTable interface {
	Correct(phase string, delta, depth, colat, azimuth float64) (tcor float64, found bool, err error)
}

// Ellipticity returns the ellipticity correction (s) for a source at srcLat
// (degrees) and srcDepth (km), for a ray leaving at azimuth (degrees) and
// arriving at epicentral distance delta (degrees).
func Ellipticity(table EllipticityTable, srcLat, srcDepth, azimuth, delta float64, phase string) (float64, error) {
	colat := geodesic.Radians(geodesic.Colatitude(srcLat))
	az := geodesic.Radians(azimuth)
	code := PhaseCode(phase)

	tcor, found, err := table.Correct(code, delta, srcDepth, colat, az)
	if err != nil {
		return 0, fmt.Errorf("ellipticity table: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrPhaseNotFound, strings.TrimSpace(code))
	}
	return tcor, nil
}

// EllipticitySourceStation computes the ellipticity correction between a
// source and a station, solving the inverse problem on e for the azimuth and
// the epicentral distance. If the inverse problem does not converge the
// correction for the last iterate is returned with an error matching
// geodesic.ErrNotConverged.
func EllipticitySourceStation(table EllipticityTable, e geodesic.Ellipsoid,
	srcLat, srcLon, srcDepth, staLat, staLon float64, phase string,
) (float64, error) {
	inv, solveErr := e.Inverse(srcLat, srcLon, staLat, staLon)
	tcor, err := Ellipticity(table, srcLat, srcDepth, inv.Azimuth1, inv.Arc, phase)
	if err != nil {
		return 0, err
	}
	if solveErr != nil {
		return tcor, fmt.Errorf("solve source-station geodesic: %w", solveErr)
	}
	return tcor, nil
}
