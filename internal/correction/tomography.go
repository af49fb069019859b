package correction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/quakepath/geodesic"
	"github.com/quakepath/geodesic/internal/raypath"
)

var (
	// ErrClosed is returned by a Tomography after Close.
	ErrClosed = errors.New("correction: tomography model is closed")
	// ErrAlreadySetup is returned by backends that hold process-wide state
	// and have been set up before.
	ErrAlreadySetup = errors.New("correction: tomography backend is already set up")
)

// TomographyBackend is a 3-D velocity model that integrates travel-time
// delays along a path. Implementations wrapping native code usually allow a
// single live setup per process and are not safe for concurrent use.
type TomographyBackend interface {
	Setup(model1D, model3D string) error
	// Delay returns the travel-time anomaly (s) along the path described
	// by matching latitude, longitude (degrees) and depth (km) samples.
	Delay(lat, lon, depth []float64) (float64, error)
	Close() error
}

// Delay is the tomographic correction of one arrival.
type Delay struct {
	Phase   string
	Seconds float64
}

// Tomography is the handle to a set-up velocity model. It owns its backend:
// the backend must not be used directly or handed to another Tomography
// once OpenTomography succeeds.
type Tomography struct {
	mu      sync.Mutex
	backend TomographyBackend
	paths   *raypath.Decorator
}

// OpenTomography sets up backend with the 1-D and 3-D model files and
// returns the handle that owns it. paths traces the rays the delays are
// integrated along.
func OpenTomography(backend TomographyBackend, model1D, model3D string, paths *raypath.Decorator) (*Tomography, error) {
	if backend == nil {
		return nil, errors.New("correction: nil tomography backend")
	}
	if paths == nil {
		return nil, raypath.ErrNoModel
	}
	if err := backend.Setup(model1D, model3D); err != nil {
		return nil, fmt.Errorf("setup tomography model: %w", err)
	}
	return &Tomography{backend: backend, paths: paths}, nil
}

// Calculate returns the delay of every arrival of phases between src and
// sta, in the order the travel-time model reports them. Delays along paths
// placed on a non-converged geodesic are returned with an error matching
// geodesic.ErrNotConverged.
func (t *Tomography) Calculate(ctx context.Context, src raypath.Source, sta raypath.Station, phases []string) ([]Delay, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.backend == nil {
		return nil, ErrClosed
	}

	arrivals, pathErr := t.paths.RayPathsGeo(ctx, src, sta, phases)
	if pathErr != nil && !errors.Is(pathErr, geodesic.ErrNotConverged) {
		return nil, pathErr
	}

	delays := make([]Delay, 0, len(arrivals))
	for _, a := range arrivals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lat := make([]float64, len(a.Path))
		lon := make([]float64, len(a.Path))
		depth := make([]float64, len(a.Path))
		for i, s := range a.Path {
			lat[i], lon[i], depth[i] = s.Lat, s.Lon, s.Depth
		}
		dt, err := t.backend.Delay(lat, lon, depth)
		if err != nil {
			return nil, fmt.Errorf("tomography delay for %s: %w", a.Phase, err)
		}
		delays = append(delays, Delay{Phase: a.Phase, Seconds: dt})
	}
	return delays, pathErr
}

// Close releases the backend. Further calls to Calculate return ErrClosed;
// closing twice is a no-op.
func (t *Tomography) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.backend == nil {
		return nil
	}
	err := t.backend.Close()
	t.backend = nil
	return err
}
