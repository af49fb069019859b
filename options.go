package geodesic

// Option selects the reference surface for VincentyInverse and VincentyDirect.
type Option func(*options)

type options struct {
	major, minor float64
	sphere       float64
}

// WithAxes selects an ellipsoid by its semi-major and semi-minor axes.
func WithAxes(major, minor float64) Option {
	return func(o *options) {
		o.major, o.minor = major, minor
	}
}

// WithSphere ignores polar flattening and uses a sphere of the given radius.
// It overrides WithAxes regardless of order.
func WithSphere(radius float64) Option {
	return func(o *options) {
		o.sphere = radius
	}
}

func resolve(opts []Option) Ellipsoid {
	o := options{major: WGS84.a, minor: WGS84.b}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sphere != 0 {
		return NewSpherical(o.sphere)
	}
	return NewEllipsoid(o.major, o.minor)
}

// VincentyInverse returns the distance and the azimuths at both ends of the
// geodesic between two points. Without options the WGS84 ellipsoid in
// kilometres is used.
//
// az2 is the forward azimuth at point 2. A non-nil error wrapping
// ErrNotConverged accompanies approximate results.
func VincentyInverse(lat1, lon1, lat2, lon2 float64, opts ...Option) (distance, az1, az2 float64, err error) {
	r, err := resolve(opts).Inverse(lat1, lon1, lat2, lon2)
	return r.Distance, r.Azimuth1, r.Azimuth2, err
}

// VincentyDirect returns the point reached from (lat1, lon1) along the
// geodesic with the given azimuth after the given distance. Without options
// the WGS84 ellipsoid in kilometres is used.
func VincentyDirect(lat1, lon1, azimuth, distance float64, opts ...Option) (lat2, lon2 float64, err error) {
	r, err := resolve(opts).Direct(lat1, lon1, azimuth, distance)
	return r.Lat2, r.Lon2, err
}
