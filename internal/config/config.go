package config

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"
	"strings"

	"github.com/quakepath/geodesic"
	"github.com/spf13/viper"
)

// Config holds the settings of the geodesic command.
type Config struct {
	Ellipsoid EllipsoidConfig `mapstructure:"ellipsoid"`
	Log       LogConfig       `mapstructure:"log"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Output    OutputConfig    `mapstructure:"output"`
}

// EllipsoidConfig selects the reference surface. Name is one of wgs84,
// international1924, sphere or custom. Axes are in kilometres.
type EllipsoidConfig struct {
	Name         string  `mapstructure:"name"`
	SemiMajor    float64 `mapstructure:"semiMajor"`
	SemiMinor    float64 `mapstructure:"semiMinor"`
	SphereRadius float64 `mapstructure:"sphereRadius"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// OutputConfig controls how results are rendered. CRS is the EPSG code of
// sampled points in table and json output. GeoJSON and WKT stay in lon/lat.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	CRS    int    `mapstructure:"crs"`
}

var (
	ellipsoidNames = []string{"wgs84", "international1924", "sphere", "custom"}
	logFormats     = []string{"console", "json"}
	outputFormats  = []string{"table", "json", "geojson", "wkt"}
	outputCRS      = []int{4326, 3857, 4978}
)

// New returns a viper instance with defaults and GEODESIC_ environment
// variables wired in. GEODESIC_ELLIPSOID_NAME maps to ellipsoid.name.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("ellipsoid.name", "wgs84")
	v.SetDefault("ellipsoid.semiMajor", geodesic.WGS84.SemiMajor())
	v.SetDefault("ellipsoid.semiMinor", geodesic.WGS84.SemiMinor())
	v.SetDefault("ellipsoid.sphereRadius", geodesic.Globe.SemiMajor())

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("batch.workers", runtime.NumCPU())

	v.SetDefault("output.format", "table")
	v.SetDefault("output.crs", 4326)

	v.SetEnvPrefix("GEODESIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file at path into v and decodes the
// result. With an empty path, geodesic.yaml is looked up in the working
// directory and ignored when missing.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("geodesic")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Ellipsoid.Name = strings.ToLower(cfg.Ellipsoid.Name)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	e := c.Ellipsoid
	switch e.Name {
	case "custom":
		if !positive(e.SemiMajor) || !positive(e.SemiMinor) {
			errs = append(errs, "ellipsoid.semiMajor and ellipsoid.semiMinor must be positive and finite")
		} else if e.SemiMinor > e.SemiMajor {
			errs = append(errs, fmt.Sprintf("ellipsoid.semiMinor %g exceeds ellipsoid.semiMajor %g", e.SemiMinor, e.SemiMajor))
		}
	case "sphere":
		if !positive(e.SphereRadius) {
			errs = append(errs, "ellipsoid.sphereRadius must be positive and finite")
		}
	default:
		if !slices.Contains(ellipsoidNames, e.Name) {
			errs = append(errs, fmt.Sprintf("ellipsoid.name must be one of %s, got %q",
				strings.Join(ellipsoidNames, ", "), e.Name))
		}
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Sprintf("log.format must be one of %s, got %q",
			strings.Join(logFormats, ", "), c.Log.Format))
	}
	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Sprintf("batch.workers must be at least 1, got %d", c.Batch.Workers))
	}
	if !slices.Contains(outputFormats, c.Output.Format) {
		errs = append(errs, fmt.Sprintf("output.format must be one of %s, got %q",
			strings.Join(outputFormats, ", "), c.Output.Format))
	}
	if !slices.Contains(outputCRS, c.Output.CRS) {
		errs = append(errs, fmt.Sprintf("output.crs must be one of 4326, 3857, 4978, got %d", c.Output.CRS))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ReferenceEllipsoid returns the configured reference surface. Call Validate
// first.
func (c *Config) ReferenceEllipsoid() geodesic.Ellipsoid {
	switch c.Ellipsoid.Name {
	case "international1924":
		return geodesic.International1924
	case "sphere":
		return geodesic.NewSpherical(c.Ellipsoid.SphereRadius)
	case "custom":
		return geodesic.NewEllipsoid(c.Ellipsoid.SemiMajor, c.Ellipsoid.SemiMinor)
	default:
		return geodesic.WGS84
	}
}
