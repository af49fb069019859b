package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/quakepath/geodesic"
	"github.com/quakepath/geodesic/internal/batch"
	"github.com/quakepath/geodesic/internal/catalog"
	"github.com/quakepath/geodesic/internal/export"
	"github.com/spf13/cobra"
)

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, s := range args {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Options.SeparateColumns = true
	style.Options.DrawBorder = true
	t.SetStyle(style)
	t.AppendHeader(table.Row(header))
	return t
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type inverseJSON struct {
	Distance           float64 `json:"distance"`
	GreatCircle        float64 `json:"greatCircle"`
	GreatCircleAzimuth float64 `json:"greatCircleAzimuth"`
	Azimuth1           float64 `json:"azimuth1"`
	Azimuth2           float64 `json:"azimuth2"`
	BackAzimuth        float64 `json:"backAzimuth"`
	Arc                float64 `json:"arc"`
	Iterations         int     `json:"iterations"`
	Converged          bool    `json:"converged"`
}

func (a *app) doInverse(cmd *cobra.Command, args []string) error {
	v, err := parseFloats(args)
	if err != nil {
		return err
	}
	r, solveErr := a.ellipsoid.Inverse(v[0], v[1], v[2], v[3])
	gc := geodesic.GreatCircleDistance(meanRadius(a.ellipsoid), v[0], v[1], v[2], v[3])
	gcAzi := geodesic.InitialBearing(v[0], v[1], v[2], v[3])
	if solveErr != nil && !errors.Is(solveErr, geodesic.ErrNotConverged) {
		return solveErr
	}
	if solveErr != nil {
		a.log.Warn().Err(solveErr).Msg("reporting last iterate")
	}

	out := cmd.OutOrStdout()
	switch a.cfg.Output.Format {
	case "json":
		err = writeJSON(out, inverseJSON{
			Distance:    r.Distance,
			GreatCircle: gc,
			Azimuth1:    r.Azimuth1,
			Azimuth2:    r.Azimuth2,
			BackAzimuth: r.BackAzimuth(),
			Arc:         r.Arc,
			Iterations:  r.Iterations,
			Converged:   solveErr == nil,
		})
	case "geojson", "wkt":
		n, _ := cmd.Flags().GetInt("samples")
		err = a.writeLine(cmd, a.ellipsoid.Line(v[0], v[1], r.Azimuth1), r.Distance, n)
	default:
		t := newTable(out, "DISTANCE (km)", "GREAT CIRCLE (km)", "GC AZIMUTH", "AZIMUTH1", "AZIMUTH2", "BACK AZIMUTH", "ARC", "ITERATIONS")
		t.AppendRow(table.Row{
			fmt.Sprintf("%.6f", r.Distance),
			fmt.Sprintf("%.6f", gc),
			fmt.Sprintf("%.8f", gcAzi),
			fmt.Sprintf("%.8f", r.Azimuth1),
			fmt.Sprintf("%.8f", r.Azimuth2),
			fmt.Sprintf("%.8f", r.BackAzimuth()),
			fmt.Sprintf("%.8f", r.Arc),
			r.Iterations,
		})
		t.Render()
	}
	if err != nil {
		return err
	}
	return solveErr
}

// meanRadius is the IUGG mean radius (2a+b)/3.
func meanRadius(e geodesic.Ellipsoid) float64 {
	return (2*e.SemiMajor() + e.SemiMinor()) / 3
}

type directJSON struct {
	Lat2           float64 `json:"lat2"`
	Lon2           float64 `json:"lon2"`
	Azimuth2       float64 `json:"azimuth2"`
	Arc            float64 `json:"arc"`
	Iterations     int     `json:"iterations"`
	GreatCircleLat float64 `json:"greatCircleLat"`
	GreatCircleLon float64 `json:"greatCircleLon"`
}

func (a *app) doDirect(cmd *cobra.Command, args []string) error {
	v, err := parseFloats(args)
	if err != nil {
		return err
	}
	l := a.ellipsoid.Line(v[0], v[1], v[2])
	r, err := l.Position(v[3])
	if err != nil {
		return err
	}

	// Same start, azimuth and distance on the mean sphere.
	gcLat, gcLon := geodesic.Destination(meanRadius(a.ellipsoid), v[0], v[1], v[3], v[2])

	out := cmd.OutOrStdout()
	switch a.cfg.Output.Format {
	case "json":
		return writeJSON(out, directJSON{r.Lat2, r.Lon2, r.Azimuth2, r.Arc, r.Iterations, gcLat, gcLon})
	case "geojson", "wkt":
		n, _ := cmd.Flags().GetInt("samples")
		return a.writeLine(cmd, l, v[3], n)
	}
	t := newTable(out, "LAT2", "LON2", "AZIMUTH2", "ARC", "ITERATIONS", "GC LAT2", "GC LON2")
	t.AppendRow(table.Row{
		fmt.Sprintf("%.8f", r.Lat2),
		fmt.Sprintf("%.8f", r.Lon2),
		fmt.Sprintf("%.8f", r.Azimuth2),
		fmt.Sprintf("%.8f", r.Arc),
		r.Iterations,
		fmt.Sprintf("%.8f", gcLat),
		fmt.Sprintf("%.8f", gcLon),
	})
	t.Render()
	return nil
}

func (a *app) doLine(cmd *cobra.Command, args []string) error {
	v, err := parseFloats(args)
	if err != nil {
		return err
	}
	n, err := cmd.Flags().GetInt("samples")
	if err != nil {
		return err
	}
	return a.writeLine(cmd, a.ellipsoid.Line(v[0], v[1], v[2]), v[3], n)
}

type pointJSON struct {
	Distance float64 `json:"distance"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
}

// writeLine samples n intervals of l and renders them in the configured
// output format.
func (a *app) writeLine(cmd *cobra.Command, l geodesic.Line, distance float64, n int) error {
	samples, err := export.SampleLine(l, distance, n)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch a.cfg.Output.Format {
	case "geojson":
		data, err := export.LineGeoJSON(samples)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "wkt":
		wkt, err := export.LineWKT(samples)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, wkt)
		return err
	}

	coords, err := export.Reproject(export.SurfacePoints(samples), a.cfg.Output.CRS)
	if err != nil {
		return err
	}
	if a.cfg.Output.Format == "json" {
		pts := make([]pointJSON, len(coords))
		for i, c := range coords {
			pts[i] = pointJSON{samples[i].Distance, c.X, c.Y, c.Z}
		}
		return writeJSON(out, pts)
	}

	header := []any{"DISTANCE (km)", "LON", "LAT", "AZIMUTH"}
	if a.cfg.Output.CRS != export.EPSGLonLat {
		header = []any{"DISTANCE (km)", "X", "Y", "Z", "AZIMUTH"}
	}
	t := newTable(out, header...)
	for i, c := range coords {
		row := table.Row{fmt.Sprintf("%.6f", samples[i].Distance), fmt.Sprintf("%.8f", c.X), fmt.Sprintf("%.8f", c.Y)}
		if a.cfg.Output.CRS != export.EPSGLonLat {
			row = append(row, fmt.Sprintf("%.3f", c.Z))
		}
		row = append(row, fmt.Sprintf("%.8f", samples[i].Azimuth2))
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

func (a *app) doGeog2Cart(cmd *cobra.Command, args []string) error {
	v, err := parseFloats(args)
	if err != nil {
		return err
	}
	c := geodesic.GeographicToCartesian(v[0], v[1], v[2])
	if a.cfg.Output.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]float64{"x": c.X, "y": c.Y, "z": c.Z})
	}
	t := newTable(cmd.OutOrStdout(), "X", "Y", "Z")
	t.AppendRow(table.Row{fmt.Sprintf("%.6f", c.X), fmt.Sprintf("%.6f", c.Y), fmt.Sprintf("%.6f", c.Z)})
	t.Render()
	return nil
}

func (a *app) doCart2Geog(cmd *cobra.Command, args []string) error {
	v, err := parseFloats(args)
	if err != nil {
		return err
	}
	p, err := geodesic.CartesianToGeographic(v[0], v[1], v[2])
	if err != nil {
		return err
	}
	if a.cfg.Output.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]float64{"radius": p.Radius, "lat": p.Lat, "lon": p.Lon})
	}
	t := newTable(cmd.OutOrStdout(), "RADIUS", "LAT", "LON")
	t.AppendRow(table.Row{fmt.Sprintf("%.6f", p.Radius), fmt.Sprintf("%.8f", p.Lat), fmt.Sprintf("%.8f", p.Lon)})
	t.Render()
	return nil
}

func (a *app) doDMS(cmd *cobra.Command, args []string) error {
	v, err := parseFloats(args)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%.8f\n", geodesic.DMSToDecimal(v[0], v[1], v[2]))
	return err
}

type pickJSON struct {
	EventID      string   `json:"eventId"`
	Station      string   `json:"station"`
	Reporter     string   `json:"reporter"`
	Distance     float64  `json:"distance"`
	Arc          float64  `json:"arc"`
	BackAzimuth  float64  `json:"backAzimuth"`
	Computed     float64  `json:"computedBackAzimuth"`
	Differential *float64 `json:"differential,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func (a *app) doPicks(cmd *cobra.Command, args []string) error {
	phases, err := cmd.Flags().GetStringArray("phase")
	if err != nil {
		return err
	}
	if len(phases) == 0 || len(phases) > 2 {
		return fmt.Errorf("give one or two phases, got %d", len(phases))
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	picks, err := catalog.ReadPicks(f, phases)
	if err != nil {
		return err
	}

	var rows []catalog.Pair
	if len(phases) == 2 {
		rows = catalog.PairPicks(picks, phases[0], phases[1])
	} else {
		for _, p := range picks[phases[0]] {
			rows = append(rows, catalog.Pair{Pick: p, Phase1Time: p.PickTime})
		}
		slices.SortFunc(rows, func(x, y catalog.Pair) int {
			return strings.Compare(x.Key(), y.Key())
		})
	}
	a.log.Info().Str("file", args[0]).Strs("phases", phases).Int("rows", len(rows)).Msg("read picks")

	pairs := make([]batch.Pair, len(rows))
	for i, r := range rows {
		pairs[i] = batch.Pair{
			ID:   r.Key(),
			Lat1: r.EventLat, Lon1: r.EventLon,
			Lat2: r.StationLat, Lon2: r.StationLon,
		}
	}
	runner := batch.NewRunner(a.ellipsoid, a.cfg.Batch.Workers)
	runner.Logger = a.log
	outcomes, err := runner.Inverse(cmd.Context(), pairs)
	if err != nil {
		return err
	}

	if a.cfg.Output.Format == "json" {
		res := make([]pickJSON, len(rows))
		for i, r := range rows {
			o := outcomes[i]
			res[i] = pickJSON{
				EventID:     r.EventID,
				Station:     r.Station,
				Reporter:    r.Reporter,
				Distance:    r.Distance,
				Arc:         o.Result.Arc,
				BackAzimuth: r.BackAzimuth,
				Computed:    geodesic.Lon360(o.Result.BackAzimuth()),
			}
			if len(phases) == 2 {
				d := r.Differential().Seconds()
				res[i].Differential = &d
			}
			if o.Err != nil {
				res[i].Error = o.Err.Error()
			}
		}
		return writeJSON(cmd.OutOrStdout(), res)
	}

	header := []any{"EVENT", "STATION", "REPORTER", "DELTA", "ARC", "BAZ", "COMPUTED BAZ"}
	if len(phases) == 2 {
		header = append(header, phases[1]+"-"+phases[0]+" (s)")
	}
	t := newTable(cmd.OutOrStdout(), header...)
	for i, r := range rows {
		o := outcomes[i]
		arc := fmt.Sprintf("%.4f", o.Result.Arc)
		if o.Err != nil {
			arc += " *"
		}
		row := table.Row{
			r.EventID, r.Station, r.Reporter,
			fmt.Sprintf("%.4f", r.Distance),
			arc,
			fmt.Sprintf("%.2f", r.BackAzimuth),
			fmt.Sprintf("%.2f", geodesic.Lon360(o.Result.BackAzimuth())),
		}
		if len(phases) == 2 {
			row = append(row, fmt.Sprintf("%.2f", r.Differential().Seconds()))
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}
