package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/quakepath/geodesic"
	"github.com/quakepath/geodesic/internal/config"
	"github.com/quakepath/geodesic/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cobra.CheckErr(NewCmd().ExecuteContext(ctx))
}

type app struct {
	v         *viper.Viper
	cfg       *config.Config
	log       zerolog.Logger
	ellipsoid geodesic.Ellipsoid
}

func NewCmd() *cobra.Command {
	cobra.EnableCommandSorting = false
	a := &app{v: config.New(), log: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:           "geodesic [command] [flags] [args]",
		Short:         "geodesic solves distance and azimuth problems on the ellipsoid",
		Long:          "Angles are in decimal degrees and distances in kilometres.\nPut -- before negative positional values.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: a.setup,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(cmd.UsageString())
		},
	}
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "`<path>` to a yaml or json config file")
	pf.StringP("ellipsoid", "e", "wgs84", "`<name>` wgs84, international1924, sphere or custom")
	pf.Float64("sphere", 0, "use a sphere of this `<radius>` in km")
	pf.String("log-level", "info", "`<level>` debug, info, warn or error")
	pf.StringP("format", "f", "table", "`<format>` table, json, geojson or wkt")
	pf.Int("crs", 4326, "`<epsg>` code of sampled points: 4326, 3857 or 4978")

	inverseCmd := &cobra.Command{
		Use:   "inverse [flags] <lat1> <lon1> <lat2> <lon2>",
		Short: "Distance and azimuths between two points",
		Args:  cobra.ExactArgs(4),
		RunE:  a.doInverse,
	}
	inverseCmd.Flags().IntP("samples", "n", 64, "`<count>` of intervals for geojson and wkt output")

	directCmd := &cobra.Command{
		Use:   "direct [flags] <lat> <lon> <azimuth> <distance>",
		Short: "End point of a geodesic from a start point, azimuth and distance",
		Args:  cobra.ExactArgs(4),
		RunE:  a.doDirect,
	}
	directCmd.Flags().IntP("samples", "n", 64, "`<count>` of intervals for geojson and wkt output")

	lineCmd := &cobra.Command{
		Use:   "line [flags] <lat> <lon> <azimuth> <distance>",
		Short: "Evenly spaced points along a geodesic",
		Args:  cobra.ExactArgs(4),
		RunE:  a.doLine,
	}
	lineCmd.Flags().IntP("samples", "n", 10, "`<count>` of intervals")

	geog2cartCmd := &cobra.Command{
		Use:   "geog2cart <radius> <lat> <lon>",
		Short: "Geographic to earth-centred cartesian coordinates",
		Args:  cobra.ExactArgs(3),
		RunE:  a.doGeog2Cart,
	}

	cart2geogCmd := &cobra.Command{
		Use:   "cart2geog <x> <y> <z>",
		Short: "Earth-centred cartesian to geographic coordinates",
		Args:  cobra.ExactArgs(3),
		RunE:  a.doCart2Geog,
	}

	dmsCmd := &cobra.Command{
		Use:   "dms <degrees> <minutes> <seconds>",
		Short: "Degrees, minutes and seconds to decimal degrees",
		Args:  cobra.ExactArgs(3),
		RunE:  a.doDMS,
	}

	picksCmd := &cobra.Command{
		Use:   "picks [flags] <ISC csv file>",
		Short: "Compare catalog distances and back azimuths with the geodesic solution",
		Args:  cobra.ExactArgs(1),
		RunE:  a.doPicks,
	}
	picksCmd.Flags().StringArrayP("phase", "p", []string{"P"}, "`<phase>` to read; two phases are paired")

	rootCmd.AddCommand(
		inverseCmd,
		directCmd,
		lineCmd,
		geog2cartCmd,
		cart2geogCmd,
		dmsCmd,
		picksCmd,
	)
	return rootCmd
}

// flagBindings maps config keys to the persistent flags that override them.
var flagBindings = []struct{ key, flag string }{
	{"ellipsoid.name", "ellipsoid"},
	{"ellipsoid.sphereRadius", "sphere"},
	{"log.level", "log-level"},
	{"output.format", "format"},
	{"output.crs", "crs"},
}

func (a *app) bindFlags(cmd *cobra.Command) error {
	for _, b := range flagBindings {
		if err := a.v.BindPFlag(b.key, cmd.Flags().Lookup(b.flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", b.flag, err)
		}
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := a.bindFlags(cmd); err != nil {
		return err
	}
	if cmd.Flags().Changed("sphere") {
		a.v.Set("ellipsoid.name", "sphere")
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(a.v, path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	a.ellipsoid = cfg.ReferenceEllipsoid()
	a.log.Debug().
		Stringer("ellipsoid", a.ellipsoid).
		Str("format", cfg.Output.Format).
		Msg("configured")
	return nil
}
