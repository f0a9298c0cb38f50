package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/vector"
)

func newConvertCmd() *cobra.Command {
	var (
		lat, lon, alt                   float64
		originLat, originLon, originAlt float64
		reverse                         bool
	)
	c := &cobra.Command{
		Use:   "convert",
		Short: "Convert between geodetic, ECEF and local ENU coordinates",
		Long: `convert prints the ECEF and ENU coordinates of a geodetic position
relative to the given origin. With --reverse, --lat/--lon/--alt are read as
east/north/up meters and the geodetic position is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			originCoord, err := geodetic.NewCoordinate3D(originLat, originLon, originAlt)
			if err != nil {
				return fmt.Errorf("invalid origin: %w", err)
			}
			o, err := geodetic.NewOrigin(originCoord)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if reverse {
				g := o.ENUToGeodetic(vector.Point3D{X: lat, Y: lon, Z: alt})
				fmt.Fprintf(out, "geodetic: lat=%.9f lon=%.9f alt=%.3f\n",
					g.Latitude.Degrees(), g.Longitude.Degrees(), g.AltitudeMeters())
				return nil
			}

			pos, err := geodetic.NewCoordinate3D(lat, lon, alt)
			if err != nil {
				return err
			}
			ecef, err := geodetic.GeodeticToECEF(pos)
			if err != nil {
				return err
			}
			enu := o.GeodeticToENU(pos)
			fmt.Fprintf(out, "ecef: x=%.3f y=%.3f z=%.3f\n", ecef.X, ecef.Y, ecef.Z)
			fmt.Fprintf(out, "enu: east=%.3f north=%.3f up=%.3f\n", enu.X, enu.Y, enu.Z)
			return nil
		},
	}
	c.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees (east meters with --reverse)")
	c.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees (north meters with --reverse)")
	c.Flags().Float64Var(&alt, "alt", 0, "altitude in meters (up meters with --reverse)")
	c.Flags().Float64Var(&originLat, "origin-lat", 0, "origin latitude in degrees")
	c.Flags().Float64Var(&originLon, "origin-lon", 0, "origin longitude in degrees")
	c.Flags().Float64Var(&originAlt, "origin-alt", 0, "origin altitude in meters")
	c.Flags().BoolVar(&reverse, "reverse", false, "convert ENU to geodetic")
	return c
}
