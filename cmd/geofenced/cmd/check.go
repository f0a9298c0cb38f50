package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/westpoint-robotics/ros-cot/internal/codec"
	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/tactical"
)

func newCheckCmd() *cobra.Command {
	var (
		mission       string
		lat, lon, alt float64
		at            string
		asJSON        bool
	)
	c := &cobra.Command{
		Use:   "check",
		Short: "Check one position against a mission file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := codec.LoadFile(mission)
			if err != nil {
				return err
			}
			pos, err := geodetic.NewCoordinate3D(lat, lon, alt)
			if err != nil {
				return err
			}
			t := time.Now().UTC()
			if at != "" {
				if t, err = codec.ParseTime(at); err != nil {
					return err
				}
			}

			v := sc.Verdict(pos, t)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(v)
			}
			printVerdict(cmd.OutOrStdout(), pos, t, v)
			return nil
		},
	}
	c.Flags().StringVar(&mission, "mission", "", "SpatialConstraints XML file")
	c.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees")
	c.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees")
	c.Flags().Float64Var(&alt, "alt", 0, "altitude in meters above the WGS84 ellipsoid")
	c.Flags().StringVar(&at, "time", "", "ISO-8601 evaluation time (default now)")
	c.Flags().BoolVar(&asJSON, "json", false, "print the verdict as JSON")
	c.MarkFlagRequired("mission")
	c.MarkFlagRequired("lat")
	c.MarkFlagRequired("lon")
	return c
}

func printVerdict(w io.Writer, pos geodetic.Coordinate3D, t time.Time, v tactical.Verdict) {
	status := "ALLOWED"
	if !v.Allowed {
		status = "DENIED"
	}
	fmt.Fprintf(w, "%s %s at %s\n", status, pos, codec.FormatTime(t))
	if len(v.UnsatisfiedInclusions) > 0 {
		fmt.Fprintf(w, "  outside inclusions: %s\n", strings.Join(v.UnsatisfiedInclusions, ", "))
	}
	if len(v.ViolatedExclusions) > 0 {
		fmt.Fprintf(w, "  inside exclusions: %s\n", strings.Join(v.ViolatedExclusions, ", "))
	}
	for _, hit := range v.Warnings {
		if hit.Secondary == tactical.WarningNone {
			fmt.Fprintf(w, "  warning %s: %s\n", hit.ID, hit.Primary)
			continue
		}
		fmt.Fprintf(w, "  warning %s: %s / %s\n", hit.ID, hit.Primary, hit.Secondary)
	}
}
