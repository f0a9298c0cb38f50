package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/westpoint-robotics/ros-cot/internal/codec"
	"github.com/westpoint-robotics/ros-cot/internal/config"
)

func newValidateCmd() *cobra.Command {
	var mission, configFile string
	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate a mission file, a configuration file, or both",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mission == "" && configFile == "" {
				return errors.New("nothing to validate: pass --mission or --config")
			}
			out := cmd.OutOrStdout()

			if configFile != "" {
				cfg, err := config.Load(configFile)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "config %s: ok\n", configFile)
				if mission == "" {
					mission = cfg.Mission.File
				}
			}
			if mission == "" {
				return nil
			}

			sc, err := codec.LoadFile(mission)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "mission %s: ok (%d inclusion, %d exclusion, %d warning areas; %d indexed segments)\n",
				mission, len(sc.Inclusions()), len(sc.Exclusions()), len(sc.WarningAreas()), sc.Index().Size())
			return nil
		},
	}
	c.Flags().StringVar(&mission, "mission", "", "SpatialConstraints XML file")
	c.Flags().StringVar(&configFile, "config", "", "configuration file; its mission is validated too unless --mission is given")
	return c
}
