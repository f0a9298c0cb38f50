package main

import (
	"os"

	"github.com/westpoint-robotics/ros-cot/cmd/geofenced/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
