// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vehicleota/vpkg"
	"github.com/vehicleota/vpkg/internal/sample"
)

var (
	buildOutputPath string
	buildVIN        string
	buildModel      string
	buildYear       int
	buildRegion     uint8
	buildMasterSW   string
	buildSample     bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a Vehicle Package from the repository's sample descriptor",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildOutputPath, "output-path", "", "destination path for the built package (required)")
	buildCmd.Flags().StringVar(&buildVIN, "vin", "", "vehicle identifier, exactly 17 characters (required)")
	buildCmd.Flags().StringVar(&buildModel, "model", "", "vehicle model, at most 32 characters")
	buildCmd.Flags().IntVar(&buildYear, "year", 0, "model year, 2020-2030 inclusive (required)")
	buildCmd.Flags().Uint8Var(&buildRegion, "region", 0, "region code")
	buildCmd.Flags().StringVar(&buildMasterSW, "master-sw", "v1.0.0", "master software version")
	buildCmd.Flags().BoolVar(&buildSample, "sample", true, "drive the descriptor from the repository's hard-coded 3-zone/5-ECU sample (no descriptor-file source exists yet)")
	_ = buildCmd.MarkFlagRequired("output-path")
	_ = buildCmd.MarkFlagRequired("vin")
	_ = buildCmd.MarkFlagRequired("year")
}

func runBuild(cmd *cobra.Command, args []string) error {
	// Validated here, by the CLI layer, not by the codec: year-range and
	// model-length are policy for this tool, not wire-format invariants.
	if len(buildVIN) != 17 {
		return fmt.Errorf("BadVin: --vin must be exactly 17 characters, got %d", len(buildVIN))
	}
	if len(buildModel) > 32 {
		return fmt.Errorf("model must be at most 32 characters, got %d", len(buildModel))
	}
	if buildYear < 2020 || buildYear > 2030 {
		return fmt.Errorf("year must be between 2020 and 2030, got %d", buildYear)
	}
	if !buildSample {
		return fmt.Errorf("--sample=false requires a descriptor-file source, which this build does not yet have")
	}

	descriptor := sample.Descriptor(buildVIN, buildModel, uint16(buildYear), buildRegion, buildMasterSW)

	data, err := vpkg.BuildVehiclePackage(descriptor, nil)
	if err != nil {
		return err
	}

	if err := os.WriteFile(buildOutputPath, data, 0o644); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d bytes)\n", buildOutputPath, len(data))
	return nil
}
