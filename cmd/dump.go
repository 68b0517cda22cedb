// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vehicleota/vpkg"
)

var dumpVerbose bool

var dumpCmd = &cobra.Command{
	Use:   "dump <path>",
	Short: "Parse a Vehicle Package and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpVerbose, "verbose", false, "include firmware bytes in the dump")
}

type ecuDump struct {
	ID              string `json:"id"`
	FirmwareVersion string `json:"firmware_version"`
	HardwareVersion string `json:"hardware_version"`
	Priority        uint8  `json:"priority"`
	Timestamp       string `json:"timestamp"`
	FirmwareBytes   int    `json:"firmware_bytes"`
	Firmware        []byte `json:"firmware,omitempty"`
}

type zoneDump struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Number uint8     `json:"number"`
	ECUs   []ecuDump `json:"ecus"`
}

type vehicleDump struct {
	VIN             string     `json:"vin"`
	Model           string     `json:"model"`
	ModelYear       uint16     `json:"model_year"`
	Region          uint8      `json:"region"`
	MasterSWVersion string     `json:"master_sw_version"`
	Zones           []zoneDump `json:"zones"`
}

func runDump(cmd *cobra.Command, args []string) error {
	view, closer, err := vpkg.OpenVehiclePackage(args[0], nil)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	defer closer.Close()

	major, minor, patch := vpkg.DecodeVersion(view.MasterSWVersion)

	out := vehicleDump{
		VIN:             view.VIN,
		Model:           view.Model,
		ModelYear:       view.ModelYear,
		Region:          view.Region,
		MasterSWVersion: fmt.Sprintf("%d.%d.%d", major, minor, patch),
	}
	for _, zone := range view.Zones {
		zd := zoneDump{ID: zone.ID, Name: zone.Name, Number: zone.Number}
		for _, ecu := range zone.ECUs {
			major, minor, patch := vpkg.DecodeVersion(ecu.FirmwareVersion)
			ed := ecuDump{
				ID:              ecu.ID,
				FirmwareVersion: fmt.Sprintf("%d.%d.%d", major, minor, patch),
				HardwareVersion: versionString(ecu.HardwareVersion),
				Priority:        ecu.Priority,
				Timestamp:       ecu.Timestamp.UTC().String(),
				FirmwareBytes:   len(ecu.Firmware),
			}
			if dumpVerbose {
				ed.Firmware = ecu.Firmware
			}
			zd.ECUs = append(zd.ECUs, ed)
		}
		out.Zones = append(out.Zones, zd)
	}

	fmt.Println(prettyPrint(out))
	return nil
}

func versionString(v uint32) string {
	major, minor, patch := vpkg.DecodeVersion(v)
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}

func prettyPrint(v interface{}) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<marshal error: %v>", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}
