// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package sample is the repository's own hard-coded descriptor source: a
// stand-in for whatever external fleet-management system a production
// caller would supply descriptors from. It is a test/CLI collaborator,
// not part of the core codec.
package sample

import (
	"fmt"

	"github.com/vehicleota/vpkg"
)

// Descriptor returns the repository's sample 3-zone, 5-ECU vehicle:
// ECU_091 (ZGW) alone in zone 9, ECU_011 (BCM) and ECU_012 (DCM) in
// zone 1, ECU_021 and ECU_022 in zone 2.
func Descriptor(vin, model string, modelYear uint16, region uint8, masterSW string) vpkg.VehicleDescriptor {
	return vpkg.VehicleDescriptor{
		VIN:             vin,
		Model:           model,
		ModelYear:       modelYear,
		Region:          region,
		MasterSWVersion: masterSW,
		Zones: []vpkg.ZoneDescriptor{
			{
				ID:     "ZONE_01",
				Name:   "Body",
				Number: 1,
				ECUs: []vpkg.ECUDescriptor{
					ecu("ECU_011", "BCM", "2.0.1", "1.0.0", 5, 256*1024),
					ecu("ECU_012", "DCM", "1.5.0", "1.0.0", 3, 128*1024),
				},
			},
			{
				ID:     "ZONE_02",
				Name:   "ADAS",
				Number: 2,
				ECUs: []vpkg.ECUDescriptor{
					ecu("ECU_021", "CAM", "1.0.0", "1.0.0", 8, 512*1024),
					ecu("ECU_022", "RDR", "1.0.0", "1.0.0", 8, 384*1024),
				},
			},
			{
				ID:     "ZONE_09",
				Name:   "Gateway",
				Number: 9,
				ECUs: []vpkg.ECUDescriptor{
					ecu("ECU_091", "ZGW", "2.0.0", "1.0.0", 10, 1024*1024),
				},
			},
		},
	}
}

func ecu(id, label, fwVersion, hwVersion string, priority uint8, firmwareSize int) vpkg.ECUDescriptor {
	return vpkg.ECUDescriptor{
		ID:              id,
		FirmwareVersion: fwVersion,
		HardwareVersion: hwVersion,
		Priority:        priority,
		Firmware:        DummyFirmware(id, firmwareSize),
	}
}

// DummyFirmware generates a deterministic firmware payload for id: a
// 64-byte ASCII header "FIRMWARE_<id>" (NUL-padded), followed by the
// repeating pattern byte i mod 256, totalling size bytes.
func DummyFirmware(id string, size int) []byte {
	if size == 0 {
		return nil
	}
	buf := make([]byte, size)
	header := []byte(fmt.Sprintf("FIRMWARE_%s", id))
	n := copy(buf, header)
	_ = n
	for i := 64; i < size; i++ {
		buf[i] = byte(i % 256)
	}
	return buf
}
