// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vpkg

import (
	"errors"
	"testing"
	"time"
)

func sampleVehicleDescriptor() VehicleDescriptor {
	return VehicleDescriptor{
		VIN:             "1HGCM82633A123456",
		Model:           "Model X",
		ModelYear:       2026,
		Region:          1,
		MasterSWVersion: "3.2.1",
		Zones: []ZoneDescriptor{
			{
				ID: "ZONE_01", Name: "Body", Number: 1,
				ECUs: []ECUDescriptor{
					{ID: "ECU_011", FirmwareVersion: "2.0.1", HardwareVersion: "1.0.0", Priority: 5, Firmware: []byte("bcm firmware")},
					{ID: "ECU_012", FirmwareVersion: "1.5.0", HardwareVersion: "1.0.0", Priority: 3, Firmware: []byte("dcm firmware")},
				},
			},
			{
				ID: "ZONE_09", Name: "Gateway", Number: 9,
				ECUs: []ECUDescriptor{
					{ID: "ECU_091", FirmwareVersion: "2.0.0", HardwareVersion: "1.0.0", Priority: 10, Firmware: []byte("gateway firmware")},
				},
			},
		},
	}
}

func fixedClockOpts(now time.Time) *Options {
	return &Options{Clock: func() time.Time { return now }}
}

func TestBuildParseVehiclePackageRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	d := sampleVehicleDescriptor()
	opts := fixedClockOpts(now)

	pkg, err := BuildVehiclePackage(d, opts)
	if err != nil {
		t.Fatalf("BuildVehiclePackage failed: %v", err)
	}

	view, err := ParseVehiclePackage(pkg, nil)
	if err != nil {
		t.Fatalf("ParseVehiclePackage failed: %v", err)
	}
	if view.VIN != d.VIN {
		t.Errorf("VIN = %q, want %q", view.VIN, d.VIN)
	}
	if view.Model != d.Model {
		t.Errorf("Model = %q, want %q", view.Model, d.Model)
	}
	if view.ModelYear != d.ModelYear {
		t.Errorf("ModelYear = %d, want %d", view.ModelYear, d.ModelYear)
	}
	if len(view.Zones) != len(d.Zones) {
		t.Fatalf("got %d zones, want %d", len(view.Zones), len(d.Zones))
	}
	var totalECUs int
	for i, zoneDesc := range d.Zones {
		if view.Zones[i].ID != zoneDesc.ID {
			t.Errorf("Zone[%d].ID = %q, want %q (table order must be preserved)", i, view.Zones[i].ID, zoneDesc.ID)
		}
		totalECUs += len(zoneDesc.ECUs)
	}
	if view.ByID["ZONE_09"] == nil || view.ByID["ZONE_09"].ID != "ZONE_09" {
		t.Errorf("ByID lookup for ZONE_09 failed")
	}
	_ = totalECUs
}

func TestBuildVehiclePackageDeterministic(t *testing.T) {
	now := time.Unix(1700000000, 0)
	d := sampleVehicleDescriptor()

	a, err := BuildVehiclePackage(d, fixedClockOpts(now))
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	b, err := BuildVehiclePackage(d, fixedClockOpts(now))
	if err != nil {
		t.Fatalf("second build failed: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("builds differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("builds differ at byte %d with a fixed clock: %#x vs %#x", i, a[i], b[i])
		}
	}
}

func TestBuildVehiclePackageRejectsBadVIN(t *testing.T) {
	d := sampleVehicleDescriptor()
	d.VIN = "TOOSHORT"

	_, err := BuildVehiclePackage(d, nil)
	if !errors.Is(err, ErrBadVin) {
		t.Errorf("got %v, want ErrBadVin", err)
	}
}

func TestBuildVehiclePackageRejectsNoZones(t *testing.T) {
	d := sampleVehicleDescriptor()
	d.Zones = nil

	_, err := BuildVehiclePackage(d, nil)
	if !errors.Is(err, ErrVehicleMustContainZone) {
		t.Errorf("got %v, want ErrVehicleMustContainZone", err)
	}
}

func TestParseVehiclePackageDetectsCorruption(t *testing.T) {
	d := sampleVehicleDescriptor()
	pkg, err := BuildVehiclePackage(d, fixedClockOpts(time.Unix(1700000000, 0)))
	if err != nil {
		t.Fatalf("BuildVehiclePackage failed: %v", err)
	}

	pkg[VehicleMetadataSize] ^= 0xFF

	_, err = ParseVehiclePackage(pkg, nil)
	if !errors.Is(err, ErrCrcMismatch) {
		t.Errorf("got %v, want ErrCrcMismatch", err)
	}
}

func TestParseVehiclePackageEnforcesMaxSize(t *testing.T) {
	d := sampleVehicleDescriptor()
	pkg, err := BuildVehiclePackage(d, fixedClockOpts(time.Unix(1700000000, 0)))
	if err != nil {
		t.Fatalf("BuildVehiclePackage failed: %v", err)
	}

	opts := &Options{MaxVehicleSize: uint32(len(pkg) - 1)}
	_, err = ParseVehiclePackage(pkg, opts)
	if !errors.Is(err, ErrOversizedInput) {
		t.Errorf("got %v, want ErrOversizedInput", err)
	}
}

func TestBuildVehiclePackageBoundaryZoneCount(t *testing.T) {
	base := sampleVehicleDescriptor()
	zoneTemplate := base.Zones[1] // single-ECU zone, cheap to replicate

	mk := func(n int) VehicleDescriptor {
		d := base
		d.Zones = nil
		for i := 0; i < n; i++ {
			z := zoneTemplate
			z.ID = "ZONE_" + string(rune('A'+i))
			z.Number = uint8(i + 1)
			d.Zones = append(d.Zones, z)
		}
		return d
	}

	if _, err := BuildVehiclePackage(mk(MaxZonesPerVehicle), nil); err != nil {
		t.Errorf("building with %d zones (the max) failed: %v", MaxZonesPerVehicle, err)
	}
	if _, err := BuildVehiclePackage(mk(MaxZonesPerVehicle+1), nil); !errors.Is(err, ErrTooManyEntries) {
		t.Errorf("building with %d zones: got %v, want ErrTooManyEntries", MaxZonesPerVehicle+1, err)
	}
}

func TestBuildVehiclePackageRejectsOffLengthVIN(t *testing.T) {
	for _, vin := range []string{"1234567890123456", "123456789012345678"} { // 16 and 18 chars
		d := sampleVehicleDescriptor()
		d.VIN = vin
		if _, err := BuildVehiclePackage(d, nil); !errors.Is(err, ErrBadVin) {
			t.Errorf("VIN of length %d: got %v, want ErrBadVin", len(vin), err)
		}
	}
}

func TestParseVehiclePackageDetectsTruncation(t *testing.T) {
	d := sampleVehicleDescriptor()
	pkg, err := BuildVehiclePackage(d, fixedClockOpts(time.Unix(1700000000, 0)))
	if err != nil {
		t.Fatalf("BuildVehiclePackage failed: %v", err)
	}

	_, err = ParseVehiclePackage(pkg[:len(pkg)-10], nil)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("got %v, want ErrLengthMismatch", err)
	}
}
