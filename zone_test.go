// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vpkg

import (
	"errors"
	"testing"
	"time"
)

func sampleZoneDescriptor() ZoneDescriptor {
	return ZoneDescriptor{
		ID:     "ZONE_02",
		Name:   "ADAS",
		Number: 2,
		ECUs: []ECUDescriptor{
			{ID: "ECU_021", FirmwareVersion: "1.0.0", HardwareVersion: "1.0.0", Priority: 8, Firmware: []byte("camera firmware")},
			{ID: "ECU_022", FirmwareVersion: "1.0.0", HardwareVersion: "1.0.0", Priority: 8, Firmware: []byte("radar firmware, a bit longer")},
		},
	}
}

func TestBuildParseZonePackageRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	d := sampleZoneDescriptor()

	pkg, info, err := BuildZonePackage(d, now, nil)
	if err != nil {
		t.Fatalf("BuildZonePackage failed: %v", err)
	}
	if info.Size != uint32(len(pkg)) {
		t.Errorf("info.Size = %d, want %d", info.Size, len(pkg))
	}
	if info.ECUCount != uint8(len(d.ECUs)) {
		t.Errorf("info.ECUCount = %d, want %d", info.ECUCount, len(d.ECUs))
	}

	view, err := ParseZonePackage(pkg, "zone[1:ZONE_02]", nil)
	if err != nil {
		t.Fatalf("ParseZonePackage failed: %v", err)
	}
	if view.ID != d.ID || view.Name != d.Name || view.Number != d.Number {
		t.Errorf("got id=%q name=%q number=%d, want id=%q name=%q number=%d",
			view.ID, view.Name, view.Number, d.ID, d.Name, d.Number)
	}
	if len(view.ECUs) != len(d.ECUs) {
		t.Fatalf("got %d ECUs, want %d", len(view.ECUs), len(d.ECUs))
	}
	for i, ecuDesc := range d.ECUs {
		if view.ECUs[i].ID != ecuDesc.ID {
			t.Errorf("ECU[%d].ID = %q, want %q (table order must be preserved)", i, view.ECUs[i].ID, ecuDesc.ID)
		}
	}
	if view.ByID["ECU_021"] == nil || view.ByID["ECU_021"].ID != "ECU_021" {
		t.Errorf("ByID lookup for ECU_021 failed")
	}
}

func TestBuildZonePackageRejectsEmptyECUs(t *testing.T) {
	d := sampleZoneDescriptor()
	d.ECUs = nil

	_, _, err := BuildZonePackage(d, time.Unix(1700000000, 0), nil)
	if !errors.Is(err, ErrZoneMustContainEcu) {
		t.Errorf("got %v, want ErrZoneMustContainEcu", err)
	}
}

func TestBuildZonePackageBoundaryECUCount(t *testing.T) {
	base := sampleZoneDescriptor().ECUs[0]

	mk := func(n int) ZoneDescriptor {
		d := ZoneDescriptor{ID: "ZONE_X", Name: "X", Number: 3}
		for i := 0; i < n; i++ {
			ecuDesc := base
			ecuDesc.ID = "ECU_" + string(rune('A'+i))
			d.ECUs = append(d.ECUs, ecuDesc)
		}
		return d
	}

	if _, _, err := BuildZonePackage(mk(MaxECUsPerZone), time.Unix(1700000000, 0), nil); err != nil {
		t.Errorf("building with %d ECUs (the max) failed: %v", MaxECUsPerZone, err)
	}
	if _, _, err := BuildZonePackage(mk(MaxECUsPerZone+1), time.Unix(1700000000, 0), nil); !errors.Is(err, ErrTooManyEntries) {
		t.Errorf("building with %d ECUs: got %v, want ErrTooManyEntries", MaxECUsPerZone+1, err)
	}
}

func TestParseZonePackageDetectsCRCCorruption(t *testing.T) {
	d := sampleZoneDescriptor()
	pkg, _, err := BuildZonePackage(d, time.Unix(1700000000, 0), nil)
	if err != nil {
		t.Fatalf("BuildZonePackage failed: %v", err)
	}

	pkg[ZoneHeaderSize] ^= 0xFF

	_, err = ParseZonePackage(pkg, "zone[1:ZONE_02]", nil)
	if !errors.Is(err, ErrCrcMismatch) {
		t.Errorf("got %v, want ErrCrcMismatch", err)
	}
}

func TestParseZonePackageDetectsDuplicateECUId(t *testing.T) {
	d := sampleZoneDescriptor()
	d.ECUs[1].ID = d.ECUs[0].ID

	pkg, _, err := BuildZonePackage(d, time.Unix(1700000000, 0), nil)
	if err != nil {
		t.Fatalf("BuildZonePackage failed: %v", err)
	}

	_, err = ParseZonePackage(pkg, "zone[1:ZONE_02]", nil)
	if !errors.Is(err, ErrDuplicateEcuId) {
		t.Errorf("got %v, want ErrDuplicateEcuId", err)
	}
}
