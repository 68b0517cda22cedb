// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vpkg

import (
	"errors"
	"testing"
	"time"
)

func sampleECUDescriptor() ECUDescriptor {
	return ECUDescriptor{
		ID:              "ECU_021",
		FirmwareVersion: "1.0.0",
		HardwareVersion: "1.0.0",
		Priority:        8,
		Firmware:        []byte("CAM firmware blob, arbitrary bytes."),
	}
}

func TestBuildParseECUPackageRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	d := sampleECUDescriptor()

	pkg, info, err := BuildECUPackage(d, now, nil)
	if err != nil {
		t.Fatalf("BuildECUPackage failed: %v", err)
	}
	if info.Size != uint32(len(pkg)) {
		t.Errorf("info.Size = %d, want %d", info.Size, len(pkg))
	}
	if info.Size != ECUMetadataSize+uint32(len(d.Firmware)) {
		t.Errorf("built package size %d != metadata(%d)+firmware(%d)", info.Size, ECUMetadataSize, len(d.Firmware))
	}

	view, err := ParseECUPackage(pkg, "ecu[ECU_021]", nil)
	if err != nil {
		t.Fatalf("ParseECUPackage failed: %v", err)
	}
	if view.ID != d.ID {
		t.Errorf("ID = %q, want %q", view.ID, d.ID)
	}
	wantFW, _ := ParseVersion(d.FirmwareVersion)
	if view.FirmwareVersion != wantFW {
		t.Errorf("FirmwareVersion = %#x, want %#x", view.FirmwareVersion, wantFW)
	}
	if view.Timestamp.Unix() != now.Unix() {
		t.Errorf("Timestamp = %v, want %v", view.Timestamp, now)
	}
	if string(view.Firmware) != string(d.Firmware) {
		t.Errorf("Firmware round-trip mismatch")
	}
}

func TestParseECUPackageZeroLengthFirmwareAccepted(t *testing.T) {
	d := sampleECUDescriptor()
	d.Firmware = nil

	pkg, info, err := BuildECUPackage(d, time.Unix(1700000000, 0), nil)
	if err != nil {
		t.Fatalf("BuildECUPackage failed: %v", err)
	}
	if info.FirmwareSize != 0 {
		t.Errorf("FirmwareSize = %d, want 0", info.FirmwareSize)
	}

	view, err := ParseECUPackage(pkg, "ecu[ECU_021]", nil)
	if err != nil {
		t.Fatalf("ParseECUPackage failed: %v", err)
	}
	if len(view.Firmware) != 0 {
		t.Errorf("Firmware length = %d, want 0", len(view.Firmware))
	}
}

func TestParseECUPackageDetectsFirmwareCorruption(t *testing.T) {
	d := sampleECUDescriptor()
	pkg, _, err := BuildECUPackage(d, time.Unix(1700000000, 0), nil)
	if err != nil {
		t.Fatalf("BuildECUPackage failed: %v", err)
	}

	pkg[ECUMetadataSize] ^= 0xFF

	_, err = ParseECUPackage(pkg, "ecu[ECU_021]", nil)
	if !errors.Is(err, ErrFirmwareCrcMismatch) {
		t.Errorf("got %v, want ErrFirmwareCrcMismatch", err)
	}
}

func TestParseECUPackageDetectsTruncation(t *testing.T) {
	d := sampleECUDescriptor()
	pkg, _, err := BuildECUPackage(d, time.Unix(1700000000, 0), nil)
	if err != nil {
		t.Fatalf("BuildECUPackage failed: %v", err)
	}

	_, err = ParseECUPackage(pkg[:len(pkg)-1], "ecu[ECU_021]", nil)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("got %v, want ErrLengthMismatch", err)
	}
}

func TestParseECUPackageDetectsBadMagic(t *testing.T) {
	d := sampleECUDescriptor()
	pkg, _, err := BuildECUPackage(d, time.Unix(1700000000, 0), nil)
	if err != nil {
		t.Fatalf("BuildECUPackage failed: %v", err)
	}
	pkg[0] ^= 0xFF

	_, err = ParseECUPackage(pkg, "ecu[ECU_021]", nil)
	if !errors.Is(err, ErrBadMagic) {
		t.Errorf("got %v, want ErrBadMagic", err)
	}
}

func TestBuildECUPackageRejectsBadVersion(t *testing.T) {
	d := sampleECUDescriptor()
	d.FirmwareVersion = "not-a-version"

	_, _, err := BuildECUPackage(d, time.Unix(1700000000, 0), nil)
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("got %v, want ErrUnsupportedVersion", err)
	}
}
