// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package vpkg implements the Vehicle Package container format: a
// hierarchical binary artifact carrying ECU firmware, grouped by zone,
// for delivery to a Vehicle Master Gateway performing an over-the-air
// update.
//
// A Vehicle Package holds several Zone Packages, each of which holds
// several ECU Packages, each of which holds one opaque firmware blob.
// All three levels are fixed-offset binary records, all integers
// little-endian, all text ASCII and NUL-padded. The Vehicle and Zone
// levels carry a table of entries describing the next level down; an
// ECU Package is a metadata record followed directly by its firmware.
package vpkg

import "time"

// Magic numbers identifying each container level. Stored and compared
// as little-endian 32-bit words; they are the sole wire-format
// identifier, there is no text preamble.
const (
	MagicVehicle uint32 = 0x5650504B // "VPPK"
	MagicZone    uint32 = 0x5A4F4E45 // "ZONE"
	MagicECU     uint32 = 0x4543554D // "ECUM"
)

// Fixed structural sizes, in bytes.
const (
	// ECUMetadataSize is the exact size of an ECU Package's metadata record.
	ECUMetadataSize = 256

	// ZoneHeaderSize is the exact size of a Zone Package's header.
	ZoneHeaderSize = 1024

	// VehicleMetadataSize is the exact size of a Vehicle Package's metadata block.
	VehicleMetadataSize = 12288

	// MaxECUsPerZone is the maximum number of ECU table entries a zone header can hold.
	MaxECUsPerZone = 16

	// MaxZonesPerVehicle is the maximum number of zone reference entries a
	// vehicle metadata block can hold.
	MaxZonesPerVehicle = 16

	// zoneECUEntrySize is the width of one entry in a zone's ECU table.
	// See DESIGN.md "Zone ECU-table entry width" for the derivation: 256
	// (table start) + 16*48 = 1024, the zone header's fixed total size.
	zoneECUEntrySize = 48

	// vehicleZoneEntrySize is the width of one entry in a vehicle's zone
	// reference table.
	vehicleZoneEntrySize = 32

	// zoneECUTableOffset is the offset within a zone header where the ECU
	// table begins.
	zoneECUTableOffset = 256

	// vehicleZoneTableOffset is the offset within vehicle metadata where
	// the zone reference table begins.
	vehicleZoneTableOffset = 192

	// vinLength is the fixed length of a Vehicle Identification Number.
	vinLength = 17

	// modelFieldWidth is the width, in bytes, allocated to the model field.
	modelFieldWidth = 32

	// modelFieldMaxLen caps the logical model string below modelFieldWidth
	// so the field's last bytes are always NUL, keeping the boundary with
	// the model-year field that immediately follows unambiguous.
	modelFieldMaxLen = 30

	// DefaultMaxVehicleSize bounds the size of an input accepted by
	// ParseVehiclePackage before any derived structure is allocated, to
	// bound memory consumption against a hostile input.
	DefaultMaxVehicleSize = 256 * 1024 * 1024

	// formatVersionMajor/Minor/Patch is the wire format version this codec
	// reads and writes, encoded the same way as a firmware version (see
	// EncodeVersion). On-disk value: 0x00010000.
	formatVersionMajor = 1
	formatVersionMinor = 0
	formatVersionPatch = 0
)

// FormatVersion is the packed 32-bit format-version word written into
// every Vehicle and Zone Package header.
var FormatVersion = EncodeVersion(formatVersionMajor, formatVersionMinor, formatVersionPatch)

// Clock returns the current time. BuildVehiclePackage calls it once per
// build and passes that moment down, so the same timestamp is stamped into
// every nested envelope; BuildZonePackage and BuildECUPackage take the
// timestamp as an argument instead. Tests inject a fixed clock for
// deterministic, byte-for-byte reproducible output.
type Clock func() time.Time

func defaultClock() time.Time { return time.Now() }
