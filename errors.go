// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vpkg

import (
	"fmt"
)

// Kind identifies the class of a build or parse failure. Kinds are flat,
// not hierarchical.
type Kind int

const (
	// BadMagic means the first four bytes do not match the expected magic.
	BadMagic Kind = iota
	// UnsupportedVersion means the format version field is unknown, or a
	// version string component does not fit the encoding.
	UnsupportedVersion
	// LengthMismatch means the declared total size does not equal the
	// input slice length.
	LengthMismatch
	// CrcMismatch means the stored CRC32 does not equal the recomputed
	// CRC32 of the payload.
	CrcMismatch
	// FirmwareCrcMismatch means the stored firmware CRC32 does not equal
	// the recomputed one.
	FirmwareCrcMismatch
	// OffsetOutOfRange means a table entry points outside the enclosing
	// payload.
	OffsetOutOfRange
	// OverlappingEntry means two table entries' byte ranges intersect.
	OverlappingEntry
	// TooManyEntries means an entry count exceeds the level's maximum.
	TooManyEntries
	// DuplicateEcuId means the same ECU ID appears twice in one zone.
	DuplicateEcuId
	// EcuCountMismatch means the sum of per-zone ECU counts does not equal
	// the declared vehicle-level total.
	EcuCountMismatch
	// BadVin means a VIN build input is not exactly 17 characters.
	BadVin
	// ZeroSizedEcu means a table entry declares an ECU package size of 0.
	ZeroSizedEcu
	// OutsideBoundary means a primitive read or write fell outside the
	// bounds of the buffer it was given, independent of any table entry.
	OutsideBoundary
	// OversizedInput means the input exceeds the configured maximum
	// accepted Vehicle Package size.
	OversizedInput
	// ZoneMustContainEcu means a zone build input has no ECUs.
	ZoneMustContainEcu
	// VehicleMustContainZone means a vehicle build input has no zones.
	VehicleMustContainZone
)

func (k Kind) String() string {
	switch k {
	case BadMagic:
		return "BadMagic"
	case UnsupportedVersion:
		return "UnsupportedVersion"
	case LengthMismatch:
		return "LengthMismatch"
	case CrcMismatch:
		return "CrcMismatch"
	case FirmwareCrcMismatch:
		return "FirmwareCrcMismatch"
	case OffsetOutOfRange:
		return "OffsetOutOfRange"
	case OverlappingEntry:
		return "OverlappingEntry"
	case TooManyEntries:
		return "TooManyEntries"
	case DuplicateEcuId:
		return "DuplicateEcuId"
	case EcuCountMismatch:
		return "EcuCountMismatch"
	case BadVin:
		return "BadVin"
	case ZeroSizedEcu:
		return "ZeroSizedEcu"
	case OutsideBoundary:
		return "OutsideBoundary"
	case OversizedInput:
		return "OversizedInput"
	case ZoneMustContainEcu:
		return "ZoneMustContainEcu"
	case VehicleMustContainZone:
		return "VehicleMustContainZone"
	default:
		return "Unknown"
	}
}

// Error is returned by every build and parse operation in this package.
// Entity identifies the offending part of the tree, e.g.
// "zone[1:ZONE_02]/ecu[ECU_021]", so a caller driving an OTA pipeline can decide
// whether to quarantine, re-download, or surface the failure without
// re-parsing the package itself.
type Error struct {
	Kind   Kind
	Entity string
	cause  error
}

func newError(kind Kind, entity string, cause error) *Error {
	return &Error{Kind: kind, Entity: entity, cause: cause}
}

func (e *Error) Error() string {
	if e.Entity == "" {
		if e.cause != nil {
			return fmt.Sprintf("vpkg: %s: %v", e.Kind, e.cause)
		}
		return fmt.Sprintf("vpkg: %s", e.Kind)
	}
	if e.cause != nil {
		return fmt.Sprintf("vpkg: %s: %s: %v", e.Kind, e.Entity, e.cause)
	}
	return fmt.Sprintf("vpkg: %s: %s", e.Kind, e.Entity)
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is the sentinel for e's Kind, so callers can
// write errors.Is(err, vpkg.ErrBadMagic) without caring about Entity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Entity == "" && t.cause == nil
}

// Sentinel errors, one per Kind, usable with errors.Is.
var (
	ErrBadMagic               = &Error{Kind: BadMagic}
	ErrUnsupportedVersion     = &Error{Kind: UnsupportedVersion}
	ErrLengthMismatch         = &Error{Kind: LengthMismatch}
	ErrCrcMismatch            = &Error{Kind: CrcMismatch}
	ErrFirmwareCrcMismatch    = &Error{Kind: FirmwareCrcMismatch}
	ErrOffsetOutOfRange       = &Error{Kind: OffsetOutOfRange}
	ErrOverlappingEntry       = &Error{Kind: OverlappingEntry}
	ErrTooManyEntries         = &Error{Kind: TooManyEntries}
	ErrDuplicateEcuId         = &Error{Kind: DuplicateEcuId}
	ErrEcuCountMismatch       = &Error{Kind: EcuCountMismatch}
	ErrBadVin                 = &Error{Kind: BadVin}
	ErrZeroSizedEcu           = &Error{Kind: ZeroSizedEcu}
	ErrOutsideBoundary        = &Error{Kind: OutsideBoundary}
	ErrOversizedInput         = &Error{Kind: OversizedInput}
	ErrZoneMustContainEcu     = &Error{Kind: ZoneMustContainEcu}
	ErrVehicleMustContainZone = &Error{Kind: VehicleMustContainZone}
)

// withEntity returns a copy of a sentinel error naming the offending entity.
func withEntity(sentinel *Error, entity string) *Error {
	return newError(sentinel.Kind, entity, nil)
}

// wrap returns a copy of a sentinel error naming the offending entity and
// wrapping cause.
func wrap(sentinel *Error, entity string, cause error) *Error {
	return newError(sentinel.Kind, entity, cause)
}
