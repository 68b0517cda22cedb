// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vpkg

import (
	"encoding/binary"
	"hash/crc32"
	"strconv"
	"strings"
)

// putUint16 writes v little-endian at offset within buf.
func putUint16(buf []byte, offset uint32, v uint16) error {
	if uint64(offset)+2 > uint64(len(buf)) {
		return newError(OutsideBoundary, "", nil)
	}
	binary.LittleEndian.PutUint16(buf[offset:], v)
	return nil
}

// putUint32 writes v little-endian at offset within buf.
func putUint32(buf []byte, offset uint32, v uint32) error {
	if uint64(offset)+4 > uint64(len(buf)) {
		return newError(OutsideBoundary, "", nil)
	}
	binary.LittleEndian.PutUint32(buf[offset:], v)
	return nil
}

// readUint16 reads a little-endian uint16 at offset within buf.
func readUint16(buf []byte, offset uint32) (uint16, error) {
	if uint64(offset)+2 > uint64(len(buf)) {
		return 0, newError(OutsideBoundary, "", nil)
	}
	return binary.LittleEndian.Uint16(buf[offset:]), nil
}

// readUint32 reads a little-endian uint32 at offset within buf.
func readUint32(buf []byte, offset uint32) (uint32, error) {
	if uint64(offset)+4 > uint64(len(buf)) {
		return 0, newError(OutsideBoundary, "", nil)
	}
	return binary.LittleEndian.Uint32(buf[offset:]), nil
}

// putString writes s into the size-byte field at offset, truncating an
// overlong string and NUL-padding the remainder. It never fails: an
// out-of-range offset is a programmer error in this package's own layout
// tables, not a caller-facing condition.
func putString(buf []byte, offset, size uint32, s string) {
	field := buf[offset : offset+size]
	for i := range field {
		field[i] = 0
	}
	n := copy(field, s)
	_ = n
}

// getString reads the size-byte ASCII field at offset, stripped of
// trailing NULs.
func getString(buf []byte, offset, size uint32) string {
	field := buf[offset : offset+size]
	n := 0
	for n < len(field) && field[n] != 0 {
		n++
	}
	return string(field[:n])
}

// EncodeVersion packs MAJOR.MINOR.PATCH (each 0-255) into the 32-bit word
// (MAJOR<<16)|(MINOR<<8)|PATCH used throughout the container format.
func EncodeVersion(major, minor, patch uint8) uint32 {
	return uint32(major)<<16 | uint32(minor)<<8 | uint32(patch)
}

// DecodeVersion unpacks a 32-bit version word into its three components.
func DecodeVersion(v uint32) (major, minor, patch uint8) {
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// ParseVersion parses a version string of the form "[v]MAJOR[.MINOR[.PATCH]]"
// into the packed 32-bit encoding, defaulting missing components to zero.
// It fails when any component exceeds 255 or is non-numeric.
func ParseVersion(s string) (uint32, error) {
	s = strings.TrimPrefix(s, "v")
	parts := strings.SplitN(s, ".", 3)

	var comp [3]uint8
	for i, p := range parts {
		if p == "" {
			return 0, newError(UnsupportedVersion, "", nil)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return 0, newError(UnsupportedVersion, "", nil)
		}
		comp[i] = uint8(n)
	}
	return EncodeVersion(comp[0], comp[1], comp[2]), nil
}

// crc32Table is the IEEE 802.3 polynomial table, the same variant used by
// zlib's crc32(), for interop with non-Go readers of this format.
var crc32Table = crc32.MakeTable(crc32.IEEE)

// checksum computes the CRC32 (IEEE) of b.
func checksum(b []byte) uint32 {
	return crc32.Checksum(b, crc32Table)
}
