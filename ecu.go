// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vpkg

import "time"

// ECU metadata field offsets, within a 256-byte record. See DESIGN.md
// "ECU metadata dependency table" for the reserved dependency-table width.
const (
	ecuOffMagic           = 0
	ecuOffID              = 4
	ecuOffIDSize          = 16
	ecuOffFirmwareVersion = 20
	ecuOffHardwareVersion = 24
	ecuOffFirmwareSize    = 28
	ecuOffFirmwareCRC32   = 32
	ecuOffTimestamp       = 36
	ecuOffVersionString   = 40
	ecuOffVersionStrSize  = 32
	ecuOffDepCount        = 72
	ecuOffDepTable        = 73
	ecuOffDepTableSize    = 32
)

// ECUDescriptor is the caller-supplied build input for one ECU Package.
type ECUDescriptor struct {
	ID              string
	FirmwareVersion string
	HardwareVersion string
	Priority        uint8
	Firmware        []byte
}

// ECUInfo describes a built ECU Package, as the Zone codec needs it to
// populate its own ECU table.
type ECUInfo struct {
	ID              string
	Size            uint32 // total ECU Package size (metadata + firmware)
	FirmwareSize    uint32
	FirmwareCRC32   uint32
	FirmwareVersion uint32 // packed MAJOR.MINOR.PATCH
	PackageCRC32    uint32 // CRC32 over the whole built ECU Package
	Priority        uint8
}

// ECUView is a parsed, immutable view of one ECU Package. Firmware is a
// zero-copy slice into the buffer ParseECUPackage was given.
type ECUView struct {
	ID              string
	FirmwareVersion uint32
	HardwareVersion uint32
	Priority        uint8
	Timestamp       time.Time
	VersionString   string
	Firmware        []byte
}

// BuildECUPackage builds one ECU Package: a 256-byte metadata record
// followed by the firmware payload. The dependency table and all
// reserved bytes are left zero.
func BuildECUPackage(d ECUDescriptor, now time.Time, opts *Options) ([]byte, ECUInfo, error) {
	log := opts.helper()

	fwVersion, err := ParseVersion(d.FirmwareVersion)
	if err != nil {
		log.Errorf("build ecu[%s]: bad firmware version %q: %v", d.ID, d.FirmwareVersion, err)
		return nil, ECUInfo{}, wrap(ErrUnsupportedVersion, d.ID, err)
	}
	hwVersion, err := ParseVersion(d.HardwareVersion)
	if err != nil {
		log.Errorf("build ecu[%s]: bad hardware version %q: %v", d.ID, d.HardwareVersion, err)
		return nil, ECUInfo{}, wrap(ErrUnsupportedVersion, d.ID, err)
	}

	buf := make([]byte, ECUMetadataSize+len(d.Firmware))
	meta := buf[:ECUMetadataSize]

	_ = putUint32(meta, ecuOffMagic, MagicECU)
	putString(meta, ecuOffID, ecuOffIDSize, d.ID)
	_ = putUint32(meta, ecuOffFirmwareVersion, fwVersion)
	_ = putUint32(meta, ecuOffHardwareVersion, hwVersion)
	_ = putUint32(meta, ecuOffFirmwareSize, uint32(len(d.Firmware)))
	fwCRC := checksum(d.Firmware)
	_ = putUint32(meta, ecuOffFirmwareCRC32, fwCRC)
	_ = putUint32(meta, ecuOffTimestamp, uint32(now.Unix()))
	putString(meta, ecuOffVersionString, ecuOffVersionStrSize, d.FirmwareVersion)
	// Dependency count and table, and all remaining bytes, stay zero:
	// dependency tracking is reserved for a future format revision.

	copy(buf[ECUMetadataSize:], d.Firmware)

	info := ECUInfo{
		ID:              d.ID,
		Size:            uint32(len(buf)),
		FirmwareSize:    uint32(len(d.Firmware)),
		FirmwareCRC32:   fwCRC,
		FirmwareVersion: fwVersion,
		PackageCRC32:    checksum(buf),
		Priority:        d.Priority,
	}
	log.Infof("built ecu[%s]: firmware=%d bytes size=%d", d.ID, len(d.Firmware), info.Size)
	return buf, info, nil
}

// ParseECUPackage validates and parses one ECU Package from b, which must
// contain exactly one package (metadata followed by its declared firmware
// size). entity names the package in error messages (e.g. "zone[1]/ecu[ECU_021]").
func ParseECUPackage(b []byte, entity string, opts *Options) (ECUView, error) {
	log := opts.helper()

	if len(b) < ECUMetadataSize {
		log.Errorf("%s: length mismatch: got %d bytes, want at least %d", entity, len(b), ECUMetadataSize)
		return ECUView{}, withEntity(ErrLengthMismatch, entity)
	}
	meta := b[:ECUMetadataSize]

	magic, _ := readUint32(meta, ecuOffMagic)
	if magic != MagicECU {
		log.Errorf("%s: bad magic", entity)
		return ECUView{}, withEntity(ErrBadMagic, entity)
	}

	firmwareSize, _ := readUint32(meta, ecuOffFirmwareSize)
	if uint64(ECUMetadataSize)+uint64(firmwareSize) != uint64(len(b)) {
		log.Errorf("%s: length mismatch: declared firmware size %d, have %d bytes", entity, firmwareSize, len(b))
		return ECUView{}, withEntity(ErrLengthMismatch, entity)
	}

	fwVersion, _ := readUint32(meta, ecuOffFirmwareVersion)
	hwVersion, _ := readUint32(meta, ecuOffHardwareVersion)
	if fwVersion&0xFF000000 != 0 || hwVersion&0xFF000000 != 0 {
		log.Errorf("%s: unsupported version encoding", entity)
		return ECUView{}, withEntity(ErrUnsupportedVersion, entity)
	}

	firmware := b[ECUMetadataSize:]
	storedCRC, _ := readUint32(meta, ecuOffFirmwareCRC32)
	if checksum(firmware) != storedCRC {
		log.Errorf("%s: firmware CRC32 mismatch", entity)
		return ECUView{}, withEntity(ErrFirmwareCrcMismatch, entity)
	}

	ts, _ := readUint32(meta, ecuOffTimestamp)
	id := getString(meta, ecuOffID, ecuOffIDSize)
	versionString := getString(meta, ecuOffVersionString, ecuOffVersionStrSize)

	log.Infof("parsed %s: firmware=%d bytes", entity, len(firmware))
	return ECUView{
		ID:              id,
		FirmwareVersion: fwVersion,
		HardwareVersion: hwVersion,
		Priority:        0, // set by the caller from the enclosing zone's ECU table entry
		Timestamp:       time.Unix(int64(ts), 0),
		VersionString:   versionString,
		Firmware:        firmware,
	}, nil
}
