// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vpkg

import (
	"fmt"
	"time"
)

// Zone header field offsets, within a 1024-byte record.
const (
	zoneOffMagic         = 0
	zoneOffFormatVersion = 4
	zoneOffTotalSize     = 8
	zoneOffID            = 12
	zoneOffIDSize        = 16
	zoneOffNumber        = 28
	zoneOffECUCount      = 29
	// 30-32 reserved, aligning CRC32 to offset 32.
	zoneOffCRC32    = 32
	zoneOffTime     = 36
	zoneOffName     = 40
	zoneOffNameSize = 32
)

// Zone ECU table entry field offsets, within a zoneECUEntrySize-byte record.
const (
	zecOffID          = 0
	zecOffIDSize      = 16
	zecOffOffset      = 16
	zecOffSize        = 20
	zecOffMetaSize    = 24
	zecOffFwSize      = 28
	zecOffFwVersion   = 32
	zecOffCRC32       = 36
	zecOffPriority    = 40
)

// ZoneDescriptor is the caller-supplied build input for one Zone Package.
type ZoneDescriptor struct {
	ID     string
	Name   string
	Number uint8
	ECUs   []ECUDescriptor
}

// ZoneInfo describes a built Zone Package, as the Vehicle codec needs it
// to populate its own zone reference table.
type ZoneInfo struct {
	ID       string
	Size     uint32
	Number   uint8
	ECUCount uint8
}

// ZoneView is a parsed, immutable view of one Zone Package.
type ZoneView struct {
	ID        string
	Name      string
	Number    uint8
	Timestamp time.Time
	ECUs      []ECUView          // in ECU table order
	ByID      map[string]*ECUView
}

// BuildZonePackage builds one Zone Package: a 1024-byte header carrying an
// ECU table, followed by the concatenated ECU Packages it describes, in
// the order given. The Zone CRC32 is computed over the payload region and
// patched into the header after the payload is known, per DESIGN.md's
// "reserve-then-patch" procedure.
func BuildZonePackage(d ZoneDescriptor, now time.Time, opts *Options) ([]byte, ZoneInfo, error) {
	log := opts.helper()

	if len(d.ECUs) == 0 {
		log.Errorf("build zone[%s]: must contain at least one ECU", d.ID)
		return nil, ZoneInfo{}, withEntity(ErrZoneMustContainEcu, d.ID)
	}
	if len(d.ECUs) > MaxECUsPerZone {
		log.Errorf("build zone[%s]: %d ECUs exceeds max %d", d.ID, len(d.ECUs), MaxECUsPerZone)
		return nil, ZoneInfo{}, withEntity(ErrTooManyEntries, d.ID)
	}

	var payload []byte
	type entry struct {
		info   ECUInfo
		offset uint32
	}
	entries := make([]entry, 0, len(d.ECUs))
	offset := uint32(ZoneHeaderSize)

	for _, ecuDesc := range d.ECUs {
		pkg, info, err := BuildECUPackage(ecuDesc, now, opts)
		if err != nil {
			log.Errorf("build zone[%s]: ecu[%s] failed: %v", d.ID, ecuDesc.ID, err)
			return nil, ZoneInfo{}, err
		}
		entries = append(entries, entry{info: info, offset: offset})
		payload = append(payload, pkg...)
		offset += info.Size
	}

	totalSize := ZoneHeaderSize + uint32(len(payload))
	buf := make([]byte, totalSize)
	header := buf[:ZoneHeaderSize]

	_ = putUint32(header, zoneOffMagic, MagicZone)
	_ = putUint32(header, zoneOffFormatVersion, FormatVersion)
	_ = putUint32(header, zoneOffTotalSize, totalSize)
	putString(header, zoneOffID, zoneOffIDSize, d.ID)
	header[zoneOffNumber] = d.Number
	header[zoneOffECUCount] = uint8(len(d.ECUs))
	_ = putUint32(header, zoneOffTime, uint32(now.Unix()))
	putString(header, zoneOffName, zoneOffNameSize, d.Name)

	for i, e := range entries {
		entOff := zoneECUTableOffset + uint32(i)*zoneECUEntrySize
		ent := header[entOff : entOff+zoneECUEntrySize]
		putString(ent, zecOffID, zecOffIDSize, e.info.ID)
		_ = putUint32(ent, zecOffOffset, e.offset)
		_ = putUint32(ent, zecOffSize, e.info.Size)
		_ = putUint32(ent, zecOffMetaSize, ECUMetadataSize)
		_ = putUint32(ent, zecOffFwSize, e.info.FirmwareSize)
		_ = putUint32(ent, zecOffFwVersion, e.info.FirmwareVersion)
		_ = putUint32(ent, zecOffCRC32, e.info.PackageCRC32)
		ent[zecOffPriority] = e.info.Priority
	}

	copy(buf[ZoneHeaderSize:], payload)

	crc := checksum(buf[ZoneHeaderSize:])
	_ = putUint32(header, zoneOffCRC32, crc)

	info := ZoneInfo{
		ID:       d.ID,
		Size:     totalSize,
		Number:   d.Number,
		ECUCount: uint8(len(d.ECUs)),
	}
	log.Infof("built zone[%s]: ecus=%d size=%d", d.ID, len(d.ECUs), totalSize)
	return buf, info, nil
}

// ParseZonePackage validates and parses one Zone Package from b, which
// must cover the whole zone. entity names the zone in error messages
// (e.g. "zone[1]").
func ParseZonePackage(b []byte, entity string, opts *Options) (ZoneView, error) {
	log := opts.helper()

	if len(b) < ZoneHeaderSize {
		log.Errorf("%s: length mismatch: got %d bytes, want at least %d", entity, len(b), ZoneHeaderSize)
		return ZoneView{}, withEntity(ErrLengthMismatch, entity)
	}
	header := b[:ZoneHeaderSize]

	magic, _ := readUint32(header, zoneOffMagic)
	if magic != MagicZone {
		log.Errorf("%s: bad magic", entity)
		return ZoneView{}, withEntity(ErrBadMagic, entity)
	}

	formatVersion, _ := readUint32(header, zoneOffFormatVersion)
	if formatVersion != FormatVersion {
		log.Errorf("%s: unsupported format version %d", entity, formatVersion)
		return ZoneView{}, withEntity(ErrUnsupportedVersion, entity)
	}

	totalSize, _ := readUint32(header, zoneOffTotalSize)
	if totalSize != uint32(len(b)) {
		log.Errorf("%s: length mismatch: declared size %d, have %d bytes", entity, totalSize, len(b))
		return ZoneView{}, withEntity(ErrLengthMismatch, entity)
	}

	ecuCount := header[zoneOffECUCount]
	if int(ecuCount) > MaxECUsPerZone {
		log.Errorf("%s: %d ECUs exceeds max %d", entity, ecuCount, MaxECUsPerZone)
		return ZoneView{}, withEntity(ErrTooManyEntries, entity)
	}

	storedCRC, _ := readUint32(header, zoneOffCRC32)
	if checksum(b[ZoneHeaderSize:totalSize]) != storedCRC {
		log.Errorf("%s: CRC32 mismatch", entity)
		return ZoneView{}, withEntity(ErrCrcMismatch, entity)
	}

	ts, _ := readUint32(header, zoneOffTime)
	name := getString(header, zoneOffName, zoneOffNameSize)
	number := header[zoneOffNumber]

	type span struct {
		start, end uint32
	}
	var spans []span

	ecus := make([]ECUView, 0, ecuCount)
	byID := make(map[string]*ECUView, ecuCount)

	for i := 0; i < int(ecuCount); i++ {
		entOff := uint32(zoneECUTableOffset) + uint32(i)*zoneECUEntrySize
		ent := header[entOff : entOff+zoneECUEntrySize]

		ecuID := getString(ent, zecOffID, zecOffIDSize)
		ecuEntity := fmt.Sprintf("%s/ecu[%s]", entity, ecuID)

		ecuOffset, _ := readUint32(ent, zecOffOffset)
		ecuSize, _ := readUint32(ent, zecOffSize)
		metaSize, _ := readUint32(ent, zecOffMetaSize)
		priority := ent[zecOffPriority]

		if ecuSize == 0 {
			log.Errorf("%s: zero-sized ECU", ecuEntity)
			return ZoneView{}, withEntity(ErrZeroSizedEcu, ecuEntity)
		}
		if metaSize != ECUMetadataSize {
			log.Errorf("%s: length mismatch: declared metadata size %d, want %d", ecuEntity, metaSize, ECUMetadataSize)
			return ZoneView{}, withEntity(ErrLengthMismatch, ecuEntity)
		}
		if ecuOffset < ZoneHeaderSize || uint64(ecuOffset)+uint64(ecuSize) > uint64(totalSize) {
			log.Errorf("%s: offset %d size %d out of range", ecuEntity, ecuOffset, ecuSize)
			return ZoneView{}, withEntity(ErrOffsetOutOfRange, ecuEntity)
		}

		s := span{start: ecuOffset, end: ecuOffset + ecuSize}
		for _, other := range spans {
			if s.start < other.end && other.start < s.end {
				log.Errorf("%s: overlaps a previous ECU entry", ecuEntity)
				return ZoneView{}, withEntity(ErrOverlappingEntry, ecuEntity)
			}
		}
		spans = append(spans, s)

		if _, exists := byID[ecuID]; exists {
			log.Errorf("%s: duplicate ECU id", ecuEntity)
			return ZoneView{}, withEntity(ErrDuplicateEcuId, ecuEntity)
		}

		view, err := ParseECUPackage(b[ecuOffset:ecuOffset+ecuSize], ecuEntity, opts)
		if err != nil {
			return ZoneView{}, err
		}
		view.Priority = priority
		view.ID = ecuID // the table entry is authoritative for identity

		ecus = append(ecus, view)
		byID[ecuID] = &ecus[len(ecus)-1]
	}

	log.Infof("parsed %s: ecus=%d", entity, ecuCount)
	return ZoneView{
		ID:        getString(header, zoneOffID, zoneOffIDSize),
		Name:      name,
		Number:    number,
		Timestamp: time.Unix(int64(ts), 0),
		ECUs:      ecus,
		ByID:      byID,
	}, nil
}
