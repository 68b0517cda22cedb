// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vpkg

import (
	"fmt"
)

// Vehicle metadata field offsets, within a 12288-byte record. See
// DESIGN.md for the resolution of the model/model-year boundary note.
const (
	vehOffMagic           = 0
	vehOffFormatVersion   = 4
	vehOffTotalSize       = 8
	vehOffVIN             = 12
	vehOffModel           = 29
	vehOffModelSize       = modelFieldWidth
	vehOffModelYear       = 61
	vehOffRegion          = 63
	vehOffMasterSWVersion = 76
	vehOffMasterSWString  = 80
	vehOffMasterSWStrSize = 32
	vehOffZoneCount       = 128
	vehOffECUCount        = 129
	vehOffCRC32           = 144
	// offset 704 (vehicleZoneTableOffset + 16*32) is the reserved, unparsed ECU
	// quick-reference region; left zero, never read.
)

// Vehicle zone reference table entry field offsets, within a
// vehicleZoneEntrySize-byte record.
const (
	vzeOffID       = 0
	vzeOffIDSize   = 16
	vzeOffOffset   = 16
	vzeOffSize     = 20
	vzeOffNumber   = 24
	vzeOffECUCount = 25
)

// VehicleDescriptor is the caller-supplied build input for a Vehicle Package.
type VehicleDescriptor struct {
	VIN              string
	Model            string
	ModelYear        uint16
	Region           uint8
	MasterSWVersion  string
	Zones            []ZoneDescriptor
}

// VehicleView is a parsed, immutable view of a Vehicle Package.
type VehicleView struct {
	VIN             string
	Model           string
	ModelYear       uint16
	Region          uint8
	MasterSWVersion uint32
	Zones           []ZoneView          // in zone reference table order
	ByID            map[string]*ZoneView
}

// BuildVehiclePackage builds a Vehicle Package: a 12288-byte metadata
// block carrying vehicle identity and a zone reference table, followed
// by the concatenated Zone Packages it describes, in the order given.
func BuildVehiclePackage(d VehicleDescriptor, opts *Options) ([]byte, error) {
	log := opts.helper()
	now := opts.clock()()

	if len(d.VIN) != vinLength {
		log.Errorf("build vehicle package: VIN %q is not %d characters", d.VIN, vinLength)
		return nil, withEntity(ErrBadVin, d.VIN)
	}
	if len(d.Zones) == 0 {
		log.Errorf("build vehicle package: must contain at least one zone")
		return nil, ErrVehicleMustContainZone
	}
	if len(d.Zones) > MaxZonesPerVehicle {
		log.Errorf("build vehicle package: %d zones exceeds max %d", len(d.Zones), MaxZonesPerVehicle)
		return nil, ErrTooManyEntries
	}

	masterSW, err := ParseVersion(d.MasterSWVersion)
	if err != nil {
		log.Errorf("build vehicle package: bad master SW version %q: %v", d.MasterSWVersion, err)
		return nil, wrap(ErrUnsupportedVersion, "master-sw", err)
	}

	var payload []byte
	type entry struct {
		info   ZoneInfo
		offset uint32
	}
	entries := make([]entry, 0, len(d.Zones))
	offset := uint32(VehicleMetadataSize)
	var totalECUs int

	for i, zoneDesc := range d.Zones {
		entity := fmt.Sprintf("zone[%d:%s]", i, zoneDesc.ID)
		pkg, info, err := BuildZonePackage(zoneDesc, now, opts)
		if err != nil {
			log.Errorf("build %s failed: %v", entity, err)
			return nil, err
		}
		entries = append(entries, entry{info: info, offset: offset})
		payload = append(payload, pkg...)
		offset += info.Size
		totalECUs += len(zoneDesc.ECUs)
	}
	if totalECUs > 255 {
		log.Errorf("build vehicle package: %d ECUs do not fit the 1-byte total", totalECUs)
		return nil, ErrEcuCountMismatch
	}

	totalSize := VehicleMetadataSize + uint32(len(payload))
	buf := make([]byte, totalSize)
	meta := buf[:VehicleMetadataSize]

	_ = putUint32(meta, vehOffMagic, MagicVehicle)
	_ = putUint32(meta, vehOffFormatVersion, FormatVersion)
	_ = putUint32(meta, vehOffTotalSize, totalSize)
	putString(meta, vehOffVIN, vinLength, d.VIN)
	model := d.Model
	if len(model) > modelFieldMaxLen {
		model = model[:modelFieldMaxLen]
	}
	putString(meta, vehOffModel, vehOffModelSize, model)
	_ = putUint16(meta, vehOffModelYear, d.ModelYear)
	meta[vehOffRegion] = d.Region
	_ = putUint32(meta, vehOffMasterSWVersion, masterSW)
	putString(meta, vehOffMasterSWString, vehOffMasterSWStrSize, d.MasterSWVersion)
	meta[vehOffZoneCount] = uint8(len(d.Zones))
	meta[vehOffECUCount] = uint8(totalECUs)

	for i, e := range entries {
		entOff := vehicleZoneTableOffset + uint32(i)*vehicleZoneEntrySize
		ent := meta[entOff : entOff+vehicleZoneEntrySize]
		putString(ent, vzeOffID, vzeOffIDSize, e.info.ID)
		_ = putUint32(ent, vzeOffOffset, e.offset)
		_ = putUint32(ent, vzeOffSize, e.info.Size)
		ent[vzeOffNumber] = e.info.Number
		ent[vzeOffECUCount] = e.info.ECUCount
	}

	copy(buf[VehicleMetadataSize:], payload)

	crc := checksum(buf[VehicleMetadataSize:])
	_ = putUint32(meta, vehOffCRC32, crc)

	log.Infof("built vehicle package: vin=%s zones=%d ecus=%d size=%d", d.VIN, len(d.Zones), totalECUs, totalSize)
	return buf, nil
}

// ParseVehiclePackage validates and parses a Vehicle Package from b.
func ParseVehiclePackage(b []byte, opts *Options) (VehicleView, error) {
	log := opts.helper()
	maxSize := opts.maxVehicleSize()

	if uint64(len(b)) > uint64(maxSize) {
		log.Errorf("parse vehicle package: input of %d bytes exceeds max %d", len(b), maxSize)
		return VehicleView{}, ErrOversizedInput
	}
	if len(b) < VehicleMetadataSize {
		log.Errorf("parse vehicle package: length mismatch: got %d bytes, want at least %d", len(b), VehicleMetadataSize)
		return VehicleView{}, ErrLengthMismatch
	}
	meta := b[:VehicleMetadataSize]

	magic, _ := readUint32(meta, vehOffMagic)
	if magic != MagicVehicle {
		log.Errorf("parse vehicle package: bad magic")
		return VehicleView{}, ErrBadMagic
	}

	formatVersion, _ := readUint32(meta, vehOffFormatVersion)
	if formatVersion != FormatVersion {
		log.Errorf("parse vehicle package: unsupported format version %d", formatVersion)
		return VehicleView{}, ErrUnsupportedVersion
	}

	totalSize, _ := readUint32(meta, vehOffTotalSize)
	if totalSize != uint32(len(b)) {
		log.Errorf("parse vehicle package: length mismatch: declared size %d, have %d bytes", totalSize, len(b))
		return VehicleView{}, ErrLengthMismatch
	}

	zoneCount := meta[vehOffZoneCount]
	if int(zoneCount) > MaxZonesPerVehicle {
		log.Errorf("parse vehicle package: %d zones exceeds max %d", zoneCount, MaxZonesPerVehicle)
		return VehicleView{}, ErrTooManyEntries
	}

	storedCRC, _ := readUint32(meta, vehOffCRC32)
	if checksum(b[VehicleMetadataSize:totalSize]) != storedCRC {
		log.Errorf("parse vehicle package: CRC32 mismatch")
		return VehicleView{}, ErrCrcMismatch
	}

	declaredECUCount := meta[vehOffECUCount]
	modelYear, _ := readUint16(meta, vehOffModelYear)

	type span struct{ start, end uint32 }
	var spans []span

	zones := make([]ZoneView, 0, zoneCount)
	byID := make(map[string]*ZoneView, zoneCount)
	var sumECUs int

	for i := 0; i < int(zoneCount); i++ {
		entOff := uint32(vehicleZoneTableOffset) + uint32(i)*vehicleZoneEntrySize
		ent := meta[entOff : entOff+vehicleZoneEntrySize]

		zoneID := getString(ent, vzeOffID, vzeOffIDSize)
		entity := fmt.Sprintf("zone[%d:%s]", i, zoneID)

		zoneOffset, _ := readUint32(ent, vzeOffOffset)
		zoneSize, _ := readUint32(ent, vzeOffSize)

		if zoneOffset < VehicleMetadataSize || uint64(zoneOffset)+uint64(zoneSize) > uint64(totalSize) {
			log.Errorf("%s: offset out of range", entity)
			return VehicleView{}, withEntity(ErrOffsetOutOfRange, entity)
		}

		s := span{start: zoneOffset, end: zoneOffset + zoneSize}
		for _, other := range spans {
			if s.start < other.end && other.start < s.end {
				log.Errorf("%s: overlaps a previous zone entry", entity)
				return VehicleView{}, withEntity(ErrOverlappingEntry, entity)
			}
		}
		spans = append(spans, s)

		view, err := ParseZonePackage(b[zoneOffset:zoneOffset+zoneSize], entity, opts)
		if err != nil {
			log.Errorf("%s: %v", entity, err)
			return VehicleView{}, err
		}

		sumECUs += len(view.ECUs)
		zones = append(zones, view)
		byID[zoneID] = &zones[len(zones)-1]
	}

	if sumECUs != int(declaredECUCount) {
		log.Errorf("parse vehicle package: ECU count mismatch: zones hold %d, declared %d", sumECUs, declaredECUCount)
		return VehicleView{}, ErrEcuCountMismatch
	}

	log.Infof("parsed vehicle package: vin=%s zones=%d", getString(meta, vehOffVIN, vinLength), zoneCount)

	return VehicleView{
		VIN:             getString(meta, vehOffVIN, vinLength),
		Model:           getString(meta, vehOffModel, vehOffModelSize),
		ModelYear:       modelYear,
		Region:          meta[vehOffRegion],
		MasterSWVersion: func() uint32 { v, _ := readUint32(meta, vehOffMasterSWVersion); return v }(),
		Zones:           zones,
		ByID:            byID,
	}, nil
}
