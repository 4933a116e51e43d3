package types

import (
	"encoding/binary"
	"strconv"
)

const (
	// HeaderMagic identifies a valid metadata header.
	HeaderMagic uint32 = 0x414C5030

	// HeaderMajorVersion is the major version this codec writes. The
	// major version of a header being parsed is not checked.
	HeaderMajorVersion uint16 = 10

	// TableDescriptorSize is the packed size of one table descriptor:
	// offset(4) + num_entries(4) + entry_size(4).
	TableDescriptorSize = 12

	// HeaderSize is the packed size of the Header record: magic(4) +
	// major_version(2) + minor_version(2) + header_size(4) +
	// header_checksum(32) + tables_size(4) + tables_checksum(32) +
	// 4*TableDescriptorSize(48) + flags(4) + reserved(124).
	HeaderSize = 4 + 2 + 2 + 4 + checksumSize + 4 + checksumSize + 4*TableDescriptorSize + 4 + headerReservedSize

	// header_checksum field offset within the encoded header: [12, 44).
	headerChecksumOffset = 12
	headerChecksumEnd    = headerChecksumOffset + checksumSize

	headerTablesSizeOffset     = 44
	headerTablesChecksumOffset = 48
	headerTablesChecksumEnd    = headerTablesChecksumOffset + checksumSize

	headerDescriptorsOffset = headerTablesChecksumEnd // 80
	headerFlagsOffset       = headerDescriptorsOffset + 4*TableDescriptorSize // 128
	headerReservedOffset    = headerFlagsOffset + 4                          // 132
)

// HeaderFlag bits.
const (
	HeaderFlagVirtualABDevice uint32 = 1
)

// TableDescriptor locates one of the four entity tables within the
// concatenated tables buffer.
type TableDescriptor struct {
	Offset     uint32
	NumEntries uint32
	EntrySize  uint32
}

func (d *TableDescriptor) encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], d.Offset)
	binary.LittleEndian.PutUint32(buf[4:8], d.NumEntries)
	binary.LittleEndian.PutUint32(buf[8:12], d.EntrySize)
}

func decodeTableDescriptor(buf []byte) TableDescriptor {
	return TableDescriptor{
		Offset:     binary.LittleEndian.Uint32(buf[0:4]),
		NumEntries: binary.LittleEndian.Uint32(buf[4:8]),
		EntrySize:  binary.LittleEndian.Uint32(buf[8:12]),
	}
}

// Header is the fixed-size descriptor that precedes the tables buffer in
// every metadata slot.
type Header struct {
	Magic           uint32
	MajorVersion    uint16
	MinorVersion    uint16
	HeaderSize      uint32
	HeaderChecksum  Checksum32
	TablesSize      uint32
	TablesChecksum  Checksum32
	Partitions      TableDescriptor
	Extents         TableDescriptor
	Groups          TableDescriptor
	BlockDevices    TableDescriptor
	Flags           uint32
	reserved        reserved124
}

// Encode writes the header's HeaderSize-byte payload into buf.
func (h *Header) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.MajorVersion)
	binary.LittleEndian.PutUint16(buf[6:8], h.MinorVersion)
	binary.LittleEndian.PutUint32(buf[8:12], h.HeaderSize)
	copy(buf[headerChecksumOffset:headerChecksumEnd], h.HeaderChecksum[:])
	binary.LittleEndian.PutUint32(buf[headerTablesSizeOffset:headerTablesSizeOffset+4], h.TablesSize)
	copy(buf[headerTablesChecksumOffset:headerTablesChecksumEnd], h.TablesChecksum[:])

	descs := [4]TableDescriptor{h.Partitions, h.Extents, h.Groups, h.BlockDevices}
	for i, d := range descs {
		off := headerDescriptorsOffset + i*TableDescriptorSize
		d.encode(buf[off : off+TableDescriptorSize])
	}

	binary.LittleEndian.PutUint32(buf[headerFlagsOffset:headerFlagsOffset+4], h.Flags)
	copy(buf[headerReservedOffset:headerReservedOffset+headerReservedSize], h.reserved[:])
}

// DecodeHeader reads a Header from the first HeaderSize bytes of buf.
func DecodeHeader(buf []byte) Header {
	var h Header
	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	h.MajorVersion = binary.LittleEndian.Uint16(buf[4:6])
	h.MinorVersion = binary.LittleEndian.Uint16(buf[6:8])
	h.HeaderSize = binary.LittleEndian.Uint32(buf[8:12])
	copy(h.HeaderChecksum[:], buf[headerChecksumOffset:headerChecksumEnd])
	h.TablesSize = binary.LittleEndian.Uint32(buf[headerTablesSizeOffset : headerTablesSizeOffset+4])
	copy(h.TablesChecksum[:], buf[headerTablesChecksumOffset:headerTablesChecksumEnd])

	off := headerDescriptorsOffset
	h.Partitions = decodeTableDescriptor(buf[off : off+TableDescriptorSize])
	off += TableDescriptorSize
	h.Extents = decodeTableDescriptor(buf[off : off+TableDescriptorSize])
	off += TableDescriptorSize
	h.Groups = decodeTableDescriptor(buf[off : off+TableDescriptorSize])
	off += TableDescriptorSize
	h.BlockDevices = decodeTableDescriptor(buf[off : off+TableDescriptorSize])

	h.Flags = binary.LittleEndian.Uint32(buf[headerFlagsOffset : headerFlagsOffset+4])
	copy(h.reserved[:], buf[headerReservedOffset:headerReservedOffset+headerReservedSize])
	return h
}

// HeaderChecksumWindow returns the [start, end) byte range of the
// header_checksum field within an encoded header, for zero-then-hash use.
func HeaderChecksumWindow() (int, int) {
	return headerChecksumOffset, headerChecksumEnd
}

// String renders a human-readable summary, used by cmd/lpdump.
func (h *Header) String() string {
	return "version=" + strconv.FormatUint(uint64(h.MajorVersion), 10) + "." + strconv.FormatUint(uint64(h.MinorVersion), 10) +
		" header_size=" + strconv.FormatUint(uint64(h.HeaderSize), 10) +
		" tables_size=" + strconv.FormatUint(uint64(h.TablesSize), 10) +
		" flags=0x" + strconv.FormatUint(uint64(h.Flags), 16)
}
