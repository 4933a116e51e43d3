package codec

import (
	"fmt"
	"io"

	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/logging"
	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/types"
)

// Stream is the minimal capability the codec needs from a caller-owned
// backing store. It intentionally excludes Close/Seek: ownership and
// lifecycle of the underlying stream stay with the caller.
type Stream interface {
	io.ReaderAt
	io.WriterAt
}

// Resizer is implemented by streams that can be told their final length
// up front (e.g. a file or an in-memory buffer backing a super image).
// WriteImage uses it when given block devices, and skips it silently
// otherwise.
type Resizer interface {
	Truncate(size int64) error
}

// readerAtBlockReader adapts an io.ReaderAt to the blockReader capability
// LocateGeometry needs.
type readerAtBlockReader struct {
	r io.ReaderAt
}

func (b readerAtBlockReader) ReadBlockAt(offset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(sectionReader{b.r, offset}, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// sectionReader is a tiny io.Reader view over an io.ReaderAt starting at a
// fixed offset, avoiding a dependency on io.NewSectionReader's length cap.
type sectionReader struct {
	r   io.ReaderAt
	off int64
}

func (s sectionReader) Read(p []byte) (int, error) {
	n, err := s.r.ReadAt(p, s.off)
	s.off += int64(n)
	return n, err
}

// ReadImageSlot reads and validates geometry, then parses the metadata
// blob stored at the given primary slot index. It does not consult the
// backup metadata slots; a caller who wants that fallback calls
// ReadBackupImageSlot, which reads the slot at BackupSlotOffset. This core does not
// arbitrate which copy "wins" when primary and backup disagree.
func ReadImageSlot(r io.ReaderAt, slotIndex uint32, logger logging.Logger) (*types.LpMetadata, error) {
	if logger == nil {
		logger = logging.Nop{}
	}

	geom, metadataBase, err := LocateGeometry(readerAtBlockReader{r}, logger)
	if err != nil {
		return nil, err
	}

	slotOffset := SlotOffset(metadataBase, geom.MetadataMaxSize, slotIndex)

	// Read speculatively up to metadata_max_size, then trust
	// header.tables_size to know the real payload length.
	raw := make([]byte, geom.MetadataMaxSize)
	n, err := r.ReadAt(raw, slotOffset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read metadata slot %d at offset %d: %w", slotIndex, slotOffset, err)
	}
	raw = raw[:n]

	h, t, err := ParseMetadataBlob(raw)
	if err != nil {
		return nil, err
	}

	return &types.LpMetadata{
		Geometry:     geom,
		Header:       h,
		Partitions:   t.Partitions,
		Extents:      t.Extents,
		Groups:       t.Groups,
		BlockDevices: t.BlockDevices,
	}, nil
}

// ReadImage reads metadata slot 0.
func ReadImage(r io.ReaderAt, logger logging.Logger) (*types.LpMetadata, error) {
	return ReadImageSlot(r, 0, logger)
}

// ReadBackupImageSlot parses the metadata blob from the backup slot at the
// device tail, given the device size the caller already knows.
func ReadBackupImageSlot(r io.ReaderAt, deviceSize int64, slotIndex uint32, metadataMaxSize uint32, slotCount uint32) (*types.LpMetadata, error) {
	offset := BackupSlotOffset(deviceSize, metadataMaxSize, slotCount, slotIndex)
	raw := make([]byte, metadataMaxSize)
	n, err := r.ReadAt(raw, offset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read backup metadata slot %d at offset %d: %w", slotIndex, offset, err)
	}
	raw = raw[:n]

	h, t, err := ParseMetadataBlob(raw)
	if err != nil {
		return nil, err
	}
	return &types.LpMetadata{
		Header:       h,
		Partitions:   t.Partitions,
		Extents:      t.Extents,
		Groups:       t.Groups,
		BlockDevices: t.BlockDevices,
	}, nil
}

// WriteImage serializes geometry and the metadata blob and writes the
// full primary+backup layout: both geometry blocks, then for each slot in
// ascending order the primary copy followed by the backup copy (the
// backup copy is only written when m has at least one block device, since
// its offset is computed from the device's size). If the caller's stream
// implements Resizer and m has a block device, the stream's length is set
// to that device's size before any writes.
func WriteImage(w Stream, m *types.LpMetadata, logger logging.Logger) error {
	if logger == nil {
		logger = logging.Nop{}
	}

	if len(m.BlockDevices) > 0 {
		if rz, ok := w.(Resizer); ok {
			if err := rz.Truncate(int64(m.BlockDevices[0].Size)); err != nil {
				return fmt.Errorf("failed to size stream to device size: %w", err)
			}
		}
	}

	geomBlock := SerializeGeometry(m.Geometry)
	if _, err := w.WriteAt(geomBlock, types.PrimaryGeometryOffset); err != nil {
		return fmt.Errorf("failed to write primary geometry: %w", err)
	}
	if _, err := w.WriteAt(geomBlock, types.BackupGeometryOffset); err != nil {
		return fmt.Errorf("failed to write backup geometry: %w", err)
	}

	blob, err := BuildMetadataBlob(m)
	if err != nil {
		return err
	}
	if len(blob) > int(m.Geometry.MetadataMaxSize) {
		return fmt.Errorf("%w: serialized metadata blob is %d bytes, metadata_max_size is %d", types.ErrCapacity, len(blob), m.Geometry.MetadataMaxSize)
	}

	for slot := uint32(0); slot < m.Geometry.MetadataSlotCount; slot++ {
		primaryOffset := SlotOffset(types.PrimaryGeometryOffset, m.Geometry.MetadataMaxSize, slot)
		if _, err := w.WriteAt(blob, primaryOffset); err != nil {
			return fmt.Errorf("failed to write primary metadata slot %d: %w", slot, err)
		}

		if len(m.BlockDevices) == 0 {
			continue
		}
		backupOffset := BackupSlotOffset(int64(m.BlockDevices[0].Size), m.Geometry.MetadataMaxSize, m.Geometry.MetadataSlotCount, slot)
		if _, err := w.WriteAt(blob, backupOffset); err != nil {
			return fmt.Errorf("failed to write backup metadata slot %d: %w", slot, err)
		}
	}

	logger.Info(fmt.Sprintf("lpmetadata: wrote %d metadata slot(s), %d bytes each", m.Geometry.MetadataSlotCount, len(blob)))
	return nil
}
