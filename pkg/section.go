package pkg

import "unsafe"

// SectionBounds describes where a metadata section lives in the current
// process: the base address of the image that owns it, the address of the
// first record header, and the section length in bytes. A size of zero means
// the section is absent or empty and must be skipped.
type SectionBounds struct {
	ImageBase uintptr // base address of the owning loaded image, 0 if unknown
	Start     uintptr // address of the first byte of the section
	Size      int     // section length in bytes
}

const (
	// recordHeaderSize is the fixed prefix of every metadata record:
	// three 32-bit fields, see RecordHeader.
	recordHeaderSize = 12

	// nameAlign is the alignment of the description blob relative to the
	// name blob that precedes it.
	nameAlign = 4

	// ptrSize is the pointer size of the running process. Whole records are
	// padded to this alignment, and the Windows toolchain brackets section
	// payloads with one zeroed word of this size at each end.
	ptrSize = int(unsafe.Sizeof(uintptr(0)))
)

// RecordHeader is the fixed-size prefix of a metadata record. It is followed
// immediately by NameSize bytes of name (padded to 4-byte alignment) and
// DescSize bytes of description, with the whole record padded to pointer-size
// alignment. The producing toolchain packs records back to back with no
// index, so a record's end address is computed from its own header.
type RecordHeader struct {
	NameSize uint32
	DescSize uint32
	Kind     uint32
}

// Name returns the record's name blob. The bytes live inside the owning
// section; callers must not retain them past the enumeration call.
func (h *RecordHeader) Name() []byte {
	if h.NameSize == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Add(unsafe.Pointer(h), recordHeaderSize)), h.NameSize)
}

// Description returns the record's description blob, which starts after the
// name blob rounded up to 4-byte alignment.
func (h *RecordHeader) Description() []byte {
	if h.DescSize == 0 {
		return nil
	}
	off := recordHeaderSize + alignUp(int(h.NameSize), nameAlign)
	return unsafe.Slice((*byte)(unsafe.Add(unsafe.Pointer(h), off)), h.DescSize)
}

// frameSize returns the full byte length of the record starting at h,
// including both blobs and all padding. Adding it to h's address yields the
// next record header.
func frameSize(h *RecordHeader) int {
	return alignUp(recordHeaderSize+alignUp(int(h.NameSize), nameAlign)+int(h.DescSize), ptrSize)
}

// alignUp rounds n up to the next multiple of align. align must be a power
// of two.
func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// trimSentinelBounds strips the zeroed pointer-size words that the producing
// toolchain emits at both ends of a PE section payload. The second return
// value is false when the section is too small to contain anything besides
// the sentinels, in which case it must be treated as absent.
func trimSentinelBounds(sb SectionBounds) (SectionBounds, bool) {
	if sb.Size <= 2*ptrSize {
		return SectionBounds{}, false
	}
	sb.Start += uintptr(ptrSize)
	sb.Size -= 2 * ptrSize
	return sb, true
}
