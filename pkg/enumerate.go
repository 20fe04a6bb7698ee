package pkg

import "unsafe"

// Visitor is called once per metadata record discovered in the current
// process. imageBase is the base address of the image the record came from
// (0 if unknown). Setting *stop to true halts enumeration immediately,
// including any sections not yet walked. context is the opaque value passed
// to Enumerate, threaded through unchanged.
type Visitor func(imageBase uintptr, header *RecordHeader, stop *bool, context any)

// locateSections is the active platform backend. Exactly one implementation
// of platformLocateSections is compiled per target; this indirection exists
// so tests can substitute synthetic sections.
var locateSections = platformLocateSections

// Enumerate walks every metadata section currently visible in the process
// and invokes visitor once per record, synchronously on the calling
// goroutine. Records are visited in ascending address order within a
// section. There is no error channel: a platform with no qualifying
// sections, or no backend at all, simply produces zero calls.
func Enumerate(context any, visitor Visitor) {
	stop := false
	for _, sb := range locateSections() {
		if sb.Size <= 0 {
			continue
		}
		walkSection(sb, &stop, context, visitor)
		if stop {
			return
		}
	}
}

// Sections returns the bounds of every non-empty metadata section the active
// backend can currently see. The slice is a snapshot owned by the caller.
func Sections() []SectionBounds {
	all := locateSections()
	out := make([]SectionBounds, 0, len(all))
	for _, sb := range all {
		if sb.Size > 0 {
			out = append(out, sb)
		}
	}
	return out
}

// walkSection iterates the back-to-back records of one section. Each
// header's frame size is computed from its own name and description sizes;
// the loop stops once the computed next address reaches the section end, so
// no header at or past Start+Size is ever read. Well-formed framing is a
// contract with the producing toolchain: a header lying about its sizes
// cannot be detected here beyond the end-of-section bound.
func walkSection(sb SectionBounds, stop *bool, context any, visitor Visitor) {
	end := sb.Start + uintptr(sb.Size)
	for addr := sb.Start; addr < end && !*stop; {
		header := (*RecordHeader)(unsafe.Pointer(addr))
		visitor(sb.ImageBase, header, stop, context)
		addr += uintptr(frameSize(header))
	}
}
