//go:build linux && (amd64 || arm64)

package pkg

import (
	"debug/elf"
	"os"
	"strings"
	"unsafe"
)

// ELF note segments are self-identifying: the toolchain emits metadata
// records as vendor notes, whose framing is exactly the note framing this
// walker consumes. Every PT_NOTE segment of every image is therefore
// reported as-is; distinguishing this tool's notes from any other vendor's
// is left to the visitor, which reads the record names anyway.

// platformLocateSections walks each loaded image's program headers and
// collects every note segment. The kernel-reported map list is re-read on
// every call, so images loaded since the previous enumeration appear without
// any caching layer.
func platformLocateSections() []SectionBounds {
	var bounds []SectionBounds
	for _, base := range loadedImageBases() {
		bounds = append(bounds, imageNoteSegments(base)...)
	}
	return bounds
}

// imageNoteSegments reads the ELF header mapped at base and returns bounds
// for each PT_NOTE program header. Shared objects record unslid virtual
// addresses, so their base is added back; fixed-position executables already
// hold absolute addresses.
func imageNoteSegments(base uintptr) []SectionBounds {
	ident := unsafe.Slice((*byte)(unsafe.Pointer(base)), elf.EI_NIDENT)
	if string(ident[:4]) != elf.ELFMAG || elf.Class(ident[elf.EI_CLASS]) != elf.ELFCLASS64 {
		return nil
	}

	eh := (*elf.Header64)(unsafe.Pointer(base))
	slide := base
	if elf.Type(eh.Type) == elf.ET_EXEC {
		slide = 0
	}

	var bounds []SectionBounds
	stride := uintptr(eh.Phentsize)
	for i := uintptr(0); i < uintptr(eh.Phnum); i++ {
		ph := (*elf.Prog64)(unsafe.Pointer(base + uintptr(eh.Phoff) + i*stride))
		if elf.ProgType(ph.Type) != elf.PT_NOTE || ph.Memsz == 0 {
			continue
		}
		bounds = append(bounds, SectionBounds{
			ImageBase: base,
			Start:     slide + uintptr(ph.Vaddr),
			Size:      int(ph.Memsz),
		})
	}
	return bounds
}

// loadedImageBases parses /proc/self/maps and returns the base address of
// every file-backed image: the first readable mapping of each path at file
// offset zero. The program headers live inside that first mapping, so they
// can be walked in place.
func loadedImageBases() []uintptr {
	raw, err := os.ReadFile("/proc/self/maps")
	if err != nil {
		return nil
	}

	var bases []uintptr
	seen := make(map[string]bool)
	for _, line := range strings.Split(string(raw), "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 6 {
			continue
		}
		if !strings.Contains(fields[1], "r") {
			continue
		}
		if offset, ok := parseHexUintptr(fields[2]); !ok || offset != 0 {
			continue
		}
		path := strings.Join(fields[5:], " ")
		path = strings.TrimSuffix(path, " (deleted)")
		if !strings.HasPrefix(path, "/") || seen[path] {
			continue
		}

		rangeParts := strings.SplitN(fields[0], "-", 2)
		if len(rangeParts) != 2 {
			continue
		}
		start, ok := parseHexUintptr(rangeParts[0])
		if !ok {
			continue
		}
		seen[path] = true
		bases = append(bases, start)
	}
	return bases
}

func parseHexUintptr(s string) (uintptr, bool) {
	if s == "" {
		return 0, false
	}
	var out uintptr
	for _, r := range s {
		out <<= 4
		switch {
		case r >= '0' && r <= '9':
			out += uintptr(r - '0')
		case r >= 'a' && r <= 'f':
			out += uintptr(r-'a') + 10
		case r >= 'A' && r <= 'F':
			out += uintptr(r-'A') + 10
		default:
			return 0, false
		}
	}
	return out, true
}
