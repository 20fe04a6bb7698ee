//go:build windows

package pkg

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// metadataSectionName is the 8-byte PE section name the producing toolchain
// emits. Long (string-table) section names are not supported.
const metadataSectionName = ".mtool"

// maxModuleCount caps the module enumeration, consistent with Microsoft
// sample code. Modules past the cap are a documented limitation, not an
// error.
const maxModuleCount = 1024

const (
	imageDOSSignature = 0x5a4d     // "MZ"
	imageNTSignature  = 0x00004550 // "PE\0\0"

	dosLfanewOffset     = 0x3c
	fileHeaderSize      = 20
	sectionHeaderSize   = 40
	ntSignatureSize     = 4
	shortSectionNameLen = 8
)

// imageFileHeader matches IMAGE_FILE_HEADER.
type imageFileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

// imageSectionHeader matches IMAGE_SECTION_HEADER.
type imageSectionHeader struct {
	Name                 [8]byte
	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLinenumbers uint32
	NumberOfRelocations  uint16
	NumberOfLinenumbers  uint16
	Characteristics      uint32
}

// platformLocateSections gathers all module handles first and only then
// inspects them. The split matters: walking a section eventually runs
// caller-supplied visitor code, which could in principle load or unload a
// module, and the handle list must not be iterated while that happens.
func platformLocateSections() []SectionBounds {
	var modules [maxModuleCount]windows.Handle
	var byteCountNeeded uint32
	err := windows.EnumProcessModules(
		windows.CurrentProcess(),
		&modules[0],
		uint32(unsafe.Sizeof(modules)),
		&byteCountNeeded,
	)
	if err != nil {
		return nil
	}
	moduleCount := int(byteCountNeeded) / int(unsafe.Sizeof(windows.Handle(0)))
	if moduleCount > len(modules) {
		moduleCount = len(modules)
	}

	bounds := make([]SectionBounds, 0, moduleCount)
	for i := 0; i < moduleCount; i++ {
		if sb, ok := findModuleSection(uintptr(modules[i]), metadataSectionName); ok {
			bounds = append(bounds, sb)
		}
	}
	return bounds
}

// findModuleSection parses the PE headers of the loaded module at base and
// returns the bounds of the named section with its sentinel words stripped.
// A module whose headers fail validation is skipped, never fatal.
func findModuleSection(base uintptr, sectionName string) (SectionBounds, bool) {
	if base == 0 {
		return SectionBounds{}, false
	}

	// The module handle points directly at the DOS header.
	if *(*uint16)(unsafe.Pointer(base)) != imageDOSSignature {
		return SectionBounds{}, false
	}
	lfanew := *(*int32)(unsafe.Pointer(base + dosLfanewOffset))
	if lfanew <= 0 {
		return SectionBounds{}, false
	}

	ntBase := base + uintptr(lfanew)
	if *(*uint32)(unsafe.Pointer(ntBase)) != imageNTSignature {
		return SectionBounds{}, false
	}

	// The optional header is skipped by its declared size, which keeps the
	// walk identical for PE32 and PE32+ images.
	fileHeader := (*imageFileHeader)(unsafe.Pointer(ntBase + ntSignatureSize))
	section := ntBase + ntSignatureSize + fileHeaderSize + uintptr(fileHeader.SizeOfOptionalHeader)

	var want [shortSectionNameLen]byte
	copy(want[:], sectionName)

	for i := uint16(0); i < fileHeader.NumberOfSections; i++ {
		sh := (*imageSectionHeader)(unsafe.Pointer(section + uintptr(i)*sectionHeaderSize))
		if sh.VirtualAddress == 0 || sh.Name != want {
			continue
		}
		// The on-disk size can lie; take the smaller of the two.
		size := sh.VirtualSize
		if sh.SizeOfRawData < size {
			size = sh.SizeOfRawData
		}
		if size == 0 {
			continue
		}
		sb := SectionBounds{
			ImageBase: base,
			Start:     base + uintptr(sh.VirtualAddress),
			Size:      int(size),
		}
		// The toolchain brackets the payload with one zeroed pointer-size
		// word at each end; strip them before reporting.
		return trimSentinelBounds(sb)
	}
	return SectionBounds{}, false
}
