//go:build darwin

package pkg

import (
	"os"
	"sync"
	"syscall"
	"unsafe"
)

// Section name pair the producing toolchain emits into every Mach-O image
// that carries metadata records.
const (
	metadataSegmentName = "__DATA_CONST"
	metadataSectionName = "__metatool"
)

const (
	sysProcInfo         = 336 // SYS_PROC_INFO
	procInfoCallPidInfo = 2   // PROC_INFO_CALL_PIDINFO
	procPidRegionInfo   = 7   // PROC_PIDREGIONINFO

	vmProtRead = 0x1

	machoMagic64   = 0xfeedfacf
	mhExecute      = 0x2
	mhDylib        = 0x6
	mhBundle       = 0x8
	mhDylibInCache = 0x80000000

	lcSegment64 = 0x19

	// Region scan ceiling; a process has far fewer mapped regions than this.
	maxRegionScan = 100000
)

// machHeader64 matches the 64-bit mach_header_64 layout at every image base.
type machHeader64 struct {
	Magic      uint32
	CPUType    int32
	CPUSubType int32
	FileType   uint32
	NCmds      uint32
	SizeCmds   uint32
	Flags      uint32
	Reserved   uint32
}

type loadCommand struct {
	Cmd     uint32
	CmdSize uint32
}

type segmentCommand64 struct {
	Cmd      uint32
	CmdSize  uint32
	SegName  [16]byte
	VMAddr   uint64
	VMSize   uint64
	FileOff  uint64
	FileSize uint64
	MaxProt  uint32
	InitProt uint32
	NSects   uint32
	Flags    uint32
}

type section64 struct {
	SectName  [16]byte
	SegName   [16]byte
	Addr      uint64
	Size      uint64
	Offset    uint32
	Align     uint32
	RelOff    uint32
	NReloc    uint32
	Flags     uint32
	Reserved1 uint32
	Reserved2 uint32
	Reserved3 uint32
}

// procRegionInfo matches XNU's proc_regioninfo struct (96 bytes).
type procRegionInfo struct {
	Protection            uint32
	MaxProtection         uint32
	Inheritance           uint32
	Flags                 uint32
	Offset                uint64
	Behavior              uint32
	UserWiredCount        uint32
	UserTag               uint32
	PagesResident         uint32
	PagesSharedNowPrivate uint32
	PagesSwappedOut       uint32
	PagesDirtied          uint32
	RefCount              uint32
	ShadowDepth           uint32
	ShareMode             uint32
	PrivatePagesResident  uint32
	SharedPagesResident   uint32
	ObjID                 uint32
	Depth                 uint32
	Address               uint64
	Size                  uint64
}

// Process-wide cache of discovered bounds. Lazily built once and kept for
// the rest of the process; images observed on one enumeration are not
// re-parsed on the next, only newly loaded ones are.
var (
	sectionCacheOnce sync.Once
	sectionCache     *boundsCache
)

func sharedSectionCache() *boundsCache {
	sectionCacheOnce.Do(func() {
		sectionCache = newBoundsCache()
	})
	return sectionCache
}

// platformLocateSections rescans the loaded-image list, records any newly
// appeared image that carries the metadata section, and returns a snapshot
// of everything found so far. The snapshot is taken under the cache lock and
// walked without it, so caller-supplied visitors never run while the lock is
// held.
func platformLocateSections() []SectionBounds {
	cache := sharedSectionCache()
	for _, base := range loadedImageBases() {
		if !cache.observe(base) {
			continue
		}
		mh := (*machHeader64)(unsafe.Pointer(base))
		// Shared-cache images are system libraries and cannot carry user
		// metadata; skip them without walking their load commands.
		if mh.Flags&mhDylibInCache != 0 {
			continue
		}
		start, size := findMachOSection(base, metadataSegmentName, metadataSectionName)
		if start != 0 && size > 0 {
			cache.add(SectionBounds{ImageBase: base, Start: start, Size: size})
		}
	}
	return cache.snapshot()
}

// loadedImageBases walks the process's mapped regions via proc_pidinfo and
// returns the addresses that hold a 64-bit Mach-O header for an executable,
// dylib or bundle. Unreadable regions are never dereferenced.
func loadedImageBases() []uintptr {
	pid := os.Getpid()
	var bases []uintptr

	var addr uint64 = 1 // region flavor returns EINVAL for 0
	for i := 0; i < maxRegionScan; i++ {
		var ri procRegionInfo
		n, err := procPidInfo(pid, procPidRegionInfo, addr, unsafe.Pointer(&ri), int(unsafe.Sizeof(ri)))
		if err != nil || n == 0 || ri.Size == 0 {
			break
		}
		if ri.Protection&vmProtRead != 0 {
			base := uintptr(ri.Address)
			if *(*uint32)(unsafe.Pointer(base)) == machoMagic64 {
				ft := (*machHeader64)(unsafe.Pointer(base)).FileType
				if ft == mhExecute || ft == mhDylib || ft == mhBundle {
					bases = append(bases, base)
				}
			}
		}
		next := ri.Address + ri.Size
		if next <= addr {
			break
		}
		addr = next
	}
	return bases
}

// findMachOSection walks the load commands of the image at base looking for
// the named segment+section pair. Section addresses in the header are
// unslid, so the image's slide is recovered from the __TEXT segment before
// the runtime address is computed. Returns (0, 0) when the section is
// missing.
func findMachOSection(base uintptr, segName, sectName string) (uintptr, int) {
	mh := (*machHeader64)(unsafe.Pointer(base))
	lc := base + unsafe.Sizeof(machHeader64{})

	var textVMAddr uint64
	var sectAddr, sectSize uint64
	for i := uint32(0); i < mh.NCmds; i++ {
		cmd := (*loadCommand)(unsafe.Pointer(lc))
		if cmd.Cmd == lcSegment64 {
			seg := (*segmentCommand64)(unsafe.Pointer(lc))
			switch fixedCString(seg.SegName[:]) {
			case "__TEXT":
				textVMAddr = seg.VMAddr
			case segName:
				sect := lc + unsafe.Sizeof(segmentCommand64{})
				for j := uint32(0); j < seg.NSects; j++ {
					s := (*section64)(unsafe.Pointer(sect + uintptr(j)*unsafe.Sizeof(section64{})))
					if fixedCString(s.SectName[:]) == sectName {
						sectAddr = s.Addr
						sectSize = s.Size
					}
				}
			}
		}
		if cmd.CmdSize == 0 {
			break
		}
		lc += uintptr(cmd.CmdSize)
	}

	if sectAddr == 0 || sectSize == 0 {
		return 0, 0
	}
	slide := base - uintptr(textVMAddr)
	return slide + uintptr(sectAddr), int(sectSize)
}

func fixedCString(buf []byte) string {
	end := 0
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	return string(buf[:end])
}

// procPidInfo issues the raw proc_pidinfo syscall for the given flavor.
// proc_pidinfo has no x/sys/unix wrapper, so the syscall number is used
// directly.
func procPidInfo(pid, flavor int, arg uint64, buf unsafe.Pointer, bufSize int) (int, error) {
	r1, _, errno := syscall.Syscall6(
		sysProcInfo,
		procInfoCallPidInfo,
		uintptr(pid),
		uintptr(flavor),
		uintptr(arg),
		uintptr(buf),
		uintptr(bufSize),
	)
	if errno != 0 {
		return int(r1), errno
	}
	return int(r1), nil
}
