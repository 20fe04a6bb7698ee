//go:build !darwin && !windows && (!linux || (!amd64 && !arm64))

package pkg

// platformLocateSections is the static-link fallback, compiled on targets
// with no dynamic-loader backend. The single registered section is returned
// unconditionally; if no build ever registered one, its size is zero and
// enumeration yields nothing. No locking and no loop: the range is fixed
// before the process starts running user code.
func platformLocateSections() []SectionBounds {
	start, end := staticSectionRange()
	return []SectionBounds{{Start: start, Size: int(end - start)}}
}
