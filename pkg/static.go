package pkg

// Statically linked builds have exactly one metadata section, fixed at link
// time. The producing build registers its range from generated startup code;
// the static-fallback backend returns it unconditionally.

var staticStart, staticEnd uintptr

// SetStaticSection records the [start, end) range of the statically linked
// metadata section. Intended to be called once from an init function emitted
// by the producing toolchain, before any enumeration runs.
func SetStaticSection(start, end uintptr) {
	staticStart, staticEnd = start, end
}

// staticSectionRange returns the registered range. When nothing was
// registered, or the range is inverted, both values collapse to an empty
// section that the walker skips.
func staticSectionRange() (uintptr, uintptr) {
	if staticEnd < staticStart {
		return staticStart, staticStart
	}
	return staticStart, staticEnd
}
