package pkg

import "sync"

// boundsCache accumulates the section bounds discovered as images load. On
// Darwin it is mutated while walking loader-reported images, so the critical
// sections are kept trivial: mark an image seen, append one bounds record,
// or copy the list out. Visitors never run while the lock is held.
type boundsCache struct {
	mu     sync.Mutex
	seen   map[uintptr]bool
	bounds []SectionBounds
}

func newBoundsCache() *boundsCache {
	return &boundsCache{seen: make(map[uintptr]bool)}
}

// observe marks the image at base as inspected and reports whether it was
// new. Images are parsed at most once; re-enumerations skip bases already
// observed, whether or not they carried a section.
func (c *boundsCache) observe(base uintptr) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[base] {
		return false
	}
	c.seen[base] = true
	return true
}

// add appends one discovered section. Append-only: cached bounds are never
// removed, matching the platform's no-unload model for metadata-bearing
// images.
func (c *boundsCache) add(sb SectionBounds) {
	c.mu.Lock()
	c.bounds = append(c.bounds, sb)
	c.mu.Unlock()
}

// snapshot returns a point-in-time copy of the accumulated bounds. The copy
// is taken under the lock and owned by the caller, so walking it can invoke
// arbitrary visitor code without holding anything.
func (c *boundsCache) snapshot() []SectionBounds {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SectionBounds, len(c.bounds))
	copy(out, c.bounds)
	return out
}
