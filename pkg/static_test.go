package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// resetStaticSection restores the unregistered state after a test.
func resetStaticSection(t *testing.T) {
	t.Helper()
	origStart, origEnd := staticStart, staticEnd
	t.Cleanup(func() { staticStart, staticEnd = origStart, origEnd })
}

func TestStaticSectionUnregistered(t *testing.T) {
	resetStaticSection(t)
	SetStaticSection(0, 0)

	start, end := staticSectionRange()
	assert.Equal(t, uintptr(0), start)
	assert.Equal(t, uintptr(0), end)
}

func TestStaticSectionRange(t *testing.T) {
	resetStaticSection(t)
	SetStaticSection(0x1000, 0x1400)

	start, end := staticSectionRange()
	assert.Equal(t, uintptr(0x1000), start)
	assert.Equal(t, uintptr(0x400), end-start)
}

// TestStaticSectionInverted checks that an inverted range collapses to an
// empty section instead of producing a negative size.
func TestStaticSectionInverted(t *testing.T) {
	resetStaticSection(t)
	SetStaticSection(0x2000, 0x1000)

	start, end := staticSectionRange()
	assert.Equal(t, start, end)
}
