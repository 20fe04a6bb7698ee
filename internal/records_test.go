package internal

import (
	"encoding/binary"
	"runtime"
	"strings"
	"testing"
	"unsafe"

	"github.com/TShen/metatool/pkg"
	"github.com/stretchr/testify/assert"
)

// captureLogs sets up a logger that captures log output into a slice and returns a function to retrieve the logs.
func captureLogs() (restore func(), getLogs func() []string) {
	origLogger := globalLogger
	var logs []string
	logInit(func(msg string) {
		logs = append(logs, msg)
	})
	return func() { globalLogger = origLogger }, func() []string { return logs }
}

// encodeRecord builds the in-memory byte layout of one metadata record:
// 12-byte header, name padded to 4 bytes, then the description.
func encodeRecord(name, desc string, kind uint32) []byte {
	buf := make([]byte, 12, 64)
	binary.NativeEndian.PutUint32(buf[0:], uint32(len(name)))
	binary.NativeEndian.PutUint32(buf[4:], uint32(len(desc)))
	binary.NativeEndian.PutUint32(buf[8:], kind)
	buf = append(buf, name...)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	buf = append(buf, desc...)
	return buf
}

// fakeEnumerate substitutes the discovery core with a fixed record list for
// the duration of the test.
func fakeEnumerate(t *testing.T, records ...[]byte) {
	t.Helper()
	orig := enumerate
	enumerate = func(context any, visitor pkg.Visitor) {
		defer runtime.KeepAlive(records)
		stop := false
		for _, rec := range records {
			visitor(0x1000, (*pkg.RecordHeader)(unsafe.Pointer(&rec[0])), &stop, context)
			if stop {
				return
			}
		}
	}
	t.Cleanup(func() { enumerate = orig })
}

// TestRecordsList_PrintsAll tests that every record is printed and the exit code is 0.
func TestRecordsList_PrintsAll(t *testing.T) {
	restore, getLogs := captureLogs()
	defer restore()
	fakeEnumerate(t,
		encodeRecord("first", "", 1),
		encodeRecord("second", "described", 2),
	)

	code := RecordsList(RecordsOption{Kind: -1})
	assert.Equal(t, 0, code)

	logs := getLogs()
	assert.Len(t, logs, 2)
	assert.Contains(t, logs[0], `"first"`)
	assert.Contains(t, logs[1], `"second"`)
	assert.Contains(t, logs[1], "kind 2")
}

// TestRecordsList_KindFilter tests that only records with the requested kind are printed.
func TestRecordsList_KindFilter(t *testing.T) {
	restore, getLogs := captureLogs()
	defer restore()
	fakeEnumerate(t,
		encodeRecord("first", "", 1),
		encodeRecord("second", "", 2),
	)

	code := RecordsList(RecordsOption{Kind: 2})
	assert.Equal(t, 0, code)

	logs := getLogs()
	assert.Len(t, logs, 1)
	assert.Contains(t, logs[0], `"second"`)
}

// TestRecordsList_MaxStops tests that the max option stops enumeration early.
func TestRecordsList_MaxStops(t *testing.T) {
	restore, getLogs := captureLogs()
	defer restore()
	fakeEnumerate(t,
		encodeRecord("first", "", 1),
		encodeRecord("second", "", 1),
		encodeRecord("third", "", 1),
	)

	code := RecordsList(RecordsOption{Kind: -1, Max: 1})
	assert.Equal(t, 0, code)
	assert.Len(t, getLogs(), 1)
}

// TestRecordsList_NoRecords tests the exit code and message when nothing is discovered.
func TestRecordsList_NoRecords(t *testing.T) {
	restore, getLogs := captureLogs()
	defer restore()
	fakeEnumerate(t)

	code := RecordsList(RecordsOption{Kind: -1})
	assert.Equal(t, 1, code)
	assert.Contains(t, strings.Join(getLogs(), "\n"), "no metadata records")
}

// TestRecordsList_InvalidMax tests that a negative max fails validation.
func TestRecordsList_InvalidMax(t *testing.T) {
	restore, _ := captureLogs()
	defer restore()

	code := RecordsList(RecordsOption{Kind: -1, Max: -1})
	assert.Equal(t, 1, code)
}

// TestParseRecordsFlags tests flag parsing for the records command.
func TestParseRecordsFlags(t *testing.T) {
	opt, err := ParseRecordsFlags(nil)
	assert.NoError(t, err)
	assert.Equal(t, -1, opt.Kind)
	assert.Equal(t, 0, opt.Max)

	opt, err = ParseRecordsFlags([]string{"-kind", "3", "-max", "5"})
	assert.NoError(t, err)
	assert.Equal(t, 3, opt.Kind)
	assert.Equal(t, 5, opt.Max)

	_, err = ParseRecordsFlags([]string{"-notexist"})
	assert.Error(t, err)
}
