package internal

import (
	"errors"
	"flag"
	"fmt"

	"github.com/TShen/metatool/pkg"
)

// enumerate and sections are indirections over the discovery core so tests
// can substitute synthetic data.
var (
	enumerate = pkg.Enumerate
	sections  = pkg.Sections
)

// ParseRecordsFlags parses flags for the "records" command and returns the
// corresponding RecordsOption.
func ParseRecordsFlags(args []string) (RecordsOption, error) {
	recordsFlagSet := flag.NewFlagSet("records", flag.ContinueOnError)
	kind := recordsFlagSet.Int("kind", -1, "only print records with this kind tag")
	max := recordsFlagSet.Int("max", 0, "stop after printing this many records (0 means no limit)")
	if err := recordsFlagSet.Parse(args); err != nil {
		return RecordsOption{}, err
	}

	return RecordsOption{Kind: *kind, Max: *max}, nil
}

type RecordsOption struct {
	Kind int
	Max  int
}

// Validate checks if the RecordsOption fields are valid.
func (opt *RecordsOption) Validate() error {
	if opt.Max < 0 {
		return errors.New("max must not be negative")
	}
	return nil
}

// recordTally carries per-run state through the enumeration context value.
type recordTally struct {
	printed int
}

// RecordsList prints every metadata record discovered in the images of the
// current process, optionally filtered by kind and capped at a maximum
// count. Returns an exit code.
func RecordsList(opt RecordsOption) int {
	if err := opt.Validate(); err != nil {
		log(err.Error())
		return 1
	}

	tally := &recordTally{}
	enumerate(tally, func(imageBase uintptr, header *pkg.RecordHeader, stop *bool, context any) {
		state := context.(*recordTally)
		if opt.Kind >= 0 && int(header.Kind) != opt.Kind {
			return
		}
		log(fmt.Sprintf("image 0x%x kind %d name %q desc %d bytes",
			imageBase, header.Kind, header.Name(), header.DescSize))
		state.printed++
		if opt.Max > 0 && state.printed >= opt.Max {
			*stop = true
		}
	})

	if tally.printed == 0 {
		log("no metadata records")
		return 1
	}
	return 0
}
