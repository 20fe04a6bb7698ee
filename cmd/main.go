package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/TShen/metatool/internal"
)

// main is the entry point of the application.
func main() {
	os.Exit(run(os.Args))
}

// run parses arguments and dispatches commands.
// Returns exit code.
func run(args []string) int {
	if len(args) < 2 {
		printHelp()
		return 1
	}

	cmd := args[1]
	cmdArgs := args[2:]

	switch cmd {
	case "help", "-h", "--help":
		printHelp()
		return 0
	case "records":
		return runRecords(cmdArgs)
	case "sections":
		return internal.SectionsList()
	case "images":
		return internal.ImagesShow()
	default:
		printError(fmt.Sprintf("unknown command: %s", cmd))
		printHelp()
		return 1
	}
}

// runRecords handles the "records" command.
func runRecords(args []string) int {
	opt, err := internal.ParseRecordsFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		printError(fmt.Sprintf("failed to parse flags: %v", err))
		return 1
	}
	return internal.RecordsList(opt)
}

// printHelp prints the usage information for the command line tool.
func printHelp() {
	fmt.Print(`Usage: metatool <command> [options]

Commands:
  help                Show this help message.
  records             List the metadata records embedded in the images of this process.
  sections            List the metadata sections found in the images of this process.
  images              Show the current process and the images carrying metadata.

records options:
  -kind <tag>         Only print records with the given kind tag.
  -max <n>            Stop after printing n records. 0 means no limit.

Examples:
  metatool records
  metatool records -kind 1 -max 10
  metatool sections
  metatool images

`)
}

// printError prints error messages to stderr.
func printError(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}
