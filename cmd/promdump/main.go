package main

import (
	"fmt"
	"io"
	"os"

	"github.com/promdump/promdump/internal/logging"
	"github.com/promdump/promdump/internal/report"
	"github.com/promdump/promdump/internal/snapshot"
)

const usage = `promdump - offline inspection of heap object graph dumps

Usage:
    promdump report <path>

Options:
    <path>   The path to the prom dump file.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) != 2 || args[0] != "report" {
		fmt.Fprint(stderr, usage)
		return 2
	}

	// usage-level failure before any read
	path := args[1]
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(stderr, "promdump: %v\n", err)
		fmt.Fprint(stderr, usage)
		return 2
	}

	store := snapshot.NewStore(nil, nil, logging.Nop{}, false)
	snap, err := store.Load(path)
	if err != nil {
		fmt.Fprintf(stderr, "promdump: %v\n", err)
		return 1
	}

	if err := report.Report(snap, stdout); err != nil {
		fmt.Fprintf(stderr, "promdump: %v\n", err)
		return 1
	}
	return 0
}
