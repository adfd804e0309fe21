// Package procinfo supplies the process metadata a dump file name is
// derived from. All queries are pure reads of process state.
package procinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultNameTemplate formats name, pid and capture timestamp into the
// canonical dump file name.
const DefaultNameTemplate = "%s-%d-%d.prom"

// Info describes the process at one instant. It is computed fresh per
// trigger and never persisted inside a snapshot.
type Info struct {
	TS   time.Time
	PID  int
	Name string
}

// Capture reads the current timestamp, pid and program name. The name is
// the base of the invocation path so it is always safe inside a file name.
func Capture() Info {
	return Info{
		TS:   time.Now(),
		PID:  os.Getpid(),
		Name: filepath.Base(os.Args[0]),
	}
}

// FileName renders the dump file name for this Info. The template receives
// name, pid and the timestamp in nanoseconds, in that order.
func (i Info) FileName(template string) string {
	return fmt.Sprintf(template, i.Name, i.PID, i.TS.UnixNano())
}
