package snapshot

import "errors"

var (
	// ErrAlreadyExists is returned by Write when the target path already
	// holds a file. A prior dump is never overwritten.
	ErrAlreadyExists = errors.New("dump file already exists")

	// ErrCorruptData is returned by Load when the file cannot be parsed
	// as a snapshot.
	ErrCorruptData = errors.New("corrupt dump file")
)
