package constants

import (
	"os"
	"strconv"
)

const (
	// MaxChunkSize bounds the amount of bytes moved between two
	// consecutive cut-point checks in the streaming loop. It also
	// sizes the minimum contiguous region handed out by the ring
	// buffer, so it must stay well below the default buffer size.
	MaxChunkSize = 1024 * 1024

	// PartNumberWidth is the zero-padding of the part index in
	// generated filenames. Indexes beyond 999 widen the field
	// naturally instead of being truncated.
	PartNumberWidth = 3
)

type Incomparabe [0]func()

var LongTests bool

func init() {
	LongTests = isTruthy("TEST_CSVSPLIT_LONG")
}

func isTruthy(varname string) bool {
	envStr := os.Getenv(varname)
	if envStr != "" {
		if num, err := strconv.ParseUint(envStr, 10, 64); err != nil || num != 0 {
			return true
		}
	}
	return false
}
