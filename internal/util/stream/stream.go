package stream

import (
	"os"

	"github.com/mattn/go-isatty"
)

// FileOptimization is a best-effort kernel hint applied to an open
// file. Actions return os.ErrInvalid when they do not apply to the
// particular file type, which callers are expected to ignore.
type FileOptimization struct {
	Name   string
	Action func(fh *os.File, stat os.FileInfo) error
}

func IsTTY(fh interface{}) bool {
	f, isFh := fh.(*os.File)
	if !isFh {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
