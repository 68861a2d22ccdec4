package stream

import (
	"os"

	"golang.org/x/sys/unix"
)

var ReadOptimizations = []FileOptimization{
	{
		Name: "fadvise-sequential",
		Action: func(fh *os.File, stat os.FileInfo) error {
			if !stat.Mode().IsRegular() {
				return os.ErrInvalid
			}
			return unix.Fadvise(int(fh.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
		},
	},
}

var WriteOptimizations = []FileOptimization{
	{
		Name: "fadvise-noreuse",
		Action: func(fh *os.File, stat os.FileInfo) error {
			if !stat.Mode().IsRegular() {
				return os.ErrInvalid
			}
			return unix.Fadvise(int(fh.Fd()), 0, 0, unix.FADV_NOREUSE)
		},
	},
}
