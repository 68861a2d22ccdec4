// Package csvsplit partitions a large header-prefixed text file (CSV
// or similar) into a sequence of part files, each beginning with the
// original header line. The input is read exactly once, sequentially,
// through a quantized ring buffer, so memory stays bounded regardless
// of file size.
package csvsplit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/anjor/csvsplit/internal/digest"
	"github.com/ipfs/go-qringbuf"
)

// ErrEmptyInput marks a zero-byte input: a file without even a header
// line cannot be split.
var ErrEmptyInput = errors.New("empty input file, no header line present")

type Splitter struct {
	cfg config

	inputPath   string
	inputSize   int64
	headerBytes []byte // header line as found on disk, terminator included when present

	newDigester digest.Initializer
	progressOut io.Writer

	qrb         *qringbuf.QuantizedRingBuffer
	statSummary statSummary
}

// NewSplitter captures the input's size and header line. The header is
// read exactly once, here: none of the splitting strategies ever
// revisit it, they start streaming at the first data byte.
func NewSplitter(inputPath string) (*Splitter, error) {

	stat, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("unable to stat '%s': %s", inputPath, err)
	}
	if stat.Size() == 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrEmptyInput, inputPath)
	}

	headerBytes, err := readHeader(inputPath)
	if err != nil {
		return nil, err
	}

	s := &Splitter{
		cfg:         defaultConfig(),
		inputPath:   inputPath,
		inputSize:   stat.Size(),
		headerBytes: headerBytes,
	}
	s.statSummary = statSummary{
		EventType:   "summary",
		InputPath:   inputPath,
		InputBytes:  stat.Size(),
		HeaderBytes: len(headerBytes),
	}
	return s, nil
}

// readHeader pulls bytes off the front of the file until the first
// line terminator, inclusive. A file carrying no terminator at all is
// a single header line with an empty data region.
func readHeader(inputPath string) ([]byte, error) {

	fh, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %s", inputPath, err)
	}
	defer fh.Close()

	var headerBytes []byte
	buf := make([]byte, 64*1024)
	for {
		n, readErr := fh.Read(buf)
		if n > 0 {
			if nl := bytes.IndexByte(buf[:n], terminatorByte); nl != -1 {
				return append(headerBytes, buf[:nl+1]...), nil
			}
			headerBytes = append(headerBytes, buf[:n]...)
		}
		if readErr == io.EOF {
			return headerBytes, nil
		}
		if readErr != nil {
			return nil, fmt.Errorf("reading header of '%s' failed: %s", inputPath, readErr)
		}
	}
}

// Header returns the header line content, line terminator excluded.
func (s *Splitter) Header() string {
	return string(bytes.TrimRight(s.headerBytes, "\r\n"))
}

// SetDigest selects the per-part content digest recorded in the run
// summary. Valid names are the keys of digest.AvailableDigesters.
func (s *Splitter) SetDigest(algname string) error {
	init, exists := digest.AvailableDigesters[algname]
	if !exists {
		return fmt.Errorf("unknown part digest '%s'", algname)
	}
	s.cfg.requestedDigest = algname
	s.newDigester = init
	return nil
}

// SetProgressWriter redirects throttled progress reporting. A nil
// writer disables it.
func (s *Splitter) SetProgressWriter(w io.Writer) { s.progressOut = w }

// Process runs the split configured via argv. Exactly one policy is
// active per invocation.
func (s *Splitter) Process() error {
	switch s.cfg.mode {
	case modeLines:
		return s.SplitByLines(s.cfg.LinesPerPart)
	case modeSize:
		return s.SplitBySize(s.cfg.maxPartSize)
	case modeParts:
		return s.SplitByParts(s.cfg.PartCount)
	}
	return errors.New("no split policy selected")
}
