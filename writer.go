package csvsplit

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"hash"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/anjor/csvsplit/internal/constants"
	"github.com/anjor/csvsplit/internal/util/stream"
)

// partWriter is the buffered sink for exactly one part file. It is
// open for writes only while it is the current part, and is closed
// exactly once, on rollover or at end of input.
type partWriter struct {
	fh       *os.File
	buf      *bufio.Writer
	digester hash.Hash // nil unless a part digest was requested

	index        int
	path         string
	bytesWritten int64 // header included
	dataLines    int64 // header excluded
}

// partPath derives the output path for a part index: the input
// filename is split at its last '.', and the zero-padded index goes
// between base and extension. A dotless filename gets the suffix
// appended whole.
func partPath(inputPath string, index int) string {
	dir := filepath.Dir(inputPath)
	name := filepath.Base(inputPath)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return filepath.Join(dir, fmt.Sprintf(
		"%s_part%0*d%s",
		base, constants.PartNumberWidth, index, ext,
	))
}

// openPart creates (or truncates) the next part file and replicates
// the header into it before any data byte lands.
func (s *Splitter) openPart(index int) (*partWriter, error) {

	path := partPath(s.inputPath, index)
	fh, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create part %d (%s): %s", index, path, err)
	}

	if outStat, statErr := fh.Stat(); statErr == nil {
		for _, opt := range stream.WriteOptimizations {
			if optErr := opt.Action(fh, outStat); optErr != nil && optErr != os.ErrInvalid {
				log.Printf("Failed to apply write optimization hint '%s' to part output: %s\n", opt.Name, optErr)
			}
		}
	}

	pw := &partWriter{
		fh:    fh,
		buf:   bufio.NewWriterSize(fh, s.cfg.WriteBufferSize),
		index: index,
		path:  path,
	}
	if s.newDigester != nil {
		pw.digester = s.newDigester()
	}

	if _, err := pw.Write(s.headerBytes); err != nil {
		pw.discard()
		return nil, fmt.Errorf("writing header to part %d (%s) failed: %s", index, path, err)
	}

	return pw, nil
}

func (pw *partWriter) Write(p []byte) (int, error) {
	n, err := pw.buf.Write(p)
	pw.bytesWritten += int64(n)
	if pw.digester != nil && n > 0 {
		pw.digester.Write(p[:n])
	}
	return n, err
}

// close flushes the remaining buffer and releases the handle; it must
// be called exactly once per part, and only on the success path.
func (pw *partWriter) close() error {
	if err := pw.buf.Flush(); err != nil {
		pw.fh.Close()
		return err
	}
	return pw.fh.Close()
}

// discard releases the handle without flushing, for error unwinding.
// Whatever was buffered is lost; the run is failed anyway.
func (pw *partWriter) discard() {
	if pw.fh != nil {
		pw.fh.Close()
		pw.fh = nil
	}
}

// closePart finalizes the current part: flush, close, record its stats
// and emit the per-part jsonl record if that emitter is active.
func (s *Splitter) closePart(pw *partWriter) error {

	if err := pw.close(); err != nil {
		return fmt.Errorf("closing part %d (%s) failed: %s", pw.index, pw.path, err)
	}

	ps := partStat{
		Index:     pw.index,
		Path:      pw.path,
		SizeBytes: pw.bytesWritten,
		DataLines: pw.dataLines,
	}
	if pw.digester != nil {
		ps.Digest = hex.EncodeToString(pw.digester.Sum(nil))
	}
	s.statSummary.Parts = append(s.statSummary.Parts, ps)

	if w := s.cfg.emitters[emPartsJsonl]; w != nil {
		var digestField string
		if ps.Digest != "" {
			digestField = fmt.Sprintf(`"digest":"%s", `, ps.Digest)
		}
		if _, err := fmt.Fprintf(w,
			"{\"event\":\"part\", \"part\":%3d, \"bytes\":%12d, \"lines\":%9d, %s\"path\":\"%s\" }\n",
			ps.Index,
			ps.SizeBytes,
			ps.DataLines,
			digestField,
			ps.Path,
		); err != nil {
			return fmt.Errorf("emitting '%s' failed: %s", emPartsJsonl, err)
		}
	}

	return nil
}
