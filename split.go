package csvsplit

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/anjor/csvsplit/internal/constants"
	"github.com/anjor/csvsplit/internal/util/stream"
	"github.com/anjor/csvsplit/internal/util/text"

	"github.com/ipfs/go-qringbuf"
)

// The engine is terminator-oriented, not field-aware: a '\n' closes a
// data line for both LF and CRLF inputs, quoting is never inspected.
const terminatorByte = byte('\n')

type splitMode int

const (
	modeUnset = splitMode(iota)
	modeLines
	modeSize
	modeParts
)

// splitPolicy is the tagged variant the streaming loop dispatches on.
// Exactly one case is populated per invocation; modeParts never
// reaches the loop, it degrades to modeSize up front.
type splitPolicy struct {
	_            constants.Incomparabe
	mode         splitMode
	linesPerPart int64
	maxPartBytes int64
}

var preProcessTasks, postProcessTasks func(s *Splitter)

// SplitByLines streams the data region into consecutive parts of
// exactly linesPerPart data lines each; only the final part may hold
// fewer. A final line lacking its terminator still counts as a line.
// An input with no data lines at all yields a single header-only part.
func (s *Splitter) SplitByLines(linesPerPart int64) error {
	if linesPerPart < 1 {
		return fmt.Errorf("lines per part must be positive, got %d", linesPerPart)
	}
	return s.process(splitPolicy{mode: modeLines, linesPerPart: linesPerPart})
}

// SplitBySize streams the data region into consecutive parts of at
// most maxPartBytes bytes each, header included. The cap is exact: a
// write slice is truncated at the remaining capacity of the current
// part, so cut points land mid-line whenever the byte count says so.
// When maxPartBytes cannot even cover the header, each part still
// receives at least one data byte so the run always terminates.
func (s *Splitter) SplitBySize(maxPartBytes int64) error {
	if maxPartBytes < 1 {
		return fmt.Errorf("max part size must be positive, got %d", maxPartBytes)
	}
	return s.process(splitPolicy{mode: modeSize, maxPartBytes: maxPartBytes})
}

// SplitByParts is a pure pre-step over SplitBySize: the data region is
// ceiling-divided by partCount once, before any streaming starts.
func (s *Splitter) SplitByParts(partCount int64) error {
	if partCount < 1 {
		return fmt.Errorf("number of parts must be positive, got %d", partCount)
	}

	dataSize := s.inputSize - int64(len(s.headerBytes))
	sizePerPart := (dataSize + partCount - 1) / partCount
	if sizePerPart < 1 {
		sizePerPart = 1
	}

	return s.SplitBySize(int64(len(s.headerBytes)) + sizePerPart)
}

// process owns the single streaming pass: header replication, cut
// point decisions, part lifecycle and progress. All counters and
// timers live on this stack frame, one invocation never shares state
// with another.
func (s *Splitter) process(pol splitPolicy) (err error) {

	t0 := time.Now()
	if preProcessTasks != nil {
		preProcessTasks(s)
	}

	// each invocation owns a fresh ledger
	s.statSummary.Parts = nil
	s.statSummary.DataBytes = 0
	s.statSummary.DataLines = 0

	dataSize := s.inputSize - int64(len(s.headerBytes))

	var cur *partWriter
	var bytesProcessed int64

	// a little helper to deal with error stack craziness: this runs
	// last, after the handle cleanup below already fired
	defer func() {
		if err != nil {
			partIdx := 0
			if cur != nil {
				partIdx = cur.index
			}
			err = fmt.Errorf(
				"failure at data offset %s of part %d: %s",
				text.Commify64(bytesProcessed),
				partIdx,
				err,
			)
		}
	}()

	// every exit path, error or not, must leave no open part handle behind
	defer func() {
		if cur != nil {
			cur.discard()
			cur = nil
		}
	}()

	fh, err := os.Open(s.inputPath)
	if err != nil {
		return fmt.Errorf("unable to open '%s': %s", s.inputPath, err)
	}
	defer fh.Close()

	if inStat, statErr := fh.Stat(); statErr == nil {
		// An optimization returns os.ErrInvalid when it can't be applied to the file type
		for _, opt := range stream.ReadOptimizations {
			if optErr := opt.Action(fh, inStat); optErr != nil && optErr != os.ErrInvalid {
				log.Printf("Failed to apply read optimization hint '%s' to input: %s\n", opt.Name, optErr)
			}
		}
	}

	// all strategies begin strictly after the header region
	if _, err = fh.Seek(int64(len(s.headerBytes)), io.SeekStart); err != nil {
		return fmt.Errorf("unable to position '%s' past its header: %s", s.inputPath, err)
	}

	s.qrb, err = qringbuf.NewFromReader(fh, qringbuf.Config{
		MinRegion:  constants.MaxChunkSize,
		MaxCopy:    constants.MaxChunkSize,
		MinRead:    s.cfg.RingBufferMinRead,
		BufferSize: s.cfg.RingBufferSize,
		SectorSize: s.cfg.RingBufferSectSize,
		Stats:      &s.statSummary.SysStats.Stats,
	})
	if err != nil {
		return err
	}
	defer func() { s.qrb = nil }()

	if err = s.qrb.StartFill(0); err != nil {
		return err
	}

	prog := newProgressTracker(s.progressOut, dataSize)

	// part 1 exists even for an empty data region
	if cur, err = s.openPart(1); err != nil {
		return err
	}

	rollover := func() error {
		closed := cur
		cur = nil
		if closeErr := s.closePart(closed); closeErr != nil {
			return closeErr
		}
		next, openErr := s.openPart(closed.index + 1)
		if openErr != nil {
			return openErr
		}
		cur = next
		return nil
	}

	// pendingRollover defers the actual cut until another byte is
	// about to be written: a part that fills up exactly at EOF must
	// not spawn a trailing header-only sibling
	var pendingRollover, inLine bool

	for {
		region, readErr := s.qrb.NextRegion(0)
		if readErr != nil && readErr != io.EOF {
			return readErr
		}
		if region == nil {
			break
		}

		buf := region.Bytes()
		for len(buf) > 0 {

			var slice []byte
			var sliceLines int64

			switch pol.mode {

			case modeLines:
				if pendingRollover {
					if err = rollover(); err != nil {
						return err
					}
					pendingRollover = false
				}

				if nl := bytes.IndexByte(buf, terminatorByte); nl == -1 {
					slice = buf
					inLine = true
				} else {
					slice = buf[:nl+1]
					sliceLines = 1
					inLine = false
				}

			case modeSize:
				// a part never rolls before it holds at least one
				// data byte, no matter how tight the cap
				if cur.bytesWritten >= pol.maxPartBytes &&
					cur.bytesWritten > int64(len(s.headerBytes)) {
					if err = rollover(); err != nil {
						return err
					}
				}

				take := int64(len(buf))
				if room := pol.maxPartBytes - cur.bytesWritten; take > room {
					take = room
				}
				if take < 1 {
					// the header alone busts the cap: move a byte anyway
					take = 1
				}
				if take > constants.MaxChunkSize {
					take = constants.MaxChunkSize
				}
				slice = buf[:take]
				sliceLines = int64(bytes.Count(slice, terminatorSlice))
				inLine = slice[len(slice)-1] != terminatorByte
			}

			if _, err = cur.Write(slice); err != nil {
				return fmt.Errorf("writing to part %d (%s) failed: %s", cur.index, cur.path, err)
			}

			cur.dataLines += sliceLines
			bytesProcessed += int64(len(slice))
			buf = buf[len(slice):]

			if pol.mode == modeLines && sliceLines > 0 && cur.dataLines >= pol.linesPerPart {
				pendingRollover = true
			}
		}

		prog.maybeReport(cur.index, bytesProcessed)

		if readErr == io.EOF {
			break
		}
	}

	// a final line missing its terminator is still one full line
	if inLine {
		cur.dataLines++
	}

	closed := cur
	cur = nil
	if err = s.closePart(closed); err != nil {
		return err
	}

	prog.finish(len(s.statSummary.Parts), bytesProcessed)

	s.statSummary.DataBytes = bytesProcessed
	s.statSummary.DataLines = 0
	for _, p := range s.statSummary.Parts {
		s.statSummary.DataLines += p.DataLines
	}

	if postProcessTasks != nil {
		postProcessTasks(s)
	}
	s.statSummary.SysStats.ElapsedNsecs = time.Since(t0).Nanoseconds()

	return nil
}

var terminatorSlice = []byte{terminatorByte}
