package csvsplit

import (
	"fmt"
	"io"
	"time"

	"github.com/anjor/csvsplit/internal/util/sizefmt"
)

const progressInterval = 1000 * time.Millisecond

// progressTracker throttles progress emission to at most one line per
// interval. It lives on the stack of a single split invocation: there
// is no process-wide timing state.
type progressTracker struct {
	out        io.Writer // nil disables everything
	totalBytes int64
	lastReport time.Time
}

func newProgressTracker(out io.Writer, totalBytes int64) *progressTracker {
	return &progressTracker{out: out, totalBytes: totalBytes}
}

func (pt *progressTracker) maybeReport(partIdx int, bytesProcessed int64) {
	if pt.out == nil {
		return
	}
	now := time.Now()
	if now.Sub(pt.lastReport) < progressInterval {
		return
	}
	pt.lastReport = now
	pt.report(partIdx, bytesProcessed)
}

func (pt *progressTracker) report(partIdx int, bytesProcessed int64) {
	pct := 100.0
	if pt.totalBytes > 0 {
		pct = float64(bytesProcessed) * 100 / float64(pt.totalBytes)
	}
	fmt.Fprintf(pt.out,
		"\rwriting part %d, processed %s (%.1f%%) ",
		partIdx,
		sizefmt.Format(bytesProcessed),
		pct,
	)
}

// finish emits one unconditional closing report regardless of how
// recently the throttled reporter last fired.
func (pt *progressTracker) finish(partsWritten int, bytesProcessed int64) {
	if pt.out == nil {
		return
	}
	pt.report(partsWritten, bytesProcessed)
	fmt.Fprint(pt.out, "\n")
}
