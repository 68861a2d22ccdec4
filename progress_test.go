package csvsplit

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressThrottle(t *testing.T) {
	buf := new(bytes.Buffer)
	pt := newProgressTracker(buf, 1000)

	// the zero lastReport makes the very first call fire
	pt.maybeReport(1, 100)
	firstLen := buf.Len()
	require.NotZero(t, firstLen)
	assert.Contains(t, buf.String(), "writing part 1")
	assert.Contains(t, buf.String(), "(10.0%)")

	// within the interval: swallowed
	pt.maybeReport(1, 200)
	assert.Equal(t, firstLen, buf.Len())

	// pretend the interval elapsed
	pt.lastReport = time.Now().Add(-2 * progressInterval)
	pt.maybeReport(2, 500)
	assert.Greater(t, buf.Len(), firstLen)
	assert.Contains(t, buf.String(), "writing part 2")
}

func TestProgressFinishIsUnconditional(t *testing.T) {
	buf := new(bytes.Buffer)
	pt := newProgressTracker(buf, 1000)

	pt.maybeReport(1, 100)
	pt.finish(3, 1000)

	assert.Contains(t, buf.String(), "(100.0%)")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestProgressDisabled(t *testing.T) {
	pt := newProgressTracker(nil, 10)
	pt.maybeReport(1, 5)
	pt.finish(1, 10)
}

func TestProgressUnknownTotal(t *testing.T) {
	buf := new(bytes.Buffer)
	pt := newProgressTracker(buf, 0)
	pt.finish(1, 0)
	assert.Contains(t, buf.String(), "(100.0%)")
}
