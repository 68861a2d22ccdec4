package csvsplit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anjor/csvsplit/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "id,name,value"

func writeInputFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testDataLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("r%03d,name%03d,%d", i+1, i+1, (i+1)*7)
	}
	return lines
}

func csvContent(header string, lines []string, trailingTerminator bool) string {
	content := header + "\n"
	if len(lines) > 0 {
		content += strings.Join(lines, "\n")
		if trailingTerminator {
			content += "\n"
		}
	}
	return content
}

// readParts collects the generated part files in index order, stopping
// at the first missing index. Implicitly asserts part numbering is
// gapless.
func readParts(t *testing.T, inputPath string) [][]byte {
	t.Helper()
	var parts [][]byte
	for i := 1; ; i++ {
		b, err := os.ReadFile(partPath(inputPath, i))
		if errors.Is(err, os.ErrNotExist) {
			return parts
		}
		require.NoError(t, err)
		parts = append(parts, b)
	}
}

// reassembled verifies every part leads with the exact header bytes,
// then splices the data regions back together, header prepended once.
func reassembled(t *testing.T, s *Splitter, parts [][]byte) []byte {
	t.Helper()
	out := append([]byte{}, s.headerBytes...)
	for i, p := range parts {
		require.GreaterOrEqual(t, len(p), len(s.headerBytes), "part %d shorter than the header", i+1)
		require.Equal(t, s.headerBytes, p[:len(s.headerBytes)], "part %d does not lead with the header", i+1)
		out = append(out, p[len(s.headerBytes):]...)
	}
	return out
}

func TestSplitByLines(t *testing.T) {
	cases := []struct {
		dataLineCount int
		linesPerPart  int64
		wantParts     int
		wantLastLines int
	}{
		{6, 2, 3, 2}, // even division: no trailing header-only part
		{7, 3, 3, 1},
		{1, 1, 1, 1},
		{5, 10, 1, 5},
		{10, 1, 10, 1},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d_lines_by_%d", tc.dataLineCount, tc.linesPerPart), func(t *testing.T) {
			content := csvContent(testHeader, testDataLines(tc.dataLineCount), true)
			inputPath := writeInputFile(t, content)

			s, err := NewSplitter(inputPath)
			require.NoError(t, err)
			require.NoError(t, s.SplitByLines(tc.linesPerPart))

			parts := readParts(t, inputPath)
			require.Len(t, parts, tc.wantParts)

			for i, p := range parts {
				gotLines := bytes.Count(p[len(s.headerBytes):], []byte{'\n'})
				if i == len(parts)-1 {
					assert.Equal(t, tc.wantLastLines, gotLines, "last part line count")
				} else {
					assert.Equal(t, int(tc.linesPerPart), gotLines, "part %d line count", i+1)
				}
			}

			assert.Equal(t, content, string(reassembled(t, s, parts)))

			partsWritten, dataBytes, dataLineTotal := s.Summary()
			assert.Equal(t, tc.wantParts, partsWritten)
			assert.Equal(t, int64(len(content)-len(s.headerBytes)), dataBytes)
			assert.Equal(t, int64(tc.dataLineCount), dataLineTotal)
		})
	}
}

func TestSplitByLinesMissingFinalTerminator(t *testing.T) {
	lines := testDataLines(5)
	content := csvContent(testHeader, lines, false)
	inputPath := writeInputFile(t, content)

	s, err := NewSplitter(inputPath)
	require.NoError(t, err)
	require.NoError(t, s.SplitByLines(2))

	parts := readParts(t, inputPath)
	require.Len(t, parts, 3)

	// the unterminated final line arrives verbatim, still no terminator
	lastData := string(parts[2][len(s.headerBytes):])
	assert.Equal(t, lines[4], lastData)

	assert.Equal(t, content, string(reassembled(t, s, parts)))

	_, _, dataLineTotal := s.Summary()
	assert.Equal(t, int64(5), dataLineTotal, "final partial line counts as a full line")
}

func TestHeaderOnlyInput(t *testing.T) {
	run := func(name string, op func(s *Splitter) error) {
		t.Run(name, func(t *testing.T) {
			inputPath := writeInputFile(t, testHeader+"\n")

			s, err := NewSplitter(inputPath)
			require.NoError(t, err)
			require.NoError(t, op(s))

			parts := readParts(t, inputPath)
			require.Len(t, parts, 1)
			assert.Equal(t, testHeader+"\n", string(parts[0]))
		})
	}

	run("by-lines", func(s *Splitter) error { return s.SplitByLines(3) })
	run("by-size", func(s *Splitter) error { return s.SplitBySize(1024) })
	run("by-parts", func(s *Splitter) error { return s.SplitByParts(4) })
}

func TestHeaderOnlyInputWithoutTerminator(t *testing.T) {
	inputPath := writeInputFile(t, testHeader)

	s, err := NewSplitter(inputPath)
	require.NoError(t, err)
	assert.Equal(t, testHeader, s.Header())
	require.NoError(t, s.SplitByLines(2))

	parts := readParts(t, inputPath)
	require.Len(t, parts, 1)
	assert.Equal(t, testHeader, string(parts[0]))
}

func TestSplitBySizeExactCap(t *testing.T) {
	// 6 byte header, 7 lines of 7 bytes each: 49 data bytes
	content := "h1,h2\n" + strings.Repeat("aaaaaa\n", 7)
	inputPath := writeInputFile(t, content)

	s, err := NewSplitter(inputPath)
	require.NoError(t, err)

	// room for 20 data bytes per part: cuts land mid-line
	require.NoError(t, s.SplitBySize(26))

	parts := readParts(t, inputPath)
	require.Len(t, parts, 3)
	assert.Len(t, parts[0], 26)
	assert.Len(t, parts[1], 26)
	assert.Len(t, parts[2], 6+9)

	assert.Equal(t, content, string(reassembled(t, s, parts)))

	_, dataBytes, dataLineTotal := s.Summary()
	assert.Equal(t, int64(49), dataBytes)
	assert.Equal(t, int64(7), dataLineTotal)
}

func TestSplitBySizeCapBelowHeader(t *testing.T) {
	// the cap cannot even hold the header: one data byte per part
	// still has to move, or the split would never terminate
	content := "h1,h2\n" + "abcde\n"
	inputPath := writeInputFile(t, content)

	s, err := NewSplitter(inputPath)
	require.NoError(t, err)
	require.NoError(t, s.SplitBySize(3))

	parts := readParts(t, inputPath)
	require.Len(t, parts, 6)
	for i, p := range parts {
		assert.Len(t, p, 7, "part %d", i+1)
	}
	assert.Equal(t, content, string(reassembled(t, s, parts)))
}

func TestSplitByParts(t *testing.T) {
	cases := []struct {
		partCount int64
		wantParts int
	}{
		{1, 1},
		{5, 5},
		{7, 7}, // ceil(50/7)=8 data bytes per part, ceil(50/8)=7 parts
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("k_%d", tc.partCount), func(t *testing.T) {
			// 6 byte header, 50 data bytes
			content := "h1,h2\n" + strings.Repeat("aaaa\n", 10)
			inputPath := writeInputFile(t, content)

			s, err := NewSplitter(inputPath)
			require.NoError(t, err)
			require.NoError(t, s.SplitByParts(tc.partCount))

			parts := readParts(t, inputPath)
			require.Len(t, parts, tc.wantParts)
			assert.Equal(t, content, string(reassembled(t, s, parts)))
		})
	}
}

func TestCRLFInput(t *testing.T) {
	content := "a,b\r\n1,2\r\n3,4\r\n5,6\r\n"
	inputPath := writeInputFile(t, content)

	s, err := NewSplitter(inputPath)
	require.NoError(t, err)
	assert.Equal(t, "a,b", s.Header())

	require.NoError(t, s.SplitByLines(2))

	parts := readParts(t, inputPath)
	require.Len(t, parts, 2)
	assert.Equal(t, "a,b\r\n1,2\r\n3,4\r\n", string(parts[0]))
	assert.Equal(t, "a,b\r\n5,6\r\n", string(parts[1]))
}

func TestPartDigests(t *testing.T) {
	content := csvContent(testHeader, testDataLines(20), true)
	inputPath := writeInputFile(t, content)

	s, err := NewSplitter(inputPath)
	require.NoError(t, err)
	require.NoError(t, s.SetDigest("sha256"))
	require.NoError(t, s.SplitByLines(7))

	parts := readParts(t, inputPath)
	require.Len(t, parts, 3)
	require.Len(t, s.statSummary.Parts, 3)

	for i, p := range parts {
		sum := sha256.Sum256(p)
		assert.Equal(t,
			hex.EncodeToString(sum[:]),
			s.statSummary.Parts[i].Digest,
			"digest of part %d", i+1,
		)
	}
}

func TestInvalidPolicyValues(t *testing.T) {
	inputPath := writeInputFile(t, csvContent(testHeader, testDataLines(3), true))

	s, err := NewSplitter(inputPath)
	require.NoError(t, err)

	assert.Error(t, s.SplitByLines(0))
	assert.Error(t, s.SplitBySize(0))
	assert.Error(t, s.SplitByParts(-1))

	// validation happens before any I/O
	_, statErr := os.Stat(partPath(inputPath, 1))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestEmptyInput(t *testing.T) {
	inputPath := writeInputFile(t, "")
	_, err := NewSplitter(inputPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestMissingInput(t *testing.T) {
	_, err := NewSplitter(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestEmissions(t *testing.T) {
	content := csvContent(testHeader, testDataLines(6), true)
	inputPath := writeInputFile(t, content)

	s, err := NewSplitter(inputPath)
	require.NoError(t, err)

	partsOut, textOut, jsonlOut := new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)
	s.cfg.emitters[emPartsJsonl] = partsOut
	s.cfg.emitters[emStatsText] = textOut
	s.cfg.emitters[emStatsJsonl] = jsonlOut

	require.NoError(t, s.SplitByLines(2))
	s.OutputSummary()

	assert.Equal(t, 3, strings.Count(partsOut.String(), `"event":"part"`))
	assert.Contains(t, textOut.String(), "Split completed: 3 part(s) created")
	assert.Contains(t, jsonlOut.String(), `"event":"summary"`)
	assert.Contains(t, jsonlOut.String(), `"dataLines":6`)
}

func TestLargeRandomRoundTrip(t *testing.T) {
	if !constants.LongTests {
		t.Skip("set TEST_CSVSPLIT_LONG=1 to run")
	}

	// enough data to wrap the ring buffer several times
	rnd := rand.New(rand.NewSource(42))
	var sb strings.Builder
	sb.WriteString(testHeader + "\n")
	for sb.Len() < 48*1024*1024 {
		lineLen := 20 + rnd.Intn(100)
		for i := 0; i < lineLen; i++ {
			sb.WriteByte(byte('a' + rnd.Intn(26)))
		}
		sb.WriteByte('\n')
	}
	content := sb.String()
	inputPath := writeInputFile(t, content)

	s, err := NewSplitter(inputPath)
	require.NoError(t, err)

	const partCap = 3 * 1024 * 1024
	require.NoError(t, s.SplitBySize(partCap))

	parts := readParts(t, inputPath)
	require.NotEmpty(t, parts)
	for i, p := range parts {
		if i < len(parts)-1 {
			require.Len(t, p, partCap, "non-final part %d must fill the cap exactly", i+1)
		}
	}

	want := sha256.Sum256([]byte(content))
	got := sha256.Sum256(reassembled(t, s, parts))
	require.Equal(t, want, got, "reassembly does not round-trip")
}
