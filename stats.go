package csvsplit

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/anjor/csvsplit/internal/util/sizefmt"
	"github.com/anjor/csvsplit/internal/util/text"

	"github.com/ipfs/go-qringbuf"
)

type partStat struct {
	Index     int    `json:"part"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"bytes"`
	DataLines int64  `json:"lines"`
	Digest    string `json:"digest,omitempty"`
}

type statSummary struct {
	EventType string `json:"event"` // constant "summary"

	InputPath   string `json:"inputPath"`
	InputBytes  int64  `json:"inputBytes"`
	HeaderBytes int    `json:"headerBytes"`
	DataBytes   int64  `json:"dataBytes"`
	DataLines   int64  `json:"dataLines"`

	Parts []partStat `json:"parts"`

	SysStats sysStats `json:"sys"`
}

type sysStats struct {
	Stats qringbuf.Stats `json:"ringbuf"`

	ElapsedNsecs int64 `json:"elapsedNanoseconds"`

	// rusage deltas, filled on unix only
	CpuUserNsecs int64 `json:"cpuUserNanoseconds"`
	CpuSysNsecs  int64 `json:"cpuSystemNanoseconds"`
	MaxRssBytes  int64 `json:"maxMemoryUsed"`
	MinFlt       int64 `json:"cacheMinorFaults"`
	MajFlt       int64 `json:"cacheMajorFaults"`
	BioRead      int64 `json:"blockIoIngress"`
	BioWrite     int64 `json:"blockIoEgress"`
	Sigs         int64 `json:"signalsReceived"`
	CtxSwYield   int64 `json:"contextSwitchYields"`
	CtxSwForced  int64 `json:"contextSwitchForced"`

	ArgvExpanded []string `json:"argvExpanded"`
	ArgvInitial  []string `json:"argvInitial"`
}

// Summary exposes the accumulated run statistics; only meaningful
// after a successful split.
func (s *Splitter) Summary() (partsWritten int, dataBytes int64, dataLines int64) {
	return len(s.statSummary.Parts), s.statSummary.DataBytes, s.statSummary.DataLines
}

// OutputSummary renders the run summary on whichever emitters are
// active. The human text mirrors what the progress line counted; the
// jsonl form carries the full per-part breakdown plus system stats.
func (s *Splitter) OutputSummary() {

	if w := s.cfg.emitters[emStatsText]; w != nil {
		fmt.Fprintf(w,
			"Split completed: %s part(s) created, %s data line(s), %s of data processed in %.2fs\n",
			text.Commify(len(s.statSummary.Parts)),
			text.Commify64(s.statSummary.DataLines),
			sizefmt.Format(s.statSummary.DataBytes),
			float64(s.statSummary.SysStats.ElapsedNsecs)/1e9,
		)
	}

	if w := s.cfg.emitters[emStatsJsonl]; w != nil {
		jsonl, err := json.Marshal(s.statSummary)
		if err != nil {
			log.Printf("encoding the summary failed: %s", err)
			return
		}
		if _, err := fmt.Fprintf(w, "%s\n", jsonl); err != nil {
			log.Printf("emitting '%s' failed: %s", emStatsJsonl, err)
		}
	}
}
