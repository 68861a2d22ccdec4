package csvsplit

import "github.com/pborman/getopt/v2"

type config struct {
	optSet *getopt.Set

	// where to output
	emitters emissionTargets

	//
	// Bulk of CLI options definition starts here, the rest further down in initArgvParser()
	//

	Help bool `getopt:"-h --help  Display help"`

	PartCount    int64 `getopt:"-p --parts=[1:] Split into this many parts of near-equal byte size"`
	LinesPerPart int64 `getopt:"-l --lines=[1:] Split into parts holding this many data lines each"`

	requestedMaxSize string // -s/--max-size: option/helptext in initArgvParser()
	requestedDigest  string // Part digest: option/helptext in initArgvParser()

	emittersStdErr []string // Emitter spec: option/helptext in initArgvParser()
	emittersStdOut []string // Emitter spec: option/helptext in initArgvParser()

	RingBufferSize     int `getopt:"--ring-buffer-size=bytes        The size of the quantized ring buffer used for reading. Default:"`
	RingBufferSectSize int `getopt:"--ring-buffer-sync-size=bytes   (EXPERT SETTING) The size of each buffer synchronization sector. Default:"` // option vaguely named 'sync' to not confuse users
	RingBufferMinRead  int `getopt:"--ring-buffer-min-sysread=bytes (EXPERT SETTING) Perform next read(2) only when the specified amount of free space is available in the buffer. Default:"`
	WriteBufferSize    int `getopt:"--write-buffer-size=bytes       The size of the in-memory buffer in front of every part file. Default:"`

	// derived during argv validation, not option-attached
	mode        splitMode
	maxPartSize int64
	inputPath   string
}

func defaultConfig() config {
	return config{
		RingBufferSize:     12 * 1024 * 1024,
		RingBufferSectSize: 64 * 1024,
		RingBufferMinRead:  256 * 1024,
		WriteBufferSize:    4 * 1024 * 1024,
		requestedDigest:    "none",
		emitters: emissionTargets{
			emNone:       nil,
			emStatsText:  nil,
			emStatsJsonl: nil,
			emPartsJsonl: nil,
		},
	}
}
