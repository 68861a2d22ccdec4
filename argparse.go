package csvsplit

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/anjor/csvsplit/internal/constants"
	"github.com/anjor/csvsplit/internal/digest"
	"github.com/anjor/csvsplit/internal/util/argparser"
	"github.com/anjor/csvsplit/internal/util/sizefmt"
	"github.com/anjor/csvsplit/internal/util/stream"
	"github.com/anjor/csvsplit/internal/util/text"

	"github.com/pborman/getopt/v2"
	"github.com/pborman/options"
)

type emissionTargets map[string]io.Writer

const (
	emNone       = "none"
	emStatsText  = "stats-text"
	emStatsJsonl = "stats-jsonl"
	emPartsJsonl = "parts-jsonl"
)

// where the CLI initial error messages go
var argParseErrOut io.Writer = os.Stderr

// NewFromArgv parses and validates the full command line, then
// constructs the splitter over the supplied input file. Any argument
// or construction failure is printed in full and terminates the
// process with a non-zero status: by the time this returns, the run
// is ready to Process().
func NewFromArgv(argv []string) *Splitter {

	cfg := defaultConfig()
	cfg.initArgvParser()

	// accumulator for multiple errors, to present to the user all at once
	freeArgs, argParseErrs := argparser.Parse(argv, cfg.optSet)

	if cfg.Help {
		cfg.printUsage()
		osExit(0)
	}

	argParseErrs = append(argParseErrs, cfg.setupPolicy()...)
	argParseErrs = append(argParseErrs, cfg.setupEmitters()...)

	if _, exists := digest.AvailableDigesters[cfg.requestedDigest]; !exists {
		argParseErrs = append(argParseErrs, fmt.Errorf(
			"part digest '%s' requested via '--part-digest=algname' is not valid. Available digest names are %s",
			cfg.requestedDigest,
			text.AvailableMapKeys(digest.AvailableDigesters),
		))
	}

	if cfg.RingBufferSize < 2*constants.MaxChunkSize {
		argParseErrs = append(argParseErrs, fmt.Errorf(
			"the value of --ring-buffer-size must be at least %s bytes",
			text.Commify(2*constants.MaxChunkSize),
		))
	}

	if len(freeArgs) != 1 {
		argParseErrs = append(argParseErrs, fmt.Errorf(
			"exactly one input file argument expected, got %d",
			len(freeArgs),
		))
	} else {
		cfg.inputPath = freeArgs[0]
	}

	logArgParseErrors(argParseErrs, &cfg)

	s, err := NewSplitter(cfg.inputPath)
	if err != nil {
		log.Fatalf("%s", err)
	}
	s.cfg = cfg
	s.newDigester = digest.AvailableDigesters[cfg.requestedDigest]

	// rewriting a progress line mid-pipe would mangle whatever consumes us
	if stream.IsTTY(os.Stderr) {
		s.progressOut = os.Stderr
	}

	// Opts check out - take a snapshot of what we ended up with
	s.statSummary.SysStats.ArgvInitial = getInitialArgs(argv)
	cfg.optSet.VisitAll(func(o getopt.Option) {
		switch o.LongName() {
		case "help":
			// do nothing
		default:
			s.statSummary.SysStats.ArgvExpanded = append(
				s.statSummary.SysStats.ArgvExpanded, fmt.Sprintf(`--%s=%s`,
					o.LongName(),
					o.Value().String(),
				),
			)
		}
	})
	sort.Strings(s.statSummary.SysStats.ArgvExpanded)

	return s
}

func (cfg *config) initArgvParser() {
	// The default documented way of using pborman/options is to muck with globals
	// Operate over objects instead, allowing us to re-parse argv multiple times
	o := getopt.New()
	if err := options.RegisterSet("", cfg, o); err != nil {
		log.Fatalf("option set registration failed: %s", err)
	}
	cfg.optSet = o

	// the single free-form arg is the file to split
	o.SetParameters("inputfile.csv")

	// Several options have the help-text assembled programmatically
	o.FlagLong(&cfg.requestedMaxSize, "max-size", 's',
		"Split into parts of at most this size. A bare integer means bytes, valid unit suffixes are "+
			"K/KB (1024), M/MB (1024^2), G/GB (1024^3) and T/TB (1024^4), case-insensitive",
		"size",
	)
	o.FlagLong(&cfg.requestedDigest, "part-digest", 0,
		"Record a content digest of every written part in the summary, one of: "+text.AvailableMapKeys(digest.AvailableDigesters),
		"algname",
	)
	o.FlagLong(&cfg.emittersStdErr, "emit-stderr", 0, fmt.Sprintf(
		"One or more emitters to activate on stdERR. Available emitters are %s. Default: %s",
		text.AvailableMapKeys(cfg.emitters),
		emStatsText,
	), "comma,sep,emitters")
	o.FlagLong(&cfg.emittersStdOut, "emit-stdout", 0,
		"One or more emitters to activate on stdOUT. Available emitters same as above. Default: none",
		"comma,sep,emitters",
	)
}

func (cfg *config) printUsage() {
	cfg.optSet.PrintUsage(argParseErrOut)
	fmt.Fprint(argParseErrOut, "\nExactly one of -p/--parts, -l/--lines or -s/--max-size must be given\n\n")
}

// setupPolicy enforces the one-policy-per-invocation rule and resolves
// the size string ahead of any I/O.
func (cfg *config) setupPolicy() (argErrs []error) {

	modesRequested := 0
	if cfg.optSet.IsSet("parts") {
		cfg.mode = modeParts
		modesRequested++
	}
	if cfg.optSet.IsSet("lines") {
		cfg.mode = modeLines
		modesRequested++
	}
	if cfg.optSet.IsSet("max-size") {
		cfg.mode = modeSize
		modesRequested++
	}

	if modesRequested != 1 {
		return []error{fmt.Errorf(
			"exactly one of -p/--parts, -l/--lines or -s/--max-size must be specified",
		)}
	}

	if cfg.mode == modeSize {
		maxPartSize, err := sizefmt.Parse(cfg.requestedMaxSize)
		if err != nil {
			return []error{err}
		}
		if maxPartSize < 1 {
			return []error{fmt.Errorf("max part size must be positive, got %d", maxPartSize)}
		}
		cfg.maxPartSize = maxPartSize
	}

	return
}

func (cfg *config) setupEmitters() (argErrs []error) {

	// no explicit emitter selection: default to the human summary on stderr
	if !cfg.optSet.IsSet("emit-stderr") && !cfg.optSet.IsSet("emit-stdout") {
		cfg.emittersStdErr = []string{emStatsText}
	}

	activeStderr := make(map[string]bool, len(cfg.emittersStdErr))
	for _, s := range cfg.emittersStdErr {
		activeStderr[s] = true
		if val, exists := cfg.emitters[s]; !exists {
			argErrs = append(argErrs, fmt.Errorf("invalid emitter '%s' specified for --emit-stderr. Available emitters are: %s",
				s,
				text.AvailableMapKeys(cfg.emitters),
			))
		} else if s == emNone {
			continue
		} else if val != nil {
			argErrs = append(argErrs, fmt.Errorf("emitter '%s' specified more than once", s))
		} else {
			cfg.emitters[s] = os.Stderr
		}
	}
	activeStdout := make(map[string]bool, len(cfg.emittersStdOut))
	for _, s := range cfg.emittersStdOut {
		activeStdout[s] = true
		if val, exists := cfg.emitters[s]; !exists {
			argErrs = append(argErrs, fmt.Errorf("invalid emitter '%s' specified for --emit-stdout. Available emitters are: %s",
				s,
				text.AvailableMapKeys(cfg.emitters),
			))
		} else if s == emNone {
			continue
		} else if val != nil {
			argErrs = append(argErrs, fmt.Errorf("emitter '%s' specified more than once", s))
		} else {
			cfg.emitters[s] = os.Stdout
		}
	}

	for _, exclusiveEmitter := range []string{
		emNone,
		emStatsText,
	} {
		if activeStderr[exclusiveEmitter] && len(activeStderr) > 1 {
			argErrs = append(argErrs, fmt.Errorf(
				"when specified, emitter '%s' must be the sole argument to --emit-stderr",
				exclusiveEmitter,
			))
		}
		if activeStdout[exclusiveEmitter] && len(activeStdout) > 1 {
			argErrs = append(argErrs, fmt.Errorf(
				"when specified, emitter '%s' must be the sole argument to --emit-stdout",
				exclusiveEmitter,
			))
		}
	}

	return
}

func logArgParseErrors(argParseErrs []error, cfg *config) {
	if len(argParseErrs) == 0 {
		return
	}

	fmt.Fprint(argParseErrOut, "\nFatal error parsing arguments:\n\n")
	for _, e := range argParseErrs {
		fmt.Fprintf(argParseErrOut, "  %s\n", e)
	}
	cfg.printUsage()
	osExit(2)
}

func getInitialArgs(argv []string) []string {
	initial := make([]string, len(argv))
	copy(initial, argv)
	return initial
}

// swappable for the argparse tests
var osExit = os.Exit
