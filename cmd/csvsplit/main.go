package main

import (
	"log"
	"os"

	"github.com/anjor/csvsplit"
)

func main() {

	// Parse CLI and construct the splitter over the input file
	// On error it will log.Fatal() / exit non-zero on its own
	s := csvsplit.NewFromArgv(os.Args)

	if err := s.Process(); err != nil {
		log.Fatalf("splitting failed: %s", err)
	}

	s.OutputSummary()
}
