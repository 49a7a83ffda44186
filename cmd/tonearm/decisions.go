package main

import (
	"github.com/spf13/cobra"

	"tonearm/internal/config"
	"tonearm/internal/importer"
)

// terminalDecisions returns the decision callbacks for a CLI run. The
// binary ships no interactive prompt; front-ends embedding the importer
// inject their own callbacks, and the CLI relies on the acceptance
// threshold plus configured duplicate defaults.
func terminalDecisions(cmd *cobra.Command, cfg *config.Config) importer.Decisions {
	return importer.Decisions{}
}
