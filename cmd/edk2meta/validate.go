package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "parse a file and report errors/warnings, with an exit code driven by the result",
	ArgsUsage: "<file>",
	Action:    validateAction,
}

// validateAction parses path and reports success/failure via printed text
// and the process exit code, for use in CI: a clean parse prints an OK line
// to stdout and exits 0, a parse that only produced warnings prints them to
// stderr and still exits 0, and a hard parse error prints a FAIL line to
// stderr and exits 1.
func validateAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: edk2meta validate <file>")
	}
	path := c.Args().First()

	cfg, err := loadWorkspace(c)
	if err != nil {
		return err
	}
	f := newFactory(cfg)

	result, err := f.Parse(path, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
		os.Exit(1)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	fmt.Printf("OK %s: %d record(s), %d warning(s)\n", path, len(result.Records), len(result.Warnings))
	return nil
}
