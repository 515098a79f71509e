// Command edk2meta parses EDK2-style DSC/INF/DEC build description files
// and reports their resolved records.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/edk2meta/internal/config"
	"github.com/standardbeagle/edk2meta/internal/debug"
	"github.com/standardbeagle/edk2meta/internal/factory"
	"github.com/standardbeagle/edk2meta/internal/version"
	"github.com/standardbeagle/edk2meta/pkg/pathutil"
)

func main() {
	app := &cli.App{
		Name:                   "edk2meta",
		Usage:                  "parse and query EDK2 DSC/INF/DEC build description files",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "project root containing .edk2meta.kdl (defaults to the current directory)",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "workspace root override (overrides WORKSPACE / .edk2meta.kdl)",
			},
			&cli.StringFlag{
				Name:  "packages-path",
				Usage: "PACKAGES_PATH override, " + string(os.PathListSeparator) + "-separated",
			},
			&cli.BoolFlag{
				Name:  "case-insensitive",
				Usage: "set the case-insensitive flag in the config (macro and scope name matching does not change with it)",
			},
		},
		Commands: []*cli.Command{
			parseCommand,
			queryCommand,
			validateCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "edk2meta: %v\n", err)
		os.Exit(1)
	}
}

// loadWorkspace builds a config.WorkspaceConfig from the config flag plus
// any CLI overrides, layering flags over the workspace's .edk2meta.kdl file.
func loadWorkspace(c *cli.Context) (*config.WorkspaceConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if root := c.String("root"); root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
		}
		cfg.WorkspaceRoot = abs
	}
	if pp := c.String("packages-path"); pp != "" {
		cfg.PackagesPath = config.SplitPackagesPath(pp)
	}
	if c.Bool("case-insensitive") {
		cfg.CaseInsensitive = true
	}

	v := config.NewValidator()
	if err := v.ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newFactory builds a factory.Factory for cfg's workspace, combining the
// resolver, Global/CommandLine macro layers, and case-sensitivity the
// engine needs to parse any file under that workspace.
func newFactory(cfg *config.WorkspaceConfig) *factory.Factory {
	packagesPath := ""
	if len(cfg.PackagesPath) > 0 {
		packagesPath = cfg.PackagesPath[0]
		for _, p := range cfg.PackagesPath[1:] {
			packagesPath += string(os.PathListSeparator) + p
		}
	}
	resolver := pathutil.NewResolver(cfg.WorkspaceRoot, packagesPath)

	global := map[string]string{}
	cmdline := map[string]string{}
	return factory.New(resolver, global, cmdline, cfg.CaseInsensitive)
}

func init() {
	// Keep debug output on stderr by default when EnableDebug/DEBUG is set.
	debug.SetDebugOutput(os.Stderr)
}
