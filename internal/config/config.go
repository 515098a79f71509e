// Package config loads the workspace-level settings the parsing engine
// needs before it can resolve a single !include or PACKAGES_PATH entry:
// the workspace root, the package search list, and the case-sensitivity
// flag. Everything else the engine needs comes from the description files
// themselves.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/standardbeagle/edk2meta/internal/types"
)

// WorkspaceConfig is the set of environment inputs a caller may supply:
// WORKSPACE, PACKAGES_PATH, and gCaseInsensitive. A
// project's .edk2meta.kdl file can set defaults for these plus a few
// conveniences (default arch/toolchain lists for query commands) that the
// original environment never modeled as config but that a CLI caller
// benefits from not having to repeat on every invocation.
type WorkspaceConfig struct {
	WorkspaceRoot   string
	PackagesPath    []string
	CaseInsensitive bool

	// DefaultArch seeds the `query` subcommand's --arch filter when none is
	// given. DefaultToolchain is loaded but no subcommand reads it (there is
	// no --toolchain flag). Neither has any effect on parsing itself.
	DefaultArch      []string
	DefaultToolchain []string
}

// Load builds a WorkspaceConfig for projectRoot: it first applies
// .edk2meta.kdl defaults (if the file exists), then overlays the WORKSPACE,
// PACKAGES_PATH, and gCaseInsensitive environment variables, which always
// win over the KDL file.
func Load(projectRoot string) (*WorkspaceConfig, error) {
	cfg := &WorkspaceConfig{
		WorkspaceRoot: projectRoot,
	}

	kdlCfg, err := LoadKDL(projectRoot)
	if err != nil {
		return nil, err
	}
	if kdlCfg != nil {
		cfg = kdlCfg
	}

	if v := os.Getenv("WORKSPACE"); v != "" {
		cfg.WorkspaceRoot = v
	}
	if cfg.WorkspaceRoot == "" {
		cfg.WorkspaceRoot = projectRoot
	}
	if abs, err := filepath.Abs(cfg.WorkspaceRoot); err == nil {
		cfg.WorkspaceRoot = abs
	}

	if v := os.Getenv("PACKAGES_PATH"); v != "" {
		cfg.PackagesPath = SplitPackagesPath(v)
	}

	if v := os.Getenv("gCaseInsensitive"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CaseInsensitive = b
		}
	}

	return cfg, nil
}

// SplitPackagesPath splits on the OS list separator (':' on POSIX, ';' on
// Windows); EDK2 build environments use whichever their shell gives them,
// so both a literal ';' and the OS separator are accepted here since
// PACKAGES_PATH is often hand-set in CI scripts.
func SplitPackagesPath(v string) []string {
	sep := string(os.PathListSeparator)
	parts := strings.Split(v, sep)
	if len(parts) == 1 && sep != ";" {
		parts = strings.Split(v, ";")
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Dialect exposes types.DialectFromExt for callers that only have a
// WorkspaceConfig import in scope (cmd/edk2meta's subcommands).
func Dialect(ext string) types.Dialect {
	return types.DialectFromExt(ext)
}
