// Package pathutil resolves the relative paths a build-description file
// uses (!include targets, Packages/LibraryClasses entries) against the
// workspace root and the PACKAGES_PATH search list, and converts back to
// workspace-relative form for diagnostics.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ToRelative converts an absolute path to relative based on a root
// directory. Falls back to the original path if conversion fails or the
// path is already relative or falls outside root.
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}
	return relPath
}

// Resolver locates files referenced by a build description — !include
// targets (first relative to the including file's own directory) and
// Packages/LibraryClasses path entries (relative to the workspace root, or
// to one of PACKAGES_PATH's colon-separated directories).
type Resolver struct {
	WorkspaceRoot string
	PackagesPath  []string
}

// NewResolver builds a Resolver from a workspace root and a colon-separated
// PACKAGES_PATH string (as EDK2's build environment sets it).
func NewResolver(workspaceRoot, packagesPath string) *Resolver {
	r := &Resolver{WorkspaceRoot: workspaceRoot}
	if packagesPath != "" {
		r.PackagesPath = strings.Split(packagesPath, string(os.PathListSeparator))
	}
	return r
}

// ResolveInclude finds a !include target relative to the including file's
// directory, falling back to the workspace root and then PACKAGES_PATH.
func (r *Resolver) ResolveInclude(fromDir, target string) (string, bool) {
	if filepath.IsAbs(target) {
		if fileExists(target) {
			return filepath.Clean(target), true
		}
		return "", false
	}
	return r.resolveAgainst(fromDir, target)
}

// ResolvePackage finds a path entry (from Packages/LibraryClasses) against
// the workspace root and every PACKAGES_PATH directory, in order.
func (r *Resolver) ResolvePackage(target string) (string, bool) {
	return r.resolveAgainst(r.WorkspaceRoot, target)
}

func (r *Resolver) resolveAgainst(primary, target string) (string, bool) {
	candidate := filepath.Join(primary, target)
	if fileExists(candidate) {
		return filepath.Clean(candidate), true
	}
	if r.WorkspaceRoot != "" && primary != r.WorkspaceRoot {
		candidate = filepath.Join(r.WorkspaceRoot, target)
		if fileExists(candidate) {
			return filepath.Clean(candidate), true
		}
	}
	for _, dir := range r.PackagesPath {
		candidate = filepath.Join(dir, target)
		if fileExists(candidate) {
			return filepath.Clean(candidate), true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GlobDescriptionFiles returns every path under root matching pattern (a
// doublestar glob, e.g. "**/*.dsc"), joined onto root. It applies no
// extension filter of its own; the pattern alone selects the files.
func GlobDescriptionFiles(root, pattern string) ([]string, error) {
	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(root, m))
	}
	return out, nil
}
