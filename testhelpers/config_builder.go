// Package testhelpers provides shared utilities for testing the edk2meta
// parsing engine: fixture file builders and a config builder, usable from
// any package's _test.go files without import cycles back into the
// packages under test.
package testhelpers

import (
	"github.com/standardbeagle/edk2meta/internal/config"
)

// TestConfigBuilder provides a fluent API for building a WorkspaceConfig
// with safe test defaults.
//
//	cfg := testhelpers.NewTestConfigBuilder(workspaceRoot).
//		WithPackagesPath("/pkgs/a", "/pkgs/b").
//		Build()
type TestConfigBuilder struct {
	workspaceRoot   string
	packagesPath    []string
	caseInsensitive bool
}

// NewTestConfigBuilder creates a config builder rooted at workspaceRoot.
func NewTestConfigBuilder(workspaceRoot string) *TestConfigBuilder {
	return &TestConfigBuilder{
		workspaceRoot: workspaceRoot,
	}
}

// WithPackagesPath sets the PACKAGES_PATH search list.
func (b *TestConfigBuilder) WithPackagesPath(paths ...string) *TestConfigBuilder {
	b.packagesPath = paths
	return b
}

// WithCaseInsensitive sets the gCaseInsensitive flag.
func (b *TestConfigBuilder) WithCaseInsensitive(v bool) *TestConfigBuilder {
	b.caseInsensitive = v
	return b
}

// Build creates the final WorkspaceConfig.
func (b *TestConfigBuilder) Build() *config.WorkspaceConfig {
	return &config.WorkspaceConfig{
		WorkspaceRoot:   b.workspaceRoot,
		PackagesPath:    b.packagesPath,
		CaseInsensitive: b.caseInsensitive,
	}
}
