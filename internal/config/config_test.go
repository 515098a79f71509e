package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/edk2meta/internal/types"
)

func TestLoadFallsBackToProjectRootWithNoKDL(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	abs, _ := filepath.Abs(dir)
	assert.Equal(t, abs, cfg.WorkspaceRoot)
}

func TestLoadAppliesKDLDefaults(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "pkgs")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))

	kdl := "workspace \".\"\npackages_path \"pkgs\"\ncase_insensitive true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".edk2meta.kdl"), []byte(kdl), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"pkgs"}, cfg.PackagesPath)
	assert.True(t, cfg.CaseInsensitive)
}

func TestLoadEnvVarsOverrideKDL(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()

	kdl := "workspace \".\"\ncase_insensitive false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".edk2meta.kdl"), []byte(kdl), 0o644))

	t.Setenv("WORKSPACE", other)
	t.Setenv("gCaseInsensitive", "true")

	cfg, err := Load(dir)
	require.NoError(t, err)
	abs, _ := filepath.Abs(other)
	assert.Equal(t, abs, cfg.WorkspaceRoot, "WORKSPACE env var should win over the KDL workspace setting")
	assert.True(t, cfg.CaseInsensitive, "gCaseInsensitive env var should win over the KDL case_insensitive setting")
}

func TestLoadPackagesPathEnvVarOverridesKDL(t *testing.T) {
	dir := t.TempDir()
	kdl := "packages_path \"a\" \"b\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".edk2meta.kdl"), []byte(kdl), 0o644))

	t.Setenv("PACKAGES_PATH", "x;y")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, cfg.PackagesPath)
}

func TestSplitPackagesPathSemicolonFallback(t *testing.T) {
	got := SplitPackagesPath("a;b;c")
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestSplitPackagesPathTrimsEmptyEntries(t *testing.T) {
	got := SplitPackagesPath("a;;  b ;")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestValidateAndSetDefaultsRejectsMissingWorkspaceRoot(t *testing.T) {
	cfg := &WorkspaceConfig{}
	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.Error(t, err)
}

func TestValidateAndSetDefaultsRejectsNonexistentWorkspaceRoot(t *testing.T) {
	cfg := &WorkspaceConfig{WorkspaceRoot: "/does/not/exist/at/all"}
	err := ValidateConfig(cfg)
	require.Error(t, err)
}

func TestValidateAndSetDefaultsRejectsWorkspaceRootThatIsAFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	cfg := &WorkspaceConfig{WorkspaceRoot: file}
	err := ValidateConfig(cfg)
	require.Error(t, err)
}

func TestValidateAndSetDefaultsRejectsMissingPackagesPathEntry(t *testing.T) {
	dir := t.TempDir()
	cfg := &WorkspaceConfig{WorkspaceRoot: dir, PackagesPath: []string{filepath.Join(dir, "missing")}}
	err := ValidateConfig(cfg)
	require.Error(t, err)
}

func TestValidateAndSetDefaultsAcceptsValidConfig(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "pkgs")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))

	cfg := &WorkspaceConfig{WorkspaceRoot: dir, PackagesPath: []string{pkgDir}}
	assert.NoError(t, ValidateConfig(cfg))
}

func TestDialectDelegatesToTypes(t *testing.T) {
	assert.Equal(t, types.DialectDsc, Dialect(".dsc"))
	assert.Equal(t, types.DialectUnknown, Dialect(".xyz"))
}
