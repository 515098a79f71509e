package pathutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestToRelative(t *testing.T) {
	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{
			name:     "simple relative path",
			absPath:  "/home/user/project/src/main.dsc",
			rootDir:  "/home/user/project",
			expected: "src/main.dsc",
		},
		{
			name:     "nested relative path",
			absPath:  "/home/user/project/internal/core/module.inf",
			rootDir:  "/home/user/project",
			expected: "internal/core/module.inf",
		},
		{
			name:     "root level file",
			absPath:  "/home/user/project/Platform.dsc",
			rootDir:  "/home/user/project",
			expected: "Platform.dsc",
		},
		{
			name:     "same directory",
			absPath:  "/home/user/project",
			rootDir:  "/home/user/project",
			expected: ".",
		},
		{
			name:     "already relative path",
			absPath:  "src/main.dsc",
			rootDir:  "/home/user/project",
			expected: "src/main.dsc",
		},
		{
			name:     "path outside root - fallback to absolute",
			absPath:  "/other/location/file.dec",
			rootDir:  "/home/user/project",
			expected: "/other/location/file.dec",
		},
		{
			name:     "empty root directory",
			absPath:  "/home/user/project/file.inf",
			rootDir:  "",
			expected: "/home/user/project/file.inf",
		},
		{
			name:     "empty absolute path",
			absPath:  "",
			rootDir:  "/home/user/project",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToRelative(tt.absPath, tt.rootDir)

			if runtime.GOOS == "windows" {
				result = filepath.ToSlash(result)
				expected := filepath.ToSlash(tt.expected)
				if result != expected {
					t.Errorf("ToRelative() = %v, want %v", result, expected)
				}
			} else {
				if result != tt.expected {
					t.Errorf("ToRelative() = %v, want %v", result, tt.expected)
				}
			}
		})
	}
}

func TestResolverResolveInclude(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "Common.dsc"), "")
	mustWrite(t, filepath.Join(root, "sub", "Nested.dsc"), "")

	r := NewResolver(root, "")

	if got, ok := r.ResolveInclude(root, "Common.dsc"); !ok || got != filepath.Join(root, "Common.dsc") {
		t.Errorf("ResolveInclude same-dir: got %q, ok=%v", got, ok)
	}
	if got, ok := r.ResolveInclude(filepath.Join(root, "sub"), "Nested.dsc"); !ok || got != filepath.Join(root, "sub", "Nested.dsc") {
		t.Errorf("ResolveInclude sub-dir: got %q, ok=%v", got, ok)
	}
	if _, ok := r.ResolveInclude(root, "Missing.dsc"); ok {
		t.Errorf("ResolveInclude should fail for a missing file")
	}
}

func TestResolverPackagesPath(t *testing.T) {
	root := t.TempDir()
	external := t.TempDir()
	mustWrite(t, filepath.Join(external, "VendorPkg", "Vendor.dec"), "")

	r := NewResolver(root, external)

	got, ok := r.ResolvePackage(filepath.Join("VendorPkg", "Vendor.dec"))
	if !ok {
		t.Fatalf("ResolvePackage: expected to find file via PACKAGES_PATH")
	}
	if got != filepath.Join(external, "VendorPkg", "Vendor.dec") {
		t.Errorf("ResolvePackage: got %q", got)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
