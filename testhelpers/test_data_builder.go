package testhelpers

import (
	"os"
	"path/filepath"
	"strings"
)

// DescriptionFileBuilder provides a fluent API for assembling a DSC/INF/DEC
// fixture file line by line and writing it to a temp directory, the way
// TestDataBuilder assembled Go source fixtures.
//
//	path := testhelpers.NewDescriptionFileBuilder(dir, "Platform.dsc").
//		Line("[Defines]").
//		Line("  PLATFORM_NAME = Test").
//		Section("SkuIds").
//		Line("  0|DEFAULT").
//		Build()
type DescriptionFileBuilder struct {
	dir   string
	name  string
	lines []string
}

// NewDescriptionFileBuilder starts a fixture file named name under dir.
func NewDescriptionFileBuilder(dir, name string) *DescriptionFileBuilder {
	return &DescriptionFileBuilder{dir: dir, name: name}
}

// Line appends a raw line.
func (b *DescriptionFileBuilder) Line(s string) *DescriptionFileBuilder {
	b.lines = append(b.lines, s)
	return b
}

// Lines appends several raw lines.
func (b *DescriptionFileBuilder) Lines(s ...string) *DescriptionFileBuilder {
	b.lines = append(b.lines, s...)
	return b
}

// Section appends a "[name]" section header.
func (b *DescriptionFileBuilder) Section(name string) *DescriptionFileBuilder {
	return b.Line("[" + name + "]")
}

// SectionWithTriple appends a "[name.arch.moduletype]" section header.
func (b *DescriptionFileBuilder) SectionWithTriple(name, arch, moduleType string) *DescriptionFileBuilder {
	return b.Line("[" + name + "." + arch + "." + moduleType + "]")
}

// Define appends an indented "name = value" line, without a DEFINE keyword
// (the form of a [Defines] header entry).
func (b *DescriptionFileBuilder) Define(name, value string) *DescriptionFileBuilder {
	return b.Line("  " + name + " = " + value)
}

// Include appends an "!include path" directive.
func (b *DescriptionFileBuilder) Include(path string) *DescriptionFileBuilder {
	return b.Line("!include " + path)
}

// If appends an "!if expr" directive.
func (b *DescriptionFileBuilder) If(expr string) *DescriptionFileBuilder {
	return b.Line("!if " + expr)
}

// Else appends an "!else" directive.
func (b *DescriptionFileBuilder) Else() *DescriptionFileBuilder {
	return b.Line("!else")
}

// Endif appends an "!endif" directive.
func (b *DescriptionFileBuilder) Endif() *DescriptionFileBuilder {
	return b.Line("!endif")
}

// Build writes the accumulated lines to dir/name and returns the full path.
// It fails the caller's test via panic rather than an error return, since
// fixture setup failures are always a test-authoring bug, not a case under
// test.
func (b *DescriptionFileBuilder) Build() string {
	path := filepath.Join(b.dir, b.name)
	content := strings.Join(b.lines, "\n") + "\n"
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		panic(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		panic(err)
	}
	return path
}

// WriteFixture writes content verbatim to dir/name and returns the full
// path, for tests that already have a complete file body as a string
// literal rather than building it line by line.
func WriteFixture(dir, name, content string) string {
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		panic(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		panic(err)
	}
	return path
}
