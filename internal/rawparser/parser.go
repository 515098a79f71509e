// Package rawparser implements the line-oriented section/field parser that
// turns cleaned source lines into unresolved Records plus directive
// records.
package rawparser

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/edk2meta/internal/debug"
	"github.com/standardbeagle/edk2meta/internal/pcdvalue"
	"github.com/standardbeagle/edk2meta/internal/scope"
	"github.com/standardbeagle/edk2meta/internal/store"
	"github.com/standardbeagle/edk2meta/internal/textclean"
	"github.com/standardbeagle/edk2meta/internal/types"
)

// parserState is the header/section/subsection state machine a dialect
// file is parsed against.
type parserState int

const (
	stateHeader parserState = iota
	stateInSection
	stateInSubsection
)

type pendingComment struct {
	text string
	line int
}

// Parser is a single-file RawParser instance. Construct one per file via
// the factory (internal/factory), which also enforces the one-parser-
// per-path singleton cache.
type Parser struct {
	Dialect types.Dialect
	File    types.FileID
	Path    string

	table *store.Table
	env   *scope.Environment
	macros *scope.Index

	state           parserState
	activeSection   string
	activeKind      sectionKind
	activePcdCat    pcdvalue.Category
	activeTriples   []types.ScopeTriple

	inSubsection    bool
	subsectionOwner types.RecordID
	subKind         sectionKind
	subPcdCat       pcdvalue.Category

	pendingComments []pendingComment
	seenSection     bool

	// fromItem is the id of the !include directive that is pulling this
	// file's records in, or InvalidID for a top-level parse.
	fromItem types.RecordID

	caseInsensitive bool

	Warnings []string
}

// New constructs a RawParser for one file. env carries the process-wide
// Global/CommandLine macro layers (shared, read-only) already installed.
func New(dialect types.Dialect, file types.FileID, path string, env *scope.Environment, fromItem types.RecordID, caseInsensitive bool) *Parser {
	return &Parser{
		Dialect:         dialect,
		File:            file,
		Path:            path,
		table:           store.New(file),
		env:             env,
		macros:          scope.NewIndex(),
		activeTriples:   []types.ScopeTriple{types.CommonTriple},
		subsectionOwner: types.InvalidID,
		fromItem:        fromItem,
		caseInsensitive: caseInsensitive,
	}
}

// Table returns the raw record table built so far.
func (p *Parser) Table() *store.Table { return p.table }

// Env returns the per-file macro environment (FileLocalMacros layer etc).
func (p *Parser) Env() *scope.Environment { return p.env }

// Macros returns the SectionMacros index accumulated while parsing.
func (p *Parser) Macros() *scope.Index { return p.macros }

// Parse runs the full raw pass over content and finalizes the table with
// the end-of-table sentinel.
func (p *Parser) Parse(content []byte) error {
	lines := splitLines(content)
	if p.Dialect == types.DialectDsc {
		lines = foldMultilineCode(lines)
	}

	cleaner := textclean.NewLineCleaner()
	for i, raw := range lines {
		lineNum := i + 1
		allowComment := p.Dialect != types.DialectDsc || !strings.Contains(raw, "{CODE(")
		cleaned := cleaner.Clean(raw, allowComment)

		if cleaned.Comment != "" {
			p.pendingComments = append(p.pendingComments, pendingComment{text: cleaned.Comment, line: lineNum})
		}

		data := strings.TrimSpace(cleaned.Data)
		if data == "" {
			continue
		}

		if err := p.handleLine(data, lineNum); err != nil {
			return err
		}
	}

	p.flushTailComments()
	p.table.SetEndFlag()
	return nil
}

func (p *Parser) handleLine(line string, lineNum int) error {
	debug.LogParse("%s:%d: %s", p.Path, lineNum, line)

	switch {
	case p.inSubsection && line == "}":
		p.inSubsection = false
		p.subsectionOwner = types.InvalidID
		return nil

	case p.inSubsection && strings.HasPrefix(line, "["):
		return p.handleSubsectionHeader(line, lineNum)

	case strings.HasPrefix(line, "["):
		return p.handleSectionHeader(line, lineNum)

	case strings.HasPrefix(line, "!") && p.Dialect == types.DialectDsc:
		return p.handleDirective(line, lineNum)

	case strings.HasPrefix(line, "!"):
		return p.formatError(lineNum, fmt.Sprintf("directives are not valid in %s files", p.Dialect))

	default:
		return p.dispatchField(line, lineNum)
	}
}

func (p *Parser) handleSectionHeader(line string, lineNum int) error {
	hdr, err := parseSectionHeader(line)
	if err != nil {
		return p.formatError(lineNum, err.Error())
	}
	if !p.seenSection {
		p.flushHeaderComments()
	}
	p.seenSection = true
	p.state = stateInSection
	p.inSubsection = false
	p.subsectionOwner = types.InvalidID
	p.activeSection = hdr.Name
	p.activeTriples = hdr.Triples
	kind, cat := classifySection(hdr.Name)
	if kind == sectionUnknown {
		return p.unknownSectionError(lineNum, hdr.Name)
	}
	p.activeKind = kind
	p.activePcdCat = cat
	p.env.SetSectionMacros(p.macros.Resolve(p.activeSection, p.activeTriples))
	return nil
}

// handleSubsectionHeader parses a "[option_start]...[option_end]"-style
// header that appears inside a component's sub-section: an override scope
// (LibraryClasses, Pcds*, BuildOptions) local to that one component. Unlike
// a top-level header, an unrecognized one is a warning, not a fatal error;
// the line is preserved as a raw UNKNOWN record instead.
func (p *Parser) handleSubsectionHeader(line string, lineNum int) error {
	hdr, err := parseSectionHeader(line)
	if err != nil {
		return p.formatError(lineNum, err.Error())
	}
	kind, cat := classifySection(hdr.Name)
	if kind == sectionUnknown {
		p.Warnings = append(p.Warnings, fmt.Sprintf("%s:%d: unrecognized sub-section [%s]", p.Path, lineNum, hdr.Name))
		if err := p.emitUnknown(line, lineNum); err != nil {
			return err
		}
	}
	p.subKind = kind
	p.subPcdCat = cat
	if len(hdr.Triples) > 0 {
		p.activeTriples = hdr.Triples
	}
	p.env.SetSectionMacros(p.macros.Resolve(p.activeSection, p.activeTriples))
	return nil
}

// dispatchField is the decorator-turned-precheck the Design Notes call
// for: every section handler sees a DEFINE line pre-intercepted here,
// before any section-specific field parser runs.
func (p *Parser) dispatchField(line string, lineNum int) error {
	if !p.seenSection {
		return p.formatError(lineNum, "content before first section header")
	}

	if strings.HasPrefix(line, "DEFINE ") || strings.HasPrefix(line, "EDK_GLOBAL ") {
		return p.handleDefineDirective(line, lineNum)
	}

	if p.inSubsection {
		switch p.subKind {
		case sectionPath:
			return p.handlePath(line, lineNum)
		case sectionPcd:
			return p.handlePcdWithCategory(line, lineNum, p.subPcdCat)
		case sectionBuildOptions:
			return p.handleBuildOption(line, lineNum)
		}
	}

	switch p.activeKind {
	case sectionDefines:
		return p.handleDefinesLine(line, lineNum)
	case sectionSkuIds:
		return p.handleSkuID(line, lineNum)
	case sectionDefaultStores:
		return p.handleDefaultStore(line, lineNum)
	case sectionBuildOptions:
		return p.handleBuildOption(line, lineNum)
	case sectionPath:
		return p.handlePath(line, lineNum)
	case sectionLibraryClassDecl:
		return p.handleLibraryClassDecl(line, lineNum)
	case sectionPcd:
		return p.handlePcd(line, lineNum)
	case sectionPcdDecl:
		return p.handlePcdDecl(line, lineNum)
	case sectionGuids:
		return p.handleGuidLike(line, lineNum, types.ModelGUID)
	case sectionPpis:
		return p.handleGuidLike(line, lineNum, types.ModelPPI)
	case sectionProtocols:
		return p.handleGuidLike(line, lineNum, types.ModelProtocol)
	case sectionComponents:
		return p.handleComponent(line, lineNum)
	case sectionSources:
		return p.handleSourceFile(line, lineNum)
	case sectionBinaries:
		return p.handleBinaryFile(line, lineNum)
	case sectionDepex:
		return p.handleDepex(line, lineNum)
	case sectionUserExtensions:
		return nil // opaque free-form text, intentionally not modeled further
	default:
		return p.emitUnknown(line, lineNum)
	}
}

func (p *Parser) emitUnknown(line string, lineNum int) error {
	p.emit(types.ModelUnknown, line, "", "", lineNum)
	return nil
}

// emit inserts one record per active scope triple, so a header declaring n
// triples yields exactly n records per source item. Pending comments are
// attached to the first record inserted for this line. Returns the
// inserted ids.
func (p *Parser) emit(model types.Model, v1, v2, v3 string, lineNum int) []types.RecordID {
	return p.emitCategorized(model, v1, v2, v3, "", lineNum)
}

// emitCategorized is emit plus a PCD category tag, carried on the record so
// post-processing can re-run category-aware analysis once directives are
// resolved and macros are known.
func (p *Parser) emitCategorized(model types.Model, v1, v2, v3, category string, lineNum int) []types.RecordID {
	triples := p.activeTriples
	if len(triples) == 0 {
		triples = []types.ScopeTriple{types.CommonTriple}
	}

	owner := types.InvalidID
	if p.inSubsection {
		owner = p.subsectionOwner
	}

	ids := make([]types.RecordID, 0, len(triples))
	for i, t := range triples {
		scope3 := t.Store
		if p.Dialect != types.DialectDsc {
			scope3 = ""
		}
		id := p.table.Insert(store.InsertParams{
			Model:         model,
			Value1:        v1,
			Value2:        v2,
			Value3:        v3,
			Scope1:        t.Arch,
			Scope2:        t.ModuleType,
			Scope3:        scope3,
			Category:      category,
			BelongsToItem: owner,
			FromItem:      p.fromItem,
			StartLine:     lineNum,
			EndLine:       lineNum,
			Enabled:       true,
		})
		ids = append(ids, id)
		if i == 0 {
			p.attachComments(id)
		}
	}
	return ids
}

func (p *Parser) attachComments(owner types.RecordID) {
	if len(p.pendingComments) == 0 {
		return
	}
	for _, c := range p.pendingComments {
		p.table.Insert(store.InsertParams{
			Model:         types.ModelComment,
			Value1:        c.text,
			Scope1:        types.ScopeCommon,
			Scope2:        types.ScopeCommon,
			Scope3:        types.ScopeCommon,
			BelongsToItem: owner,
			FromItem:      p.fromItem,
			StartLine:     c.line,
			EndLine:       c.line,
			Enabled:       true,
		})
	}
	p.pendingComments = nil
}

// flushTailComments emits whatever comments remain unattached at EOF. A
// file that never saw a section header (boundary case: comments-only file)
// keeps them tagged COMMENT_HEADER; otherwise they are COMMENT_TAIL.
func (p *Parser) flushTailComments() {
	model := types.ModelCommentTail
	if !p.seenSection {
		model = types.ModelCommentHeader
	}
	for _, c := range p.pendingComments {
		p.table.Insert(store.InsertParams{
			Model:         model,
			Value1:        c.text,
			Scope1:        types.ScopeCommon,
			Scope2:        types.ScopeCommon,
			Scope3:        types.ScopeCommon,
			BelongsToItem: types.InvalidID,
			FromItem:      p.fromItem,
			StartLine:     c.line,
			EndLine:       c.line,
			Enabled:       true,
		})
	}
	p.pendingComments = nil
}

// flushHeaderComments is called the moment the first section header
// is seen, so that any comments collected up to that point are tagged
// COMMENT_HEADER instead of being left to the generic per-line attachment.
func (p *Parser) flushHeaderComments() {
	for _, c := range p.pendingComments {
		p.table.Insert(store.InsertParams{
			Model:         types.ModelCommentHeader,
			Value1:        c.text,
			Scope1:        types.ScopeCommon,
			Scope2:        types.ScopeCommon,
			Scope3:        types.ScopeCommon,
			BelongsToItem: types.InvalidID,
			FromItem:      p.fromItem,
			StartLine:     c.line,
			EndLine:       c.line,
			Enabled:       true,
		})
	}
	p.pendingComments = nil
}
