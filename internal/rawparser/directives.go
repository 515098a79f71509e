package rawparser

import (
	"strings"

	"github.com/standardbeagle/edk2meta/internal/types"
)

// handleDirective emits the raw, unresolved directive records for the
// platform-description conditional/include/error grammar. Resolution -
// evaluating the !if stack, splicing !include content, dropping directive
// records from the final view - is PostProcessor's job, not RawParser's.
func (p *Parser) handleDirective(line string, lineNum int) error {
	switch {
	case hasDirective(line, "!include"):
		path := strings.TrimSpace(strings.TrimPrefix(line, "!include"))
		if path == "" {
			return p.formatError(lineNum, "!include requires a path")
		}
		p.emit(types.ModelInclude, path, "", "", lineNum)
		return nil

	case hasDirective(line, "!ifdef"):
		expr := strings.TrimSpace(strings.TrimPrefix(line, "!ifdef"))
		return p.emitDirectiveExpr(types.ModelConditionalIfdef, expr, lineNum, true)

	case hasDirective(line, "!ifndef"):
		expr := strings.TrimSpace(strings.TrimPrefix(line, "!ifndef"))
		return p.emitDirectiveExpr(types.ModelConditionalIfndef, expr, lineNum, true)

	case hasDirective(line, "!elseif"):
		expr := strings.TrimSpace(strings.TrimPrefix(line, "!elseif"))
		return p.emitDirectiveExpr(types.ModelConditionalElseif, expr, lineNum, true)

	case hasDirective(line, "!if"):
		expr := strings.TrimSpace(strings.TrimPrefix(line, "!if"))
		return p.emitDirectiveExpr(types.ModelConditionalIf, expr, lineNum, true)

	case hasDirective(line, "!else"):
		return p.emitDirectiveExpr(types.ModelConditionalElse, "", lineNum, false)

	case hasDirective(line, "!endif"):
		return p.emitDirectiveExpr(types.ModelConditionalEndif, "", lineNum, false)

	case hasDirective(line, "!error"):
		msg := strings.TrimSpace(strings.TrimPrefix(line, "!error"))
		p.emit(types.ModelErrorStatement, msg, "", "", lineNum)
		return nil

	default:
		return p.formatError(lineNum, "unrecognized directive")
	}
}

// emitDirectiveExpr emits a conditional directive record. requireExpr
// enforces that !if/!ifdef/!ifndef/!elseif carry a non-empty expression,
// while !else/!endif take none.
func (p *Parser) emitDirectiveExpr(model types.Model, expr string, lineNum int, requireExpr bool) error {
	if requireExpr && expr == "" {
		return p.formatError(lineNum, "directive requires an expression")
	}
	p.emit(model, expr, "", "", lineNum)
	return nil
}

// hasDirective reports whether line begins with name followed by either
// nothing, whitespace, so that "!ifdef" isn't mistaken for a prefix of
// "!ifdefSOMETHING" (not a real token, but keeps matching exact).
func hasDirective(line, name string) bool {
	if !strings.HasPrefix(line, name) {
		return false
	}
	rest := line[len(name):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}
