package rawparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/standardbeagle/edk2meta/internal/pcdvalue"
	"github.com/standardbeagle/edk2meta/internal/textclean"
	"github.com/standardbeagle/edk2meta/internal/types"
)

var defineNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// handleDefineDirective parses "DEFINE NAME = VALUE" or the D-dialect-only
// "EDK_GLOBAL NAME = VALUE" form. Stored in FileLocalMacros while still in
// the header section, otherwise in SectionMacros keyed by the active
// section type and scope triples.
func (p *Parser) handleDefineDirective(line string, lineNum int) error {
	isGlobal := strings.HasPrefix(line, "EDK_GLOBAL ")
	if isGlobal && p.Dialect != types.DialectDsc {
		return p.formatError(lineNum, "EDK_GLOBAL is only legal in platform description files")
	}
	if isGlobal && p.seenSection && p.activeKind != sectionDefines {
		return p.formatError(lineNum, "EDK_GLOBAL is only legal inside the header section")
	}

	rest := strings.TrimPrefix(line, "DEFINE ")
	rest = strings.TrimPrefix(rest, "EDK_GLOBAL ")
	name, value, err := splitNameValue(rest)
	if err != nil {
		return p.formatError(lineNum, err.Error())
	}
	if !defineNamePattern.MatchString(name) {
		return p.formatError(lineNum, fmt.Sprintf("invalid macro name %q", name))
	}

	value = p.env.ExpandRecursive(value)

	if p.activeKind == sectionDefines || isGlobal {
		p.env.DefineFileLocal(name, value)
	} else {
		p.macros.Define(p.activeSection, p.activeTriples, name, value)
		p.env.SetSectionMacros(p.macros.Resolve(p.activeSection, p.activeTriples))
	}

	p.emit(types.ModelDefine, name, value, "", lineNum)
	return nil
}

func splitNameValue(s string) (name, value string, err error) {
	idx := strings.Index(s, "=")
	if idx < 0 {
		return "", "", fmt.Errorf("missing '=' in assignment %q", s)
	}
	name = strings.TrimSpace(s[:idx])
	value = strings.TrimSpace(s[idx+1:])
	if name == "" {
		return "", "", fmt.Errorf("missing name in assignment %q", s)
	}
	if value == "" {
		return "", "", fmt.Errorf("missing value in assignment %q", s)
	}
	return name, value, nil
}

// reservedVersionKeys trigger version-format detection (hex 0xAABBCCDD or
// decimal "major.minor", each half <= 0xFFFF).
var reservedVersionKeys = map[string]bool{
	"DSC_SPECIFICATION": true,
	"INF_VERSION":       true,
	"DEC_SPECIFICATION": true,
	"PACKAGE_VERSION":   true,
}

func (p *Parser) handleDefinesLine(line string, lineNum int) error {
	name, value, err := splitNameValue(line)
	if err != nil {
		return p.formatError(lineNum, err.Error())
	}
	if !defineNamePattern.MatchString(name) {
		return p.formatError(lineNum, fmt.Sprintf("invalid header key %q", name))
	}
	if reservedVersionKeys[name] {
		if _, verr := parseVersion(value); verr != nil {
			return p.formatError(lineNum, verr.Error())
		}
	}
	p.emit(types.ModelHeader, name, value, "", lineNum)
	return nil
}

// parseVersion decodes either 0xAABBCCDD hex or "major.minor" decimal
// (each half <= 0xFFFF) into a 32-bit version integer.
func parseVersion(value string) (uint32, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(strings.ToUpper(value), "0X") {
		n, err := strconv.ParseUint(value[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid hex version %q", value)
		}
		return uint32(n), nil
	}
	parts := strings.SplitN(value, ".", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid version %q; expected 0xAABBCCDD or major.minor", value)
	}
	major, err1 := strconv.ParseUint(parts[0], 10, 32)
	minor, err2 := strconv.ParseUint(parts[1], 10, 32)
	if err1 != nil || err2 != nil || major > 0xFFFF || minor > 0xFFFF {
		return 0, fmt.Errorf("version overflow in %q; each half must be <= 0xFFFF", value)
	}
	return uint32(major)<<16 | uint32(minor), nil
}

func (p *Parser) handleSkuID(line string, lineNum int) error {
	fields := textclean.SplitValueList(line, '|', -1)
	if len(fields) != 2 && len(fields) != 3 {
		return p.formatError(lineNum, fmt.Sprintf("SkuIds entry needs 2 or 3 fields, got %d", len(fields)))
	}
	parent := ""
	if len(fields) == 3 {
		parent = fields[2]
	}
	p.emit(types.ModelSkuID, fields[0], fields[1], parent, lineNum)
	return nil
}

func (p *Parser) handleDefaultStore(line string, lineNum int) error {
	fields := textclean.SplitValueList(line, '|', -1)
	if len(fields) != 2 && len(fields) != 3 {
		return p.formatError(lineNum, fmt.Sprintf("DefaultStores entry needs 2 or 3 fields, got %d", len(fields)))
	}
	parent := ""
	if len(fields) == 3 {
		parent = fields[2]
	}
	p.emit(types.ModelDefaultStore, fields[0], fields[1], parent, lineNum)
	return nil
}

// handleBuildOption validates the "[family:]TARGET_TOOLCHAIN_ARCH_TOOL_FLAGS"
// key shape: exactly four underscores in the flag part.
func (p *Parser) handleBuildOption(line string, lineNum int) error {
	name, value, err := splitNameValue(line)
	if err != nil {
		return p.formatError(lineNum, err.Error())
	}
	family := ""
	key := name
	if idx := strings.Index(name, ":"); idx >= 0 {
		family = name[:idx]
		key = name[idx+1:]
	}
	if strings.Count(key, "_") != 4 {
		return p.formatError(lineNum, fmt.Sprintf("build option key %q must contain exactly four underscores", key))
	}
	if p.Dialect != types.DialectDsc {
		value = p.env.ExpandRecursive(value)
	}
	p.emit(types.ModelBuildOption, family, key, value, lineNum)
	return nil
}

func (p *Parser) handlePath(line string, lineNum int) error {
	value := line
	if p.Dialect != types.DialectDsc {
		value = p.env.ExpandRecursive(value)
	}
	p.emit(types.ModelPath, value, "", "", lineNum)
	return nil
}

func (p *Parser) handleLibraryClassDecl(line string, lineNum int) error {
	fields := textclean.SplitValueList(line, '|', -1)
	if len(fields) != 2 {
		return p.formatError(lineNum, fmt.Sprintf("library class declaration needs 2 fields, got %d", len(fields)))
	}
	p.emit(types.ModelLibraryClassDecl, fields[0], fields[1], "", lineNum)
	return nil
}

func (p *Parser) handlePcd(line string, lineNum int) error {
	return p.handlePcdWithCategory(line, lineNum, p.activePcdCat)
}

func (p *Parser) handlePcdWithCategory(line string, lineNum int, category pcdvalue.Category) error {
	dot := strings.Index(line, ".")
	pipe := strings.Index(line, "|")
	if dot < 0 || pipe < 0 || dot > pipe {
		return p.formatError(lineNum, fmt.Sprintf("malformed PCD entry %q", line))
	}
	tokenSpace := line[:dot]
	rest := line[dot+1:]
	barIdx := strings.Index(rest, "|")
	if barIdx < 0 {
		return p.formatError(lineNum, fmt.Sprintf("malformed PCD entry %q", line))
	}
	cname := rest[:barIdx]
	tail := rest[barIdx+1:]

	categoryTag := ""
	if p.Dialect == types.DialectDsc && category != pcdvalue.CategoryUnknown {
		if _, err := pcdvalue.Analyze(tail, category); err != nil {
			return p.formatError(lineNum, err.Error())
		}
		categoryTag = category.String()
	} else if p.Dialect != types.DialectDsc {
		tail = p.env.ExpandRecursive(tail)
	}

	p.emitCategorized(types.ModelPcd, tokenSpace, cname, tail, categoryTag, lineNum)
	return nil
}

func (p *Parser) handlePcdDecl(line string, lineNum int) error {
	dot := strings.Index(line, ".")
	pipe := strings.Index(line, "|")
	if dot < 0 || pipe < 0 || dot > pipe {
		return p.formatError(lineNum, fmt.Sprintf("malformed PCD declaration %q", line))
	}
	tokenSpace := line[:dot]
	rest := line[dot+1:]
	fields := textclean.SplitValueList(rest, '|', -1)
	if len(fields) < 2 {
		return p.formatError(lineNum, fmt.Sprintf("PCD declaration %q needs a default value and token number", line))
	}
	cname := fields[0]
	value3 := strings.Join(fields[1:], "|")
	p.emit(types.ModelPcdDecl, tokenSpace, cname, value3, lineNum)
	return nil
}

// guidStructPattern matches "{0xX,0xX,0xX,{0xX,0xX,0xX,0xX,0xX,0xX,0xX,0xX}}".
var guidStructPattern = regexp.MustCompile(`^\{\s*0[xX][0-9A-Fa-f]+\s*,\s*0[xX][0-9A-Fa-f]+\s*,\s*0[xX][0-9A-Fa-f]+\s*,\s*\{(\s*0[xX][0-9A-Fa-f]+\s*,){7}\s*0[xX][0-9A-Fa-f]+\s*\}\s*\}$`)

func (p *Parser) handleGuidLike(line string, lineNum int, model types.Model) error {
	name, value, err := splitNameValue(line)
	if err != nil {
		return p.formatError(lineNum, err.Error())
	}
	if p.Dialect == types.DialectDec && !guidStructPattern.MatchString(strings.Join(strings.Fields(value), " ")) {
		if !guidStructPattern.MatchString(value) {
			return p.formatError(lineNum, fmt.Sprintf("malformed GUID structure %q", value))
		}
	}
	p.emit(model, name, value, "", lineNum)
	return nil
}

func (p *Parser) handleComponent(line string, lineNum int) error {
	opensSubsection := strings.HasSuffix(line, "{")
	path := strings.TrimSpace(strings.TrimSuffix(line, "{"))
	ids := p.emit(types.ModelComponent, path, "", "", lineNum)
	if opensSubsection {
		if len(ids) == 0 {
			return p.formatError(lineNum, "component produced no record to own its sub-section")
		}
		p.inSubsection = true
		p.subsectionOwner = ids[0]
		p.subKind = sectionUnknown
	}
	return nil
}

func (p *Parser) handleSourceFile(line string, lineNum int) error {
	fields := textclean.SplitValueList(line, '|', -1)
	v1 := fields[0]
	v2, v3 := "", ""
	if len(fields) > 1 {
		v2 = fields[1]
	}
	if len(fields) > 2 {
		v3 = strings.Join(fields[2:], "|")
	}
	p.emit(types.ModelSourceFile, v1, v2, v3, lineNum)
	return nil
}

func (p *Parser) handleBinaryFile(line string, lineNum int) error {
	fields := textclean.SplitValueList(line, '|', -1)
	v1 := fields[0]
	v2 := ""
	if len(fields) > 1 {
		v2 = strings.Join(fields[1:], "|")
	}
	p.emit(types.ModelBinaryFile, v1, v2, "", lineNum)
	return nil
}

func (p *Parser) handleDepex(line string, lineNum int) error {
	p.emit(types.ModelDepex, line, "", "", lineNum)
	return nil
}
