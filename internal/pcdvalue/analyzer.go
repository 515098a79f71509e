// Package pcdvalue classifies and field-splits a PCD right-hand side per
// PCD category, validating datum types, sizes and literal forms.
package pcdvalue

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/standardbeagle/edk2meta/internal/textclean"
)

// structPattern accepts any C-identifier-like token as a struct datum type;
// downstream validation of which struct names actually exist is assumed.
var structPattern = regexp.MustCompile(`^[_A-Za-z][0-9A-Za-z_]*$`)

const voidStar = "VOID*"

// Result is the field-split, validated PCD value.
type Result struct {
	Category Category
	Value    string
	DatumType string
	Size      string

	// HII-only fields.
	HiiString string
	Guid      string
	Offset    string
	Attribute string

	Raw []string // the raw split fields, in source order
}

// Analyze field-splits settingTail (the text after "TokenSpace.CName|") per
// category and validates field count and shape. It does not itself check
// the literal syntax of Value against DatumType — call ValidateDatum for
// that once the datum type is known (for dialect D, the datum type may
// itself need macro expansion first).
func Analyze(settingTail string, category Category) (Result, error) {
	fields := splitPcdExpression(settingTail)

	switch category {
	case CategoryFeatureFlag:
		if len(fields) > 1 {
			return Result{}, fmt.Errorf("FEATURE_FLAG PCD takes exactly one field, got %d", len(fields))
		}
		return Result{Category: category, Value: first(fields), Raw: fields}, nil

	case CategoryFixedAtBuild, CategoryPatchableInModule, CategoryDynamicDefault, CategoryDynamicExDefault:
		if len(fields) < 1 || len(fields) > 3 {
			return Result{}, fmt.Errorf("%s PCD takes 1-3 fields, got %d", category.String(), len(fields))
		}
		r := Result{Category: category, Value: fields[0], Raw: fields}
		if len(fields) > 1 && fields[1] != "" {
			r.DatumType = fields[1]
			if r.DatumType != voidStar && !structPattern.MatchString(r.DatumType) {
				return Result{}, fmt.Errorf("invalid datum type %q", r.DatumType)
			}
		}
		if len(fields) > 2 {
			r.Size = fields[2]
			if _, err := parseIntAnyBase(r.Size); err != nil {
				return Result{}, fmt.Errorf("invalid size %q: %w", r.Size, err)
			}
		}
		return r, nil

	case CategoryDynamicVPD, CategoryDynamicExVPD:
		if len(fields) < 1 || len(fields) > 3 {
			return Result{}, fmt.Errorf("%s PCD takes 1-3 fields, got %d", category.String(), len(fields))
		}
		r := Result{Category: category, Raw: fields}
		r.Offset = fields[0]
		if len(fields) > 1 {
			r.Size = fields[1]
		}
		if len(fields) > 2 {
			r.Value = fields[2]
		}
		if r.Size != "" {
			if _, err := parseIntAnyBase(r.Size); err != nil {
				return Result{}, fmt.Errorf("invalid VPD size %q: %w", r.Size, err)
			}
		}
		return r, nil

	case CategoryDynamicHII, CategoryDynamicExHII:
		if len(fields) < 3 || len(fields) > 5 {
			return Result{}, fmt.Errorf("%s PCD takes 3-5 fields, got %d", category.String(), len(fields))
		}
		r := Result{Category: category, Raw: fields}
		r.HiiString = fields[0]
		r.Guid = fields[1]
		r.Offset = fields[2]
		if len(fields) > 3 {
			r.Value = fields[3]
		}
		if len(fields) > 4 {
			r.Attribute = fields[4]
		}
		return r, nil
	}

	return Result{}, fmt.Errorf("unknown PCD category")
}

func first(fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// splitPcdExpression splits on '|' respecting string literals and
// parenthesis nesting, same as AnalyzePcdExpression. It additionally treats
// a leading {CODE(...)} block as a single opaque field.
func splitPcdExpression(s string) []string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{CODE(") {
		return []string{s}
	}
	return textclean.SplitValueList(s, '|', -1)
}

func parseIntAnyBase(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToUpper(s), "0X") {
		return strconv.ParseInt(s[2:], 16, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}
