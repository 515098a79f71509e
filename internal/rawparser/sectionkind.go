package rawparser

import (
	"strings"

	"github.com/standardbeagle/edk2meta/internal/pcdvalue"
)

// sectionKind is the closed variant over section kinds the Design Notes
// call for in place of a dict of function pointers: every value here is
// handled exhaustively by a switch in the field dispatcher.
type sectionKind int

const (
	sectionUnknown sectionKind = iota
	sectionDefines
	sectionSkuIds
	sectionDefaultStores
	sectionBuildOptions
	sectionPath // Packages / LibraryClasses (as consumed, not declared)
	sectionLibraryClassDecl
	sectionPcd
	sectionPcdDecl
	sectionGuids
	sectionPpis
	sectionProtocols
	sectionComponents
	sectionSources
	sectionBinaries
	sectionDepex
	sectionUserExtensions
)

// classifySection maps a section header name to its kind and, for PCD
// sections, the PCD category implied by the name.
func classifySection(name string) (sectionKind, pcdvalue.Category) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	switch upper {
	case "DEFINES":
		return sectionDefines, pcdvalue.CategoryUnknown
	case "SKUIDS":
		return sectionSkuIds, pcdvalue.CategoryUnknown
	case "DEFAULTSTORES":
		return sectionDefaultStores, pcdvalue.CategoryUnknown
	case "BUILDOPTIONS":
		return sectionBuildOptions, pcdvalue.CategoryUnknown
	case "PACKAGES", "LIBRARYCLASSES":
		return sectionPath, pcdvalue.CategoryUnknown
	case "GUIDS":
		return sectionGuids, pcdvalue.CategoryUnknown
	case "PPIS":
		return sectionPpis, pcdvalue.CategoryUnknown
	case "PROTOCOLS":
		return sectionProtocols, pcdvalue.CategoryUnknown
	case "COMPONENTS":
		return sectionComponents, pcdvalue.CategoryUnknown
	case "SOURCES":
		return sectionSources, pcdvalue.CategoryUnknown
	case "BINARIES":
		return sectionBinaries, pcdvalue.CategoryUnknown
	case "DEPEX":
		return sectionDepex, pcdvalue.CategoryUnknown
	case "USEREXTENSIONS":
		return sectionUserExtensions, pcdvalue.CategoryUnknown
	}

	if strings.HasPrefix(upper, "PCDS") {
		switch {
		case strings.Contains(upper, "FEATUREFLAG"):
			return sectionPcd, pcdvalue.CategoryFeatureFlag
		case strings.Contains(upper, "FIXEDATBUILD"):
			return sectionPcd, pcdvalue.CategoryFixedAtBuild
		case strings.Contains(upper, "PATCHABLEINMODULE"):
			return sectionPcd, pcdvalue.CategoryPatchableInModule
		case strings.Contains(upper, "DYNAMICEXDEFAULT"):
			return sectionPcd, pcdvalue.CategoryDynamicExDefault
		case strings.Contains(upper, "DYNAMICDEFAULT"):
			return sectionPcd, pcdvalue.CategoryDynamicDefault
		case strings.Contains(upper, "DYNAMICEXVPD"):
			return sectionPcd, pcdvalue.CategoryDynamicExVPD
		case strings.Contains(upper, "DYNAMICVPD"):
			return sectionPcd, pcdvalue.CategoryDynamicVPD
		case strings.Contains(upper, "DYNAMICEXHII"):
			return sectionPcd, pcdvalue.CategoryDynamicExHII
		case strings.Contains(upper, "DYNAMICHII"):
			return sectionPcd, pcdvalue.CategoryDynamicHII
		}
		return sectionPcdDecl, pcdvalue.CategoryUnknown
	}

	return sectionUnknown, pcdvalue.CategoryUnknown
}
