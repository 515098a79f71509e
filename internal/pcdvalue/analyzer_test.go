package pcdvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeFeatureFlagSingleField(t *testing.T) {
	r, err := Analyze("TRUE", CategoryFeatureFlag)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", r.Value)
}

func TestAnalyzeFeatureFlagRejectsExtraFields(t *testing.T) {
	_, err := Analyze("TRUE|FALSE", CategoryFeatureFlag)
	assert.Error(t, err)
}

func TestAnalyzeFixedAtBuildValueOnly(t *testing.T) {
	r, err := Analyze("0x0F", CategoryFixedAtBuild)
	require.NoError(t, err)
	assert.Equal(t, "0x0F", r.Value)
	assert.Empty(t, r.DatumType)
	assert.Empty(t, r.Size)
}

func TestAnalyzeFixedAtBuildWithDatumTypeAndSize(t *testing.T) {
	r, err := Analyze("0x0F|UINT8|4", CategoryFixedAtBuild)
	require.NoError(t, err)
	assert.Equal(t, "0x0F", r.Value)
	assert.Equal(t, "UINT8", r.DatumType)
	assert.Equal(t, "4", r.Size)
}

func TestAnalyzeFixedAtBuildInvalidDatumType(t *testing.T) {
	_, err := Analyze("0x0F|Not A Type", CategoryFixedAtBuild)
	assert.Error(t, err)
}

func TestAnalyzeFixedAtBuildInvalidSize(t *testing.T) {
	_, err := Analyze("0x0F|UINT8|not-a-size", CategoryFixedAtBuild)
	assert.Error(t, err)
}

func TestAnalyzeFixedAtBuildTooManyFields(t *testing.T) {
	_, err := Analyze("1|UINT8|4|extra", CategoryFixedAtBuild)
	assert.Error(t, err)
}

func TestAnalyzeVPDOffsetSizeValue(t *testing.T) {
	r, err := Analyze("0x00|4|1", CategoryDynamicVPD)
	require.NoError(t, err)
	assert.Equal(t, "0x00", r.Offset)
	assert.Equal(t, "4", r.Size)
	assert.Equal(t, "1", r.Value)
}

func TestAnalyzeVPDInvalidSize(t *testing.T) {
	_, err := Analyze("0x00|bogus", CategoryDynamicVPD)
	assert.Error(t, err)
}

func TestAnalyzeHIIRequiresThreeToFiveFields(t *testing.T) {
	_, err := Analyze("L\"MyString\"|gMyGuid", CategoryDynamicHII)
	assert.Error(t, err)

	r, err := Analyze("L\"MyString\"|gMyGuid|0x0", CategoryDynamicHII)
	require.NoError(t, err)
	assert.Equal(t, "L\"MyString\"", r.HiiString)
	assert.Equal(t, "gMyGuid", r.Guid)
	assert.Equal(t, "0x0", r.Offset)
}

func TestAnalyzeHIIWithValueAndAttribute(t *testing.T) {
	r, err := Analyze("L\"MyString\"|gMyGuid|0x0|1|NV", CategoryDynamicExHII)
	require.NoError(t, err)
	assert.Equal(t, "1", r.Value)
	assert.Equal(t, "NV", r.Attribute)
}

func TestAnalyzeOpaqueCodeBlockIsSingleField(t *testing.T) {
	r, err := Analyze("{CODE({ 0x1, 0x2 })}", CategoryFixedAtBuild)
	require.NoError(t, err)
	assert.Equal(t, "{CODE({ 0x1, 0x2 })}", r.Value)
}

func TestValidateDatumBoolean(t *testing.T) {
	assert.NoError(t, ValidateDatum("BOOLEAN", "TRUE"))
	assert.NoError(t, ValidateDatum("BOOLEAN", "0x0"))
	assert.Error(t, ValidateDatum("BOOLEAN", "maybe"))
}

func TestValidateDatumNumericRange(t *testing.T) {
	assert.NoError(t, ValidateDatum("UINT8", "255"))
	assert.Error(t, ValidateDatum("UINT8", "256"))
	assert.Error(t, ValidateDatum("UINT32", "-1"))
}

func TestValidateDatumUint64MaxValueAccepted(t *testing.T) {
	assert.NoError(t, ValidateDatum("UINT64", "0xFFFFFFFFFFFFFFFF"))
	assert.Error(t, ValidateDatum("UINT32", "0xFFFFFFFFFFFFFFFF"))
}

func TestValidateDatumVoidStarString(t *testing.T) {
	assert.NoError(t, ValidateDatum("VOID*", `"hello"`))
	assert.NoError(t, ValidateDatum("", `L"hello"`))
	assert.NoError(t, ValidateDatum("VOID*", "{0x1, 0x2}"))
	assert.Error(t, ValidateDatum("VOID*", "not-quoted"))
}

func TestValidateDatumStructFallsThrough(t *testing.T) {
	assert.NoError(t, ValidateDatum("MY_STRUCT_TYPE", "anything"))
}

func TestNormalizeBool(t *testing.T) {
	assert.Equal(t, "1", NormalizeBool("TRUE"))
	assert.Equal(t, "0", NormalizeBool("false"))
	assert.Equal(t, "other", NormalizeBool("other"))
}

func TestCategoryPredicates(t *testing.T) {
	assert.True(t, CategoryFeatureFlag.IsExpressionValued())
	assert.True(t, CategoryFixedAtBuild.IsExpressionValued())
	assert.False(t, CategoryDynamicDefault.IsExpressionValued())

	assert.True(t, CategoryDynamicVPD.IsVPD())
	assert.True(t, CategoryDynamicExVPD.IsVPD())
	assert.False(t, CategoryDynamicHII.IsVPD())

	assert.True(t, CategoryDynamicHII.IsHII())
	assert.True(t, CategoryDynamicExHII.IsHII())

	assert.True(t, CategoryFixedAtBuild.IsDefaultLike())
	assert.True(t, CategoryPatchableInModule.IsDefaultLike())
	assert.False(t, CategoryDynamicVPD.IsDefaultLike())
}
