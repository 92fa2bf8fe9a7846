package fixture

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, s string) *File {
	t.Helper()
	f, err := Parse(strings.NewReader(s))
	require.NoError(t, err)
	return f
}

func TestValidate_ReferenceFixture(t *testing.T) {
	f := parseString(t, referenceFixture)
	require.NoError(t, f.Validate())
}

func TestValidate_MissingSeparator(t *testing.T) {
	f := parseString(t, "model_name:transformer\n")
	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one \"##\" separator, found 0")
}

func TestValidate_MultipleSeparators(t *testing.T) {
	f := parseString(t, "a:1\n##\nb:2\n##\nc:3\n")
	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 2")
}

func TestValidate_ColonlessLine(t *testing.T) {
	f := parseString(t, "model_name:transformer\nbogus line without delimiter\n##\n")
	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "no colon")
}

func TestValidate_CommandInHeader(t *testing.T) {
	f := parseString(t, "sed -i 's/a: 1/a: 2/g' conf.yaml\n##\nb:2\n")
	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before the \"##\" separator")
}

func TestValidate_CommandNotLast(t *testing.T) {
	f := parseString(t, "a:1\n##\nsed -i 's/a: 1/a: 2/g' conf.yaml\nb:2\n")
	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not the final line")
}

func TestValidate_TrailingBlanksAfterCommandAllowed(t *testing.T) {
	f := parseString(t, "a:1\n##\nsed -i 's/a: 1/a: 2/g' conf.yaml\n\n\n")
	require.NoError(t, f.Validate())
}

func TestValidate_BannersExemptFromColonRule(t *testing.T) {
	f := parseString(t, "===========params===========\na:1\n##\nb:2\n")
	require.NoError(t, f.Validate())
}
