package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_FormatPrint(t *testing.T) {
	testCases := []struct {
		name   string
		input  Value
		expect string
	}{
		{"nil", NilValue, "nil"},
		{"whole number has no decimal point", NumberValue(5), "5"},
		{"fractional number", NumberValue(2.5), "2.5"},
		{"boolean true", BooleanValue(true), "true"},
		{"string is unquoted", StringValue("hi"), "hi"},
		{"array", ArrayValue([]Value{NumberValue(1), NumberValue(2)}), "[1, 2]"},
		{"exclusive range", ExclusiveRangeValue(1, 3), "1..3"},
		{"inclusive range", InclusiveRangeValue(1, 3), "1..=3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tc.expect, FormatPrint(tc.input))
		})
	}
}

func Test_FormatDebug_QuotesStrings(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(`"hi"`, FormatDebug(StringValue("hi")))
}

func Test_FormatDebug_TableSortedKeys(t *testing.T) {
	assert := assert.New(t)

	tbl := TableValue(map[string]Value{"z": NumberValue(1), "a": NumberValue(2)})
	assert.Equal("#{a: 2, z: 1}", FormatDebug(tbl))
}

func Test_WrapDiagnostic_WrapsLongLines(t *testing.T) {
	assert := assert.New(t)

	long := "this is a very long diagnostic message that should end up wrapped across more than one line once it exceeds the configured terminal width"
	wrapped := WrapDiagnostic(long)
	assert.Contains(wrapped, "\n")
}
