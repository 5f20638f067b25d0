package convention

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audiolab/sofaconv/pkg/errors"
)

func TestParseCellScalars(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want interface{}
	}{
		{"empty is absent", "", nil},
		{"spaces are absent", "   ", nil},
		{"integer", "42", int64(42)},
		{"negative integer", "-7", int64(-7)},
		{"float", "2.1", 2.1},
		{"leading dot float", ".5", 0.5},
		{"plain string", "string", "string"},
		{"name-like string", "GLOBAL:Conventions", "GLOBAL:Conventions"},
		{"exponent without dot stays string", "1e5", "1e5"},
		{"malformed float stays string", "1.2.3", "1.2.3"},
		{"surrounding whitespace trimmed", "  rm  ", "rm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCell(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCellFlatArrays(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []interface{}
	}{
		{"comma separated", "[1, 2, 3]", []interface{}{int64(1), int64(2), int64(3)}},
		{"space separated", "[0 0 1]", []interface{}{int64(0), int64(0), int64(1)}},
		{"mixed runs", "[0,  0,1]", []interface{}{int64(0), int64(0), int64(1)}},
		{"floats", "[0.5, 1.5]", []interface{}{0.5, 1.5}},
		{"mixed element types", "[1, 2.5, 3]", []interface{}{int64(1), 2.5, int64(3)}},
		{"single element", "[9]", []interface{}{int64(9)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCell(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCellNestedArrays(t *testing.T) {
	got, err := ParseCell("[0 0 0 1 0 0; 0 0 0 1 0 0]")
	require.NoError(t, err)

	nested, ok := got.([]interface{})
	require.True(t, ok, "expected a nested array")
	require.Len(t, nested, 2)
	for _, row := range nested {
		assert.Equal(t,
			[]interface{}{int64(0), int64(0), int64(0), int64(1), int64(0), int64(0)}, row)
	}

	got, err = ParseCell("[1 2; 3.5 4]")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{
		[]interface{}{int64(1), int64(2)},
		[]interface{}{3.5, int64(4)},
	}, got)
}

func TestParseCellMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"non-numeric array element", "[1, x, 3]"},
		{"empty array literal", "[]"},
		{"non-numeric nested element", "[1 2; a b]"},
		{"empty nested segment", "[1 2; ]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCell(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedCell), "got %v", err)
		})
	}
}
