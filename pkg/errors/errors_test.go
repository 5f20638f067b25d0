package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndWrap(t *testing.T) {
	base := New(ErrorTypeMalformedCell, "invalid integer")
	assert.Equal(t, "malformed_cell: invalid integer", base.Error())
	assert.NotEmpty(t, base.Stack)

	wrapped := Wrap(base, ErrorTypeMalformedRow, "failed to parse entry")
	assert.Equal(t, "malformed_row: failed to parse entry: malformed_cell: invalid integer", wrapped.Error())
	assert.Equal(t, base, wrapped.Unwrap())
	// wrapping preserves the original stack
	assert.Equal(t, base.Stack, wrapped.Stack)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "ignored"))
}

func TestIsType(t *testing.T) {
	err := Wrap(New(ErrorTypeMalformedCell, "bad cell"), ErrorTypeDocument, "compile failed")
	assert.True(t, IsType(err, ErrorTypeDocument))
	assert.False(t, IsType(err, ErrorTypeMalformedRow))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeDocument))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(ErrorTypeConnection, "refused")))
	assert.True(t, IsRetryable(New(ErrorTypeTimeout, "deadline")))
	assert.False(t, IsRetryable(New(ErrorTypeMalformedRow, "bad row")))
	assert.False(t, IsRetryable(fmt.Errorf("plain")))
}

func TestWithDetail(t *testing.T) {
	err := Newf(ErrorTypeDocument, "failed to parse line %d", 3).
		WithDetail("file", "GeneralFIR.csv").
		WithDetail("line", 3)

	require.NotNil(t, err.Details)
	assert.Equal(t, "GeneralFIR.csv", err.Details["file"])
	assert.Equal(t, 3, err.Details["line"])
}
