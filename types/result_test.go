package types //nolint:revive // types is a valid package name

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResult(t *testing.T) {
	res := NewResult(true, false)
	assert.True(t, res.IsUnique)
	assert.False(t, res.OptionalOutput)
	assert.False(t, res.StatusKnown)
	assert.NotNil(t, res.Errors)
	assert.NotNil(t, res.Warnings)
	assert.False(t, res.Succeeded())
}

func TestResult_FailAndWarn(t *testing.T) {
	res := NewResult(true, true)
	res.Warn("careful")
	assert.False(t, res.StatusKnown, "warnings never decide the status")

	res.Fail("broken")
	assert.True(t, res.StatusKnown)
	assert.False(t, res.Status)
	assert.Equal(t, []string{"broken"}, res.Errors)
	assert.Equal(t, []string{"careful"}, res.Warnings)
}

func TestResult_Decode(t *testing.T) {
	res := Result{StatusKnown: true, Status: true, Data: `{"n": 3}`}
	var v struct{ N int }
	require.NoError(t, res.Decode(&v))
	assert.Equal(t, 3, v.N)

	res.Status = false
	assert.ErrorIs(t, res.Decode(&v), ErrNoData)
}
