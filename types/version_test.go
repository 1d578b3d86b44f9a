package types //nolint:revive // types is a valid package name

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion_Format(t *testing.T) {
	assert.Regexp(t, `^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`, Version)
}

func TestProtocolVersion_MatchesVersion(t *testing.T) {
	assert.Equal(t, Version, ProtocolVersion)
}
