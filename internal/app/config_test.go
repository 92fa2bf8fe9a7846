package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_RequiresSuitePath(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)

	cfg, err := NewConfig(Config{SuitePath: "suites/smoke.hcl", LogLevel: "info"})
	require.NoError(t, err)
	assert.Equal(t, "suites/smoke.hcl", cfg.SuitePath)
}
