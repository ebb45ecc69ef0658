package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitReplacesGlobalLogger(t *testing.T) {
	before := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(before) })

	require.NoError(t, Init("dev"))
	assert.NotSame(t, before, zap.L())
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.NoError(t, Init("prod"))
	assert.False(t, zap.L().Core().Enabled(zap.DebugLevel))
}
