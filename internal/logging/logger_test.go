package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Development", func(t *testing.T) {
		logger, err := New(true)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("Production", func(t *testing.T) {
		logger, err := New(false)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})
}

func TestInitLogger(t *testing.T) {
	InitLogger()
	assert.NotNil(t, L)
	// Must be usable without panicking.
	L.Debug("init logger smoke test")
}
