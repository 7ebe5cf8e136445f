package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/compress"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/extract"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/redact"
)

func newTestServices(t *testing.T) (*compress.Service, *extract.Registry, *redact.Redactor) {
	t.Helper()

	compressor, err := compress.NewService(compress.Config{})
	require.NoError(t, err)

	extractor := extract.NewRegistry(extract.Config{})

	redactor, err := redact.New(nil)
	require.NoError(t, err)

	return compressor, extractor, redactor
}

func TestNew(t *testing.T) {
	compressor, extractor, redactor := newTestServices(t)

	t.Run("full options", func(t *testing.T) {
		srv, err := New(Options{
			Version:    "1.2.3",
			Logger:     zap.NewNop(),
			Compressor: compressor,
			Extractor:  extractor,
			Redactor:   redactor,
		})
		require.NoError(t, err)
		require.NotNil(t, srv.sdk)
		assert.NotNil(t, srv.metrics)
	})

	t.Run("defaults fill logger and version", func(t *testing.T) {
		srv, err := New(Options{Compressor: compressor, Extractor: extractor})
		require.NoError(t, err)
		require.NotNil(t, srv.logger)
	})

	t.Run("redactor is optional", func(t *testing.T) {
		srv, err := New(Options{Compressor: compressor, Extractor: extractor})
		require.NoError(t, err)
		assert.Nil(t, srv.redactor)
	})

	t.Run("compressor required", func(t *testing.T) {
		_, err := New(Options{Extractor: extractor})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "compress service")
	})

	t.Run("extractor required", func(t *testing.T) {
		_, err := New(Options{Compressor: compressor})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extract registry")
	})
}
