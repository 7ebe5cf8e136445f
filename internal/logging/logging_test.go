package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "trace", want: TraceLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: "info", want: zapcore.InfoLevel},
		{in: "warn", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "verbose", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestTraceLevelBelowDebug(t *testing.T) {
	assert.Less(t, TraceLevel, zapcore.DebugLevel)
}

func TestNew(t *testing.T) {
	t.Run("json defaults", func(t *testing.T) {
		logger, err := New(DefaultOptions())
		require.NoError(t, err)
		logger.Info("started")
		assert.NoError(t, Flush(logger))
	})

	t.Run("console format", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Format = "console"
		logger, err := New(opts)
		require.NoError(t, err)
		logger.Info("started")
	})

	t.Run("unknown format rejected", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Format = "logfmt"
		_, err := New(opts)
		assert.ErrorContains(t, err, "logfmt")
	})

	t.Run("bad scrub pattern rejected", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ScrubPatterns = []string{"[unclosed"}
		_, err := New(opts)
		assert.ErrorContains(t, err, "scrub pattern")
	})

	t.Run("otel bridge tee", func(t *testing.T) {
		opts := DefaultOptions()
		opts.OTELProvider = noop.NewLoggerProvider()
		logger, err := New(opts)
		require.NoError(t, err)
		logger.Info("bridged entry")
	})

	t.Run("trace level enabled", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Level = TraceLevel
		logger, err := New(opts)
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(TraceLevel))
	})
}

func TestSampleBelowError(t *testing.T) {
	base, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(sampleBelowError(base))

	const repeats = 200
	for i := 0; i < repeats; i++ {
		logger.Info("hot path entry")
	}
	for i := 0; i < 5; i++ {
		logger.Error("failure entry")
	}

	var infos, errors int
	for _, entry := range logs.All() {
		switch entry.Level {
		case zapcore.InfoLevel:
			infos++
		case zapcore.ErrorLevel:
			errors++
		}
	}

	assert.Less(t, infos, repeats, "repetitive info entries should be sampled")
	assert.Positive(t, infos)
	assert.Equal(t, 5, errors, "errors must never be dropped")
}

func TestSampleBelowError_WithPreservesSplit(t *testing.T) {
	base, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(sampleBelowError(base)).With(zap.String("component", "httpapi"))

	logger.Error("boom")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Context, 1)
	assert.Equal(t, "component", entries[0].Context[0].Key)
}

func TestFlushIgnoresTTYErrors(t *testing.T) {
	// Nop loggers sync cleanly; stdout loggers return EINVAL or ENOTTY on
	// Linux, which Flush must swallow. Both paths end in nil.
	assert.NoError(t, Flush(zap.NewNop()))

	logger, err := New(DefaultOptions())
	require.NoError(t, err)
	assert.NoError(t, Flush(logger))
}
