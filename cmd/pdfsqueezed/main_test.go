package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaemonServesAndDrains(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping daemon integration test")
	}

	// A port nothing else in the suite binds.
	t.Setenv("PDFSQUEEZE_SERVER_HTTP_PORT", "8427")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	base := "http://localhost:8427"

	// The embedded broker and listener need a moment to come up.
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 100*time.Millisecond, "daemon never became healthy")

	stats, err := http.Get(base + "/api/v1/stats")
	require.NoError(t, err)
	stats.Body.Close()
	assert.Equal(t, http.StatusOK, stats.StatusCode)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not drain in time")
	}
}
