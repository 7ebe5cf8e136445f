package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/events"
)

// StatsClient reads rolling statistics from a running pdfsqueezed.
type StatsClient struct {
	statsURL string
	http     *http.Client
}

// NewStatsClient builds a client for the daemon at baseURL. A trailing
// slash on the URL is tolerated.
func NewStatsClient(baseURL string) *StatsClient {
	return &StatsClient{
		statsURL: strings.TrimSuffix(baseURL, "/") + "/api/v1/stats",
		http:     &http.Client{Timeout: 2 * time.Second},
	}
}

// Stats fetches one statistics snapshot.
func (c *StatsClient) Stats(ctx context.Context) (events.Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statsURL, nil)
	if err != nil {
		return events.Stats{}, fmt.Errorf("build stats request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return events.Stats{}, fmt.Errorf("fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return events.Stats{}, fmt.Errorf("stats endpoint returned %s", resp.Status)
	}

	var snapshot events.Stats
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return events.Stats{}, fmt.Errorf("decode stats: %w", err)
	}
	return snapshot, nil
}
