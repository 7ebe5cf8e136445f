package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultHistorySize is the number of completion samples retained when
// no size is configured.
const DefaultHistorySize = 120

// Sample records one completed compression for the stats history.
type Sample struct {
	Timestamp        time.Time `json:"timestamp"`
	OriginalTokens   int       `json:"original_tokens"`
	CompressedTokens int       `json:"compressed_tokens"`
	RetentionPercent float64   `json:"retention_percent"`
	DurationMS       int64     `json:"duration_ms"`
}

// Stats is a point-in-time snapshot of aggregate compression activity.
//
// Served by GET /api/v1/stats and rendered by the monitor TUI.
type Stats struct {
	StartedAt           time.Time `json:"started_at"`
	ActiveOperations    int       `json:"active_operations"`
	Completed           int64     `json:"completed"`
	Failed              int64     `json:"failed"`
	OriginalTokens      int64     `json:"original_tokens"`
	CompressedTokens    int64     `json:"compressed_tokens"`
	TokensSaved         int64     `json:"tokens_saved"`
	AvgRetentionPercent float64   `json:"avg_retention_percent"`
	History             []Sample  `json:"history"`
}

// Collector subscribes to all compression events and maintains rolling
// statistics.
//
// The collector consumes events from a buffered channel subscription so
// publishers are never blocked by aggregation.
type Collector struct {
	sub  *nats.Subscription
	ch   chan *nats.Msg
	done chan struct{}

	mu               sync.Mutex
	startedAt        time.Time
	active           int
	completed        int64
	failed           int64
	originalTokens   int64
	compressedTokens int64
	retentionSum     float64
	history          []Sample
	historySize      int
}

// NewCollector subscribes to compression events on the given connection
// and starts aggregating.
//
// historySize bounds the retained completion samples; values <= 0 use
// DefaultHistorySize. Callers must Close() the collector.
func NewCollector(nc *nats.Conn, historySize int) (*Collector, error) {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}

	ch := make(chan *nats.Msg, 256)
	sub, err := nc.ChanSubscribe(AllSubjects, ch)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", AllSubjects, err)
	}

	c := &Collector{
		sub:         sub,
		ch:          ch,
		done:        make(chan struct{}),
		startedAt:   time.Now(),
		history:     make([]Sample, 0, historySize),
		historySize: historySize,
	}

	go c.run()

	return c, nil
}

// run consumes events until Close.
func (c *Collector) run() {
	for {
		select {
		case msg := <-c.ch:
			if msg != nil {
				c.handle(msg)
			}
		case <-c.done:
			return
		}
	}
}

// handle routes one event by the trailing subject token.
func (c *Collector) handle(msg *nats.Msg) {
	parts := strings.Split(msg.Subject, ".")
	if len(parts) != 3 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch parts[2] {
	case EventStarted:
		c.active++
	case EventCompleted:
		var event CompletedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return
		}
		if c.active > 0 {
			c.active--
		}
		c.completed++
		c.originalTokens += int64(event.OriginalTokens)
		c.compressedTokens += int64(event.CompressedTokens)
		c.retentionSum += event.RetentionPercent
		c.appendSample(Sample{
			Timestamp:        event.Timestamp,
			OriginalTokens:   event.OriginalTokens,
			CompressedTokens: event.CompressedTokens,
			RetentionPercent: event.RetentionPercent,
			DurationMS:       event.DurationMS,
		})
	case EventError:
		if c.active > 0 {
			c.active--
		}
		c.failed++
	}
}

// appendSample adds a completion sample, dropping the oldest when full.
// Caller holds the lock.
func (c *Collector) appendSample(s Sample) {
	if len(c.history) == c.historySize {
		copy(c.history, c.history[1:])
		c.history = c.history[:len(c.history)-1]
	}
	c.history = append(c.history, s)
}

// Snapshot returns a copy of the current statistics.
func (c *Collector) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	history := make([]Sample, len(c.history))
	copy(history, c.history)

	avg := 0.0
	if c.completed > 0 {
		avg = c.retentionSum / float64(c.completed)
	}

	return Stats{
		StartedAt:           c.startedAt,
		ActiveOperations:    c.active,
		Completed:           c.completed,
		Failed:              c.failed,
		OriginalTokens:      c.originalTokens,
		CompressedTokens:    c.compressedTokens,
		TokensSaved:         c.originalTokens - c.compressedTokens,
		AvgRetentionPercent: avg,
		History:             history,
	}
}

// Close unsubscribes and stops the aggregation goroutine.
func (c *Collector) Close() error {
	close(c.done)
	if err := c.sub.Unsubscribe(); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}
