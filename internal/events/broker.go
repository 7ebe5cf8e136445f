package events

import (
	"fmt"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// brokerReadyTimeout bounds how long we wait for the embedded server
// to accept connections.
const brokerReadyTimeout = 5 * time.Second

// StartEmbeddedBroker starts an in-process NATS server on a random
// localhost port.
//
// The daemon uses this when no external broker URL is configured, so a
// single binary serves compression, events, and stats without extra
// infrastructure. Callers must Shutdown() the returned server.
func StartEmbeddedBroker() (*natsserver.Server, error) {
	opts := &natsserver.Options{
		Host:           "127.0.0.1",
		Port:           -1, // Random port
		NoLog:          true,
		NoSigs:         true,
		MaxControlLine: 2048,
	}

	server, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded broker: %w", err)
	}

	go server.Start()

	if !server.ReadyForConnections(brokerReadyTimeout) {
		server.Shutdown()
		return nil, fmt.Errorf("embedded broker not ready after %s", brokerReadyTimeout)
	}

	return server, nil
}

// Connect opens a NATS connection with reconnect behavior suitable for
// a long-running daemon. Extra options (authentication, TLS) are applied
// after the defaults.
func Connect(url string, opts ...nats.Option) (*nats.Conn, error) {
	options := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1 * time.Second),
	}
	options = append(options, opts...)

	nc, err := nats.Connect(url, options...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}
