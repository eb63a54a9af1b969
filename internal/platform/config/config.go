// Package config loads process configuration from the environment so main
// stays lean. Field names follow the RPC variables the deployment already
// exports for the ledger node.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Ledger holds the connection settings for the external ledger node.
type Ledger struct {
	Host     string `env:"CONFIG_RPC_HOST" envDefault:"localhost"`
	Port     int    `env:"CONFIG_RPC_PORT" envDefault:"10006"`
	Username string `env:"CONFIG_RPC_USERNAME"`
	Password string `env:"CONFIG_RPC_PASSWORD"`

	// QueryTimeout bounds every vault query; expiry surfaces as an
	// upstream fault instead of blocking the request worker.
	QueryTimeout time.Duration `env:"LEDGER_QUERY_TIMEOUT" envDefault:"15s"`
	// PollInterval drives the HTTP client's live-update polling loop.
	PollInterval time.Duration `env:"LEDGER_POLL_INTERVAL" envDefault:"5s"`
}

// Addr renders the node's host:port pair.
func (l Ledger) Addr() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

// Server captures the HTTP facade configuration.
type Server struct {
	Addr            string        `env:"GATEWAY_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"GATEWAY_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// ListenerEntity names the record stream the background listener
	// tracks. Empty disables the listener.
	ListenerEntity string `env:"GATEWAY_LISTENER_ENTITY" envDefault:"instruct_conveyancer"`

	Ledger Ledger
}

// FromEnv parses the full gateway configuration from the environment.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
