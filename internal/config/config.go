// Package config loads server configuration from the environment, the way
// api/pkg/config/config.go does for the teacher's main API server.
package config

import "github.com/kelseyhightower/envconfig"

// ServerConfig is the full set of ambient knobs the core needs at startup
// (spec.md §6 CLI surface + §4.9 Server Core, carried as ambient stack per
// SPEC_FULL.md §10.2).
type ServerConfig struct {
	Display Display
	Network Network
	Limits  Limits
	Logging Logging
}

// Display selects which X display number this instance serves, which in
// turn derives the default TCP port and Unix-socket path (spec.md §6).
type Display struct {
	Number int `envconfig:"RXSERVER_DISPLAY" default:"0"`
}

// Network controls which transports the accept loop listens on.
type Network struct {
	UnixSocketDir string `envconfig:"RXSERVER_UNIX_SOCKET_DIR" default:"/tmp/.X11-unix"`
	EnableTCP     bool   `envconfig:"RXSERVER_ENABLE_TCP" default:"false"`
	TCPBindAddr   string `envconfig:"RXSERVER_TCP_BIND_ADDR" default:"127.0.0.1"`
}

// Limits bounds per-connection and per-server resource use (spec.md §4.1,
// §4.7 backpressure, §4.9 id-range partitioning).
type Limits struct {
	MaxClients            int  `envconfig:"RXSERVER_MAX_CLIENTS" default:"256"`
	SendQueueHighWaterMark int  `envconfig:"RXSERVER_SEND_QUEUE_HIGH_WATER_MARK" default:"4096"`
	MaxRequestLength       int  `envconfig:"RXSERVER_MAX_REQUEST_LENGTH" default:"65535"`
	BigRequestsEnabled     bool `envconfig:"RXSERVER_BIG_REQUESTS_ENABLED" default:"true"`
}

// Logging mirrors the teacher's --verbose/log-level ambient-stack knobs
// (cmd/hydra/main.go).
type Logging struct {
	Level   string `envconfig:"RXSERVER_LOG_LEVEL" default:"info"`
	Verbose bool   `envconfig:"RXSERVER_VERBOSE" default:"false"`
}

// Load reads ServerConfig from the environment.
func Load() (ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}
