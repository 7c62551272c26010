package params

import (
	"os"
	"time"
)

type ListenerConfig struct {
	// Network is the network to listen on.
	// The network must be "tcp", "tcp4", "tcp6", "unix" or "unixpacket".
	Network string
	// Address is the address to listen on.
	Address string
}

type WebDaemonConfig struct {
	ListenerConfig

	// StorePath is read when the daemon runs standalone (without a live store).
	StorePath string

	// CacheTTL bounds how stale a rendered GeoJSON history may be.
	CacheTTL time.Duration

	// Token, if set, is required of every /people request,
	// in the Authorization header or the api_token query parameter.
	Token string `json:"-"`
}

func DefaultWebListenerConfig() ListenerConfig {
	return ListenerConfig{
		Network: "tcp",
		Address: "localhost:3000",
	}
}

func DefaultWebDaemonConfig() *WebDaemonConfig {
	return &WebDaemonConfig{
		ListenerConfig: DefaultWebListenerConfig(),
		StorePath:      DefaultStorePath(),
		CacheTTL:       30 * time.Second,
		Token:          os.Getenv("CATWATCH_WEB_TOKEN"),
	}
}

func DefaultTestWebDaemonConfig() *WebDaemonConfig {
	return &WebDaemonConfig{
		ListenerConfig: ListenerConfig{
			Network: "tcp",
			Address: "localhost:3333",
		},
		CacheTTL: time.Second,
	}
}
