package sshserver

import (
	"pkt.systems/tchat/core"
	"pkt.systems/tchat/schema"
)

// Config defines SSH frontend settings.
type Config struct {
	Addr        string
	HostKeyPath string
	// Client is the template for every session; the nick comes from the SSH user.
	Client schema.ClientConfig
	// Dialer overrides the websocket dialer built from Client.Backend.
	Dialer core.Dialer
}
