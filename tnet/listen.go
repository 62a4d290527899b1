// Package tnet opens listeners from address strings
package tnet

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/ridge/must/v2"
)

var lc = net.ListenConfig{
	KeepAlive: 3 * time.Minute,
}

// Listen opens a listener on an address of the form [tcp:|unix:]address.
// Without a prefix the address is a TCP [host]:port; "unix:" takes a
// socket path.
func Listen(address string) (net.Listener, error) {
	network := "tcp"
	if proto, rest, ok := strings.Cut(address, ":"); ok && (proto == "tcp" || proto == "unix") {
		network, address = proto, rest
	}
	return lc.Listen(context.Background(), network, address)
}

// ListenOnRandomPort listens on a random local TCP port
func ListenOnRandomPort() net.Listener {
	return must.OK1(Listen("localhost:"))
}
