// Package dial provides the outbound connection used by ClientSocket
// traffic to reach the SUT's real peer, optionally routed through a
// SOCKS5 proxy for lab setups where the peer is only reachable via a
// jump host.
package dial

import (
	"net"

	"golang.org/x/net/proxy"
)

// Dialer dials a network address on behalf of ClientSocket traffic.
type Dialer interface {
	Dial(network, addr string) (net.Conn, error)
}

type direct struct{}

func (direct) Dial(network, addr string) (net.Conn, error) {
	return net.Dial(network, addr)
}

type socks5 struct {
	d proxy.Dialer
}

func (s socks5) Dial(network, addr string) (net.Conn, error) {
	return s.d.Dial(network, addr)
}

// New returns a direct dialer, or, when socksAddr is non-empty, a dialer
// that routes connections through the SOCKS5 proxy at socksAddr.
func New(socksAddr string) (Dialer, error) {
	if socksAddr == "" {
		return direct{}, nil
	}
	d, err := proxy.SOCKS5("tcp", socksAddr, nil, proxy.Direct)
	if err != nil {
		return nil, err
	}
	return socks5{d}, nil
}
