package traffic

import (
	"errors"
	"net"
	"testing"

	"github.com/traffic-mim/server/internal/config"
)

type refusingDialer struct{}

func (refusingDialer) Dial(network, addr string) (net.Conn, error) {
	return nil, errors.New("connection refused")
}

func TestClientSocketUnreachablePeerWarnsAndYieldsNothing(t *testing.T) {
	ctx := &Context{
		Config: &config.Config{TestPath: "suite/case_1"},
		Peer:   NewPeerRegistry(),
		Dialer: refusingDialer{},
	}
	ss := ServerState{Raw: "10.0.0.9:9999"}
	if _, err := ss.ForwardToDestination(ctx); err != nil {
		t.Fatal(err)
	}

	cs := ClientSocket{Payload: []byte("hello")}
	got, err := cs.ForwardToDestination(ctx)
	if err != nil {
		t.Fatalf("ForwardToDestination returned an error: %v", err)
	}
	if got != nil {
		t.Errorf("want no responses for an unreachable peer, got %v", got)
	}
}

func TestClientSocketNoPeerRegisteredYieldsNothing(t *testing.T) {
	ctx := &Context{Config: &config.Config{}, Peer: NewPeerRegistry()}
	cs := ClientSocket{Payload: []byte("hello")}
	got, err := cs.ForwardToDestination(ctx)
	if err != nil || got != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", got, err)
	}
}
