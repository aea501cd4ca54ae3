package traffic

import "testing"

func TestServerStateAnnouncesPeerAndSwapsDirection(t *testing.T) {
	ctx := &Context{Peer: NewPeerRegistry()}

	cs := ClientSocket{Swapped: ctx.Peer.Swapped()}
	if cs.Direction() != DirFromSUT {
		t.Fatalf("before any ServerState, ClientSocket direction should be unswapped")
	}

	ss := ServerState{Raw: "listening on 10.0.0.5:4000"}
	if _, err := ss.ForwardToDestination(ctx); err != nil {
		t.Fatal(err)
	}

	if ctx.Peer.Addr() != "10.0.0.5:4000" {
		t.Errorf("Peer.Addr() = %q", ctx.Peer.Addr())
	}

	cs2 := ClientSocket{Swapped: ctx.Peer.Swapped()}
	if cs2.Direction() != DirToSUT {
		t.Errorf("after ServerState, ClientSocket direction should swap to %q", DirToSUT)
	}

	st2 := ServerTraffic{Swapped: ctx.Peer.Swapped()}
	if st2.Direction() != DirFromSUT {
		t.Errorf("after swap, ServerTraffic direction should be %q", DirFromSUT)
	}
}

func TestServerStateStickyAcrossSecondAnnouncement(t *testing.T) {
	ctx := &Context{Peer: NewPeerRegistry()}

	first := ServerState{Raw: "10.0.0.1:1111"}
	first.ForwardToDestination(ctx)

	second := ServerState{Raw: "10.0.0.2:2222"}
	second.ForwardToDestination(ctx)

	if ctx.Peer.Addr() != "10.0.0.1:1111" {
		t.Errorf("second announcement should not overwrite the first: got %q", ctx.Peer.Addr())
	}
}
