package traffic

import "sync"

// PeerRegistry records the SUT's own server address, once announced by
// a ServerState message, and whether the canonical <-/-> directions for
// ClientSocket/ServerTraffic have been swapped as a result. Both are
// write-once-then-sticky for the life of the process: once the SUT has
// announced itself as a server, every later ClientSocket/ServerTraffic
// message is interpreted under the swapped convention, even ones that
// precede a later, second ServerState announcement.
type PeerRegistry struct {
	mu      sync.Mutex
	addr    string
	swapped bool
}

// NewPeerRegistry returns an empty registry.
func NewPeerRegistry() *PeerRegistry { return &PeerRegistry{} }

// Announce registers addr as the peer address and switches on direction
// swapping. Only the first call has any effect; later announcements do
// not un-swap or change the address, matching the sticky semantics the
// design's open question resolves.
func (p *PeerRegistry) Announce(addr string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.swapped {
		return
	}
	p.addr = addr
	p.swapped = true
}

// Addr returns the registered peer address, or "" if none yet.
func (p *PeerRegistry) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addr
}

// Swapped reports whether direction conventions are currently swapped.
func (p *PeerRegistry) Swapped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.swapped
}
