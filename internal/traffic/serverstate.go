package traffic

import "strings"

// ServerState is sent once the SUT has started listening as a server
// itself; its payload ends in a whitespace-separated "host:port" token
// naming the address peers (and this server, for ClientSocket dials)
// should use. The first occurrence registers that address and sticks
// the canonical <-/-> directions in a swapped state for every later
// ClientSocket/ServerTraffic message, since the SUT is now the callee.
type ServerState struct {
	Raw string
}

func (ServerState) Kind() string      { return "ServerState" }
func (ServerState) Tag() string       { return "SRV" }
func (ServerState) Direction() string { return DirToSUT }
func (m ServerState) HasInfo() bool   { return true }

func (m ServerState) Description() string { return line(DirToSUT, "SRV", m.Raw) }

func (m ServerState) ForwardToDestination(ctx *Context) ([]Message, error) {
	if addr := lastToken(m.Raw); addr != "" {
		ctx.Peer.Announce(addr)
	}
	return nil, nil
}

func (ServerState) MakesAsynchronousEdits() bool { return false }
func (ServerState) EnquiryOnly([]Message) bool   { return false }

func lastToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
