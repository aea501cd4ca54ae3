package traffic

import (
	"bytes"
	"io"

	"github.com/traffic-mim/server/internal/mlog"
)

// ClientSocket is raw bytes the SUT sent toward a peer it expects to be
// a TCP server. Swapped records whether direction conventions were
// already swapped (by a prior ServerState message) when this message
// was constructed; it is set once, at parse time, by the wire layer.
type ClientSocket struct {
	Payload []byte
	Swapped bool
}

func (ClientSocket) Kind() string { return "ClientSocket" }
func (ClientSocket) Tag() string  { return "CLI" }

func (m ClientSocket) Direction() string {
	if m.Swapped {
		return DirToSUT
	}
	return DirFromSUT
}

func (m ClientSocket) HasInfo() bool { return true }

func (m ClientSocket) Description() string {
	return line(m.Direction(), "CLI", string(m.Payload))
}

func (m ClientSocket) ForwardToDestination(ctx *Context) ([]Message, error) {
	addr := ctx.Peer.Addr()
	if addr == "" {
		return nil, nil
	}

	conn, err := ctx.Dialer.Dial("tcp", addr)
	if err != nil {
		m.warnReset(ctx, err)
		return nil, nil
	}
	defer conn.Close()

	if _, err := conn.Write(m.Payload); err != nil {
		m.warnReset(ctx, err)
		return nil, nil
	}
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		cw.CloseWrite()
	}

	var buf bytes.Buffer
	_, err = io.Copy(&buf, conn)
	if err != nil {
		m.warnReset(ctx, err)
		return nil, nil
	}

	return []Message{ServerTraffic{Payload: buf.Bytes(), Swapped: m.Swapped}}, nil
}

func (ClientSocket) MakesAsynchronousEdits() bool { return false }
func (ClientSocket) EnquiryOnly([]Message) bool   { return false }

// warnReset reports a peer that refused the connection, reset it mid-write,
// or reset it before sending a full response. §4.3/§7 both require a
// warning here, not a silent drop.
func (m ClientSocket) warnReset(ctx *Context, err error) {
	if ctx.Config != nil && ctx.Config.TestPath != "" {
		mlog.Warnln("peer connection reset:", err, "(while running test at", ctx.Config.TestPath+")")
		return
	}
	mlog.Warnln("peer connection reset:", err)
}

// ServerTraffic is raw bytes a peer sent back in response to a
// ClientSocket connection (or, after a direction swap, bytes flowing
// the other way).
type ServerTraffic struct {
	Payload []byte
	Swapped bool
}

func (ServerTraffic) Kind() string { return "ServerTraffic" }
func (ServerTraffic) Tag() string  { return "SRV" }

func (m ServerTraffic) Direction() string {
	if m.Swapped {
		return DirFromSUT
	}
	return DirToSUT
}

func (m ServerTraffic) HasInfo() bool { return true }

func (m ServerTraffic) Description() string {
	return line(m.Direction(), "SRV", string(m.Payload))
}

func (ServerTraffic) ForwardToDestination(*Context) ([]Message, error) { return nil, nil }
func (ServerTraffic) MakesAsynchronousEdits() bool                     { return false }
func (ServerTraffic) EnquiryOnly([]Message) bool                       { return false }
