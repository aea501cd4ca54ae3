// Package diag serves a tiny line-oriented inspection protocol over a
// Unix socket so a running server can be queried by cmd/trafficctl
// without disturbing the SUT-facing wire protocol on the main listener.
package diag

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/traffic-mim/server/internal/config"
	"github.com/traffic-mim/server/internal/mlog"
	"github.com/traffic-mim/server/internal/traffic"
)

// Server answers "status" and "watched" queries about a running
// traffic server's context and configuration.
type Server struct {
	ln  net.Listener
	ctx *traffic.Context
	cfg *config.Config
}

// Listen removes any stale socket at path and binds a new Unix listener
// there.
func Listen(path string, ctx *traffic.Context, cfg *config.Config) (*Server, error) {
	os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	return &Server{ln: ln, ctx: ctx, cfg: cfg}, nil
}

// Serve accepts connections until the listener is closed, handling each
// one on its own goroutine; a client may send any number of commands
// over a single connection, one per line.
func (s *Server) Serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fmt.Fprintln(conn, s.reply(line))
	}
}

func (s *Server) reply(cmd string) string {
	switch strings.ToLower(cmd) {
	case "status":
		return fmt.Sprintf("record=%s replay=%s sequential=%v replaying=%v",
			s.cfg.RecordFile, s.cfg.ReplayFile, s.cfg.Sequential, s.ctx.Replaying)
	case "watched":
		watched := s.ctx.Edits.Watched()
		if len(watched) == 0 {
			return "(no watched paths)"
		}
		return strings.Join(watched, ", ")
	case "peer":
		addr := s.ctx.Peer.Addr()
		if addr == "" {
			return "(no peer announced)"
		}
		return addr
	default:
		return "unknown command: " + cmd + " (try status, watched, peer)"
	}
}

// Close shuts down the listener and removes its socket file.
func (s *Server) Close() {
	path := s.ln.Addr().String()
	if err := s.ln.Close(); err != nil {
		mlog.Errorln("closing diagnostic socket:", err)
	}
	os.Remove(path)
}
