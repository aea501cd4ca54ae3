package wire

import (
	"strings"
	"testing"

	"github.com/traffic-mim/server/internal/config"
	"github.com/traffic-mim/server/internal/dial"
	"github.com/traffic-mim/server/internal/fileedit"
	"github.com/traffic-mim/server/internal/procreg"
	"github.com/traffic-mim/server/internal/traffic"
)

func newTestContext() *traffic.Context {
	return &traffic.Context{
		Config: &config.Config{},
		Procs:  procreg.NewTable(),
		Edits:  fileedit.NewTracker(nil),
		Peer:   traffic.NewPeerRegistry(),
		InProc: traffic.NewInProcRegistry(),
		Dialer: mustDialer(),
	}
}

func mustDialer() dial.Dialer {
	d, err := dial.New("")
	if err != nil {
		panic(err)
	}
	return d
}

func TestIsTerminate(t *testing.T) {
	if !IsTerminate([]byte("TERMINATE_SERVER")) {
		t.Error("want sentinel recognized")
	}
	if IsTerminate([]byte("SUT_COMMAND_LINE:[]")) {
		t.Error("want non-sentinel rejected")
	}
}

func TestParseServerState(t *testing.T) {
	ctx := newTestContext()
	msg, err := Parse(ctx, []byte("SUT_SERVER:127.0.0.1:9000"))
	if err != nil {
		t.Fatal(err)
	}
	ss, ok := msg.(traffic.ServerState)
	if !ok {
		t.Fatalf("got %T, want ServerState", msg)
	}
	if ss.Raw != "127.0.0.1:9000" {
		t.Errorf("Raw = %q", ss.Raw)
	}
}

func TestParseCommandLine(t *testing.T) {
	ctx := newTestContext()
	raw := "SUT_COMMAND_LINE:" + strings.Join([]string{
		`['echo', 'hi']`,
		`{'PATH': '/usr/bin'}`,
		`/home/foo`,
		`42`,
	}, ":SUT_SEP:")

	msg, err := Parse(ctx, []byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	cl, ok := msg.(traffic.CommandLine)
	if !ok {
		t.Fatalf("got %T, want CommandLine", msg)
	}
	if len(cl.Argv) != 2 || cl.Argv[0] != "echo" || cl.Argv[1] != "hi" {
		t.Errorf("Argv = %v", cl.Argv)
	}
	if cl.Cwd != "/home/foo" || cl.ProxyPid != "42" {
		t.Errorf("Cwd=%q ProxyPid=%q", cl.Cwd, cl.ProxyPid)
	}
}

func TestParseCommandKill(t *testing.T) {
	msg, err := parseCommandKill("9:SUT_SEP:42")
	if err != nil {
		t.Fatal(err)
	}
	kill, ok := msg.(traffic.CommandLineKill)
	if !ok {
		t.Fatalf("got %T, want CommandLineKill", msg)
	}
	if int(kill.Signal) != 9 || kill.ProxyPid != "42" {
		t.Errorf("Signal=%v ProxyPid=%q", kill.Signal, kill.ProxyPid)
	}
}

func TestParseUnknownPrefixFallsBackToClientSocket(t *testing.T) {
	ctx := newTestContext()
	msg, err := Parse(ctx, []byte("raw bytes nobody recognizes"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := msg.(traffic.ClientSocket); !ok {
		t.Fatalf("got %T, want ClientSocket fallback", msg)
	}
}

func TestParsePythonImport(t *testing.T) {
	ctx := newTestContext()
	msg, err := Parse(ctx, []byte("SUT_PYTHON_IMPORT:mymodule"))
	if err != nil {
		t.Fatal(err)
	}
	imp, ok := msg.(traffic.InProcImport)
	if !ok || imp.Module != "mymodule" {
		t.Fatalf("got %#v", msg)
	}
}
