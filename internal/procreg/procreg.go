// Package procreg tracks processes the traffic server has spawned on
// behalf of the system under test, keyed by the proxy PID the SUT-side
// interceptor assigns each invocation, so a later CommandLineKill
// message can find and signal the right one.
package procreg

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/kr/pty"
)

// Table is a mutex-guarded registry of in-flight spawned processes.
type Table struct {
	mu    sync.Mutex
	procs map[string]*os.Process
}

// NewTable returns an empty, ready-to-use Table.
func NewTable() *Table {
	return &Table{procs: make(map[string]*os.Process)}
}

func (t *Table) register(proxyPid string, p *os.Process) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.procs[proxyPid] = p
}

func (t *Table) unregister(proxyPid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.procs, proxyPid)
}

// Signal delivers sig to the process registered under proxyPid. A
// missing entry (already exited, or never spawned) is not an error: the
// SUT may race a kill against natural exit.
func (t *Table) Signal(proxyPid string, sig syscall.Signal) error {
	t.mu.Lock()
	p, ok := t.procs[proxyPid]
	t.mu.Unlock()
	if !ok {
		return nil
	}
	return p.Signal(sig)
}

// Result is the outcome of spawning and waiting for a command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Spawn runs argv with the given environment and working directory,
// registering the live process in t under proxyPid for the duration of
// the run. When usePTY is set, the command is started with a
// controlling terminal via github.com/kr/pty instead of plain pipes;
// stdout and stderr are then interleaved onto the single pty file,
// matching what an interactive sub-program would see.
func (t *Table) Spawn(argv []string, env []string, cwd string, proxyPid string, usePTY bool) Result {
	if len(argv) == 0 {
		return Result{Stderr: "ERROR: empty command line", ExitCode: 1}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env
	cmd.Dir = cwd

	if usePTY {
		return t.spawnPTY(cmd, proxyPid)
	}
	return t.spawnPipes(cmd, proxyPid)
}

func (t *Table) spawnPipes(cmd *exec.Cmd, proxyPid string) Result {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{Stderr: "ERROR: " + err.Error(), ExitCode: 1}
	}

	t.register(proxyPid, cmd.Process)
	err := cmd.Wait()
	t.unregister(proxyPid)

	return Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCodeOf(err),
	}
}

func (t *Table) spawnPTY(cmd *exec.Cmd, proxyPid string) Result {
	f, err := pty.Start(cmd)
	if err != nil {
		return Result{Stderr: "ERROR: " + err.Error(), ExitCode: 1}
	}
	defer f.Close()

	t.register(proxyPid, cmd.Process)

	var out bytes.Buffer
	buf := make([]byte, 4096)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			out.Write(buf[:n])
		}
		if rerr != nil {
			break
		}
	}

	err = cmd.Wait()
	t.unregister(proxyPid)

	// A pty has no separate stderr stream; everything the child wrote
	// ends up interleaved on stdout.
	return Result{
		Stdout:   out.String(),
		ExitCode: exitCodeOf(err),
	}
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			return status.ExitStatus()
		}
	}
	return 1
}

// BaseName returns the program name a command/argv list would be
// matched against by -a/-pty/-e's command-name lists: the last path
// element of argv[0].
func BaseName(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	parts := strings.Split(strings.ReplaceAll(argv[0], "\\", "/"), "/")
	return parts[len(parts)-1]
}

