package traffic

import "syscall"

// CommandLineKill asks the server to signal a previously spawned
// process, identified by the same proxy PID its CommandLine invocation
// carried. It is never recorded: on replay, the outcome is already
// implied by the recorded ExitStatus of the command it targeted.
type CommandLineKill struct {
	Signal   syscall.Signal
	ProxyPid string
}

func (CommandLineKill) Kind() string      { return "CommandLineKill" }
func (CommandLineKill) Tag() string       { return "" }
func (CommandLineKill) Direction() string { return DirFromSUT }
func (CommandLineKill) HasInfo() bool     { return false }
func (CommandLineKill) Description() string { return "" }

func (m CommandLineKill) ForwardToDestination(ctx *Context) ([]Message, error) {
	return nil, ctx.Procs.Signal(m.ProxyPid, m.Signal)
}

func (CommandLineKill) MakesAsynchronousEdits() bool { return false }
func (CommandLineKill) EnquiryOnly([]Message) bool   { return true }
