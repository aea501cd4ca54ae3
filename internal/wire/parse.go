// Package wire parses one inbound request's raw bytes into a typed
// traffic.Message and renders response messages back into the bytes a
// real collaborator would have sent.
package wire

import (
	"strconv"
	"strings"
	"syscall"

	"github.com/traffic-mim/server/internal/traffic"
)

// TerminateSentinel is the literal prefix that asks the dispatcher to
// shut down instead of being parsed as traffic.
const TerminateSentinel = "TERMINATE_SERVER"

const fieldSep = ":SUT_SEP:"

const (
	prefixServerState  = "SUT_SERVER:"
	prefixCommandLine  = "SUT_COMMAND_LINE:"
	prefixCommandKill  = "SUT_COMMAND_KILL:"
	prefixPyImport     = "SUT_PYTHON_IMPORT:"
	prefixPyAttr       = "SUT_PYTHON_ATTR:"
	prefixPySetAttr    = "SUT_PYTHON_SETATTR:"
	prefixPyCall       = "SUT_PYTHON_CALL:"
)

// IsTerminate reports whether raw is the shutdown sentinel.
func IsTerminate(raw []byte) bool {
	return strings.HasPrefix(string(raw), TerminateSentinel)
}

// Parse constructs the typed Message a request's raw payload describes.
// ctx supplies the pieces needed to finish building certain kinds
// (CommandLine's env diff, ClientSocket/ServerTraffic's current
// direction-swap state).
func Parse(ctx *traffic.Context, raw []byte) (traffic.Message, error) {
	payload := string(raw)

	switch {
	case strings.HasPrefix(payload, prefixServerState):
		return traffic.ServerState{Raw: strings.TrimPrefix(payload, prefixServerState)}, nil

	case strings.HasPrefix(payload, prefixCommandLine):
		return parseCommandLine(ctx, strings.TrimPrefix(payload, prefixCommandLine))

	case strings.HasPrefix(payload, prefixCommandKill):
		return parseCommandKill(strings.TrimPrefix(payload, prefixCommandKill))

	case strings.HasPrefix(payload, prefixPyImport):
		return traffic.InProcImport{Module: strings.TrimPrefix(payload, prefixPyImport)}, nil

	case strings.HasPrefix(payload, prefixPyAttr):
		fields := strings.SplitN(strings.TrimPrefix(payload, prefixPyAttr), fieldSep, 2)
		if len(fields) != 2 {
			return rawClientSocket(ctx, raw), nil
		}
		return traffic.InProcAttribute{Target: fields[0], AttrPath: fields[1]}, nil

	case strings.HasPrefix(payload, prefixPySetAttr):
		fields := strings.SplitN(strings.TrimPrefix(payload, prefixPySetAttr), fieldSep, 3)
		if len(fields) != 3 {
			return rawClientSocket(ctx, raw), nil
		}
		return traffic.InProcSetAttribute{Target: fields[0], AttrPath: fields[1], ValueExpr: fields[2]}, nil

	case strings.HasPrefix(payload, prefixPyCall):
		fields := strings.SplitN(strings.TrimPrefix(payload, prefixPyCall), fieldSep, 4)
		if len(fields) != 4 {
			return rawClientSocket(ctx, raw), nil
		}
		return traffic.InProcCall{Target: fields[0], AttrPath: fields[1], ArgsExpr: fields[2], KwargsExpr: fields[3]}, nil

	default:
		return rawClientSocket(ctx, raw), nil
	}
}

func rawClientSocket(ctx *traffic.Context, raw []byte) traffic.Message {
	return traffic.ClientSocket{Payload: raw, Swapped: ctx.Peer.Swapped()}
}

func parseCommandLine(ctx *traffic.Context, rest string) (traffic.Message, error) {
	fields := strings.SplitN(rest, fieldSep, 2)
	if len(fields) != 2 {
		return rawClientSocket(ctx, []byte(rest)), nil
	}
	argv, err := parsePyStringList(fields[0])
	if err != nil {
		return rawClientSocket(ctx, []byte(rest)), nil
	}

	envAndCwd := strings.SplitN(fields[1], fieldSep, 3)
	if len(envAndCwd) != 3 {
		return rawClientSocket(ctx, []byte(rest)), nil
	}
	env, err := parsePyStringDict(envAndCwd[0])
	if err != nil {
		return rawClientSocket(ctx, []byte(rest)), nil
	}
	cwd := envAndCwd[1]
	proxyPid := envAndCwd[2]

	return traffic.NewCommandLine(argv, env, cwd, proxyPid, ctx.Config), nil
}

func parseCommandKill(rest string) (traffic.Message, error) {
	fields := strings.SplitN(rest, fieldSep, 2)
	if len(fields) != 2 {
		return traffic.CommandLineKill{}, nil
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return traffic.CommandLineKill{}, nil
	}
	return traffic.CommandLineKill{Signal: syscall.Signal(n), ProxyPid: fields[1]}, nil
}
