package traffic

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/traffic-mim/server/internal/procreg"
)

// CommandLine is an invocation the SUT made of another program.
// RecordedBody is computed once, at construction time (see
// NewCommandLine), from the SUT's env/cwd diffed against the server's
// own, so that Description() stays a pure, context-free accessor the
// way the Message interface requires while still reflecting the
// env/cwd diff the design calls for.
type CommandLine struct {
	Argv         []string
	Env          map[string]string // the SUT's full environment at invocation time
	Cwd          string
	ProxyPid     string
	RecordedBody string
}

// NewCommandLine builds a CommandLine and precomputes its canonical
// record body from the SUT's env/cwd against the server's own and the
// configured transfer-env var list for this command's base name.
func NewCommandLine(argv []string, env map[string]string, cwd, proxyPid string, cfg TransferEnvSource) CommandLine {
	m := CommandLine{Argv: argv, Env: env, Cwd: cwd, ProxyPid: proxyPid}
	m.RecordedBody = m.describeBody(cfg)
	return m
}

// TransferEnvSource is the slice of config.Config this package needs,
// kept as an interface so traffic does not import config for the one
// method it actually calls.
type TransferEnvSource interface {
	TransferEnvFor(cmdBase string) []string
}

func (CommandLine) Kind() string      { return "CommandLine" }
func (CommandLine) Tag() string       { return "CMD" }
func (CommandLine) Direction() string { return DirFromSUT }
func (m CommandLine) HasInfo() bool   { return true }

func (m CommandLine) Description() string {
	body := m.RecordedBody
	if body == "" {
		body = strings.Join(m.Argv, " ")
	}
	return line(DirFromSUT, "CMD", body)
}

func (m CommandLine) describeBody(cfg TransferEnvSource) string {
	var parts []string

	serverEnv := currentEnvMap()
	if wd, err := os.Getwd(); err == nil && m.Cwd != "" && m.Cwd != wd {
		parts = append(parts, "cd "+m.Cwd+";")
	}

	if cfg != nil {
		transferVars := cfg.TransferEnvFor(procreg.BaseName(m.Argv))
		sets, unsets := diffEnv(m.Env, transferVars, serverEnv)
		if len(unsets) > 0 {
			sort.Strings(unsets)
			for _, v := range unsets {
				parts = append(parts, "env --unset="+v)
			}
		}
		if len(sets) > 0 {
			keys := make([]string, 0, len(sets))
			for k := range sets {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				parts = append(parts, "env "+k+"="+sets[k])
			}
		}
	}

	parts = append(parts, m.Argv...)
	return strings.Join(parts, " ")
}

func diffEnv(sutEnv map[string]string, transferVars []string, serverEnv map[string]string) (sets map[string]string, unsets []string) {
	sets = make(map[string]string)
	for _, v := range transferVars {
		sutVal, present := sutEnv[v]
		srvVal, srvPresent := serverEnv[v]

		if !present {
			if srvPresent {
				unsets = append(unsets, v)
			}
			continue
		}
		if !srvPresent || sutVal != srvVal {
			sets[v] = substituteBack(sutVal, serverEnv)
		}
	}
	return sets, unsets
}

// substituteBack rewrites occurrences of the server's own env var
// values inside val back to "$VARNAME" references, so recorded command
// lines stay portable across machines with differently-named paths.
func substituteBack(val string, serverEnv map[string]string) string {
	type kv struct{ k, v string }
	var pairs []kv
	for k, v := range serverEnv {
		if v != "" {
			pairs = append(pairs, kv{k, v})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return len(pairs[i].v) > len(pairs[j].v) })
	for _, p := range pairs {
		val = strings.ReplaceAll(val, p.v, "$"+p.k)
	}
	return val
}

func currentEnvMap() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

func (m CommandLine) ForwardToDestination(ctx *Context) ([]Message, error) {
	env := make([]string, 0, len(m.Env))
	for k, v := range m.Env {
		env = append(env, k+"="+v)
	}

	base := procreg.BaseName(m.Argv)
	usePTY := ctx.Config.UsePTY(base)
	res := ctx.Procs.Spawn(m.Argv, env, m.Cwd, m.ProxyPid, usePTY)

	return []Message{
		StdoutChunk{Text: res.Stdout},
		StderrChunk{Text: res.Stderr},
		ExitStatus{Code: res.ExitCode},
	}, nil
}

// PossibleFileEdits returns the paths this invocation might have
// edited: the working directory, if it changed, plus every argv token
// that names an existing path (absolute, or resolvable relative to
// cwd), with any path that is a sub-path of another candidate pruned.
func (m CommandLine) PossibleFileEdits(serverCwd string) []string {
	var candidates []string
	if m.Cwd != "" && m.Cwd != serverCwd {
		candidates = append(candidates, m.Cwd)
	}

	for _, tok := range m.Argv {
		var p string
		if filepath.IsAbs(tok) {
			p = tok
		} else {
			p = filepath.Join(m.Cwd, tok)
		}
		if _, err := os.Lstat(p); err == nil {
			candidates = append(candidates, filepath.Clean(p))
		}
	}

	return pruneSubPaths(candidates)
}

func pruneSubPaths(paths []string) []string {
	resolved := make([]string, len(paths))
	for i, p := range paths {
		if r, err := filepath.EvalSymlinks(p); err == nil {
			resolved[i] = r
		} else {
			resolved[i] = p
		}
	}

	var out []string
	for i, p := range paths {
		isSub := false
		for j, other := range resolved {
			if i == j {
				continue
			}
			if resolved[i] != other && strings.HasPrefix(resolved[i]+string(filepath.Separator), other+string(filepath.Separator)) {
				isSub = true
				break
			}
		}
		if !isSub {
			out = append(out, p)
		}
	}
	return out
}

func (CommandLine) MakesAsynchronousEdits() bool { return false }
func (CommandLine) EnquiryOnly([]Message) bool   { return false }

// FilterReplay guarantees the three-part (stdout, stderr, exit) shape
// on replay even when the recording run's platform omitted an empty
// stream, so downstream SUT-side parsing (which always expects all
// three) never sees a short response.
func (CommandLine) FilterReplay(responses []Message) []Message {
	var fileEdits, rest []Message
	var stdout, stderr []Message
	var exit Message

	for _, r := range responses {
		switch v := r.(type) {
		case FileEdit:
			fileEdits = append(fileEdits, v)
		case StdoutChunk:
			stdout = append(stdout, v)
		case StderrChunk:
			stderr = append(stderr, v)
		case ExitStatus:
			exit = v
		default:
			rest = append(rest, r)
		}
	}

	out := append([]Message{}, fileEdits...)
	if len(stdout) == 0 {
		stdout = []Message{StdoutChunk{}}
	}
	if len(stderr) == 0 {
		stderr = []Message{StderrChunk{}}
	}
	if exit == nil {
		exit = ExitStatus{}
	}
	out = append(out, stdout...)
	out = append(out, stderr...)
	out = append(out, exit)
	out = append(out, rest...)
	return out
}
