// Package config parses the traffic server's command-line flags into a
// single Config value that is threaded explicitly into the rest of the
// server rather than read back out of the flag package elsewhere.
package config

import (
	"flag"
	"fmt"
	"regexp"
	"strings"
)

// Config is the parsed, validated set of flags for the traffic server.
type Config struct {
	RecordFile string // -r
	ReplayFile string // -p
	ReplayOnly []string // -I, comma separated

	FileEditRecordRoot  string // -F, may be local dir or ftp://...
	FileEditReplayRoot  string // -f, may be local dir or ftp://...
	FileEditIgnoreNames []string // -i

	TransferEnv map[string][]string // -e, cmd -> vars ("default" applies to all)

	AsyncEditCommands []string // -a

	Substitutions []Substitution // -A

	InProcModules []string // -m

	Sequential bool   // -s
	TestPath   string // -t

	LogLevel   string // -level
	LogStderr  bool   // -v
	LogFile    string // -logfile

	PTYCommands []string // -pty, commands spawned with a controlling tty
	Socks5Proxy string   // -socks5, optional SOCKS5 proxy for ClientSocket dials

	DiagSocket string // -ctl, Unix socket path for the trafficctl inspection console
}

// Substitution is one -A entry: REGEX{REPLACE TEXT}. Pattern is compiled
// once at parse time so a malformed -A regex fails at startup instead of
// silently never matching.
type Substitution struct {
	Pattern     string
	Replacement string
	Compiled    *regexp.Regexp
}

// Parse parses os.Args[1:] (via the standard flag package) into a Config.
// It does not call flag.Parse()'s os.Exit path itself; callers own process
// exit behavior the way cmd/trafficmim's main() does.
func Parse(fs *flag.FlagSet, args []string) (*Config, error) {
	var (
		record       = fs.String("r", "", "record traffic into FILE")
		replay       = fs.String("p", "", "replay traffic from FILE")
		replayItems  = fs.String("I", "", "comma separated list of replay items")
		fileEditRec  = fs.String("F", "", "record file edits under DIR (or ftp://host/path)")
		fileEditRepl = fs.String("f", "", "restore file edits from DIR (or ftp://host/path) during replay")
		ignoreNames  = fs.String("i", "", "comma separated names to ignore during file-edit walks")
		transferEnv  = fs.String("e", "", "cmd=VAR+VAR,... env vars to record per command ('default' applies to all)")
		asyncEdits   = fs.String("a", "", "comma separated command base names with asynchronous file edits")
		subs         = fs.String("A", "", "comma separated REGEX{REPLACE TEXT} response substitutions")
		modules      = fs.String("m", "", "comma separated module names to intercept in-process")
		sequential   = fs.Bool("s", false, "run the dispatcher sequentially instead of concurrently")
		testPath     = fs.String("t", "", "opaque test identifier echoed in diagnostics")
		logLevel     = fs.String("level", "warn", "set log level: [debug, info, warn, error, fatal]")
		logStderr    = fs.Bool("v", true, "log on stderr")
		logFile      = fs.String("logfile", "", "also log to file")
		ptyCommands  = fs.String("pty", "", "comma separated command base names spawned with a controlling tty")
		socks5       = fs.String("socks5", "", "dial ClientSocket peers through this SOCKS5 proxy")
		ctlSocket    = fs.String("ctl", "", "Unix socket path to serve the trafficctl inspection console on")
	)
	// -l/-L (logging configuration) are accepted and ignored.
	fs.Bool("l", false, "logging configuration (accepted and ignored)")
	fs.Bool("L", false, "logging configuration (accepted and ignored)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	c := &Config{
		RecordFile:          *record,
		ReplayFile:          *replay,
		ReplayOnly:          splitNonEmpty(*replayItems),
		FileEditRecordRoot:  *fileEditRec,
		FileEditReplayRoot:  *fileEditRepl,
		FileEditIgnoreNames: splitNonEmpty(*ignoreNames),
		AsyncEditCommands:   splitNonEmpty(*asyncEdits),
		InProcModules:       splitNonEmpty(*modules),
		Sequential:          *sequential,
		TestPath:            *testPath,
		LogLevel:            *logLevel,
		LogStderr:           *logStderr,
		LogFile:             *logFile,
		PTYCommands:         splitNonEmpty(*ptyCommands),
		Socks5Proxy:         *socks5,
		DiagSocket:          *ctlSocket,
	}

	env, err := parseTransferEnv(*transferEnv)
	if err != nil {
		return nil, err
	}
	c.TransferEnv = env

	c.Substitutions, err = parseSubstitutions(*subs)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseTransferEnv(s string) (map[string][]string, error) {
	if s == "" {
		return nil, nil
	}
	out := make(map[string][]string)
	for _, entry := range strings.Split(s, ",") {
		if entry == "" {
			continue
		}
		cmd, vars, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("config: malformed -e entry %q, want cmd=VAR+VAR", entry)
		}
		out[cmd] = strings.Split(vars, "+")
	}
	return out, nil
}

func parseSubstitutions(s string) ([]Substitution, error) {
	if s == "" {
		return nil, nil
	}
	var out []Substitution
	for _, entry := range strings.Split(s, ",") {
		if entry == "" {
			continue
		}
		open := strings.Index(entry, "{")
		if open < 0 || !strings.HasSuffix(entry, "}") {
			return nil, fmt.Errorf("config: malformed -A entry %q, want REGEX{REPLACE TEXT}", entry)
		}
		pattern := entry[:open]
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("config: invalid -A regex %q: %w", pattern, err)
		}
		out = append(out, Substitution{
			Pattern:     pattern,
			Replacement: entry[open+1 : len(entry)-1],
			Compiled:    re,
		})
	}
	return out, nil
}

// TransferEnvFor returns the configured env var names for a command base
// name, falling back to the "default" entry when present.
func (c *Config) TransferEnvFor(cmdBase string) []string {
	if vars, ok := c.TransferEnv[cmdBase]; ok {
		return vars
	}
	return c.TransferEnv["default"]
}

func (c *Config) isListed(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

// AsyncEdits reports whether cmdBase's file edits should persist across
// requests rather than being cleared at request completion.
func (c *Config) AsyncEdits(cmdBase string) bool { return c.isListed(c.AsyncEditCommands, cmdBase) }

// UsePTY reports whether cmdBase should be spawned with a controlling tty.
func (c *Config) UsePTY(cmdBase string) bool { return c.isListed(c.PTYCommands, cmdBase) }
