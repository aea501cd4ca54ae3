package traffic

import (
	"os"
	"testing"
)

type fakeCfg struct {
	vars map[string][]string
}

func (f fakeCfg) TransferEnvFor(cmdBase string) []string {
	if v, ok := f.vars[cmdBase]; ok {
		return v
	}
	return f.vars["default"]
}

func TestNewCommandLineNoTransferVars(t *testing.T) {
	cl := NewCommandLine([]string{"echo", "hi"}, nil, "", "1", fakeCfg{})
	if cl.Description() != "<-CMD:echo hi" {
		t.Errorf("Description = %q", cl.Description())
	}
}

func TestNewCommandLineRecordsChangedEnvVar(t *testing.T) {
	os.Setenv("TRAFFIC_TEST_VAR", "serverval")
	defer os.Unsetenv("TRAFFIC_TEST_VAR")

	cfg := fakeCfg{vars: map[string][]string{"default": {"TRAFFIC_TEST_VAR"}}}
	cl := NewCommandLine([]string{"echo"}, map[string]string{"TRAFFIC_TEST_VAR": "sutval"}, "", "1", cfg)

	want := "<-CMD:env TRAFFIC_TEST_VAR=sutval echo"
	if cl.Description() != want {
		t.Errorf("Description = %q, want %q", cl.Description(), want)
	}
}

func TestNewCommandLineRecordsUnsetEnvVar(t *testing.T) {
	os.Setenv("TRAFFIC_TEST_VAR2", "serverval")
	defer os.Unsetenv("TRAFFIC_TEST_VAR2")

	cfg := fakeCfg{vars: map[string][]string{"default": {"TRAFFIC_TEST_VAR2"}}}
	cl := NewCommandLine([]string{"echo"}, map[string]string{}, "", "1", cfg)

	want := "<-CMD:env --unset=TRAFFIC_TEST_VAR2 echo"
	if cl.Description() != want {
		t.Errorf("Description = %q, want %q", cl.Description(), want)
	}
}

func TestSubstituteBackLongestValueFirst(t *testing.T) {
	serverEnv := map[string]string{
		"HOME":      "/home/user",
		"HOME_BASE": "/home",
	}
	got := substituteBack("/home/user/project", serverEnv)
	if got != "$HOME/project" {
		t.Errorf("got %q, want %q", got, "$HOME/project")
	}
}

func TestFilterReplayPadsMissingStreams(t *testing.T) {
	cl := CommandLine{}
	in := []Message{ExitStatus{Code: 1}}
	out := cl.FilterReplay(in)

	if len(out) != 3 {
		t.Fatalf("want 3 responses, got %d: %+v", len(out), out)
	}
	if _, ok := out[0].(StdoutChunk); !ok {
		t.Errorf("out[0] = %T, want StdoutChunk", out[0])
	}
	if _, ok := out[1].(StderrChunk); !ok {
		t.Errorf("out[1] = %T, want StderrChunk", out[1])
	}
	if es, ok := out[2].(ExitStatus); !ok || es.Code != 1 {
		t.Errorf("out[2] = %+v, want ExitStatus{Code: 1}", out[2])
	}
}

func TestFilterReplayKeepsFileEditsFirst(t *testing.T) {
	cl := CommandLine{}
	in := []Message{
		StdoutChunk{Text: "out"},
		FileEdit{LogicalName: "f"},
		ExitStatus{Code: 0},
	}
	out := cl.FilterReplay(in)
	if _, ok := out[0].(FileEdit); !ok {
		t.Fatalf("FileEdit should sort first, got %T", out[0])
	}
}

func TestPossibleFileEditsPrunesSubPaths(t *testing.T) {
	dir := t.TempDir()
	sub := dir + "/sub.txt"
	if err := os.WriteFile(sub, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	cl := CommandLine{Argv: []string{"cat", dir, sub}, Cwd: dir}
	got := cl.PossibleFileEdits(dir) // serverCwd == Cwd, so Cwd itself isn't a separate candidate

	if len(got) != 1 || got[0] != dir {
		t.Errorf("PossibleFileEdits = %v, want [%s]", got, dir)
	}
}
