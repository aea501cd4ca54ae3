package procreg

import "testing"

func TestBaseName(t *testing.T) {
	cases := []struct {
		argv []string
		want string
	}{
		{[]string{"/usr/bin/gcc", "-o", "a.out"}, "gcc"},
		{[]string{`C:\Windows\System32\cmd.exe`}, "cmd.exe"},
		{nil, ""},
	}
	for _, c := range cases {
		if got := BaseName(c.argv); got != c.want {
			t.Errorf("BaseName(%v) = %q, want %q", c.argv, got, c.want)
		}
	}
}

func TestSpawnCapturesStdoutAndExitCode(t *testing.T) {
	table := NewTable()
	res := table.Spawn([]string{"sh", "-c", "echo hi; exit 3"}, nil, "", "proxy-1", false)
	if res.Stdout != "hi\n" {
		t.Errorf("Stdout = %q", res.Stdout)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
}

func TestSpawnEmptyArgv(t *testing.T) {
	table := NewTable()
	res := table.Spawn(nil, nil, "", "proxy-2", false)
	if res.ExitCode != 1 || res.Stderr == "" {
		t.Errorf("empty argv should fail cleanly, got %+v", res)
	}
}

func TestSignalUnknownPidIsNotAnError(t *testing.T) {
	table := NewTable()
	if err := table.Signal("no-such-pid", 15); err != nil {
		t.Errorf("Signal on unknown proxy pid should be a no-op, got %v", err)
	}
}
