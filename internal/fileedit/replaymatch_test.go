package fileedit

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatchActivePathExactBaseName(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "config.ini")
	b := filepath.Join(dir, "other", "config.ini")
	os.WriteFile(a, []byte("x"), 0644)
	os.MkdirAll(filepath.Dir(b), 0755)
	os.WriteFile(b, []byte("x"), 0644)

	got := MatchActivePath("config.ini", []string{b, a})
	if got != b {
		t.Errorf("want the first watched exact-basename match (%s), got %s", b, got)
	}
}

func TestMatchActivePathFuzzyFallback(t *testing.T) {
	watched := []string{"/tmp/output.log", "/tmp/state.json"}
	got := MatchActivePath("outp.log", watched)
	if got != "/tmp/output.log" {
		t.Errorf("got %q, want /tmp/output.log", got)
	}
}

func TestRewriteCygdrive(t *testing.T) {
	got := rewriteCygdrive("/cygdrive/c/Users/foo")
	want := "C:/Users/foo"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := rewriteCygdrive("/home/foo"); got != "/home/foo" {
		t.Errorf("non-cygdrive path should pass through unchanged, got %q", got)
	}
}
