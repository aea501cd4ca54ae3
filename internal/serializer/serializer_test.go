package serializer

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestSerializer(t *testing.T) (*Serializer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.txt")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(b)
}

func TestSerializerInOrder(t *testing.T) {
	s, path := newTestSerializer(t)

	s.Record("req1a\n", 1)
	s.Record("req1b\n", 1)
	s.RequestComplete(1)
	s.Record("req2\n", 2)
	s.RequestComplete(2)

	got := readFile(t, path)
	want := "req1a\nreq1b\nreq2\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Request 2 finishes before request 1; its text must still land in the
// file after request 1's, once request 1 completes.
func TestSerializerOutOfOrder(t *testing.T) {
	s, path := newTestSerializer(t)

	s.Record("req2\n", 2)
	s.RequestComplete(2)

	// Nothing written yet: request 1 hasn't had its turn.
	if got := readFile(t, path); got != "" {
		t.Fatalf("wrote out of turn: %q", got)
	}

	s.Record("req1\n", 1)
	s.RequestComplete(1)

	got := readFile(t, path)
	want := "req1\nreq2\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Request 2's turn arrives mid-stream: it buffered one chunk while
// request 1 still held the turn, and records a second chunk only after
// request 1 completes and hands the turn to it. The buffered first
// chunk must reach the file ahead of the second, not after it.
func TestSerializerFlushesBufferedChunkBeforeNewOneOnTurnArrival(t *testing.T) {
	s, path := newTestSerializer(t)

	s.Record("req2a\n", 2) // request 1 still owns the turn; this buffers
	s.Record("req1\n", 1)
	s.RequestComplete(1) // turn advances to request 2
	s.Record("req2b\n", 2)
	s.RequestComplete(2)

	got := readFile(t, path)
	want := "req1\nreq2a\nreq2b\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// A request that completes out of order with no Record call at all
// (HasInfo() was false) must still advance the write turn so later
// requests aren't stuck waiting on it forever.
func TestSerializerSkipsEmptyCompletedRequest(t *testing.T) {
	s, path := newTestSerializer(t)

	s.Record("req3\n", 3)
	s.RequestComplete(2) // request 2 had nothing to record
	s.RequestComplete(3)

	s.Record("req1\n", 1)
	s.RequestComplete(1)

	got := readFile(t, path)
	want := "req1\nreq3\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
