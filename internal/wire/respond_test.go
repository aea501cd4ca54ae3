package wire

import (
	"testing"

	"github.com/traffic-mim/server/internal/traffic"
)

func TestRenderResponses(t *testing.T) {
	msgs := []traffic.Message{
		traffic.StdoutChunk{Text: "hello"},
		traffic.StderrChunk{Text: "oops"},
		traffic.ExitStatus{Code: 7},
	}
	got := string(RenderResponses(msgs))
	want := "hello" + cmdChunkSep + "oops" + cmdChunkSep + "7"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderResponsesSkipsFileEdit(t *testing.T) {
	msgs := []traffic.Message{
		traffic.FileEdit{LogicalName: "x"},
		traffic.ExitStatus{Code: 0},
	}
	got := string(RenderResponses(msgs))
	if got != "0" {
		t.Errorf("got %q, want %q", got, "0")
	}
}
