package wire

import (
	"strconv"

	"github.com/traffic-mim/server/internal/traffic"
)

// cmdChunkSep frames each stdout/stderr chunk of a CommandLine response
// so the SUT-side command-line interceptor can split them back out.
const cmdChunkSep = "|TT_CMD_SEP|"

// RenderResponses concatenates the bytes a real collaborator would have
// sent back to the SUT for the given ordered response messages.
// StdoutChunk/StderrChunk are each suffixed with cmdChunkSep per §6;
// every other kind contributes its raw payload/text with no framing.
func RenderResponses(msgs []traffic.Message) []byte {
	var out []byte
	for _, m := range msgs {
		switch v := m.(type) {
		case traffic.StdoutChunk:
			out = append(out, v.Text...)
			out = append(out, cmdChunkSep...)
		case traffic.StderrChunk:
			out = append(out, v.Text...)
			out = append(out, cmdChunkSep...)
		case traffic.ExitStatus:
			out = append(out, strconv.Itoa(v.Code)...)
		case traffic.ServerTraffic:
			out = append(out, v.Payload...)
		case traffic.InProcResponse:
			out = append(out, v.Text...)
		case traffic.FileEdit:
			// FileEdit responses are applied to the filesystem, not
			// written back to the SUT's socket.
		}
	}
	return out
}
