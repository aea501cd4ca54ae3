// Package orchestrator runs the per-request pipeline: snapshot possible
// file edits, obtain a response (replayed or live), record what
// happened, and advance the file-edit tracker.
package orchestrator

import (
	"os"
	"strings"

	"github.com/traffic-mim/server/internal/config"
	"github.com/traffic-mim/server/internal/mlog"
	"github.com/traffic-mim/server/internal/procreg"
	"github.com/traffic-mim/server/internal/replay"
	"github.com/traffic-mim/server/internal/serializer"
	"github.com/traffic-mim/server/internal/traffic"
	"github.com/traffic-mim/server/internal/wire"
)

// Orchestrator ties the traffic context, replay index, and record
// serializer together for one server's lifetime.
type Orchestrator struct {
	Ctx    *traffic.Context
	Cfg    *config.Config
	Replay *replay.Index      // nil when not replaying
	Rec    *serializer.Serializer // nil when not recording
}

// Process runs one request's full pipeline and returns the bytes to
// write back to the SUT.
func (o *Orchestrator) Process(reqNo int, raw []byte) []byte {
	o.flushAsyncEdits(reqNo)

	msg, err := wire.Parse(o.Ctx, raw)
	if err != nil {
		return nil
	}

	cl, isCommand := msg.(traffic.CommandLine)
	if isCommand && o.Rec != nil {
		serverCwd, _ := os.Getwd()
		o.Ctx.Edits.Note(cl.PossibleFileEdits(serverCwd))
	}

	responses := o.obtainResponses(msg)

	// Also applied on the live/record path, not just replay: it reproduces
	// the file-edits-first record ordering regardless of where responses
	// came from, so don't restrict this to o.Ctx.Replaying.
	if filterer, ok := msg.(traffic.ReplayFilterer); ok {
		responses = filterer.FilterReplay(responses)
	}

	if msg.HasInfo() && !msg.EnquiryOnly(responses) {
		o.record(msg.Description(), reqNo)
	}
	for _, r := range responses {
		o.processResponse(r, reqNo)
	}

	if o.Rec != nil {
		o.Rec.RequestComplete(reqNo)
	}

	async := isCommand && o.Cfg.AsyncEdits(procreg.BaseName(cl.Argv))
	if !async {
		o.Ctx.Edits.Clear()
	}

	return wire.RenderResponses(responses)
}

// obtainResponses returns the response messages for msg: replayed, if
// replay is active and applicable to this message's kind/target, or
// live via ForwardToDestination (plus any file edits the command
// caused) otherwise.
func (o *Orchestrator) obtainResponses(msg traffic.Message) []traffic.Message {
	if o.replayActive(msg) {
		enquiry := msg.EnquiryOnly(nil)
		if entries, ok := o.Replay.Match(msg.Description(), msg.Tag(), enquiry); ok {
			o.Ctx.Replaying = true
			return entriesToMessages(entries, o.Ctx)
		}
	}

	o.Ctx.Replaying = false
	responses, err := msg.ForwardToDestination(o.Ctx)
	if err != nil {
		return responses
	}

	if _, ok := msg.(traffic.CommandLine); ok && o.Rec != nil {
		for _, d := range o.Ctx.Edits.LatestEdits() {
			fe := traffic.NewFileEdit(d)
			if _, err := fe.ForwardToDestination(o.Ctx); err != nil {
				mlog.Errorln("storing file edit:", err)
			}
			responses = append(responses, fe)
		}
	}

	return responses
}

// replayActive decides whether msg should be looked up in the replay
// index at all: the index must be loaded, and either no -I filter was
// given (replay everything) or msg's kind/target is named by -I.
func (o *Orchestrator) replayActive(msg traffic.Message) bool {
	if o.Replay == nil {
		return false
	}
	if len(o.Cfg.ReplayOnly) == 0 {
		return true
	}
	switch v := msg.(type) {
	case traffic.CommandLine:
		return containsString(o.Cfg.ReplayOnly, procreg.BaseName(v.Argv))
	case traffic.InProcImport:
		return matchesModuleItem(o.Cfg.ReplayOnly, v.Module)
	case traffic.InProcAttribute:
		return containsString(o.Cfg.ReplayOnly, v.Target+"."+v.AttrPath)
	case traffic.InProcSetAttribute:
		return containsString(o.Cfg.ReplayOnly, v.Target+"."+v.AttrPath)
	case traffic.InProcCall:
		return containsString(o.Cfg.ReplayOnly, v.Target+"."+v.AttrPath)
	default:
		return false
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func matchesModuleItem(list []string, module string) bool {
	for _, v := range list {
		if v == module || strings.HasPrefix(module, v+".") {
			return true
		}
	}
	return false
}

// entriesToMessages converts matched transcript entries back into
// typed Messages, resolving FileEdit entries against the currently
// watched active paths.
func entriesToMessages(entries []replay.Entry, ctx *traffic.Context) []traffic.Message {
	out := make([]traffic.Message, 0, len(entries))
	watched := ctx.Edits.Watched()
	for _, e := range entries {
		switch e.Tag {
		case "OUT":
			out = append(out, traffic.StdoutChunk{Text: e.Body})
		case "ERR":
			out = append(out, traffic.StderrChunk{Text: e.Body})
		case "EXC":
			code := 0
			for _, c := range e.Body {
				if c < '0' || c > '9' {
					code = 0
					break
				}
				code = code*10 + int(c-'0')
			}
			out = append(out, traffic.ExitStatus{Code: code})
		case "RET":
			out = append(out, traffic.InProcResponse{Text: e.Body})
		case "FIL":
			name, subs := traffic.ParseFileEditBody(e.Body)
			fe := traffic.NewReplayedFileEdit(name, subs, watched)
			if _, err := fe.ForwardToDestination(ctx); err != nil {
				mlog.Errorln("reproducing file edit:", err)
			}
			out = append(out, fe)
		case "SRV":
			out = append(out, traffic.ServerTraffic{Payload: []byte(e.Body)})
		default:
			out = append(out, traffic.ServerTraffic{Payload: []byte(e.Body)})
		}
	}
	return out
}

func (o *Orchestrator) record(text string, reqNo int) {
	if o.Rec != nil {
		o.Rec.Record(text+"\n", reqNo)
	}
}

func (o *Orchestrator) processResponse(msg traffic.Message, reqNo int) {
	if !msg.HasInfo() {
		return
	}
	if resp, ok := msg.(traffic.InProcResponse); ok {
		for _, s := range o.Cfg.Substitutions {
			resp.Text = s.Compiled.ReplaceAllString(resp.Text, s.Replacement)
		}
		msg = resp
	}
	o.record(msg.Description(), reqNo)
}

// flushAsyncEdits emits any file edits still outstanding from a prior
// asynchronous command before this request's own work begins.
func (o *Orchestrator) flushAsyncEdits(reqNo int) {
	if o.Rec == nil {
		return
	}
	for _, d := range o.Ctx.Edits.LatestEdits() {
		fe := traffic.NewFileEdit(d)
		if _, err := fe.ForwardToDestination(o.Ctx); err != nil {
			mlog.Errorln("storing async file edit:", err)
		}
		o.processResponse(fe, reqNo)
	}
}
