package traffic

// The InProc* kinds model a foreign in-process object surface as if it
// were a remote callable. The traffic server parses and records them
// so that transcripts captured by the original in-process interception
// hooks still replay end to end, but it does not host a live reflective
// object graph itself (see SPEC_FULL.md §1/§9): ForwardToDestination
// yields an empty InProcResponse, which is simply not recorded
// (InProcResponse.HasInfo is false for empty text). The one exception is
// InProcAttribute, which returns a previously cached answer when the
// InProcRegistry holds one for its key.

// InProcImport names a module the SUT wants intercepted.
type InProcImport struct{ Module string }

func (InProcImport) Kind() string      { return "InProcImport" }
func (InProcImport) Tag() string       { return "PYT" }
func (InProcImport) Direction() string { return DirFromSUT }
func (InProcImport) HasInfo() bool     { return true }
func (m InProcImport) Description() string {
	return line(DirFromSUT, "PYT", "import "+m.Module)
}
func (InProcImport) ForwardToDestination(*Context) ([]Message, error) {
	return []Message{InProcResponse{}}, nil
}
func (InProcImport) MakesAsynchronousEdits() bool { return false }
func (InProcImport) EnquiryOnly([]Message) bool   { return false }

// InProcAttribute reads target.attrPath.
type InProcAttribute struct {
	Target   string
	AttrPath string
}

func (InProcAttribute) Kind() string      { return "InProcAttribute" }
func (InProcAttribute) Tag() string       { return "PYT" }
func (InProcAttribute) Direction() string { return DirFromSUT }
func (InProcAttribute) HasInfo() bool     { return true }
func (m InProcAttribute) Description() string {
	return line(DirFromSUT, "PYT", m.Target+"."+m.AttrPath)
}
func (m InProcAttribute) ForwardToDestination(ctx *Context) ([]Message, error) {
	key := m.Target + "." + m.AttrPath
	if cached, ok := ctx.InProc.CachedAnswer(key); ok {
		return []Message{InProcResponse{Text: cached}}, nil
	}
	return []Message{InProcResponse{}}, nil
}
func (InProcAttribute) MakesAsynchronousEdits() bool { return false }

// EnquiryOnly suppresses the question from the record when no response
// carries text, i.e. a read that produced nothing. A read answered from
// the cache has text, so its question is not suppressed.
func (m InProcAttribute) EnquiryOnly(responses []Message) bool {
	for _, r := range responses {
		if resp, ok := r.(InProcResponse); ok && resp.Text != "" {
			return false
		}
	}
	return true
}

// InProcSetAttribute assigns target.attrPath = valueExpr.
type InProcSetAttribute struct {
	Target    string
	AttrPath  string
	ValueExpr string
}

func (InProcSetAttribute) Kind() string      { return "InProcSetAttribute" }
func (InProcSetAttribute) Tag() string       { return "PYT" }
func (InProcSetAttribute) Direction() string { return DirFromSUT }
func (InProcSetAttribute) HasInfo() bool     { return true }
func (m InProcSetAttribute) Description() string {
	return line(DirFromSUT, "PYT", m.Target+"."+m.AttrPath+"="+m.ValueExpr)
}
func (InProcSetAttribute) ForwardToDestination(*Context) ([]Message, error) {
	return []Message{InProcResponse{}}, nil
}
func (InProcSetAttribute) MakesAsynchronousEdits() bool { return false }
func (InProcSetAttribute) EnquiryOnly([]Message) bool   { return false }

// InProcCall invokes target.attrPath(argsExpr, kwargsExpr).
type InProcCall struct {
	Target     string
	AttrPath   string
	ArgsExpr   string
	KwargsExpr string
}

func (InProcCall) Kind() string      { return "InProcCall" }
func (InProcCall) Tag() string       { return "PYT" }
func (InProcCall) Direction() string { return DirFromSUT }
func (InProcCall) HasInfo() bool     { return true }
func (m InProcCall) Description() string {
	return line(DirFromSUT, "PYT", m.Target+"."+m.AttrPath+"("+m.ArgsExpr+","+m.KwargsExpr+")")
}
func (InProcCall) ForwardToDestination(*Context) ([]Message, error) {
	return []Message{InProcResponse{}}, nil
}
func (InProcCall) MakesAsynchronousEdits() bool { return false }
func (InProcCall) EnquiryOnly([]Message) bool   { return false }
