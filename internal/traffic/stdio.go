package traffic

import "strconv"

// StdoutChunk is a chunk of a spawned command's standard output.
type StdoutChunk struct{ Text string }

func (StdoutChunk) Kind() string                         { return "StdoutChunk" }
func (StdoutChunk) Tag() string                           { return "OUT" }
func (StdoutChunk) Direction() string                     { return DirToSUT }
func (m StdoutChunk) HasInfo() bool                       { return true }
func (m StdoutChunk) Description() string                 { return line(DirToSUT, "OUT", m.Text) }
func (m StdoutChunk) ForwardToDestination(*Context) ([]Message, error) { return nil, nil }
func (StdoutChunk) MakesAsynchronousEdits() bool          { return false }
func (StdoutChunk) EnquiryOnly([]Message) bool            { return false }

// StderrChunk is a chunk of a spawned command's standard error.
type StderrChunk struct{ Text string }

func (StderrChunk) Kind() string                         { return "StderrChunk" }
func (StderrChunk) Tag() string                           { return "ERR" }
func (StderrChunk) Direction() string                     { return DirToSUT }
func (m StderrChunk) HasInfo() bool                       { return true }
func (m StderrChunk) Description() string                 { return line(DirToSUT, "ERR", m.Text) }
func (m StderrChunk) ForwardToDestination(*Context) ([]Message, error) { return nil, nil }
func (StderrChunk) MakesAsynchronousEdits() bool          { return false }
func (StderrChunk) EnquiryOnly([]Message) bool            { return false }

// ExitStatus is a spawned command's exit code. It is suppressed from
// the record when the status is 0, the common case, to keep transcripts
// terse the way a successful run produces no surprising entries.
type ExitStatus struct{ Code int }

func (ExitStatus) Kind() string     { return "ExitStatus" }
func (ExitStatus) Tag() string      { return "EXC" }
func (ExitStatus) Direction() string { return DirToSUT }
func (m ExitStatus) HasInfo() bool  { return m.Code != 0 }
func (m ExitStatus) Description() string {
	return line(DirToSUT, "EXC", strconv.Itoa(m.Code))
}
func (m ExitStatus) ForwardToDestination(*Context) ([]Message, error) { return nil, nil }
func (ExitStatus) MakesAsynchronousEdits() bool { return false }
func (ExitStatus) EnquiryOnly([]Message) bool   { return false }

// InProcResponse is the textual result of an in-process call/attribute
// read, or a synthesized "raise module.Class('...')" on evaluation
// error.
type InProcResponse struct{ Text string }

func (InProcResponse) Kind() string      { return "InProcResponse" }
func (InProcResponse) Tag() string       { return "RET" }
func (InProcResponse) Direction() string { return DirToSUT }
func (m InProcResponse) HasInfo() bool   { return m.Text != "" }
func (m InProcResponse) Description() string {
	return line(DirToSUT, "RET", m.Text)
}
func (m InProcResponse) ForwardToDestination(*Context) ([]Message, error) { return nil, nil }
func (InProcResponse) MakesAsynchronousEdits() bool { return false }
func (InProcResponse) EnquiryOnly([]Message) bool   { return false }
