// Package serializer writes completed request records to the
// transcript file in request-arrival order, independent of the order in
// which concurrent request workers actually finish.
package serializer

import (
	"os"
	"sync"
)

type state int

const (
	stateNew state = iota
	statePartial
	statePending
	stateDone
)

// Serializer is the record-order guarantor described in the design's
// record-serializer state machine: NEW -> PARTIAL -> DONE, with a
// PENDING branch for requests that finish out of order.
type Serializer struct {
	mu sync.Mutex

	path string
	f    *os.File

	recordingRequest int // the only request number currently allowed to write
	buffers          map[int]string
	states           map[int]state
}

// New opens (creating if necessary) the transcript file at path for
// append-only writes, starting numbering at request 1.
func New(path string) (*Serializer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	return &Serializer{
		path:              path,
		f:                 f,
		recordingRequest:  1,
		buffers:           make(map[int]string),
		states:            make(map[int]state),
	}, nil
}

// Record appends text to request reqNo's pending block. If reqNo is the
// request currently allowed to write, the text (and any of its already
// buffered text) is flushed to disk immediately; otherwise it is held
// until earlier requests complete.
func (s *Serializer) Record(text string, reqNo int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.states[reqNo] == 0 {
		s.states[reqNo] = stateNew
	}

	if reqNo == s.recordingRequest {
		if buf, ok := s.buffers[reqNo]; ok {
			s.write(buf)
			delete(s.buffers, reqNo)
		}
		s.write(text)
		s.states[reqNo] = statePartial
		return
	}

	s.buffers[reqNo] += text
	s.states[reqNo] = statePartial
}

// RequestComplete marks reqNo as fully recorded. If reqNo is the
// request currently allowed to write, its buffer (if any) is flushed,
// the write turn advances, and any subsequent requests already marked
// complete are flushed transitively. Otherwise reqNo is marked PENDING
// and will be flushed once the write turn reaches it.
func (s *Serializer) RequestComplete(reqNo int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reqNo != s.recordingRequest {
		s.states[reqNo] = statePending
		return
	}

	s.flushAndAdvance(reqNo)
}

func (s *Serializer) flushAndAdvance(reqNo int) {
	if buf, ok := s.buffers[reqNo]; ok {
		s.write(buf)
		delete(s.buffers, reqNo)
	}
	s.states[reqNo] = stateDone
	s.recordingRequest = reqNo + 1

	for s.states[s.recordingRequest] == statePending {
		next := s.recordingRequest
		if buf, ok := s.buffers[next]; ok {
			s.write(buf)
			delete(s.buffers, next)
		}
		s.states[next] = stateDone
		s.recordingRequest = next + 1
	}
}

// write appends text to the transcript file, flushing and closing the
// handle immediately so a crash never loses a fully-written record.
func (s *Serializer) write(text string) {
	if text == "" {
		return
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		return
	}
	f.Sync()
}

// Close closes the underlying transcript file.
func (s *Serializer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
