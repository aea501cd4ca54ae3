package traffic

import (
	"strconv"
	"sync"
)

// InProcRegistry assigns stable names to results of in-process calls
// that are themselves references to further in-process objects, so a
// later message can address "target.attr" against a prior result
// instead of a fresh literal value. This is bookkeeping only: the
// server does not host a live reflective object graph for a scripting
// language (see SPEC_FULL.md §9); it keeps this registry so that
// transcripts recorded by the original capture mechanism still replay,
// since their recorded text references these generated names.
type InProcRegistry struct {
	mu      sync.Mutex
	counts  map[string]int
	cached  map[string]string // "target.attr" -> cached response text, for EnquiryOnly
}

// NewInProcRegistry returns an empty registry.
func NewInProcRegistry() *InProcRegistry {
	return &InProcRegistry{counts: make(map[string]int), cached: make(map[string]string)}
}

// NextName returns the next stable name for typeName, e.g. "Cursor1",
// "Cursor2", ...
func (r *InProcRegistry) NextName(typeName string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[typeName]++
	return typeName + strconv.Itoa(r.counts[typeName])
}

// CacheAnswer records the answer to "target.attr" so a repeated,
// side-effect-free attribute read can be served from cache. The cached
// answer has text, so InProcAttribute.EnquiryOnly still records the
// question.
func (r *InProcRegistry) CacheAnswer(key, answer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached[key] = answer
}

// CachedAnswer returns a previously cached answer for key, if any.
func (r *InProcRegistry) CachedAnswer(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.cached[key]
	return v, ok
}
