// Package tracing turns allocator and cache hook events into data recorder
// rows.
package tracing

import (
	"github.com/sarchlab/memsim/datarecording"
	"github.com/sarchlab/memsim/instrumentation/hooking"
)

// Table names written by the tracers.
const (
	AllocatorTable = "allocator_events"
	CacheTable     = "cache_events"
)

// A Tracer is a hook that records what it observes.
type Tracer interface {
	hooking.Hook

	// Count returns the number of rows recorded so far.
	Count() uint64
}

type recorderHook struct {
	recorder datarecording.DataRecorder
	table    string
	seq      uint64
}

func (h *recorderHook) insert(entry any) {
	h.recorder.InsertData(h.table, entry)
}

func (h *recorderHook) next() uint64 {
	h.seq++
	return h.seq
}

func (h *recorderHook) Count() uint64 {
	return h.seq
}

func errorText(detail any) (ok bool, text string) {
	err, isErr := detail.(error)
	if !isErr || err == nil {
		return true, ""
	}

	return false, err.Error()
}
