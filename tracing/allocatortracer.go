package tracing

import (
	"github.com/sarchlab/memsim/datarecording"
	"github.com/sarchlab/memsim/instrumentation/hooking"
	"github.com/sarchlab/memsim/mem/alloc"
)

type allocatorEventEntry struct {
	Seq      uint64
	Kind     string
	Owner    uint64
	Address  uint64
	Size     uint64
	Strategy string
	OK       bool
	Error    string
}

// AllocatorTracer records every allocator operation into the
// allocator_events table.
type AllocatorTracer struct {
	recorderHook
}

// NewAllocatorTracer creates the allocator_events table in the recorder and
// returns a hook that fills it.
func NewAllocatorTracer(rec datarecording.DataRecorder) *AllocatorTracer {
	rec.CreateTable(AllocatorTable, allocatorEventEntry{})

	return &AllocatorTracer{
		recorderHook: recorderHook{recorder: rec, table: AllocatorTable},
	}
}

// Func records the operation that raised the hook.
func (t *AllocatorTracer) Func(ctx hooking.HookCtx) {
	entry := allocatorEventEntry{}
	entry.OK, entry.Error = errorText(ctx.Detail)

	if a, ok := ctx.Domain.(*alloc.Allocator); ok {
		entry.Strategy = a.Strategy().String()
	}

	switch ctx.Pos {
	case alloc.HookPosAllocate:
		ev := ctx.Item.(alloc.AllocateEvent)
		entry.Kind = "allocate"
		entry.Owner = uint64(ev.Allocation.Owner)
		entry.Address = ev.Allocation.Address
		entry.Size = ev.Requested
		entry.Strategy = ev.Strategy.String()
	case alloc.HookPosDeallocate:
		ev := ctx.Item.(alloc.DeallocateEvent)
		entry.Kind = "deallocate"
		entry.Owner = uint64(ev.Owner)
		entry.Address = ev.Address
		entry.Size = ev.Size
	case alloc.HookPosInitialize:
		entry.Kind = "initialize"
		entry.Size = ctx.Item.(uint64)
	case alloc.HookPosReset:
		entry.Kind = "reset"
	case alloc.HookPosStrategy:
		entry.Kind = "strategy"
		entry.Strategy = ctx.Item.(alloc.Strategy).String()
	default:
		return
	}

	entry.Seq = t.next()
	t.insert(entry)
}
