package tracing

import (
	"github.com/sarchlab/memsim/datarecording"
	"github.com/sarchlab/memsim/instrumentation/hooking"
	"github.com/sarchlab/memsim/mem/cache"
)

type cacheEventEntry struct {
	Seq     uint64
	Cache   string
	Kind    string
	Address uint64
	SetID   int
	Tag     uint64
	Hit     bool
}

// CacheTracer records accesses and evictions of cache levels into the
// cache_events table.
type CacheTracer struct {
	recorderHook
}

// NewCacheTracer creates the cache_events table in the recorder and returns a
// hook that fills it. One tracer can be attached to several levels.
func NewCacheTracer(rec datarecording.DataRecorder) *CacheTracer {
	rec.CreateTable(CacheTable, cacheEventEntry{})

	return &CacheTracer{
		recorderHook: recorderHook{recorder: rec, table: CacheTable},
	}
}

// Func records the access or eviction that raised the hook.
func (t *CacheTracer) Func(ctx hooking.HookCtx) {
	entry := cacheEventEntry{}

	if l, ok := ctx.Domain.(*cache.Level); ok {
		entry.Cache = l.Name()
	}

	switch ctx.Pos {
	case cache.HookPosCacheAccess:
		ev := ctx.Item.(cache.AccessEvent)
		entry.Kind = "miss"
		if ev.Hit {
			entry.Kind = "hit"
		}
		entry.Address = ev.Address
		entry.SetID = ev.SetID
		entry.Tag = ev.Tag
		entry.Hit = ev.Hit
	case cache.HookPosCacheEvict:
		line := ctx.Item.(cache.Line)
		entry.Kind = "evict"
		entry.Address = line.Address
		entry.SetID = line.SetID
		entry.Tag = line.Tag
	default:
		return
	}

	entry.Seq = t.next()
	t.insert(entry)
}
