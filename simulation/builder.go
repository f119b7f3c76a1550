package simulation

import (
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/memsim/datarecording"
	"github.com/sarchlab/memsim/mem/alloc"
	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	poolSize       uint64
	strategy       alloc.Strategy
	cacheConfig    cache.HierarchyConfig
	cacheOn        bool
	recordingOn    bool
	outputFileName string
}

// MakeBuilder creates a new builder. By default the pool is left
// uninitialized, the default cache hierarchy is built and nothing is
// recorded.
func MakeBuilder() Builder {
	return Builder{
		strategy:    alloc.FirstFit,
		cacheConfig: cache.DefaultHierarchyConfig(),
		cacheOn:     true,
	}
}

// WithPoolSize initializes the memory pool with the given number of bytes.
// Zero leaves the pool uninitialized.
func (b Builder) WithPoolSize(size uint64) Builder {
	b.poolSize = size
	return b
}

// WithStrategy sets the initial placement strategy.
func (b Builder) WithStrategy(s alloc.Strategy) Builder {
	b.strategy = s
	return b
}

// WithCacheConfig sets the geometry of the initial cache hierarchy.
func (b Builder) WithCacheConfig(cfg cache.HierarchyConfig) Builder {
	b.cacheConfig = cfg
	return b
}

// WithoutCache leaves the cache hierarchy uninitialized.
func (b Builder) WithoutCache() Builder {
	b.cacheOn = false
	return b
}

// WithRecording records allocator and cache events into an SQLite file.
// An empty name picks a unique one.
func (b Builder) WithRecording(filename string) Builder {
	b.recordingOn = true
	b.outputFileName = filename

	return b
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	s := &Simulation{
		id:        xid.New().String(),
		allocator: alloc.NewAllocator(),
		hierarchy: cache.NewHierarchy(),
	}

	if b.recordingOn {
		if err := b.attachRecorder(s); err != nil {
			return nil, err
		}
	}

	s.allocator.SetStrategy(b.strategy)
	if b.poolSize > 0 {
		s.allocator.Initialize(b.poolSize)
	}

	if b.cacheOn {
		if err := s.hierarchy.Initialize(b.cacheConfig); err != nil {
			s.Terminate()
			return nil, err
		}
	}

	return s, nil
}

func (b Builder) attachRecorder(s *Simulation) error {
	recorder, err := datarecording.New(b.outputFileName)
	if err != nil {
		return err
	}

	s.dataRecorder = recorder
	atexit.Register(s.terminateOnExit)

	s.allocatorTracer = tracing.NewAllocatorTracer(recorder)
	s.allocator.AcceptHook(s.allocatorTracer)

	s.cacheTracer = tracing.NewCacheTracer(recorder)
	s.hierarchy.AcceptHook(s.cacheTracer)

	return nil
}
