// Package simulation ties one allocator and one cache hierarchy into a
// session that can be shared between the shell and the monitor.
package simulation

import (
	"sync"

	"github.com/sarchlab/memsim/datarecording"
	"github.com/sarchlab/memsim/mem/alloc"
	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/tracing"
)

// Names under which the simulated components can be looked up.
const (
	ComponentAllocator = "allocator"
	ComponentL1        = "l1"
	ComponentL2        = "l2"
)

// A Simulation is one session of the memory simulator.
//
// The allocator and the hierarchy are not safe for concurrent use. Code that
// runs outside the command loop must hold the lock, for example through Do.
type Simulation struct {
	mu sync.Mutex

	id        string
	allocator *alloc.Allocator
	hierarchy *cache.Hierarchy

	dataRecorder    datarecording.DataRecorder
	allocatorTracer *tracing.AllocatorTracer
	cacheTracer     *tracing.CacheTracer
}

// ID returns the unique id of the session.
func (s *Simulation) ID() string {
	return s.id
}

// Allocator returns the segment allocator of the session.
func (s *Simulation) Allocator() *alloc.Allocator {
	return s.allocator
}

// Hierarchy returns the cache hierarchy of the session.
func (s *Simulation) Hierarchy() *cache.Hierarchy {
	return s.hierarchy
}

// GetDataRecorder returns the data recorder, or nil if recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Lock acquires the session lock.
func (s *Simulation) Lock() {
	s.mu.Lock()
}

// Unlock releases the session lock.
func (s *Simulation) Unlock() {
	s.mu.Unlock()
}

// Do runs f while holding the session lock.
func (s *Simulation) Do(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f()
}

// Components lists the names accepted by GetComponentByName.
func (s *Simulation) Components() []string {
	return []string{ComponentAllocator, ComponentL1, ComponentL2}
}

// GetComponentByName returns the allocator or one of the cache levels. The
// second return value is false for unknown names and for cache levels that
// have not been built.
func (s *Simulation) GetComponentByName(name string) (any, bool) {
	switch name {
	case ComponentAllocator:
		return s.allocator, true
	case ComponentL1:
		return s.hierarchy.L1(), s.hierarchy.L1() != nil
	case ComponentL2:
		return s.hierarchy.L2(), s.hierarchy.L2() != nil
	default:
		return nil, false
	}
}

// Terminate flushes and closes the data recorder, if any.
func (s *Simulation) Terminate() {
	if s.dataRecorder != nil {
		s.dataRecorder.Close()
	}
}

// terminateOnExit is the exit handler of recording sessions. It waits for the
// command in progress, if any, before closing the recorder.
func (s *Simulation) terminateOnExit() {
	s.Do(s.Terminate)
}
