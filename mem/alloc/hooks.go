package alloc

import (
	"github.com/sarchlab/memsim/idgen"
	"github.com/sarchlab/memsim/instrumentation/hooking"
)

// Hook positions raised by the Allocator. The hook context's Detail carries
// the error returned by the operation, or nil.
var (
	// HookPosAllocate fires after every allocation attempt. Item is an
	// AllocateEvent.
	HookPosAllocate = &hooking.HookPos{Name: "Allocate"}

	// HookPosDeallocate fires after every deallocation attempt. Item is a
	// DeallocateEvent.
	HookPosDeallocate = &hooking.HookPos{Name: "Deallocate"}

	// HookPosInitialize fires after the pool is (re)initialized. Item is the
	// pool capacity.
	HookPosInitialize = &hooking.HookPos{Name: "Initialize"}

	// HookPosReset fires after the allocator is reset. Item is nil.
	HookPosReset = &hooking.HookPos{Name: "Reset"}

	// HookPosStrategy fires after the placement strategy changes. Item is the
	// new Strategy.
	HookPosStrategy = &hooking.HookPos{Name: "Strategy"}
)

// AllocateEvent describes one allocation attempt. Allocation is the zero value
// when the attempt failed.
type AllocateEvent struct {
	Requested  uint64
	Strategy   Strategy
	Allocation Allocation
}

// DeallocateEvent describes one deallocation attempt. Address and Size are
// zero when the owner was not found.
type DeallocateEvent struct {
	Owner   idgen.ID
	Address uint64
	Size    uint64
}
