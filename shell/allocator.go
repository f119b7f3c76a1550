package shell

import (
	"errors"

	"github.com/sarchlab/memsim/config"
	"github.com/sarchlab/memsim/idgen"
	"github.com/sarchlab/memsim/internal/logging"
	"github.com/sarchlab/memsim/mem/alloc"
)

func allocatorCommands() []*command {
	return []*command{
		{
			names: []string{"init", "initialize"},
			usage: "init <size>",
			help:  "Initialize memory pool with specified size",
			run:   (*Shell).initPool,
		},
		{
			names: []string{"strategy", "set"},
			usage: "strategy <algorithm>",
			help:  "Set allocation strategy (first_fit/best_fit/worst_fit)",
			run:   (*Shell).setStrategy,
		},
		{
			names: []string{"alloc", "malloc"},
			usage: "alloc <size>",
			help:  "Allocate memory block of specified size",
			run:   (*Shell).allocate,
		},
		{
			names: []string{"free", "dealloc"},
			usage: "free <pid>",
			help:  "Deallocate memory block with process ID",
			run:   (*Shell).free,
		},
		{
			names: []string{"display", "dump", "show", "layout"},
			usage: "display",
			help:  "Show current memory layout",
			run:   (*Shell).display,
		},
		{
			names: []string{"stats", "statistics", "analyze"},
			usage: "stats",
			help:  "Display memory statistics and analysis",
			run:   (*Shell).stats,
		},
		{
			names: []string{"reset", "clear"},
			usage: "reset",
			help:  "Reset the entire simulator",
			run:   (*Shell).reset,
		},
	}
}

func (s *Shell) initPool(args []string) {
	if len(args) < 1 {
		s.printf("Usage: init <memory_size>\n")
		s.printf("Example: init 1024\n")
		return
	}

	size, err := config.ParseUint(args[0])
	if err != nil {
		s.printf("Error: Invalid memory size format\n")
		return
	}

	if size == 0 {
		s.printf("Error: Memory size must be greater than 0\n")
		return
	}

	s.sim.Allocator().Initialize(size)
	s.printf("Memory pool initialized: %d bytes\n", size)
}

func (s *Shell) setStrategy(args []string) {
	if len(args) < 1 {
		s.printf("Usage: strategy <algorithm>\n")
		s.printf("Available algorithms: first_fit, best_fit, worst_fit\n")
		return
	}

	strategy, err := alloc.ParseStrategy(args[0])
	if err != nil {
		s.printf("Error: Unknown allocation algorithm '%s'\n", args[0])
		s.printf("Available: first_fit, best_fit, worst_fit\n")
		return
	}

	s.sim.Allocator().SetStrategy(strategy)
	s.printf("Allocation strategy set to: %s\n", strategy.DisplayName())
}

func (s *Shell) allocate(args []string) {
	if len(args) < 1 {
		s.printf("Usage: alloc <size>\n")
		s.printf("Example: alloc 256\n")
		return
	}

	size, err := config.ParseUint(args[0])
	if err != nil {
		s.printf("Error: Invalid allocation size format\n")
		return
	}

	allocation, err := s.sim.Allocator().Allocate(size)

	switch {
	case errors.Is(err, alloc.ErrZeroSize):
		s.printf("Error: Cannot allocate zero bytes\n")
	case errors.Is(err, alloc.ErrNoSpace):
		logging.L.Debug("allocation failed", "err", err)
		s.printf("Memory allocation failed: Insufficient space\n")
	case err != nil:
		s.printf("Error: %v\n", err)
	default:
		s.printf("Memory allocated: PID=%d at address=0x%x (size=%d)\n",
			allocation.Owner, allocation.Address, allocation.Size)
	}
}

func (s *Shell) free(args []string) {
	if len(args) < 1 {
		s.printf("Usage: free <process_id>\n")
		s.printf("Example: free 3\n")
		return
	}

	id, err := config.ParseUint(args[0])
	if err != nil {
		s.printf("Error: Invalid process ID format\n")
		return
	}

	owner := idgen.ID(id)

	err = s.sim.Allocator().Deallocate(owner)

	switch {
	case errors.Is(err, alloc.ErrOwnerNotFound):
		logging.L.Debug("deallocation failed", "err", err)
		s.printf("Error: Process ID %d not found\n", owner)
	case err != nil:
		s.printf("Error: %v\n", err)
	default:
		s.printf("Memory deallocated for PID=%d\n", owner)
	}
}

func (s *Shell) display(_ []string) {
	s.printf("\n--- Current Memory Layout ---\n")
	for _, seg := range s.sim.Allocator().Layout() {
		s.printf("%s\n", seg)
	}
	s.printf("-----------------------------\n")
}

func (s *Shell) stats(_ []string) {
	a := s.sim.Allocator()
	report := a.Fragmentation()
	stats := a.Stats()

	s.report("\n--- Memory Analysis Report ---\n")
	s.report("Total memory capacity: %d bytes\n", report.Capacity)
	s.report("Allocated memory: %d bytes\n", report.AllocatedBytes)
	s.report("Free memory: %d bytes\n", report.FreeBytes)
	s.report("Largest free block: %d bytes\n", report.LargestFreeBlock)
	s.report("Memory utilization: %.2f%%\n", report.Utilization())
	s.report("External fragmentation: %.2f%%\n", report.ExternalFragmentation())
	s.report("Internal fragmentation: %.2f%% (exact allocation)\n",
		report.InternalFragmentation())
	s.report("-----------------------------\n")

	s.report("\n=== Memory Performance Statistics ===\n")
	s.report("Total allocation requests: %d\n", stats.Attempts)
	s.report("Successful allocations: %d\n", stats.Successes)
	s.report("Failed allocations: %d\n", stats.Failures)
	s.report("Success rate: %.2f%%\n", stats.SuccessRate())
	s.report("====================================\n")
}

func (s *Shell) reset(_ []string) {
	s.sim.Allocator().Reset()
	s.printf("Memory simulator has been reset\n")
}
