package shell

import (
	"errors"
	"strings"

	"github.com/sarchlab/memsim/config"
	"github.com/sarchlab/memsim/mem/cache"
)

func cacheCommands() []*command {
	return []*command{
		{
			names: []string{"cache"},
			usage: "cache init <l1> <l1_block> <l2> <l2_block>",
			help:  "Build the L1/L2 cache hierarchy",
			run:   (*Shell).cache,
		},
		{
			names: []string{"access"},
			usage: "access <address>",
			help:  "Access an address through L1 and L2",
			run:   (*Shell).access,
		},
		{
			names: []string{"cachestats"},
			usage: "cache stats",
			help:  "Display cache hit and miss statistics",
			run:   (*Shell).cacheStats,
		},
		{
			names: []string{"cacheinfo"},
			usage: "cache info",
			help:  "Display cache geometry and occupancy",
			run:   (*Shell).cacheInfo,
		},
		{
			names: []string{"flush"},
			usage: "cache flush",
			help:  "Invalidate every cache line",
			run:   (*Shell).flush,
		},
		{
			names: []string{"cachereset"},
			usage: "cache reset",
			help:  "Rebuild both caches, clearing their statistics",
			run:   (*Shell).cacheReset,
		},
	}
}

func (s *Shell) cache(args []string) {
	if len(args) < 1 {
		s.printf("Usage: cache <init|access|stats|info|flush|reset>\n")
		return
	}

	rest := args[1:]

	switch strings.ToLower(args[0]) {
	case "init", "initialize":
		s.cacheInit(rest)
	case "access":
		s.access(rest)
	case "stats", "statistics":
		s.cacheStats(rest)
	case "info":
		s.cacheInfo(rest)
	case "flush":
		s.flush(rest)
	case "reset":
		s.cacheReset(rest)
	default:
		s.printf("Unknown cache command: '%s'\n", args[0])
	}
}

func (s *Shell) cacheInit(args []string) {
	if len(args) < 4 {
		s.printf("Usage: cache init <l1_size> <l1_block_size> <l2_size> <l2_block_size>\n")
		s.printf("Example: cache init 1024 32 8192 64\n")
		return
	}

	var sizes [4]uint64
	for i := range sizes {
		v, err := config.ParseUint(args[i])
		if err != nil {
			s.printf("Error: Invalid cache size format '%s'\n", args[i])
			return
		}

		sizes[i] = v
	}

	h := s.sim.Hierarchy()
	cfg := cache.HierarchyConfig{
		L1: cache.LevelConfig{ByteSize: sizes[0], BlockSize: sizes[1]},
		L2: cache.LevelConfig{ByteSize: sizes[2], BlockSize: sizes[3]},
	}

	if err := h.Initialize(cfg); err != nil {
		s.printf("Error initializing cache hierarchy: %v\n", err)
		return
	}

	for _, l := range []*cache.Level{h.L1(), h.L2()} {
		info := l.Info()
		s.printf("Initializing %s Cache:\n", l.Name())
		s.printf("Cache initialized: %d bytes, %d bytes per block, %d total blocks\n",
			info.ByteSize, info.BlockSize, info.NumBlocks)
	}

	s.printf("Cache hierarchy successfully initialized\n")
}

func (s *Shell) access(args []string) {
	if len(args) < 1 {
		s.printf("Usage: access <address>\n")
		s.printf("Example: access 0x1f40\n")
		return
	}

	addr, err := config.ParseUint(args[0])
	if err != nil {
		s.printf("Error: Invalid address format\n")
		return
	}

	result, err := s.sim.Hierarchy().Access(addr)
	if errors.Is(err, cache.ErrNotInitialized) {
		s.printf("Error: Cache hierarchy not initialized\n")
		return
	}

	if result.Hit {
		s.printf("Address 0x%x: %s hit\n", addr, result.ServedBy)
		return
	}

	s.printf("Address 0x%x: miss, served by %s\n", addr, result.ServedBy)
}

func (s *Shell) cacheStats(_ []string) {
	stats, err := s.sim.Hierarchy().Statistics()
	if err != nil {
		s.printf("Cache hierarchy not initialized\n")
		return
	}

	s.report("\n--- Cache Performance Statistics ---\n")
	s.levelStats("L1 Cache", stats.L1)
	s.report("\n")
	s.levelStats("L2 Cache", stats.L2)

	if stats.L1.Accesses > 0 {
		s.report("\nOverall Cache Performance:\n")
		s.report("  Combined hit ratio: %.2f%%\n", stats.CombinedHitRatio)
	}

	s.report("-----------------------------------\n")
}

func (s *Shell) levelStats(name string, m cache.Metrics) {
	s.report("%s Performance:\n", name)
	s.report("  Total accesses: %d\n", m.Accesses)
	s.report("  Cache hits: %d\n", m.Hits)
	s.report("  Cache misses: %d\n", m.Misses)
	s.report("  Hit ratio: %.2f%%\n", m.HitRatio())
	s.report("  Miss ratio: %.2f%%\n", m.MissRatio())
}

func (s *Shell) cacheInfo(_ []string) {
	h := s.sim.Hierarchy()
	if !h.IsInitialized() {
		s.printf("Cache hierarchy not initialized\n")
		return
	}

	for _, l := range []*cache.Level{h.L1(), h.L2()} {
		info := l.Info()
		s.report("%s Cache Configuration:\n", l.Name())
		s.report("  Size: %d bytes\n", info.ByteSize)
		s.report("  Block size: %d bytes\n", info.BlockSize)
		s.report("  Number of blocks: %d\n", info.NumBlocks)
		if info.WayAssociativity > 1 {
			s.report("  Sets: %d (%d-way)\n", info.NumSets, info.WayAssociativity)
		}
		s.report("  Valid blocks: %d/%d\n", info.ValidBlocks, info.NumBlocks)
	}
}

func (s *Shell) flush(_ []string) {
	if err := s.sim.Hierarchy().FlushAll(); err != nil {
		s.printf("Cache hierarchy not initialized\n")
		return
	}

	s.printf("Flushing all caches...\n")
}

func (s *Shell) cacheReset(_ []string) {
	if err := s.sim.Hierarchy().ResetStatistics(); err != nil {
		s.printf("Cache hierarchy not initialized\n")
		return
	}

	s.printf("Cache statistics reset\n")
}
