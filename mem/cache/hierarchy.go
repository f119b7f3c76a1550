package cache

import (
	"github.com/sarchlab/memsim/instrumentation/hooking"
	"github.com/sarchlab/memsim/mem"
)

// Names reported in AccessResult.ServedBy.
const (
	ServedByL1     = "L1"
	ServedByL2     = "L2"
	ServedByMemory = "memory"
)

// LevelConfig is the geometry of one level.
type LevelConfig struct {
	ByteSize         uint64 `json:"byte_size"`
	BlockSize        uint64 `json:"block_size"`
	WayAssociativity int    `json:"way_associativity"`
}

func (c LevelConfig) build(name string) (*Level, error) {
	ways := c.WayAssociativity
	if ways == 0 {
		ways = 1
	}

	return MakeBuilder().
		WithByteSize(c.ByteSize).
		WithBlockSize(c.BlockSize).
		WithWayAssociativity(ways).
		Build(name)
}

// HierarchyConfig configures both levels of a Hierarchy.
type HierarchyConfig struct {
	L1 LevelConfig `json:"l1"`
	L2 LevelConfig `json:"l2"`
}

// DefaultHierarchyConfig returns a 1 KB L1 with 32 B blocks in front of an
// 8 KB L2 with 64 B blocks, both direct-mapped.
func DefaultHierarchyConfig() HierarchyConfig {
	return HierarchyConfig{
		L1: LevelConfig{ByteSize: 1 * mem.KB, BlockSize: 32, WayAssociativity: 1},
		L2: LevelConfig{ByteSize: 8 * mem.KB, BlockSize: 64, WayAssociativity: 1},
	}
}

// AccessResult tells whether an access hit and which level served it.
type AccessResult struct {
	Hit      bool   `json:"hit"`
	ServedBy string `json:"served_by"`
}

// A Hierarchy is an L1 in front of an L2. Either both levels exist or
// neither does.
type Hierarchy struct {
	l1, l2 *Level
	config HierarchyConfig
	hooks  []hooking.Hook
}

// NewHierarchy creates an uninitialized hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{}
}

// Initialize builds both levels from cfg. If either level fails to build,
// the hierarchy is left uninitialized and the error is returned.
func (h *Hierarchy) Initialize(cfg HierarchyConfig) error {
	h.l1, h.l2 = nil, nil

	l1, l2, err := h.buildLevels(cfg)
	if err != nil {
		return err
	}

	h.l1, h.l2 = l1, l2
	h.config = cfg

	return nil
}

func (h *Hierarchy) buildLevels(cfg HierarchyConfig) (*Level, *Level, error) {
	l1, err := cfg.L1.build("L1")
	if err != nil {
		return nil, nil, err
	}

	l2, err := cfg.L2.build("L2")
	if err != nil {
		return nil, nil, err
	}

	for _, hook := range h.hooks {
		l1.AcceptHook(hook)
		l2.AcceptHook(hook)
	}

	return l1, l2, nil
}

// IsInitialized reports whether both levels exist.
func (h *Hierarchy) IsInitialized() bool {
	return h.l1 != nil && h.l2 != nil
}

// L1 returns the first level, or nil before Initialize.
func (h *Hierarchy) L1() *Level {
	return h.l1
}

// L2 returns the second level, or nil before Initialize.
func (h *Hierarchy) L2() *Level {
	return h.l2
}

// Config returns the configuration of the last successful Initialize.
func (h *Hierarchy) Config() HierarchyConfig {
	return h.config
}

// AcceptHook attaches the hook to both levels, including levels built by
// later calls to Initialize or ResetStatistics.
func (h *Hierarchy) AcceptHook(hook hooking.Hook) {
	h.hooks = append(h.hooks, hook)

	if h.IsInitialized() {
		h.l1.AcceptHook(hook)
		h.l2.AcceptHook(hook)
	}
}

// Access sends addr to L1 and, on an L1 miss, to L2. A miss in L2 is served
// by memory. Lines are never promoted from L2 to L1.
func (h *Hierarchy) Access(addr uint64) (AccessResult, error) {
	if !h.IsInitialized() {
		return AccessResult{}, ErrNotInitialized
	}

	if h.l1.Access(addr) {
		return AccessResult{Hit: true, ServedBy: ServedByL1}, nil
	}

	if h.l2.Access(addr) {
		return AccessResult{Hit: true, ServedBy: ServedByL2}, nil
	}

	return AccessResult{Hit: false, ServedBy: ServedByMemory}, nil
}

// Statistics returns the metrics of both levels and the combined hit ratio.
func (h *Hierarchy) Statistics() (HierarchyStatistics, error) {
	if !h.IsInitialized() {
		return HierarchyStatistics{}, ErrNotInitialized
	}

	return combine(h.l1.Metrics(), h.l2.Metrics()), nil
}

// FlushAll invalidates every line in both levels.
func (h *Hierarchy) FlushAll() error {
	if !h.IsInitialized() {
		return ErrNotInitialized
	}

	h.l1.Flush()
	h.l2.Flush()

	return nil
}

// ResetStatistics rebuilds both levels from the stored configuration, which
// clears the metrics and every resident line. If the rebuild fails, the
// current levels are kept and the error is returned.
func (h *Hierarchy) ResetStatistics() error {
	if !h.IsInitialized() {
		return ErrNotInitialized
	}

	l1, l2, err := h.buildLevels(h.config)
	if err != nil {
		return err
	}

	h.l1, h.l2 = l1, l2

	return nil
}
