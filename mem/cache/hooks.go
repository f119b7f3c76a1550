package cache

import (
	"github.com/sarchlab/memsim/instrumentation/hooking"
	"github.com/sarchlab/memsim/mem/cache/internal/tagging"
)

var (
	// HookPosCacheAccess fires after every access. Item is an AccessEvent.
	HookPosCacheAccess = &hooking.HookPos{Name: "CacheAccess"}

	// HookPosCacheEvict fires when a valid line is replaced. Item is the
	// evicted Line.
	HookPosCacheEvict = &hooking.HookPos{Name: "CacheEvict"}
)

// A Line is the public view of a cache block.
type Line struct {
	SetID   int    `json:"set_id"`
	WayID   int    `json:"way_id"`
	Tag     uint64 `json:"tag"`
	Address uint64 `json:"address"`
}

func lineOf(b tagging.Block) Line {
	return Line{
		SetID:   b.SetID,
		WayID:   b.WayID,
		Tag:     b.Tag,
		Address: b.Address,
	}
}

// AccessEvent describes one access to a level.
type AccessEvent struct {
	Address uint64
	SetID   int
	Tag     uint64
	Hit     bool
}
