package cache

// Metrics counts the accesses served by one cache level.
type Metrics struct {
	Accesses uint64 `json:"accesses"`
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
}

// HitRatio returns the share of accesses that hit, in percent.
func (m Metrics) HitRatio() float64 {
	if m.Accesses == 0 {
		return 0
	}

	return 100 * float64(m.Hits) / float64(m.Accesses)
}

// MissRatio returns the share of accesses that missed, in percent.
func (m Metrics) MissRatio() float64 {
	if m.Accesses == 0 {
		return 0
	}

	return 100 * float64(m.Misses) / float64(m.Accesses)
}

func (m *Metrics) recordHit() {
	m.Accesses++
	m.Hits++
}

func (m *Metrics) recordMiss() {
	m.Accesses++
	m.Misses++
}

// HierarchyStatistics is a snapshot of both levels of a Hierarchy.
type HierarchyStatistics struct {
	L1 Metrics `json:"l1"`
	L2 Metrics `json:"l2"`

	// CombinedHitRatio is the percentage of L1 accesses served by either
	// level. L2 hits are normalized by L1 accesses.
	CombinedHitRatio float64 `json:"combined_hit_ratio"`
}

func combine(l1, l2 Metrics) HierarchyStatistics {
	s := HierarchyStatistics{L1: l1, L2: l2}

	if l1.Accesses > 0 {
		s.CombinedHitRatio = 100*float64(l1.Hits)/float64(l1.Accesses) +
			100*float64(l2.Hits)/float64(l1.Accesses)
	}

	return s
}
