package alloc

// Statistics counts allocation requests since the last initialization.
type Statistics struct {
	Attempts  uint64 `json:"attempts"`
	Successes uint64 `json:"successes"`
	Failures  uint64 `json:"failures"`
}

// SuccessRate returns the percentage of attempts that succeeded.
func (s Statistics) SuccessRate() float64 {
	if s.Attempts == 0 {
		return 0
	}

	return 100 * float64(s.Successes) / float64(s.Attempts)
}

func (s *Statistics) recordAttempt() {
	s.Attempts++
}

func (s *Statistics) recordSuccess() {
	s.Successes++
}

func (s *Statistics) recordFailure() {
	s.Failures++
}
