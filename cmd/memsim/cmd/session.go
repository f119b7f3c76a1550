package cmd

import (
	"github.com/sarchlab/memsim/config"
	"github.com/sarchlab/memsim/internal/logging"
	"github.com/sarchlab/memsim/monitoring"
	"github.com/sarchlab/memsim/simulation"
)

type session struct {
	sim     *simulation.Simulation
	monitor *monitoring.Monitor
}

func startSession(cfg config.Config) (*session, error) {
	b := simulation.MakeBuilder().
		WithPoolSize(cfg.PoolSize).
		WithStrategy(cfg.StrategyValue()).
		WithCacheConfig(cfg.CacheConfig())

	if cfg.Record {
		b = b.WithRecording(cfg.RecordPath)
	}

	sim, err := b.Build()
	if err != nil {
		return nil, err
	}

	logging.L.Info("session started",
		"session", sim.ID(),
		"pool", cfg.PoolSize,
		"strategy", cfg.Strategy,
		"record", cfg.Record)

	s := &session{sim: sim}

	if cfg.Monitor {
		s.monitor = monitoring.NewMonitor(sim).WithPortNumber(cfg.MonitorPort)
		s.monitor.StartServer()

		if cfg.OpenBrowser {
			if err := s.monitor.OpenBrowser(); err != nil {
				logging.L.Warn("cannot open browser", "err", err)
			}
		}
	}

	return s, nil
}

func (s *session) close() {
	s.sim.Terminate()
	logging.L.Info("session ended", "session", s.sim.ID())
}
