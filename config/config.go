// Package config loads memsim settings from .env files and MEMSIM_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sarchlab/memsim/internal/logging"
	"github.com/sarchlab/memsim/mem"
	"github.com/sarchlab/memsim/mem/alloc"
	"github.com/sarchlab/memsim/mem/cache"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "MEMSIM_"

// Config holds everything needed to start a session.
type Config struct {
	PoolSize uint64
	Strategy string

	L1Size      uint64
	L1BlockSize uint64
	L1Ways      int
	L2Size      uint64
	L2BlockSize uint64
	L2Ways      int

	Monitor     bool
	MonitorPort int
	OpenBrowser bool

	Record     bool
	RecordPath string

	LogLevel string
}

// Default returns the settings used when nothing is configured: no pool, first
// fit, a 1 KB/32 B L1 and an 8 KB/64 B L2, no monitor and no recording.
func Default() Config {
	return Config{
		Strategy:    alloc.FirstFit.String(),
		L1Size:      1 * mem.KB,
		L1BlockSize: 32,
		L1Ways:      1,
		L2Size:      8 * mem.KB,
		L2BlockSize: 64,
		L2Ways:      1,
		LogLevel:    "warn",
	}
}

// Load starts from Default, applies the given .env files in order and then
// the process environment. Later sources win. The result is validated.
func Load(files ...string) (Config, error) {
	return load(files, os.LookupEnv)
}

func load(
	files []string,
	lookupEnv func(string) (string, bool),
) (Config, error) {
	c := Default()

	values := map[string]string{}
	if len(files) > 0 {
		fileValues, err := godotenv.Read(files...)
		if err != nil {
			return c, fmt.Errorf("reading env files: %w", err)
		}

		values = fileValues
		logging.L.Debug("env files loaded", "files", files, "keys", len(values))
	}

	get := func(key string) (string, bool) {
		if v, ok := lookupEnv(EnvPrefix + key); ok {
			return v, true
		}

		v, ok := values[EnvPrefix+key]

		return v, ok
	}

	p := parser{get: get}
	p.uintVar("POOL_SIZE", &c.PoolSize)
	p.stringVar("STRATEGY", &c.Strategy)
	p.uintVar("L1_SIZE", &c.L1Size)
	p.uintVar("L1_BLOCK_SIZE", &c.L1BlockSize)
	p.intVar("L1_WAYS", &c.L1Ways)
	p.uintVar("L2_SIZE", &c.L2Size)
	p.uintVar("L2_BLOCK_SIZE", &c.L2BlockSize)
	p.intVar("L2_WAYS", &c.L2Ways)
	p.boolVar("MONITOR", &c.Monitor)
	p.intVar("MONITOR_PORT", &c.MonitorPort)
	p.boolVar("OPEN_BROWSER", &c.OpenBrowser)
	p.boolVar("RECORD", &c.Record)
	p.stringVar("RECORD_PATH", &c.RecordPath)
	p.stringVar("LOG_LEVEL", &c.LogLevel)

	if err := errors.Join(p.errs...); err != nil {
		return c, err
	}

	return c, c.Validate()
}

type parser struct {
	get  func(key string) (string, bool)
	errs []error
}

func (p *parser) stringVar(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func (p *parser) uintVar(key string, dst *uint64) {
	v, ok := p.get(key)
	if !ok {
		return
	}

	n, err := ParseUint(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}

	*dst = n
}

func (p *parser) intVar(key string, dst *int) {
	v, ok := p.get(key)
	if !ok {
		return
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}

	*dst = n
}

func (p *parser) boolVar(key string, dst *bool) {
	v, ok := p.get(key)
	if !ok {
		return
	}

	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}

	*dst = b
}

// ParseUint accepts decimal numbers and 0x-prefixed hexadecimal numbers.
func ParseUint(s string) (uint64, error) {
	s = strings.TrimSpace(s)

	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		return strconv.ParseUint(rest, 16, 64)
	}

	return strconv.ParseUint(s, 10, 64)
}

// Validate checks that the settings can build a session.
func (c Config) Validate() error {
	var errs []error

	if _, err := alloc.ParseStrategy(c.Strategy); err != nil {
		errs = append(errs, err)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if c.L1BlockSize == 0 || c.L2BlockSize == 0 {
		errs = append(errs, cache.ErrZeroBlockSize)
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		errs = append(errs, fmt.Errorf("monitor port %d out of range", c.MonitorPort))
	}

	return errors.Join(errs...)
}

// StrategyValue returns the parsed placement strategy.
func (c Config) StrategyValue() alloc.Strategy {
	s, err := alloc.ParseStrategy(c.Strategy)
	if err != nil {
		return alloc.FirstFit
	}

	return s
}

// CacheConfig returns the hierarchy geometry.
func (c Config) CacheConfig() cache.HierarchyConfig {
	return cache.HierarchyConfig{
		L1: cache.LevelConfig{
			ByteSize:         c.L1Size,
			BlockSize:        c.L1BlockSize,
			WayAssociativity: c.L1Ways,
		},
		L2: cache.LevelConfig{
			ByteSize:         c.L2Size,
			BlockSize:        c.L2BlockSize,
			WayAssociativity: c.L2Ways,
		},
	}
}
