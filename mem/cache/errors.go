package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroBlockSize is returned when a level is configured with a block
	// size of zero.
	ErrZeroBlockSize = errors.New("block size must be positive")

	// ErrCapacityTooSmall is returned when a level cannot hold a single block.
	ErrCapacityTooSmall = errors.New("capacity is smaller than one block")

	// ErrBadAssociativity is returned when the blocks of a level cannot be
	// split evenly into sets.
	ErrBadAssociativity = errors.New("blocks do not divide into full sets")

	// ErrNotInitialized is returned by hierarchy operations before a
	// successful Initialize.
	ErrNotInitialized = errors.New("cache hierarchy not initialized")
)

// A ConfigError reports which level was given a bad configuration.
type ConfigError struct {
	Level string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuring %s: %v", e.Level, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
