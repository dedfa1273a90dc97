package common

import (
	"fmt"
	"time"
)

// Duration is a time.Duration read from config as a string such as "1s" or "2h"
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalText parses a time.ParseDuration string
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText writes the duration in time.Duration string form
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
