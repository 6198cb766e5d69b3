// Package clock provides the zone-aware wall clock used for shop windows.
package clock

import (
	"time"

	"pointshop/config"
	"pointshop/internal/domain/service"
)

type zoneClock struct {
	loc *time.Location
}

func New(cfg *config.Config) service.Clock {
	return &zoneClock{loc: cfg.App.Location()}
}

func (c *zoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *zoneClock) Location() *time.Location {
	return c.loc
}

// Fixed is a clock frozen at one instant. Used by tests and the CLI.
type Fixed struct {
	At  time.Time
	Loc *time.Location
}

func (f Fixed) Now() time.Time {
	return f.At.In(f.Location())
}

func (f Fixed) Location() *time.Location {
	if f.Loc == nil {
		return time.UTC
	}

	return f.Loc
}
