// Package limiter throttles login attempts per key ("email:<addr>", "ip:<addr>").
package limiter

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrUnavailable = errors.New("limiter backend unavailable")

type Limiter interface {
	// Allow records one attempt for key and reports whether it is within budget.
	Allow(ctx context.Context, key string) (bool, error)
}

// Config sets the budget per key kind within a fixed window. The kind is the
// key prefix before the first ':'; kinds missing from Max use DefaultMax.
type Config struct {
	Window     time.Duration
	DefaultMax int
	Max        map[string]int
}

func (c Config) maxFor(key string) int {
	kind, _, found := strings.Cut(key, ":")
	if found {
		if n, ok := c.Max[kind]; ok {
			return n
		}
	}
	return c.DefaultMax
}

func (c Config) normalized() Config {
	if c.Window <= 0 {
		c.Window = 15 * time.Minute
	}
	if c.DefaultMax <= 0 {
		c.DefaultMax = 10
	}
	if len(c.Max) > 0 {
		budgets := make(map[string]int, len(c.Max))
		for kind, n := range c.Max {
			if n <= 0 {
				n = c.DefaultMax
			}
			budgets[kind] = n
		}
		c.Max = budgets
	}
	return c
}
