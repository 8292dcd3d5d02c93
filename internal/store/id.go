package store

import (
	"strconv"
	"sync"

	"github.com/motodiag/internal/clock"
)

// idGenerator derives ids from the current time in milliseconds. Two calls
// landing on the same millisecond bump past the last issued value, so ids
// stay unique and monotonic under rapid successive Adds.
type idGenerator struct {
	mu    sync.Mutex
	clock clock.Clock
	last  int64
}

func newIDGenerator(clk clock.Clock) *idGenerator {
	return &idGenerator{clock: clk}
}

func (g *idGenerator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	millis := g.clock.Now().UnixMilli()
	if millis <= g.last {
		millis = g.last + 1
	}
	g.last = millis
	return strconv.FormatInt(millis, 10)
}
