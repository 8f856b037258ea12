package strength

import (
	"context"
	"sync"

	"github.com/entrhq/pagekit/pkg/types"
)

// Checker runs strength checks for a single password field. Each check
// gets a sequence number; a result arriving after a newer check started is
// discarded so the meter never shows the estimate of an older value.
type Checker struct {
	source     Source
	emitEvent  types.EventEmitter
	userInputs []string

	seq     uint64
	applied uint64
	last    Result
	mu      sync.Mutex
}

// NewChecker creates a checker backed by source. A nil source uses Local only.
func NewChecker(source Source, emit types.EventEmitter) *Checker {
	if source == nil {
		source = LocalSource{}
	}
	if emit == nil {
		emit = types.Discard
	}
	return &Checker{source: source, emitEvent: emit}
}

// SetUserInputs replaces the personal values penalised by the estimate.
func (c *Checker) SetUserInputs(inputs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userInputs = cleanInputs(inputs)
}

// Check estimates pw. It reports false when a newer check superseded this
// one, in which case the returned result must not be displayed.
func (c *Checker) Check(ctx context.Context, pw string) (Result, bool) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	inputs := append([]string(nil), c.userInputs...)
	c.mu.Unlock()

	var r Result
	if pw == "" {
		r = Local(pw)
	} else {
		r = c.source.Check(ctx, pw, inputs)
	}

	c.mu.Lock()
	if seq != c.seq || seq < c.applied {
		c.mu.Unlock()
		debugLog.Debugf("discarding stale strength result %d (latest %d)", seq, c.seq)
		return r, false
	}
	c.applied = seq
	c.last = r
	c.mu.Unlock()

	c.emitEvent(types.NewStrengthEstimatedEvent(r.Score, r.Label()))
	return r, true
}

// Last returns the most recently applied result.
func (c *Checker) Last() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// LocalSource scores with the heuristic only.
type LocalSource struct{}

// Check implements Source.
func (LocalSource) Check(_ context.Context, pw string, _ []string) Result {
	return Local(pw)
}

// EstimatorSource adapts an Estimator to Source for in-process checks.
type EstimatorSource struct {
	Estimator *Estimator
}

// Check implements Source.
func (s EstimatorSource) Check(_ context.Context, pw string, userInputs []string) Result {
	return s.Estimator.Estimate(pw, userInputs)
}
