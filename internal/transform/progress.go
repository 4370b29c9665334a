package transform

import (
	"time"

	"go.uber.org/atomic"

	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
)

// Progress is one progress tick.
type Progress struct {
	RunID   string
	Done    int
	Total   int
	Elapsed time.Duration
}

// ProgressFunc receives progress ticks. It is called from worker goroutines
// and must be safe for concurrent use.
type ProgressFunc func(Progress)

// progress counts finished items across workers. A nil *progress is a no-op.
type progress struct {
	runID string
	done  atomic.Int64
	total int64
	every int64
	start time.Time
	log   logging.Logger
	fn    ProgressFunc
}

func newProgress(runID string, total, every int, log logging.Logger, fn ProgressFunc) *progress {
	if every <= 0 {
		every = max(total/10, 1)
	}
	return &progress{
		runID: runID,
		total: int64(total),
		every: int64(every),
		start: time.Now(),
		log:   log,
		fn:    fn,
	}
}

// add records one finished item and emits a tick on every multiple of the
// granularity and on the final item.
func (p *progress) add() {
	if p == nil {
		return
	}
	d := p.done.Inc()
	if d%p.every != 0 && d != p.total {
		return
	}
	tick := Progress{RunID: p.runID, Done: int(d), Total: int(p.total), Elapsed: time.Since(p.start)}
	p.log.Info("transform progress",
		logging.RunID(p.runID),
		logging.Int("done", tick.Done),
		logging.Int("total", tick.Total),
		logging.Duration("elapsed", tick.Elapsed))
	if p.fn != nil {
		p.fn(tick)
	}
}
