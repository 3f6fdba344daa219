package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/willslawrence/sfla-tracker/internal/api/metrics"
	"github.com/willslawrence/sfla-tracker/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// task is one unit of work for a dispatcher worker. reply is nil for
// fire-and-forget batch checks; synchronous checks carry a buffered reply
// channel the worker answers on.
type task struct {
	check ports.StatusCheckInput
	reply chan taskResult
}

type taskResult struct {
	result *ports.StatusCheckResult
	err    error
}

// Dispatcher routes status checks to a fixed set of workers using consistent
// hashing on the site ID, guaranteeing per-site ordering. Every check for a
// site — a live tap or an offline backlog entry — is applied by the same
// worker goroutine, so the sequence guard's check-then-commit is never
// interleaved for one site and an older check can never land after a newer
// one has been applied.
type Dispatcher struct {
	workers []chan task
	service ports.UpdateService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.UpdateService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan task, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan task, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Process applies one check on the site's worker and waits for the result.
// Routing synchronous checks through the worker keeps one writer per site,
// even while a batch for the same site is draining.
func (d *Dispatcher) Process(ctx context.Context, check ports.StatusCheckInput) (*ports.StatusCheckResult, error) {
	reply := make(chan taskResult, 1)
	idx := d.shardIndex(check.SiteID)

	select {
	case d.workers[idx] <- task{check: check, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	metrics.ChecksQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))

	select {
	case res := <-reply:
		return res.result, res.err
	case <-ctx.Done():
		// The worker still applies the check and drops the answer into the
		// buffered reply channel; only the caller stops waiting.
		return nil, ctx.Err()
	}
}

// Enqueue sends a check to the worker responsible for its site.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(check ports.StatusCheckInput) {
	idx := d.shardIndex(check.SiteID)
	d.workers[idx] <- task{check: check}
	metrics.ChecksQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// EnqueueBatch enqueues multiple checks preserving per-site ordering.
func (d *Dispatcher) EnqueueBatch(checks []ports.StatusCheckInput) {
	for _, c := range checks {
		d.Enqueue(c)
	}
}

// shardIndex maps a site ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(siteID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(siteID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan task) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-ch:
			if !ok {
				return
			}
			start := time.Now()
			result, err := d.service.Apply(ctx, t.check)
			metrics.ChecksQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if err != nil {
				metrics.ChecksErrorsTotal.WithLabelValues("apply_failed").Inc()
				metrics.CheckProcessingDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
				if t.reply != nil {
					t.reply <- taskResult{err: err}
				} else {
					d.log.Error().Err(err).
						Str("site_id", t.check.SiteID).
						Int("worker_id", id).
						Msg("status check failed")
				}
				continue
			}
			if !result.Applied {
				metrics.ChecksSupersededTotal.Inc()
			}
			metrics.ChecksProcessedTotal.WithLabelValues(t.check.NewStatus).Inc()
			metrics.CheckProcessingDuration.WithLabelValues(t.check.NewStatus).Observe(time.Since(start).Seconds())
			if t.reply != nil {
				t.reply <- taskResult{result: result}
			}
		}
	}
}
