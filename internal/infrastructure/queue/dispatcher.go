package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenloop/waste-platform/internal/api/metrics"
	"github.com/greenloop/waste-platform/internal/core/domain"
	"github.com/greenloop/waste-platform/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	persistTimeout = 5 * time.Second
)

// Dispatcher persists activity records off the request path. Records are
// routed to a fixed set of workers by hashing the user id, which keeps each
// user's audit trail in submission order.
type Dispatcher struct {
	workers []chan domain.Activity
	repo    ports.ActivityRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.ActivityRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Activity, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Activity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Close has been
// called and their channel is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues a for persistence. It never blocks: when the target worker
// is saturated, or the dispatcher is closed, the record is dropped.
func (d *Dispatcher) Record(a domain.Activity) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.ActivityDroppedTotal.Inc()
		d.log.Warn().Str("user_id", a.UserID).Msg("activity dispatcher closed, record dropped")
		return
	}

	idx := d.shardIndex(a.UserID)
	select {
	case d.workers[idx] <- a:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.ActivityDroppedTotal.Inc()
		d.log.Warn().Str("user_id", a.UserID).Int("worker_id", idx).Msg("activity queue full, record dropped")
	}
}

// Close stops accepting records and waits for pending ones to be persisted.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Activity) {
	defer d.wg.Done()

	label := strconv.Itoa(id)
	for a := range ch {
		metrics.ActivityQueueDepth.WithLabelValues(label).Dec()
		d.persist(ctx, id, a)
	}
}

// persist detaches from the parent's cancellation so records queued before
// shutdown are still written during the drain.
func (d *Dispatcher) persist(ctx context.Context, workerID int, a domain.Activity) {
	start := time.Now()
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := d.repo.Insert(pctx, &a); err != nil {
		d.log.Error().Err(err).
			Str("user_id", a.UserID).
			Str("kind", string(a.Kind)).
			Int("worker_id", workerID).
			Msg("activity persistence failed")
		return
	}
	metrics.ActivityPersistDuration.Observe(time.Since(start).Seconds())
}
