package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"pagesort/pkg/schema"
)

var (
	ErrFull    = errors.New("queue is full")
	ErrStopped = errors.New("queue is stopped")
)

// SortQueue runs sort requests on a fixed number of workers.
type SortQueue struct {
	sorter  Sorter
	workers int
	items   chan *Item

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// Item is one queued sort. Started is closed when a worker picks it up. Exactly one of
// Response or Error then receives a value and the other is closed.
type Item struct {
	ID       string
	Request  schema.SortRequest
	Started  chan struct{}
	Response chan schema.OrderingResult
	Error    chan error
}

var _ Queue = (*SortQueue)(nil)

// New creates a queue holding up to capacity waiting items. Workers and capacity below one
// are raised to one.
func New(sorter Sorter, workers, capacity int) *SortQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &SortQueue{
		sorter:  sorter,
		workers: max(workers, 1),
		items:   make(chan *Item, max(capacity, 1)),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (q *SortQueue) Start() {
	for i := range q.workers {
		q.wg.Add(1)
		go q.processLoop(i)
	}
}

// Stop cancels running sorts, fails queued items with ErrStopped and waits for the workers.
func (q *SortQueue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	q.cancel()
	close(q.items)
	q.mu.Unlock()

	q.wg.Wait()
}

// Add enqueues req without blocking.
func (q *SortQueue) Add(id string, req schema.SortRequest) (*Item, error) {
	item := &Item{
		ID:       id,
		Request:  req,
		Started:  make(chan struct{}),
		Response: make(chan schema.OrderingResult, 1),
		Error:    make(chan error, 1),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return nil, ErrStopped
	}
	select {
	case q.items <- item:
		return item, nil
	default:
		return nil, ErrFull
	}
}

// Len is the number of items waiting for a worker.
func (q *SortQueue) Len() int {
	return len(q.items)
}

func (q *SortQueue) processLoop(worker int) {
	defer q.wg.Done()
	log.Debug("sort worker started", "worker", worker)
	for item := range q.items {
		if q.ctx.Err() != nil {
			item.fail(ErrStopped)
			continue
		}
		q.processItem(worker, item)
	}
	log.Debug("sort worker stopped", "worker", worker)
}

func (q *SortQueue) processItem(worker int, item *Item) {
	close(item.Started)
	log.Info("processing sort job", "job", item.ID, "worker", worker, "pages", len(item.Request.Images))

	result, err := q.sorter.Sort(q.ctx, item.Request, nil)
	if err != nil {
		log.Warn("sort job failed", "job", item.ID, "error", err)
		item.Error <- err
		close(item.Response)
		return
	}

	item.Response <- result
	close(item.Error)
}

func (item *Item) fail(err error) {
	close(item.Started)
	item.Error <- err
	close(item.Response)
}

// Wait blocks until the item finishes or ctx is done.
func (item *Item) Wait(ctx context.Context) (schema.OrderingResult, error) {
	select {
	case <-ctx.Done():
		return schema.OrderingResult{}, ctx.Err()
	case result, ok := <-item.Response:
		if ok {
			return result, nil
		}
		return schema.OrderingResult{}, <-item.Error
	case err, ok := <-item.Error:
		if ok {
			return schema.OrderingResult{}, err
		}
		return <-item.Response, nil
	}
}
