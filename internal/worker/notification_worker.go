package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/notify"
)

// Deliverer sends one notification and handles its own failures.
type Deliverer interface {
	Notify(ctx context.Context, n notify.Notification)
}

// NotificationWorker is the fire-and-forget front for notifications: a
// bounded queue drained by a fixed pool of goroutines. Enqueue never blocks.
type NotificationWorker struct {
	deliverer Deliverer
	logger    *zap.Logger
	timeout   time.Duration
	workers   int

	queue    chan notify.Notification
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

// NewNotificationWorker sizes the pool and queue. Non-positive values fall back
// to one worker and a queue of 64.
func NewNotificationWorker(deliverer Deliverer, logger *zap.Logger, workers, queueSize int, timeout time.Duration) *NotificationWorker {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &NotificationWorker{
		deliverer: deliverer,
		logger:    logger,
		timeout:   timeout,
		workers:   workers,
		queue:     make(chan notify.Notification, queueSize),
	}
}

// Start launches the pool. Workers run until Stop drains the queue.
func (w *NotificationWorker) Start() {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run()
	}
	w.logger.Info("notification worker started", zap.Int("workers", w.workers), zap.Int("queue", cap(w.queue)))
}

// Notify enqueues n. A full queue or a stopped worker drops the message.
func (w *NotificationWorker) Notify(_ context.Context, n notify.Notification) {
	if !w.Enqueue(n) {
		w.logger.Warn("notification dropped",
			zap.String("channel", string(n.Channel)),
			zap.String("template", string(n.TemplateKey)))
	}
}

// Enqueue reports whether n was accepted.
func (w *NotificationWorker) Enqueue(n notify.Notification) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return false
	}
	select {
	case w.queue <- n:
		return true
	default:
		return false
	}
}

// Stop closes the queue and waits for in-flight deliveries, or for ctx.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		close(w.queue)
		w.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *NotificationWorker) run() {
	defer w.wg.Done()
	for n := range w.queue {
		w.deliver(n)
	}
}

func (w *NotificationWorker) deliver(n notify.Notification) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("notification delivery panicked", zap.Any("panic", r))
		}
	}()

	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	w.deliverer.Notify(ctx, n)
}
