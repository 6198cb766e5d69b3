package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	deliveryContext "pointshop/internal/delivery/context"
	"pointshop/internal/domain/service"
	"pointshop/internal/infra/metrics"

	"github.com/pkg/errors"
)

const (
	defaultQueueSize   = 256
	defaultSendTimeout = 5 * time.Second
)

type job struct {
	ctx     context.Context
	message string
}

// Dispatcher hands messages to a single background worker so redemption
// responses never wait on the outbound transport.
type Dispatcher struct {
	sender  service.MessageSender
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.RWMutex
	queue   chan job
	closed  bool
	stopped chan struct{}
}

var _ service.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher. Start must be called before messages are sent.
func NewDispatcher(sender service.MessageSender, queueSize int, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	return &Dispatcher{
		sender:  sender,
		timeout: timeout,
		logger:  logger,
		queue:   make(chan job, queueSize),
		stopped: make(chan struct{}),
	}
}

// Start launches the worker. It exits once Stop closes the queue and the backlog is drained.
func (d *Dispatcher) Start() {
	go d.run()
}

// Notify enqueues message. A full queue or a stopped dispatcher drops it.
func (d *Dispatcher) Notify(ctx context.Context, message string) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log(ctx).Warn("Notification dropped, dispatcher stopped")

		return
	}

	select {
	case d.queue <- job{ctx: context.WithoutCancel(ctx), message: message}:
		metrics.NotificationQueueDepth.Inc()
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log(ctx).Warn("Notification dropped, queue full", slog.Int("capacity", cap(d.queue)))
	}
}

// Stop closes the queue and waits for pending messages until ctx expires.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.stopped:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "notification backlog not drained")
	}
}

func (d *Dispatcher) run() {
	defer close(d.stopped)

	for j := range d.queue {
		metrics.NotificationQueueDepth.Dec()
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.timeout)
	defer cancel()

	if err := d.sender.Send(ctx, j.message); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log(j.ctx).Error("Failed to send notification", slog.Any("error", err))

		return
	}

	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}

func (d *Dispatcher) log(ctx context.Context) *slog.Logger {
	return deliveryContext.GetLoggerOrDefault(ctx, d.logger)
}
