package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Kind selects which Notifier method a queued Job maps to.
type Kind int

const (
	// KindVerification delivers an email-verification link.
	KindVerification Kind = iota
	// KindReset delivers a password-reset link.
	KindReset
)

// Job is one queued delivery.
type Job struct {
	Kind  Kind
	Email string
	Token string
}

// Config controls dispatcher buffering.
type Config struct {
	BufferSize int
	DropIfFull bool
	// SendTimeout bounds each background delivery. Zero selects 10s.
	SendTimeout time.Duration
}

// Dispatcher delivers jobs through a Notifier on a background goroutine.
// Enqueue never blocks the caller when DropIfFull is set; delivery outcome
// is reported through the optional OnResult hook, never to the enqueuer.
type Dispatcher struct {
	cfg      Config
	notifier Notifier

	// OnResult, when set before the first Enqueue, observes every finished
	// delivery. The error is nil on success.
	OnResult func(Job, error)

	ch        chan Job
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts the delivery goroutine.
func NewDispatcher(cfg Config, notifier Notifier) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}

	d := &Dispatcher{
		cfg:      cfg,
		notifier: notifier,
		ch:       make(chan Job, cfg.BufferSize),
		done:     make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.ch:
			d.deliver(job)
		case <-d.done:
			for {
				select {
				case job := <-d.ch:
					d.deliver(job)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	var err error
	switch job.Kind {
	case KindReset:
		err = d.notifier.SendResetLink(ctx, job.Email, job.Token)
	default:
		err = d.notifier.SendVerificationLink(ctx, job.Email, job.Token)
	}

	if d.OnResult != nil {
		d.OnResult(job, err)
	}
}

// Enqueue queues a delivery. Reports false when the job was dropped because
// the buffer was full or the dispatcher is closed.
func (d *Dispatcher) Enqueue(ctx context.Context, job Job) bool {
	if d == nil || d.closed.Load() {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- job:
			return true
		case <-d.done:
			return false
		default:
			d.dropped.Add(1)
			return false
		}
	}

	select {
	case d.ch <- job:
		return true
	case <-ctx.Done():
		return false
	case <-d.done:
		return false
	}
}

// Send delivers the job synchronously on the caller's goroutine, bounded
// by SendTimeout plus whatever deadline ctx already carries. It bypasses
// the queue; failures come back to the caller instead of OnResult.
func (d *Dispatcher) Send(ctx context.Context, job Job) error {
	if d == nil || d.notifier == nil {
		return ErrNoNotifier
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	switch job.Kind {
	case KindReset:
		return d.notifier.SendResetLink(ctx, job.Email, job.Token)
	default:
		return d.notifier.SendVerificationLink(ctx, job.Email, job.Token)
	}
}

// Close stops accepting jobs, drains the buffer, and waits for in-flight
// deliveries.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many jobs were discarded due to a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
