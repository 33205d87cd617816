package notify

import (
	"context"
	"errors"
	"sync"
)

// ErrNoNotifier is returned by synchronous sends on a dispatcher that was
// built without a Notifier.
var ErrNoNotifier = errors.New("notify: no notifier configured")

// Notifier delivers account emails. The token parameter is the raw
// credential the recipient will present back: a signed verification token
// or an opaque reset secret. Implementations embed it into a link.
type Notifier interface {
	SendVerificationLink(ctx context.Context, email, token string) error
	SendResetLink(ctx context.Context, email, token string) error
}

// Delivery is one recorded send.
type Delivery struct {
	Kind  Kind
	Email string
	Token string
}

// Recorder is an in-memory Notifier for tests. It captures every delivery
// and can be primed to fail.
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery
	failWith   error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SendVerificationLink(_ context.Context, email, token string) error {
	return r.record(KindVerification, email, token)
}

func (r *Recorder) SendResetLink(_ context.Context, email, token string) error {
	return r.record(KindReset, email, token)
}

// Deliveries returns a copy of everything recorded so far.
func (r *Recorder) Deliveries() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Delivery(nil), r.deliveries...)
}

// Last returns the most recent delivery, or an error when nothing was sent.
func (r *Recorder) Last() (Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.deliveries) == 0 {
		return Delivery{}, errors.New("notify: no deliveries recorded")
	}
	return r.deliveries[len(r.deliveries)-1], nil
}

// FailWith makes every subsequent send return err instead of recording.
// Pass nil to restore normal recording.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

func (r *Recorder) record(kind Kind, email, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.deliveries = append(r.deliveries, Delivery{Kind: kind, Email: email, Token: token})
	return nil
}
