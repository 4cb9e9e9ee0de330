package locate

import (
	"context"
	"sync"
	"time"
)

// Reading is a single sensed geographic position. Immutable once produced.
type Reading struct {
	Lat  float64   `json:"lat"`
	Lng  float64   `json:"lng"`
	Time time.Time `json:"time"`
}

// DefaultTimeout bounds one-shot requests and watch dials when the caller
// does not set one.
const DefaultTimeout = 5 * time.Second

// Options configure one-shot requests and continuous watches.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaxStaleness is the oldest cached fix a provider may deliver.
	// Zero means only live fixes.
	MaxStaleness time.Duration
}

// EffectiveTimeout returns the configured timeout or DefaultTimeout.
func (o Options) EffectiveTimeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// Provider is a location-sensing capability. Current issues a one-shot
// position request; Watch registers a continuous subscription. Failures are
// returned as classified *Error values.
type Provider interface {
	Current(ctx context.Context, opts Options) (Reading, error)
	Watch(opts Options) (*Subscription, error)
}

// Permission states reported by a PermissionQuerier.
const (
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
	PermissionPrompt  = "prompt"
)

// PermissionQuerier is an optional provider capability. Callers that find a
// provider without it fall back to reactive error reporting.
type PermissionQuerier interface {
	Permission(ctx context.Context) (string, error)
}

// Subscription is the cancellable handle for a continuous watch. Providers
// push values in with Publish and PublishError; consumers drain the channels
// until Done is closed.
type Subscription struct {
	readings chan Reading
	errs     chan *Error
	done     chan struct{}
	stop     func()
	once     sync.Once
}

// NewSubscription returns a subscription whose Cancel runs stop exactly once.
func NewSubscription(stop func()) *Subscription {
	return &Subscription{
		readings: make(chan Reading, 16),
		errs:     make(chan *Error, 4),
		done:     make(chan struct{}),
		stop:     stop,
	}
}

func (s *Subscription) Readings() <-chan Reading { return s.readings }
func (s *Subscription) Errors() <-chan *Error    { return s.errs }
func (s *Subscription) Done() <-chan struct{}    { return s.done }

// Cancel stops delivery and releases the underlying watch. Safe to call more
// than once; nothing is published after it returns.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		if s.stop != nil {
			s.stop()
		}
	})
}

// Publish hands a reading to the consumer. Readings are dropped once the
// subscription is cancelled or when the consumer is not keeping up.
func (s *Subscription) Publish(r Reading) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.readings <- r:
	default:
	}
}

// PublishError hands a classified failure to the consumer.
func (s *Subscription) PublishError(e *Error) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.errs <- e:
	default:
	}
}
