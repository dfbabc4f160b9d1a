package countdown

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/generic19/FastersApp/internal/prayer"
)

const (
	// QueueSize bounds the number of pending reload requests.
	QueueSize = 10

	// DefaultPollInterval is how often the worker checks for expiry.
	DefaultPollInterval = 60 * time.Second
)

// ErrQueueFull is returned by Reload when too many requests are pending.
var ErrQueueFull = errors.New("reload queue full")

// UpdateFunc observes every load result.
type UpdateFunc func(s *State, err error)

// Worker owns the current State. All loads happen on the goroutine running
// Run; readers use Current.
type Worker struct {
	src      Source
	clock    Clock
	poll     time.Duration
	onUpdate UpdateFunc
	logger   *zap.Logger

	queue chan struct{}

	mu      sync.RWMutex
	current *State
	lastErr error
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithClock sets the clock used for expiry checks.
func WithClock(c Clock) WorkerOption {
	return func(w *Worker) { w.clock = c }
}

// WithPollInterval sets the expiry check period.
func WithPollInterval(d time.Duration) WorkerOption {
	return func(w *Worker) { w.poll = d }
}

// WithOnUpdate registers a callback run after each load.
func WithOnUpdate(f UpdateFunc) WorkerOption {
	return func(w *Worker) { w.onUpdate = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) WorkerOption {
	return func(w *Worker) { w.logger = l }
}

// NewWorker returns a worker loading from src.
func NewWorker(src Source, opts ...WorkerOption) *Worker {
	w := &Worker{
		src:    src,
		clock:  SystemClock{},
		poll:   DefaultPollInterval,
		logger: zap.NewNop(),
		queue:  make(chan struct{}, QueueSize),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Reload asks the worker to recompute. It never blocks.
func (w *Worker) Reload() error {
	select {
	case w.queue <- struct{}{}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Current returns the latest state and the error of the latest load.
func (w *Worker) Current() (*State, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current, w.lastErr
}

// Run loads once, then serves reload requests and reloads on expiry until
// ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.load(ctx)

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.queue:
			// Pending requests collapse into one load.
			w.drain()
			w.load(ctx)
		case <-ticker.C:
			if w.stale() {
				w.load(ctx)
			}
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case <-w.queue:
		default:
			return
		}
	}
}

// stale reports whether a poll should reload. A missing location or invalid
// settings end the load cycle; only Reload retries them.
func (w *Worker) stale() bool {
	s, err := w.Current()
	if err != nil {
		return !terminal(err)
	}
	return s == nil || s.IsExpired(w.clock.Now())
}

func terminal(err error) bool {
	return errors.Is(err, ErrNoLocation) || errors.Is(err, prayer.ErrInvalidSettings)
}

func (w *Worker) load(ctx context.Context) {
	s, err := w.src.Load(ctx)
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		w.logger.Warn("countdown load failed", zap.Error(err))
	} else {
		w.logger.Debug("countdown updated",
			zap.String("next", s.NextPrayerName()),
			zap.Time("expiry", s.Expiry),
			zap.Bool("fasting", s.Fasting()),
		)
	}

	w.mu.Lock()
	if err == nil {
		w.current = s
	}
	w.lastErr = err
	w.mu.Unlock()

	if w.onUpdate != nil {
		w.onUpdate(s, err)
	}
}
