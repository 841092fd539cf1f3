package writer

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/alisaviation/metricslog/internal/logger"
	"github.com/alisaviation/metricslog/internal/models"
	"github.com/alisaviation/metricslog/internal/storage"
)

const DefaultFlushInterval = time.Second

var (
	ErrStopped         = errors.New("metrics writer is stopped")
	ErrEmptyFilePath   = errors.New("metrics log path is empty")
	ErrInvalidInterval = errors.New("flush interval must be positive")
)

type Config struct {
	FilePath      string
	FlushInterval time.Duration
}

// Validate checks the config and fills in the default interval when it is
// left at zero.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return ErrEmptyFilePath
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	if c.FlushInterval < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, c.FlushInterval)
	}
	return nil
}

type Option func(*Writer)

func WithClock(c clock.Clock) Option {
	return func(w *Writer) { w.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Writer) { w.log = l }
}

type Stats struct {
	Flushes uint64
	Skipped uint64
	Dropped uint64
}

// Writer records metrics into a Storage and appends fresh values to the
// metrics log from a single background goroutine. A flush happens when a
// record asks for one or when the flush interval passes, whichever comes
// first.
type Writer struct {
	cfg   Config
	store storage.Storage
	clock clock.Clock
	log   *zap.Logger

	ticker    *clock.Ticker
	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	requested atomic.Bool

	// stateMu lets Stop wait out records that are in flight so the final
	// flush sees all of them.
	stateMu  sync.RWMutex
	stopped  bool
	stopOnce sync.Once

	flushMu sync.Mutex
	flushes atomic.Uint64
	skipped atomic.Uint64
	dropped atomic.Uint64
}

func New(cfg Config, store storage.Storage, opts ...Option) (*Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &Writer{
		cfg:   cfg,
		store: store,
		clock: clock.New(),
		log:   logger.Log,
		wake:  make(chan struct{}, 1),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.ticker = w.clock.Ticker(w.cfg.FlushInterval)
	go w.run(w.clock.Now())

	w.log.Info("metrics writer started",
		zap.String("path", w.cfg.FilePath),
		zap.Duration("interval", w.cfg.FlushInterval))
	return w, nil
}

// Record stores value under name and schedules a flush. It never blocks on
// file I/O.
func (w *Writer) Record(name string, value models.Value) error {
	w.stateMu.RLock()
	defer w.stateMu.RUnlock()

	if w.stopped {
		return ErrStopped
	}
	if err := w.store.Record(name, value); err != nil {
		return err
	}

	w.requested.Store(true)
	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

func (w *Writer) RecordFloat(name string, value float64) error {
	return w.Record(name, models.Float(value))
}

func (w *Writer) RecordInt(name string, value int64) error {
	return w.Record(name, models.Int(value))
}

func (w *Writer) RecordText(name string, value string) error {
	return w.Record(name, models.Text(value))
}

// RecordAny infers the metric kind from the dynamic type of value.
func (w *Writer) RecordAny(name string, value any) error {
	v, err := models.ValueOf(value)
	if err != nil {
		return fmt.Errorf("record %q: %w", name, err)
	}
	return w.Record(name, v)
}

// Flush writes the fresh metrics now instead of waiting for the background
// goroutine. An error means the line was lost.
func (w *Writer) Flush() error {
	return w.flush()
}

// Stop halts the background goroutine and writes whatever is still fresh.
// Calls after the first return immediately.
func (w *Writer) Stop() {
	w.stopOnce.Do(func() {
		w.stateMu.Lock()
		w.stopped = true
		w.stateMu.Unlock()

		close(w.stop)
		<-w.done
		w.ticker.Stop()

		_ = w.flush()
		stats := w.Stats()
		w.log.Info("metrics writer stopped",
			zap.Uint64("flushes", stats.Flushes),
			zap.Uint64("dropped", stats.Dropped))
	})
}

func (w *Writer) Stats() Stats {
	return Stats{
		Flushes: w.flushes.Load(),
		Skipped: w.skipped.Load(),
		Dropped: w.dropped.Load(),
	}
}

func (w *Writer) run(lastFlush time.Time) {
	defer close(w.done)

	for {
		var now time.Time
		select {
		case <-w.stop:
			return
		case <-w.wake:
			now = w.clock.Now()
		case tick := <-w.ticker.C:
			// Measure from when the tick fired so handling latency does not
			// push the next tick under the interval.
			now = tick
		}

		select {
		case <-w.stop:
			return
		default:
		}

		// A wake whose request was already served by the previous flush,
		// with the interval not yet over, is ignored.
		if w.requested.Swap(false) || now.Sub(lastFlush) >= w.cfg.FlushInterval {
			_ = w.flush()
			lastFlush = now
		}
	}
}

func (w *Writer) flush() error {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	snapshot := w.store.SnapshotAndReset()
	if len(snapshot) == 0 {
		w.skipped.Add(1)
		w.log.Debug("no fresh metrics to flush")
		return nil
	}

	line := FormatLine(w.clock.Now(), snapshot)
	if err := appendLine(w.cfg.FilePath, line); err != nil {
		w.dropped.Add(1)
		w.log.Error("metrics flush dropped",
			zap.String("path", w.cfg.FilePath),
			zap.Int("metrics", len(snapshot)),
			zap.Error(err))
		return err
	}

	w.flushes.Add(1)
	return nil
}
