package database

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrConnectionLost = errors.New("database connection lost, reconnecting")

type Pinger interface {
	Health(ctx context.Context) error
}

// Watcher pings the database on an interval. After a failed ping it
// retries every retryDelay until the connection answers again.
type Watcher struct {
	pinger     Pinger
	interval   time.Duration
	retryDelay time.Duration
	log        logrus.FieldLogger
	connected  atomic.Bool
}

func NewWatcher(pinger Pinger, interval, retryDelay time.Duration, log logrus.FieldLogger) *Watcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}
	w := &Watcher{
		pinger:     pinger,
		interval:   interval,
		retryDelay: retryDelay,
		log:        log.WithField("component", "db-watcher"),
	}
	w.connected.Store(true)
	return w
}

func (w *Watcher) Connected() bool {
	return w.connected.Load()
}

// Check reports the last state seen by Run without pinging again.
func (w *Watcher) Check(ctx context.Context) error {
	if !w.Connected() {
		return ErrConnectionLost
	}
	return nil
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := w.ping(ctx)
			if err == nil {
				continue
			}
			w.connected.Store(false)
			w.log.WithError(err).Error("database connection lost")
			if !w.reconnect(ctx) {
				return
			}
		}
	}
}

func (w *Watcher) reconnect(ctx context.Context) bool {
	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(w.retryDelay):
		}

		err := w.ping(ctx)
		if err == nil {
			w.connected.Store(true)
			w.log.WithField("attempts", attempt).Info("database reconnected")
			return true
		}
		w.log.WithError(err).WithField("attempt", attempt).Warn("database still unreachable")
	}
}

func (w *Watcher) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return w.pinger.Health(ctx)
}
