package sync

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/mzarins/invsync/internal/client/api"
	"github.com/mzarins/invsync/internal/logging"
)

const pingTimeout = 3 * time.Second

// Monitor probes the server on an interval and tracks connectivity as a
// simple online/offline state. Transitions are edge-triggered: the callback
// fires once per offline-to-online flip, not on every successful probe.
type Monitor struct {
	api      api.Client
	interval time.Duration
	logger   logging.Logger
	onOnline func(ctx context.Context)

	online atomic.Bool
}

// NewMonitor builds a watcher. onOnline may be nil; when set it runs on the
// watcher goroutine each time connectivity returns.
func NewMonitor(apiClient api.Client, interval time.Duration, logger logging.Logger, onOnline func(ctx context.Context)) *Monitor {
	return &Monitor{api: apiClient, interval: interval, logger: logger, onOnline: onOnline}
}

// Online reports the last observed connectivity state.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Probe performs a single connectivity check and applies the transition.
func (m *Monitor) Probe(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := m.api.Ping(pingCtx)
	cancel()

	was := m.online.Load()
	now := err == nil
	if was == now {
		return now
	}
	m.online.Store(now)

	if now {
		m.logger.Info(ctx, "server reachable, switching to online mode")
		if m.onOnline != nil {
			m.onOnline(ctx)
		}
	} else {
		m.logger.Info(ctx, "server unreachable, switching to offline mode", "error", err)
	}
	return now
}

// Run probes until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Probe(ctx)
	for {
		select {
		case <-ticker.C:
			m.Probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}
