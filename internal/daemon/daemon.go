// Package daemon ties the engine and its IPC server into a single lifecycle
// with flock-based locking so only one foliod serves a configuration at a
// time.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"folio/internal/config"
	"folio/internal/engine"
	"folio/internal/ipc"
	"folio/internal/logging"
)

// Daemon owns the engine, the lock file, and the IPC server.
type Daemon struct {
	cfg    *config.Config
	engine *engine.Engine
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock

	server  *ipc.Server
	running atomic.Bool
	cancel  context.CancelFunc

	stopOnce sync.Once
	stopped  chan struct{}
}

// New constructs a daemon around an already-wired engine.
func New(cfg *config.Config, eng *engine.Engine, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || eng == nil {
		return nil, errors.New("daemon requires config and engine")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Daemon{
		cfg:      cfg,
		engine:   eng,
		logger:   logging.WithComponent(logger, "daemon"),
		lockPath: cfg.Daemon.LockPath,
		lock:     flock.New(cfg.Daemon.LockPath),
		stopped:  make(chan struct{}),
	}, nil
}

// Start acquires the daemon lock and begins serving IPC requests.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another foliod instance is already running")
	}

	serverCtx, cancel := context.WithCancel(ctx)
	server, err := ipc.NewServer(serverCtx, d.cfg.Daemon.SocketPath, d.engine, d.logger, d.requestShutdown)
	if err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start ipc server: %w", err)
	}
	server.Serve()

	d.server = server
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("foliod started",
		logging.String("socket", d.cfg.Daemon.SocketPath),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the IPC server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		d.signalStopped()
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.server != nil {
		d.server.Close()
		d.server = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("foliod stopped")
	d.signalStopped()
}

// Done is closed once the daemon has stopped or a client requested
// shutdown.
func (d *Daemon) Done() <-chan struct{} {
	return d.stopped
}

// Close stops the daemon and releases engine resources.
func (d *Daemon) Close() error {
	d.Stop()
	return d.engine.Close()
}

// Running reports whether the daemon is serving requests.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

func (d *Daemon) requestShutdown() {
	d.logger.Info("shutdown requested via ipc")
	d.signalStopped()
}

func (d *Daemon) signalStopped() {
	d.stopOnce.Do(func() { close(d.stopped) })
}
