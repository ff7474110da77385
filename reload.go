package identity

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ReloadController re-reads the store's data directory when the process
// receives SIGHUP, the conventional "pick up my edits" signal for operators
// who change record files by hand. A failed reload logs and keeps the
// previous snapshot live.
type ReloadController struct {
	store   *Store
	logger  Logger
	signals chan os.Signal
}

// ReloadOption configures a ReloadController.
type ReloadOption func(*ReloadController)

// WithReloadLogger sets the logger the controller reports through.
func WithReloadLogger(logger Logger) ReloadOption {
	return func(c *ReloadController) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewReloadController returns a controller bound to the given store.
func NewReloadController(store *Store, opts ...ReloadOption) *ReloadController {
	controller := &ReloadController{
		store:   store,
		logger:  defLogger{},
		signals: make(chan os.Signal, 1),
	}
	for _, opt := range opts {
		opt(controller)
	}
	return controller
}

// Start subscribes to SIGHUP and blocks until ctx is done, reloading the
// store on each signal. Run it on its own goroutine.
func (c *ReloadController) Start(ctx context.Context) {
	signal.Notify(c.signals, syscall.SIGHUP)
	defer signal.Stop(c.signals)

	c.logger.Info("reload controller listening for SIGHUP")

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.signals:
			c.handleReload(ctx)
		}
	}
}

// Trigger requests a reload without a signal, for callers that detect
// staleness themselves.
func (c *ReloadController) Trigger() {
	select {
	case c.signals <- syscall.SIGHUP:
	default:
	}
}

func (c *ReloadController) handleReload(ctx context.Context) {
	if err := c.store.Reload(ctx); err != nil {
		c.logger.Error("reload failed, keeping previous snapshot: %v", err)
		return
	}
	c.logger.Info("reload complete")
}
