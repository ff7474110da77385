package identity

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

type ReloadStoreMessage struct {
	Reason string `json:"reason"`
}

func (e ReloadStoreMessage) Type() string { return "identity.store.reload" }

// ReloadStoreHandler rebuilds the store snapshot on demand, for dispatchers
// that prefer a message over a POSIX signal.
type ReloadStoreHandler struct {
	store  *Store
	logger Logger
}

// NewReloadStoreHandler returns a handler bound to the given store.
func NewReloadStoreHandler(store *Store, logger Logger) *ReloadStoreHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return &ReloadStoreHandler{store: store, logger: logger}
}

func (h *ReloadStoreHandler) Execute(ctx context.Context, event ReloadStoreMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during store reload",
		)
	default:
	}

	if event.Reason != "" {
		h.logger.Info("reloading store: %s", event.Reason)
	}

	if err := h.store.Reload(ctx); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryOperation, "store reload failed")
	}

	return nil
}
