package identity

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

type CreateUserMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Org       string `json:"org"`
	Password  string `json:"password"`
	UseHashid bool
}

func (e CreateUserMessage) Type() string { return "identity.user.create" }

// CreateUserHandler provisions a user record from a registration message.
type CreateUserHandler struct {
	store *Store
}

// NewCreateUserHandler returns a handler bound to the given store.
func NewCreateUserHandler(store *Store) *CreateUserHandler {
	return &CreateUserHandler{store: store}
}

func (h *CreateUserHandler) Execute(ctx context.Context, event CreateUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateUserHandler) execute(_ context.Context, event CreateUserMessage) error {
	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := NewUser(event.Email, hash, event.FirstName, event.LastName, event.Org)
	if event.UseHashid {
		// Deterministic ids let repeated registrations of the same email
		// collide on id as well as on the email index.
		if id, err := hashid.NewUUID(event.Email); err == nil {
			user.ID = "user-" + strings.ReplaceAll(id.String(), "-", "")
		}
	}

	if err := h.store.CreateUser(user); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	return nil
}
