package identity_test

import (
	"context"
	"strings"
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserMessage_Type(t *testing.T) {
	assert.Equal(t, "identity.user.create", identity.CreateUserMessage{}.Type())
}

func TestCreateUserHandler_Execute(t *testing.T) {
	store, _ := newTestStore(t, nil)
	handler := identity.NewCreateUserHandler(store)

	t.Run("creates the user", func(t *testing.T) {
		err := handler.Execute(context.Background(), identity.CreateUserMessage{
			FirstName: "Greta",
			LastName:  "Garbo",
			Email:     "greta@example.com",
			Org:       "acme",
			Password:  "s3cret-password",
		})
		require.NoError(t, err)

		user, err := store.UserByEmail("greta@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Greta", user.FirstName)
		assert.Equal(t, "acme", user.Org)
		assert.NoError(t, identity.ComparePasswordAndHash("s3cret-password", user.PasswordHash))
	})

	t.Run("deterministic ids with hashid", func(t *testing.T) {
		msg := identity.CreateUserMessage{
			FirstName: "Stable",
			LastName:  "Id",
			Email:     "stable@example.com",
			Org:       "acme",
			Password:  "s3cret-password",
			UseHashid: true,
		}
		require.NoError(t, handler.Execute(context.Background(), msg))

		user, err := store.UserByEmail("stable@example.com")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(user.ID, "user-"))
		assert.Len(t, user.ID, len("user-")+32)
		assert.NotContains(t, user.ID[len("user-"):], "-")

		// the second registration collides on id, not just email
		err = handler.Execute(context.Background(), msg)
		assert.Error(t, err)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		err := handler.Execute(context.Background(), identity.CreateUserMessage{
			FirstName: "No",
			LastName:  "Pass",
			Email:     "nopass@example.com",
			Org:       "acme",
		})
		assert.Error(t, err)

		_, err = store.UserByEmail("nopass@example.com")
		assert.ErrorIs(t, err, identity.ErrUserNotFound)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := handler.Execute(ctx, identity.CreateUserMessage{
			FirstName: "Too",
			LastName:  "Late",
			Email:     "late@example.com",
			Org:       "acme",
			Password:  "s3cret-password",
		})
		assert.Error(t, err)

		_, err = store.UserByEmail("late@example.com")
		assert.ErrorIs(t, err, identity.ErrUserNotFound)
	})
}

func TestReloadStoreHandler_Execute(t *testing.T) {
	t.Run("reloads and clears staleness", func(t *testing.T) {
		store, _ := newTestStore(t, nil)
		require.NoError(t, store.CreateUser(testUser("msg@example.com", "acme")))
		require.True(t, store.Stale())

		handler := identity.NewReloadStoreHandler(store, &capturingLogger{})
		err := handler.Execute(context.Background(), identity.ReloadStoreMessage{Reason: "operator edit"})

		require.NoError(t, err)
		assert.False(t, store.Stale())
	})

	t.Run("surfaces reload failure", func(t *testing.T) {
		store, dataDir := newTestStore(t, nil)
		breakRegistry(t, dataDir)

		handler := identity.NewReloadStoreHandler(store, &capturingLogger{})
		err := handler.Execute(context.Background(), identity.ReloadStoreMessage{})

		assert.Error(t, err)
		assert.True(t, identity.IsIOFailure(err))
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		store, _ := newTestStore(t, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		handler := identity.NewReloadStoreHandler(store, nil)
		assert.Error(t, handler.Execute(ctx, identity.ReloadStoreMessage{}))
	})
}
