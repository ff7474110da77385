package identity_test

import (
	"context"
	"testing"
	"time"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloadController_TriggerReloads(t *testing.T) {
	store, _ := newTestStore(t, nil)

	require.NoError(t, store.CreateUser(testUser("trigger@example.com", "acme")))
	require.True(t, store.Stale())

	controller := identity.NewReloadController(store, identity.WithReloadLogger(&capturingLogger{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		controller.Start(ctx)
		close(done)
	}()

	controller.Trigger()

	assert.Eventually(t, func() bool {
		return !store.Stale()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("controller did not stop on context cancel")
	}
}

func TestReloadController_FailedReloadKeepsStore(t *testing.T) {
	store, dataDir := newTestStore(t, nil)

	user := testUser("keeper@example.com", "acme")
	require.NoError(t, store.CreateUser(user))

	breakRegistry(t, dataDir)

	logger := &capturingLogger{}
	controller := identity.NewReloadController(store, identity.WithReloadLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		controller.Start(ctx)
		close(done)
	}()

	controller.Trigger()

	assert.Eventually(t, func() bool {
		return logger.errorCount() > 0
	}, 2*time.Second, 10*time.Millisecond)

	got, err := store.User(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	cancel()
	<-done
}
