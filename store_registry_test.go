package identity_test

import (
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOperations(t *testing.T) {
	store, dataDir := newTestStore(t, identity.ClaimsRegistry{
		"tier": {Type: "string", DefaultAllowed: true},
	})

	t.Run("put rejects existing keys", func(t *testing.T) {
		err := store.PutClaim("tier", identity.ClaimDefinition{Type: "string"})
		assert.ErrorIs(t, err, identity.ErrClaimExists)
	})

	t.Run("put persists new definitions", func(t *testing.T) {
		def := identity.ClaimDefinition{Type: "string", AdminOnly: true, Description: "department"}
		require.NoError(t, store.PutClaim("dept", def))

		reloaded, err := identity.Load(dataDir, identity.WithLogger(&capturingLogger{}))
		require.NoError(t, err)

		got, ok := reloaded.Registry().Definition("dept")
		require.True(t, ok)
		assert.True(t, got.AdminOnly)
		assert.Equal(t, "department", got.Description)
	})

	t.Run("update rejects unknown keys", func(t *testing.T) {
		err := store.UpdateClaim("missing", identity.ClaimDefinition{Type: "string"})
		assert.ErrorIs(t, err, identity.ErrClaimNotFound)
	})

	t.Run("update replaces a live definition", func(t *testing.T) {
		require.NoError(t, store.UpdateClaim("tier", identity.ClaimDefinition{Type: "string", AdminOnly: true}))

		got, ok := store.Registry().Definition("tier")
		require.True(t, ok)
		assert.True(t, got.AdminOnly)
		assert.False(t, got.DefaultAllowed)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.DeleteClaim("dept"))
		assert.NoError(t, store.DeleteClaim("dept"))

		_, ok := store.Registry().Definition("dept")
		assert.False(t, ok)
	})

	t.Run("replace swaps the whole document", func(t *testing.T) {
		next := identity.ClaimsRegistry{
			"fresh": {Type: "boolean", DefaultAllowed: true},
		}
		require.NoError(t, store.ReplaceRegistry(next))

		registry := store.Registry()
		_, ok := registry.Definition("tier")
		assert.False(t, ok)
		_, ok = registry.Definition("fresh")
		assert.True(t, ok)
	})
}

func TestRegistryEdit_DoesNotPurgeResidentClaimsUntilReload(t *testing.T) {
	store, _ := newTestStore(t, identity.ClaimsRegistry{
		"tier": {Type: "string", DefaultAllowed: true},
	})

	user := testUser("resident@example.com", "acme")
	user.Claims = map[string]any{"tier": "gold"}
	require.NoError(t, store.CreateUser(user))

	require.NoError(t, store.DeleteClaim("tier"))

	// the in-memory record keeps the claim until the next reload re-filters
	got, err := store.User(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "gold", got.Claims["tier"])
}

func TestRegistryReturnsClone(t *testing.T) {
	store, _ := newTestStore(t, identity.ClaimsRegistry{
		"tier": {Type: "string", DefaultAllowed: true},
	})

	registry := store.Registry()
	delete(registry, "tier")

	_, ok := store.Registry().Definition("tier")
	assert.True(t, ok)
}
