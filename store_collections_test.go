package identity_test

import (
	"path/filepath"
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(id string) *identity.Client {
	return &identity.Client{
		ClientID:     id,
		Name:         "Test App",
		ClientType:   identity.ClientTypePublic,
		RedirectURIs: []string{"https://app.example.com/callback"},
		GrantTypes:   []string{"authorization_code"},
		RequirePKCE:  true,
	}
}

func TestClientLifecycle(t *testing.T) {
	store, dataDir := newTestStore(t, nil)

	client := testClient("app-1")
	require.NoError(t, store.CreateClient(client))
	assert.FileExists(t, filepath.Join(dataDir, "clients.json"))

	t.Run("duplicate id conflicts", func(t *testing.T) {
		assert.ErrorIs(t, store.CreateClient(testClient("app-1")), identity.ErrClientExists)
	})

	t.Run("survives a reload", func(t *testing.T) {
		reloaded, err := identity.Load(dataDir, identity.WithLogger(&capturingLogger{}))
		require.NoError(t, err)

		got, err := reloaded.Client("app-1")
		require.NoError(t, err)
		assert.Equal(t, "Test App", got.Name)
		assert.True(t, got.RequirePKCE)
	})

	t.Run("update replaces the record", func(t *testing.T) {
		renamed := client.Clone()
		renamed.Name = "Renamed App"
		require.NoError(t, store.UpdateClient(renamed))

		got, err := store.Client("app-1")
		require.NoError(t, err)
		assert.Equal(t, "Renamed App", got.Name)
	})

	t.Run("update of unknown id fails", func(t *testing.T) {
		ghost := testClient("app-ghost")
		assert.ErrorIs(t, store.UpdateClient(ghost), identity.ErrClientNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.DeleteClient("app-1"))
		assert.NoError(t, store.DeleteClient("app-1"))

		_, err := store.Client("app-1")
		assert.ErrorIs(t, err, identity.ErrClientNotFound)
	})
}

func TestOrganizationLifecycle(t *testing.T) {
	store, dataDir := newTestStore(t, nil)

	org := &identity.Organization{
		ID:       "acme",
		Name:     "Acme Corp",
		Metadata: map[string]any{"plan": "enterprise"},
	}
	require.NoError(t, store.CreateOrganization(org))
	assert.ErrorIs(t, store.CreateOrganization(org), identity.ErrOrganizationExists)

	reloaded, err := identity.Load(dataDir, identity.WithLogger(&capturingLogger{}))
	require.NoError(t, err)

	got, err := reloaded.Organization("acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)
	assert.Equal(t, "enterprise", got.Metadata["plan"])

	require.NoError(t, store.DeleteOrganization("acme"))
	assert.NoError(t, store.DeleteOrganization("acme"))
	_, err = store.Organization("acme")
	assert.ErrorIs(t, err, identity.ErrOrganizationNotFound)
}

func TestGroupLifecycle(t *testing.T) {
	store, dataDir := newTestStore(t, nil)

	group := &identity.Group{
		ID:          "grp-oncall",
		Name:        "On-call",
		Description: "rotation members",
	}
	require.NoError(t, store.CreateGroup(group))
	assert.ErrorIs(t, store.CreateGroup(group), identity.ErrGroupExists)

	renamed := group.Clone()
	renamed.Name = "On-call rotation"
	require.NoError(t, store.UpdateGroup(renamed))

	reloaded, err := identity.Load(dataDir, identity.WithLogger(&capturingLogger{}))
	require.NoError(t, err)

	got, err := reloaded.Group("grp-oncall")
	require.NoError(t, err)
	assert.Equal(t, "On-call rotation", got.Name)

	require.NoError(t, store.DeleteGroup("grp-oncall"))
	assert.NoError(t, store.DeleteGroup("grp-oncall"))
}

func TestCollectionsAreSorted(t *testing.T) {
	store, _ := newTestStore(t, nil)

	require.NoError(t, store.CreateClient(testClient("zeta")))
	require.NoError(t, store.CreateClient(testClient("alpha")))

	clients := store.Clients()
	require.Len(t, clients, 2)
	assert.Equal(t, "alpha", clients[0].ClientID)
	assert.Equal(t, "zeta", clients[1].ClientID)
}
