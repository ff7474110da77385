package identity

import (
	"context"
	"sync"
	"time"
)

// Store keeps every record collection in memory and mirrors each mutation to
// disk before committing it. The in-memory maps are the read path; the data
// directory is the source of truth a fresh process rebuilds from.
type Store struct {
	mu      sync.RWMutex
	dataDir string

	users   map[string]*User
	clients map[string]*Client
	orgs    map[string]*Organization
	groups  map[string]*Group

	registry   ClaimsRegistry
	emailIndex map[string]string

	lastMutation time.Time
	lastReload   time.Time

	logger Logger
	now    func() time.Time
}

// StoreOption configures a Store during Load.
type StoreOption func(*Store)

// WithLogger sets the logger the store and its loaders report through.
func WithLogger(logger Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the store's time source. Tests use it to make
// staleness deterministic.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Load reads the full data directory and returns a ready store. A missing or
// unparsable claims registry aborts the load; every other collection degrades
// to empty with a warning.
func Load(dataDir string, opts ...StoreOption) (*Store, error) {
	store := &Store{
		dataDir: dataDir,
		logger:  defLogger{},
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(store)
	}

	registry, err := loadRegistryFile(dataDir)
	if err != nil {
		return nil, wrapRegistry(err)
	}

	store.registry = registry
	store.users = loadUserFiles(dataDir, registry, store.logger)
	store.clients = loadClientsFile(dataDir, store.logger)
	store.orgs = loadOrgsFile(dataDir, store.logger)
	store.groups = loadGroupsFile(dataDir, store.logger)
	store.emailIndex = buildEmailIndex(store.users, store.logger)
	store.lastReload = store.now()

	store.logger.Info(
		"store loaded: %d users, %d clients, %d orgs, %d groups, %d registered claims",
		len(store.users), len(store.clients), len(store.orgs), len(store.groups), len(store.registry),
	)

	return store, nil
}

// Reload re-reads the data directory and swaps the in-memory snapshot in one
// step. On any registry failure the previous snapshot stays live and the
// error is returned; a reload never leaves the store half updated.
func (s *Store) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	registry, err := loadRegistryFile(s.dataDir)
	if err != nil {
		return wrapRegistry(err)
	}

	users := loadUserFiles(s.dataDir, registry, s.logger)
	clients := loadClientsFile(s.dataDir, s.logger)
	orgs := loadOrgsFile(s.dataDir, s.logger)
	groups := loadGroupsFile(s.dataDir, s.logger)
	emailIndex := buildEmailIndex(users, s.logger)

	s.mu.Lock()
	s.registry = registry
	s.users = users
	s.clients = clients
	s.orgs = orgs
	s.groups = groups
	s.emailIndex = emailIndex
	s.lastReload = s.now()
	s.mu.Unlock()

	s.logger.Info(
		"store reloaded: %d users, %d clients, %d orgs, %d groups, %d registered claims",
		len(users), len(clients), len(orgs), len(groups), len(registry),
	)

	return nil
}

// Stale reports whether a mutation has landed since the last reload. A stale
// store is still coherent; the flag only signals that a reload would pick up
// writes newer than the last snapshot announcement.
func (s *Store) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMutation.After(s.lastReload)
}

// LastMutation returns the time of the most recent committed mutation.
func (s *Store) LastMutation() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMutation
}

// LastReload returns the time of the most recent successful load or reload.
func (s *Store) LastReload() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReload
}

// StoreStats is a point-in-time count of every collection.
type StoreStats struct {
	Users            int       `json:"users"`
	Clients          int       `json:"clients"`
	Organizations    int       `json:"organizations"`
	Groups           int       `json:"groups"`
	RegisteredClaims int       `json:"registered_claims"`
	LastMutation     time.Time `json:"last_mutation"`
	LastReload       time.Time `json:"last_reload"`
	Stale            bool      `json:"stale"`
}

// Stats returns collection counts and freshness markers.
func (s *Store) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreStats{
		Users:            len(s.users),
		Clients:          len(s.clients),
		Organizations:    len(s.orgs),
		Groups:           len(s.groups),
		RegisteredClaims: len(s.registry),
		LastMutation:     s.lastMutation,
		LastReload:       s.lastReload,
		Stale:            s.lastMutation.After(s.lastReload),
	}
}

// markMutated stamps the mutation clock. Callers hold the write lock.
func (s *Store) markMutated() {
	s.lastMutation = s.now()
}

// buildEmailIndex maps lowercased email to user id. Duplicate emails keep the
// first record seen and log the collision; the store's create path prevents
// new duplicates from forming.
func buildEmailIndex(users map[string]*User, logger Logger) map[string]string {
	index := make(map[string]string, len(users))
	for id, user := range users {
		key := normalizeEmail(user.Email)
		if prev, ok := index[key]; ok {
			logger.Warn("duplicate email %q: keeping user %s, ignoring %s in index", user.Email, prev, id)
			continue
		}
		index[key] = id
	}
	return index
}
