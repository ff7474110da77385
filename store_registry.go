package identity

// Registry returns a copy of the current claims registry.
func (s *Store) Registry() ClaimsRegistry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Clone()
}

// ReplaceRegistry swaps in a whole new registry document. Replacement is the
// registry's native mutation; the per-claim operations below are conveniences
// layered on top of it.
func (s *Store) ReplaceRegistry(registry ClaimsRegistry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitRegistry(registry.Clone())
}

// PutClaim registers a new claim definition. Registering a key that already
// exists is a conflict; use UpdateClaim to change a live definition.
func (s *Store) PutClaim(key string, def ClaimDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registry[key]; ok {
		return ErrClaimExists
	}

	next := s.registry.Clone()
	next[key] = def
	return s.commitRegistry(next)
}

// UpdateClaim replaces the definition of an already registered claim.
func (s *Store) UpdateClaim(key string, def ClaimDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registry[key]; !ok {
		return ErrClaimNotFound
	}

	next := s.registry.Clone()
	next[key] = def
	return s.commitRegistry(next)
}

// DeleteClaim removes a claim definition. Unknown keys are a no-op. User
// records already holding the claim keep it in memory until the next reload
// re-filters them.
func (s *Store) DeleteClaim(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registry[key]; !ok {
		return nil
	}

	next := s.registry.Clone()
	delete(next, key)
	return s.commitRegistry(next)
}

// commitRegistry persists the registry document and swaps it in. Callers
// hold the write lock.
func (s *Store) commitRegistry(next ClaimsRegistry) error {
	if err := atomicWriteJSON(registryPath(s.dataDir), next); err != nil {
		return wrapIO(err, "could not persist claims registry")
	}
	s.registry = next
	s.markMutated()
	s.logger.Debug("claims registry updated: %d definitions", len(next))
	return nil
}
