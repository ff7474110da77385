package identity

import "sort"

// CreateOrganization persists the organization collection with the new
// record and then commits it to memory.
func (s *Store) CreateOrganization(org *Organization) error {
	if err := org.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[org.ID]; ok {
		return ErrOrganizationExists
	}

	record := org.Clone()
	next := cloneOrgMap(s.orgs)
	next[record.ID] = record

	if err := s.persistOrgs(next); err != nil {
		return err
	}

	s.orgs = next
	s.markMutated()
	s.logger.Debug("created organization %s", record.ID)
	return nil
}

// UpdateOrganization replaces an existing organization record.
func (s *Store) UpdateOrganization(org *Organization) error {
	if err := org.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[org.ID]; !ok {
		return ErrOrganizationNotFound
	}

	record := org.Clone()
	next := cloneOrgMap(s.orgs)
	next[record.ID] = record

	if err := s.persistOrgs(next); err != nil {
		return err
	}

	s.orgs = next
	s.markMutated()
	s.logger.Debug("updated organization %s", record.ID)
	return nil
}

// DeleteOrganization removes an organization record. Unknown ids are a
// no-op. User records under the organization are left alone; membership is
// the user record's concern.
func (s *Store) DeleteOrganization(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[id]; !ok {
		return nil
	}

	next := cloneOrgMap(s.orgs)
	delete(next, id)

	if err := s.persistOrgs(next); err != nil {
		return err
	}

	s.orgs = next
	s.markMutated()
	s.logger.Debug("deleted organization %s", id)
	return nil
}

// Organization returns the organization with the given id.
func (s *Store) Organization(id string) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.orgs[id]
	if !ok {
		return nil, ErrOrganizationNotFound
	}
	return org.Clone(), nil
}

// Organizations returns every organization, ordered by id.
func (s *Store) Organizations() []*Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Organization, 0, len(s.orgs))
	for _, org := range s.orgs {
		out = append(out, org.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) persistOrgs(orgs map[string]*Organization) error {
	doc := orgsFile{Orgs: make([]*Organization, 0, len(orgs))}
	for _, org := range orgs {
		doc.Orgs = append(doc.Orgs, org)
	}
	sort.Slice(doc.Orgs, func(i, j int) bool {
		return doc.Orgs[i].ID < doc.Orgs[j].ID
	})
	if err := atomicWriteJSON(orgsPath(s.dataDir), doc); err != nil {
		return wrapIO(err, "could not persist organizations")
	}
	return nil
}

func cloneOrgMap(in map[string]*Organization) map[string]*Organization {
	out := make(map[string]*Organization, len(in))
	for id, org := range in {
		out[id] = org
	}
	return out
}
