package identity

import "sort"

// CreateGroup persists the group collection with the new record and then
// commits it to memory.
func (s *Store) CreateGroup(group *Group) error {
	if err := group.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[group.ID]; ok {
		return ErrGroupExists
	}

	record := group.Clone()
	next := cloneGroupMap(s.groups)
	next[record.ID] = record

	if err := s.persistGroups(next); err != nil {
		return err
	}

	s.groups = next
	s.markMutated()
	s.logger.Debug("created group %s", record.ID)
	return nil
}

// UpdateGroup replaces an existing group record.
func (s *Store) UpdateGroup(group *Group) error {
	if err := group.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[group.ID]; !ok {
		return ErrGroupNotFound
	}

	record := group.Clone()
	next := cloneGroupMap(s.groups)
	next[record.ID] = record

	if err := s.persistGroups(next); err != nil {
		return err
	}

	s.groups = next
	s.markMutated()
	s.logger.Debug("updated group %s", record.ID)
	return nil
}

// DeleteGroup removes a group record. Unknown ids are a no-op.
func (s *Store) DeleteGroup(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return nil
	}

	next := cloneGroupMap(s.groups)
	delete(next, id)

	if err := s.persistGroups(next); err != nil {
		return err
	}

	s.groups = next
	s.markMutated()
	s.logger.Debug("deleted group %s", id)
	return nil
}

// Group returns the group with the given id.
func (s *Store) Group(id string) (*Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[id]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return group.Clone(), nil
}

// Groups returns every group, ordered by id.
func (s *Store) Groups() []*Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Group, 0, len(s.groups))
	for _, group := range s.groups {
		out = append(out, group.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) persistGroups(groups map[string]*Group) error {
	doc := groupsFile{Groups: make([]*Group, 0, len(groups))}
	for _, group := range groups {
		doc.Groups = append(doc.Groups, group)
	}
	sort.Slice(doc.Groups, func(i, j int) bool {
		return doc.Groups[i].ID < doc.Groups[j].ID
	})
	if err := atomicWriteJSON(groupsPath(s.dataDir), doc); err != nil {
		return wrapIO(err, "could not persist groups")
	}
	return nil
}

func cloneGroupMap(in map[string]*Group) map[string]*Group {
	out := make(map[string]*Group, len(in))
	for id, group := range in {
		out[id] = group
	}
	return out
}
