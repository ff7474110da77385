package identity

import "sort"

// CreateClient persists the client collection with the new record and then
// commits it to memory.
func (s *Store) CreateClient(client *Client) error {
	if err := client.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client.ClientID]; ok {
		return ErrClientExists
	}

	record := client.Clone()
	next := cloneClientMap(s.clients)
	next[record.ClientID] = record

	if err := s.persistClients(next); err != nil {
		return err
	}

	s.clients = next
	s.markMutated()
	s.logger.Debug("created client %s", record.ClientID)
	return nil
}

// UpdateClient replaces an existing client record.
func (s *Store) UpdateClient(client *Client) error {
	if err := client.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client.ClientID]; !ok {
		return ErrClientNotFound
	}

	record := client.Clone()
	next := cloneClientMap(s.clients)
	next[record.ClientID] = record

	if err := s.persistClients(next); err != nil {
		return err
	}

	s.clients = next
	s.markMutated()
	s.logger.Debug("updated client %s", record.ClientID)
	return nil
}

// DeleteClient removes a client. Unknown ids are a no-op.
func (s *Store) DeleteClient(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return nil
	}

	next := cloneClientMap(s.clients)
	delete(next, id)

	if err := s.persistClients(next); err != nil {
		return err
	}

	s.clients = next
	s.markMutated()
	s.logger.Debug("deleted client %s", id)
	return nil
}

// Client returns the client with the given id.
func (s *Store) Client(id string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	return client.Clone(), nil
}

// Clients returns every registered client, ordered by id.
func (s *Store) Clients() []*Client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Client, 0, len(s.clients))
	for _, client := range s.clients {
		out = append(out, client.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ClientID < out[j].ClientID
	})
	return out
}

// persistClients serializes the full client collection document. Callers
// hold the write lock and only commit the map once the write lands.
func (s *Store) persistClients(clients map[string]*Client) error {
	doc := clientsFile{Clients: make([]*Client, 0, len(clients))}
	for _, client := range clients {
		doc.Clients = append(doc.Clients, client)
	}
	sort.Slice(doc.Clients, func(i, j int) bool {
		return doc.Clients[i].ClientID < doc.Clients[j].ClientID
	})
	if err := atomicWriteJSON(clientsPath(s.dataDir), doc); err != nil {
		return wrapIO(err, "could not persist clients")
	}
	return nil
}

func cloneClientMap(in map[string]*Client) map[string]*Client {
	out := make(map[string]*Client, len(in))
	for id, client := range in {
		out[id] = client
	}
	return out
}
