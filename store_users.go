package identity

import (
	"context"
	"os"
	"sort"
	"strings"
)

// CreateUser validates, filters claims through the registry, persists the
// user file, and only then commits the record to memory. A persistence
// failure leaves the store exactly as it was.
func (s *Store) CreateUser(user *User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return ErrUserExists
	}
	emailKey := normalizeEmail(user.Email)
	if _, ok := s.emailIndex[emailKey]; ok {
		return ErrEmailTaken
	}

	record := user.Clone()
	record.Claims = s.registry.FilterClaims(record, s.logger)

	path := userPath(s.dataDir, record.Org, record.ID)
	if err := os.MkdirAll(orgDir(s.dataDir, record.Org), 0o700); err != nil {
		return wrapIO(err, "could not create organization directory")
	}
	if err := atomicWriteJSON(path, record); err != nil {
		return wrapIO(err, "could not persist user")
	}

	s.users[record.ID] = record
	s.emailIndex[emailKey] = record.ID
	s.markMutated()

	s.logger.Debug("created user %s (%s)", record.ID, record.Email)
	return nil
}

// UpdateUser replaces an existing user record. When the organization changes
// the user file moves to the new organization directory; the stale file is
// removed best effort and a leftover is only logged, since the next full load
// indexes records by id and the relocated file wins.
func (s *Store) UpdateUser(user *User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	emailKey := normalizeEmail(user.Email)
	if owner, ok := s.emailIndex[emailKey]; ok && owner != user.ID {
		return ErrEmailTaken
	}

	record := user.Clone()
	record.CreatedAt = prev.CreatedAt
	record.UpdatedAt = s.now().UTC()
	record.Claims = s.registry.FilterClaims(record, s.logger)

	path := userPath(s.dataDir, record.Org, record.ID)
	if err := os.MkdirAll(orgDir(s.dataDir, record.Org), 0o700); err != nil {
		return wrapIO(err, "could not create organization directory")
	}
	if err := atomicWriteJSON(path, record); err != nil {
		return wrapIO(err, "could not persist user")
	}

	if prev.Org != record.Org {
		oldPath := userPath(s.dataDir, prev.Org, prev.ID)
		if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("could not remove relocated user file %s: %v", oldPath, err)
		}
	}

	delete(s.emailIndex, normalizeEmail(prev.Email))
	s.users[record.ID] = record
	s.emailIndex[emailKey] = record.ID
	s.markMutated()

	s.logger.Debug("updated user %s", record.ID)
	return nil
}

// DeleteUser removes a user record and its file. Deleting an unknown id is a
// no-op; deletes are idempotent across the whole store.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil
	}

	path := userPath(s.dataDir, user.Org, user.ID)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return wrapIO(err, "could not remove user file")
	}

	delete(s.users, id)
	delete(s.emailIndex, normalizeEmail(user.Email))
	s.markMutated()

	s.logger.Debug("deleted user %s", id)
	return nil
}

// User returns the user with the given id.
func (s *Store) User(id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user.Clone(), nil
}

// UserByEmail resolves a user through the email index. Lookup is
// case-insensitive.
func (s *Store) UserByEmail(email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.users[id].Clone(), nil
}

// Users returns every user, ordered by id.
func (s *Store) Users() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user.Clone())
	}
	sortUsers(out)
	return out
}

// UsersByOrganization returns every user whose primary organization matches.
func (s *Store) UsersByOrganization(org string) []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*User
	for _, user := range s.users {
		if user.Org == org {
			out = append(out, user.Clone())
		}
	}
	sortUsers(out)
	return out
}

// SearchUsers matches the query against email, first name, and last name,
// case-insensitively.
func (s *Store) SearchUsers(query string) []*User {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*User
	for _, user := range s.users {
		haystack := strings.ToLower(user.Email + " " + user.FirstName + " " + user.LastName)
		if strings.Contains(haystack, needle) {
			out = append(out, user.Clone())
		}
	}
	sortUsers(out)
	return out
}

// UsersByClaim returns users whose custom claim under key equals value, or
// whose array-valued claim contains value.
func (s *Store) UsersByClaim(key, value string) []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*User
	for _, user := range s.users {
		if claimMatches(user.Claims[key], value) {
			out = append(out, user.Clone())
		}
	}
	sortUsers(out)
	return out
}

// VerifyIdentity authenticates an email and cleartext password pair. Every
// failure path collapses to ErrBadCredentials so callers cannot probe which
// emails exist or which accounts are disabled.
func (s *Store) VerifyIdentity(ctx context.Context, email, password string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.UserByEmail(email)
	if err != nil {
		return nil, ErrBadCredentials
	}
	if !user.IsActive() {
		s.logger.Warn("login attempt for %s user %s", user.Status, user.ID)
		return nil, ErrBadCredentials
	}
	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrBadCredentials
	}
	return user, nil
}

func claimMatches(raw any, value string) bool {
	switch v := raw.(type) {
	case string:
		return v == value
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == value {
				return true
			}
		}
	case []string:
		for _, item := range v {
			if item == value {
				return true
			}
		}
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sortUsers(users []*User) {
	sort.Slice(users, func(i, j int) bool {
		return users[i].ID < users[j].ID
	})
}
