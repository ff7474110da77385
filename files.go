package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const (
	registryFileName = "claims.json"
	clientsFileName  = "clients.json"
	orgsFileName     = "orgs.json"
	groupsFileName   = "groups.json"
	usersDirName     = "users"
)

// Collection documents are thin wrappers holding an array of records.
type clientsFile struct {
	Clients []*Client `json:"clients"`
}

type orgsFile struct {
	Orgs []*Organization `json:"orgs"`
}

type groupsFile struct {
	Groups []*Group `json:"groups"`
}

func registryPath(dataDir string) string {
	return filepath.Join(dataDir, registryFileName)
}

func clientsPath(dataDir string) string {
	return filepath.Join(dataDir, clientsFileName)
}

func orgsPath(dataDir string) string {
	return filepath.Join(dataDir, orgsFileName)
}

func groupsPath(dataDir string) string {
	return filepath.Join(dataDir, groupsFileName)
}

// userPath places each user file under a directory named after the user's
// primary organization. The directory name is the organization; it is not
// repeated inside any collection document.
func userPath(dataDir, org, userID string) string {
	return filepath.Join(dataDir, usersDirName, org, userID+".json")
}

func orgDir(dataDir, org string) string {
	return filepath.Join(dataDir, usersDirName, org)
}

// atomicWriteJSON serializes v to a sibling temporary file and renames it
// over path. Readers never observe a partially written document; a crash
// between write and rename leaves the previous version intact.
func atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// loadRegistryFile reads the claims registry. Unlike every other document,
// a missing or corrupt registry is fatal: claim visibility cannot be decided
// without it, and a broken registry points at a deployment error worth
// halting on.
func loadRegistryFile(dataDir string) (ClaimsRegistry, error) {
	registry := ClaimsRegistry{}
	if err := readJSON(registryPath(dataDir), &registry); err != nil {
		return nil, err
	}
	return registry, nil
}

// loadUserFiles walks users/<org>/*.json. Individual files that fail to read
// or parse are skipped with a log entry; record sets are expected to contain
// the occasional legacy or partially migrated entry and availability wins
// over strictness here. Claims are stripped through the registry filter as
// each record enters memory.
func loadUserFiles(dataDir string, registry ClaimsRegistry, logger Logger) map[string]*User {
	users := map[string]*User{}

	usersDir := filepath.Join(dataDir, usersDirName)
	entries, err := os.ReadDir(usersDir)
	if err != nil {
		logger.Warn("users directory unavailable, starting empty: %v", err)
		return users
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		org := entry.Name()
		orgDir := filepath.Join(usersDir, org)

		files, err := os.ReadDir(orgDir)
		if err != nil {
			logger.Warn("organization directory unreadable: %v", err)
			continue
		}

		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
				continue
			}
			path := filepath.Join(orgDir, file.Name())
			user := &User{}
			if err := readJSON(path, user); err != nil {
				logger.Error("skipping unreadable user file %s: %v", path, err)
				continue
			}
			if user.Org != org {
				logger.Warn("user %s organization mismatch: file under %q, record says %q", user.ID, org, user.Org)
			}
			user.Claims = registry.FilterClaims(user, logger)
			users[user.ID] = user
		}
	}

	return users
}

// loadClientsFile reads the client collection document. Missing or corrupt
// documents degrade to an empty set with a warning; they are never fatal.
func loadClientsFile(dataDir string, logger Logger) map[string]*Client {
	doc := clientsFile{}
	if err := readJSON(clientsPath(dataDir), &doc); err != nil {
		logger.Warn("client data unavailable, starting empty: %v", err)
		return map[string]*Client{}
	}
	clients := make(map[string]*Client, len(doc.Clients))
	for _, client := range doc.Clients {
		if client == nil {
			logger.Warn("skipping null entry in %s", clientsFileName)
			continue
		}
		clients[client.ClientID] = client
	}
	return clients
}

func loadOrgsFile(dataDir string, logger Logger) map[string]*Organization {
	doc := orgsFile{}
	if err := readJSON(orgsPath(dataDir), &doc); err != nil {
		logger.Warn("organization data unavailable, starting empty: %v", err)
		return map[string]*Organization{}
	}
	orgs := make(map[string]*Organization, len(doc.Orgs))
	for _, org := range doc.Orgs {
		if org == nil {
			logger.Warn("skipping null entry in %s", orgsFileName)
			continue
		}
		orgs[org.ID] = org
	}
	return orgs
}

func loadGroupsFile(dataDir string, logger Logger) map[string]*Group {
	doc := groupsFile{}
	if err := readJSON(groupsPath(dataDir), &doc); err != nil {
		logger.Warn("group data unavailable, starting empty: %v", err)
		return map[string]*Group{}
	}
	groups := make(map[string]*Group, len(doc.Groups))
	for _, group := range doc.Groups {
		if group == nil {
			logger.Warn("skipping null entry in %s", groupsFileName)
			continue
		}
		groups[group.ID] = group
	}
	return groups
}
