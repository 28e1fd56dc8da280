// Package credstore holds the opaque bearer credentials for the remote
// services the CLI talks to. Credentials are keyed by role so additional
// credentialed collaborators can be added without changing the contract.
package credstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Role identifies which remote service a credential authenticates with.
type Role string

const (
	RoleIngestion      Role = "ingestion"
	RoleClassification Role = "classification"
)

// ParseRole validates a role name supplied on the command line.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleIngestion, RoleClassification:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown credential role %q (expected %q or %q)", s, RoleIngestion, RoleClassification)
	}
}

// Store owns the credential slots. It is the single writer: every Set or
// Clear persists immediately, and the file is read once at startup. At
// most one credential is active per role.
type Store struct {
	mu    sync.Mutex
	path  string
	creds map[Role]string
}

// credFile is the on-disk layout.
type credFile struct {
	Credentials map[Role]string `yaml:"credentials"`
}

// DefaultPath returns the credential file location, honoring
// RELAY_CONFIG_DIR the same way the config loader does.
func DefaultPath() (string, error) {
	dir := os.Getenv("RELAY_CONFIG_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".relay")
	}
	return filepath.Join(dir, "credentials.yaml"), nil
}

// New returns an empty in-memory store persisting to path.
func New(path string) *Store {
	return &Store{path: path, creds: make(map[Role]string)}
}

// Load reads the credential file at path, or the default location when
// path is empty. A missing file yields an empty store, not an error.
func Load(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	store := New(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, err
	}

	var file credFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credential file: %w", err)
	}
	if file.Credentials != nil {
		store.creds = file.Credentials
	}

	return store, nil
}

// Set replaces the credential for a role and persists the change. The
// credential value is opaque: no shape or authenticity check happens
// locally, so a bad key only surfaces as a rejected request later.
func (s *Store) Set(role Role, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds[role] = value
	return s.save()
}

// Clear removes the credential for a role and persists the removal.
// Operations requiring that role are disabled until a new Set.
func (s *Store) Clear(role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.creds, role)
	return s.save()
}

// Get returns the active credential for a role, if any.
func (s *Store) Get(role Role) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.creds[role]
	return value, ok
}

// Roles returns the roles that currently hold a credential.
func (s *Store) Roles() []Role {
	s.mu.Lock()
	defer s.mu.Unlock()

	roles := make([]Role, 0, len(s.creds))
	for role := range s.creds {
		roles = append(roles, role)
	}
	return roles
}

func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(credFile{Credentials: s.creds})
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0600)
}
