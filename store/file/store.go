// Package filestore persists the gateway's two record collections as
// whole JSON files: one mapping of org id to user identity, one mapping
// of org id to an append-only credential list. Every mutation is a full
// read-modify-write of the affected file with no cross-call locking;
// concurrent writers race at the filesystem level (last writer wins).
// Safe only under a single-writer-at-a-time operating assumption; the
// sql store is the remedy when that assumption does not hold.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-userops/core"
)

type Store struct {
	usersPath   string
	apiKeysPath string
}

func New(cfg core.StoreConfig) (*Store, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, fmt.Errorf("filestore: store directory is required")
	}
	userFile := strings.TrimSpace(cfg.UserFile)
	if userFile == "" {
		userFile = "users.json"
	}
	apiKeyFile := strings.TrimSpace(cfg.APIKeyFile)
	if apiKeyFile == "" {
		apiKeyFile = "api-keys.json"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create store directory: %w", err)
	}
	return &Store{
		usersPath:   filepath.Join(dir, userFile),
		apiKeysPath: filepath.Join(dir, apiKeyFile),
	}, nil
}

// UpsertUser replaces the whole user collection with the supplied
// identity and appends the credential to the org's list. The purge of
// all other orgs is deliberate: the file holds at most one tenant.
func (s *Store) UpsertUser(_ context.Context, identity core.UserIdentity, credential core.Credential) error {
	if s == nil {
		return fmt.Errorf("filestore: store is not configured")
	}
	if err := identity.Validate(); err != nil {
		return err
	}

	apiKeys, err := s.readAPIKeys()
	if err != nil {
		return err
	}

	users := map[string]core.UserIdentity{identity.OrgID: identity}
	apiKeys[identity.OrgID] = append(apiKeys[identity.OrgID], credential)

	if err := writeJSONFile(s.usersPath, users); err != nil {
		return err
	}
	return writeJSONFile(s.apiKeysPath, apiKeys)
}

func (s *Store) GetUser(_ context.Context, orgID string) (*core.UserIdentity, error) {
	if s == nil {
		return nil, fmt.Errorf("filestore: store is not configured")
	}
	users, err := s.readUsers()
	if err != nil {
		return nil, err
	}
	identity, ok := users[strings.TrimSpace(orgID)]
	if !ok {
		return nil, nil
	}
	return &identity, nil
}

func (s *Store) GetLatestAPIKey(_ context.Context, orgID string) (*core.Credential, error) {
	if s == nil {
		return nil, fmt.Errorf("filestore: store is not configured")
	}
	apiKeys, err := s.readAPIKeys()
	if err != nil {
		return nil, err
	}
	latest, ok := core.LatestCredential(apiKeys[strings.TrimSpace(orgID)])
	if !ok {
		return nil, nil
	}
	return &latest, nil
}

// SetAPIKeyActivated finds the org's credential with the exact public
// key, transitions it to activated with the supplied artifacts, and
// persists the whole collection. Every other record, in this org and in
// others, is written back untouched.
func (s *Store) SetAPIKeyActivated(_ context.Context, in core.ActivateAPIKeyInput) error {
	if s == nil {
		return fmt.Errorf("filestore: store is not configured")
	}
	orgID := strings.TrimSpace(in.OrgID)
	apiKeys, err := s.readAPIKeys()
	if err != nil {
		return err
	}
	list, ok := apiKeys[orgID]
	if !ok {
		return fmt.Errorf("%w: org %q has no credentials", core.ErrAPIKeyNotFound, orgID)
	}

	found := false
	for i := range list {
		if list[i].PublicKey != in.PublicKey {
			continue
		}
		if err := list[i].Activate(core.Activation{
			DeferredActionDigest: in.DeferredActionDigest,
			AccountAddress:       in.AccountAddress,
			InitCode:             in.InitCode,
		}); err != nil {
			return err
		}
		found = true
		break
	}
	if !found {
		return fmt.Errorf("%w: org %q key %s", core.ErrAPIKeyNotFound, orgID, in.PublicKey)
	}

	apiKeys[orgID] = list
	return writeJSONFile(s.apiKeysPath, apiKeys)
}

func (s *Store) UserStore() core.UserStore {
	return s
}

func (s *Store) APIKeyStore() core.APIKeyStore {
	return s
}

func (s *Store) readUsers() (map[string]core.UserIdentity, error) {
	users := map[string]core.UserIdentity{}
	if err := readJSONFile(s.usersPath, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) readAPIKeys() (map[string][]core.Credential, error) {
	apiKeys := map[string][]core.Credential{}
	if err := readJSONFile(s.apiKeysPath, &apiKeys); err != nil {
		return nil, err
	}
	return apiKeys, nil
}

func readJSONFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("filestore: read store file %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("filestore: decode store file %s: %w", path, err)
	}
	return nil
}

func writeJSONFile(path string, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encode store file %s: %w", path, err)
	}
	if err := os.WriteFile(path, encoded, 0o600); err != nil {
		return fmt.Errorf("filestore: write store file %s: %w", path, err)
	}
	return nil
}

var (
	_ core.UserStore     = (*Store)(nil)
	_ core.APIKeyStore   = (*Store)(nil)
	_ core.StoreProvider = (*Store)(nil)
)
