package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

const tokenSchemaVersion = 1

// ErrNoToken means no usable stored token exists and a fresh authorization
// is required.
var ErrNoToken = errors.New("no stored token")

// storedToken is the on-disk credential record. An explicit schema version
// replaces the opaque serialized-object dumps that break across upgrades.
type storedToken struct {
	Version int          `json:"version"`
	Token   oauth2.Token `json:"token"`
}

// TokenStore persists one platform's OAuth token as a JSON file
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load reads the stored token. A corrupted or wrong-version file is removed
// and reported as ErrNoToken so the caller re-authorizes instead of failing
// on unreviewable state.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var rec storedToken
	if err := json.Unmarshal(data, &rec); err != nil || rec.Version != tokenSchemaVersion {
		log.Printf("[upload] token file %s unreadable or wrong version — removing", s.path)
		_ = os.Remove(s.path)
		return nil, ErrNoToken
	}
	return &rec.Token, nil
}

// Save writes the token with restrictive permissions
func (s *TokenStore) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(storedToken{Version: tokenSchemaVersion, Token: *tok}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("save token file: %w", err)
	}
	return nil
}
