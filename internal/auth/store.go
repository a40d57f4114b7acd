// package auth owns the OAuth credential lifecycle: acquiring tokens via
// the authorization-code flow, refreshing them, persisting them to disk,
// and minting the separate client-credentials token used for catalog search.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Credentials is the persisted OAuth token record.
//
// TokenExpires is nil when the provider never reported a lifetime; such a
// token is treated as valid until the provider rejects it.
type Credentials struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenExpires *time.Time `json:"token_expires"`
}

// Authorized reports whether the record holds an access token.
func (c Credentials) Authorized() bool {
	return c.AccessToken != ""
}

// Expired reports whether the record's expiry has passed at the given instant.
//
// A record without an expiry is never considered expired here; the API
// client handles provider-side rejection separately.
func (c Credentials) Expired(now time.Time) bool {
	return c.TokenExpires != nil && !now.Before(*c.TokenExpires)
}

// Store persists a credential record between plugin invocations.
type Store interface {
	// Load reads the persisted record. Callers treat any error as
	// "never authorized" rather than a fatal condition.
	Load() (Credentials, error)

	// Save overwrites the persisted record with the given one.
	Save(Credentials) error
}

// FileStore persists credentials as a JSON file beside the plugin.
//
// Single-process, single-writer by design: the plugin process is
// short-lived per launcher invocation, so no file locking is performed.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and parses the token file.
//
// A missing or corrupt file yields an error; the broker maps that to an
// empty record so a damaged file triggers re-authorization, never a crash.
func (s *FileStore) Load() (Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read token file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse token file: %w", err)
	}

	return creds, nil
}

// Save writes the full record, replacing prior contents.
func (s *FileStore) Save(creds Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}
