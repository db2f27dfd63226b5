// Package settings stores provider credentials for autopo users.
//
// Credentials live in the XDG data directory:
//
//	$XDG_DATA_HOME/autopo/auth.json  (default: ~/.local/share/autopo/auth.json)
//
// The file is a JSON object keyed by provider ID. Each value carries a
// "type" discriminator:
//
//   - "api":    a single API key, optionally with a base URL or region
//   - "client": a client id / secret pair (papago)
//
// File permissions are 0600 (owner read/write only).
//
// Lookup order for credentials:
//  1. --api-key flag (highest priority)
//  2. environment variables (DEEPL_TRANSLATE_KEY, ...)
//  3. the credentials section of .autopo.yaml
//  4. this credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName = "autopo"
	fileName    = "auth.json"
)

// Entry types.
const (
	TypeAPI    = "api"
	TypeClient = "client"
)

// ---------------------------------------------------------------------------
// Auth entry
// ---------------------------------------------------------------------------

// Info is the credential stored per provider in auth.json.
type Info struct {
	// Type discriminator: "api" or "client"
	Type string `json:"type"`

	// Key is the API key (type == "api") or the client id (type == "client").
	Key string `json:"key,omitempty"`
	// Secret is the client secret (type == "client").
	Secret string `json:"secret,omitempty"`

	// BaseURL is a custom endpoint (openai-compatible servers, libre mirrors).
	BaseURL string `json:"baseUrl,omitempty"`
	// Region is the Azure resource region (microsoft).
	Region string `json:"region,omitempty"`
}

// IsAPI returns true if this is an API key entry.
func (i *Info) IsAPI() bool {
	return i.Type == TypeAPI
}

// IsClient returns true if this is a client id/secret entry.
func (i *Info) IsClient() bool {
	return i.Type == TypeClient
}

// Store holds all provider credentials, keyed by provider ID.
type Store map[string]*Info

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir respects $XDG_DATA_HOME and falls back to ~/.local/share.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// DataDir returns the autopo data directory path.
func DataDir() (string, error) {
	return dataDir()
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

// Get returns the auth entry for a provider, or nil if not found.
func Get(providerID string) *Info {
	return Load()[providerID]
}

// Set stores an auth entry for a provider (upsert).
func Set(providerID string, info *Info) error {
	store := Load()
	store[providerID] = info
	return Save(store)
}

// Remove deletes credentials for a provider.
func Remove(providerID string) error {
	store := Load()
	if _, ok := store[providerID]; !ok {
		return nil
	}
	delete(store, providerID)
	return Save(store)
}

// SetAPIKey stores an API key for a provider, keeping a previously stored
// base URL or region.
func SetAPIKey(providerID, key string) error {
	info := &Info{Type: TypeAPI, Key: key}
	if existing := Get(providerID); existing != nil && existing.IsAPI() {
		info.BaseURL = existing.BaseURL
		info.Region = existing.Region
	}
	return Set(providerID, info)
}

// SetClient stores a client id / secret pair.
func SetClient(providerID, clientID, secret string) error {
	return Set(providerID, &Info{Type: TypeClient, Key: clientID, Secret: secret})
}

// GetAPIKey retrieves the stored API key for a provider.
// Returns empty string if not found or not an API key entry.
func GetAPIKey(providerID string) string {
	info := Get(providerID)
	if info == nil || !info.IsAPI() {
		return ""
	}
	return info.Key
}

// ---------------------------------------------------------------------------
// Display helpers
// ---------------------------------------------------------------------------

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// RemoveAll removes all stored credentials.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}
