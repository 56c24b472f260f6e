// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads vendor credentials from a directory of plain-text
// files. Each file holds one secret: the filename is the key name and the
// trimmed contents are the value.
//
// Key files are named "<vendor>-api-key" (google-api-key, tavily-api-key,
// ...) plus access-password for proxy mode. A file may hold a
// comma-separated list of keys; the adapters pick one per run.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultDir is where the CLI looks for key files.
const DefaultDir = ".secrets/"

// AccessPassword is the key file holding the proxy relay password.
const AccessPassword = "access-password"

// Store maps key file names to their values.
type Store map[string]string

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty Store. Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Store)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// KeyFile returns the key file name for a vendor.
func KeyFile(vendor string) string {
	return strings.ToLower(strings.TrimSpace(vendor)) + "-api-key"
}

// APIKey returns the stored key for vendor, or "" when there is none.
func (s Store) APIKey(vendor string) string {
	return s[KeyFile(vendor)]
}

// Fill returns explicit when set and otherwise the value stored under
// name. Command-line flags and config therefore win over key files.
func (s Store) Fill(explicit, name string) string {
	if explicit != "" {
		return explicit
	}
	return s[name]
}

// Names returns the loaded key names, sorted. Values are never exposed.
func (s Store) Names() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
