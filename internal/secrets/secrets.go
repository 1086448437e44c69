// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads model API keys from a directory holding one key per
// file (the filename names the key, the trimmed contents are the value), with
// environment variables as the fallback.
//
// Key files: deepseek-api-key, openai-api-key, anthropic-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Load returns the non-empty key files of dir. A missing directory yields an
// empty map. Dotfiles and subdirectories are ignored; an unreadable file is
// logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	keys := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("skipping unreadable secret", "key", name, "error", err)
			continue
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			keys[name] = v
		}
	}
	return keys, nil
}

// Resolve returns the value for key from loaded, falling back to the
// environment variable envVar when the key has no file. It returns "" when
// neither is set.
func Resolve(loaded map[string]string, key, envVar string) string {
	if v := loaded[key]; v != "" {
		return v
	}
	if envVar == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(envVar))
}
