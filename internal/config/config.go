// Package config loads and saves repository-level settings for kiln.
//
// Unlike the teacher's config package, this one carries no authoring
// identity (name/email, editor, pager): spec.md names "authoring
// identity, clock retrieval, timezone lookup" as an explicit external
// collaborator, and internal/repo.Commit takes an author as a plain
// parameter rather than resolving one itself. What's left is the
// ambient repository layout/behavior knobs that cmd/kiln reads when it
// initializes or opens a repository; internal/repo does not read them.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds repository-level settings.
type Config struct {
	Core CoreConfig `json:"core"`
}

// CoreConfig holds core repository settings.
type CoreConfig struct {
	// DefaultBranch is the branch HEAD points to in a freshly initialized repo.
	DefaultBranch string `json:"default_branch"`

	// ObjectsDir records the directory name under the repo root holding
	// loose objects. Nothing reads it: internal/repo always stores loose
	// objects under <gitDir>/objects.
	ObjectsDir string `json:"objects_dir"`

	// UseObjectCache enables the bbolt-backed parent-hash/dedup accelerator (internal/objcache).
	UseObjectCache bool `json:"use_object_cache"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			DefaultBranch:  "master",
			ObjectsDir:     "objects",
			UseObjectCache: true,
		},
	}
}

func repoConfigPath(gitDir string) string {
	return filepath.Join(gitDir, "config")
}

// Load reads the repository config file under gitDir, falling back to
// defaults for any field the file doesn't set and for a missing file.
func Load(gitDir string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(repoConfigPath(gitDir))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read repo config: %w", err)
	}

	onDisk := *DefaultConfig()
	if err := json.Unmarshal(data, &onDisk); err != nil {
		return nil, fmt.Errorf("parse repo config: %w", err)
	}
	merge(cfg, &onDisk)

	return cfg, nil
}

// Save writes cfg to the repository config file under gitDir.
func Save(gitDir string, cfg *Config) error {
	if err := os.MkdirAll(gitDir, 0755); err != nil {
		return fmt.Errorf("create repo dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal repo config: %w", err)
	}

	return os.WriteFile(repoConfigPath(gitDir), data, 0644)
}

// merge overlays non-empty string fields of src onto dst and always
// copies UseObjectCache, so an explicit false in the file wins.
func merge(dst, src *Config) {
	if src.Core.DefaultBranch != "" {
		dst.Core.DefaultBranch = src.Core.DefaultBranch
	}
	if src.Core.ObjectsDir != "" {
		dst.Core.ObjectsDir = src.Core.ObjectsDir
	}
	dst.Core.UseObjectCache = src.Core.UseObjectCache
}
