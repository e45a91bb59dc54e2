package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kilnvcs/kiln/cmd/kiln/osfs"
	"github.com/kilnvcs/kiln/internal/config"
	"github.com/kilnvcs/kiln/internal/objcache"
	"github.com/kilnvcs/kiln/internal/repo"
)

const gitDirName = ".git"

// openRepository resolves the current working directory and opens the
// repository rooted there, attaching the bbolt object cache when the
// repository's config enables it.
func openRepository() (*repo.Repository, func(), error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("get working directory: %w", err)
	}

	fs := osfs.New(wd)
	cfg, err := config.Load(gitDirName)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	var cache *objcache.Cache
	closer := func() {}
	if cfg.Core.UseObjectCache {
		cachePath := filepath.Join(wd, gitDirName, "objcache.db")
		c, err := objcache.Open(cachePath)
		if err == nil {
			cache = c
			closer = func() { _ = c.Close() }
		}
	}

	return repo.Open(fs, gitDirName, cache), closer, nil
}
