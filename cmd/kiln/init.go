package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilnvcs/kiln/cmd/kiln/osfs"
	"github.com/kilnvcs/kiln/internal/config"
	"github.com/kilnvcs/kiln/internal/repo"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new kiln repository",
	Run:   runInit,
}

func runInit(cmd *cobra.Command, args []string) {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("get working directory: %v", err)
	}

	cfg := config.DefaultConfig()
	if err := config.Save(gitDirName, cfg); err != nil {
		log.Fatalf("save config: %v", err)
	}

	fs := osfs.New(wd)
	if _, err := repo.Init(fs, gitDirName, cfg.Core.DefaultBranch, nil); err != nil {
		log.Fatalf("init repository: %v", err)
	}

	log.Printf("kiln repository initialized on branch %q", cfg.Core.DefaultBranch)
}
