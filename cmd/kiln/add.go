package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilnvcs/kiln/internal/colors"
)

var addCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Stage a file's current content",
	Args:  cobra.ExactArgs(1),
	Run:   runAdd,
}

func runAdd(cmd *cobra.Command, args []string) {
	path := args[0]

	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}

	r, closeRepo, err := openRepository()
	if err != nil {
		log.Fatalf("open repository: %v", err)
	}
	defer closeRepo()

	if err := r.Add(path, content); err != nil {
		log.Fatalf("add %s: %v", path, err)
	}

	log.Println(colors.ColorizeFileStatus("staged", path))
}
