package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilnvcs/kiln/internal/object"
)

var (
	commitMessage string
	commitAuthor  string
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record the staged index as a new commit",
	Run:   runCommit,
}

func init() {
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message (required)")
	commitCmd.Flags().StringVar(&commitAuthor, "author", "", `author as "Name <email>" (required)`)
}

func runCommit(cmd *cobra.Command, args []string) {
	if commitMessage == "" {
		log.Fatal("commit: --message is required")
	}
	author, err := parseAuthor(commitAuthor)
	if err != nil {
		log.Fatalf("commit: %v", err)
	}

	r, closeRepo, err := openRepository()
	if err != nil {
		log.Fatalf("open repository: %v", err)
	}
	defer closeRepo()

	h, err := r.Commit(commitMessage, author)
	if err != nil {
		log.Fatalf("commit: %v", err)
	}

	fmt.Printf("%s\n", h)
}

// parseAuthor parses "Name <email>" into an Identity, stamping the
// current time as the commit's timestamp. Resolving the clock and the
// identity string itself is the CLI's job, not the core's: internal/repo
// takes an Identity as a plain parameter.
func parseAuthor(s string) (object.Identity, error) {
	if s == "" {
		return object.Identity{}, fmt.Errorf(`--author is required, in the form "Name <email>"`)
	}

	open := strings.IndexByte(s, '<')
	shut := strings.IndexByte(s, '>')
	if open < 0 || shut < 0 || shut < open {
		return object.Identity{}, fmt.Errorf(`malformed --author %q, want "Name <email>"`, s)
	}

	now := time.Now()
	_, offset := now.Zone()

	return object.Identity{
		Name:         strings.TrimSpace(s[:open]),
		Email:        s[open+1 : shut],
		Timestamp:    now.Unix(),
		UTCOffsetMin: offset / 60,
	}, nil
}
