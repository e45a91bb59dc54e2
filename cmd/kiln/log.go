package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/kilnvcs/kiln/internal/colors"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the current branch's commit history",
	Run:   runLog,
}

func runLog(cmd *cobra.Command, args []string) {
	r, closeRepo, err := openRepository()
	if err != nil {
		log.Fatalf("open repository: %v", err)
	}
	defer closeRepo()

	commits, err := r.Log()
	if err != nil {
		log.Fatalf("log: %v", err)
	}

	if len(commits) == 0 {
		fmt.Println(colors.Dim("no commits yet"))
		return
	}

	h, err := r.Refs.HeadCommit()
	if err != nil {
		log.Fatalf("resolve HEAD: %v", err)
	}

	for _, c := range commits {
		fmt.Printf("%s %s\n", colors.Yellow(h.String()[:12]), c.Message)
		fmt.Printf("Author: %s <%s>\n\n", c.Author.Name, c.Author.Email)
		if c.Parent != nil {
			h = *c.Parent
		}
	}
}
