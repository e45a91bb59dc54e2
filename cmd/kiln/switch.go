package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/kilnvcs/kiln/internal/colors"
	"github.com/kilnvcs/kiln/internal/diffengine"
)

var switchCmd = &cobra.Command{
	Use:   "switch <branch>",
	Short: "Switch the working tree and HEAD to another branch",
	Args:  cobra.ExactArgs(1),
	Run:   runSwitch,
}

func runSwitch(cmd *cobra.Command, args []string) {
	branch := args[0]

	r, closeRepo, err := openRepository()
	if err != nil {
		log.Fatalf("open repository: %v", err)
	}
	defer closeRepo()

	ops, err := r.Switch(branch)
	if err != nil {
		log.Fatalf("switch %s: %v", branch, err)
	}

	for _, op := range ops {
		if status := fileStatusFor(op.Kind); status != "" {
			fmt.Println(colors.ColorizeFileStatus(status, displayPathFor(op)))
		}
	}

	log.Println(colors.SuccessText("switched to branch " + branch))
}

// fileStatusFor maps a diff op's kind to the status vocabulary
// colors.ColorizeFileStatus understands. Unchanged has no status: it
// isn't reported.
func fileStatusFor(k diffengine.Kind) string {
	switch k {
	case diffengine.Add:
		return "added"
	case diffengine.Remove:
		return "deleted"
	case diffengine.Modify:
		return "modified"
	case diffengine.Rename:
		return "renamed"
	default:
		return ""
	}
}

func displayPathFor(op diffengine.Op) string {
	if op.Kind == diffengine.Rename {
		return op.Old.Name + " -> " + op.New.Name
	}
	if op.Kind == diffengine.Remove {
		return op.Old.Name
	}
	return op.New.Name
}
