package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const kilnVersion = "0.1.0"

var version bool

var rootCmd = &cobra.Command{
	Use:   "kiln",
	Short: "kiln is a content-addressed version-control core",
	Long:  `kiln tracks, commits, and switches between branches of a repository using a Git-compatible object and index format.`,
	Run: func(cmd *cobra.Command, args []string) {
		if version {
			fmt.Printf("kiln version %s\n", kilnVersion)
			os.Exit(0)
		}
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&version, "version", false, "print kiln's version")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(switchCmd)
}
