package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/udlcoach"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of udlcoach",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "udlcoach version %s\n", strings.TrimSpace(udlcoach.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
