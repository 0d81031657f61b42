package main

import (
	"fmt"

	"github.com/aretw0/udlcoach/internal/dialogue"
	"github.com/aretw0/udlcoach/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the dialogue graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the conversation states and transitions.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(dialogue.Edges(), nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
