package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bramblebt/bramble"
	"github.com/bramblebt/bramble/internal/presentation/graph"
	"github.com/bramblebt/bramble/pkg/tree"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <tree.yaml>",
	Short: "Export the tree visualization",
	Long:  `Builds the tree and outputs a Mermaid diagram (graph TD) representing its structure.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rootID, _ := cmd.Flags().GetString("root")

		factory := bramble.New()
		var buildOpts []tree.BuildOption
		if rootID != "" {
			buildOpts = append(buildOpts, tree.WithRootTree(rootID))
		}
		t, err := factory.CreateTreeFromFile(args[0], buildOpts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building tree: %v\n", err)
			os.Exit(1)
		}

		// Generate and print Mermaid graph
		output := graph.GenerateMermaid(t.Layout(), nil)
		fmt.Print(output)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("root", "", "Tree id to resolve as the entry point")
}
