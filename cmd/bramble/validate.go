package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bramblebt/bramble"
	"github.com/bramblebt/bramble/pkg/schema"
	"github.com/bramblebt/bramble/pkg/tree"
)

var validateCmd = &cobra.Command{
	Use:   "validate <tree.yaml>",
	Short: "Check a tree definition for consistency",
	Long:  `Parses the definition and dry-builds it against the built-in registry, reporting structural and wiring defects.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Tree is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("structure-only", false, "Skip the dry build (unknown node types are not reported)")
	validateCmd.Flags().String("root", "", "Tree id to resolve as the entry point")
}

func runValidate(cmd *cobra.Command, path string) error {
	structureOnly, _ := cmd.Flags().GetBool("structure-only")
	rootID, _ := cmd.Flags().GetString("root")

	doc, err := schema.ParseFile(path)
	if err != nil {
		return err
	}
	if structureOnly {
		return nil
	}

	// A dry build catches what structural validation cannot: unknown types,
	// wrong arity, unbound required ports, cyclic subtree references.
	factory := bramble.New()
	var buildOpts []tree.BuildOption
	if rootID != "" {
		buildOpts = append(buildOpts, tree.WithRootTree(rootID))
	}
	_, err = factory.CreateTree(doc, buildOpts...)
	return err
}
