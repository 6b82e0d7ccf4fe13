/*
Command tally classifies survey answers from the command line.

Usage:

	tally [command]

Available Commands:

	classify    Classify answers against a taxonomy built during the run
	prompt      Print the prompt sent to the model for an answer
	schema      Print the structured-output schema
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tally",
		Short: "Classify free-text survey answers into a model-maintained taxonomy",
		Long: `tally sends each survey answer to Gemini together with the active question
and every category minted so far. The model reuses an existing category or
mints a new one, and the result is validated against a strict contract.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newClassifyCmd())
	root.AddCommand(newPromptCmd())
	root.AddCommand(newSchemaCmd())

	return root
}
