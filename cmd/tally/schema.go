package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/tally/internal/classification"
	"github.com/JaimeStill/tally/internal/gemini"
)

func newSchemaCmd() *cobra.Command {
	var sdk bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the structured-output schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var v any = classification.ResultSchema()
			if sdk {
				v = gemini.ToGenAI(classification.ResultSchema())
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}

	cmd.Flags().BoolVar(&sdk, "genai", false, "print the schema as converted for the genai SDK")
	return cmd
}
