package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/tally/internal/classification"
	"github.com/JaimeStill/tally/internal/prompts"
)

func newPromptCmd() *cobra.Command {
	var (
		question   string
		categories []string
	)

	cmd := &cobra.Command{
		Use:   "prompt <answer>",
		Short: "Print the prompt sent to the model for an answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := prompts.Build(args[0], question, categories)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "# system")
			fmt.Fprintln(out, strings.TrimSpace(p.System))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "# context")
			fmt.Fprintln(out, p.Context)
			return nil
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", classification.DefaultQuestion, "survey question")
	cmd.Flags().StringSliceVarP(&categories, "categories", "c", nil, "existing categories (comma-separated)")
	return cmd
}
