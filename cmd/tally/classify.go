package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/tally/internal/classification"
	"github.com/JaimeStill/tally/internal/config"
	"github.com/JaimeStill/tally/internal/gemini"
)

type classifyOptions struct {
	question   string
	respondent string
	model      string
	file       string
	verbose    bool
}

func newClassifyCmd() *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify [answer...]",
		Short: "Classify answers against a taxonomy built during the run",
		Long: `Classify answers one at a time, in order. Categories minted for earlier
answers are offered to the model for later ones. Each record is written to
stdout as a JSON line; failures are reported on stderr with their kind.`,
		Example: `  tally classify "Learn how AI spots tumors earlier"
  tally classify --file answers.txt
  cat answers.txt | tally classify --file -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := collectAnswers(cmd.InOrStdin(), opts.file, args)
			if err != nil {
				return err
			}
			if len(answers) == 0 {
				return fmt.Errorf("no answers given")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.model != "" {
				cfg.Model.Model = opts.model
			}

			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelInfo
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			model, err := gemini.New(cmd.Context(), &cfg.Model, logger)
			if err != nil {
				return err
			}

			question := opts.question
			if question == "" {
				question = cfg.Survey.Question
			}

			sys := classification.New(
				model,
				classification.NewMemoryStore(),
				classification.NewSurvey(question),
				classification.NopSink{},
				logger,
				cfg.API.Pagination,
				classification.Options{},
			)

			return runClassify(cmd, sys, answers, opts.respondent)
		},
	}

	cmd.Flags().StringVarP(&opts.question, "question", "q", "", "survey question (defaults to config)")
	cmd.Flags().StringVarP(&opts.respondent, "respondent", "r", "", "respondent ID recorded with each answer")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "override the configured model name")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read answers from a file, one per line (- for stdin)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline progress")

	return cmd
}

func runClassify(cmd *cobra.Command, sys classification.System, answers []string, respondent string) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	failed := 0

	for _, answer := range answers {
		rec, err := sys.Classify(cmd.Context(), classification.Request{
			Answer:       answer,
			RespondentID: respondent,
		})
		if err != nil {
			failed++
			kind, _ := classification.KindOf(err)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\t%q\t%v\n", kind, answer, err)
			continue
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d answers failed", failed, len(answers))
	}
	return nil
}

func collectAnswers(stdin io.Reader, file string, args []string) ([]string, error) {
	answers := append([]string(nil), args...)
	if file == "" {
		return answers, nil
	}

	var r io.Reader = stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open answers: %w", err)
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			answers = append(answers, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}

	return answers, nil
}
