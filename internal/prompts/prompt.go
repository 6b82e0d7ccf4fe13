// Package prompts builds the instruction payload sent to the language model
// for a single survey answer: the fixed policy preamble plus a JSON context
// block carrying the answer, the active question, and the current taxonomy.
package prompts

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Prompt is a complete instruction payload.
type Prompt struct {
	System  string `json:"system"`
	Context string `json:"context"`
}

// Context is the per-request block serialized into Prompt.Context.
type Context struct {
	Answer             string   `json:"user_answer"`
	Question           string   `json:"question"`
	ExistingCategories []string `json:"existing_categories"`
}

// Build composes the prompt for an answer. Categories are de-duplicated and
// sorted; empty names are dropped. A nil or empty category list serializes
// as an empty array so the model always sees the field.
func Build(answer, question string, categories []string) (Prompt, error) {
	if strings.TrimSpace(answer) == "" {
		return Prompt{}, ErrEmptyAnswer
	}

	ctx := Context{
		Answer:             answer,
		Question:           question,
		ExistingCategories: Distinct(categories),
	}

	data, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return Prompt{}, fmt.Errorf("serialize prompt context: %w", err)
	}

	return Prompt{
		System:  Policy,
		Context: string(data),
	}, nil
}

// ParseContext decodes a context block produced by Build.
func ParseContext(text string) (Context, error) {
	var ctx Context
	if err := json.Unmarshal([]byte(text), &ctx); err != nil {
		return ctx, fmt.Errorf("parse prompt context: %w", err)
	}
	if ctx.ExistingCategories == nil {
		ctx.ExistingCategories = []string{}
	}
	return ctx, nil
}

// Distinct returns the sorted, de-duplicated non-empty names.
func Distinct(categories []string) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if c != "" {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
