package classification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/tally/internal/gemini"
	"github.com/JaimeStill/tally/internal/prompts"
	"github.com/JaimeStill/tally/pkg/pagination"
	"github.com/JaimeStill/tally/pkg/schema"
)

const answerPreview = 40

// System defines the public contract for classification domain operations.
type System interface {
	Handler(maxBodyBytes int64) *Handler

	Classify(ctx context.Context, req Request) (*Record, error)
	ClassifyBatch(ctx context.Context, req BatchRequest) (*BatchResult, error)

	List(page pagination.PageRequest) pagination.PageResult[Record]
	Categories() []string
	Summary() ([]CategorySummary, error)
	State() State
	Schema() *schema.Schema

	SetQuestion(ctx context.Context, question string) error
	Reset(ctx context.Context)
}

// Options tunes the classification pipeline.
type Options struct {
	// SerializeMinting holds a lock from the category snapshot until the
	// record is appended, so concurrent answers cannot mint near-duplicate
	// categories. Off by default.
	SerializeMinting bool
	// BatchConcurrency bounds concurrent model calls within one batch.
	BatchConcurrency int
	// MaxBatchSize bounds the number of answers accepted in one batch.
	MaxBatchSize int
}

type system struct {
	model      gemini.Model
	store      Store
	survey     *Survey
	sink       Sink
	schema     *schema.Schema
	logger     *slog.Logger
	pagination pagination.Config
	opts       Options
	mint       sync.Mutex
	publishMu  sync.Mutex
}

// New creates a classification System.
func New(
	model gemini.Model,
	store Store,
	survey *Survey,
	sink Sink,
	logger *slog.Logger,
	pagination pagination.Config,
	opts Options,
) System {
	if sink == nil {
		sink = NopSink{}
	}
	if opts.BatchConcurrency < 1 {
		opts.BatchConcurrency = 1
	}
	return &system{
		model:      model,
		store:      store,
		survey:     survey,
		sink:       sink,
		schema:     ResultSchema(),
		logger:     logger.With("system", "classification"),
		pagination: pagination,
		opts:       opts,
	}
}

func (s *system) Handler(maxBodyBytes int64) *Handler {
	return NewHandler(s, s.logger, s.pagination, maxBodyBytes)
}

// Classify runs one answer through the pipeline: snapshot the taxonomy,
// build the prompt, call the model, validate, then append and publish.
// Nothing is appended unless every step succeeds.
func (s *system) Classify(ctx context.Context, req Request) (*Record, error) {
	respondent := strings.TrimSpace(req.RespondentID)
	if respondent == "" {
		respondent = AnonymousRespondent
	}

	if strings.TrimSpace(req.Answer) == "" {
		return nil, newError(KindInvalidInput, prompts.ErrEmptyAnswer)
	}

	s.logger.InfoContext(ctx, "classification requested",
		"respondent", respondent,
		"answer", preview(req.Answer, answerPreview),
	)

	if s.opts.SerializeMinting {
		s.mint.Lock()
		defer s.mint.Unlock()
	}

	categories := s.store.Categories()

	prompt, err := prompts.Build(req.Answer, s.survey.Question(), categories)
	if err != nil {
		return nil, newError(KindInvalidInput, err)
	}

	text, err := s.model.Generate(ctx, gemini.Request{
		System:  prompt.System,
		Context: prompt.Context,
		Schema:  s.schema,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "model call failed", "error", err)
		return nil, modelError(err)
	}

	result, err := Validate(text)
	if err != nil {
		s.logger.WarnContext(ctx, "model output rejected", "error", err)
		return nil, err
	}

	rec := Record{
		ID:             uuid.New(),
		RespondentID:   respondent,
		Answer:         req.Answer,
		Classification: result,
		Timestamp:      time.Now().UTC(),
	}

	if err := s.store.Append(rec); err != nil {
		return nil, fmt.Errorf("append record: %w", err)
	}

	s.logger.InfoContext(ctx, "answer classified",
		"id", rec.ID,
		"category", result.PrimaryDomain,
		"confidence", result.ConfidenceScore,
		"minted", !slices.Contains(categories, result.PrimaryDomain),
	)

	s.publish(ctx, &rec)
	return &rec, nil
}

func (s *system) ClassifyBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if len(req.Answers) == 0 {
		return nil, newError(KindInvalidInput, errors.New("batch has no answers"))
	}
	if s.opts.MaxBatchSize > 0 && len(req.Answers) > s.opts.MaxBatchSize {
		return nil, newError(
			KindInvalidInput,
			fmt.Errorf("batch of %d answers exceeds limit of %d", len(req.Answers), s.opts.MaxBatchSize),
		)
	}

	items := make([]BatchItem, len(req.Answers))

	var g errgroup.Group
	g.SetLimit(s.opts.BatchConcurrency)

	for i, answer := range req.Answers {
		g.Go(func() error {
			item := BatchItem{Answer: answer}

			rec, err := s.Classify(ctx, Request{Answer: answer, RespondentID: req.RespondentID})
			if err != nil {
				item.Error = err.Error()
				item.Kind, _ = KindOf(err)
			} else {
				item.Record = rec
			}

			items[i] = item
			return nil
		})
	}

	_ = g.Wait()

	result := &BatchResult{Items: items}
	for _, item := range items {
		if item.Record != nil {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	return result, nil
}

// List returns the history newest first, filtered by an optional
// case-insensitive search over answers, categories, and justifications.
func (s *system) List(page pagination.PageRequest) pagination.PageResult[Record] {
	page.Normalize(s.pagination)

	records := s.store.Records()
	slices.Reverse(records)

	if page.Search != nil && strings.TrimSpace(*page.Search) != "" {
		term := strings.ToLower(strings.TrimSpace(*page.Search))
		records = slices.DeleteFunc(records, func(rec Record) bool {
			return !matches(rec, term)
		})
	}

	return pagination.Slice(records, page)
}

func (s *system) Categories() []string {
	return s.store.Categories()
}

func (s *system) Summary() ([]CategorySummary, error) {
	return Summarize(s.store.Records())
}

func (s *system) State() State {
	return State{
		Question:  s.survey.Question(),
		Responses: s.store.Records(),
	}
}

func (s *system) Schema() *schema.Schema {
	return s.schema
}

func (s *system) SetQuestion(ctx context.Context, question string) error {
	if err := s.survey.SetQuestion(question); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "survey question changed", "question", s.survey.Question())
	s.publish(ctx, nil)
	return nil
}

func (s *system) Reset(ctx context.Context) {
	s.store.Reset()
	s.logger.InfoContext(ctx, "history reset")
	s.publish(ctx, nil)
}

// publish reads the state and hands it to the sink under one lock, so
// updates reach the sink in the order their snapshots were taken and the
// last update always reflects the latest mutation.
func (s *system) publish(ctx context.Context, rec *Record) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.sink.Publish(ctx, Update{
		Event:  EventStateUpdate,
		Record: rec,
		State:  s.State(),
	})
}

func modelError(err error) error {
	if errors.Is(err, gemini.ErrEmptyOutput) {
		return newError(KindEmptyModelOutput, err)
	}
	return newError(KindCommunication, err)
}

func matches(rec Record, term string) bool {
	return strings.Contains(strings.ToLower(rec.Answer), term) ||
		strings.Contains(strings.ToLower(rec.Classification.PrimaryDomain), term) ||
		strings.Contains(strings.ToLower(rec.Classification.Justification), term)
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
