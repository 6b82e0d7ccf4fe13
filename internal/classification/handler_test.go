package classification_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/JaimeStill/tally/internal/classification"
	"github.com/JaimeStill/tally/pkg/handlers"
	"github.com/JaimeStill/tally/pkg/pagination"
	"github.com/JaimeStill/tally/pkg/routes"
	"github.com/JaimeStill/tally/pkg/schema"
)

type mockSystem struct {
	classifyFn      func(ctx context.Context, req classification.Request) (*classification.Record, error)
	classifyBatchFn func(ctx context.Context, req classification.BatchRequest) (*classification.BatchResult, error)
	listFn          func(page pagination.PageRequest) pagination.PageResult[classification.Record]
	categoriesFn    func() []string
	summaryFn       func() ([]classification.CategorySummary, error)
	stateFn         func() classification.State
	setQuestionFn   func(ctx context.Context, question string) error
	resetFn         func(ctx context.Context)
}

func (m *mockSystem) Handler(maxBodyBytes int64) *classification.Handler {
	return classification.NewHandler(m, discardLogger(), pageConfig(), maxBodyBytes)
}

func (m *mockSystem) Classify(ctx context.Context, req classification.Request) (*classification.Record, error) {
	return m.classifyFn(ctx, req)
}

func (m *mockSystem) ClassifyBatch(ctx context.Context, req classification.BatchRequest) (*classification.BatchResult, error) {
	return m.classifyBatchFn(ctx, req)
}

func (m *mockSystem) List(page pagination.PageRequest) pagination.PageResult[classification.Record] {
	return m.listFn(page)
}

func (m *mockSystem) Categories() []string {
	return m.categoriesFn()
}

func (m *mockSystem) Summary() ([]classification.CategorySummary, error) {
	return m.summaryFn()
}

func (m *mockSystem) State() classification.State {
	return m.stateFn()
}

func (m *mockSystem) Schema() *schema.Schema {
	return classification.ResultSchema()
}

func (m *mockSystem) SetQuestion(ctx context.Context, question string) error {
	return m.setQuestionFn(ctx, question)
}

func (m *mockSystem) Reset(ctx context.Context) {
	m.resetFn(ctx)
}

func setupMux(h *classification.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, h.Routes()...)
	return mux
}

func sampleRecord() classification.Record {
	return classification.Record{
		ID:           uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		RespondentID: "u-1",
		Answer:       "Learn how AI helps detect tumors early",
		Classification: classification.Result{
			PrimaryDomain:   "Oncology",
			ConfidenceScore: 0.9,
			Justification:   "Tumor detection is an oncology concern.",
		},
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHandlerClassify(t *testing.T) {
	t.Run("returns 201 with record", func(t *testing.T) {
		var got classification.Request
		sys := &mockSystem{
			classifyFn: func(_ context.Context, req classification.Request) (*classification.Record, error) {
				got = req
				r := sampleRecord()
				return &r, nil
			},
		}
		mux := setupMux(sys.Handler(1 << 20))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/classify", strings.NewReader(`{"answer":"tumors","respondentId":"u-1"}`))
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}

		var body classification.Record
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if diff := cmp.Diff(sampleRecord(), body); diff != "" {
			t.Errorf("record (-want +got):\n%s", diff)
		}
		if got.Answer != "tumors" || got.RespondentID != "u-1" {
			t.Errorf("request = %+v", got)
		}
	})

	t.Run("reads respondent header", func(t *testing.T) {
		var got classification.Request
		sys := &mockSystem{
			classifyFn: func(_ context.Context, req classification.Request) (*classification.Record, error) {
				got = req
				r := sampleRecord()
				return &r, nil
			},
		}
		mux := setupMux(sys.Handler(1 << 20))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/classify", strings.NewReader(`{"answer":"tumors"}`))
		req.Header.Set(classification.RespondentHeader, "header-user")
		mux.ServeHTTP(rec, req)

		if got.RespondentID != "header-user" {
			t.Errorf("respondent = %q, want header-user", got.RespondentID)
		}
	})

	errorTests := []struct {
		name   string
		err    error
		status int
		kind   classification.Kind
	}{
		{"invalid input", classification.ErrInvalidInput, http.StatusBadRequest, classification.KindInvalidInput},
		{"communication", &classification.Error{Kind: classification.KindCommunication, Err: errors.New("refused")}, http.StatusBadGateway, classification.KindCommunication},
		{"empty output", classification.ErrEmptyModelOutput, http.StatusBadGateway, classification.KindEmptyModelOutput},
		{"schema violation", fmt.Errorf("wrapped: %w", classification.ErrSchemaViolation), http.StatusUnprocessableEntity, classification.KindSchemaViolation},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				classifyFn: func(context.Context, classification.Request) (*classification.Record, error) {
					return nil, tt.err
				},
			}
			mux := setupMux(sys.Handler(1 << 20))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/classify", strings.NewReader(`{"answer":"x"}`))
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}

			var body handlers.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Kind != string(tt.kind) {
				t.Errorf("kind = %q, want %q", body.Kind, tt.kind)
			}
		})
	}

	t.Run("rejects malformed body", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(sys.Handler(1 << 20))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/classify", strings.NewReader(`{"answer":`))
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(sys.Handler(16))

		body := bytes.Repeat([]byte("a"), 64)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/classify", strings.NewReader(`{"answer":"`+string(body)+`"}`))
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "request body exceeds 16 B") {
			t.Errorf("body = %s", rec.Body.String())
		}
	})
}

func TestHandlerClassifyBatch(t *testing.T) {
	r := sampleRecord()
	sys := &mockSystem{
		classifyBatchFn: func(_ context.Context, req classification.BatchRequest) (*classification.BatchResult, error) {
			if len(req.Answers) != 2 {
				t.Errorf("answers = %v", req.Answers)
			}
			return &classification.BatchResult{
				Items: []classification.BatchItem{
					{Answer: req.Answers[0], Record: &r},
					{Answer: req.Answers[1], Error: "schema_violation: missing justification", Kind: classification.KindSchemaViolation},
				},
				Succeeded: 1,
				Failed:    1,
			}, nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/classify/batch", strings.NewReader(`{"answers":["a","b"]}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body classification.BatchResult
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Succeeded != 1 || body.Failed != 1 || len(body.Items) != 2 {
		t.Errorf("body = %+v", body)
	}
}

func TestHandlerList(t *testing.T) {
	var got pagination.PageRequest
	sys := &mockSystem{
		listFn: func(page pagination.PageRequest) pagination.PageResult[classification.Record] {
			got = page
			return pagination.NewPageResult([]classification.Record{sampleRecord()}, 1, page.Page, page.PageSize)
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/responses?page=2&page_size=5&search=onc", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.Page != 2 || got.PageSize != 5 || got.Search == nil || *got.Search != "onc" {
		t.Errorf("page request = %+v", got)
	}

	var body pagination.PageResult[classification.Record]
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 1 {
		t.Errorf("data = %d, want 1", len(body.Data))
	}
}

func TestHandlerReset(t *testing.T) {
	called := false
	sys := &mockSystem{
		resetFn: func(context.Context) { called = true },
	}
	mux := setupMux(sys.Handler(1 << 20))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/responses", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if !called {
		t.Error("reset not called")
	}
}

func TestHandlerCategories(t *testing.T) {
	sys := &mockSystem{
		categoriesFn: func() []string { return []string{"Ethics", "Oncology"} },
		summaryFn: func() ([]classification.CategorySummary, error) {
			return []classification.CategorySummary{{Name: "Ethics", Count: 2, MeanConfidence: 0.5, MedianConfidence: 0.5}}, nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/categories", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body classification.CategoriesResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"Ethics", "Oncology"}, body.Categories); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
	if len(body.Summary) != 1 {
		t.Errorf("summary = %+v", body.Summary)
	}
}

func TestHandlerSurvey(t *testing.T) {
	question := classification.DefaultQuestion
	sys := &mockSystem{
		stateFn: func() classification.State {
			return classification.State{Question: question, Responses: []classification.Record{sampleRecord()}}
		},
		setQuestionFn: func(_ context.Context, q string) error {
			if strings.TrimSpace(q) == "" {
				return classification.ErrInvalidQuestion
			}
			question = q
			return nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	t.Run("returns state", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/survey", nil))

		var body classification.State
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Question != classification.DefaultQuestion || len(body.Responses) != 1 {
			t.Errorf("state = %+v", body)
		}
	})

	t.Run("updates question", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/survey/question", strings.NewReader(`{"question":"Why AI?"}`))
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if question != "Why AI?" {
			t.Errorf("question = %q", question)
		}
	})

	t.Run("rejects blank question", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/survey/question", strings.NewReader(`{"question":" "}`))
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerSchema(t *testing.T) {
	mux := setupMux((&mockSystem{}).Handler(1 << 20))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/schema", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	want := `{"type":"OBJECT","title":"Result"`
	if !strings.HasPrefix(rec.Body.String(), want) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
