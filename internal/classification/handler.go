package classification

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/tally/pkg/formatting"
	"github.com/JaimeStill/tally/pkg/handlers"
	"github.com/JaimeStill/tally/pkg/pagination"
	"github.com/JaimeStill/tally/pkg/routes"
)

// RespondentHeader carries the respondent ID when the body omits it.
const RespondentHeader = "X-Respondent-ID"

// Handler provides HTTP endpoints for classification operations.
type Handler struct {
	sys          System
	logger       *slog.Logger
	pagination   pagination.Config
	maxBodyBytes int64
}

// CategoriesResponse lists the current taxonomy with per-category statistics.
type CategoriesResponse struct {
	Categories []string          `json:"categories"`
	Summary    []CategorySummary `json:"summary"`
}

// QuestionCommand replaces the survey question.
type QuestionCommand struct {
	Question string `json:"question"`
}

// NewHandler creates a Handler with the given system, logger, pagination config,
// and request body limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBodyBytes int64,
) *Handler {
	return &Handler{
		sys:          sys,
		logger:       logger.With("handler", "classification"),
		pagination:   pagination,
		maxBodyBytes: maxBodyBytes,
	}
}

// Routes returns the route group definitions for classification and survey endpoints.
func (h *Handler) Routes() []routes.Group {
	return []routes.Group{
		{
			Prefix: "/classify",
			Routes: []routes.Route{
				{Method: "POST", Pattern: "", Handler: h.Classify},
				{Method: "POST", Pattern: "/batch", Handler: h.ClassifyBatch},
			},
		},
		{
			Prefix: "/responses",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.List},
				{Method: "DELETE", Pattern: "", Handler: h.Reset},
			},
		},
		{
			Prefix: "/survey",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.State},
				{Method: "PUT", Pattern: "/question", Handler: h.SetQuestion},
			},
		},
		{
			Prefix: "",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/categories", Handler: h.Categories},
				{Method: "GET", Pattern: "/schema", Handler: h.Schema},
			},
		},
	}
}

// Classify classifies a single answer. The respondent ID is read from the
// body, falling back to the X-Respondent-ID header.
// Returns 201 with the appended record on success.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var req Request
	if !h.decode(w, r, &req) {
		return
	}

	if req.RespondentID == "" {
		req.RespondentID = r.Header.Get(RespondentHeader)
	}

	rec, err := h.sys.Classify(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, rec)
}

// ClassifyBatch classifies several answers concurrently. Per-answer failures
// are reported in the result rather than failing the request.
func (h *Handler) ClassifyBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.RespondentID == "" {
		req.RespondentID = r.Header.Get(RespondentHeader)
	}

	result, err := h.sys.ClassifyBatch(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// List returns a paginated page of the history, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	handlers.RespondJSON(w, http.StatusOK, h.sys.List(page))
}

// Reset discards the whole history.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.sys.Reset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// State returns the active question and full history.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.State())
}

// SetQuestion replaces the active survey question.
func (h *Handler) SetQuestion(w http.ResponseWriter, r *http.Request) {
	var cmd QuestionCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	if err := h.sys.SetQuestion(r.Context(), cmd.Question); err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.State())
}

// Categories returns the sorted taxonomy and per-category confidence statistics.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	summary, err := h.sys.Summary()
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, CategoriesResponse{
		Categories: h.sys.Categories(),
		Summary:    summary,
	})
}

// Schema returns the structured-output contract sent to the model.
func (h *Handler) Schema(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Schema())
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
			err = fmt.Errorf("request body exceeds %s", formatting.FormatBytes(maxErr.Limit, 0))
		}
		handlers.RespondErrorKind(w, h.logger, status, string(KindInvalidInput), err)
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	kind, _ := KindOf(err)
	handlers.RespondErrorKind(w, h.logger, MapHTTPStatus(err), string(kind), err)
}
