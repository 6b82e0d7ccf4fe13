package api

import (
	"strings"

	"github.com/JaimeStill/tally/internal/classification"
	"github.com/JaimeStill/tally/internal/config"
	"github.com/JaimeStill/tally/pkg/openapi"
	"github.com/JaimeStill/tally/pkg/schema"
)

// NewSpec describes the API module's endpoints as an OpenAPI 3.1 document.
func NewSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	server := cfg.API.BasePath
	if cfg.API.OpenAPI.Server != "" {
		server = cfg.API.OpenAPI.Server
	}
	spec.AddServer(server)

	spec.Components.AddSchemas(componentSchemas())

	tags := []string{"Classification"}
	survey := []string{"Survey"}

	spec.Paths["/classify"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Classify an answer",
			Description: "Classifies one answer against the current taxonomy and appends the record.",
			Tags:        tags,
			Parameters: []*openapi.Parameter{
				openapi.HeaderParam(classification.RespondentHeader, "Respondent ID used when the body omits respondentId"),
			},
			RequestBody: openapi.RequestBodyJSON("ClassifyRequest", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Classified record", "Record"),
				400: openapi.ResponseRef("BadRequest"),
				413: openapi.ResponseRef("PayloadTooLarge"),
				422: openapi.ResponseRef("UnprocessableEntity"),
				502: openapi.ResponseRef("BadGateway"),
			},
		},
	}

	spec.Paths["/classify/batch"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Classify several answers",
			Description: "Classifies answers concurrently. Per-answer failures are reported in the result.",
			Tags:        tags,
			RequestBody: openapi.RequestBodyJSON("BatchRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Batch outcome", "BatchResult"),
				400: openapi.ResponseRef("BadRequest"),
				413: openapi.ResponseRef("PayloadTooLarge"),
			},
		},
	}

	spec.Paths["/responses"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List classified responses",
			Tags:    tags,
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
				openapi.QueryParam("search", "string", "Filter by answer, category, or justification", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Page of records, newest first", "RecordPage"),
			},
		},
		Delete: &openapi.Operation{
			Summary: "Clear all responses",
			Tags:    survey,
			Responses: map[int]*openapi.Response{
				204: {Description: "History cleared"},
			},
		},
	}

	spec.Paths["/categories"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List categories",
			Tags:    tags,
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Taxonomy with per-category statistics", "Categories"),
			},
		},
	}

	spec.Paths["/schema"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:     "Result contract",
			Description: "The structured-output schema sent to the model with every request.",
			Tags:        tags,
			Responses: map[int]*openapi.Response{
				200: {Description: "Structured-output schema"},
			},
		},
	}

	spec.Paths["/survey"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Current survey state",
			Tags:    survey,
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Question and all responses", "State"),
			},
		},
	}

	spec.Paths["/survey/question"] = &openapi.PathItem{
		Put: &openapi.Operation{
			Summary:     "Set the survey question",
			Tags:        survey,
			RequestBody: openapi.RequestBodyJSON("QuestionCommand", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Updated state", "State"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/observe"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:     "Observe state updates",
			Description: "WebSocket upgrade. Sends the current state on connect, then a state_update message after every change.",
			Tags:        survey,
			Responses: map[int]*openapi.Response{
				101: {Description: "Switching to WebSocket"},
				503: {Description: "Server shutting down"},
			},
		},
	}

	return spec
}

func componentSchemas() map[string]*openapi.Schema {
	record := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":             {Type: "string", Format: "uuid"},
			"userId":         {Type: "string", Description: "Respondent ID", Default: classification.AnonymousRespondent},
			"answer":         {Type: "string"},
			"classification": openapi.SchemaRef("Result"),
			"timestamp":      {Type: "string", Format: "date-time"},
		},
		Required: []string{"id", "userId", "answer", "classification", "timestamp"},
	}

	state := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"question":  {Type: "string"},
			"responses": openapi.ArrayOf("Record"),
		},
	}

	return map[string]*openapi.Schema{
		"Result": fromSchema(classification.ResultSchema()),
		"Record": record,
		"State":  state,
		"ClassifyRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"answer":       {Type: "string", Description: "Free-text survey answer"},
				"respondentId": {Type: "string", Description: "Optional respondent ID"},
			},
			Required: []string{"answer"},
		},
		"BatchRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"answers":      {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"respondentId": {Type: "string"},
			},
			Required: []string{"answers"},
		},
		"BatchItem": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"answer": {Type: "string"},
				"record": openapi.SchemaRef("Record"),
				"error":  {Type: "string"},
				"kind":   {Type: "string", Enum: kinds()},
			},
		},
		"BatchResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"items":     openapi.ArrayOf("BatchItem"),
				"succeeded": {Type: "integer"},
				"failed":    {Type: "integer"},
			},
		},
		"RecordPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        openapi.ArrayOf("Record"),
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"CategorySummary": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"name":              {Type: "string"},
				"count":             {Type: "integer"},
				"mean_confidence":   {Type: "number"},
				"median_confidence": {Type: "number"},
			},
		},
		"Categories": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"categories": {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"summary":    openapi.ArrayOf("CategorySummary"),
			},
		},
		"QuestionCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"question": {Type: "string"},
			},
			Required: []string{"question"},
		},
	}
}

// fromSchema converts a structured-output schema to its OpenAPI form.
// Type tags are lower-cased; property order is not preserved.
func fromSchema(s *schema.Schema) *openapi.Schema {
	if s == nil {
		return nil
	}

	out := &openapi.Schema{
		Type:        strings.ToLower(string(s.Type)),
		Description: s.Description,
		Required:    s.Required,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
		Items:       fromSchema(s.Items),
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*openapi.Schema, len(s.Properties))
		for _, p := range s.Properties {
			out.Properties[p.Name] = fromSchema(p.Schema)
		}
	}

	return out
}

func kinds() []any {
	return []any{
		string(classification.KindInvalidInput),
		string(classification.KindCommunication),
		string(classification.KindEmptyModelOutput),
		string(classification.KindSchemaViolation),
	}
}
