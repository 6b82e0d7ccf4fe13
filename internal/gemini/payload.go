package gemini

import "github.com/JaimeStill/tally/pkg/schema"

// MimeJSON is the response MIME type requested for structured output.
const MimeJSON = "application/json"

// Payload is the generateContent request body.
type Payload struct {
	Contents          []Content        `json:"contents"`
	SystemInstruction Content          `json:"systemInstruction"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
}

// Content is a role-tagged list of parts.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a single text part.
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig constrains the response to JSON matching ResponseSchema.
type GenerationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   *schema.Schema `json:"responseSchema"`
}

// NewPayload builds the wire body for a request.
func NewPayload(req Request) Payload {
	return Payload{
		Contents: []Content{{
			Role:  "user",
			Parts: []Part{{Text: req.Context}},
		}},
		SystemInstruction: Content{
			Parts: []Part{{Text: req.System}},
		},
		GenerationConfig: GenerationConfig{
			ResponseMimeType: MimeJSON,
			ResponseSchema:   req.Schema,
		},
	}
}
