// Package classification implements the survey answer classification domain.
// It validates model output against the result contract, keeps the shared
// record history from which the category taxonomy is derived, and publishes
// each completed classification to observers.
package classification

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/tally/pkg/schema"
)

// Result field names, in contract order.
const (
	FieldPrimaryDomain   = "primaryDomain"
	FieldConfidenceScore = "confidenceScore"
	FieldJustification   = "justification"
)

// AnonymousRespondent identifies answers submitted without a respondent ID.
const AnonymousRespondent = "anonymous"

// Request is a single answer submitted for classification.
type Request struct {
	Answer       string `json:"answer"`
	RespondentID string `json:"respondentId,omitempty"`
}

// Result is the validated structured output of the model.
type Result struct {
	PrimaryDomain   string  `json:"primaryDomain" desc:"The most suitable category for the response: an existing category name, or a new concise one when none fits."`
	ConfidenceScore float64 `json:"confidenceScore" desc:"Classification confidence from 0.0 to 1.0." minimum:"0" maximum:"1"`
	Justification   string  `json:"justification" desc:"A concise, single-sentence explanation for the chosen category."`
}

// Record is one classified answer in the shared history. Records are
// created once, after validation, and never modified.
type Record struct {
	ID             uuid.UUID `json:"id"`
	RespondentID   string    `json:"userId"`
	Answer         string    `json:"answer"`
	Classification Result    `json:"classification"`
	Timestamp      time.Time `json:"timestamp"`
}

// ResultSchema compiles the structured-output contract for Result.
func ResultSchema() *schema.Schema {
	return schema.For[Result]()
}
