package classification

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Validate parses model output and checks it against the result contract.
// It fails closed: malformed JSON, a non-object root, a missing field, a
// field of the wrong JSON type, a blank primaryDomain, or a confidenceScore
// outside [0, 1] is a schema violation. Nothing is coerced, defaulted, or
// repaired. Fields outside the contract are ignored.
func Validate(text string) (Result, error) {
	if !gjson.Valid(text) {
		return Result{}, violation("malformed JSON")
	}

	root := gjson.Parse(text)
	if !root.IsObject() {
		return Result{}, violation("expected a JSON object")
	}

	domain, err := stringField(root, FieldPrimaryDomain)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(domain) == "" {
		return Result{}, violation("%s is blank", FieldPrimaryDomain)
	}

	score, err := numberField(root, FieldConfidenceScore)
	if err != nil {
		return Result{}, err
	}
	if score < 0 || score > 1 {
		return Result{}, violation("%s %g outside [0, 1]", FieldConfidenceScore, score)
	}

	justification, err := stringField(root, FieldJustification)
	if err != nil {
		return Result{}, err
	}

	return Result{
		PrimaryDomain:   domain,
		ConfidenceScore: score,
		Justification:   justification,
	}, nil
}

func stringField(root gjson.Result, name string) (string, error) {
	v := root.Get(name)
	if !v.Exists() {
		return "", violation("missing %s", name)
	}
	if v.Type != gjson.String {
		return "", violation("%s must be a string, got %s", name, v.Type)
	}
	return v.Str, nil
}

func numberField(root gjson.Result, name string) (float64, error) {
	v := root.Get(name)
	if !v.Exists() {
		return 0, violation("missing %s", name)
	}
	if v.Type != gjson.Number {
		return 0, violation("%s must be a number, got %s", name, v.Type)
	}
	return v.Num, nil
}

func violation(format string, args ...any) *Error {
	return newError(KindSchemaViolation, fmt.Errorf(format, args...))
}
