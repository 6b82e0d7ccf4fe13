package prompts

import "errors"

// ErrEmptyAnswer is returned when a prompt is requested for a blank answer.
var ErrEmptyAnswer = errors.New("answer is required")
