package classification

import (
	"strings"
	"sync"
)

// DefaultQuestion is the survey question used when none is configured.
const DefaultQuestion = "What is your primary learning objective regarding the use of AI in medicine?"

// Survey holds the active survey question. Changing the question does not
// touch the record history.
type Survey struct {
	mu       sync.RWMutex
	question string
}

// NewSurvey creates a Survey with the given question, falling back to
// DefaultQuestion when it is blank.
func NewSurvey(question string) *Survey {
	question = strings.TrimSpace(question)
	if question == "" {
		question = DefaultQuestion
	}
	return &Survey{question: question}
}

// Question returns the active question.
func (s *Survey) Question() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.question
}

// SetQuestion replaces the active question.
func (s *Survey) SetQuestion(question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrInvalidQuestion
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.question = question
	return nil
}
