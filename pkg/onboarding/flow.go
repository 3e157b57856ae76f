// Package onboarding drives the fixed pre-chat questionnaire: one question at
// a time, validation gating advancement, answers accumulated for a single
// batch submission.
package onboarding

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError reports an answer that did not pass a question's rules. It
// never leaves the client; the view renders it inline on the current step.
type ValidationError struct {
	QuestionID string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid answer for %s: %s", e.QuestionID, e.Reason)
}

// Flow walks the questionnaire. Not safe for concurrent use; the widget
// drives it from its single thread of control.
type Flow struct {
	questions []Question
	step      int
	answers   map[string]any
	done      bool
}

// NewFlow starts at the first question of the canonical questionnaire.
func NewFlow() *Flow {
	return &Flow{
		questions: Questions(),
		answers:   make(map[string]any),
	}
}

// Current returns the question for the active step.
func (f *Flow) Current() Question {
	return f.questions[f.step]
}

// Step returns the zero-based active step.
func (f *Flow) Step() int { return f.step }

// Total returns the number of questions.
func (f *Flow) Total() int { return len(f.questions) }

// Done reports whether every question has been answered.
func (f *Flow) Done() bool { return f.done }

// Answer validates the value against the current question. On success the
// flow advances (or completes after the last step); on failure the step is
// unchanged and a *ValidationError describes the problem.
func (f *Flow) Answer(value string) error {
	if f.done {
		return fmt.Errorf("questionnaire already completed")
	}

	q := f.questions[f.step]
	parsed, err := validate(q, value)
	if err != nil {
		return err
	}

	f.answers[q.ID] = parsed
	if f.step+1 < len(f.questions) {
		f.step++
	} else {
		f.done = true
	}
	return nil
}

// Answers returns a copy of the accumulated answer map. Meaningful once Done.
func (f *Flow) Answers() map[string]any {
	out := make(map[string]any, len(f.answers))
	for k, v := range f.answers {
		out[k] = v
	}
	return out
}

func validate(q Question, value string) (any, error) {
	trimmed := strings.TrimSpace(value)

	switch q.Type {
	case TypeText:
		if trimmed == "" {
			return nil, &ValidationError{QuestionID: q.ID, Reason: "נא למלא תשובה"}
		}
		return trimmed, nil

	case TypeNumber:
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, &ValidationError{QuestionID: q.ID, Reason: "נא להזין מספר"}
		}
		if n < q.Min || n > q.Max {
			return nil, &ValidationError{
				QuestionID: q.ID,
				Reason:     fmt.Sprintf("נא להזין מספר בין %d ל-%d", q.Min, q.Max),
			}
		}
		return n, nil

	case TypeScale:
		n, err := strconv.Atoi(trimmed)
		if err != nil || n < q.Min || n > q.Max {
			return nil, &ValidationError{
				QuestionID: q.ID,
				Reason:     fmt.Sprintf("נא לבחור ערך בין %d ל-%d", q.Min, q.Max),
			}
		}
		return n, nil

	case TypeChoice:
		for _, opt := range q.Options {
			if trimmed == opt {
				return trimmed, nil
			}
		}
		return nil, &ValidationError{QuestionID: q.ID, Reason: "נא לבחור אחת מהאפשרויות"}

	default:
		return nil, fmt.Errorf("unknown question type %q", q.Type)
	}
}
