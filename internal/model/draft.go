package model

import (
	"time"

	"github.com/quizgenai/quizgen-backend/internal/quiz"
)

// DraftSnapshot is the client-facing view of one authoring session. It is a
// copy; mutating it never touches the live draft.
type DraftSnapshot struct {
	ID        string             `json:"id"`
	State     quiz.WorkflowState `json:"state"`
	Busy      bool               `json:"busy"`
	Files     []quiz.SourceFile  `json:"files"`
	Draft     *quiz.QuizDraft    `json:"draft,omitempty"`
	FormURL   string             `json:"form_url,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Question/option text is deliberately unconstrained: the editor accepts
// whatever the user types, so the requests below carry no length or content
// rules.

// SetTitleRequest is the payload for renaming the draft.
type SetTitleRequest struct {
	Title string `json:"title"`
}

// SetQuestionTextRequest is the payload for editing a question's text.
type SetQuestionTextRequest struct {
	Question string `json:"question"`
}

// SetOptionTextRequest is the payload for editing one option's text.
type SetOptionTextRequest struct {
	Option string `json:"option"`
}

// MarkCorrectRequest carries the live option text to mark as correct.
type MarkCorrectRequest struct {
	Option string `json:"option"`
}

// ReorderRequest carries the endpoints of a completed drag gesture.
// Pointers so that position 0 survives required-field validation.
type ReorderRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

// PublishRequest is the payload for handing the draft to the publishing
// service. ConfirmAnonymous acknowledges that an unauthenticated publish is
// attributed to the service account.
type PublishRequest struct {
	ConfirmAnonymous bool `json:"confirm_anonymous"`
}
