package quiz

import "errors"

// WorkflowState is the wizard step a draft session is in.
type WorkflowState string

const (
	StateIntake    WorkflowState = "intake"
	StateEditing   WorkflowState = "editing"
	StatePublished WorkflowState = "published"
)

var (
	// ErrCallInFlight rejects a second generate/publish attempt while one is
	// still pending. The attempt is a no-op.
	ErrCallInFlight = errors.New("an external call is already in flight")

	// ErrInvalidTransition rejects an operation that the current wizard step
	// does not offer.
	ErrInvalidTransition = errors.New("operation not valid in the current state")
)

// Workflow is the authoring state machine for one draft session:
// Intake -> Editing -> Published, advanced only by a successful external
// call, plus an explicit reset back to Intake. Not safe for concurrent use;
// the owning session serializes access.
type Workflow struct {
	State   WorkflowState
	Files   SourceFileSet
	Draft   *QuizDraft
	FormURL string

	busy bool
}

// NewWorkflow starts a fresh cycle at the intake step with an empty file
// set.
func NewWorkflow() *Workflow {
	return &Workflow{State: StateIntake}
}

// BeginCall marks the one allowed external call (generate or publish) as in
// flight. Pair with EndCall once the call returns, success or not.
func (w *Workflow) BeginCall() error {
	if w.busy {
		return ErrCallInFlight
	}
	w.busy = true
	return nil
}

// EndCall clears the in-flight marker.
func (w *Workflow) EndCall() {
	w.busy = false
}

// Busy reports whether an external call is pending. Mutating operations are
// locked out while true.
func (w *Workflow) Busy() bool {
	return w.busy
}

// RequireState guards operations that are only offered in one wizard step.
func (w *Workflow) RequireState(s WorkflowState) error {
	if w.State != s {
		return ErrInvalidTransition
	}
	return nil
}

// CompleteGeneration installs the normalized draft and advances to editing.
// The source file set has served its purpose and is discarded.
func (w *Workflow) CompleteGeneration(draft *QuizDraft) error {
	if w.State != StateIntake {
		return ErrInvalidTransition
	}
	w.Draft = draft
	w.Files = nil
	w.State = StateEditing
	return nil
}

// CompletePublish records the hosted form URL verbatim and moves to the
// terminal, read-only step. A failed publish never reaches here; the
// workflow stays in editing with the draft intact.
func (w *Workflow) CompletePublish(formURL string) error {
	if w.State != StateEditing {
		return ErrInvalidTransition
	}
	w.FormURL = formURL
	w.State = StatePublished
	return nil
}

// Reset starts the cycle over: intake step, empty file set, no draft, no
// form URL.
func (w *Workflow) Reset() {
	w.State = StateIntake
	w.Files = nil
	w.Draft = nil
	w.FormURL = ""
}
