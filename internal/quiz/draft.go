package quiz

import (
	"errors"
	"strings"
)

// DefaultTitle is used until a title is derived from the source material.
const DefaultTitle = "Untitled Quiz"

// Scaffold for manually added questions.
var (
	scaffoldQuestion = "New Question"
	scaffoldOptions  = []string{"Option A", "Option B"}
)

// ErrIndexOutOfRange is returned when a question or option index does not
// refer to an existing element.
var ErrIndexOutOfRange = errors.New("index out of range")

// RawQuestion is a question as returned by the generation backend, before
// its correct answer has been reconciled against the option list.
type RawQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// QuestionRecord is one editable multiple-choice question. CorrectAnswer
// always equals the exact text of one element of Options.
type QuestionRecord struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// QuizDraft is the in-memory quiz being authored. Question order is
// meaningful and reflected directly in the numbered display.
type QuizDraft struct {
	Title     string           `json:"title"`
	Questions []QuestionRecord `json:"questions"`
}

// NewDraft returns an empty draft with the placeholder title.
func NewDraft() *QuizDraft {
	return &QuizDraft{Title: DefaultTitle}
}

// Normalize builds a draft from generated questions. The raw correct answer
// is resolved to the exact text of the option it denotes; generators tend to
// return answers that differ from the option in case or surrounding
// whitespace. Questions without options are dropped since they cannot carry
// a correct-answer marker at all.
func Normalize(raw []RawQuestion) *QuizDraft {
	questions := make([]QuestionRecord, 0, len(raw))
	for _, rq := range raw {
		if len(rq.Options) == 0 {
			continue
		}
		questions = append(questions, QuestionRecord{
			Question:      rq.Question,
			Options:       append([]string(nil), rq.Options...),
			CorrectAnswer: CanonicalAnswer(rq.Options, rq.CorrectAnswer),
		})
	}
	return &QuizDraft{Title: DefaultTitle, Questions: questions}
}

// CanonicalAnswer resolves a correct-answer string to the exact text of the
// option it denotes. Matching is case-insensitive and whitespace-trimmed;
// the first matching option wins. When nothing matches, the first option is
// used so the marker always points at a real option.
func CanonicalAnswer(options []string, raw string) string {
	want := strings.ToLower(strings.TrimSpace(raw))
	for _, opt := range options {
		if strings.ToLower(strings.TrimSpace(opt)) == want {
			return opt
		}
	}
	return options[0]
}

// SetTitle replaces the draft title verbatim. An empty title is allowed
// while editing; publishing substitutes the placeholder.
func (d *QuizDraft) SetTitle(title string) {
	d.Title = title
}

// SetQuestionText replaces the question text. Options and the correct-answer
// marker are untouched.
func (d *QuizDraft) SetQuestionText(i int, text string) error {
	if i < 0 || i >= len(d.Questions) {
		return ErrIndexOutOfRange
	}
	d.Questions[i].Question = text
	return nil
}

// SetOptionText replaces one option's text. When the edited position is the
// one currently marked correct, the marker follows the rename so it never
// points at stale text. With duplicate option texts, the first option whose
// text equals the marker counts as the marked one.
func (d *QuizDraft) SetOptionText(qi, oi int, text string) error {
	if qi < 0 || qi >= len(d.Questions) {
		return ErrIndexOutOfRange
	}
	q := &d.Questions[qi]
	if oi < 0 || oi >= len(q.Options) {
		return ErrIndexOutOfRange
	}
	correctAt := -1
	for i, opt := range q.Options {
		if opt == q.CorrectAnswer {
			correctAt = i
			break
		}
	}
	if correctAt == oi {
		q.CorrectAnswer = text
	}
	q.Options[oi] = text
	return nil
}

// MarkCorrect sets the correct-answer marker. The value is always a live
// option text picked from the rendered question, so membership is not
// re-checked here.
func (d *QuizDraft) MarkCorrect(qi int, option string) error {
	if qi < 0 || qi >= len(d.Questions) {
		return ErrIndexOutOfRange
	}
	d.Questions[qi].CorrectAnswer = option
	return nil
}

// AddQuestion appends a two-option scaffold with the first option marked
// correct.
func (d *QuizDraft) AddQuestion() *QuestionRecord {
	d.Questions = append(d.Questions, QuestionRecord{
		Question:      scaffoldQuestion,
		Options:       append([]string(nil), scaffoldOptions...),
		CorrectAnswer: scaffoldOptions[0],
	})
	return &d.Questions[len(d.Questions)-1]
}

// RemoveQuestion deletes the question at i. Remaining questions keep their
// relative order.
func (d *QuizDraft) RemoveQuestion(i int) error {
	if i < 0 || i >= len(d.Questions) {
		return ErrIndexOutOfRange
	}
	d.Questions = append(d.Questions[:i], d.Questions[i+1:]...)
	return nil
}

// ClearAll empties the question list. An empty draft is a valid state, not
// an error.
func (d *QuizDraft) ClearAll() {
	d.Questions = nil
}

// Reorder commits a completed drag gesture, moving the question at from to
// position to.
func (d *QuizDraft) Reorder(from, to int) error {
	moved, err := Move(d.Questions, from, to)
	if err != nil {
		return err
	}
	d.Questions = moved
	return nil
}

// TitleFromFilename derives a draft title from a source file name: the
// extension is stripped and separators are normalized to spaces.
func TitleFromFilename(name string) string {
	base := name
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	if base = strings.TrimSpace(base); base == "" {
		return DefaultTitle
	}
	return base
}
