package quiz

import (
	"reflect"
	"testing"
)

func draftWith(questions ...QuestionRecord) *QuizDraft {
	return &QuizDraft{Title: DefaultTitle, Questions: questions}
}

func assertAnswerIntegrity(t *testing.T, d *QuizDraft) {
	t.Helper()
	for qi, q := range d.Questions {
		if len(q.Options) == 0 {
			t.Fatalf("question %d has no options", qi)
		}
		found := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("question %d: correct answer %q not among options %v", qi, q.CorrectAnswer, q.Options)
		}
	}
}

func TestNormalizeCanonicalizesAnswer(t *testing.T) {
	tests := []struct {
		name    string
		raw     RawQuestion
		want    string
	}{
		{
			name: "case and whitespace insensitive match",
			raw:  RawQuestion{Question: "Pick one", Options: []string{"Cat", "Dog"}, CorrectAnswer: "DOG "},
			want: "Dog",
		},
		{
			name: "exact match keeps option text",
			raw:  RawQuestion{Question: "Pick one", Options: []string{"Cat", "Dog"}, CorrectAnswer: "Cat"},
			want: "Cat",
		},
		{
			name: "no match falls back to first option",
			raw:  RawQuestion{Question: "Pick one", Options: []string{"Cat", "Dog"}, CorrectAnswer: "Bird"},
			want: "Cat",
		},
		{
			name: "duplicate option text resolves to first match",
			raw:  RawQuestion{Question: "Pick one", Options: []string{"Cat", "dog", "Dog"}, CorrectAnswer: "Dog"},
			want: "dog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Normalize([]RawQuestion{tt.raw})
			if len(d.Questions) != 1 {
				t.Fatalf("expected 1 question, got %d", len(d.Questions))
			}
			if got := d.Questions[0].CorrectAnswer; got != tt.want {
				t.Fatalf("correct answer = %q, want %q", got, tt.want)
			}
			assertAnswerIntegrity(t, d)
		})
	}
}

func TestNormalizeDropsOptionlessQuestions(t *testing.T) {
	d := Normalize([]RawQuestion{
		{Question: "Empty", Options: nil, CorrectAnswer: "A"},
		{Question: "Kept", Options: []string{"A", "B"}, CorrectAnswer: "B"},
	})
	if len(d.Questions) != 1 || d.Questions[0].Question != "Kept" {
		t.Fatalf("expected only the option-bearing question, got %+v", d.Questions)
	}
}

func TestSetOptionTextRenameFollowsCorrectness(t *testing.T) {
	d := draftWith(QuestionRecord{
		Question:      "Capital of France?",
		Options:       []string{"Paris", "London"},
		CorrectAnswer: "Paris",
	})

	if err := d.SetOptionText(0, 0, "Paris, France"); err != nil {
		t.Fatalf("SetOptionText: %v", err)
	}

	q := d.Questions[0]
	if !reflect.DeepEqual(q.Options, []string{"Paris, France", "London"}) {
		t.Fatalf("options = %v", q.Options)
	}
	if q.CorrectAnswer != "Paris, France" {
		t.Fatalf("correct answer = %q, want the renamed text", q.CorrectAnswer)
	}
	assertAnswerIntegrity(t, d)
}

func TestSetOptionTextUnrelatedRenamePreservesCorrectness(t *testing.T) {
	d := draftWith(QuestionRecord{
		Question:      "Capital of France?",
		Options:       []string{"Paris", "London"},
		CorrectAnswer: "Paris",
	})

	if err := d.SetOptionText(0, 1, "Lyon"); err != nil {
		t.Fatalf("SetOptionText: %v", err)
	}

	q := d.Questions[0]
	if q.CorrectAnswer != "Paris" {
		t.Fatalf("correct answer = %q, want %q", q.CorrectAnswer, "Paris")
	}
	if q.Options[1] != "Lyon" {
		t.Fatalf("option 1 = %q, want %q", q.Options[1], "Lyon")
	}
	assertAnswerIntegrity(t, d)
}

func TestSetOptionTextDuplicateEditsNonMarkedCopy(t *testing.T) {
	// Two options share the marker text; only the first counts as marked.
	d := draftWith(QuestionRecord{
		Question:      "Pick",
		Options:       []string{"Same", "Same"},
		CorrectAnswer: "Same",
	})

	if err := d.SetOptionText(0, 1, "Other"); err != nil {
		t.Fatalf("SetOptionText: %v", err)
	}
	if d.Questions[0].CorrectAnswer != "Same" {
		t.Fatalf("editing the second duplicate must not move the marker, got %q", d.Questions[0].CorrectAnswer)
	}
	assertAnswerIntegrity(t, d)
}

func TestSetQuestionTextLeavesOptionsAlone(t *testing.T) {
	d := draftWith(QuestionRecord{
		Question:      "Old",
		Options:       []string{"A", "B"},
		CorrectAnswer: "B",
	})

	if err := d.SetQuestionText(0, "New"); err != nil {
		t.Fatalf("SetQuestionText: %v", err)
	}
	q := d.Questions[0]
	if q.Question != "New" || q.CorrectAnswer != "B" {
		t.Fatalf("unexpected record after edit: %+v", q)
	}
}

func TestMarkCorrect(t *testing.T) {
	d := draftWith(QuestionRecord{
		Question:      "Pick",
		Options:       []string{"A", "B"},
		CorrectAnswer: "A",
	})
	if err := d.MarkCorrect(0, "B"); err != nil {
		t.Fatalf("MarkCorrect: %v", err)
	}
	if d.Questions[0].CorrectAnswer != "B" {
		t.Fatalf("correct answer = %q", d.Questions[0].CorrectAnswer)
	}
	assertAnswerIntegrity(t, d)
}

func TestAddRemoveClear(t *testing.T) {
	d := NewDraft()

	added := d.AddQuestion()
	if added.CorrectAnswer != added.Options[0] {
		t.Fatalf("scaffold marker must be the first option, got %q", added.CorrectAnswer)
	}
	assertAnswerIntegrity(t, d)

	d.AddQuestion()
	if err := d.SetQuestionText(1, "Second"); err != nil {
		t.Fatalf("SetQuestionText: %v", err)
	}
	if err := d.RemoveQuestion(0); err != nil {
		t.Fatalf("RemoveQuestion: %v", err)
	}
	if len(d.Questions) != 1 || d.Questions[0].Question != "Second" {
		t.Fatalf("unexpected questions after removal: %+v", d.Questions)
	}

	d.ClearAll()
	if len(d.Questions) != 0 {
		t.Fatalf("expected empty draft after ClearAll, got %d questions", len(d.Questions))
	}
}

func TestIndexBoundsAreRejected(t *testing.T) {
	d := draftWith(QuestionRecord{Question: "Q", Options: []string{"A", "B"}, CorrectAnswer: "A"})

	if err := d.SetQuestionText(1, "x"); err != ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := d.SetOptionText(0, 2, "x"); err != ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := d.RemoveQuestion(-1); err != ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	assertAnswerIntegrity(t, d)
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"biology_chapter_3.pdf", "biology chapter 3"},
		{"lecture-notes.final.png", "lecture notes"},
		{"Plain.pdf", "Plain"},
		{"_.pdf", DefaultTitle},
	}
	for _, tt := range tests {
		if got := TitleFromFilename(tt.in); got != tt.want {
			t.Fatalf("TitleFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
