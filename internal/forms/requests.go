package forms

import "github.com/quizgenai/quizgen-backend/internal/quiz"

// Request is one entry in a forms.batchUpdate call. Exactly one field is
// set.
type Request struct {
	UpdateSettings *UpdateSettings `json:"updateSettings,omitempty"`
	CreateItem     *CreateItem     `json:"createItem,omitempty"`
}

type UpdateSettings struct {
	Settings   FormSettings `json:"settings"`
	UpdateMask string       `json:"updateMask"`
}

type FormSettings struct {
	QuizSettings QuizSettings `json:"quizSettings"`
}

type QuizSettings struct {
	IsQuiz bool `json:"isQuiz"`
}

type CreateItem struct {
	Item     Item     `json:"item"`
	Location Location `json:"location"`
}

type Location struct {
	Index int `json:"index"`
}

type Item struct {
	Title        string       `json:"title"`
	QuestionItem QuestionItem `json:"questionItem"`
}

type QuestionItem struct {
	Question Question `json:"question"`
}

type Question struct {
	Required       bool           `json:"required"`
	Grading        Grading        `json:"grading"`
	ChoiceQuestion ChoiceQuestion `json:"choiceQuestion"`
}

type Grading struct {
	PointValue     int       `json:"pointValue"`
	CorrectAnswers AnswerSet `json:"correctAnswers"`
}

type AnswerSet struct {
	Answers []Answer `json:"answers"`
}

type Answer struct {
	Value string `json:"value"`
}

type ChoiceQuestion struct {
	Type    string   `json:"type"`
	Options []Option `json:"options"`
	Shuffle bool     `json:"shuffle"`
}

type Option struct {
	Value string `json:"value"`
}

// BuildRequests lays out the batch for one draft. Quiz mode must be enabled
// in the same batch before any graded item, so the settings update comes
// first; each question becomes a required radio item worth one point with
// shuffled options.
func BuildRequests(questions []quiz.QuestionRecord) []Request {
	reqs := make([]Request, 0, len(questions)+1)
	reqs = append(reqs, Request{
		UpdateSettings: &UpdateSettings{
			Settings:   FormSettings{QuizSettings: QuizSettings{IsQuiz: true}},
			UpdateMask: "quizSettings.isQuiz",
		},
	})

	for i, q := range questions {
		options := make([]Option, len(q.Options))
		for j, opt := range q.Options {
			options[j] = Option{Value: opt}
		}

		reqs = append(reqs, Request{
			CreateItem: &CreateItem{
				Item: Item{
					Title: q.Question,
					QuestionItem: QuestionItem{
						Question: Question{
							Required: true,
							Grading: Grading{
								PointValue: 1,
								CorrectAnswers: AnswerSet{
									Answers: []Answer{{Value: quiz.CanonicalAnswer(q.Options, q.CorrectAnswer)}},
								},
							},
							ChoiceQuestion: ChoiceQuestion{
								Type:    "RADIO",
								Options: options,
								Shuffle: true,
							},
						},
					},
				},
				Location: Location{Index: i},
			},
		})
	}
	return reqs
}
