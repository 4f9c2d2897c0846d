package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/quizgenai/quizgen-backend/internal/config"
	"github.com/quizgenai/quizgen-backend/internal/quiz"
	"github.com/rs/zerolog"
)

const systemPrompt = `You are a quiz author. Read the provided course material and write multiple-choice questions that test understanding of it. Every question has exactly one correct answer, and the correct answer must be copied verbatim from the options. Submit the questions with the submit_questions tool; do not reply with prose.`

const submitToolName = "submit_questions"

// submitSchema is the payload contract for the forced tool call.
var submitSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"questions": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"question": {"type": "string"},
					"options": {"type": "array", "items": {"type": "string"}, "minItems": 2},
					"correct_answer": {"type": "string"}
				},
				"required": ["question", "options", "correct_answer"]
			}
		}
	},
	"required": ["questions"]
}`)

// Generator produces quiz questions from uploaded material via the OpenAI
// chat API. PDF text and images travel in one multimodal user message; the
// response is a forced submit_questions tool call, so there is no prose to
// parse.
type Generator struct {
	client        *openai.Client
	model         string
	questionCount int
	log           zerolog.Logger
}

// NewGenerator creates a new Generator.
func NewGenerator(cfg *config.Config, log zerolog.Logger) *Generator {
	return &Generator{
		client:        openai.NewClient(cfg.OpenAIKey),
		model:         cfg.OpenAIModel,
		questionCount: cfg.QuestionCount,
		log:           log.With().Str("component", "ai_generator").Logger(),
	}
}

// Generate builds the multimodal prompt from the stored uploads and returns
// the raw questions the model submitted.
func (g *Generator) Generate(ctx context.Context, files []quiz.SourceFile) ([]quiz.RawQuestion, error) {
	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: fmt.Sprintf("Write %d multiple-choice questions from the following material.", g.questionCount),
	}}

	for _, f := range files {
		switch f.Kind {
		case quiz.FileKindDocument:
			text, pages, err := extractPDFText(f.StoredPath)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", f.Name, err)
			}
			g.log.Debug().Str("file", f.Name).Int("pages", pages).Msg("Extracted PDF text")
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: fmt.Sprintf("Document %q:\n\n%s", f.Name, text),
			})
		case quiz.FileKindImage:
			data, err := os.ReadFile(f.StoredPath)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", f.Name, err)
			}
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: imageDataURL(f.ContentType, data),
				},
			})
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        submitToolName,
				Description: "Submit the generated quiz questions.",
				Parameters:  submitSchema,
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: submitToolName},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	questions, err := decodeSubmission(resp.Choices[0].Message.ToolCalls)
	if err != nil {
		return nil, err
	}

	g.log.Info().Int("questions", len(questions)).Msg("Questions generated")
	return questions, nil
}

// decodeSubmission pulls the question payload out of the forced tool call.
func decodeSubmission(calls []openai.ToolCall) ([]quiz.RawQuestion, error) {
	for _, call := range calls {
		if call.Function.Name != submitToolName {
			continue
		}
		var payload struct {
			Questions []quiz.RawQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &payload); err != nil {
			return nil, fmt.Errorf("decode submitted questions: %w", err)
		}
		if len(payload.Questions) == 0 {
			return nil, errors.New("model submitted no questions")
		}
		return payload.Questions, nil
	}
	return nil, errors.New("model did not call submit_questions")
}

func imageDataURL(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}
