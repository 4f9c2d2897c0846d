package ai

import (
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func toolCall(name, args string) openai.ToolCall {
	return openai.ToolCall{
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: name, Arguments: args},
	}
}

func TestDecodeSubmission(t *testing.T) {
	calls := []openai.ToolCall{toolCall(submitToolName, `{
		"questions": [
			{"question": "Q1", "options": ["A", "B"], "correct_answer": "A"},
			{"question": "Q2", "options": ["C", "D"], "correct_answer": "D"}
		]
	}`)}

	questions, err := decodeSubmission(calls)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(questions))
	}
	if questions[1].CorrectAnswer != "D" {
		t.Fatalf("answer = %q, want D", questions[1].CorrectAnswer)
	}
}

func TestDecodeSubmissionRejectsEmpty(t *testing.T) {
	if _, err := decodeSubmission([]openai.ToolCall{toolCall(submitToolName, `{"questions": []}`)}); err == nil {
		t.Fatal("empty submission should be an error")
	}
}

func TestDecodeSubmissionRejectsMissingCall(t *testing.T) {
	if _, err := decodeSubmission(nil); err == nil {
		t.Fatal("missing tool call should be an error")
	}
	if _, err := decodeSubmission([]openai.ToolCall{toolCall("other_tool", `{}`)}); err == nil {
		t.Fatal("wrong tool name should be an error")
	}
}

func TestDecodeSubmissionRejectsBadJSON(t *testing.T) {
	if _, err := decodeSubmission([]openai.ToolCall{toolCall(submitToolName, `{not json`)}); err == nil {
		t.Fatal("malformed arguments should be an error")
	}
}

func TestImageDataURL(t *testing.T) {
	url := imageDataURL("image/png", []byte{0x89, 0x50})
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("url = %q", url)
	}
}
