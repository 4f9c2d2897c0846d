package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/quizgenai/quizgen-backend/internal/quiz"
	"github.com/rs/zerolog"
)

const (
	apiBase = "https://forms.googleapis.com/v1"

	scopeFormsBody = "https://www.googleapis.com/auth/forms.body"
	scopeDrive     = "https://www.googleapis.com/auth/drive"
)

// Client publishes drafts as Google Forms quizzes through a service
// account. Forms it creates are owned by that account, which is why
// anonymous publishing needs an explicit confirmation upstream.
type Client struct {
	http *http.Client
	base string
	log  zerolog.Logger
}

// NewClient builds a Forms client from a service-account key file.
func NewClient(ctx context.Context, credentialsFile string, log zerolog.Logger) (*Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	jwtCfg, err := google.JWTConfigFromJSON(data, scopeFormsBody, scopeDrive)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	return &Client{
		http: oauth2.NewClient(ctx, jwtCfg.TokenSource(ctx)),
		base: apiBase,
		log:  log.With().Str("component", "forms_client").Logger(),
	}, nil
}

// Publish creates a form with the draft title, then applies the quiz
// settings and all questions in one batch. Returns the editor URL.
func (c *Client) Publish(ctx context.Context, title string, questions []quiz.QuestionRecord) (string, error) {
	var created struct {
		FormID string `json:"formId"`
	}
	createBody := map[string]interface{}{
		"info": map[string]string{
			"title":         title,
			"documentTitle": title,
		},
	}
	if err := c.post(ctx, c.base+"/forms", createBody, &created); err != nil {
		return "", fmt.Errorf("create form: %w", err)
	}
	if created.FormID == "" {
		return "", fmt.Errorf("create form: response carried no formId")
	}

	batch := map[string]interface{}{"requests": BuildRequests(questions)}
	url := fmt.Sprintf("%s/forms/%s:batchUpdate", c.base, created.FormID)
	if err := c.post(ctx, url, batch, nil); err != nil {
		return "", fmt.Errorf("populate form: %w", err)
	}

	c.log.Info().Str("form_id", created.FormID).Int("questions", len(questions)).Msg("Form published")
	return fmt.Sprintf("https://docs.google.com/forms/d/%s/edit", created.FormID), nil
}

// post sends one JSON request and decodes the response into out when out is
// non-nil. Non-2xx responses surface the API's own error body.
func (c *Client) post(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("forms api %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
