package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quizgenai/quizgen-backend/internal/config"
	"github.com/quizgenai/quizgen-backend/internal/handler"
	"github.com/quizgenai/quizgen-backend/internal/quiz"
	"github.com/quizgenai/quizgen-backend/internal/router"
	"github.com/quizgenai/quizgen-backend/internal/service"
	"github.com/quizgenai/quizgen-backend/internal/validator"
	"github.com/rs/zerolog"
)

type generatorFunc func(ctx context.Context, files []quiz.SourceFile) ([]quiz.RawQuestion, error)

func (f generatorFunc) Generate(ctx context.Context, files []quiz.SourceFile) ([]quiz.RawQuestion, error) {
	return f(ctx, files)
}

type publisherFunc func(ctx context.Context, title string, questions []quiz.QuestionRecord) (string, error)

func (f publisherFunc) Publish(ctx context.Context, title string, questions []quiz.QuestionRecord) (string, error) {
	return f(ctx, title, questions)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type snapshot struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Busy  bool   `json:"busy"`
	Files []struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	} `json:"files"`
	Draft *struct {
		Title     string `json:"title"`
		Questions []struct {
			Question      string   `json:"question"`
			Options       []string `json:"options"`
			CorrectAnswer string   `json:"correct_answer"`
		} `json:"questions"`
	} `json:"draft"`
	FormURL string `json:"form_url"`
}

func newTestRouter(t *testing.T, gen service.Generator, pub service.Publisher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	cfg := &config.Config{
		GinMode:            gin.TestMode,
		FrontendURL:        "http://localhost:5173",
		SessionSecret:      "test-secret",
		UploadDir:          t.TempDir(),
		MaxUploadBytes:     10 << 20,
		RateLimitPerMinute: 1000,
	}

	authService := service.NewAuthService(cfg)
	uploadService := service.NewUploadService(cfg)
	draftService := service.NewDraftService(cfg, zerolog.Nop(), uploadService, gen, pub)

	handlers := &router.Handlers{
		Auth:  handler.NewAuthHandler(authService, cfg),
		Draft: handler.NewDraftHandler(draftService),
	}
	return router.SetupRouter(authService, handlers, cfg)
}

func defaultGenerator() service.Generator {
	return generatorFunc(func(ctx context.Context, files []quiz.SourceFile) ([]quiz.RawQuestion, error) {
		return []quiz.RawQuestion{
			{Question: "Capital of France?", Options: []string{"Paris", "London"}, CorrectAnswer: "paris"},
			{Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
		}, nil
	})
}

func defaultPublisher() service.Publisher {
	return publisherFunc(func(ctx context.Context, title string, questions []quiz.QuestionRecord) (string, error) {
		return "https://docs.google.com/forms/d/abc123/edit", nil
	})
}

func do(t *testing.T, r *gin.Engine, method, path string, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v (body %q)", method, path, err, w.Body.String())
	}
	return w, env
}

func doJSON(t *testing.T, r *gin.Engine, method, path, payload string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return do(t, r, method, path, bytes.NewBufferString(payload), "application/json")
}

func decodeSnapshot(t *testing.T, env envelope) snapshot {
	t.Helper()
	var snap snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

// uploadBody builds a multipart body with one file part per [name,
// contentType] pair.
func uploadBody(t *testing.T, files [][2]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f[0]))
		h.Set("Content-Type", f[1])
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("payload")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func createDraft(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/v1/drafts", nil, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create draft: status %d", w.Code)
	}
	return decodeSnapshot(t, env).ID
}

func TestWizardHappyPath(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())
	id := createDraft(t, r)
	base := "/api/v1/drafts/" + id

	// Intake: one PDF and one image.
	body, ct := uploadBody(t, [][2]string{
		{"biology_notes.pdf", "application/pdf"},
		{"diagram.png", "image/png"},
	})
	w, env := do(t, r, http.MethodPost, base+"/files", body, ct)
	if w.Code != http.StatusOK {
		t.Fatalf("upload: status %d body %s", w.Code, w.Body.String())
	}
	snap := decodeSnapshot(t, env)
	if len(snap.Files) != 2 {
		t.Fatalf("files = %d, want 2", len(snap.Files))
	}
	if snap.Files[0].Kind != "document" {
		t.Fatalf("documents must come first, got %q", snap.Files[0].Kind)
	}

	// Generate.
	w, env = do(t, r, http.MethodPost, base+"/generate", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("generate: status %d body %s", w.Code, w.Body.String())
	}
	snap = decodeSnapshot(t, env)
	if snap.State != "editing" {
		t.Fatalf("state = %q, want editing", snap.State)
	}
	if snap.Draft == nil || snap.Draft.Title != "biology notes" {
		t.Fatalf("draft title should derive from the first file, got %+v", snap.Draft)
	}
	if got := snap.Draft.Questions[0].CorrectAnswer; got != "Paris" {
		t.Fatalf("answer should be canonicalized, got %q", got)
	}
	if len(snap.Files) != 0 {
		t.Fatal("files should be discarded after generation")
	}

	// Edit: rename the marked option, the marker follows.
	w, env = doJSON(t, r, http.MethodPatch, base+"/questions/0/options/0", `{"option": "Paris, France"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("set option: status %d body %s", w.Code, w.Body.String())
	}
	snap = decodeSnapshot(t, env)
	if got := snap.Draft.Questions[0].CorrectAnswer; got != "Paris, France" {
		t.Fatalf("answer should follow rename, got %q", got)
	}

	// Reorder 0 -> 1.
	w, env = doJSON(t, r, http.MethodPost, base+"/reorder", `{"from": 0, "to": 1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("reorder: status %d body %s", w.Code, w.Body.String())
	}
	snap = decodeSnapshot(t, env)
	if snap.Draft.Questions[1].Question != "Capital of France?" {
		t.Fatalf("reorder misplaced question: %+v", snap.Draft.Questions)
	}

	// Publish without confirmation while anonymous.
	w, env = do(t, r, http.MethodPost, base+"/publish", nil, "")
	if w.Code != http.StatusPreconditionRequired {
		t.Fatalf("unconfirmed publish: status %d, want 428", w.Code)
	}
	if env.Error == nil || env.Error.Code != "ANONYMOUS_CONFIRMATION_REQUIRED" {
		t.Fatalf("error = %+v", env.Error)
	}

	// Publish with confirmation.
	w, env = doJSON(t, r, http.MethodPost, base+"/publish", `{"confirm_anonymous": true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("publish: status %d body %s", w.Code, w.Body.String())
	}
	snap = decodeSnapshot(t, env)
	if snap.State != "published" {
		t.Fatalf("state = %q, want published", snap.State)
	}
	if snap.FormURL != "https://docs.google.com/forms/d/abc123/edit" {
		t.Fatalf("form URL = %q", snap.FormURL)
	}

	// Reset back to intake.
	w, env = do(t, r, http.MethodPost, base+"/reset", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("reset: status %d", w.Code)
	}
	snap = decodeSnapshot(t, env)
	if snap.State != "intake" || snap.Draft != nil || snap.FormURL != "" {
		t.Fatalf("reset should clear everything, got %+v", snap)
	}
}

func TestUploadLimits(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())
	id := createDraft(t, r)
	base := "/api/v1/drafts/" + id

	body, ct := uploadBody(t, [][2]string{
		{"a.pdf", "application/pdf"},
		{"b.pdf", "application/pdf"},
	})
	w, env := do(t, r, http.MethodPost, base+"/files", body, ct)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if env.Error == nil || env.Error.Code != "TOO_MANY_DOCUMENTS" {
		t.Fatalf("error = %+v", env.Error)
	}

	// The rejected batch admitted nothing.
	w, env = do(t, r, http.MethodGet, base, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: status %d", w.Code)
	}
	if snap := decodeSnapshot(t, env); len(snap.Files) != 0 {
		t.Fatalf("files = %d, want 0 after rejection", len(snap.Files))
	}
}

func TestGenerateWithoutFiles(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())
	id := createDraft(t, r)

	w, env := do(t, r, http.MethodPost, "/api/v1/drafts/"+id+"/generate", nil, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if env.Error == nil || env.Error.Code != "NO_SOURCE_FILES" {
		t.Fatalf("error = %+v", env.Error)
	}
}

func TestGenerationFailureSurfacesUpstreamReason(t *testing.T) {
	gen := generatorFunc(func(ctx context.Context, files []quiz.SourceFile) ([]quiz.RawQuestion, error) {
		return nil, errors.New("model overloaded, try again later")
	})
	r := newTestRouter(t, gen, defaultPublisher())
	id := createDraft(t, r)
	base := "/api/v1/drafts/" + id

	body, ct := uploadBody(t, [][2]string{{"notes.pdf", "application/pdf"}})
	if w, _ := do(t, r, http.MethodPost, base+"/files", body, ct); w.Code != http.StatusOK {
		t.Fatalf("upload: status %d", w.Code)
	}

	w, env := do(t, r, http.MethodPost, base+"/generate", nil, "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if env.Error == nil || env.Error.Code != "GENERATION_FAILED" {
		t.Fatalf("error = %+v", env.Error)
	}
	if !strings.Contains(env.Error.Message, "model overloaded") {
		t.Fatalf("message should carry the upstream reason, got %q", env.Error.Message)
	}

	// Still at intake with the file kept.
	_, env = do(t, r, http.MethodGet, base, nil, "")
	snap := decodeSnapshot(t, env)
	if snap.State != "intake" || len(snap.Files) != 1 {
		t.Fatalf("session should stay at intake with files, got %+v", snap)
	}
}

func TestEditBeforeGenerationRejected(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())
	id := createDraft(t, r)

	w, env := doJSON(t, r, http.MethodPatch, "/api/v1/drafts/"+id+"/title", `{"title": "Too early"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if env.Error == nil || env.Error.Code != "INVALID_STATE" {
		t.Fatalf("error = %+v", env.Error)
	}
}

func TestBadIndexRejected(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())
	id := createDraft(t, r)
	base := "/api/v1/drafts/" + id

	body, ct := uploadBody(t, [][2]string{{"notes.pdf", "application/pdf"}})
	do(t, r, http.MethodPost, base+"/files", body, ct)
	do(t, r, http.MethodPost, base+"/generate", nil, "")

	w, env := doJSON(t, r, http.MethodPatch, base+"/questions/9", `{"question": "?"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if env.Error == nil || env.Error.Code != "INDEX_OUT_OF_RANGE" {
		t.Fatalf("error = %+v", env.Error)
	}
}

func TestUnknownDraftIs404(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())

	w, env := do(t, r, http.MethodGet, "/api/v1/drafts/6f1e0d9c-64f3-4bd1-9b55-0cf1e9a6a001", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if env.Error == nil || env.Error.Code != "DRAFT_NOT_FOUND" {
		t.Fatalf("error = %+v", env.Error)
	}

	w, env = do(t, r, http.MethodGet, "/api/v1/drafts/not-a-uuid", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env.Error == nil || env.Error.Code != "INVALID_ID" {
		t.Fatalf("error = %+v", env.Error)
	}
}

func TestRemoveFileEndpoint(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())
	id := createDraft(t, r)
	base := "/api/v1/drafts/" + id

	body, ct := uploadBody(t, [][2]string{{"notes.pdf", "application/pdf"}})
	do(t, r, http.MethodPost, base+"/files", body, ct)

	w, env := do(t, r, http.MethodDelete, base+"/files/notes.pdf", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("remove: status %d", w.Code)
	}
	if snap := decodeSnapshot(t, env); len(snap.Files) != 0 {
		t.Fatalf("files = %d, want 0", len(snap.Files))
	}

	// Removing an unknown name still succeeds.
	if w, _ := do(t, r, http.MethodDelete, base+"/files/ghost.pdf", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestReorderValidation(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())
	id := createDraft(t, r)
	base := "/api/v1/drafts/" + id

	body, ct := uploadBody(t, [][2]string{{"notes.pdf", "application/pdf"}})
	do(t, r, http.MethodPost, base+"/files", body, ct)
	do(t, r, http.MethodPost, base+"/generate", nil, "")

	// Missing "to".
	w, env := doJSON(t, r, http.MethodPost, base+"/reorder", `{"from": 0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v", env.Error)
	}

	// Position 0 must pass required-field validation.
	w, env = doJSON(t, r, http.MethodPost, base+"/reorder", `{"from": 1, "to": 0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if snap := decodeSnapshot(t, env); snap.Draft.Questions[0].Question != "2+2?" {
		t.Fatalf("reorder to front failed: %+v", snap.Draft.Questions)
	}
}

func TestDiscardDraft(t *testing.T) {
	r := newTestRouter(t, defaultGenerator(), defaultPublisher())
	id := createDraft(t, r)
	base := "/api/v1/drafts/" + id

	if w, _ := do(t, r, http.MethodDelete, base, nil, ""); w.Code != http.StatusOK {
		t.Fatalf("discard: status %d", w.Code)
	}
	if w, _ := do(t, r, http.MethodGet, base, nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 after discard", w.Code)
	}
}
