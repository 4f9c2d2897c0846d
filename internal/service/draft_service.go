package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quizgenai/quizgen-backend/internal/config"
	"github.com/quizgenai/quizgen-backend/internal/model"
	"github.com/quizgenai/quizgen-backend/internal/quiz"
	"github.com/rs/zerolog"
)

// Generator converts a set of source files into raw questions. Implemented
// by the AI backend; faked in tests.
type Generator interface {
	Generate(ctx context.Context, files []quiz.SourceFile) ([]quiz.RawQuestion, error)
}

// Publisher turns a finished draft into a hosted form and returns its edit
// URL.
type Publisher interface {
	Publish(ctx context.Context, title string, questions []quiz.QuestionRecord) (string, error)
}

// Draft service errors.
var (
	ErrDraftNotFound        = errors.New("draft session not found")
	ErrNoSourceFiles        = errors.New("no source files to generate from")
	ErrAnonymousUnconfirmed = errors.New("anonymous publish not confirmed")
	ErrGenerationFailed     = errors.New("generation failed")
	ErrPublishFailed        = errors.New("publish failed")
)

// Detail extracts the collaborator-provided reason behind a wrapped
// sentinel, or "" when there is none. Used to surface upstream failure
// messages verbatim.
func Detail(err, sentinel error) string {
	prefix := sentinel.Error() + ": "
	if msg := err.Error(); strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return ""
}

// draftSession is one authoring cycle. The mutex makes the workflow a
// single-mutator aggregate: every operation runs start to finish under it,
// except the two external calls, which release it and hold the workflow's
// busy flag instead.
type draftSession struct {
	id        uuid.UUID
	mu        sync.Mutex
	wf        *quiz.Workflow
	updatedAt time.Time
}

// DraftService owns every live draft session. Sessions exist only in this
// map; a restart loses them all, which is the intended lifecycle.
type DraftService struct {
	cfg       *config.Config
	log       zerolog.Logger
	uploads   *UploadService
	generator Generator
	publisher Publisher

	mu       sync.Mutex
	sessions map[uuid.UUID]*draftSession
}

// NewDraftService creates a new DraftService.
func NewDraftService(cfg *config.Config, log zerolog.Logger, uploads *UploadService, generator Generator, publisher Publisher) *DraftService {
	return &DraftService{
		cfg:       cfg,
		log:       log.With().Str("component", "draft_service").Logger(),
		uploads:   uploads,
		generator: generator,
		publisher: publisher,
		sessions:  make(map[uuid.UUID]*draftSession),
	}
}

// Create starts a new authoring session at the intake step.
func (s *DraftService) Create() model.DraftSnapshot {
	sess := &draftSession{
		id:        uuid.New(),
		wf:        quiz.NewWorkflow(),
		updatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.log.Info().Str("draft_id", sess.id.String()).Msg("Draft session created")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.snapshotLocked(sess)
}

// Get returns the current view of a session.
func (s *DraftService) Get(id uuid.UUID) (model.DraftSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return model.DraftSnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.snapshotLocked(sess), nil
}

// Discard drops a session and its stored uploads entirely.
func (s *DraftService) Discard(id uuid.UUID) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrDraftNotFound
	}
	s.uploads.DeleteAll(id)
	s.log.Info().Str("draft_id", id.String()).Msg("Draft session discarded")
	return nil
}

// AdmitFiles runs the intake check over the union of tracked and incoming
// files. All-or-nothing: an overflow admits nothing and leaves both the
// tracked set and the stored bytes untouched.
func (s *DraftService) AdmitFiles(id uuid.UUID, headers []*multipart.FileHeader) (model.DraftSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return model.DraftSnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.wf.Busy() {
		return s.snapshotLocked(sess), quiz.ErrCallInFlight
	}
	if err := sess.wf.RequireState(quiz.StateIntake); err != nil {
		return s.snapshotLocked(sess), err
	}

	saved := make([]quiz.SourceFile, 0, len(headers))
	for _, h := range headers {
		if _, ok := quiz.KindOf(h.Header.Get("Content-Type")); !ok {
			continue // unsupported types are dropped, not errors
		}
		f, err := s.uploads.Save(id, h)
		if err != nil {
			for _, g := range saved {
				s.uploads.Delete(g)
			}
			return s.snapshotLocked(sess), err
		}
		saved = append(saved, f)
	}

	newSet, err := sess.wf.Files.Admit(saved)
	if err != nil {
		for _, g := range saved {
			s.uploads.Delete(g)
		}
		return s.snapshotLocked(sess), err
	}

	// Drop stored bytes for incoming files the set did not keep
	// (duplicate names).
	kept := make(map[string]bool, len(newSet))
	for _, f := range newSet {
		kept[f.StoredPath] = true
	}
	for _, f := range saved {
		if !kept[f.StoredPath] {
			s.uploads.Delete(f)
		}
	}

	sess.wf.Files = newSet
	sess.updatedAt = time.Now()
	return s.snapshotLocked(sess), nil
}

// RemoveFile drops a tracked file by name. Unknown names are a no-op.
func (s *DraftService) RemoveFile(id uuid.UUID, name string) (model.DraftSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return model.DraftSnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.wf.Busy() {
		return s.snapshotLocked(sess), quiz.ErrCallInFlight
	}
	if err := sess.wf.RequireState(quiz.StateIntake); err != nil {
		return s.snapshotLocked(sess), err
	}

	for _, f := range sess.wf.Files {
		if f.Name == name {
			s.uploads.Delete(f)
		}
	}
	sess.wf.Files = sess.wf.Files.Remove(name)
	sess.updatedAt = time.Now()
	return s.snapshotLocked(sess), nil
}

// Generate runs the external generation call and, on success, advances the
// session to editing with the normalized draft. On failure the session
// stays at intake with its file set intact so the user can retry.
func (s *DraftService) Generate(ctx context.Context, id uuid.UUID) (model.DraftSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return model.DraftSnapshot{}, err
	}

	sess.mu.Lock()
	if err := sess.wf.RequireState(quiz.StateIntake); err != nil {
		snap := s.snapshotLocked(sess)
		sess.mu.Unlock()
		return snap, err
	}
	if len(sess.wf.Files) == 0 {
		snap := s.snapshotLocked(sess)
		sess.mu.Unlock()
		return snap, ErrNoSourceFiles
	}
	if err := sess.wf.BeginCall(); err != nil {
		snap := s.snapshotLocked(sess)
		sess.mu.Unlock()
		return snap, err
	}
	files := append([]quiz.SourceFile(nil), sess.wf.Files...)
	sess.mu.Unlock()

	raw, genErr := s.generator.Generate(ctx, files)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.wf.EndCall()
	sess.updatedAt = time.Now()

	if genErr != nil {
		s.log.Error().Err(genErr).Str("draft_id", id.String()).Msg("Generation failed")
		return s.snapshotLocked(sess), fmt.Errorf("%w: %s", ErrGenerationFailed, genErr)
	}

	draft := quiz.Normalize(raw)
	draft.Title = quiz.TitleFromFilename(files[0].Name)
	if err := sess.wf.CompleteGeneration(draft); err != nil {
		return s.snapshotLocked(sess), err
	}
	s.uploads.DeleteAll(sess.id)

	s.log.Info().
		Str("draft_id", id.String()).
		Int("questions", len(draft.Questions)).
		Msg("Draft generated")
	return s.snapshotLocked(sess), nil
}

// Publish hands a snapshot of the draft to the publishing service. An
// anonymous caller must have confirmed service-account attribution first;
// declining means this method is simply never called. Failure leaves the
// session in editing with the draft fully intact.
func (s *DraftService) Publish(ctx context.Context, id uuid.UUID, ident *model.Identity, confirmedAnonymous bool) (model.DraftSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return model.DraftSnapshot{}, err
	}

	sess.mu.Lock()
	if err := sess.wf.RequireState(quiz.StateEditing); err != nil {
		snap := s.snapshotLocked(sess)
		sess.mu.Unlock()
		return snap, err
	}
	if ident == nil && !confirmedAnonymous {
		snap := s.snapshotLocked(sess)
		sess.mu.Unlock()
		return snap, ErrAnonymousUnconfirmed
	}
	if err := sess.wf.BeginCall(); err != nil {
		snap := s.snapshotLocked(sess)
		sess.mu.Unlock()
		return snap, err
	}

	title := sess.wf.Draft.Title
	if strings.TrimSpace(title) == "" {
		title = quiz.DefaultTitle
	}
	questions := copyQuestions(sess.wf.Draft.Questions)
	sess.mu.Unlock()

	formURL, pubErr := s.publisher.Publish(ctx, title, questions)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.wf.EndCall()
	sess.updatedAt = time.Now()

	if pubErr != nil {
		s.log.Error().Err(pubErr).Str("draft_id", id.String()).Msg("Publish failed")
		return s.snapshotLocked(sess), fmt.Errorf("%w: %s", ErrPublishFailed, pubErr)
	}

	if err := sess.wf.CompletePublish(formURL); err != nil {
		return s.snapshotLocked(sess), err
	}

	s.log.Info().
		Str("draft_id", id.String()).
		Str("form_url", formURL).
		Bool("anonymous", ident == nil).
		Msg("Draft published")
	return s.snapshotLocked(sess), nil
}

// Reset starts the session over from any step: empty file set, no draft,
// default title.
func (s *DraftService) Reset(id uuid.UUID) (model.DraftSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return model.DraftSnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.wf.Busy() {
		return s.snapshotLocked(sess), quiz.ErrCallInFlight
	}

	s.uploads.DeleteAll(sess.id)
	sess.wf.Reset()
	sess.updatedAt = time.Now()
	return s.snapshotLocked(sess), nil
}

// ─── Editing operations ─────────────────────────────────────────────────────

// SetTitle renames the draft.
func (s *DraftService) SetTitle(id uuid.UUID, title string) (model.DraftSnapshot, error) {
	return s.editDraft(id, func(d *quiz.QuizDraft) error {
		d.SetTitle(title)
		return nil
	})
}

// SetQuestionText replaces one question's text.
func (s *DraftService) SetQuestionText(id uuid.UUID, qi int, text string) (model.DraftSnapshot, error) {
	return s.editDraft(id, func(d *quiz.QuizDraft) error {
		return d.SetQuestionText(qi, text)
	})
}

// SetOptionText replaces one option's text, keeping the correct-answer
// marker in step.
func (s *DraftService) SetOptionText(id uuid.UUID, qi, oi int, text string) (model.DraftSnapshot, error) {
	return s.editDraft(id, func(d *quiz.QuizDraft) error {
		return d.SetOptionText(qi, oi, text)
	})
}

// MarkCorrect marks the given live option text as the correct answer.
func (s *DraftService) MarkCorrect(id uuid.UUID, qi int, option string) (model.DraftSnapshot, error) {
	return s.editDraft(id, func(d *quiz.QuizDraft) error {
		return d.MarkCorrect(qi, option)
	})
}

// AddQuestion appends a scaffold question.
func (s *DraftService) AddQuestion(id uuid.UUID) (model.DraftSnapshot, error) {
	return s.editDraft(id, func(d *quiz.QuizDraft) error {
		d.AddQuestion()
		return nil
	})
}

// RemoveQuestion deletes one question.
func (s *DraftService) RemoveQuestion(id uuid.UUID, qi int) (model.DraftSnapshot, error) {
	return s.editDraft(id, func(d *quiz.QuizDraft) error {
		return d.RemoveQuestion(qi)
	})
}

// ClearQuestions empties the draft. Still a valid editing state.
func (s *DraftService) ClearQuestions(id uuid.UUID) (model.DraftSnapshot, error) {
	return s.editDraft(id, func(d *quiz.QuizDraft) error {
		d.ClearAll()
		return nil
	})
}

// Reorder commits a completed drag gesture.
func (s *DraftService) Reorder(id uuid.UUID, from, to int) (model.DraftSnapshot, error) {
	return s.editDraft(id, func(d *quiz.QuizDraft) error {
		return d.Reorder(from, to)
	})
}

// ReapIdle evicts sessions idle for longer than ttl, skipping any with an
// external call in flight. Returns the number evicted.
func (s *DraftService) ReapIdle(ttl time.Duration) int {
	s.mu.Lock()
	candidates := make([]*draftSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		candidates = append(candidates, sess)
	}
	s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	reaped := 0
	for _, sess := range candidates {
		sess.mu.Lock()
		expired := !sess.wf.Busy() && sess.updatedAt.Before(cutoff)
		sess.mu.Unlock()
		if !expired {
			continue
		}

		s.mu.Lock()
		delete(s.sessions, sess.id)
		s.mu.Unlock()
		s.uploads.DeleteAll(sess.id)
		reaped++
	}
	return reaped
}

// ─── Internals ──────────────────────────────────────────────────────────────

func (s *DraftService) session(id uuid.UUID) (*draftSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return sess, nil
}

// editDraft runs one editing-step mutation under the session lock, locked
// out while an external call is pending.
func (s *DraftService) editDraft(id uuid.UUID, fn func(d *quiz.QuizDraft) error) (model.DraftSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return model.DraftSnapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.wf.Busy() {
		return s.snapshotLocked(sess), quiz.ErrCallInFlight
	}
	if err := sess.wf.RequireState(quiz.StateEditing); err != nil {
		return s.snapshotLocked(sess), err
	}
	if err := fn(sess.wf.Draft); err != nil {
		return s.snapshotLocked(sess), err
	}
	sess.updatedAt = time.Now()
	return s.snapshotLocked(sess), nil
}

// snapshotLocked copies the session state; the caller holds sess.mu. The
// copy is what handlers serialize, so later mutations never race encoding.
func (s *DraftService) snapshotLocked(sess *draftSession) model.DraftSnapshot {
	files := make([]quiz.SourceFile, len(sess.wf.Files))
	copy(files, sess.wf.Files)

	snap := model.DraftSnapshot{
		ID:        sess.id.String(),
		State:     sess.wf.State,
		Busy:      sess.wf.Busy(),
		Files:     files,
		FormURL:   sess.wf.FormURL,
		UpdatedAt: sess.updatedAt,
	}
	if sess.wf.Draft != nil {
		snap.Draft = &quiz.QuizDraft{
			Title:     sess.wf.Draft.Title,
			Questions: copyQuestions(sess.wf.Draft.Questions),
		}
	}
	return snap
}

func copyQuestions(questions []quiz.QuestionRecord) []quiz.QuestionRecord {
	out := make([]quiz.QuestionRecord, len(questions))
	for i, q := range questions {
		out[i] = quiz.QuestionRecord{
			Question:      q.Question,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: q.CorrectAnswer,
		}
	}
	return out
}
