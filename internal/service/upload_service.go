package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/quizgenai/quizgen-backend/internal/config"
	"github.com/quizgenai/quizgen-backend/internal/quiz"
)

// Upload errors surfaced to the intake step.
var (
	ErrFileTooLarge = errors.New("file too large")
)

// UploadService stashes intake uploads on disk until generation consumes
// them. Files live under UploadDir/<draft-id>/ and are deleted together
// with the draft session; nothing here outlives a wizard cycle.
type UploadService struct {
	cfg *config.Config
}

// NewUploadService creates a new UploadService.
func NewUploadService(cfg *config.Config) *UploadService {
	return &UploadService{cfg: cfg}
}

// Save writes one uploaded file and returns its source-file record. The
// caller classifies the type; Save only enforces the size cap and assigns a
// collision-free stored name.
func (s *UploadService) Save(draftID uuid.UUID, header *multipart.FileHeader) (quiz.SourceFile, error) {
	if header.Size > s.cfg.MaxUploadBytes {
		return quiz.SourceFile{}, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	dir := filepath.Join(s.cfg.UploadDir, draftID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return quiz.SourceFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	src, err := header.Open()
	if err != nil {
		return quiz.SourceFile{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	destPath := filepath.Join(dir, uuid.New().String()+filepath.Ext(header.Filename))
	dst, err := os.Create(destPath)
	if err != nil {
		return quiz.SourceFile{}, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(destPath)
		return quiz.SourceFile{}, fmt.Errorf("write file: %w", err)
	}

	return quiz.SourceFile{
		Name:        filepath.Base(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		StoredPath:  destPath,
	}, nil
}

// Delete removes one stored file. Best effort: a file that is already gone
// is fine.
func (s *UploadService) Delete(f quiz.SourceFile) {
	if f.StoredPath != "" {
		_ = os.Remove(f.StoredPath)
	}
}

// DeleteAll removes every stored file for a draft session.
func (s *UploadService) DeleteAll(draftID uuid.UUID) {
	_ = os.RemoveAll(filepath.Join(s.cfg.UploadDir, draftID.String()))
}
