package quiz

import (
	"errors"
	"strings"
)

// Intake limits for one draft session.
const (
	MaxDocuments = 1
	MaxImages    = 10
)

const documentMIME = "application/pdf"

// Intake rejections. The admitted set is left unchanged when either fires.
var (
	ErrTooManyDocuments = errors.New("only 1 PDF allowed")
	ErrTooManyImages    = errors.New("maximum 10 images allowed")
)

// FileKind partitions source files for limit enforcement.
type FileKind string

const (
	FileKindDocument FileKind = "document"
	FileKindImage    FileKind = "image"
)

// SourceFile is one admitted upload, tracked by name.
type SourceFile struct {
	Name        string   `json:"name"`
	ContentType string   `json:"content_type"`
	Kind        FileKind `json:"kind"`
	Size        int64    `json:"size"`

	// StoredPath is where the uploaded bytes live until generation consumes
	// them. Not part of the client-facing view.
	StoredPath string `json:"-"`
}

// SourceFileSet is the ordered set of admitted files: documents first, then
// images, selection order preserved within each group.
type SourceFileSet []SourceFile

// KindOf classifies a MIME type. ok is false for types intake silently
// drops.
func KindOf(contentType string) (FileKind, bool) {
	switch {
	case contentType == documentMIME:
		return FileKindDocument, true
	case strings.HasPrefix(contentType, "image/"):
		return FileKindImage, true
	}
	return "", false
}

// Admit validates the union of the current set and the incoming files
// against the intake limits. The check is all-or-nothing over the combined
// candidate set: on rejection the current set is returned unchanged and
// nothing from incoming is admitted. Unsupported types are dropped from the
// union without an error, as is a later file reusing a name already tracked
// in the same kind group.
func (s SourceFileSet) Admit(incoming []SourceFile) (SourceFileSet, error) {
	var docs, imgs SourceFileSet
	seen := make(map[string]bool, len(s)+len(incoming))

	candidates := make([]SourceFile, 0, len(s)+len(incoming))
	candidates = append(candidates, s...)
	candidates = append(candidates, incoming...)

	for _, f := range candidates {
		kind, ok := KindOf(f.ContentType)
		if !ok {
			continue
		}
		key := string(kind) + "/" + f.Name
		if seen[key] {
			continue
		}
		seen[key] = true
		f.Kind = kind
		if kind == FileKindDocument {
			docs = append(docs, f)
		} else {
			imgs = append(imgs, f)
		}
	}

	if len(docs) > MaxDocuments {
		return s, ErrTooManyDocuments
	}
	if len(imgs) > MaxImages {
		return s, ErrTooManyImages
	}
	return append(docs, imgs...), nil
}

// Remove drops any tracked file with the given name. Removing an unknown
// name is a no-op.
func (s SourceFileSet) Remove(name string) SourceFileSet {
	out := make(SourceFileSet, 0, len(s))
	for _, f := range s {
		if f.Name != name {
			out = append(out, f)
		}
	}
	return out
}
