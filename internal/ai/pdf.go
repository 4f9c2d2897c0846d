package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// Only the first 20 pages feed the prompt; longer documents are
	// truncated, not rejected.
	maxPDFPages = 20

	// Pages yielding fewer extractable characters than this are treated as
	// scanned images and skipped.
	minPageChars = 50
)

// extractPDFText returns the concatenated text of up to maxPDFPages pages
// and the number of pages that contributed. A document with no usable text
// at all is an error so the user learns why generation cannot proceed.
func extractPDFText(path string) (string, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	used := 0
	total := r.NumPage()
	if total > maxPDFPages {
		total = maxPDFPages
	}

	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if len(strings.TrimSpace(text)) < minPageChars {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		used++
	}

	if used == 0 {
		return "", 0, errors.New("no extractable text, the document looks scanned")
	}
	return sb.String(), used, nil
}
