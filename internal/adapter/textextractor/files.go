// Package textextractor turns uploaded resumes into plain text.
//
// PDF and DOCX files are decoded in-process; the tika subpackage offloads the
// same work to an Apache Tika server when one is configured.
package textextractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

// Supported upload extensions.
const (
	ExtPDF  = ".pdf"
	ExtDOCX = ".docx"
	ExtTXT  = ".txt"
)

// MIME types of the supported extensions.
var contentTypes = map[string]string{
	ExtPDF:  "application/pdf",
	ExtDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	ExtTXT:  "text/plain",
}

// ContentType returns the MIME type of a supported file name, or "".
func ContentType(fileName string) string {
	return contentTypes[strings.ToLower(filepath.Ext(fileName))]
}

// Supported reports whether fileName has an extension the extractors handle.
func Supported(fileName string) bool { return ContentType(fileName) != "" }

// ReadUpload reads path after checking it lies under one of roots. Uploads are
// staged in the temp dir, so an empty roots list allows os.TempDir only.
func ReadUpload(path string, roots ...string) ([]byte, error) {
	if len(roots) == 0 {
		roots = []string{os.TempDir()}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("op=textextractor.ReadUpload: %w", err)
	}
	abs = filepath.Clean(abs)
	for _, root := range roots {
		root, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(filepath.Clean(root), abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
			continue
		}
		b, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return nil, fmt.Errorf("op=textextractor.ReadUpload: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("op=textextractor.ReadUpload: %w: path outside upload roots", domain.ErrInvalidArgument)
}
