package textextractor

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
	"github.com/fairyhunter13/ai-recruit-assistant/pkg/textx"
)

// Local extracts text in-process and implements domain.TextExtractor.
type Local struct {
	roots []string
}

// NewLocal returns an extractor reading uploads under roots (os.TempDir when empty).
func NewLocal(roots ...string) *Local {
	return &Local{roots: roots}
}

// ExtractPath reads the upload at path and returns its text with line structure kept.
func (l *Local) ExtractPath(ctx context.Context, fileName, path string) (string, error) {
	_, span := otel.Tracer("textextractor").Start(ctx, "textextractor.local")
	defer span.End()
	ext := strings.ToLower(filepath.Ext(fileName))
	span.SetAttributes(attribute.String("file.ext", ext))

	if !Supported(fileName) {
		return "", fmt.Errorf("op=textextractor.ExtractPath: %w: unsupported file type %q", domain.ErrInvalidArgument, ext)
	}
	b, err := ReadUpload(path, l.roots...)
	if err != nil {
		return "", err
	}

	var text string
	switch ext {
	case ExtPDF:
		text, err = pdfText(b)
	case ExtDOCX:
		text, err = docxText(b)
	default:
		text = string(b)
	}
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("op=textextractor.ExtractPath: %w: %v", domain.ErrInvalidArgument, err)
	}
	return textx.NormalizeLines(text), nil
}

func pdfText(b []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil || len(rows) == 0 {
			plain, _ := page.GetPlainText(nil)
			sb.WriteString(plain)
			sb.WriteByte('\n')
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

var (
	docxBreak = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	docxTab   = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTag    = regexp.MustCompile(`<[^>]+>`)
)

func docxText(b []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer func() { _ = doc.Close() }()
	raw := doc.Editable().GetContent()
	raw = docxBreak.ReplaceAllString(raw, "\n")
	raw = docxTab.ReplaceAllString(raw, "\t")
	return html.UnescapeString(xmlTag.ReplaceAllString(raw, "")), nil
}
