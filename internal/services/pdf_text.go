package services

import (
	"fmt"
	"io"
	"strings"

	apperrors "flashcards_go_backend/internal/errors"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText returns the plain text of every page, pages separated by a
// blank line.
func ExtractPDFText(r io.ReaderAt, size int64) (string, error) {
	reader, err := openPDF(r, size)
	if err != nil {
		return "", apperrors.New400Error(fmt.Sprintf("Failed to open PDF: %v", err))
	}

	var content strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		p := reader.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		content.WriteString(text)
		content.WriteString("\n\n")
	}

	text := strings.TrimSpace(content.String())
	if text == "" {
		return "", apperrors.New400Error("No text content extracted from PDF")
	}
	return text, nil
}

// openPDF guards against the parser panicking on corrupt input.
func openPDF(r io.ReaderAt, size int64) (reader *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reader, err = nil, fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	return pdf.NewReader(r, size)
}
