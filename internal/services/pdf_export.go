package services

import (
	"fmt"
	"io"
	"strings"

	"flashcards_go_backend/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// cp1252Extras are the printable cp1252 characters outside Latin-1.
const cp1252Extras = "€‚ƒ„…†‡ˆ‰Š‹ŒŽ‘’“”•–—˜™š›œžŸ"

// printablePDF reports whether every string in the collection can be drawn
// with the cp1252 core fonts. Anything else would render as garbage.
func printablePDF(collection *models.Collection) bool {
	if !printableCP1252(collection.Name) {
		return false
	}
	for _, card := range collection.Flashcards {
		if !printableCP1252(card.Front) || !printableCP1252(card.Back) {
			return false
		}
	}
	return true
}

func printableCP1252(s string) bool {
	for _, r := range s {
		switch {
		case r < 0x80, r >= 0xA0 && r <= 0xFF:
		case strings.ContainsRune(cp1252Extras, r):
		default:
			return false
		}
	}
	return true
}

// WriteCollectionPDF renders one block per card: the question in bold, the
// answer beneath it. Text is encoded as cp1252 for the core fonts; callers
// check printablePDF first.
func WriteCollectionPDF(w io.Writer, collection *models.Collection) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetTitle(collection.Name, true)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	doc.SetFont("Arial", "B", 18)
	doc.CellFormat(0, 10, tr(collection.Name), "", 1, "L", false, 0, "")
	doc.SetFont("Arial", "", 10)
	doc.CellFormat(0, 6, fmt.Sprintf("%d flashcards", len(collection.Flashcards)), "", 1, "L", false, 0, "")
	doc.Ln(4)

	for i, card := range collection.Flashcards {
		doc.SetFont("Arial", "B", 12)
		doc.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, card.Front)), "", "L", false)
		doc.SetFont("Arial", "", 11)
		doc.MultiCell(0, 6, tr(card.Back), "", "L", false)
		doc.Ln(4)
	}

	if err := doc.Error(); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return doc.Output(w)
}
