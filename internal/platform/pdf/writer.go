package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

const (
	lineWidthMM  = 190
	lineHeightMM = 10
)

// LineWriter lays out one text line per cell on A4 pages. fpdf breaks pages
// automatically, so any number of lines fits.
type LineWriter struct {
	Font     string
	FontSize float64
}

func NewLineWriter() *LineWriter {
	return &LineWriter{Font: "Arial", FontSize: 12}
}

func (w *LineWriter) WriteLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pdf.WriteLines mkdir: %w", err)
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()
	doc.SetFont(w.Font, "", w.FontSize)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	for _, line := range lines {
		doc.CellFormat(lineWidthMM, lineHeightMM, tr(line), "", 1, "L", false, 0, "")
	}
	if err := doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("pdf.WriteLines %s: %w", path, err)
	}
	return nil
}
