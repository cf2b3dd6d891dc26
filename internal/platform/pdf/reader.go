// Package pdf adapts the PDF libraries used by the upload ingestor and the
// report generator.
package pdf

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCounter counts pages with pdfcpu, without rasterizing anything.
type PageCounter struct{}

func NewPageCounter() *PageCounter {
	return &PageCounter{}
}

func (PageCounter) CountPages(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdf.CountPages %s: %w", path, err)
	}
	return n, nil
}

// Rasterizer renders PDF pages to PNG files through MuPDF.
type Rasterizer struct{}

func NewRasterizer() *Rasterizer {
	return &Rasterizer{}
}

// RenderPages opens the PDF at path and calls target(i) for every page index i
// (0-based) to get the output file for that page. It returns the page count.
func (Rasterizer) RenderPages(path string, target func(page int) string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("pdf.RenderPages open %s: %w", path, err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	for i := 0; i < pages; i++ {
		img, err := doc.Image(i)
		if err != nil {
			return i, fmt.Errorf("pdf.RenderPages page %d: %w", i, err)
		}
		if err := writePNG(target(i), img); err != nil {
			return i, err
		}
	}
	return pages, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pdf.writePNG create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("pdf.writePNG encode %s: %w", path, err)
	}
	return f.Close()
}
