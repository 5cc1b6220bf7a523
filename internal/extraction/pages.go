package extraction

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

const jpegQuality = 85

// PreparePages turns fetched objects into the ordered page list the oracle
// consumes. PDF objects are rendered page by page to JPEG; images pass
// through unchanged. Ordering: storage-path order, then PDF page order.
func PreparePages(objects []Page, logger *zap.Logger) ([]Page, error) {
	var pages []Page

	for i, obj := range objects {
		if isPDF(obj) {
			rendered, err := renderPDF(obj.Data, logger)
			if err != nil {
				return nil, fmt.Errorf("object %d: %w", i, err)
			}
			pages = append(pages, rendered...)
			continue
		}
		pages = append(pages, obj)
	}

	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	return pages, nil
}

func isPDF(obj Page) bool {
	if strings.EqualFold(obj.MIMEType, "application/pdf") {
		return true
	}
	return bytes.HasPrefix(obj.Data, []byte("%PDF-"))
}

// renderPDF rasterizes every PDF page to a JPEG via mupdf
func renderPDF(data []byte, logger *zap.Logger) ([]Page, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	logger.Debug("Rendering PDF", zap.Int("total_pages", pageCount))

	var pages []Page
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		img, err := doc.Image(pageNum)
		if err != nil {
			return nil, fmt.Errorf("failed to render PDF page %d: %w", pageNum+1, err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode PDF page %d: %w", pageNum+1, err)
		}

		pages = append(pages, Page{
			Data:     buf.Bytes(),
			MIMEType: "image/jpeg",
		})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("PDF has no renderable pages")
	}
	return pages, nil
}
