package services

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFParserService extracts text from job description and CV files.
type PDFParserService interface {
	ExtractText(filePath string) (string, error)
	ExtractPages(filePath string) (*PDFContent, error)
}

type PDFContent struct {
	Pages    []string
	FilePath string
}

// Text joins the pages with a page header each.
func (c *PDFContent) Text() string {
	var b strings.Builder
	for i, page := range c.Pages {
		fmt.Fprintf(&b, "--- Page %d ---\n%s\n\n", i+1, page)
	}
	return b.String()
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

func (p *pdfParserService) ExtractText(filePath string) (string, error) {
	content, err := p.ExtractPages(filePath)
	if err != nil {
		return "", err
	}
	return CleanText(strings.Join(content.Pages, "\n\n")), nil
}

func (p *pdfParserService) ExtractPages(filePath string) (*PDFContent, error) {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: file not found: %s", ErrMissingInput, filePath)
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	content := &PDFContent{FilePath: filePath}
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		// unreadable pages are skipped
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		content.Pages = append(content.Pages, text)
	}

	if strings.TrimSpace(strings.Join(content.Pages, "")) == "" {
		return nil, fmt.Errorf("no text content found in PDF")
	}
	return content, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
