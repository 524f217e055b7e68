package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"alfredoptarigan/career-roadmap/internal/models"
)

// ProcessJobDescription normalizes a job description given as text or as a
// .txt or .pdf file. The file wins when both are given. A named file that does
// not exist, or no input at all, is ErrMissingInput.
func ProcessJobDescription(text, file string, pdf PDFParserService) (models.JobDescription, error) {
	if file != "" {
		loaded, err := loadJobDescriptionFile(file, pdf)
		if err != nil {
			return models.JobDescription{}, err
		}
		text = loaded
	}

	clean := strings.Join(strings.Fields(text), " ")
	if clean == "" {
		return models.JobDescription{}, fmt.Errorf("%w: job description text or file is required", ErrMissingInput)
	}

	return models.JobDescription{
		JobDescription: clean,
		WordCount:      len(strings.Fields(clean)),
		CharCount:      len([]rune(clean)),
	}, nil
}

func loadJobDescriptionFile(path string, pdf PDFParserService) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: file not found: %s", ErrMissingInput, path)
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		if pdf == nil {
			return "", fmt.Errorf("no PDF parser configured for %s", path)
		}
		return pdf.ExtractText(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
