package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Artifact file names written for every pipeline run.
const (
	JobDescriptionFile = "job_description.json"
	SkillsFile         = "extracted_skills.json"
	RoadmapFile        = "roadmap.json"
	EvaluationFile     = "evaluated_roadmap.json"
	FinalRoadmapFile   = "final_roadmap.json"
)

// ErrMissingInput is returned when a required input text or file is absent.
var ErrMissingInput = errors.New("missing input")

type StorageService interface {
	NewSession() (string, error)
	WriteJSON(dir, name string, v interface{}) (string, error)
	ReadJSON(path string, v interface{}) error
	SaveFile(file *multipart.FileHeader, fileType string) (string, string, error)
	DeleteFile(filename string) error
	EnsureUploadDir() error
}

type storageService struct {
	outputDir  string
	uploadPath string
	now        func() time.Time
}

func NewStorageService(outputDir, uploadPath string) StorageService {
	return &storageService{
		outputDir:  outputDir,
		uploadPath: uploadPath,
		now:        time.Now,
	}
}

// NewSession creates <outputDir>/session_<YYYYMMDD_HHMMSS>.
func (s *storageService) NewSession() (string, error) {
	dir := filepath.Join(s.outputDir, "session_"+s.now().Format("20060102_150405"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}
	return dir, nil
}

// WriteJSON overwrites dir/name with the indented JSON encoding of v.
func (s *storageService) WriteJSON(dir, name string, v interface{}) (string, error) {
	path := filepath.Join(dir, name)
	if err := WriteJSONFile(path, v); err != nil {
		return "", err
	}
	return path, nil
}

func (s *storageService) ReadJSON(path string, v interface{}) error {
	return ReadJSONFile(path, v)
}

func WriteJSONFile(path string, v interface{}) error {
	data, err := EncodeJSON(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func ReadJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: file not found: %s", ErrMissingInput, path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// EncodeJSON is the artifact encoding: two-space indent, no HTML escaping.
func EncodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) SaveFile(file *multipart.FileHeader, fileType string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return "", "", fmt.Errorf("invalid file extension: %s", ext)
	}

	uniqueFilename := fmt.Sprintf("%s_%s%s", fileType, uuid.New().String(), ext)
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	return uniqueFilename, filePath, nil
}

func (s *storageService) DeleteFile(filename string) error {
	filePath := filepath.Join(s.uploadPath, filename)
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
