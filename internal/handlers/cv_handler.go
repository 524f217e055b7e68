package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/career-roadmap/internal/models"
	"alfredoptarigan/career-roadmap/internal/repositories"
	"alfredoptarigan/career-roadmap/internal/services"
)

// CVHandler analyzes an uploaded CV against a completed run.
type CVHandler struct {
	runs           *RunHandler
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	pdfParser      services.PDFParserService
	stages         services.StageService
	maxFileSize    int64
}

func NewCVHandler(
	runs *RunHandler,
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	pdfParser services.PDFParserService,
	stages services.StageService,
	maxFileSize int64,
) *CVHandler {
	return &CVHandler{
		runs:           runs,
		docRepo:        docRepo,
		storageService: storageService,
		pdfParser:      pdfParser,
		stages:         stages,
		maxFileSize:    maxFileSize,
	}
}

type CVAnalysisResponse struct {
	Document models.UploadResponse   `json:"document"`
	Analysis models.CVAnalysisResult `json:"analysis"`
}

// HandleAnalyze handles POST /runs/:id/cv
func (h *CVHandler) HandleAnalyze(c *fiber.Ctx) error {
	run, err := h.runs.findRun(c)
	if err != nil {
		return err
	}
	if run.Status != models.RunCompleted || run.FinalRoadmap == nil {
		return fiber.NewError(fiber.StatusConflict, "Pipeline run has not completed")
	}

	var roadmap models.Roadmap
	if err := json.Unmarshal([]byte(*run.FinalRoadmap), &roadmap); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "stored roadmap is unreadable")
	}
	var skills models.SkillSet
	if run.SkillsJSON != nil && *run.SkillsJSON != "" {
		if err := json.Unmarshal([]byte(*run.SkillsJSON), &skills); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "stored skills are unreadable")
		}
	}

	cvFile, err := c.FormFile("cv")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cv file is required")
	}
	if cvFile.Size > h.maxFileSize {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("CV file too large. Max size: %d bytes", h.maxFileSize))
	}

	filename, filePath, err := h.storageService.SaveFile(cvFile, "cv")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to save CV file: %v", err))
	}

	doc := models.Document{
		ID:               uuid.New(),
		RunID:            &run.ID,
		Filename:         filename,
		OriginalFileName: cvFile.Filename,
		FileType:         "cv",
		FilePath:         filePath,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := h.docRepo.Create(&doc); err != nil {
		// cleanup the upload when the record cannot be stored
		_ = h.storageService.DeleteFile(filename)
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("failed to save CV document record: %v", err))
	}

	cvText, err := h.pdfParser.ExtractText(filePath)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("failed to read CV: %v", err))
	}

	return c.JSON(CVAnalysisResponse{
		Document: models.UploadResponse{
			ID:           doc.ID.String(),
			Filename:     doc.Filename,
			OriginalName: doc.OriginalFileName,
			FileType:     doc.FileType,
		},
		Analysis: h.stages.AnalyzeCV(c.UserContext(), cvText, skills, roadmap),
	})
}
