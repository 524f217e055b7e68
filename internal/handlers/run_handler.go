package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/career-roadmap/internal/models"
	"alfredoptarigan/career-roadmap/internal/repositories"
	"alfredoptarigan/career-roadmap/internal/services"
)

// Enqueuer hands a stored run to the background worker.
type Enqueuer interface {
	EnqueueRun(runID uuid.UUID)
}

type RunHandler struct {
	runRepo  repositories.RunRepository
	worker   Enqueuer
	answerer services.Answerer
}

func NewRunHandler(
	runRepo repositories.RunRepository,
	worker Enqueuer,
	answerer services.Answerer,
) *RunHandler {
	return &RunHandler{
		runRepo:  runRepo,
		worker:   worker,
		answerer: answerer,
	}
}

// HandleCreate handles POST /runs
func (h *RunHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateRunRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}

	jd, err := services.ProcessJobDescription(req.JobDescription, "", nil)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "job_description is required")
	}

	run := &models.PipelineRun{
		ID:             uuid.New(),
		JobDescription: jd.JobDescription,
		Status:         models.RunQueued,
		State:          models.StateStarted,
	}
	if err := h.runRepo.Create(run); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create pipeline run")
	}

	h.worker.EnqueueRun(run.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.CreateRunResponse{
		ID:     run.ID.String(),
		Status: string(models.RunQueued),
	})
}

// HandleGet handles GET /runs/:id
func (h *RunHandler) HandleGet(c *fiber.Ctx) error {
	run, err := h.findRun(c)
	if err != nil {
		return err
	}

	response := models.RunResponse{
		ID:     run.ID.String(),
		Status: string(run.Status),
		State:  string(run.State),
	}
	if run.Degraded != "" {
		response.Degraded = strings.Split(run.Degraded, ",")
	}
	if run.Status == models.RunCompleted {
		response.Skills = rawJSON(run.SkillsJSON)
		response.FinalRoadmap = rawJSON(run.FinalRoadmap)
	}
	if run.Status == models.RunFailed {
		response.ErrorMessage = run.ErrorMessage
	}

	return c.JSON(response)
}

// HandleAsk handles POST /runs/:id/ask
func (h *RunHandler) HandleAsk(c *fiber.Ctx) error {
	run, err := h.findRun(c)
	if err != nil {
		return err
	}
	if run.Status != models.RunCompleted || run.FinalRoadmap == nil {
		return fiber.NewError(fiber.StatusConflict, "Pipeline run has not completed")
	}

	var req models.AskRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "question is required")
	}

	var roadmap models.Roadmap
	if err := json.Unmarshal([]byte(*run.FinalRoadmap), &roadmap); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "stored roadmap is unreadable")
	}

	var skills *models.SkillSet
	if req.IncludeSkills && run.SkillsJSON != nil && *run.SkillsJSON != "" {
		var s models.SkillSet
		if err := json.Unmarshal([]byte(*run.SkillsJSON), &s); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "stored skills are unreadable")
		}
		skills = &s
	}

	answer := h.answerer.AnswerQuestion(c.UserContext(), req.Question, roadmap, skills)
	return c.JSON(answer)
}

func (h *RunHandler) findRun(c *fiber.Ctx) (*models.PipelineRun, error) {
	runID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid run ID format")
	}

	run, err := h.runRepo.FindByID(runID)
	if err != nil {
		if errors.Is(err, repositories.ErrRunNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Pipeline run not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return run, nil
}

func rawJSON(s *string) json.RawMessage {
	if s == nil || *s == "" {
		return nil
	}
	return json.RawMessage(*s)
}
