package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-roadmap/internal/models"
	"alfredoptarigan/career-roadmap/internal/services"
)

// StageHandler exposes the individual stages without a stored run.
type StageHandler struct {
	stages services.StageService
}

func NewStageHandler(stages services.StageService) *StageHandler {
	return &StageHandler{stages: stages}
}

// HandleSkills handles POST /skills
func (h *StageHandler) HandleSkills(c *fiber.Ctx) error {
	var req models.SkillsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}

	jd, err := services.ProcessJobDescription(req.JobDescription, "", nil)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "job_description is required")
	}

	return c.JSON(h.stages.ExtractSkills(c.UserContext(), jd.JobDescription))
}

// HandleRoadmap handles POST /roadmap
func (h *StageHandler) HandleRoadmap(c *fiber.Ctx) error {
	var req models.RoadmapRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}
	if req.Skills == nil {
		return fiber.NewError(fiber.StatusBadRequest, "skills is required")
	}

	return c.JSON(h.stages.GenerateRoadmap(c.UserContext(), *req.Skills))
}

// HandleEvaluate handles POST /evaluate
func (h *StageHandler) HandleEvaluate(c *fiber.Ctx) error {
	var req models.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}
	if req.Roadmap == nil {
		return fiber.NewError(fiber.StatusBadRequest, "roadmap is required")
	}

	var skills models.SkillSet
	if req.Skills != nil {
		skills = *req.Skills
	}
	return c.JSON(h.stages.EvaluateRoadmap(c.UserContext(), *req.Roadmap, skills))
}

// HandleAsk handles POST /ask
func (h *StageHandler) HandleAsk(c *fiber.Ctx) error {
	var req models.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}
	if strings.TrimSpace(req.Question) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "question is required")
	}
	if req.Roadmap == nil {
		return fiber.NewError(fiber.StatusBadRequest, "roadmap is required")
	}

	return c.JSON(h.stages.AnswerQuestion(c.UserContext(), req.Question, *req.Roadmap, req.Skills))
}
