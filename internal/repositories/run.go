package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/career-roadmap/internal/models"
)

// ErrRunNotFound is returned when no pipeline run has the given ID.
var ErrRunNotFound = errors.New("pipeline run not found")

type RunRepository interface {
	Create(run *models.PipelineRun) error
	FindByID(id uuid.UUID) (*models.PipelineRun, error)
	ClaimQueued(id uuid.UUID) (bool, error)
	UpdateStatus(id uuid.UUID, status models.RunStatus) error
	UpdateState(id uuid.UUID, state models.PipelineState) error
	UpdateResult(id uuid.UUID, result *RunResultData) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPending(limit int) ([]models.PipelineRun, error)
}

// RunResultData is what a finished run stores.
type RunResultData struct {
	OutputDir    string
	Degraded     []string
	SkillsJSON   string
	FinalRoadmap string
}

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(run *models.PipelineRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Status == "" {
		run.Status = models.RunQueued
	}
	if run.State == "" {
		run.State = models.StateStarted
	}
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (r *runRepository) FindByID(id uuid.UUID) (*models.PipelineRun, error) {
	var run models.PipelineRun
	if err := r.db.Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	return &run, nil
}

// ClaimQueued moves a queued run to processing in one statement. It reports
// false when the run is missing or no longer queued.
func (r *runRepository) ClaimQueued(id uuid.UUID) (bool, error) {
	result := r.db.Model(&models.PipelineRun{}).
		Where("id = ? AND status = ?", id, models.RunQueued).
		Updates(map[string]interface{}{
			"status":     models.RunProcessing,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim run: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *runRepository) UpdateStatus(id uuid.UUID, status models.RunStatus) error {
	return r.update(id, map[string]interface{}{"status": status})
}

func (r *runRepository) UpdateState(id uuid.UUID, state models.PipelineState) error {
	return r.update(id, map[string]interface{}{"state": state})
}

func (r *runRepository) UpdateResult(id uuid.UUID, data *RunResultData) error {
	return r.update(id, map[string]interface{}{
		"status":        models.RunCompleted,
		"output_dir":    data.OutputDir,
		"degraded":      strings.Join(data.Degraded, ","),
		"skills_json":   data.SkillsJSON,
		"final_roadmap": data.FinalRoadmap,
	})
}

func (r *runRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.RunFailed,
		"error_message": errorMsg,
	})
}

// FindPending returns queued runs, oldest first.
func (r *runRepository) FindPending(limit int) ([]models.PipelineRun, error) {
	var runs []models.PipelineRun
	err := r.db.
		Where("status = ?", models.RunQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending runs: %w", err)
	}
	return runs, nil
}

func (r *runRepository) update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.PipelineRun{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}
