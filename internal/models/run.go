package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunQueued     RunStatus = "queued"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// PipelineState is the last stage a pipeline run completed.
type PipelineState string

const (
	StateStarted          PipelineState = "STARTED"
	StateJDProcessed      PipelineState = "JD_PROCESSED"
	StateSkillsExtracted  PipelineState = "SKILLS_EXTRACTED"
	StateRoadmapGenerated PipelineState = "ROADMAP_GENERATED"
	StateRoadmapEvaluated PipelineState = "ROADMAP_EVALUATED"
	StateDone             PipelineState = "DONE"
)

var stateOrder = map[PipelineState]int{
	StateStarted:          0,
	StateJDProcessed:      1,
	StateSkillsExtracted:  2,
	StateRoadmapGenerated: 3,
	StateRoadmapEvaluated: 4,
	StateDone:             5,
}

// Next reports whether next directly follows s.
func (s PipelineState) Next(next PipelineState) bool {
	cur, ok := stateOrder[s]
	if !ok {
		return false
	}
	n, ok := stateOrder[next]
	return ok && n == cur+1
}

// PipelineRun is a pipeline run submitted through the API.
type PipelineRun struct {
	ID             uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	JobDescription string        `gorm:"type:text" json:"job_description"`
	Status         RunStatus     `gorm:"not null;default:'queued'" json:"status"`
	State          PipelineState `gorm:"type:text" json:"state"`
	OutputDir      string        `gorm:"type:text" json:"output_dir"`
	Degraded       string        `gorm:"type:text" json:"degraded,omitempty"`
	SkillsJSON     *string       `gorm:"type:text" json:"-"`
	FinalRoadmap   *string       `gorm:"type:text" json:"-"`
	ErrorMessage   *string       `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
