package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/career-roadmap/internal/models"
)

func TestRunCreateDefaults(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	run := &models.PipelineRun{JobDescription: "Go developer"}
	require.NoError(t, repo.Create(run))

	assert.NotEqual(t, uuid.Nil, run.ID)
	got, err := repo.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunQueued, got.Status)
	assert.Equal(t, models.StateStarted, got.State)
	assert.Equal(t, "Go developer", got.JobDescription)
}

func TestRunFindByIDNotFound(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	_, err := repo.FindByID(uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunLifecycle(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))
	run := &models.PipelineRun{JobDescription: "Go developer"}
	require.NoError(t, repo.Create(run))

	require.NoError(t, repo.UpdateStatus(run.ID, models.RunProcessing))
	require.NoError(t, repo.UpdateState(run.ID, models.StateSkillsExtracted))

	got, err := repo.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunProcessing, got.Status)
	assert.Equal(t, models.StateSkillsExtracted, got.State)

	require.NoError(t, repo.UpdateResult(run.ID, &RunResultData{
		OutputDir:    "output/session_1",
		Degraded:     []string{"extract_skills", "evaluate_roadmap"},
		SkillsJSON:   `{"Technical Skills":["Go"]}`,
		FinalRoadmap: `{"Foundation Phase":{}}`,
	}))

	got, err = repo.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, got.Status)
	assert.Equal(t, "output/session_1", got.OutputDir)
	assert.Equal(t, "extract_skills,evaluate_roadmap", got.Degraded)
	require.NotNil(t, got.SkillsJSON)
	assert.Equal(t, `{"Technical Skills":["Go"]}`, *got.SkillsJSON)
	require.NotNil(t, got.FinalRoadmap)
	assert.Nil(t, got.ErrorMessage)
}

func TestRunUpdateError(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))
	run := &models.PipelineRun{}
	require.NoError(t, repo.Create(run))

	require.NoError(t, repo.UpdateError(run.ID, "missing input"))

	got, err := repo.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "missing input", *got.ErrorMessage)
}

func TestRunUpdateUnknownID(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	assert.ErrorIs(t, repo.UpdateStatus(uuid.New(), models.RunProcessing), ErrRunNotFound)
}

func TestRunFindPending(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))
	base := time.Now().Add(-time.Hour)

	first := &models.PipelineRun{CreatedAt: base}
	second := &models.PipelineRun{CreatedAt: base.Add(time.Minute)}
	done := &models.PipelineRun{Status: models.RunCompleted, CreatedAt: base}
	for _, r := range []*models.PipelineRun{second, done, first} {
		require.NoError(t, repo.Create(r))
	}

	pending, err := repo.FindPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)

	pending, err = repo.FindPending(1)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRunClaimQueued(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))
	run := &models.PipelineRun{JobDescription: "Go developer"}
	require.NoError(t, repo.Create(run))

	claimed, err := repo.ClaimQueued(run.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	got, err := repo.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunProcessing, got.Status)

	claimed, err = repo.ClaimQueued(run.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	claimed, err = repo.ClaimQueued(uuid.New())
	require.NoError(t, err)
	assert.False(t, claimed)
}
