package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/career-roadmap/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSkillSet(t *testing.T) {
	path := writeFile(t, "skills.json", `{"Technical Skills": ["Go"], "Domain-Specific Skills": {"Cloud": ["AWS"]}, "Certifications": "none"}`)

	skills, err := LoadSkillSet(path)

	require.NoError(t, err)
	entry, ok := skills.Get("Domain-Specific Skills")
	require.True(t, ok)
	require.NotNil(t, entry.Groups)
	cloud, _ := entry.Groups.Get("Cloud")
	assert.Equal(t, []string{"AWS"}, cloud.Items)
}

func TestLoadSkillSetRawDocument(t *testing.T) {
	path := writeFile(t, "skills.json", `{"raw_response": "Go, SQL"}`)

	skills, err := LoadSkillSet(path)

	require.NoError(t, err)
	assert.Equal(t, models.SkillSetFromRaw("Go, SQL"), skills)
}

func TestLoadSkillSetRejectsInvalidDocuments(t *testing.T) {
	for _, content := range []string{`[]`, `{}`, `{"Technical Skills": 42}`} {
		_, err := LoadSkillSet(writeFile(t, "skills.json", content))
		assert.Error(t, err, content)
	}
}

func TestLoadRoadmap(t *testing.T) {
	path := writeFile(t, "roadmap.json", `{"Foundation Phase": {"skills": ["Go"], "estimated_time": "2 weeks"}, "Notes": "keep going"}`)

	roadmap, err := LoadRoadmap(path)

	require.NoError(t, err)
	require.Len(t, roadmap.Phases, 2)
	assert.Equal(t, "Foundation Phase", roadmap.Phases[0].Name)
	assert.Equal(t, "2 weeks", roadmap.Phases[0].Detail.EstimatedTime)
}

func TestLoadRoadmapErrors(t *testing.T) {
	_, err := LoadRoadmap(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrMissingInput)

	_, err = LoadRoadmap(writeFile(t, "roadmap.json", `{"Foundation Phase": {"skills": 5}}`))
	assert.Error(t, err)
}
