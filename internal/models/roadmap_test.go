package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoadmapKeepsPhaseOrder(t *testing.T) {
	input := `{"Specialization Phase":{"skills":["K8s"]},"Foundation Phase":{"skills":["Go"]}}`

	var roadmap Roadmap
	require.NoError(t, json.Unmarshal([]byte(input), &roadmap))

	require.Len(t, roadmap.Phases, 2)
	assert.Equal(t, "Specialization Phase", roadmap.Phases[0].Name)
	assert.Equal(t, "Foundation Phase", roadmap.Phases[1].Name)
}

func TestPhaseDetailNormalizesFields(t *testing.T) {
	var roadmap Roadmap
	require.NoError(t, json.Unmarshal([]byte(`{
		"Foundation Phase": {
			"skills": "Go",
			"resources": [{"name": "Tour of Go", "url": "https://go.dev/tour"}, "Effective Go"],
			"projects": "CLI tool",
			"estimated_time": 4,
			"milestone": "ship it"
		}
	}`), &roadmap))

	detail, ok := roadmap.Phase("Foundation Phase")
	require.True(t, ok)
	assert.Equal(t, []string{"Go"}, detail.Skills)
	require.Len(t, detail.Resources, 2)
	assert.Equal(t, "Tour of Go", detail.Resources[0].Label())
	assert.Equal(t, "Effective Go", detail.Resources[1].Label())
	assert.Equal(t, []Item{{Text: "CLI tool"}}, detail.Projects)
	assert.Equal(t, "4", detail.EstimatedTime)

	out, err := json.Marshal(detail)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"skills": ["Go"],
		"resources": [{"name": "Tour of Go", "url": "https://go.dev/tour"}, "Effective Go"],
		"projects": ["CLI tool"],
		"estimated_time": "4",
		"milestone": "ship it"
	}`, string(out))
}

func TestPhaseDetailMissingFieldsMarshalEmpty(t *testing.T) {
	out, err := json.Marshal(PhaseDetail{})
	require.NoError(t, err)
	assert.Equal(t, `{"skills":[],"resources":[],"projects":[],"estimated_time":""}`, string(out))
}

func TestNonObjectPhaseIsKept(t *testing.T) {
	input := `{"Notes":"practice daily","Extras":["a","b"]}`

	var roadmap Roadmap
	require.NoError(t, json.Unmarshal([]byte(input), &roadmap))

	out, err := json.Marshal(roadmap)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestRoadmapFromRaw(t *testing.T) {
	out, err := json.Marshal(RoadmapFromRaw("learn Go"))

	require.NoError(t, err)
	assert.Equal(t, `{"Unstructured Roadmap":"learn Go"}`, string(out))
}

func TestItemLabelFallsBackToJSON(t *testing.T) {
	item := Item{Record: map[string]interface{}{"url": "https://go.dev"}}
	assert.Equal(t, `{"url":"https://go.dev"}`, item.Label())
}
