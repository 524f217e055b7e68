package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/career-roadmap/internal/models"
)

const skillsSchema = `{
  "type": "object",
  "minProperties": 1,
  "additionalProperties": {
    "oneOf": [
      {"type": "array", "items": {"type": ["string", "number", "boolean", "object"]}},
      {"type": "object"},
      {"type": "string"}
    ]
  }
}`

const roadmapSchema = `{
  "type": "object",
  "minProperties": 1,
  "additionalProperties": {
    "oneOf": [
      {
        "type": "object",
        "properties": {
          "skills": {"type": ["array", "string"]},
          "resources": {"type": ["array", "string"]},
          "projects": {"type": ["array", "string"]},
          "estimated_time": {"type": ["string", "number"]}
        }
      },
      {"type": "string"},
      {"type": "array"}
    ]
  }
}`

var (
	skillsSchemaLoader  = gojsonschema.NewStringLoader(skillsSchema)
	roadmapSchemaLoader = gojsonschema.NewStringLoader(roadmapSchema)
)

// ValidateDocument checks a JSON document against a schema.
func ValidateDocument(schema gojsonschema.JSONLoader, data []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("document validation failed: %v", errs)
	}
	return nil
}

// LoadSkillSet reads an extracted skills file. A {"raw_response": ...} file is
// loaded as unstructured skills.
func LoadSkillSet(path string) (models.SkillSet, error) {
	data, raw, err := loadDocument(path, skillsSchemaLoader)
	if err != nil {
		return models.SkillSet{}, err
	}
	if raw != nil {
		return models.SkillSetFromRaw(*raw), nil
	}
	var skills models.SkillSet
	if err := json.Unmarshal(data, &skills); err != nil {
		return models.SkillSet{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return skills, nil
}

// LoadRoadmap reads a roadmap file. A {"raw_response": ...} file is loaded as
// an unstructured roadmap.
func LoadRoadmap(path string) (models.Roadmap, error) {
	data, raw, err := loadDocument(path, roadmapSchemaLoader)
	if err != nil {
		return models.Roadmap{}, err
	}
	if raw != nil {
		return models.RoadmapFromRaw(*raw), nil
	}
	var roadmap models.Roadmap
	if err := json.Unmarshal(data, &roadmap); err != nil {
		return models.Roadmap{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return roadmap, nil
}

func loadDocument(path string, schema gojsonschema.JSONLoader) ([]byte, *string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: file not found: %s", ErrMissingInput, path)
		}
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var envelope struct {
		RawResponse *string `json:"raw_response"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.RawResponse != nil {
		return data, envelope.RawResponse, nil
	}

	if err := ValidateDocument(schema, data); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil, nil
}
