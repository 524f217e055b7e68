package models

import "encoding/json"

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
}

type CreateRunRequest struct {
	JobDescription string `json:"job_description"`
}

type CreateRunResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type RunResponse struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	State        string          `json:"state,omitempty"`
	Degraded     []string        `json:"degraded,omitempty"`
	Skills       json.RawMessage `json:"skills,omitempty"`
	FinalRoadmap json.RawMessage `json:"final_roadmap,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

type AskRequest struct {
	Question      string    `json:"question"`
	IncludeSkills bool      `json:"include_skills"`
	Roadmap       *Roadmap  `json:"roadmap,omitempty"`
	Skills        *SkillSet `json:"skills,omitempty"`
}

type SkillsRequest struct {
	JobDescription string `json:"job_description"`
}

type RoadmapRequest struct {
	Skills *SkillSet `json:"skills"`
}

type EvaluateRequest struct {
	Roadmap *Roadmap  `json:"roadmap"`
	Skills  *SkillSet `json:"skills"`
}
