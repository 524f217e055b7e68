package models

import (
	"encoding/json"
	"fmt"
)

// EvaluationCriteria are the critique dimensions requested from the oracle.
var EvaluationCriteria = []string{"Coverage", "Relevance", "Structure", "Practicality", "Completeness"}

type Criterion struct {
	Name       string
	Assessment string
}

// Assessment is the "evaluation" value: either a criterion→assessment mapping
// or a single block of text.
type Assessment struct {
	Text     string
	Criteria []Criterion
}

func (a Assessment) MarshalJSON() ([]byte, error) {
	if a.Criteria == nil {
		return json.Marshal(a.Text)
	}
	fields := make([]field, 0, len(a.Criteria))
	for _, c := range a.Criteria {
		value, err := json.Marshal(c.Assessment)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field{Key: c.Name, Value: value})
	}
	return encodeObject(fields)
}

func (a *Assessment) UnmarshalJSON(data []byte) error {
	if kindOf(data) != '{' {
		*a = Assessment{Text: textOf(data)}
		return nil
	}
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	criteria := make([]Criterion, 0, len(fields))
	for _, f := range fields {
		criteria = append(criteria, Criterion{Name: f.Key, Assessment: textOf(f.Value)})
	}
	*a = Assessment{Criteria: criteria}
	return nil
}

// Evaluation is the critique of a roadmap. ImprovedRoadmap is nil when the
// reply had no usable improved roadmap; ImprovedText keeps such a value when it
// was present but not a roadmap.
type Evaluation struct {
	Evaluation            Assessment
	SuggestedImprovements []string
	ImprovedRoadmap       *Roadmap
	ImprovedText          string
}

func (e Evaluation) MarshalJSON() ([]byte, error) {
	evaluation, err := json.Marshal(e.Evaluation)
	if err != nil {
		return nil, err
	}
	suggested, err := json.Marshal(nonNil(e.SuggestedImprovements))
	if err != nil {
		return nil, err
	}
	fields := []field{
		{Key: "evaluation", Value: evaluation},
		{Key: "suggested_improvements", Value: suggested},
	}
	switch {
	case e.ImprovedRoadmap != nil:
		improved, err := json.Marshal(e.ImprovedRoadmap)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field{Key: "improved_roadmap", Value: improved})
	case e.ImprovedText != "":
		improved, err := json.Marshal(e.ImprovedText)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field{Key: "improved_roadmap", Value: improved})
	}
	return encodeObject(fields)
}

func (e *Evaluation) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}
	var out Evaluation
	for _, f := range fields {
		switch f.Key {
		case "evaluation":
			if err := json.Unmarshal(f.Value, &out.Evaluation); err != nil {
				return fmt.Errorf("evaluation: %w", err)
			}
		case "suggested_improvements":
			out.SuggestedImprovements = stringList(f.Value)
		case "improved_roadmap":
			out.ImprovedRoadmap, out.ImprovedText = decodeImproved(f.Value)
		}
	}
	*e = out
	return nil
}

// decodeImproved accepts an improved roadmap given as an object or as a JSON
// string containing one.
func decodeImproved(raw json.RawMessage) (*Roadmap, string) {
	switch kindOf(raw) {
	case '{':
		var r Roadmap
		if err := json.Unmarshal(raw, &r); err == nil {
			return &r, ""
		}
	case '"':
		text := textOf(raw)
		var r Roadmap
		if err := json.Unmarshal([]byte(text), &r); err == nil {
			return &r, ""
		}
		return nil, text
	}
	return nil, ""
}

// FinalRoadmap returns the improved roadmap, or fallback when the evaluation
// has none.
func (e Evaluation) FinalRoadmap(fallback Roadmap) Roadmap {
	if e.ImprovedRoadmap != nil && !e.ImprovedRoadmap.IsEmpty() {
		return *e.ImprovedRoadmap
	}
	return fallback
}
