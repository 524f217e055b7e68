package models

import (
	"encoding/json"
	"fmt"
)

// PhaseOrder is the conceptual phase sequence requested from the oracle.
// Replies may rename phases or add more.
var PhaseOrder = []string{
	"Foundation Phase",
	"Development Phase",
	"Specialization Phase",
	"Interview Preparation Phase",
}

// UnstructuredPhase holds the reply text of a roadmap that could not be parsed.
const UnstructuredPhase = "Unstructured Roadmap"

// Item is a resource or project: either a plain string or a structured record
// such as {"name": ..., "url": ...}.
type Item struct {
	Text   string
	Record map[string]interface{}
}

func (i Item) MarshalJSON() ([]byte, error) {
	if i.Record != nil {
		return json.Marshal(i.Record)
	}
	return json.Marshal(i.Text)
}

func (i *Item) UnmarshalJSON(data []byte) error {
	if kindOf(data) == '{' {
		var record map[string]interface{}
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		*i = Item{Record: record}
		return nil
	}
	*i = Item{Text: textOf(data)}
	return nil
}

// Label returns a display name for the item.
func (i Item) Label() string {
	if i.Record == nil {
		return i.Text
	}
	for _, key := range []string{"name", "title", "description"} {
		if v, ok := i.Record[key].(string); ok && v != "" {
			return v
		}
	}
	b, _ := json.Marshal(i.Record)
	return string(b)
}

func itemList(raw json.RawMessage) []Item {
	switch kindOf(raw) {
	case 0, 'n':
		return []Item{}
	case '[':
		var items []Item
		if err := json.Unmarshal(raw, &items); err == nil {
			return items
		}
	}
	var single Item
	if err := json.Unmarshal(raw, &single); err != nil {
		return []Item{{Text: textOf(raw)}}
	}
	return []Item{single}
}

// PhaseDetail describes one roadmap phase. Replies that describe a phase with
// something other than an object keep that value in Value.
type PhaseDetail struct {
	Skills        []string
	Resources     []Item
	Projects      []Item
	EstimatedTime string
	Extra         []field
	Value         json.RawMessage
}

func (p PhaseDetail) MarshalJSON() ([]byte, error) {
	if len(p.Value) > 0 {
		return p.Value, nil
	}
	skills, err := json.Marshal(nonNil(p.Skills))
	if err != nil {
		return nil, err
	}
	resources, err := json.Marshal(nonNilItems(p.Resources))
	if err != nil {
		return nil, err
	}
	projects, err := json.Marshal(nonNilItems(p.Projects))
	if err != nil {
		return nil, err
	}
	estimated, err := json.Marshal(p.EstimatedTime)
	if err != nil {
		return nil, err
	}
	fields := []field{
		{Key: "skills", Value: skills},
		{Key: "resources", Value: resources},
		{Key: "projects", Value: projects},
		{Key: "estimated_time", Value: estimated},
	}
	fields = append(fields, p.Extra...)
	return encodeObject(fields)
}

func (p *PhaseDetail) UnmarshalJSON(data []byte) error {
	if kindOf(data) != '{' {
		*p = PhaseDetail{Value: append(json.RawMessage(nil), data...)}
		return nil
	}
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	detail := PhaseDetail{Skills: []string{}, Resources: []Item{}, Projects: []Item{}}
	for _, f := range fields {
		switch f.Key {
		case "skills":
			detail.Skills = nonNil(stringList(f.Value))
		case "resources":
			detail.Resources = itemList(f.Value)
		case "projects":
			detail.Projects = itemList(f.Value)
		case "estimated_time":
			detail.EstimatedTime = textOf(f.Value)
		default:
			detail.Extra = append(detail.Extra, f)
		}
	}
	*p = detail
	return nil
}

func nonNilItems(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return items
}

type Phase struct {
	Name   string
	Detail PhaseDetail
}

// Roadmap maps phase names to phase details, keeping phase order.
type Roadmap struct {
	Phases []Phase
}

// RoadmapFromRaw wraps unparseable roadmap output as a single phase.
func RoadmapFromRaw(text string) Roadmap {
	value, _ := json.Marshal(text)
	return Roadmap{Phases: []Phase{{Name: UnstructuredPhase, Detail: PhaseDetail{Value: value}}}}
}

func (r Roadmap) IsEmpty() bool {
	return len(r.Phases) == 0
}

func (r Roadmap) Phase(name string) (PhaseDetail, bool) {
	for _, p := range r.Phases {
		if p.Name == name {
			return p.Detail, true
		}
	}
	return PhaseDetail{}, false
}

func (r Roadmap) MarshalJSON() ([]byte, error) {
	fields := make([]field, 0, len(r.Phases))
	for _, p := range r.Phases {
		value, err := json.Marshal(p.Detail)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field{Key: p.Name, Value: value})
	}
	return encodeObject(fields)
}

func (r *Roadmap) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("roadmap: %w", err)
	}
	roadmap := Roadmap{Phases: make([]Phase, 0, len(fields))}
	for _, f := range fields {
		var detail PhaseDetail
		if err := json.Unmarshal(f.Value, &detail); err != nil {
			return fmt.Errorf("roadmap phase %q: %w", f.Key, err)
		}
		roadmap.Phases = append(roadmap.Phases, Phase{Name: f.Key, Detail: detail})
	}
	*r = roadmap
	return nil
}
