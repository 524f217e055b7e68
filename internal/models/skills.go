package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Taxonomy is the fixed category order used when skills are extracted and
// rendered back into prompts. Extra categories are tolerated.
var Taxonomy = []string{
	"Technical Skills",
	"Soft Skills",
	"Domain-Specific Skills",
	"Certifications",
	"Experience Requirements",
}

// UnstructuredCategory holds the reply text of an extraction that could not be
// parsed, so later prompts still see it.
const UnstructuredCategory = "Unstructured Skills"

// SkillEntry is the value of one category: a list of skills, nested
// sub-categories, or (for replies that use neither) a plain text value.
type SkillEntry struct {
	Items  []string
	Groups *SkillSet
	Text   string
}

func (e SkillEntry) MarshalJSON() ([]byte, error) {
	switch {
	case e.Groups != nil:
		return json.Marshal(e.Groups)
	case e.Items == nil && e.Text != "":
		return json.Marshal(e.Text)
	default:
		return json.Marshal(nonNil(e.Items))
	}
}

func (e *SkillEntry) UnmarshalJSON(data []byte) error {
	switch kindOf(data) {
	case '{':
		var groups SkillSet
		if err := json.Unmarshal(data, &groups); err != nil {
			return err
		}
		*e = SkillEntry{Groups: &groups}
	case '[':
		*e = SkillEntry{Items: nonNil(stringList(data))}
	default:
		*e = SkillEntry{Text: textOf(data)}
	}
	return nil
}

type SkillCategory struct {
	Name  string
	Entry SkillEntry
}

// SkillSet maps category names to skills, keeping category order.
type SkillSet struct {
	Categories []SkillCategory
}

// EmptySkillSet returns a skill set with every given category present and empty.
func EmptySkillSet(categories []string) SkillSet {
	set := SkillSet{}
	for _, name := range categories {
		set.Set(name, SkillEntry{Items: []string{}})
	}
	return set
}

// SkillSetFromRaw wraps unparseable extraction output.
func SkillSetFromRaw(text string) SkillSet {
	set := SkillSet{}
	set.Set(UnstructuredCategory, SkillEntry{Text: text})
	return set
}

func (s *SkillSet) Set(name string, entry SkillEntry) {
	for i := range s.Categories {
		if s.Categories[i].Name == name {
			s.Categories[i].Entry = entry
			return
		}
	}
	s.Categories = append(s.Categories, SkillCategory{Name: name, Entry: entry})
}

func (s SkillSet) Get(name string) (SkillEntry, bool) {
	for _, c := range s.Categories {
		if c.Name == name {
			return c.Entry, true
		}
	}
	return SkillEntry{}, false
}

func (s SkillSet) IsEmpty() bool {
	for _, c := range s.Categories {
		if len(c.Entry.Items) > 0 || c.Entry.Text != "" {
			return false
		}
		if c.Entry.Groups != nil && !c.Entry.Groups.IsEmpty() {
			return false
		}
	}
	return true
}

// Ordered returns categories with the taxonomy first, in taxonomy order,
// followed by any extra categories sorted by name.
func (s SkillSet) Ordered() []SkillCategory {
	rank := make(map[string]int, len(Taxonomy))
	for i, name := range Taxonomy {
		rank[name] = i
	}
	out := make([]SkillCategory, len(s.Categories))
	copy(out, s.Categories)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iKnown := rank[out[i].Name]
		rj, jKnown := rank[out[j].Name]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return out[i].Name < out[j].Name
		}
	})
	return out
}

// Outline renders the skill set as an indented text outline. The output only
// depends on the set's content, not on the order categories were added in.
func (s SkillSet) Outline() string {
	var b strings.Builder
	for _, c := range s.Ordered() {
		writeEntry(&b, c.Name, c.Entry, "")
		b.WriteString("\n")
	}
	return b.String()
}

func writeEntry(b *strings.Builder, name string, e SkillEntry, indent string) {
	switch {
	case e.Groups != nil:
		fmt.Fprintf(b, "%s%s:\n", indent, name)
		for _, sub := range e.Groups.Ordered() {
			writeEntry(b, sub.Name, sub.Entry, indent+"  ")
		}
	case e.Items == nil && e.Text != "":
		fmt.Fprintf(b, "%s%s: %s\n", indent, name, e.Text)
	default:
		fmt.Fprintf(b, "%s%s:\n", indent, name)
		for _, item := range e.Items {
			fmt.Fprintf(b, "%s- %s\n", indent, item)
		}
	}
}

func (s SkillSet) MarshalJSON() ([]byte, error) {
	fields := make([]field, 0, len(s.Categories))
	for _, c := range s.Categories {
		value, err := json.Marshal(c.Entry)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field{Key: c.Name, Value: value})
	}
	return encodeObject(fields)
}

func (s *SkillSet) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("skill set: %w", err)
	}
	set := SkillSet{Categories: make([]SkillCategory, 0, len(fields))}
	for _, f := range fields {
		var entry SkillEntry
		if err := json.Unmarshal(f.Value, &entry); err != nil {
			return fmt.Errorf("skill category %q: %w", f.Key, err)
		}
		set.Set(f.Key, entry)
	}
	*s = set
	return nil
}
