package models

import "encoding/json"

type ResultStatus string

const (
	// ResultOK is a reply that parsed as the expected record.
	ResultOK ResultStatus = "ok"
	// ResultRecovered is a record recovered from JSON embedded in prose.
	ResultRecovered ResultStatus = "recovered"
	// ResultRaw is a reply that could not be structured.
	ResultRaw ResultStatus = "raw"
	// ResultError is a stage whose oracle call failed.
	ResultError ResultStatus = "error"
)

// StageResult is the outcome of one stage. Exactly one of Value (ok,
// recovered), Raw (raw) or Error (error) is meaningful.
type StageResult[T any] struct {
	Status ResultStatus
	Value  T
	Raw    string
	Error  string
}

func Structured[T any](value T, recovered bool) StageResult[T] {
	status := ResultOK
	if recovered {
		status = ResultRecovered
	}
	return StageResult[T]{Status: status, Value: value}
}

func RawResult[T any](text string) StageResult[T] {
	return StageResult[T]{Status: ResultRaw, Raw: text}
}

func ErrorResult[T any](err error) StageResult[T] {
	return StageResult[T]{Status: ResultError, Error: err.Error()}
}

func (r StageResult[T]) Failed() bool {
	return r.Status == ResultError
}

func (r StageResult[T]) HasValue() bool {
	return r.Status == ResultOK || r.Status == ResultRecovered
}

// MarshalJSON renders the artifact form: the record itself,
// {"raw_response": ...} or {"error": ...}.
func (r StageResult[T]) MarshalJSON() ([]byte, error) {
	switch r.Status {
	case ResultRaw:
		return json.Marshal(map[string]string{"raw_response": r.Raw})
	case ResultError:
		return json.Marshal(map[string]string{"error": r.Error})
	default:
		return json.Marshal(r.Value)
	}
}

type (
	SkillResult      = StageResult[SkillSet]
	RoadmapResult    = StageResult[Roadmap]
	EvaluationResult = StageResult[Evaluation]
	CVAnalysisResult = StageResult[CVAnalysis]
)

// QAAnswer is either {question, answer} or {error}.
type QAAnswer struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (a QAAnswer) Failed() bool {
	return a.Error != ""
}

type JobDescription struct {
	JobDescription string `json:"job_description"`
	WordCount      int    `json:"word_count"`
	CharCount      int    `json:"char_count"`
}

// CVAnalysis compares a CV against the extracted skills and the roadmap.
type CVAnalysis struct {
	SkillsMatch     []Item   `json:"skills_match"`
	SkillsGap       []string `json:"skills_gap"`
	Recommendations []string `json:"recommendations"`
	CVImprovement   []string `json:"cv_improvement"`
}

func (c *CVAnalysis) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}
	out := CVAnalysis{SkillsMatch: []Item{}, SkillsGap: []string{}, Recommendations: []string{}, CVImprovement: []string{}}
	for _, f := range fields {
		switch f.Key {
		case "skills_match":
			out.SkillsMatch = itemList(f.Value)
		case "skills_gap":
			out.SkillsGap = nonNil(stringList(f.Value))
		case "recommendations":
			out.Recommendations = nonNil(stringList(f.Value))
		case "cv_improvement":
			out.CVImprovement = nonNil(stringList(f.Value))
		}
	}
	*c = out
	return nil
}
