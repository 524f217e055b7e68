package services

import (
	"encoding/json"
	"strings"

	"alfredoptarigan/career-roadmap/internal/models"
)

type ParseKind int

const (
	// ParseStructured is a reply that was a JSON object as a whole.
	ParseStructured ParseKind = iota
	// ParseRecovered is a JSON object found inside a prose reply.
	ParseRecovered
	// ParseRaw is a reply with no usable JSON object.
	ParseRaw
)

func (k ParseKind) String() string {
	switch k {
	case ParseStructured:
		return "structured"
	case ParseRecovered:
		return "recovered"
	default:
		return "raw"
	}
}

// ParseResult is the normalized form of an oracle reply. Raw always holds the
// original reply text; Data and JSON are set for structured and recovered
// results.
type ParseResult struct {
	Kind ParseKind
	Data map[string]interface{}
	JSON []byte
	Raw  string
}

// Document is the JSON document form of the result.
func (r ParseResult) Document() map[string]interface{} {
	if r.Kind == ParseRaw {
		return map[string]interface{}{"raw_response": r.Raw}
	}
	return r.Data
}

// Normalize parses the whole reply as a JSON object. Anything else becomes a
// raw result; Normalize never fails. A {"raw_response": text} document, as
// written by Document, normalizes back to a raw result carrying text.
func Normalize(text string) ParseResult {
	trimmed := strings.TrimSpace(text)
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &data); err != nil || data == nil {
		return ParseResult{Kind: ParseRaw, Raw: text}
	}
	if raw, ok := rawEnvelope(data); ok {
		return ParseResult{Kind: ParseRaw, Raw: raw}
	}
	return ParseResult{Kind: ParseStructured, Data: data, JSON: []byte(trimmed), Raw: text}
}

// rawEnvelope reports whether data is exactly a raw document.
func rawEnvelope(data map[string]interface{}) (string, bool) {
	if len(data) != 1 {
		return "", false
	}
	raw, ok := data["raw_response"].(string)
	return raw, ok
}

// Recover looks for a JSON object between the first '{' and the last '}' of a
// raw result. The fragment replaces the raw result only if it parses and, when
// markers are given, contains at least one of them as a top-level key.
func Recover(res ParseResult, markers ...string) ParseResult {
	if res.Kind != ParseRaw {
		return res
	}
	start := strings.Index(res.Raw, "{")
	end := strings.LastIndex(res.Raw, "}")
	if start < 0 || end <= start {
		return res
	}

	fragment := res.Raw[start : end+1]
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(fragment), &data); err != nil || data == nil {
		return res
	}
	if _, ok := rawEnvelope(data); ok {
		return res
	}
	if len(markers) > 0 && !hasAnyKey(data, markers) {
		return res
	}
	return ParseResult{Kind: ParseRecovered, Data: data, JSON: []byte(fragment), Raw: res.Raw}
}

// NormalizeWithRecovery runs the full chain: strict parse, embedded fragment,
// raw passthrough.
func NormalizeWithRecovery(text string, markers ...string) ParseResult {
	return Recover(Normalize(text), markers...)
}

func hasAnyKey(data map[string]interface{}, keys []string) bool {
	for _, k := range keys {
		if _, ok := data[k]; ok {
			return true
		}
	}
	return false
}

// decodeResult converts a parse result into a typed stage result. A record
// that does not decode into T is reported as raw text.
func decodeResult[T any](res ParseResult) models.StageResult[T] {
	if res.Kind == ParseRaw {
		return models.RawResult[T](res.Raw)
	}
	var value T
	if err := json.Unmarshal(res.JSON, &value); err != nil {
		return models.RawResult[T](res.Raw)
	}
	return models.Structured(value, res.Kind == ParseRecovered)
}
