package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type field struct {
	Key   string
	Value json.RawMessage
}

// decodeObject decodes a JSON object keeping the key order of the source.
func decodeObject(data []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, field{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

// encodeObject writes fields as a JSON object in the given order.
func encodeObject(fields []field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(f.Value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(f.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func kindOf(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// textOf renders any JSON value as text: strings are unquoted, everything else
// is kept in its compact JSON form.
func textOf(raw json.RawMessage) string {
	if kindOf(raw) == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	if kindOf(raw) == 'n' {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}

// stringList accepts a list of values or a single scalar and returns its
// elements as text.
func stringList(raw json.RawMessage) []string {
	switch kindOf(raw) {
	case 0, 'n':
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return []string{textOf(raw)}
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, textOf(item))
		}
		return out
	default:
		return []string{textOf(raw)}
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
