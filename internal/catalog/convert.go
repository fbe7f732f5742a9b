package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"genebank/pkg/domain"
)

// Document is an API document: a data object plus an optional metadata envelope.
type Document struct {
	Data     map[string]any `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// toMap deep-copies a typed value into its generic JSON form.
func toMap(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	_ = json.Unmarshal(b, &out)
	return out
}

func fromMap(m map[string]any, target any) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// restrict keeps only the selected keys; nil keeps everything.
func restrict(data map[string]any, fields []Field) map[string]any {
	if fields == nil {
		return data
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := data[string(f)]; ok {
			out[string(f)] = v
		}
	}
	return out
}

// checkFields rejects field names outside allowed. An empty selection means all fields.
func checkFields(entity domain.EntityType, requested []Field, allowed []Field) ([]Field, error) {
	if len(requested) == 0 {
		return nil, nil
	}
	var bad []string
	for _, f := range requested {
		ok := false
		for _, a := range allowed {
			if a == f {
				ok = true
				break
			}
		}
		if !ok {
			bad = append(bad, string(f))
		}
	}
	if len(bad) > 0 {
		return nil, invalid(entity, "requested fields not allowed: %s", strings.Join(bad, ", "))
	}
	return append([]Field(nil), requested...), nil
}

func appendUnique(values []string, v string) []string {
	if v == "" {
		return values
	}
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
