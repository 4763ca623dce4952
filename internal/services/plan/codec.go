package plan

import (
	json "github.com/goccy/go-json"

	"careplan/internal/models"
)

// Encode serializes the state as a flat JSON document keyed by field key.
// The document contains scalars only, so it survives schema additions: a
// new field simply defaults on the next load.
func Encode(s *State) ([]byte, error) {
	return json.MarshalIndent(s.Values(), "", "  ")
}

// Decode builds a state from a saved plan document. Malformed JSON yields
// a LoadError and no state. Keys the schema no longer defines are ignored;
// values that fail coercion fall back to the field default and are flagged.
func Decode(schema *models.ResolvedSchema, data []byte, path string) (*State, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: path, Detail: "malformed plan document", err: err}
	}

	s := NewState(schema)
	for _, f := range schema.Fields() {
		raw, ok := doc[f.Key]
		if !ok {
			continue
		}
		// Set already substitutes the default and flags on bad values
		_ = s.Set(f.Key, raw)
	}
	return s, nil
}
