package editor

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

// Query evaluates a JSONPath expression against the JSON form of doc,
// e.g. "$.messages[*].text" or "$.messages[0].replies".
func Query(doc *scenario.Document, expression string) (any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	result, err := jsonpath.Get(expression, data)
	if err != nil {
		return nil, fmt.Errorf("jsonpath %q: %w", expression, err)
	}
	return result, nil
}
