package ir

import "encoding/json"

// deepCopyJSON round-trips an IR through JSON to produce an independent
// copy. Simple and allocation-heavy compared to a field-by-field copy,
// but it can never drift out of sync with IR's field list, and the IR is
// small enough (a handful of nodes/edges per diagram) that the cost is
// immaterial next to an LLM round trip.
func deepCopyJSON(d *IR) (*IR, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out IR
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
