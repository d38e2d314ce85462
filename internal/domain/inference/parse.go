package inference

import (
	"encoding/json"
	"fmt"
	"strings"
)

// response is the wire schema the prompt instructs the model to emit.
type response struct {
	InvasiveDetected   *bool              `json:"invasive_detected"`
	Species            []SpeciesCandidate `json:"species"`
	Rationale          string             `json:"rationale"`
	RecommendedActions []string           `json:"recommended_actions"`
}

// ParseResult validates the raw model output against the schema. Any
// violation, including confidence outside [0,100], becomes
// MalformedResponseError rather than a raw decoding error.
func ParseResult(raw string) (*Result, error) {
	body := stripFences(raw)

	var resp response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("invalid JSON: %v", err), Raw: raw}
	}
	if resp.InvasiveDetected == nil {
		return nil, &MalformedResponseError{Reason: "missing invasive_detected", Raw: raw}
	}
	if strings.TrimSpace(resp.Rationale) == "" {
		return nil, &MalformedResponseError{Reason: "missing rationale", Raw: raw}
	}
	for _, sp := range resp.Species {
		if strings.TrimSpace(sp.Name) == "" {
			return nil, &MalformedResponseError{Reason: "species entry without a name", Raw: raw}
		}
		if sp.Confidence < 0 || sp.Confidence > 100 {
			return nil, &MalformedResponseError{
				Reason: fmt.Sprintf("species %q confidence %.2f outside [0,100]", sp.Name, sp.Confidence),
				Raw:    raw,
			}
		}
	}

	return &Result{
		Detected:           *resp.InvasiveDetected,
		Species:            resp.Species,
		Rationale:          resp.Rationale,
		RecommendedActions: resp.RecommendedActions,
	}, nil
}

// stripFences tolerates models that wrap JSON in markdown code fences even
// when told not to.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	return s
}
