package inference

import (
	"errors"
	"testing"
)

const validPayload = `{
  "invasive_detected": true,
  "species": [{"name": "Eichhornia crassipes", "confidence": 82.5}],
  "rationale": "NIR mean rose 54% against the prior month over open water.",
  "recommended_actions": ["field verification", "mechanical removal assessment"]
}`

func TestParseResultValid(t *testing.T) {
	t.Parallel()

	res, err := ParseResult(validPayload)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if !res.Detected {
		t.Error("Detected = false, want true")
	}
	if len(res.Species) != 1 || res.Species[0].Name != "Eichhornia crassipes" {
		t.Errorf("Species = %+v", res.Species)
	}
	if res.Species[0].Confidence != 82.5 {
		t.Errorf("Confidence = %v, want 82.5", res.Species[0].Confidence)
	}
	if len(res.RecommendedActions) != 2 {
		t.Errorf("RecommendedActions = %v", res.RecommendedActions)
	}
}

func TestParseResultStripsCodeFences(t *testing.T) {
	t.Parallel()

	fenced := "```json\n" + validPayload + "\n```"
	res, err := ParseResult(fenced)
	if err != nil {
		t.Fatalf("ParseResult with fences: %v", err)
	}
	if !res.Detected {
		t.Error("Detected = false, want true")
	}

	bare := "```\n" + validPayload + "\n```"
	if _, err := ParseResult(bare); err != nil {
		t.Fatalf("ParseResult with bare fences: %v", err)
	}
}

func TestParseResultMalformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "the wetland looks fine to me"},
		{"missing detected", `{"species": [], "rationale": "ok"}`},
		{"missing rationale", `{"invasive_detected": false, "species": []}`},
		{"unnamed species", `{"invasive_detected": true, "rationale": "x", "species": [{"name": "", "confidence": 50}]}`},
		{"confidence above range", `{"invasive_detected": true, "rationale": "x", "species": [{"name": "a", "confidence": 150}]}`},
		{"confidence below range", `{"invasive_detected": true, "rationale": "x", "species": [{"name": "a", "confidence": -5}]}`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseResult(tc.raw)
			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Fatalf("err = %v, want MalformedResponseError", err)
			}
			if malformed.Raw != tc.raw {
				t.Error("error must carry the raw response for the audit log")
			}
		})
	}
}

func TestParseResultNoSpeciesWhenNotDetected(t *testing.T) {
	t.Parallel()

	res, err := ParseResult(`{"invasive_detected": false, "species": [], "rationale": "stable spectra"}`)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if res.Detected {
		t.Error("Detected = true, want false")
	}
	if len(res.Species) != 0 {
		t.Errorf("Species = %+v, want empty", res.Species)
	}
}
