package middleware

import "testing"

func TestValidateRegionID(t *testing.T) {
	t.Parallel()

	valid := []string{"mangrove-east", "delta_west", "r1"}
	for _, id := range valid {
		if err := ValidateRegionID(id); err != nil {
			t.Errorf("ValidateRegionID(%q) = %v", id, err)
		}
	}
	invalid := []string{"", "has space", "semi;colon", "../escape"}
	for _, id := range invalid {
		if err := ValidateRegionID(id); err == nil {
			t.Errorf("ValidateRegionID(%q) should fail", id)
		}
	}
}

func TestValidateDateRange(t *testing.T) {
	t.Parallel()

	if err := ValidateDateRange("2025-01-01", "2025-06-01"); err != nil {
		t.Errorf("valid range rejected: %v", err)
	}
	cases := [][2]string{
		{"", "2025-06-01"},
		{"2025-01-01", ""},
		{"01/01/2025", "2025-06-01"},
		{"2025-06-01", "2025-01-01"},
		{"2025-01-01", "2025-01-01"},
		{"2000-01-01", "2025-01-01"},
	}
	for _, c := range cases {
		if err := ValidateDateRange(c[0], c[1]); err == nil {
			t.Errorf("ValidateDateRange(%q, %q) should fail", c[0], c[1])
		}
	}
}

func TestValidateCloudFraction(t *testing.T) {
	t.Parallel()

	for _, f := range []float64{0, 0.2, 1} {
		if err := ValidateCloudFraction(f); err != nil {
			t.Errorf("ValidateCloudFraction(%v) = %v", f, err)
		}
	}
	for _, f := range []float64{-0.1, 1.5} {
		if err := ValidateCloudFraction(f); err == nil {
			t.Errorf("ValidateCloudFraction(%v) should fail", f)
		}
	}
}

func TestValidateBounds(t *testing.T) {
	t.Parallel()

	if err := ValidateBounds(-6.2, 106.8, -6.1, 106.9); err != nil {
		t.Errorf("valid bounds rejected: %v", err)
	}
	if err := ValidateBounds(-6.1, 106.8, -6.2, 106.9); err == nil {
		t.Error("inverted latitudes should fail")
	}
	if err := ValidateBounds(-95, 0, 10, 1); err == nil {
		t.Error("latitude below -90 should fail")
	}
	if err := ValidateBounds(0, -190, 10, 1); err == nil {
		t.Error("longitude below -180 should fail")
	}
}

func TestValidateLimitAndDays(t *testing.T) {
	t.Parallel()

	if got := ValidateLimit(0); got != 20 {
		t.Errorf("ValidateLimit(0) = %d", got)
	}
	if got := ValidateLimit(500); got != 100 {
		t.Errorf("ValidateLimit(500) = %d", got)
	}
	if got := ValidateDays(-1); got != 7 {
		t.Errorf("ValidateDays(-1) = %d", got)
	}
	if got := ValidateDays(1000); got != 365 {
		t.Errorf("ValidateDays(1000) = %d", got)
	}
}

func TestValidateRunID(t *testing.T) {
	t.Parallel()

	if err := ValidateRunID("3b241101-e2bb-4255-8caf-4136c566a962"); err != nil {
		t.Errorf("valid run id rejected: %v", err)
	}
	for _, id := range []string{"", "not-a-uuid", "3b241101e2bb42558caf4136c566a962"} {
		if err := ValidateRunID(id); err == nil {
			t.Errorf("ValidateRunID(%q) should fail", id)
		}
	}
}
