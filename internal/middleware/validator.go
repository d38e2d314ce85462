package middleware

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Input validation and sanitization utilities

// ValidateRegionID validates region identifier format
func ValidateRegionID(region string) error {
	if region == "" {
		return fmt.Errorf("region ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, region)
	if !matched {
		return fmt.Errorf("invalid region ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateDateRange validates a survey date range
func ValidateDateRange(start, end string) error {
	if start == "" || end == "" {
		return fmt.Errorf("start and end dates are required")
	}

	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return fmt.Errorf("invalid start date: %s (expected YYYY-MM-DD)", start)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return fmt.Errorf("invalid end date: %s (expected YYYY-MM-DD)", end)
	}
	if !s.Before(e) {
		return fmt.Errorf("start date must be before end date")
	}

	// Cap range at 10 years, survey windows are monthly
	if e.Sub(s) > 10*365*24*time.Hour {
		return fmt.Errorf("date range too large (max 10 years)")
	}

	return nil
}

// ValidateCloudFraction validates a cloud cover threshold
func ValidateCloudFraction(f float64) error {
	if f < 0 || f > 1 {
		return fmt.Errorf("cloud fraction must be within [0,1], got %g", f)
	}
	return nil
}

// ValidateBounds validates a lat/lon bounding box
func ValidateBounds(minLat, minLon, maxLat, maxLon float64) error {
	if minLat < -90 || maxLat > 90 {
		return fmt.Errorf("latitude out of range [-90,90]")
	}
	if minLon < -180 || maxLon > 180 {
		return fmt.Errorf("longitude out of range [-180,180]")
	}
	if minLat >= maxLat {
		return fmt.Errorf("min latitude must be below max latitude")
	}
	if minLon >= maxLon {
		return fmt.Errorf("min longitude must be below max longitude")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, tenant)
	if !matched {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateRunID validates survey run ID format
func ValidateRunID(runID string) error {
	if runID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}

	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	matched, _ := regexp.MatchString(pattern, runID)
	if !matched {
		return fmt.Errorf("invalid run ID format")
	}

	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
