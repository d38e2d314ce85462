package runlog

import "time"

// RunError represents a persisted per-period pipeline failure
type RunError struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenant_id"`
	RunID     string    `json:"run_id"`
	RegionID  string    `json:"region_id"`
	WindowKey string    `json:"window_key"`
	Stage     string    `json:"stage,omitempty"` // composite | inference | other
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
