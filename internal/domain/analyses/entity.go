package analyses

import (
	"time"

	"github.com/bryanwahyu/invasive-watch/internal/domain/inference"
)

// AnalysisID identifier type
type AnalysisID string

// Analysis represents one model inference stored for auditing and retrieval
type Analysis struct {
	ID          AnalysisID            `json:"id"`
	TenantID    string                `json:"tenant_id"`
	RunID       string                `json:"run_id,omitempty"`
	RegionID    string                `json:"region_id"`
	WindowKey   string                `json:"window_key"`
	Fingerprint inference.Fingerprint `json:"fingerprint"`
	Detected    bool                  `json:"detected"`
	Result      string                `json:"result"` // JSON string from the model, post-validation
	CreatedAt   time.Time             `json:"created_at"`
}
