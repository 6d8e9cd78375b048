package assessments

import (
	"time"

	"github.com/veritaslabs/veritas/internal/modules/compliance"
	"github.com/veritaslabs/veritas/internal/modules/forensic"
	"github.com/veritaslabs/veritas/internal/modules/risk"
)

// Snapshot is the full outcome of one analysis run. It is what gets
// serialized into the assessment store and returned to API clients.
type Snapshot struct {
	Forensic   forensic.Result        `json:"forensic" msgpack:"forensic"`
	Risk       risk.Assessment        `json:"risk" msgpack:"risk"`
	Compliance compliance.Assessment  `json:"compliance" msgpack:"compliance"`
	Report     map[string]interface{} `json:"report" msgpack:"report"`
}

// Record is the stored summary row for one assessment. The heavy Snapshot
// payload is loaded separately.
type Record struct {
	ID               string    `json:"id"`
	CompanyID        string    `json:"company_id"`
	SeriesHash       string    `json:"series_hash"`
	CompositeScore   float64   `json:"composite_score"`
	RiskLevel        string    `json:"risk_level"`
	ComplianceStatus string    `json:"compliance_status"`
	CreatedAt        time.Time `json:"created_at"`
}
