package incident

import (
	"time"

	"github.com/google/uuid"
)

// Incident maps to the incidents table. One row is written per classification
// computed by the emergency endpoint; cache hits are not recorded.
type Incident struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Message       string    `db:"message" json:"message"`
	EmergencyType string    `db:"emergency_type" json:"emergency_type"`
	Confidence    float64   `db:"confidence" json:"confidence"`
	Classifier    string    `db:"classifier" json:"classifier"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// TypeCount is one row of the per-type statistics.
type TypeCount struct {
	EmergencyType string `json:"emergency_type"`
	Count         int    `json:"count"`
}

// Filter narrows List and CountByType. Zero values match everything.
type Filter struct {
	EmergencyType string
	Since         *time.Time
	Until         *time.Time
}
