package entities

import "time"

// Activity kinds recorded in the audit feed.
const (
	ActivityJobImported      = "job_imported"
	ActivityJobUpdated       = "job_updated"
	ActivityVariantGenerated = "variant_generated"
	ActivityVariantScored    = "variant_scored"
	ActivityStatusChanged    = "status_changed"
	ActivityScrapeFinished   = "scrape_finished"
)

type Activity struct {
	ID        int       `gorm:"primaryKey;column:activity_id" json:"activity_id"`
	Kind      string    `gorm:"not null;index" json:"kind"`
	JobID     *int      `gorm:"index" json:"job_id,omitempty"`
	VariantID string    `json:"variant_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
