package entities

import "time"

// Application statuses follow the pipeline order used by the dashboard.
const (
	ApplicationStatusDraft     = "draft"
	ApplicationStatusApplied   = "applied"
	ApplicationStatusScreening = "screening"
	ApplicationStatusInterview = "interview"
	ApplicationStatusOffer     = "offer"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusWithdrawn = "withdrawn"
)

// ApplicationStatuses lists every status accepted by the API, in pipeline order.
var ApplicationStatuses = []string{
	ApplicationStatusDraft,
	ApplicationStatusApplied,
	ApplicationStatusScreening,
	ApplicationStatusInterview,
	ApplicationStatusOffer,
	ApplicationStatusRejected,
	ApplicationStatusWithdrawn,
}

func IsValidApplicationStatus(status string) bool {
	for _, s := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Application struct {
	ID          int        `gorm:"primaryKey;column:application_id" json:"application_id"`
	JobID       int        `gorm:"not null;index" json:"job_id"`
	VariantID   string     `gorm:"index" json:"variant_id,omitempty"`
	Status      string     `gorm:"default:draft" json:"status"`
	AppliedAt   *time.Time `json:"applied_at,omitempty"`
	FollowUpAt  *time.Time `json:"follow_up_at,omitempty"`
	ResponseAt  *time.Time `json:"response_at,omitempty"`
	InterviewAt *time.Time `json:"interview_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
