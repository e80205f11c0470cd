package entities

import "time"

// Job statuses are free-text labels used for display and filtering only.
const (
	JobStatusNew      = "new"
	JobStatusApplied  = "applied"
	JobStatusArchived = "archived"
)

type Job struct {
	ID             int        `gorm:"primaryKey;column:job_id" json:"job_id"`
	Company        string     `gorm:"not null;index:idx_job_identity,unique" json:"company"`
	Title          string     `gorm:"column:job_title;not null;index:idx_job_identity,unique" json:"job_title"`
	Description    string     `gorm:"column:job_description" json:"job_description"`
	JDFilePath     string     `gorm:"column:jd_file_path" json:"jd_file_path,omitempty"`
	URL            string     `gorm:"column:job_url;index" json:"job_url,omitempty"`
	PostedDate     *time.Time `gorm:"index:idx_job_identity,unique" json:"posted_date,omitempty"`
	DeadlineDate   *time.Time `json:"deadline_date,omitempty"`
	Location       string     `json:"location,omitempty"`
	SalaryRange    string     `json:"salary_range,omitempty"`
	EmploymentType string     `json:"employment_type,omitempty"`
	Source         string     `json:"source,omitempty"`
	Status         string     `gorm:"default:new" json:"status"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Variants     []Variant     `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Applications []Application `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"applications,omitempty"`
}
