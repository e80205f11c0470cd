package scraper

import "time"

// ScrapedJob is a normalized job card held in a preview buffer until the
// user imports it.
type ScrapedJob struct {
	TempID      string     `json:"temp_id"`
	ExternalID  string     `json:"external_id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	URL         string     `json:"url"`
	Description string     `json:"description,omitempty"`
	PostedDate  *time.Time `json:"posted_date,omitempty"`
	RemoteType  string     `json:"remote_type,omitempty"`
	SalaryRange string     `json:"salary_range,omitempty"`
	Fingerprint string     `json:"-"`
	Duplicate   bool       `json:"duplicate"`
	DuplicateOf string     `json:"duplicate_of,omitempty"`
}
