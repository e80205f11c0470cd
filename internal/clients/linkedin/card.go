package linkedin

import "time"

type JobCard struct {
	ExternalID string
	Title      string
	Company    string
	Location   string
	URL        string
	PostedDate *time.Time
}
