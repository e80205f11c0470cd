package events

var JobsImportedTopic = "JobsImportedEvent"

type JobsImported struct {
	Imported  int      `json:"imported"`
	Skipped   int      `json:"skipped"`
	Companies []string `json:"companies,omitempty"`
}

var VariantGeneratedTopic = "VariantGeneratedEvent"

type VariantGenerated struct {
	VariantID string
	JobTitle  string
	Company   string
	Score     float64
	Grade     string
}
