package scraper

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	log "github.com/sirupsen/logrus"
)

// Deduplicator removes repeated postings from a scrape batch using an exact
// fingerprint pass followed by fuzzy title matching within the same company.
type Deduplicator struct {
	fuzzyThreshold float64
	similarity     strutil.StringMetric
}

// NewDeduplicator takes a threshold in percent. Values of 90-95 keep false
// positives low, 80-85 match more aggressively.
func NewDeduplicator(fuzzyThreshold int) *Deduplicator {
	return &Deduplicator{
		fuzzyThreshold: float64(fuzzyThreshold),
		similarity:     metrics.NewLevenshtein(),
	}
}

// Fingerprint is a deterministic key for exact duplicate detection.
func Fingerprint(company string, title string, location string) string {
	normalized := fmt.Sprintf("%s|%s|%s",
		strings.ToLower(strings.TrimSpace(company)),
		strings.ToLower(strings.TrimSpace(title)),
		strings.ToLower(strings.TrimSpace(location)),
	)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}

// MarkDuplicates flags repeated jobs in place, keeping the first occurrence
// as primary, and returns the number of duplicates found.
func (d *Deduplicator) MarkDuplicates(jobs []ScrapedJob) int {
	for i := range jobs {
		jobs[i].Fingerprint = Fingerprint(jobs[i].Company, jobs[i].Title, jobs[i].Location)
	}

	duplicates := 0

	seen := map[string]int{}
	for i := range jobs {
		if primary, ok := seen[jobs[i].Fingerprint]; ok {
			jobs[i].Duplicate = true
			jobs[i].DuplicateOf = jobs[primary].ExternalID
			duplicates++
			continue
		}
		seen[jobs[i].Fingerprint] = i
	}

	if d.fuzzyThreshold < 100 {
		duplicates += d.markFuzzyDuplicates(jobs)
	}

	if duplicates > 0 {
		log.Infof("deduplication: %d of %d scraped jobs are duplicates", duplicates, len(jobs))
	}
	return duplicates
}

func (d *Deduplicator) markFuzzyDuplicates(jobs []ScrapedJob) int {
	duplicates := 0

	for i := range jobs {
		if jobs[i].Duplicate {
			continue
		}

		for j := i + 1; j < len(jobs); j++ {
			if jobs[j].Duplicate {
				continue
			}
			if !strings.EqualFold(jobs[i].Company, jobs[j].Company) {
				continue
			}

			if d.Similarity(jobs[i], jobs[j]) >= d.fuzzyThreshold {
				jobs[j].Duplicate = true
				jobs[j].DuplicateOf = jobs[i].ExternalID
				duplicates++
			}
		}
	}

	return duplicates
}

// Similarity scores two jobs in percent, weighted toward the title.
func (d *Deduplicator) Similarity(a ScrapedJob, b ScrapedJob) float64 {
	titleSim := strutil.Similarity(strings.ToLower(a.Title), strings.ToLower(b.Title), d.similarity)
	locationSim := strutil.Similarity(strings.ToLower(a.Location), strings.ToLower(b.Location), d.similarity)

	return (titleSim*0.7 + locationSim*0.3) * 100
}
