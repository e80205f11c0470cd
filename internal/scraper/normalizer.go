package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/akimenko/resume-pilot/internal/clients/linkedin"
)

const (
	RemoteTypeRemote = "remote"
	RemoteTypeHybrid = "hybrid"
	RemoteTypeOnsite = "onsite"
)

var (
	multipleSpaces   = regexp.MustCompile(`[ \t]+`)
	multipleNewlines = regexp.MustCompile(`\n{3,}`)

	remotePatterns = []struct {
		kind    string
		pattern *regexp.Regexp
	}{
		{RemoteTypeRemote, regexp.MustCompile(`(?i)\b(?:remote|work from home|wfh|distributed|anywhere)\b`)},
		{RemoteTypeHybrid, regexp.MustCompile(`(?i)\b(?:hybrid|flexible)\b`)},
		{RemoteTypeOnsite, regexp.MustCompile(`(?i)\b(?:onsite|on-site|in-office|office-based)\b`)},
	}

	salaryRangePattern  = regexp.MustCompile(`\$\s*([0-9]+[kK]|[0-9]{1,3}(?:,[0-9]{3})*)\s*(?:to|-|–|and)\s*\$?\s*([0-9]+[kK]|[0-9]{1,3}(?:,[0-9]{3})*)`)
	salaryPeriodPattern = regexp.MustCompile(`(?i)(?:per hour|hourly|/hour|/hr)`)
)

// Normalizer turns raw job cards into preview rows ready for import.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Normalize(card linkedin.JobCard, description string) ScrapedJob {
	title := CleanText(card.Title)
	company := CleanText(card.Company)
	location := CleanText(card.Location)
	description = CleanText(description)

	return ScrapedJob{
		ExternalID:  card.ExternalID,
		Title:       title,
		Company:     company,
		Location:    location,
		URL:         card.URL,
		Description: description,
		PostedDate:  card.PostedDate,
		RemoteType:  DetectRemoteType(title + " " + location),
		SalaryRange: ExtractSalaryRange(description),
	}
}

// CleanText strips zero-width characters and collapses runs of whitespace
// while keeping paragraph breaks.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = strings.NewReplacer("\u200B", "", "\uFEFF", "", "\r", "").Replace(text)
	text = multipleSpaces.ReplaceAllString(text, " ")
	text = multipleNewlines.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func DetectRemoteType(text string) string {
	for _, rp := range remotePatterns {
		if rp.pattern.MatchString(text) {
			return rp.kind
		}
	}
	return ""
}

// ExtractSalaryRange returns a normalized "min - max" salary string from a
// job description, or empty when nothing advertised.
func ExtractSalaryRange(text string) string {
	match := salaryRangePattern.FindStringSubmatchIndex(text)
	if match == nil {
		return ""
	}

	minVal := parseSalaryNumber(text[match[2]:match[3]])
	maxVal := parseSalaryNumber(text[match[4]:match[5]])
	if minVal == 0 || maxVal == 0 {
		return ""
	}

	if minVal > maxVal {
		minVal, maxVal = maxVal, minVal
	}

	period := "yearly"
	start := max(0, match[0]-50)
	end := min(len(text), match[1]+50)
	if salaryPeriodPattern.MatchString(text[start:end]) {
		period = "hourly"
	}

	// Bare small yearly numbers advertise thousands.
	if period == "yearly" && minVal < 1000 && maxVal < 1000 {
		minVal *= 1000
		maxVal *= 1000
	}

	return fmt.Sprintf("$%s - $%s %s", formatSalary(minVal), formatSalary(maxVal), period)
}

func parseSalaryNumber(raw string) float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")

	multiplier := 1.0
	if strings.HasSuffix(strings.ToUpper(raw), "K") {
		raw = raw[:len(raw)-1]
		multiplier = 1000
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value * multiplier
}

func formatSalary(value float64) string {
	if value >= 1000 && value == float64(int(value)) {
		s := strconv.Itoa(int(value))
		var parts []string
		for len(s) > 3 {
			parts = append([]string{s[len(s)-3:]}, parts...)
			s = s[:len(s)-3]
		}
		parts = append([]string{s}, parts...)
		return strings.Join(parts, ",")
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
