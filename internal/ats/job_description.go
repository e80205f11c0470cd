package ats

import (
	"regexp"
	"strconv"
	"strings"
)

var sectionHeaders = map[string][]*regexp.Regexp{
	"responsibilities": {
		regexp.MustCompile(`responsibilities`),
		regexp.MustCompile(`what you.ll do`),
		regexp.MustCompile(`what youll do`),
		regexp.MustCompile(`job description`),
		regexp.MustCompile(`duties`),
		regexp.MustCompile(`day to day`),
	},
	"requirements": {
		regexp.MustCompile(`requirements`),
		regexp.MustCompile(`qualifications`),
		regexp.MustCompile(`what we.re looking for`),
		regexp.MustCompile(`what were looking for`),
		regexp.MustCompile(`you have`),
		regexp.MustCompile(`must have`),
		regexp.MustCompile(`required`),
		regexp.MustCompile(`skills`),
	},
	"nice_to_have": {
		regexp.MustCompile(`nice to have`),
		regexp.MustCompile(`preferred`),
		regexp.MustCompile(`bonus`),
		regexp.MustCompile(`plus`),
		regexp.MustCompile(`ideal candidate`),
		regexp.MustCompile(`desirable`),
	},
	"benefits": {
		regexp.MustCompile(`benefits`),
		regexp.MustCompile(`what we offer`),
		regexp.MustCompile(`perks`),
		regexp.MustCompile(`compensation`),
		regexp.MustCompile(`we offer`),
	},
}

var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\+?\s*(?:years?|yrs?)\s+(?:of\s+)?experience`),
	regexp.MustCompile(`(?i)experience\s+of\s+(\d+)\+?\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(?i)minimum\s+(\d+)\s+(?:years?|yrs?)`),
	regexp.MustCompile(`(?i)at least\s+(\d+)\s+(?:years?|yrs?)`),
}

var (
	markdownHeaderPattern = regexp.MustCompile(`^#+\s*`)
	emphasisMarkPattern   = regexp.MustCompile(`\*+`)
	bulletMarkPattern     = regexp.MustCompile(`^[*\-•◦▪→]+\s*`)
	numberedMarkPattern   = regexp.MustCompile(`^\d+[.)]\s*`)
)

var jobTitleKeywords = []string{
	"engineer", "administrator", "developer", "manager", "lead",
	"architect", "analyst", "specialist", "coordinator", "consultant",
	"director", "senior", "junior", "principal", "staff",
}

type JobDescriptionParser struct{}

func NewJobDescriptionParser() *JobDescriptionParser {
	return &JobDescriptionParser{}
}

type JobMetadata struct {
	Title    string
	Company  string
	Location string
}

func (p *JobDescriptionParser) Parse(text string, metadata JobMetadata) JobDescription {

	title := metadata.Title
	if title == "" {
		title = p.extractTitle(text)
	}

	sections := p.splitSections(text)

	return JobDescription{
		RawText:                 text,
		Title:                   title,
		Company:                 metadata.Company,
		Location:                metadata.Location,
		Responsibilities:        sections["responsibilities"],
		Requirements:            sections["requirements"],
		NiceToHave:              sections["nice_to_have"],
		Benefits:                sections["benefits"],
		RequiredExperienceYears: p.extractExperienceYears(text),
	}
}

func (p *JobDescriptionParser) extractTitle(text string) string {

	lines := strings.Split(strings.TrimSpace(text), "\n")
	limit := min(10, len(lines))

	for _, line := range lines[:limit] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lineLower := strings.ToLower(line)
		skip := false
		for _, header := range []string{"about", "we are", "location:", "responsibilities", "requirements"} {
			if strings.Contains(lineLower, header) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		if len(line) <= 10 || len(line) >= 100 {
			continue
		}

		title := markdownHeaderPattern.ReplaceAllString(line, "")
		title = emphasisMarkPattern.ReplaceAllString(title, "")
		title = bulletMarkPattern.ReplaceAllString(title, "")
		title = strings.TrimSpace(title)

		titleLower := strings.ToLower(title)
		for _, keyword := range jobTitleKeywords {
			if strings.Contains(titleLower, keyword) {
				return title
			}
		}

		if !strings.HasSuffix(title, ":") && len(strings.Fields(title)) <= 8 {
			return title
		}
	}

	return "Unknown Position"
}

func (p *JobDescriptionParser) splitSections(text string) map[string][]string {

	sections := map[string][]string{}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	currentSection := ""
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if section := identifySection(line); section != "" {
			currentSection = section
			continue
		}

		if currentSection == "" {
			continue
		}

		if bullet := extractBullet(line); bullet != "" {
			sections[currentSection] = append(sections[currentSection], bullet)
		}
	}

	return sections
}

func identifySection(line string) string {

	// Bullet and numbered lines are body text even when they mention a
	// header word.
	if bulletMarkPattern.MatchString(line) || numberedMarkPattern.MatchString(line) {
		return ""
	}

	lineLower := strings.ToLower(line)
	if len(lineLower) > 60 {
		return ""
	}

	// Headers are a few words, or end with a colon.
	trimmed := strings.TrimRight(lineLower, " *#")
	if !strings.HasSuffix(trimmed, ":") && len(strings.Fields(trimmed)) > 5 {
		return ""
	}

	for section, patterns := range sectionHeaders {
		for _, pattern := range patterns {
			if pattern.MatchString(lineLower) {
				return section
			}
		}
	}
	return ""
}

func extractBullet(line string) string {
	line = bulletMarkPattern.ReplaceAllString(line, "")
	line = numberedMarkPattern.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)

	if len(line) < 10 {
		return ""
	}
	return line
}

func (p *JobDescriptionParser) extractExperienceYears(text string) int {
	for _, pattern := range experiencePatterns {
		matches := pattern.FindStringSubmatch(text)
		if len(matches) >= 2 {
			if years, err := strconv.Atoi(matches[1]); err == nil {
				return years
			}
		}
	}
	return 0
}
