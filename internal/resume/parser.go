package resume

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	personalPatterns = map[string][]*regexp.Regexp{
		"name": {
			regexp.MustCompile(`(?i)\\name\s*\{([^}]+)\}`),
			regexp.MustCompile(`(?i)\\author\s*\{([^}]+)\}`),
		},
		"email": {
			regexp.MustCompile(`(?i)\\email\s*\{([^}]+)\}`),
			regexp.MustCompile(`([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
		},
		"phone": {
			regexp.MustCompile(`(?i)\\phone\s*\{([^}]+)\}`),
			regexp.MustCompile(`(?i)\\mobile\s*\{([^}]+)\}`),
			regexp.MustCompile(`\+?\d{1,3}[\s-]?\d{3,4}[\s-]?\d{4,}`),
		},
		"location": {
			regexp.MustCompile(`(?i)\\location\s*\{([^}]+)\}`),
			regexp.MustCompile(`(?i)\\address\s*\{([^}]+)\}`),
		},
		"linkedin": {
			regexp.MustCompile(`(?i)\\linkedin\s*\{([^}]+)\}`),
			regexp.MustCompile(`linkedin\.com/in/([a-zA-Z0-9-]+)`),
		},
		"github": {
			regexp.MustCompile(`(?i)\\github\s*\{([^}]+)\}`),
			regexp.MustCompile(`github\.com/([a-zA-Z0-9-]+)`),
		},
	}

	nameFromBfseries = regexp.MustCompile(`(?i)\\(?:Huge|LARGE|Large|large)?\s*\\bfseries\s+([A-Z][a-zA-Z\s]+?)(?:\\\\|\})`)

	resumeSubheadingStart = regexp.MustCompile(`\\resumeSubheading\s*\{`)
	resumeItemStart       = regexp.MustCompile(`\\resumeItem\s*\{`)

	titleCompanyPattern = regexp.MustCompile(`(?m)^(.+?)\s*(?:--|\||@)\s*(.+?)$`)
	monthDatePattern    = regexp.MustCompile(`(?i)(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{4}`)
	newcommandPattern   = regexp.MustCompile(`(?s)\\(?:re)?newcommand\s*\{\s*\\[a-zA-Z0-9_]+\s*\}\s*(?:\[\d+\])?\s*\{(?:[^{}]|\{[^{}]*\})*\}`)
	skillCategoryLine   = regexp.MustCompile(`(?i)([A-Za-z\s/]+):\s*([^\n]+)`)
)

// Parser reads a LaTeX resume built on the common resumeSubheading and
// resumeItem template commands, with fallbacks for plain subsection layouts.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) ParseFile(path string) (*ParsedResume, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}

	parsed := p.Parse(string(raw))
	parsed.SourceFile = path

	log.Infof("parsed resume: %d bullets, %d experiences, %d education entries",
		len(parsed.AllBullets()), len(parsed.Experience), len(parsed.Education))

	return parsed, nil
}

func (p *Parser) Parse(content string) *ParsedResume {
	// Macro definitions confuse section splitting, drop them first.
	stripped := newcommandPattern.ReplaceAllString(content, "")
	sections := extractSections(stripped)

	parsed := &ParsedResume{
		Personal:   p.extractPersonal(content),
		Summary:    p.extractSummary(sections),
		Experience: p.extractExperience(sections),
		Education:  p.extractEducation(sections),
		Skills:     p.extractSkills(sections),
	}
	parsed.Certifications = p.extractListSection(sections, `certifications?`)

	return parsed
}

func (p *Parser) extractPersonal(content string) PersonalInfo {
	values := map[string]string{}

	for field, patterns := range personalPatterns {
		for _, pattern := range patterns {
			match := pattern.FindStringSubmatch(content)
			if match == nil {
				continue
			}

			value := match[0]
			if len(match) > 1 {
				value = match[1]
			}
			value = latexToText(strings.TrimSpace(value))

			if field == "linkedin" || field == "github" {
				if idx := strings.LastIndex(value, "/"); idx >= 0 {
					value = value[idx+1:]
				}
			}

			values[field] = value
			break
		}
	}

	personal := PersonalInfo{
		Name:     values["name"],
		Email:    values["email"],
		Phone:    values["phone"],
		Location: values["location"],
		LinkedIn: values["linkedin"],
		GitHub:   values["github"],
	}

	if personal.Name == "" {
		if match := nameFromBfseries.FindStringSubmatch(content); match != nil {
			personal.Name = strings.TrimSpace(match[1])
		}
	}

	return personal
}

func (p *Parser) extractSummary(sections []latexSection) string {
	section := findSection(sections, `summary|objective|profile`)
	if section == nil {
		return ""
	}

	text := section.Content
	if idx := strings.Index(text, `\begin{itemize}`); idx >= 0 {
		text = text[:idx]
	}

	text = latexToText(text)
	if len(text) < 50 {
		return ""
	}
	return text
}

func (p *Parser) extractExperience(sections []latexSection) []ExperienceEntry {
	section := findSection(sections, `experience|work\s*history|employment`)
	if section == nil {
		log.Warn("no experience section found in resume")
		return nil
	}

	if entries := p.parseSubheadingExperience(section.Content); len(entries) > 0 {
		return entries
	}

	return p.parseSubsectionExperience(section.Content)
}

func (p *Parser) parseSubheadingExperience(content string) []ExperienceEntry {
	var entries []ExperienceEntry

	for _, loc := range resumeSubheadingStart.FindAllStringIndex(content, -1) {
		args, pos := readBraceArgs(content, loc[1]-1, 4)
		if len(args) < 4 {
			continue
		}

		title := latexToText(args[0])
		dateRange := strings.TrimSpace(args[1])
		company := latexToText(args[2])
		location := latexToText(args[3])

		startDate, endDate := splitDateRange(dateRange)

		rest := content[pos:]
		if next := resumeSubheadingStart.FindStringIndex(rest); next != nil {
			rest = rest[:next[0]]
		}

		bullets := p.parseResumeItems(rest, company)
		if len(bullets) == 0 {
			continue
		}

		entries = append(entries, ExperienceEntry{
			Title:     title,
			Company:   company,
			Location:  location,
			StartDate: startDate,
			EndDate:   endDate,
			Bullets:   bullets,
		})
	}

	return entries
}

func (p *Parser) parseResumeItems(content string, company string) []BulletPoint {
	var bullets []BulletPoint

	for _, loc := range resumeItemStart.FindAllStringIndex(content, -1) {
		raw, _ := extractBalancedBraces(content, loc[1]-1)
		text := latexToText(raw)
		if text == "" {
			continue
		}

		bullets = append(bullets, BulletPoint{
			ID:           bulletID(company, len(bullets)),
			Text:         text,
			Section:      "experience",
			Subsection:   company,
			IsModifiable: true,
			OriginalText: strings.TrimSpace(raw),
		})
	}

	return bullets
}

func (p *Parser) parseSubsectionExperience(content string) []ExperienceEntry {
	var entries []ExperienceEntry

	for _, sub := range extractSubsections(content) {
		title, company := sub.Title, "Unknown"
		if match := titleCompanyPattern.FindStringSubmatch(sub.Title); match != nil {
			title = latexToText(match[1])
			company = latexToText(match[2])
		} else {
			title = latexToText(title)
		}

		dates := monthDatePattern.FindAllString(sub.Content, 2)
		startDate, endDate := "", ""
		if len(dates) > 0 {
			startDate, endDate = dates[0], dates[0]
		}
		if len(dates) > 1 {
			endDate = dates[1]
		}

		var bullets []BulletPoint
		for _, item := range extractItemizeItems(sub.Content) {
			text := latexToText(item)
			if text == "" {
				continue
			}
			bullets = append(bullets, BulletPoint{
				ID:           bulletID(company, len(bullets)),
				Text:         text,
				Section:      "experience",
				Subsection:   company,
				IsModifiable: true,
				OriginalText: item,
			})
		}

		entries = append(entries, ExperienceEntry{
			Title:     title,
			Company:   company,
			StartDate: startDate,
			EndDate:   endDate,
			Bullets:   bullets,
		})
	}

	return entries
}

func (p *Parser) extractEducation(sections []latexSection) []EducationEntry {
	section := findSection(sections, `education`)
	if section == nil {
		return nil
	}

	var entries []EducationEntry
	for _, loc := range resumeSubheadingStart.FindAllStringIndex(section.Content, -1) {
		args, _ := readBraceArgs(section.Content, loc[1]-1, 4)
		if len(args) < 4 {
			continue
		}

		entries = append(entries, EducationEntry{
			Institution:    latexToText(args[0]),
			Location:       latexToText(args[1]),
			Degree:         latexToText(args[2]),
			GraduationDate: strings.TrimSpace(args[3]),
		})
	}

	if len(entries) > 0 {
		return entries
	}

	for _, sub := range extractSubsections(section.Content) {
		degree, institution := latexToText(sub.Title), ""
		if match := titleCompanyPattern.FindStringSubmatch(sub.Title); match != nil {
			degree = latexToText(match[1])
			institution = latexToText(match[2])
		}

		gradDate := ""
		if dates := monthDatePattern.FindAllString(sub.Content, 1); len(dates) > 0 {
			gradDate = dates[0]
		}

		entries = append(entries, EducationEntry{
			Degree:         degree,
			Institution:    institution,
			GraduationDate: gradDate,
		})
	}

	return entries
}

func (p *Parser) extractSkills(sections []latexSection) SkillsSection {
	var skills SkillsSection

	section := findSection(sections, `(?:technical\s*)?skills|technologies`)
	if section == nil {
		return skills
	}

	for _, line := range strings.Split(section.Content, "\n") {
		match := skillCategoryLine.FindStringSubmatch(latexToText(line))
		if match == nil {
			continue
		}

		category := strings.ToLower(strings.TrimSpace(match[1]))
		items := splitCommaList(match[2])

		switch {
		case strings.Contains(category, "programming"),
			strings.Contains(category, "technical"),
			strings.Contains(category, "scripting"),
			strings.Contains(category, "ecosystem"):
			skills.Technical = append(skills.Technical, items...)
		case strings.Contains(category, "language"):
			skills.Languages = append(skills.Languages, items...)
		default:
			skills.Tools = append(skills.Tools, items...)
		}
	}

	skills.Technical = dedupeStrings(skills.Technical)
	skills.Tools = dedupeStrings(skills.Tools)
	skills.Languages = dedupeStrings(skills.Languages)

	return skills
}

func (p *Parser) extractListSection(sections []latexSection, namePattern string) []string {
	section := findSection(sections, namePattern)
	if section == nil {
		return nil
	}

	var items []string
	for _, item := range extractItemizeItems(section.Content) {
		if text := latexToText(item); text != "" {
			items = append(items, text)
		}
	}

	if len(items) == 0 {
		for _, loc := range resumeItemStart.FindAllStringIndex(section.Content, -1) {
			raw, _ := extractBalancedBraces(section.Content, loc[1]-1)
			if text := latexToText(raw); text != "" {
				items = append(items, text)
			}
		}
	}

	return items
}

func extractSubsections(content string) []latexSection {
	var subs []latexSection
	for _, section := range extractSections(content) {
		if section.Level == 2 {
			subs = append(subs, section)
		}
	}
	return subs
}

// readBraceArgs reads up to n consecutive brace groups starting at pos and
// returns their contents plus the index just past the last closing brace.
func readBraceArgs(text string, pos int, n int) ([]string, int) {
	var args []string

	for len(args) < n {
		pos = skipWhitespace(text, pos)
		if pos >= len(text) || text[pos] != '{' {
			break
		}

		arg, end := extractBalancedBraces(text, pos)
		args = append(args, strings.TrimSpace(arg))
		pos = end + 1
	}

	return args, pos
}

func splitDateRange(dateRange string) (string, string) {
	parts := strings.SplitN(dateRange, "--", 2)
	start := strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		return start, strings.TrimSpace(parts[1])
	}
	return start, start
}

func bulletID(company string, index int) string {
	slug := strings.ToLower(strings.ReplaceAll(company, " ", "_"))
	slug = strings.ReplaceAll(slug, "&", "and")
	return fmt.Sprintf("%s_%d", slug, index)
}

func splitCommaList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			items = append(items, s)
		}
	}
	return items
}

func dedupeStrings(items []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
