package ats

import (
	"regexp"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/kljensen/snowball/english"

	"github.com/akimenko/resume-pilot/internal/resume"
)

var (
	quantificationPattern = regexp.MustCompile(`\d+[%+]?`)
	resumeWordPattern     = regexp.MustCompile(`\b\w+\b`)
)

var contextActionVerbs = []string{
	"managed", "implemented", "developed", "created", "designed",
	"optimized", "improved", "configured", "automated", "deployed",
}

var contextImpactWords = []string{
	"increased", "reduced", "improved", "achieved", "delivered",
}

type KeywordMatcher struct {
	fuzzyThreshold float64
	similarity     *metrics.JaroWinkler
}

func NewKeywordMatcher() *KeywordMatcher {
	return &KeywordMatcher{
		fuzzyThreshold: 0.85,
		similarity:     metrics.NewJaroWinkler(),
	}
}

// MatchKeywords matches every keyword against the resume and reports how
// each one was found, or that it is missing.
func (m *KeywordMatcher) MatchKeywords(parsed *resume.ParsedResume, keywords []Keyword) []KeywordMatch {

	fullText := buildResumeText(parsed)
	sectionTexts := buildSectionTexts(parsed)

	matches := make([]KeywordMatch, 0, len(keywords))
	for _, keyword := range keywords {
		matches = append(matches, m.matchSingleKeyword(keyword, fullText, sectionTexts))
	}
	return matches
}

func buildResumeText(parsed *resume.ParsedResume) string {

	var parts []string
	appendNonEmpty := func(values ...string) {
		for _, v := range values {
			if v != "" {
				parts = append(parts, v)
			}
		}
	}

	appendNonEmpty(parsed.Personal.Name, parsed.Summary)

	for _, exp := range parsed.Experience {
		appendNonEmpty(exp.Title, exp.Company)
		for _, bullet := range exp.Bullets {
			appendNonEmpty(bullet.Text)
		}
	}

	for _, edu := range parsed.Education {
		appendNonEmpty(edu.Degree, edu.Institution)
	}

	appendNonEmpty(parsed.Skills.Technical...)
	appendNonEmpty(parsed.Skills.Tools...)
	appendNonEmpty(parsed.Skills.Languages...)
	appendNonEmpty(parsed.Certifications...)

	return strings.ToLower(strings.Join(parts, " "))
}

func buildSectionTexts(parsed *resume.ParsedResume) map[string]string {

	sections := map[string]string{}

	if parsed.Summary != "" {
		sections["summary"] = strings.ToLower(parsed.Summary)
	}

	var expParts []string
	for _, exp := range parsed.Experience {
		expParts = append(expParts, exp.Title, exp.Company)
		for _, bullet := range exp.Bullets {
			expParts = append(expParts, bullet.Text)
		}
	}
	sections["experience"] = strings.ToLower(strings.Join(expParts, " "))

	var skillParts []string
	skillParts = append(skillParts, parsed.Skills.Technical...)
	skillParts = append(skillParts, parsed.Skills.Tools...)
	sections["skills"] = strings.ToLower(strings.Join(skillParts, " "))

	var eduParts []string
	for _, edu := range parsed.Education {
		eduParts = append(eduParts, edu.Degree, edu.Institution)
	}
	sections["education"] = strings.ToLower(strings.Join(eduParts, " "))

	return sections
}

func (m *KeywordMatcher) matchSingleKeyword(keyword Keyword, fullText string, sectionTexts map[string]string) KeywordMatch {

	if match, ok := m.exactMatch(keyword, fullText, sectionTexts); ok {
		return match
	}
	if match, ok := m.synonymMatch(keyword, fullText, sectionTexts); ok {
		return match
	}
	if match, ok := m.stemmedMatch(keyword, fullText, sectionTexts); ok {
		return match
	}
	if match, ok := m.fuzzyMatch(keyword, fullText, sectionTexts); ok {
		return match
	}

	return KeywordMatch{
		Keyword:   keyword,
		MatchType: MatchMissing,
	}
}

func wholeWordPattern(text string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(text)) + `\b`)
}

func sectionsContaining(pattern *regexp.Regexp, sectionTexts map[string]string) []string {
	var locations []string
	for _, section := range []string{"summary", "experience", "skills", "education"} {
		if text, ok := sectionTexts[section]; ok && pattern.MatchString(text) {
			locations = append(locations, section)
		}
	}
	return locations
}

func (m *KeywordMatcher) exactMatch(keyword Keyword, fullText string, sectionTexts map[string]string) (KeywordMatch, bool) {

	pattern := wholeWordPattern(keyword.Text)
	if !pattern.MatchString(fullText) {
		return KeywordMatch{}, false
	}

	return KeywordMatch{
		Keyword:      keyword,
		MatchType:    MatchExact,
		MatchedText:  keyword.Text,
		Locations:    sectionsContaining(pattern, sectionTexts),
		Frequency:    len(pattern.FindAllString(fullText, -1)),
		ContextScore: m.calculateContextScore(keyword.Text, fullText),
	}, true
}

func (m *KeywordMatcher) synonymMatch(keyword Keyword, fullText string, sectionTexts map[string]string) (KeywordMatch, bool) {

	for _, synonym := range keyword.Synonyms {
		pattern := wholeWordPattern(synonym)
		if !pattern.MatchString(fullText) {
			continue
		}

		return KeywordMatch{
			Keyword:      keyword,
			MatchType:    MatchSynonym,
			MatchedText:  synonym,
			Locations:    sectionsContaining(pattern, sectionTexts),
			Frequency:    len(pattern.FindAllString(fullText, -1)),
			ContextScore: m.calculateContextScore(synonym, fullText),
		}, true
	}

	return KeywordMatch{}, false
}

func (m *KeywordMatcher) stemmedMatch(keyword Keyword, fullText string, sectionTexts map[string]string) (KeywordMatch, bool) {

	keywordStem := english.Stem(strings.ToLower(keyword.Text), false)

	counts := map[string]int{}
	for _, word := range resumeWordPattern.FindAllString(fullText, -1) {
		if english.Stem(strings.ToLower(word), false) == keywordStem {
			counts[word]++
		}
	}

	if len(counts) == 0 {
		return KeywordMatch{}, false
	}

	matchedText := ""
	frequency := 0
	total := 0
	for word, count := range counts {
		total += count
		if count > frequency || (count == frequency && word < matchedText) {
			matchedText = word
			frequency = count
		}
	}

	var locations []string
	for _, section := range []string{"summary", "experience", "skills", "education"} {
		if text, ok := sectionTexts[section]; ok && strings.Contains(text, strings.ToLower(matchedText)) {
			locations = append(locations, section)
		}
	}

	return KeywordMatch{
		Keyword:     keyword,
		MatchType:   MatchStemmed,
		MatchedText: matchedText,
		Locations:   locations,
		Frequency:   total,
	}, true
}

func (m *KeywordMatcher) fuzzyMatch(keyword Keyword, fullText string, sectionTexts map[string]string) (KeywordMatch, bool) {

	keywordLower := strings.ToLower(keyword.Text)

	bestMatch := ""
	bestRatio := 0.0
	for _, word := range resumeWordPattern.FindAllString(fullText, -1) {
		ratio := strutil.Similarity(keywordLower, strings.ToLower(word), m.similarity)
		if ratio > bestRatio && ratio >= m.fuzzyThreshold {
			bestRatio = ratio
			bestMatch = word
		}
	}

	if bestMatch == "" {
		return KeywordMatch{}, false
	}

	var locations []string
	for _, section := range []string{"summary", "experience", "skills", "education"} {
		if text, ok := sectionTexts[section]; ok && strings.Contains(text, strings.ToLower(bestMatch)) {
			locations = append(locations, section)
		}
	}

	return KeywordMatch{
		Keyword:     keyword,
		MatchType:   MatchPartial,
		MatchedText: bestMatch,
		Locations:   locations,
		Frequency:   strings.Count(fullText, strings.ToLower(bestMatch)),
	}, true
}

// calculateContextScore rewards keywords surrounded by action verbs,
// numbers and impact words.
func (m *KeywordMatcher) calculateContextScore(keywordText string, fullText string) float64 {

	score := 0.0
	pattern := wholeWordPattern(keywordText)

	for _, loc := range pattern.FindAllStringIndex(fullText, -1) {
		start := max(0, loc[0]-50)
		end := min(len(fullText), loc[1]+50)
		context := fullText[start:end]

		for _, verb := range contextActionVerbs {
			if strings.Contains(context, verb) {
				score += 0.3
				break
			}
		}

		if quantificationPattern.MatchString(context) {
			score += 0.3
		}

		for _, word := range contextImpactWords {
			if strings.Contains(context, word) {
				score += 0.2
				break
			}
		}

		if score > 0.8 {
			score = 0.8
		}
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}
