package ats

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/akimenko/resume-pilot/internal/resume"
)

// Weight distribution for the overall score.
const (
	weightKeyword    = 0.40
	weightExperience = 0.20
	weightSkills     = 0.20
	weightEducation  = 0.10
	weightFormat     = 0.10
)

// Keywords at or above this importance are treated as required.
const requiredImportance = 0.8

type Scorer struct {
	extractor *KeywordExtractor
	matcher   *KeywordMatcher
	jdParser  *JobDescriptionParser
}

func NewScorer() *Scorer {
	return &Scorer{
		extractor: NewKeywordExtractor(),
		matcher:   NewKeywordMatcher(),
		jdParser:  NewJobDescriptionParser(),
	}
}

// ScoreResume scores a parsed resume against a job description.
func (s *Scorer) ScoreResume(parsed *resume.ParsedResume, jobDescription string, metadata JobMetadata) Score {

	jd := s.jdParser.Parse(jobDescription, metadata)
	keywords := s.extractor.ExtractKeywords(jobDescription)
	matches := s.matcher.MatchKeywords(parsed, keywords)

	keywordScore := s.calculateKeywordScore(matches)
	experienceScore := s.calculateExperienceScore(parsed, jd)
	skillsScore := s.calculateSkillsScore(parsed, matches)
	educationScore := s.calculateEducationScore(parsed)
	formatScore := s.calculateFormatScore(parsed)

	overall := keywordScore*weightKeyword +
		experienceScore*weightExperience +
		skillsScore*weightSkills +
		educationScore*weightEducation +
		formatScore*weightFormat

	matched := lo.Filter(matches, func(m KeywordMatch, _ int) bool {
		return m.MatchType != MatchMissing
	})
	missing := lo.FilterMap(matches, func(m KeywordMatch, _ int) (Keyword, bool) {
		return m.Keyword, m.MatchType == MatchMissing
	})

	criticalGaps, improvements, enhancements := s.generateRecommendations(matches, parsed)

	matchRate := 0.0
	if len(keywords) > 0 {
		matchRate = float64(len(matched)) / float64(len(keywords))
	}

	requiredTotal := lo.CountBy(matches, func(m KeywordMatch) bool {
		return m.Keyword.Importance >= requiredImportance
	})
	requiredFound := lo.CountBy(matched, func(m KeywordMatch) bool {
		return m.Keyword.Importance >= requiredImportance
	})

	score := Score{
		OverallScore:    overall,
		KeywordScore:    keywordScore,
		ExperienceScore: experienceScore,
		EducationScore:  educationScore,
		SkillsScore:     skillsScore,
		FormatScore:     formatScore,
		MatchedKeywords: matched,
		MissingKeywords: missing,
		TotalKeywords:   len(keywords),
		MatchedCount:    len(matched),
		MatchRate:       matchRate,
		RequiredFound:   requiredFound,
		RequiredTotal:   requiredTotal,
		OptionalFound:   len(matched) - requiredFound,
		CriticalGaps:    criticalGaps,
		Improvements:    improvements,
		Enhancements:    enhancements,
		JobTitle:        jd.Title,
		ScoredAt:        time.Now(),
	}

	log.Infof("ATS score: %.1f/100 (%s)", score.OverallScore, score.Grade())
	return score
}

func (s *Scorer) calculateKeywordScore(matches []KeywordMatch) float64 {

	if len(matches) == 0 {
		return 0
	}

	totalWeightedScore := 0.0
	totalWeight := 0.0
	for _, match := range matches {
		totalWeightedScore += match.Score() * match.Keyword.Importance
		totalWeight += match.Keyword.Importance
	}

	if totalWeight == 0 {
		return 0
	}

	rawScore := totalWeightedScore / totalWeight * 100

	missingCritical := lo.CountBy(matches, func(m KeywordMatch) bool {
		return m.MatchType == MatchMissing && m.Keyword.Importance >= requiredImportance
	})

	score := rawScore - float64(missingCritical)*5
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func (s *Scorer) calculateExperienceScore(parsed *resume.ParsedResume, jd JobDescription) float64 {

	score := 0.0

	// Years of experience, one role approximates one year.
	if jd.RequiredExperienceYears > 0 {
		totalYears := len(parsed.Experience)
		if totalYears >= jd.RequiredExperienceYears {
			score += 40
		} else {
			score += 40 * float64(totalYears) / float64(jd.RequiredExperienceYears)
		}
	} else if len(parsed.Experience) > 0 {
		score += 30
	}

	// Title overlap with the posting.
	if len(parsed.Experience) > 0 && jd.Title != "" {
		titleKeywords := []string{"kafka", "administrator", "devops", "platform", "engineer", "sre", "backend", "golang"}
		jdTitle := strings.ToLower(jd.Title)

		for _, exp := range parsed.Experience {
			expTitle := strings.ToLower(exp.Title)
			overlap := lo.CountBy(titleKeywords, func(kw string) bool {
				return strings.Contains(expTitle, kw) && strings.Contains(jdTitle, kw)
			})
			if overlap > 0 {
				score += min(30, float64(overlap)*10)
				break
			}
		}
	} else if len(parsed.Experience) > 0 {
		score += 15
	}

	// Recency.
	if len(parsed.Experience) > 0 {
		if parsed.Experience[0].IsCurrent() {
			score += 15
		} else {
			score += 10
		}
	}

	// Breadth.
	if len(parsed.Experience) >= 2 {
		score += 15
	} else if len(parsed.Experience) == 1 {
		score += 10
	}

	return min(100, score)
}

func (s *Scorer) calculateSkillsScore(parsed *resume.ParsedResume, matches []KeywordMatch) float64 {

	score := 0.0

	matchRateFor := func(category KeywordCategory) float64 {
		all := lo.Filter(matches, func(m KeywordMatch, _ int) bool {
			return m.Keyword.Category == category
		})
		if len(all) == 0 {
			return 0
		}
		found := lo.CountBy(all, func(m KeywordMatch) bool {
			return m.MatchType != MatchMissing
		})
		return float64(found) / float64(len(all))
	}

	score += matchRateFor(CategoryTechnical) * 50
	score += matchRateFor(CategoryTool) * 25

	certMatched := lo.SomeBy(matches, func(m KeywordMatch) bool {
		return m.MatchType != MatchMissing && m.Keyword.Category == CategoryCertification
	})
	if certMatched {
		score += 15
	} else if len(parsed.Certifications) > 0 {
		score += 10
	}

	totalSkills := len(parsed.Skills.Technical) + len(parsed.Skills.Tools) + len(parsed.Skills.Languages)
	switch {
	case totalSkills >= 15:
		score += 10
	case totalSkills >= 10:
		score += 7
	case totalSkills >= 5:
		score += 5
	}

	return min(100, score)
}

func (s *Scorer) calculateEducationScore(parsed *resume.ParsedResume) float64 {

	if len(parsed.Education) == 0 {
		return 30
	}

	score := 50.0

	for _, edu := range parsed.Education {
		degree := strings.ToLower(edu.Degree)

		if containsAny(degree, "phd", "doctorate", "doctor") {
			score += 30
		} else if containsAny(degree, "master", "ms", "msc", "mba") {
			score += 25
		} else if containsAny(degree, "bachelor", "bs", "ba", "bsc") {
			score += 20
		} else if strings.Contains(degree, "diploma") {
			score += 15
		} else {
			continue
		}
		break
	}

	relevantFields := []string{"computer", "software", "information", "technology", "engineering", "science"}
	for _, edu := range parsed.Education {
		degree := strings.ToLower(edu.Degree)
		if containsAny(degree, relevantFields...) {
			score += 20
			break
		}
	}

	return min(100, score)
}

func (s *Scorer) calculateFormatScore(parsed *resume.ParsedResume) float64 {

	// LaTeX sources are already machine readable.
	score := 20.0

	sectionsPresent := 0
	if parsed.Personal.Name != "" {
		sectionsPresent++
	}
	if parsed.Personal.Email != "" {
		sectionsPresent++
	}
	if len(parsed.Experience) > 0 {
		sectionsPresent++
	}
	if len(parsed.Education) > 0 {
		sectionsPresent++
	}
	if len(parsed.Skills.Technical) > 0 || len(parsed.Skills.Tools) > 0 {
		sectionsPresent++
	}
	score += float64(sectionsPresent) / 5 * 40

	totalBullets := len(parsed.AllBullets())
	switch {
	case totalBullets >= 10 && totalBullets <= 25:
		score += 20
	case totalBullets >= 5 && totalBullets <= 30:
		score += 15
	default:
		score += 10
	}

	for _, present := range []bool{
		parsed.Personal.Email != "",
		parsed.Personal.Phone != "",
		parsed.Personal.LinkedIn != "",
		parsed.Personal.GitHub != "",
	} {
		if present {
			score += 5
		}
	}

	return min(100, score)
}

func (s *Scorer) generateRecommendations(matches []KeywordMatch, parsed *resume.ParsedResume) (criticalGaps []string, improvements []string, enhancements []string) {

	criticalMissing := lo.Filter(matches, func(m KeywordMatch, _ int) bool {
		return m.MatchType == MatchMissing && m.Keyword.Importance >= requiredImportance
	})
	for _, match := range firstN(criticalMissing, 5) {
		criticalGaps = append(criticalGaps,
			fmt.Sprintf("Add '%s' - one of the most important keywords in the posting", match.Keyword.Text))
	}

	weakMatches := lo.Filter(matches, func(m KeywordMatch, _ int) bool {
		return (m.MatchType == MatchPartial || m.MatchType == MatchStemmed) && m.Keyword.Importance >= 0.6
	})
	for _, match := range firstN(weakMatches, 5) {
		improvements = append(improvements,
			fmt.Sprintf("Strengthen '%s' - currently matched as '%s'", match.Keyword.Text, match.MatchedText))
	}

	lowFrequency := lo.Filter(matches, func(m KeywordMatch, _ int) bool {
		return (m.MatchType == MatchExact || m.MatchType == MatchSynonym) &&
			m.Frequency == 1 && m.Keyword.Importance >= 0.7
	})
	for _, match := range firstN(lowFrequency, 3) {
		improvements = append(improvements,
			fmt.Sprintf("Use '%s' more frequently - currently only appears once", match.Keyword.Text))
	}

	niceToHave := lo.Filter(matches, func(m KeywordMatch, _ int) bool {
		return m.MatchType == MatchMissing && m.Keyword.Importance >= 0.4 && m.Keyword.Importance < 0.6
	})
	for _, match := range firstN(niceToHave, 5) {
		enhancements = append(enhancements,
			fmt.Sprintf("Consider adding '%s' to boost relevance", match.Keyword.Text))
	}

	if parsed.Summary == "" {
		improvements = append(improvements, "Add a professional summary highlighting key qualifications")
	}
	if len(parsed.AllBullets()) < 10 {
		improvements = append(improvements, "Add more bullet points with quantified achievements")
	}
	if len(parsed.Certifications) == 0 {
		enhancements = append(enhancements, "Add relevant certifications if you have any")
	}

	return criticalGaps, improvements, enhancements
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
