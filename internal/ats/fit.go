package ats

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/akimenko/resume-pilot/internal/resume"
)

// Weight distribution for the fit assessment. Skills dominate, the
// rest measures how the career itself lines up with the role.
const (
	fitWeightSkills     = 0.35
	fitWeightExperience = 0.30
	fitWeightTrajectory = 0.15
	fitWeightCulture    = 0.10
	fitWeightEducation  = 0.10
)

type FitLevel string

const (
	FitExcellent FitLevel = "excellent"
	FitStrong    FitLevel = "strong"
	FitGood      FitLevel = "good"
	FitModerate  FitLevel = "moderate"
	FitWeak      FitLevel = "weak"
	FitPoor      FitLevel = "poor"
)

type CareerLevel string

const (
	LevelEntry  CareerLevel = "entry"
	LevelJunior CareerLevel = "junior"
	LevelMid    CareerLevel = "mid"
	LevelSenior CareerLevel = "senior"
)

var careerLevelRanks = map[CareerLevel]int{
	LevelEntry:  1,
	LevelJunior: 2,
	LevelMid:    3,
	LevelSenior: 4,
}

// FitReport answers a different question than Score: not "will the
// resume pass the keyword filter" but "is this candidate actually a
// match for the role".
type FitReport struct {
	OverallFit float64  `json:"overall_fit"`
	Level      FitLevel `json:"fit_level"`

	SkillFit      float64 `json:"skill_fit"`
	ExperienceFit float64 `json:"experience_fit"`
	TrajectoryFit float64 `json:"trajectory_fit"`
	CultureFit    float64 `json:"culture_fit"`
	EducationFit  float64 `json:"education_fit"`

	CurrentLevel     CareerLevel `json:"current_level"`
	TargetLevel      CareerLevel `json:"target_level"`
	ProgressionTrend string      `json:"progression_trend"`
	Specializations  []string    `json:"specializations,omitempty"`

	Strengths        []string `json:"strengths"`
	CriticalGaps     []string `json:"critical_gaps"`
	DevelopmentAreas []string `json:"development_areas"`

	JobTitle    string    `json:"job_title"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

func (r FitReport) GoodFit() bool {
	return r.OverallFit >= 70
}

func (r FitReport) Recommendation() string {
	switch {
	case r.OverallFit >= 85:
		return "Apply now, the profile fits across every dimension"
	case r.OverallFit >= 75:
		return "Apply, the remaining gaps are minor"
	case r.OverallFit >= 65:
		return "Worth applying if the role is attractive, expect questions on the gaps"
	case r.OverallFit >= 55:
		return "Close the critical skill gaps before applying"
	default:
		return "Poor fit for this role"
	}
}

var yearPattern = regexp.MustCompile(`(?:19|20)\d{2}`)

var seniorityStopwords = []string{"senior", "sr", "junior", "jr", "lead", "staff", "principal", "engineer", "developer"}

var careerLevelKeywords = map[CareerLevel][]string{
	LevelSenior: {"senior", "sr.", "lead", "principal", "staff"},
	LevelJunior: {"junior", "jr.", "associate"},
	LevelEntry:  {"intern", "trainee", "apprentice"},
}

var specializationKeywords = map[string][]string{
	"Event Streaming":    {"kafka", "streaming", "real-time", "event-driven"},
	"DevOps":             {"devops", "ci/cd", "automation", "infrastructure"},
	"Cloud Architecture": {"cloud", "aws", "azure", "gcp"},
	"Data Engineering":   {"data pipeline", "etl", "data processing"},
	"Reliability":        {"sre", "reliability", "monitoring", "observability"},
}

var workStyleIndicators = []string{
	"collaborative", "cross-functional", "autonomous", "self-directed",
	"mentored", "agile", "remote", "ownership",
}

type roleRelevance struct {
	title        string
	relevance    float64
	recency      float64
	months       int
	technologies []string
}

type careerTrajectory struct {
	current         CareerLevel
	trend           string
	promotions      int
	avgTenureMonths float64
	specializations []string
}

type FitScorer struct {
	extractor *KeywordExtractor
	matcher   *KeywordMatcher
	jdParser  *JobDescriptionParser
}

func NewFitScorer() *FitScorer {
	return &FitScorer{
		extractor: NewKeywordExtractor(),
		matcher:   NewKeywordMatcher(),
		jdParser:  NewJobDescriptionParser(),
	}
}

// AssessFit evaluates how well the candidate behind a parsed resume
// matches a job posting.
func (f *FitScorer) AssessFit(parsed *resume.ParsedResume, jobDescription string, metadata JobMetadata) FitReport {

	jd := f.jdParser.Parse(jobDescription, metadata)
	keywords := f.extractor.ExtractKeywords(jobDescription)
	matches := f.matcher.MatchKeywords(parsed, keywords)

	trajectory := analyzeTrajectory(parsed)
	targetLevel := levelFromTitle(jd.Title)
	relevance := f.evaluateExperience(parsed, jd, keywords)

	skillFit := f.calculateSkillFit(matches)
	experienceFit := f.calculateExperienceFit(relevance, jd)
	trajectoryFit := f.calculateTrajectoryFit(trajectory, targetLevel)
	cultureFit := f.calculateCultureFit(parsed, jobDescription, trajectory)
	educationFit := f.calculateEducationFit(parsed, jd)

	overall := skillFit*fitWeightSkills +
		experienceFit*fitWeightExperience +
		trajectoryFit*fitWeightTrajectory +
		cultureFit*fitWeightCulture +
		educationFit*fitWeightEducation

	report := FitReport{
		OverallFit:       overall,
		Level:            fitLevel(overall),
		SkillFit:         skillFit,
		ExperienceFit:    experienceFit,
		TrajectoryFit:    trajectoryFit,
		CultureFit:       cultureFit,
		EducationFit:     educationFit,
		CurrentLevel:     trajectory.current,
		TargetLevel:      targetLevel,
		ProgressionTrend: trajectory.trend,
		Specializations:  trajectory.specializations,
		Strengths:        identifyStrengths(matches, relevance, trajectory),
		CriticalGaps:     criticalSkillGaps(matches),
		DevelopmentAreas: developmentAreas(matches),
		JobTitle:         jd.Title,
		EvaluatedAt:      time.Now(),
	}

	log.Infof("job fit: %.1f/100 (%s) for %v", overall, report.Level, jd.Title)
	return report
}

func fitLevel(score float64) FitLevel {
	switch {
	case score >= 90:
		return FitExcellent
	case score >= 80:
		return FitStrong
	case score >= 70:
		return FitGood
	case score >= 60:
		return FitModerate
	case score >= 50:
		return FitWeak
	default:
		return FitPoor
	}
}

func (f *FitScorer) calculateSkillFit(matches []KeywordMatch) float64 {

	skillMatches := lo.Filter(matches, func(m KeywordMatch, _ int) bool {
		switch m.Keyword.Category {
		case CategoryTechnical, CategoryTool, CategoryCertification:
			return true
		}
		return false
	})
	if len(skillMatches) == 0 {
		return 0
	}

	total := 0.0
	for _, m := range skillMatches {
		total += m.Score()
	}

	missingRequired := lo.CountBy(skillMatches, func(m KeywordMatch) bool {
		return m.MatchType == MatchMissing && m.Keyword.Importance >= requiredImportance
	})

	score := total/float64(len(skillMatches))*100 - float64(missingRequired)*2
	if score < 0 {
		return 0
	}
	return min(score, 100)
}

func (f *FitScorer) evaluateExperience(parsed *resume.ParsedResume, jd JobDescription, keywords []Keyword) []roleRelevance {

	required := lo.FilterMap(keywords, func(k Keyword, _ int) (string, bool) {
		return strings.ToLower(k.Text), k.Importance >= requiredImportance
	})

	roles := make([]roleRelevance, 0, len(parsed.Experience))
	for _, exp := range parsed.Experience {
		var text strings.Builder
		text.WriteString(strings.ToLower(exp.Title + " " + exp.Company + " "))
		for _, b := range exp.Bullets {
			text.WriteString(strings.ToLower(b.Text) + " ")
		}
		roleText := text.String()

		technologies := lo.Filter(required, func(tech string, _ int) bool {
			return strings.Contains(roleText, tech)
		})

		techScore := 0.0
		if len(required) > 0 {
			techScore = float64(len(technologies)) / float64(len(required))
		}

		role := roleRelevance{
			title:        exp.Title,
			relevance:    titleSimilarity(exp.Title, jd.Title)*0.4 + techScore*0.6,
			recency:      recencyScore(exp),
			months:       durationMonths(exp),
			technologies: technologies,
		}
		roles = append(roles, role)
	}
	return roles
}

func (f *FitScorer) calculateExperienceFit(roles []roleRelevance, jd JobDescription) float64 {

	if len(roles) == 0 {
		return 0
	}

	relevantMonths := 0
	totalRelevance := 0.0
	totalRecency := 0.0
	for _, role := range roles {
		if role.relevance > 0.5 {
			relevantMonths += role.months
		}
		totalRelevance += role.relevance
		totalRecency += role.recency
	}

	yearsScore := 1.0
	if jd.RequiredExperienceYears > 0 {
		yearsScore = min(float64(relevantMonths)/12/float64(jd.RequiredExperienceYears), 1.0)
	}

	avgRelevance := totalRelevance / float64(len(roles))
	avgRecency := totalRecency / float64(len(roles))

	return min((yearsScore*0.4+avgRelevance*0.4+avgRecency*0.2)*100, 100)
}

func (f *FitScorer) calculateTrajectoryFit(trajectory careerTrajectory, target CareerLevel) float64 {

	score := 0.0

	currentRank := careerLevelRanks[trajectory.current]
	targetRank := careerLevelRanks[target]
	if currentRank >= targetRank {
		score += 50
	} else {
		score += float64(currentRank) / float64(targetRank) * 50
	}

	switch trajectory.trend {
	case "upward":
		score += 20
	case "lateral":
		score += 10
	}

	switch {
	case trajectory.promotions >= 2:
		score += 15
	case trajectory.promotions == 1:
		score += 10
	}

	// 1.5 to 4 years per role reads as stable without stagnating.
	switch {
	case trajectory.avgTenureMonths >= 18 && trajectory.avgTenureMonths <= 48:
		score += 15
	case trajectory.avgTenureMonths >= 12:
		score += 10
	}

	return min(score, 100)
}

func (f *FitScorer) calculateCultureFit(parsed *resume.ParsedResume, jobDescription string, trajectory careerTrajectory) float64 {

	resumeText := strings.ToLower(buildResumeText(parsed))
	jdText := strings.ToLower(jobDescription)

	score := 0.0

	shared := lo.Filter(workStyleIndicators, func(indicator string, _ int) bool {
		return strings.Contains(resumeText, indicator) && strings.Contains(jdText, indicator)
	})
	score += min(float64(len(shared))*15, 40)

	for _, spec := range trajectory.specializations {
		matched := lo.SomeBy(specializationKeywords[spec], func(kw string) bool {
			return strings.Contains(jdText, kw)
		})
		if matched {
			score += 30
			break
		}
	}

	if lo.SomeBy(workStyleIndicators, func(indicator string) bool { return strings.Contains(resumeText, indicator) }) {
		score += 15
	}
	if len(parsed.Experience) > 0 {
		score += 15
	}

	return min(score, 100)
}

func (f *FitScorer) calculateEducationFit(parsed *resume.ParsedResume, jd JobDescription) float64 {

	if len(parsed.Education) == 0 {
		return 50
	}

	score := 50.0

	requirementsText := strings.ToLower(strings.Join(jd.Requirements, " "))
	degreeRequired := containsAny(requirementsText, "degree", "bachelor", "master", "bs ", "ms ")

	if degreeRequired {
		for _, edu := range parsed.Education {
			degree := strings.ToLower(edu.Degree)
			if containsAny(degree, "bachelor", "master", "phd", "bs", "ms", "bsc", "msc") {
				score += 30
				break
			}
		}
	} else {
		score += 20
	}

	certMatched := lo.SomeBy(parsed.Certifications, func(cert string) bool {
		return strings.Contains(requirementsText, strings.ToLower(cert))
	})
	if certMatched {
		score += 20
	} else if len(parsed.Certifications) > 0 {
		score += 10
	}

	return min(score, 100)
}

func analyzeTrajectory(parsed *resume.ParsedResume) careerTrajectory {

	if len(parsed.Experience) == 0 {
		return careerTrajectory{current: LevelEntry, trend: "unknown"}
	}

	// Entries are newest first, so upward means later ranks are lower.
	ranks := lo.Map(parsed.Experience, func(exp resume.ExperienceEntry, _ int) int {
		return careerLevelRanks[levelFromTitle(exp.Title)]
	})

	upward, downward := 0, 0
	for i := 0; i < len(ranks)-1; i++ {
		if ranks[i] > ranks[i+1] {
			upward++
		} else if ranks[i] < ranks[i+1] {
			downward++
		}
	}

	trend := "lateral"
	switch {
	case len(ranks) < 2:
		trend = "insufficient_data"
	case upward > downward:
		trend = "upward"
	case downward > upward:
		trend = "downward"
	}

	promotions := 0
	totalMonths := 0
	for i, exp := range parsed.Experience {
		totalMonths += durationMonths(exp)
		if i < len(parsed.Experience)-1 && exp.Company == parsed.Experience[i+1].Company && ranks[i] > ranks[i+1] {
			promotions++
		}
	}

	return careerTrajectory{
		current:         levelFromTitle(parsed.Experience[0].Title),
		trend:           trend,
		promotions:      promotions,
		avgTenureMonths: float64(totalMonths) / float64(len(parsed.Experience)),
		specializations: identifySpecializations(parsed),
	}
}

func levelFromTitle(title string) CareerLevel {
	titleLower := strings.ToLower(title)
	for _, level := range []CareerLevel{LevelSenior, LevelJunior, LevelEntry} {
		if containsAny(titleLower, careerLevelKeywords[level]...) {
			return level
		}
	}
	return LevelMid
}

func identifySpecializations(parsed *resume.ParsedResume) []string {

	text := strings.ToLower(buildResumeText(parsed))

	var specs []string
	for name, keywords := range specializationKeywords {
		found := lo.CountBy(keywords, func(kw string) bool {
			return strings.Contains(text, kw)
		})
		if found >= 2 {
			specs = append(specs, name)
		}
	}
	sort.Strings(specs)
	return specs
}

func titleSimilarity(candidateTitle string, jobTitle string) float64 {

	candidate := titleWords(candidateTitle)
	required := titleWords(jobTitle)
	if len(candidate) == 0 || len(required) == 0 {
		return 0.5
	}

	intersection := lo.Intersect(candidate, required)
	union := lo.Union(candidate, required)
	return float64(len(intersection)) / float64(len(union))
}

func titleWords(title string) []string {
	words := strings.Fields(strings.ToLower(title))
	return lo.Filter(words, func(word string, _ int) bool {
		return !lo.Contains(seniorityStopwords, strings.Trim(word, "."))
	})
}

func durationMonths(exp resume.ExperienceEntry) int {

	startYear := extractYear(exp.StartDate)
	if startYear == 0 {
		return 12
	}

	endYear := time.Now().Year()
	if !exp.IsCurrent() {
		if year := extractYear(exp.EndDate); year > 0 {
			endYear = year
		}
	}

	months := (endYear - startYear) * 12
	if months < 1 {
		return 1
	}
	return months
}

func extractYear(date string) int {
	match := yearPattern.FindString(date)
	if match == "" {
		return 0
	}
	year, _ := strconv.Atoi(match)
	return year
}

func recencyScore(exp resume.ExperienceEntry) float64 {

	if exp.IsCurrent() {
		return 1.0
	}

	endYear := extractYear(exp.EndDate)
	if endYear == 0 {
		return 0.5
	}

	switch yearsAgo := time.Now().Year() - endYear; {
	case yearsAgo <= 0:
		return 1.0
	case yearsAgo == 1:
		return 0.9
	case yearsAgo == 2:
		return 0.7
	case yearsAgo <= 5:
		return 0.5
	default:
		return 0.3
	}
}

func identifyStrengths(matches []KeywordMatch, roles []roleRelevance, trajectory careerTrajectory) []string {

	var strengths []string

	strongSkills := lo.FilterMap(matches, func(m KeywordMatch, _ int) (string, bool) {
		return m.Keyword.Text, m.MatchType == MatchExact && m.Frequency >= 2 && m.Keyword.Importance >= requiredImportance
	})
	if len(strongSkills) > 0 {
		strengths = append(strengths, fmt.Sprintf("Deep experience with %v", strings.Join(firstN(strongSkills, 3), ", ")))
	}

	relevantRoles := lo.CountBy(roles, func(role roleRelevance) bool {
		return role.relevance >= 0.6
	})
	if relevantRoles > 0 {
		strengths = append(strengths, fmt.Sprintf("Highly relevant experience in %v role(s)", relevantRoles))
	}

	if trajectory.trend == "upward" {
		strengths = append(strengths, "Strong upward career trajectory")
	}
	if trajectory.promotions > 0 {
		strengths = append(strengths, fmt.Sprintf("%v internal promotion(s)", trajectory.promotions))
	}
	if len(trajectory.specializations) > 0 {
		strengths = append(strengths, fmt.Sprintf("Specialized in %v", strings.Join(firstN(trajectory.specializations, 2), ", ")))
	}

	return strengths
}

func criticalSkillGaps(matches []KeywordMatch) []string {
	return lo.FilterMap(matches, func(m KeywordMatch, _ int) (string, bool) {
		return m.Keyword.Text, m.MatchType == MatchMissing && m.Keyword.Importance >= requiredImportance
	})
}

func developmentAreas(matches []KeywordMatch) []string {

	missing := lo.Filter(matches, func(m KeywordMatch, _ int) bool {
		return m.MatchType == MatchMissing
	})

	return lo.Map(firstN(missing, 5), func(m KeywordMatch, _ int) string {
		return fmt.Sprintf("%v (est. %v to learn)", m.Keyword.Text, trainingEstimate(m.Keyword))
	})
}

func trainingEstimate(keyword Keyword) string {
	switch {
	case keyword.Category == CategoryCertification:
		return "3-6 months"
	case keyword.Importance >= requiredImportance:
		return "3-6 months"
	default:
		return "1-3 months"
	}
}
