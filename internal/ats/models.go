package ats

import "time"

type KeywordCategory string

const (
	CategoryRequired      KeywordCategory = "required"
	CategoryTechnical     KeywordCategory = "technical"
	CategorySoftSkill     KeywordCategory = "soft_skill"
	CategoryTool          KeywordCategory = "tool"
	CategoryDomain        KeywordCategory = "domain"
	CategoryCertification KeywordCategory = "certification"
	CategoryExperience    KeywordCategory = "experience"
)

type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchSynonym MatchType = "synonym"
	MatchPartial MatchType = "partial"
	MatchStemmed MatchType = "stemmed"
	MatchMissing MatchType = "missing"
)

type Keyword struct {
	Text       string          `json:"text"`
	Category   KeywordCategory `json:"category"`
	Importance float64         `json:"importance"`
	Synonyms   []string        `json:"synonyms,omitempty"`
	Context    string          `json:"context,omitempty"`
}

type KeywordMatch struct {
	Keyword      Keyword   `json:"keyword"`
	MatchType    MatchType `json:"match_type"`
	MatchedText  string    `json:"matched_text"`
	Locations    []string  `json:"locations"`
	Frequency    int       `json:"frequency"`
	ContextScore float64   `json:"context_score"`
}

var matchBaseScores = map[MatchType]float64{
	MatchExact:   1.0,
	MatchSynonym: 0.9,
	MatchStemmed: 0.8,
	MatchPartial: 0.6,
	MatchMissing: 0.0,
}

// Score combines match type, frequency and context quality into a 0-1 value.
func (m KeywordMatch) Score() float64 {
	base := matchBaseScores[m.MatchType]

	frequencyMultiplier := 1.0 + float64(m.Frequency-1)*0.1
	if frequencyMultiplier > 1.3 {
		frequencyMultiplier = 1.3
	}
	if m.Frequency == 0 {
		frequencyMultiplier = 1.0
	}

	score := base*frequencyMultiplier + m.ContextScore*0.2
	if score > 1.0 {
		return 1.0
	}
	return score
}

type JobDescription struct {
	RawText                 string   `json:"-"`
	Title                   string   `json:"title"`
	Company                 string   `json:"company,omitempty"`
	Location                string   `json:"location,omitempty"`
	Responsibilities        []string `json:"responsibilities"`
	Requirements            []string `json:"requirements"`
	NiceToHave              []string `json:"nice_to_have"`
	Benefits                []string `json:"benefits"`
	RequiredExperienceYears int      `json:"required_experience_years,omitempty"`
}

type Score struct {
	OverallScore float64 `json:"overall_score"`

	KeywordScore    float64 `json:"keyword_score"`
	ExperienceScore float64 `json:"experience_score"`
	EducationScore  float64 `json:"education_score"`
	SkillsScore     float64 `json:"skills_score"`
	FormatScore     float64 `json:"format_score"`

	MatchedKeywords []KeywordMatch `json:"matched_keywords"`
	MissingKeywords []Keyword      `json:"missing_keywords"`

	TotalKeywords int     `json:"total_keywords"`
	MatchedCount  int     `json:"matched_count"`
	MatchRate     float64 `json:"match_rate"`

	RequiredFound int `json:"required_found"`
	RequiredTotal int `json:"required_total"`
	OptionalFound int `json:"optional_found"`

	CriticalGaps []string `json:"critical_gaps"`
	Improvements []string `json:"improvements"`
	Enhancements []string `json:"enhancements"`

	JobTitle string    `json:"job_title"`
	ScoredAt time.Time `json:"scored_at"`
}

// Grade maps the overall score onto the letter ladder shown in the dashboard.
func (s Score) Grade() string {
	switch {
	case s.OverallScore >= 90:
		return "A+"
	case s.OverallScore >= 85:
		return "A"
	case s.OverallScore >= 80:
		return "A-"
	case s.OverallScore >= 75:
		return "B+"
	case s.OverallScore >= 70:
		return "B"
	case s.OverallScore >= 65:
		return "B-"
	case s.OverallScore >= 60:
		return "C+"
	case s.OverallScore >= 55:
		return "C"
	default:
		return "F"
	}
}

// Passed reports whether the resume likely clears automated screening.
func (s Score) Passed() bool {
	return s.OverallScore >= 65
}
