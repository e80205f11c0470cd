package entities

import "time"

type ATSScore struct {
	ID               int        `gorm:"primaryKey;column:score_id" json:"score_id"`
	VariantID        string     `gorm:"not null;index" json:"variant_id"`
	OverallScore     float64    `json:"overall_score"`
	Grade            string     `json:"grade"`
	Passed           bool       `json:"passed"`
	KeywordScore     float64    `json:"keyword_score"`
	ExperienceScore  float64    `json:"experience_score"`
	SkillsScore      float64    `json:"skills_score"`
	EducationScore   float64    `json:"education_score"`
	FormatScore      float64    `json:"format_score"`
	MatchedKeywords  StringList `gorm:"type:text" json:"matched_keywords"`
	MissingKeywords  StringList `gorm:"type:text" json:"missing_keywords"`
	MissingCritical  StringList `gorm:"type:text" json:"missing_critical"`
	Recommendations  StringList `gorm:"type:text" json:"recommendations"`
	KeywordsMatched  int        `json:"keywords_matched"`
	KeywordsTotal    int        `json:"keywords_total"`
	RequiredFound    int        `json:"required_found"`
	RequiredTotal    int        `json:"required_total"`
	OptionalFound    int        `json:"optional_found"`
	ScoredAt         time.Time  `gorm:"autoCreateTime" json:"scored_at"`
}
