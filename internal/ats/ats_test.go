package ats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akimenko/resume-pilot/internal/resume"
)

const sampleJobDescription = `Senior Kafka Platform Engineer

About the role
We run event streaming infrastructure for a fintech platform.

Requirements
- 5+ years of experience operating Apache Kafka in production
- Strong Kubernetes and Docker experience required
- Experience with Terraform and infrastructure as code
- Monitoring with Prometheus and Grafana
- Python scripting for automation

Nice to have
- CKA certification
- AWS experience is a plus

Benefits
- Remote friendly, great compensation
`

func sampleResume() *resume.ParsedResume {
	return &resume.ParsedResume{
		Personal: resume.PersonalInfo{
			Name:     "Jane Smith",
			Email:    "jane@example.com",
			Phone:    "+1 555 0100",
			LinkedIn: "linkedin.com/in/janesmith",
			GitHub:   "github.com/janesmith",
		},
		Summary: "Platform engineer focused on Kafka and Kubernetes operations.",
		Experience: []resume.ExperienceEntry{
			{
				Title:   "Senior Platform Engineer",
				Company: "Acme Corp",
				EndDate: "Present",
				Bullets: []resume.BulletPoint{
					{ID: "b1", Text: "Managed Kafka clusters processing 2M messages per second, reduced lag by 60%", IsModifiable: true},
					{ID: "b2", Text: "Deployed Kubernetes workloads with Terraform across 3 regions", IsModifiable: true},
					{ID: "b3", Text: "Automated monitoring with Prometheus and Grafana dashboards", IsModifiable: true},
					{ID: "b4", Text: "Implemented CI/CD pipelines in Jenkins", IsModifiable: true},
					{ID: "b5", Text: "Wrote Python automation for cluster maintenance", IsModifiable: true},
				},
			},
			{
				Title:   "DevOps Engineer",
				Company: "Globex",
				Bullets: []resume.BulletPoint{
					{ID: "b6", Text: "Operated Docker based services on AWS", IsModifiable: true},
					{ID: "b7", Text: "Improved deployment speed by 40% with automation", IsModifiable: true},
					{ID: "b8", Text: "Configured replication and disaster recovery", IsModifiable: true},
					{ID: "b9", Text: "Maintained Linux servers and Git workflows", IsModifiable: true},
					{ID: "b10", Text: "Mentored two junior engineers", IsModifiable: true},
				},
			},
		},
		Education: []resume.EducationEntry{
			{Degree: "BS Computer Science", Institution: "State University"},
		},
		Skills: resume.SkillsSection{
			Technical: []string{"Kafka", "Kubernetes", "Docker", "Terraform", "Python", "Prometheus"},
			Tools:     []string{"Grafana", "Jenkins", "Git", "Ansible"},
			Languages: []string{"Python", "Bash", "Go"},
		},
	}
}

func Test_KeywordMatch_Score(t *testing.T) {
	cases := []struct {
		name     string
		match    KeywordMatch
		expected float64
	}{
		{"exact single", KeywordMatch{MatchType: MatchExact, Frequency: 1}, 1.0},
		{"missing", KeywordMatch{MatchType: MatchMissing}, 0.0},
		{"synonym single", KeywordMatch{MatchType: MatchSynonym, Frequency: 1}, 0.9},
		{"stemmed single", KeywordMatch{MatchType: MatchStemmed, Frequency: 1}, 0.8},
		{"partial single", KeywordMatch{MatchType: MatchPartial, Frequency: 1}, 0.6},
		{"frequency capped", KeywordMatch{MatchType: MatchPartial, Frequency: 10}, 0.6 * 1.3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, tc.match.Score(), 0.001)
		})
	}
}

func Test_KeywordMatch_Score_NeverExceedsOne(t *testing.T) {
	match := KeywordMatch{MatchType: MatchExact, Frequency: 10, ContextScore: 1.0}
	assert.Equal(t, 1.0, match.Score())
}

func Test_Score_GradeLadder(t *testing.T) {
	cases := []struct {
		score float64
		grade string
	}{
		{95, "A+"}, {90, "A+"}, {87, "A"}, {82, "A-"}, {76, "B+"},
		{71, "B"}, {66, "B-"}, {61, "C+"}, {56, "C"}, {40, "F"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.grade, Score{OverallScore: tc.score}.Grade())
	}

	assert.True(t, Score{OverallScore: 65}.Passed())
	assert.False(t, Score{OverallScore: 64.9}.Passed())
}

func Test_KeywordExtractor_FindsTechnicalSkills(t *testing.T) {
	extractor := NewKeywordExtractor()
	keywords := extractor.ExtractKeywords(sampleJobDescription)

	require.NotEmpty(t, keywords)

	byText := map[string]Keyword{}
	for _, kw := range keywords {
		byText[kw.Text] = kw
	}

	for _, expected := range []string{"kafka", "kubernetes", "docker", "terraform", "python"} {
		kw, ok := byText[expected]
		require.True(t, ok, "expected keyword %q", expected)
		assert.Equal(t, CategoryTechnical, kw.Category)
		assert.Greater(t, kw.Importance, 0.0)
	}

	kafka := byText["kafka"]
	assert.GreaterOrEqual(t, kafka.Importance, 0.8)
}

func Test_KeywordExtractor_Deduplicates(t *testing.T) {
	extractor := NewKeywordExtractor()
	keywords := extractor.ExtractKeywords(sampleJobDescription)

	seen := map[string]bool{}
	for _, kw := range keywords {
		require.False(t, seen[kw.Text], "keyword %q appears twice", kw.Text)
		seen[kw.Text] = true
	}
	assert.LessOrEqual(t, len(keywords), 50)
}

func Test_JobDescriptionParser_Sections(t *testing.T) {
	parser := NewJobDescriptionParser()
	jd := parser.Parse(sampleJobDescription, JobMetadata{})

	assert.Equal(t, "Senior Kafka Platform Engineer", jd.Title)
	assert.Equal(t, 5, jd.RequiredExperienceYears)
	assert.NotEmpty(t, jd.Requirements)
	assert.NotEmpty(t, jd.NiceToHave)
	assert.NotEmpty(t, jd.Benefits)
}

func Test_JobDescriptionParser_BulletsAreNotHeaders(t *testing.T) {
	parser := NewJobDescriptionParser()
	jd := parser.Parse(sampleJobDescription, JobMetadata{})

	assert.Contains(t, jd.Requirements, "Strong Kubernetes and Docker experience required")
	assert.Contains(t, jd.NiceToHave, "AWS experience is a plus")
	assert.Contains(t, jd.Benefits, "Remote friendly, great compensation")
}

func Test_JobDescriptionParser_MetadataOverridesTitle(t *testing.T) {
	parser := NewJobDescriptionParser()
	jd := parser.Parse(sampleJobDescription, JobMetadata{Title: "Streaming Engineer", Company: "Acme"})

	assert.Equal(t, "Streaming Engineer", jd.Title)
	assert.Equal(t, "Acme", jd.Company)
}

func Test_KeywordMatcher_ExactSynonymAndMissing(t *testing.T) {
	matcher := NewKeywordMatcher()
	parsed := sampleResume()

	keywords := []Keyword{
		{Text: "kafka", Category: CategoryTechnical, Importance: 1.0},
		{Text: "container orchestration", Category: CategoryTechnical, Importance: 0.8, Synonyms: []string{"kubernetes"}},
		{Text: "cobol", Category: CategoryTechnical, Importance: 0.9},
	}

	matches := matcher.MatchKeywords(parsed, keywords)
	require.Len(t, matches, 3)

	assert.Equal(t, MatchExact, matches[0].MatchType)
	assert.Greater(t, matches[0].Frequency, 0)
	assert.Contains(t, matches[0].Locations, "experience")
	assert.Contains(t, matches[0].Locations, "skills")

	assert.Equal(t, MatchSynonym, matches[1].MatchType)
	assert.Equal(t, "kubernetes", matches[1].MatchedText)

	assert.Equal(t, MatchMissing, matches[2].MatchType)
}

func Test_KeywordMatcher_StemmedMatch(t *testing.T) {
	matcher := NewKeywordMatcher()
	parsed := &resume.ParsedResume{
		Experience: []resume.ExperienceEntry{
			{Title: "Engineer", Company: "Acme", Bullets: []resume.BulletPoint{
				{ID: "b1", Text: "Automated deployments across environments"},
			}},
		},
	}

	matches := matcher.MatchKeywords(parsed, []Keyword{
		{Text: "deployment", Category: CategoryDomain, Importance: 0.7},
	})

	require.Len(t, matches, 1)
	assert.Equal(t, MatchStemmed, matches[0].MatchType)
	assert.Equal(t, "deployments", matches[0].MatchedText)
}

func Test_KeywordMatcher_ContextScore(t *testing.T) {
	matcher := NewKeywordMatcher()

	score := matcher.calculateContextScore("kafka",
		"managed kafka clusters processing 2m messages, improved throughput by 60%")
	assert.Greater(t, score, 0.0)

	noContext := matcher.calculateContextScore("kafka", "kafka")
	assert.Less(t, noContext, score)
}

func Test_Scorer_EndToEnd(t *testing.T) {
	scorer := NewScorer()
	parsed := sampleResume()

	score := scorer.ScoreResume(parsed, sampleJobDescription, JobMetadata{
		Title:   "Senior Kafka Platform Engineer",
		Company: "Initech",
	})

	assert.Greater(t, score.OverallScore, 50.0)
	assert.LessOrEqual(t, score.OverallScore, 100.0)
	assert.True(t, score.Passed(), "strong resume should pass screening, got %.1f", score.OverallScore)

	assert.Greater(t, score.MatchedCount, 0)
	assert.Equal(t, score.TotalKeywords, score.MatchedCount+len(score.MissingKeywords))
	assert.InDelta(t, float64(score.MatchedCount)/float64(score.TotalKeywords), score.MatchRate, 0.001)
	assert.Equal(t, "Senior Kafka Platform Engineer", score.JobTitle)

	assert.Greater(t, score.RequiredTotal, 0)
	assert.GreaterOrEqual(t, score.RequiredTotal, score.RequiredFound)
	assert.Equal(t, score.MatchedCount-score.RequiredFound, score.OptionalFound)
}

func Test_Scorer_WeakResumeGetsRecommendations(t *testing.T) {
	scorer := NewScorer()
	parsed := &resume.ParsedResume{
		Personal: resume.PersonalInfo{Name: "John Doe"},
		Experience: []resume.ExperienceEntry{
			{Title: "Barista", Company: "Coffee Place", Bullets: []resume.BulletPoint{
				{ID: "b1", Text: "Served customers and managed the register"},
			}},
		},
	}

	score := scorer.ScoreResume(parsed, sampleJobDescription, JobMetadata{})

	assert.False(t, score.Passed())
	assert.NotEmpty(t, score.CriticalGaps)
	assert.NotEmpty(t, score.Improvements)
}

func Test_Scorer_MissingCriticalPenalty(t *testing.T) {
	scorer := NewScorer()

	withKafka := []KeywordMatch{
		{Keyword: Keyword{Text: "kafka", Importance: 1.0}, MatchType: MatchExact, Frequency: 1},
	}
	withoutKafka := []KeywordMatch{
		{Keyword: Keyword{Text: "kafka", Importance: 1.0}, MatchType: MatchMissing},
	}

	assert.Greater(t, scorer.calculateKeywordScore(withKafka), scorer.calculateKeywordScore(withoutKafka))
	assert.Equal(t, 0.0, scorer.calculateKeywordScore(withoutKafka))
}
