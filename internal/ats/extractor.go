package ats

import (
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// techPatterns map canonical skill names to the textual variants job
// descriptions use for them.
var techPatterns = map[string]*regexp.Regexp{
	"kafka":      regexp.MustCompile(`\b(?:kafka|apache\s+kafka|confluent)\b`),
	"kubernetes": regexp.MustCompile(`\bk8s\b|\bkubernetes\b`),
	"docker":     regexp.MustCompile(`\bdocker\b|\bcontainerization\b`),
	"python":     regexp.MustCompile(`\bpython3?\b`),
	"golang":     regexp.MustCompile(`\bgolang\b|\bgo\s+(?:developer|engineer|services)\b`),
	"java":       regexp.MustCompile(`\bjava\b`),
	"aws":        regexp.MustCompile(`\baws\b|\bamazon\s+web\s+services\b`),
	"azure":      regexp.MustCompile(`\bazure\b|\bmicrosoft\s+azure\b`),
	"terraform":  regexp.MustCompile(`\bterraform\b|\biac\b|\binfrastructure\s+as\s+code\b`),
	"ansible":    regexp.MustCompile(`\bansible\b`),
	"jenkins":    regexp.MustCompile(`\bjenkins\b|\bci/cd\b`),
	"git":        regexp.MustCompile(`\bgit\b|\bgithub\b|\bgitlab\b`),
	"postgresql": regexp.MustCompile(`\bpostgres(?:ql)?\b`),
	"grpc":       regexp.MustCompile(`\bgrpc\b`),
	"linux":      regexp.MustCompile(`\blinux\b`),
}

var skillSynonyms = map[string][]string{
	"kafka":      {"apache kafka", "confluent kafka", "kafka streams"},
	"kubernetes": {"k8s", "container orchestration"},
	"golang":     {"go"},
	"postgresql": {"postgres"},
	"ci/cd":      {"continuous integration", "continuous deployment", "jenkins", "gitlab ci"},
	"monitoring": {"observability", "telemetry", "alerting", "grafana", "prometheus"},
	"scripting":  {"automation", "bash", "shell", "python scripting"},
	"cloud":      {"aws", "azure", "gcp", "cloud computing"},
}

var certifications = []string{
	"aws certified", "azure certified", "cka", "ckad",
	"confluent certified", "kafka certification",
	"terraform certified", "ansible certified",
}

var domainPatterns = map[string]*regexp.Regexp{
	"cluster management": regexp.MustCompile(`\bcluster\s+(?:management|administration|scaling)\b`),
	"high availability":  regexp.MustCompile(`\bhigh\s+availability\b|\bha\b`),
	"disaster recovery":  regexp.MustCompile(`\bdisaster\s+recovery\b|\bdr\b|\bbackup\b`),
	"performance tuning": regexp.MustCompile(`\bperformance\s+(?:tuning|optimization)\b`),
	"security":           regexp.MustCompile(`\bsecurity\b|\bssl/tls\b|\bencryption\b|\bsasl\b`),
	"monitoring":         regexp.MustCompile(`\bmonitoring\b|\bobservability\b|\bmetrics\b`),
	"replication":        regexp.MustCompile(`\breplication\b|\bdata\s+replication\b`),
	"partitioning":       regexp.MustCompile(`\bpartition(?:ing|s)?\b`),
	"throughput":         regexp.MustCompile(`\bthroughput\b|\blatency\b`),
	"distributed systems": regexp.MustCompile(`\bdistributed\s+systems?\b`),
}

var softSkills = []string{
	"collaboration", "communication", "leadership", "problem solving",
	"analytical", "troubleshooting", "teamwork", "mentoring",
	"documentation", "agile", "scrum",
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "you": true,
	"are": true, "our": true, "will": true, "have": true, "that": true,
	"this": true, "your": true, "from": true, "their": true, "they": true,
	"what": true, "who": true, "about": true, "been": true, "being": true,
	"has": true, "had": true, "was": true, "were": true, "can": true,
	"all": true, "into": true, "also": true, "than": true, "them": true,
	"then": true, "its": true, "out": true, "over": true, "such": true,
	"when": true, "where": true, "which": true, "while": true, "would": true,
}

var (
	requirementHeaderPattern = regexp.MustCompile(`(?is)(?:requirements?|qualifications?)`)
	emphasisWords            = regexp.MustCompile(`\b(?:required|must|essential|critical|key)\b`)
	wordPattern              = regexp.MustCompile(`\b[\w/+#.-]+\b`)
)

type KeywordExtractor struct {
	topN int
}

func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{topN: 50}
}

// ExtractKeywords returns ranked keywords from a job description.
func (e *KeywordExtractor) ExtractKeywords(jobDescription string) []Keyword {

	var keywords []Keyword

	keywords = append(keywords, e.extractTechnicalSkills(jobDescription)...)
	keywords = append(keywords, e.extractCertifications(jobDescription)...)
	keywords = append(keywords, e.extractKeyPhrases(jobDescription)...)
	keywords = append(keywords, e.extractDomainTerms(jobDescription)...)
	keywords = append(keywords, e.extractSoftSkills(jobDescription)...)

	return e.deduplicateAndRank(keywords)
}

func (e *KeywordExtractor) extractTechnicalSkills(text string) []Keyword {

	var keywords []Keyword
	textLower := strings.ToLower(text)

	for skill, pattern := range techPatterns {
		loc := pattern.FindStringIndex(textLower)
		if loc == nil {
			continue
		}

		start := max(0, loc[0]-20)
		end := min(len(textLower), loc[1]+20)

		keywords = append(keywords, Keyword{
			Text:       skill,
			Category:   CategoryTechnical,
			Importance: e.calculateImportance(textLower, textLower[loc[0]:loc[1]]),
			Synonyms:   skillSynonyms[skill],
			Context:    textLower[start:end],
		})
	}

	return keywords
}

func (e *KeywordExtractor) extractCertifications(text string) []Keyword {

	var keywords []Keyword
	textLower := strings.ToLower(text)

	for _, cert := range certifications {
		if strings.Contains(textLower, cert) {
			keywords = append(keywords, Keyword{
				Text:       cert,
				Category:   CategoryCertification,
				Importance: 0.9,
			})
		}
	}

	return keywords
}

// extractKeyPhrases finds 2- and 3-grams that repeat across the text.
func (e *KeywordExtractor) extractKeyPhrases(text string) []Keyword {

	words := lo.Filter(wordPattern.FindAllString(strings.ToLower(text), -1), func(w string, _ int) bool {
		return len(w) > 2 && !stopWords[w]
	})

	counts := map[string]int{}
	for n := 2; n <= 3; n++ {
		for i := 0; i+n <= len(words); i++ {
			counts[strings.Join(words[i:i+n], " ")]++
		}
	}

	type phraseCount struct {
		phrase string
		count  int
	}
	var repeated []phraseCount
	for phrase, count := range counts {
		if count >= 2 {
			repeated = append(repeated, phraseCount{phrase, count})
		}
	}

	sort.Slice(repeated, func(i, j int) bool {
		if repeated[i].count != repeated[j].count {
			return repeated[i].count > repeated[j].count
		}
		return repeated[i].phrase < repeated[j].phrase
	})

	if len(repeated) > 20 {
		repeated = repeated[:20]
	}

	var keywords []Keyword
	for _, pc := range repeated {
		importance := float64(pc.count) / 5.0
		if importance > 1.0 {
			importance = 1.0
		}
		keywords = append(keywords, Keyword{
			Text:       pc.phrase,
			Category:   categorizePhrase(pc.phrase),
			Importance: importance,
		})
	}

	return keywords
}

func (e *KeywordExtractor) extractDomainTerms(text string) []Keyword {

	var keywords []Keyword
	textLower := strings.ToLower(text)

	for term, pattern := range domainPatterns {
		if pattern.MatchString(textLower) {
			keywords = append(keywords, Keyword{
				Text:       term,
				Category:   CategoryDomain,
				Importance: 0.8,
			})
		}
	}

	return keywords
}

func (e *KeywordExtractor) extractSoftSkills(text string) []Keyword {

	var keywords []Keyword
	textLower := strings.ToLower(text)

	for _, skill := range softSkills {
		if strings.Contains(textLower, skill) {
			keywords = append(keywords, Keyword{
				Text:       skill,
				Category:   CategorySoftSkill,
				Importance: 0.5,
			})
		}
	}

	return keywords
}

// calculateImportance weighs a keyword by where and how often it appears.
func (e *KeywordExtractor) calculateImportance(textLower string, keywordLower string) float64 {

	importance := 0.5

	headerLoc := requirementHeaderPattern.FindStringIndex(textLower)
	if headerLoc != nil && strings.Contains(textLower[headerLoc[0]:], keywordLower) {
		importance += 0.3
	}

	firstPara := textLower[:min(500, len(textLower))]
	if strings.Contains(firstPara, keywordLower) {
		importance += 0.2
	}

	if emphasisLoc := emphasisWords.FindStringIndex(textLower); emphasisLoc != nil {
		windowEnd := min(len(textLower), emphasisLoc[1]+50+len(keywordLower))
		if strings.Contains(textLower[emphasisLoc[1]:windowEnd], keywordLower) {
			importance += 0.2
		}
	}

	frequencyBonus := float64(strings.Count(textLower, keywordLower)) * 0.1
	if frequencyBonus > 0.3 {
		frequencyBonus = 0.3
	}
	importance += frequencyBonus

	if importance > 1.0 {
		return 1.0
	}
	return importance
}

func categorizePhrase(phrase string) KeywordCategory {

	techIndicators := []string{"system", "cluster", "server", "data", "api", "infrastructure"}
	for _, indicator := range techIndicators {
		if strings.Contains(phrase, indicator) {
			return CategoryTechnical
		}
	}

	expIndicators := []string{"experience", "years", "background", "expertise"}
	for _, indicator := range expIndicators {
		if strings.Contains(phrase, indicator) {
			return CategoryExperience
		}
	}

	return CategoryDomain
}

var categoryPriority = map[KeywordCategory]int{
	CategoryRequired:      5,
	CategoryTechnical:     4,
	CategoryCertification: 4,
	CategoryDomain:        3,
	CategoryTool:          3,
	CategoryExperience:    2,
	CategorySoftSkill:     1,
}

func (e *KeywordExtractor) deduplicateAndRank(keywords []Keyword) []Keyword {

	unique := map[string]Keyword{}
	for _, kw := range keywords {
		key := strings.ToLower(strings.TrimSpace(kw.Text))
		if existing, ok := unique[key]; !ok || kw.Importance > existing.Importance {
			unique[key] = kw
		}
	}

	ranked := lo.Values(unique)
	sort.Slice(ranked, func(i, j int) bool {
		pi, pj := categoryPriority[ranked[i].Category], categoryPriority[ranked[j].Category]
		if pi != pj {
			return pi > pj
		}
		if ranked[i].Importance != ranked[j].Importance {
			return ranked[i].Importance > ranked[j].Importance
		}
		return ranked[i].Text < ranked[j].Text
	})

	if len(ranked) > e.topN {
		ranked = ranked[:e.topN]
	}
	return ranked
}
