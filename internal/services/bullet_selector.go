package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/akimenko/resume-pilot/internal/ats"
	"github.com/akimenko/resume-pilot/internal/resume"
	"github.com/samber/lo"
)

var strongVerbs = []string{
	"architected", "designed", "implemented", "optimized", "automated",
	"led", "managed", "developed", "deployed", "reduced", "increased",
	"improved", "scaled",
}

var quantificationPattern = regexp.MustCompile(`\d+[%+]?`)

type SelectedBullet struct {
	Bullet          resume.BulletPoint
	Score           float64
	MatchedKeywords []string
	Reason          string
}

type SelectorConfig struct {
	TargetBullets    int
	MinPerExperience int
	MaxPerExperience int
}

// BulletSelector ranks bullet points against a job's keywords and keeps
// the most relevant ones, respecting per-experience minimums so no role
// on the resume ends up empty.
type BulletSelector struct {
	config SelectorConfig
}

func NewBulletSelector(config SelectorConfig) *BulletSelector {
	if config.TargetBullets == 0 {
		config.TargetBullets = 18
	}
	if config.MinPerExperience == 0 {
		config.MinPerExperience = 3
	}
	if config.MaxPerExperience == 0 {
		config.MaxPerExperience = 15
	}
	return &BulletSelector{config: config}
}

func (s *BulletSelector) Select(parsed *resume.ParsedResume, keywords []ats.Keyword) []SelectedBullet {

	var all []SelectedBullet
	for position, entry := range parsed.Experience {
		for _, bullet := range entry.Bullets {
			score, matched := s.scoreBullet(bullet, keywords, position)
			all = append(all, SelectedBullet{
				Bullet:          bullet,
				Score:           score,
				MatchedKeywords: matched,
				Reason:          selectionReason(score, matched),
			})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})

	perExperience := map[string]int{}
	picked := map[string]bool{}
	var selected []SelectedBullet

	for _, candidate := range all {
		if len(selected) >= s.config.TargetBullets {
			break
		}
		if perExperience[candidate.Bullet.Subsection] >= s.config.MaxPerExperience {
			continue
		}
		selected = append(selected, candidate)
		picked[candidate.Bullet.ID] = true
		perExperience[candidate.Bullet.Subsection]++
	}

	// Backfill roles that fell below the minimum.
	for _, entry := range parsed.Experience {
		missing := s.config.MinPerExperience - perExperience[entry.Company]
		if missing <= 0 {
			continue
		}
		for _, candidate := range all {
			if missing == 0 {
				break
			}
			if candidate.Bullet.Subsection != entry.Company || picked[candidate.Bullet.ID] {
				continue
			}
			candidate.Reason = "kept to preserve role coverage"
			selected = append(selected, candidate)
			picked[candidate.Bullet.ID] = true
			perExperience[entry.Company]++
			missing--
		}
	}

	return s.restoreResumeOrder(parsed, selected)
}

// restoreResumeOrder re-sorts picks back into the order they appear on
// the resume so the generated document reads chronologically.
func (s *BulletSelector) restoreResumeOrder(parsed *resume.ParsedResume, selected []SelectedBullet) []SelectedBullet {

	order := map[string]int{}
	index := 0
	for _, entry := range parsed.Experience {
		for _, bullet := range entry.Bullets {
			order[bullet.ID] = index
			index++
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return order[selected[i].Bullet.ID] < order[selected[j].Bullet.ID]
	})
	return selected
}

func (s *BulletSelector) scoreBullet(bullet resume.BulletPoint, keywords []ats.Keyword, experiencePosition int) (float64, []string) {

	text := strings.ToLower(bullet.Text)
	words := strings.Fields(text)

	var matched []string
	for _, keyword := range keywords {
		if strings.Contains(text, strings.ToLower(keyword.Text)) {
			matched = append(matched, keyword.Text)
		}
	}
	matched = lo.Uniq(matched)

	keywordScore := float64(len(matched)) / 5.0
	if keywordScore > 1.0 {
		keywordScore = 1.0
	}
	score := keywordScore * 0.40

	if quantificationPattern.MatchString(bullet.Text) {
		score += 0.20
	}

	if len(words) > 0 {
		first := strings.Trim(words[0], ".,;:")
		if lo.Contains(strongVerbs, first) {
			score += 0.15
		} else if lo.SomeBy(strongVerbs, func(verb string) bool { return strings.Contains(text, verb) }) {
			score += 0.10
		}
	}

	switch wordCount := len(words); {
	case wordCount >= 10 && wordCount <= 25:
		score += 0.10
	case wordCount >= 8 && wordCount <= 30:
		score += 0.05
	}

	switch experiencePosition {
	case 0:
		score += 0.15
	case 1:
		score += 0.10
	default:
		score += 0.05
	}

	return score, matched
}

func selectionReason(score float64, matched []string) string {
	switch {
	case len(matched) >= 3:
		return "strong keyword match: " + strings.Join(matched, ", ")
	case len(matched) > 0:
		return "matches " + strings.Join(matched, ", ")
	case score >= 0.5:
		return "high-impact phrasing"
	default:
		return "general relevance"
	}
}
