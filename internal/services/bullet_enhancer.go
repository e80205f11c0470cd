package services

import (
	"context"
	"strings"
	"unicode"

	"github.com/akimenko/resume-pilot/internal/ats"
	"github.com/akimenko/resume-pilot/internal/logger"
	"github.com/akimenko/resume-pilot/internal/metrics"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type EnhancedBullet struct {
	BulletID      string
	Original      string
	Enhanced      string
	AddedKeywords []string
	Improvement   float64
	Confidence    float64
}

type EnhancerConfig struct {
	MinConfidence float64
	MaxEnhanced   int
}

// BulletEnhancer rewrites selected bullets through the AI provider and
// keeps only rewrites it can trust. A low-confidence rewrite falls back
// to the original text.
type BulletEnhancer struct {
	ai     *AIService
	config EnhancerConfig
}

func NewBulletEnhancer(ai *AIService, config EnhancerConfig) *BulletEnhancer {
	if config.MinConfidence == 0 {
		config.MinConfidence = 0.7
	}
	if config.MaxEnhanced == 0 {
		config.MaxEnhanced = 5
	}
	return &BulletEnhancer{ai: ai, config: config}
}

// EnhanceBullets rewrites up to MaxEnhanced bullets, walking the
// candidates in selection order and tolerating individual failures.
func (e *BulletEnhancer) EnhanceBullets(ctx context.Context, selected []SelectedBullet, jobTitle string,
	keywords []ats.Keyword) map[string]EnhancedBullet {

	enhanced := map[string]EnhancedBullet{}
	if e.ai == nil {
		return enhanced
	}

	attempts := 0
	maxAttempts := e.config.MaxEnhanced * 2

	for _, candidate := range selected {
		if len(enhanced) >= e.config.MaxEnhanced || attempts >= maxAttempts {
			break
		}
		if !candidate.Bullet.IsModifiable {
			continue
		}
		attempts++

		result, err := e.enhanceOne(ctx, candidate, jobTitle, keywords)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
				Warnf("failed to enhance bullet %v: %v", candidate.Bullet.ID, err)
			continue
		}
		if result.Confidence < e.config.MinConfidence {
			log.Debugf("discarding low-confidence rewrite of %v (%.2f)", candidate.Bullet.ID, result.Confidence)
			continue
		}

		enhanced[candidate.Bullet.ID] = result
		metrics.EnhancedBulletsCounter.Inc()
	}

	return enhanced
}

func (e *BulletEnhancer) enhanceOne(ctx context.Context, candidate SelectedBullet, jobTitle string,
	keywords []ats.Keyword) (EnhancedBullet, error) {

	original := candidate.Bullet.Text
	response, err := e.ai.EnhanceBullet(ctx, original, jobTitle, keywords)
	if err != nil {
		return EnhancedBullet{}, err
	}

	cleaned := cleanBullet(response)
	added := findAddedKeywords(original, cleaned, keywords)

	return EnhancedBullet{
		BulletID:      candidate.Bullet.ID,
		Original:      original,
		Enhanced:      cleaned,
		AddedKeywords: added,
		Improvement:   improvementScore(original, cleaned, added),
		Confidence:    rewriteConfidence(original, cleaned),
	}, nil
}

// cleanBullet strips quotes, list markers and markdown emphasis that
// models tend to wrap answers in.
func cleanBullet(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"'`)
	for _, marker := range []string{"- ", "* ", "• "} {
		text = strings.TrimPrefix(text, marker)
	}
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = strings.TrimSpace(text)

	if text != "" {
		runes := []rune(text)
		runes[0] = unicode.ToUpper(runes[0])
		text = string(runes)
	}
	return text
}

func findAddedKeywords(original string, enhanced string, keywords []ats.Keyword) []string {
	originalLower := strings.ToLower(original)
	enhancedLower := strings.ToLower(enhanced)

	var added []string
	for _, keyword := range keywords {
		text := strings.ToLower(keyword.Text)
		if strings.Contains(enhancedLower, text) && !strings.Contains(originalLower, text) {
			added = append(added, keyword.Text)
		}
	}
	return added
}

func improvementScore(original string, enhanced string, added []string) float64 {
	score := float64(len(added)) * 0.15
	if score > 0.5 {
		score = 0.5
	}

	if quantificationPattern.MatchString(enhanced) && !quantificationPattern.MatchString(original) {
		score += 0.3
	}

	enhancedWords := strings.Fields(strings.ToLower(enhanced))
	originalWords := strings.Fields(strings.ToLower(original))
	if len(enhancedWords) > 0 && len(originalWords) > 0 {
		enhancedVerb := strings.Trim(enhancedWords[0], ".,;:")
		originalVerb := strings.Trim(originalWords[0], ".,;:")
		if lo.Contains(strongVerbs, enhancedVerb) && !lo.Contains(strongVerbs, originalVerb) {
			score += 0.2
		}
	}
	return score
}

// rewriteConfidence flags rewrites that drifted too far from the source
// text to trust without review.
func rewriteConfidence(original string, enhanced string) float64 {
	if enhanced == "" {
		return 0
	}

	ratio := float64(len(enhanced)) / float64(len(original))
	if ratio > 2.0 || ratio < 0.5 {
		return 0.5
	}

	if wordOverlap(original, enhanced) < 0.3 {
		return 0.6
	}

	first := []rune(enhanced)[0]
	if !unicode.IsUpper(first) {
		return 0.7
	}
	return 0.9
}

func wordOverlap(a string, b string) float64 {
	aWords := map[string]bool{}
	for _, word := range strings.Fields(strings.ToLower(a)) {
		aWords[strings.Trim(word, ".,;:")] = true
	}
	if len(aWords) == 0 {
		return 0
	}

	shared := 0
	for _, word := range strings.Fields(strings.ToLower(b)) {
		if aWords[strings.Trim(word, ".,;:")] {
			shared++
		}
	}
	return float64(shared) / float64(len(aWords))
}
