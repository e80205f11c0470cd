package services

import (
	"context"
	"strings"

	"github.com/akimenko/resume-pilot/internal/ats"
	"github.com/akimenko/resume-pilot/internal/resume"
)

type aiClient interface {
	GenerateResponse(ctx context.Context, request string) (string, error)
}

type availabilityProber interface {
	IsAvailable(ctx context.Context) bool
}

type AIService struct {
	aiClient aiClient
	prober   availabilityProber
	provider string
}

func NewAIService(aiClient aiClient, provider string) *AIService {
	service := &AIService{aiClient: aiClient, provider: provider}
	if prober, ok := aiClient.(availabilityProber); ok {
		service.prober = prober
	}
	return service
}

func (a *AIService) Provider() string {
	return a.provider
}

// IsAvailable probes the backing provider. Providers without a health
// endpoint are assumed reachable.
func (a *AIService) IsAvailable(ctx context.Context) bool {
	if a == nil || a.aiClient == nil {
		return false
	}
	if a.prober != nil {
		return a.prober.IsAvailable(ctx)
	}
	return true
}

func (a *AIService) EnhanceBullet(ctx context.Context, bullet string, jobTitle string, keywords []ats.Keyword) (string, error) {
	response, err := a.aiClient.GenerateResponse(ctx, enhanceBulletRequest(bullet, jobTitle, keywords))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

func (a *AIService) GenerateSummary(ctx context.Context, parsed *resume.ParsedResume, jobTitle string, keywords []ats.Keyword) (string, error) {
	response, err := a.aiClient.GenerateResponse(ctx, summaryRequest(parsed, jobTitle, keywords))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

func enhanceBulletRequest(bullet string, jobTitle string, keywords []ats.Keyword) string {

	var sb strings.Builder
	sb.WriteString("You are an expert resume writer and ATS optimization specialist. ")
	sb.WriteString("Rewrite the resume bullet point below so it targets the given job while staying truthful. ")
	sb.WriteString("Keep it under 25 words. Start with a strong action verb. ")
	sb.WriteString("DO NOT make up fake numbers or metrics; if a metric would help, use the placeholder [X]. ")
	sb.WriteString("Naturally incorporate relevant keywords where they fit.\n\n")

	sb.WriteString("Target role: " + jobTitle + "\n")
	if len(keywords) > 0 {
		sb.WriteString("Relevant keywords: " + joinKeywordTexts(keywords, 5) + "\n")
	}
	sb.WriteString("Bullet point: " + bullet + "\n\n")
	sb.WriteString("Return ONLY the enhanced bullet point, with no quotes and no explanation.")
	return sb.String()
}

func summaryRequest(parsed *resume.ParsedResume, jobTitle string, keywords []ats.Keyword) string {

	var highlights []string
	for _, bullet := range parsed.AllBullets() {
		text := bullet.Text
		if len(text) > 100 {
			text = text[:100]
		}
		highlights = append(highlights, "- "+text)
		if len(highlights) == 5 {
			break
		}
	}

	var skills []string
	skills = append(skills, parsed.Skills.Technical...)
	skills = append(skills, parsed.Skills.Tools...)
	if len(skills) > 10 {
		skills = skills[:10]
	}

	var sb strings.Builder
	sb.WriteString("You are an expert resume writer. Write a professional summary for a resume targeting the role of ")
	sb.WriteString(jobTitle)
	sb.WriteString(". The summary must be 3-4 sentences, 60-80 words, written in third person without pronouns. ")
	sb.WriteString("Base it only on the experience and skills below; do not invent anything.\n\n")

	if len(highlights) > 0 {
		sb.WriteString("Experience highlights:\n" + strings.Join(highlights, "\n") + "\n\n")
	}
	if len(skills) > 0 {
		sb.WriteString("Skills: " + strings.Join(skills, ", ") + "\n")
	}
	if len(keywords) > 0 {
		sb.WriteString("Keywords to incorporate: " + joinKeywordTexts(keywords, 5) + "\n")
	}
	sb.WriteString("\nReturn ONLY the summary text.")
	return sb.String()
}

func joinKeywordTexts(keywords []ats.Keyword, limit int) string {
	var texts []string
	for _, keyword := range keywords {
		texts = append(texts, keyword.Text)
		if len(texts) == limit {
			break
		}
	}
	return strings.Join(texts, ", ")
}
