package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/akimenko/resume-pilot/internal/resume"
)

func Test_AIService_EnhanceBullet_PromptContents(t *testing.T) {
	client := &mockAIClient{}
	var captured string
	client.On("GenerateResponse", mock.Anything, mock.MatchedBy(func(request string) bool {
		captured = request
		return true
	})).Return("Enhanced bullet", nil)

	service := NewAIService(client, "ollama")
	response, err := service.EnhanceBullet(context.Background(), "Built pipelines", "Platform Engineer", testKeywords("kafka", "kubernetes"))
	require.NoError(t, err)
	assert.Equal(t, "Enhanced bullet", response)

	assert.Contains(t, captured, "Built pipelines")
	assert.Contains(t, captured, "Platform Engineer")
	assert.Contains(t, captured, "kafka, kubernetes")
	assert.Contains(t, captured, "under 25 words")
	assert.Contains(t, captured, "[X]")
	assert.Contains(t, captured, "Return ONLY the enhanced bullet point")
}

func Test_AIService_GenerateSummary_PromptContents(t *testing.T) {
	client := &mockAIClient{}
	var captured string
	client.On("GenerateResponse", mock.Anything, mock.MatchedBy(func(request string) bool {
		captured = request
		return true
	})).Return("A summary.", nil)

	parsed := &resume.ParsedResume{
		Experience: []resume.ExperienceEntry{
			testExperience("acme", "Architected Kafka streaming pipelines"),
		},
		Skills: resume.SkillsSection{Technical: []string{"Go", "Python"}},
	}

	service := NewAIService(client, "gemini")
	_, err := service.GenerateSummary(context.Background(), parsed, "Platform Engineer", testKeywords("kafka"))
	require.NoError(t, err)

	assert.Contains(t, captured, "3-4 sentences")
	assert.Contains(t, captured, "60-80 words")
	assert.Contains(t, captured, "third person")
	assert.Contains(t, captured, "Architected Kafka streaming pipelines")
	assert.Contains(t, captured, "Go, Python")
}

func Test_AIService_TruncatesLongHighlights(t *testing.T) {
	client := &mockAIClient{}
	var captured string
	client.On("GenerateResponse", mock.Anything, mock.MatchedBy(func(request string) bool {
		captured = request
		return true
	})).Return("ok", nil)

	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	parsed := &resume.ParsedResume{
		Experience: []resume.ExperienceEntry{testExperience("acme", string(long))},
	}

	service := NewAIService(client, "ollama")
	_, err := service.GenerateSummary(context.Background(), parsed, "Engineer", nil)
	require.NoError(t, err)

	assert.NotContains(t, captured, string(long))
}

func Test_AIService_Availability(t *testing.T) {
	var nilService *AIService
	assert.False(t, nilService.IsAvailable(context.Background()))

	service := NewAIService(&mockAIClient{}, "gemini")
	assert.True(t, service.IsAvailable(context.Background()))
	assert.Equal(t, "gemini", service.Provider())
}
