package services

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAIClient struct {
	mock.Mock
}

func (m *mockAIClient) GenerateResponse(ctx context.Context, request string) (string, error) {
	args := m.Called(ctx, request)
	return args.String(0), args.Error(1)
}

func Test_CleanBullet(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{`"Architected Kafka pipelines"`, "Architected Kafka pipelines"},
		{"- built CI pipelines", "Built CI pipelines"},
		{"**Optimized** queries", "Optimized queries"},
		{"  led migration  ", "Led migration"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, cleanBullet(c.input))
	}
}

func Test_RewriteConfidence(t *testing.T) {
	original := "Built data pipelines processing customer events"

	assert.Equal(t, 0.9, rewriteConfidence(original, "Architected data pipelines processing customer events daily"))
	assert.Equal(t, 0.5, rewriteConfidence(original, "Did it"))
	assert.Equal(t, 0.6, rewriteConfidence(original, "Completely unrelated sentence about gardening skills here"))
	assert.Equal(t, 0.7, rewriteConfidence(original, "built data pipelines processing customer events"))
	assert.Equal(t, 0.0, rewriteConfidence(original, ""))
}

func Test_FindAddedKeywords(t *testing.T) {
	keywords := testKeywords("kafka", "kubernetes", "terraform")

	added := findAddedKeywords(
		"Built streaming pipelines with Kafka",
		"Built streaming pipelines with Kafka on Kubernetes",
		keywords,
	)
	assert.Equal(t, []string{"kubernetes"}, added)
}

func Test_ImprovementScore(t *testing.T) {
	score := improvementScore(
		"worked on queries",
		"Optimized queries and cut response time by 35%",
		[]string{"sql"},
	)
	// one keyword, new metric, new leading strong verb
	assert.InDelta(t, 0.15+0.3+0.2, score, 0.001)
}

func Test_BulletEnhancer_KeepsHighConfidenceRewrites(t *testing.T) {
	client := &mockAIClient{}
	client.On("GenerateResponse", mock.Anything, mock.Anything).
		Return("Architected Kafka streaming pipelines processing customer events daily", nil)

	enhancer := NewBulletEnhancer(NewAIService(client, "ollama"), EnhancerConfig{MinConfidence: 0.7, MaxEnhanced: 5})

	selected := []SelectedBullet{{
		Bullet: testExperience("acme", "Built Kafka streaming pipelines processing customer events").Bullets[0],
	}}

	enhanced := enhancer.EnhanceBullets(context.Background(), selected, "Platform Engineer", testKeywords("kafka"))
	require.Len(t, enhanced, 1)
	rewrite := enhanced["acme_0"]
	assert.Equal(t, "Architected Kafka streaming pipelines processing customer events daily", rewrite.Enhanced)
	assert.GreaterOrEqual(t, rewrite.Confidence, 0.7)
}

func Test_BulletEnhancer_DiscardsLowConfidenceRewrites(t *testing.T) {
	client := &mockAIClient{}
	client.On("GenerateResponse", mock.Anything, mock.Anything).Return("Ok", nil)

	enhancer := NewBulletEnhancer(NewAIService(client, "ollama"), EnhancerConfig{MinConfidence: 0.7, MaxEnhanced: 5})

	selected := []SelectedBullet{{
		Bullet: testExperience("acme", "Built Kafka streaming pipelines processing customer events").Bullets[0],
	}}

	enhanced := enhancer.EnhanceBullets(context.Background(), selected, "Platform Engineer", nil)
	assert.Empty(t, enhanced)
}

func Test_BulletEnhancer_ToleratesClientErrors(t *testing.T) {
	client := &mockAIClient{}
	client.On("GenerateResponse", mock.Anything, mock.Anything).Return("", errors.New("model not loaded"))

	enhancer := NewBulletEnhancer(NewAIService(client, "ollama"), EnhancerConfig{})

	selected := []SelectedBullet{{
		Bullet: testExperience("acme", "Built Kafka pipelines").Bullets[0],
	}}

	enhanced := enhancer.EnhanceBullets(context.Background(), selected, "Platform Engineer", nil)
	assert.Empty(t, enhanced)
}

func Test_BulletEnhancer_SkipsNonModifiableBullets(t *testing.T) {
	client := &mockAIClient{}

	enhancer := NewBulletEnhancer(NewAIService(client, "ollama"), EnhancerConfig{})

	bullet := testExperience("acme", "Built Kafka pipelines").Bullets[0]
	bullet.IsModifiable = false

	enhanced := enhancer.EnhanceBullets(context.Background(), []SelectedBullet{{Bullet: bullet}}, "Engineer", nil)
	assert.Empty(t, enhanced)
	client.AssertNotCalled(t, "GenerateResponse", mock.Anything, mock.Anything)
}
