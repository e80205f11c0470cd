package services

import (
	"context"

	"github.com/akimenko/resume-pilot/internal/entities"
	"github.com/akimenko/resume-pilot/internal/repositories"
)

type statsRepository interface {
	GetPipeline(ctx context.Context) ([]repositories.PipelineRow, error)
	CountJobsByStatus(ctx context.Context) ([]repositories.StatusCount, error)
	CountApplicationsByStatus(ctx context.Context) ([]repositories.StatusCount, error)
	CountVariants(ctx context.Context) (int64, error)
	LatestScores(ctx context.Context) ([]float64, error)
	ScoreHistory(ctx context.Context, limit int) ([]repositories.ScorePoint, error)
	CountResponses(ctx context.Context) (applied int64, responded int64, err error)
}

type activityReader interface {
	GetRecent(ctx context.Context, limit int) ([]entities.Activity, error)
}

type ScoreBuckets struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Fair      int `json:"fair"`
	Poor      int `json:"poor"`
}

type Overview struct {
	TotalJobs            int64                      `json:"total_jobs"`
	JobsByStatus         map[string]int64           `json:"jobs_by_status"`
	ApplicationsByStatus map[string]int64           `json:"applications_by_status"`
	TotalVariants        int64                      `json:"total_variants"`
	JobsWithVariants     int                        `json:"jobs_with_variants"`
	AverageScore         float64                    `json:"average_score"`
	ScoreBuckets         ScoreBuckets               `json:"score_buckets"`
	Applied              int64                      `json:"applied"`
	Responded            int64                      `json:"responded"`
	ResponseRate         float64                    `json:"response_rate"`
	Pipeline             []repositories.PipelineRow `json:"pipeline"`
}

type AIStatus struct {
	Enabled   bool   `json:"enabled"`
	Provider  string `json:"provider,omitempty"`
	Available bool   `json:"available"`
}

// StatsService aggregates the dashboard numbers from the stats queries.
type StatsService struct {
	stats      statsRepository
	activities activityReader
	ai         *AIService
}

func NewStatsService(stats statsRepository, activities activityReader, ai *AIService) *StatsService {
	return &StatsService{stats: stats, activities: activities, ai: ai}
}

func (s *StatsService) Overview(ctx context.Context) (*Overview, error) {

	jobCounts, err := s.stats.CountJobsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	applicationCounts, err := s.stats.CountApplicationsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	totalVariants, err := s.stats.CountVariants(ctx)
	if err != nil {
		return nil, err
	}
	scores, err := s.stats.LatestScores(ctx)
	if err != nil {
		return nil, err
	}
	applied, responded, err := s.stats.CountResponses(ctx)
	if err != nil {
		return nil, err
	}
	pipeline, err := s.stats.GetPipeline(ctx)
	if err != nil {
		return nil, err
	}

	overview := &Overview{
		JobsByStatus:         statusMap(jobCounts),
		ApplicationsByStatus: statusMap(applicationCounts),
		TotalVariants:        totalVariants,
		Applied:              applied,
		Responded:            responded,
		Pipeline:             pipeline,
	}
	for _, count := range jobCounts {
		overview.TotalJobs += count.Count
	}
	for _, row := range pipeline {
		if row.VariantID != "" {
			overview.JobsWithVariants++
		}
	}
	if applied > 0 {
		overview.ResponseRate = float64(responded) / float64(applied)
	}
	overview.AverageScore, overview.ScoreBuckets = bucketScores(scores)

	return overview, nil
}

func (s *StatsService) RecentActivity(ctx context.Context, limit int) ([]entities.Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.activities.GetRecent(ctx, limit)
}

func (s *StatsService) ScoreTrends(ctx context.Context, limit int) ([]repositories.ScorePoint, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.stats.ScoreHistory(ctx, limit)
}

func (s *StatsService) AI(ctx context.Context) AIStatus {
	if s.ai == nil {
		return AIStatus{}
	}
	return AIStatus{
		Enabled:   true,
		Provider:  s.ai.Provider(),
		Available: s.ai.IsAvailable(ctx),
	}
}

func statusMap(counts []repositories.StatusCount) map[string]int64 {
	out := map[string]int64{}
	for _, count := range counts {
		out[count.Status] = count.Count
	}
	return out
}

func bucketScores(scores []float64) (average float64, buckets ScoreBuckets) {
	if len(scores) == 0 {
		return 0, buckets
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
		switch {
		case score >= 80:
			buckets.Excellent++
		case score >= 70:
			buckets.Good++
		case score >= 60:
			buckets.Fair++
		default:
			buckets.Poor++
		}
	}
	return sum / float64(len(scores)), buckets
}
