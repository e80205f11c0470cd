package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/akimenko/resume-pilot/internal/entities"
)

type PipelineRow struct {
	JobID             int        `json:"job_id"`
	Company           string     `json:"company"`
	JobTitle          string     `json:"job_title"`
	Location          string     `json:"location,omitempty"`
	Status            string     `json:"status"`
	PostedDate        *time.Time `json:"posted_date,omitempty"`
	DeadlineDate      *time.Time `json:"deadline_date,omitempty"`
	VariantID         string     `json:"variant_id,omitempty"`
	VariantPdfPath    string     `json:"variant_pdf_path,omitempty"`
	OverallScore      *float64   `json:"overall_score,omitempty"`
	Grade             string     `json:"grade,omitempty"`
	Passed            *bool      `json:"passed,omitempty"`
	ApplicationID     *int       `json:"application_id,omitempty"`
	ApplicationStatus string     `json:"application_status,omitempty"`
	AppliedAt         *time.Time `json:"applied_at,omitempty"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type Stats struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *Stats {
	return &Stats{db: db}
}

func (repo *Stats) GetPipeline(ctx context.Context) ([]PipelineRow, error) {

	var rows []PipelineRow
	if err := repo.db.WithContext(ctx).
		Table("job_pipeline").
		Order("job_id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *Stats) CountJobsByStatus(ctx context.Context) ([]StatusCount, error) {

	var counts []StatusCount
	if err := repo.db.WithContext(ctx).Model(&entities.Job{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (repo *Stats) CountApplicationsByStatus(ctx context.Context) ([]StatusCount, error) {

	var counts []StatusCount
	if err := repo.db.WithContext(ctx).Model(&entities.Application{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (repo *Stats) CountVariants(ctx context.Context) (int64, error) {

	var count int64
	if err := repo.db.WithContext(ctx).Model(&entities.Variant{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// LatestScores returns the newest score of every variant, for the
// score distribution buckets on the overview page.
func (repo *Stats) LatestScores(ctx context.Context) ([]float64, error) {

	var scores []float64
	err := repo.db.WithContext(ctx).Raw(`
		SELECT s.overall_score FROM ats_scores s
		WHERE s.score_id = (
			SELECT s2.score_id FROM ats_scores s2
			WHERE s2.variant_id = s.variant_id
			ORDER BY s2.scored_at DESC LIMIT 1
		)`).Scan(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

type ScorePoint struct {
	VariantID    string    `json:"variant_id"`
	JobID        int       `json:"job_id"`
	OverallScore float64   `json:"overall_score"`
	Grade        string    `json:"grade"`
	ScoredAt     time.Time `json:"scored_at"`
}

// ScoreHistory returns chronological score points for the trends chart.
func (repo *Stats) ScoreHistory(ctx context.Context, limit int) ([]ScorePoint, error) {

	var points []ScorePoint
	err := repo.db.WithContext(ctx).
		Table("ats_scores").
		Select("ats_scores.variant_id, variants.job_id, ats_scores.overall_score, ats_scores.grade, ats_scores.scored_at").
		Joins("JOIN variants ON variants.variant_id = ats_scores.variant_id").
		Order("ats_scores.scored_at ASC").
		Limit(limit).
		Find(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (repo *Stats) CountResponses(ctx context.Context) (applied int64, responded int64, err error) {

	err = repo.db.WithContext(ctx).Model(&entities.Application{}).
		Where("applied_at IS NOT NULL").
		Count(&applied).Error
	if err != nil {
		return 0, 0, err
	}

	err = repo.db.WithContext(ctx).Model(&entities.Application{}).
		Where("response_at IS NOT NULL").
		Count(&responded).Error
	if err != nil {
		return 0, 0, err
	}

	return applied, responded, nil
}
