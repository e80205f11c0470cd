package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/akimenko/resume-pilot/internal/entities"
)

type JobFilter struct {
	Status  string
	Company string
	Source  string
	Search  string
	Limit   int
	Offset  int
}

type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

func (repo *Jobs) Add(ctx context.Context, job *entities.Job) error {
	return repo.db.WithContext(ctx).Create(job).Error
}

func (repo *Jobs) GetByID(ctx context.Context, id int) (*entities.Job, error) {

	var job entities.Job
	err := repo.db.WithContext(ctx).First(&job, "job_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (repo *Jobs) GetByURL(ctx context.Context, url string) (*entities.Job, error) {

	var job entities.Job
	err := repo.db.WithContext(ctx).First(&job, "job_url = ?", url).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (repo *Jobs) GetByCompany(ctx context.Context, company string) ([]entities.Job, error) {

	var jobs []entities.Job
	if err := repo.db.WithContext(ctx).Find(&jobs, "company = ? COLLATE NOCASE", company).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (repo *Jobs) Get(ctx context.Context, filter JobFilter) ([]entities.Job, int64, error) {

	query := repo.db.WithContext(ctx).Model(&entities.Job{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Company != "" {
		query = query.Where("company = ? COLLATE NOCASE", filter.Company)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("job_title LIKE ? OR company LIKE ? OR location LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []entities.Job
	if err := query.
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&jobs).Error; err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// GetAllWithRelations loads every job with its variants, scores and
// applications, for the JSON export.
func (repo *Jobs) GetAllWithRelations(ctx context.Context) ([]entities.Job, error) {

	var jobs []entities.Job
	if err := repo.db.WithContext(ctx).
		Preload("Variants").
		Preload("Variants.Scores").
		Preload("Applications").
		Order("job_id ASC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Update applies only the given columns, so callers can clear fields to
// their zero value.
func (repo *Jobs) Update(ctx context.Context, id int, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return repo.db.WithContext(ctx).Model(&entities.Job{}).Where("job_id = ?", id).Updates(fields).Error
}

func (repo *Jobs) UpdateStatus(ctx context.Context, id int, status string) error {
	return repo.db.WithContext(ctx).Model(&entities.Job{}).Where("job_id = ?", id).
		Update("status", status).Error
}

func (repo *Jobs) Remove(ctx context.Context, id int) error {
	return repo.db.WithContext(ctx).Select("Variants", "Applications").
		Delete(&entities.Job{ID: id}).Error
}

func (repo *Jobs) RemoveArchivedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).
		Delete(&entities.Job{}, "status = ? AND updated_at < ?", entities.JobStatusArchived, cutoff)
	return res.RowsAffected, res.Error
}
