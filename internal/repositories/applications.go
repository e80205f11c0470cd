package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/akimenko/resume-pilot/internal/entities"
)

type Applications struct {
	db *gorm.DB
}

func NewApplicationsRepository(db *gorm.DB) *Applications {
	return &Applications{db: db}
}

func (repo *Applications) Add(ctx context.Context, application *entities.Application) error {
	return repo.db.WithContext(ctx).Create(application).Error
}

func (repo *Applications) GetByID(ctx context.Context, id int) (*entities.Application, error) {

	var application entities.Application
	err := repo.db.WithContext(ctx).First(&application, "application_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &application, nil
}

func (repo *Applications) GetByJob(ctx context.Context, jobID int) ([]entities.Application, error) {

	var applications []entities.Application
	if err := repo.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&applications, "job_id = ?", jobID).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

func (repo *Applications) Update(ctx context.Context, application *entities.Application) error {
	return repo.db.WithContext(ctx).Model(&entities.Application{}).
		Where("application_id = ?", application.ID).
		Updates(application).Error
}

// UpdateStatus moves an application through the pipeline and stamps the
// timestamp matching the new status.
func (repo *Applications) UpdateStatus(ctx context.Context, id int, status string) error {

	updates := map[string]any{"status": status}
	now := time.Now()

	switch status {
	case entities.ApplicationStatusApplied:
		updates["applied_at"] = now
	case entities.ApplicationStatusScreening, entities.ApplicationStatusOffer, entities.ApplicationStatusRejected:
		updates["response_at"] = now
	case entities.ApplicationStatusInterview:
		updates["interview_at"] = now
	}

	return repo.db.WithContext(ctx).Model(&entities.Application{}).
		Where("application_id = ?", id).
		Updates(updates).Error
}

func (repo *Applications) GetActive(ctx context.Context) ([]ActiveApplication, error) {

	var rows []ActiveApplication
	if err := repo.db.WithContext(ctx).
		Table("active_applications").
		Order("applied_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *Applications) GetDueFollowUps(ctx context.Context, by time.Time) ([]ActiveApplication, error) {

	var rows []ActiveApplication
	if err := repo.db.WithContext(ctx).
		Table("active_applications").
		Where("follow_up_at IS NOT NULL AND follow_up_at <= ?", by).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type ActiveApplication struct {
	ApplicationID int        `json:"application_id"`
	JobID         int        `json:"job_id"`
	VariantID     string     `json:"variant_id,omitempty"`
	Status        string     `json:"status"`
	AppliedAt     *time.Time `json:"applied_at,omitempty"`
	FollowUpAt    *time.Time `json:"follow_up_at,omitempty"`
	Company       string     `json:"company"`
	JobTitle      string     `json:"job_title"`
}
