package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/akimenko/resume-pilot/internal/entities"
)

type Activities struct {
	db *gorm.DB
}

func NewActivitiesRepository(db *gorm.DB) *Activities {
	return &Activities{db: db}
}

func (repo *Activities) Add(ctx context.Context, activity *entities.Activity) error {
	return repo.db.WithContext(ctx).Create(activity).Error
}

func (repo *Activities) GetRecent(ctx context.Context, limit int) ([]entities.Activity, error) {

	var activities []entities.Activity
	if err := repo.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (repo *Activities) RemoveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Delete(&entities.Activity{}, "created_at < ?", cutoff)
	return res.RowsAffected, res.Error
}
