package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/akimenko/resume-pilot/internal/entities"
)

type Variants struct {
	db *gorm.DB
}

func NewVariantsRepository(db *gorm.DB) *Variants {
	return &Variants{db: db}
}

func (repo *Variants) Add(ctx context.Context, variant *entities.Variant) error {
	return repo.db.WithContext(ctx).Create(variant).Error
}

func (repo *Variants) GetByID(ctx context.Context, id string) (*entities.Variant, error) {

	var variant entities.Variant
	err := repo.db.WithContext(ctx).Preload("Job").Preload("Scores").First(&variant, "variant_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

func (repo *Variants) GetByJob(ctx context.Context, jobID int) ([]entities.Variant, error) {

	var variants []entities.Variant
	if err := repo.db.WithContext(ctx).Preload("Scores").
		Order("generated_at DESC").
		Find(&variants, "job_id = ?", jobID).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

func (repo *Variants) Get(ctx context.Context, limit int, offset int) ([]entities.Variant, error) {

	var variants []entities.Variant
	if err := repo.db.WithContext(ctx).Preload("Job").Preload("Scores").
		Order("generated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

func (repo *Variants) Remove(ctx context.Context, id string) error {
	return repo.db.WithContext(ctx).Select("Scores").Delete(&entities.Variant{ID: id}).Error
}

func (repo *Variants) AddScore(ctx context.Context, score *entities.ATSScore) error {
	return repo.db.WithContext(ctx).Create(score).Error
}

func (repo *Variants) LatestScore(ctx context.Context, variantID string) (*entities.ATSScore, error) {

	var score entities.ATSScore
	err := repo.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Order("scored_at DESC").
		First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &score, nil
}
