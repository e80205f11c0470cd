package repositories

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/akimenko/resume-pilot/internal/entities"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(path string) (*DbContext, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(entities.Job{})
	if err != nil {
		return fmt.Errorf("failed to migrate Job entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Variant{})
	if err != nil {
		return fmt.Errorf("failed to migrate Variant entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.ATSScore{})
	if err != nil {
		return fmt.Errorf("failed to migrate ATSScore entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Application{})
	if err != nil {
		return fmt.Errorf("failed to migrate Application entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Activity{})
	if err != nil {
		return fmt.Errorf("failed to migrate Activity entity: %w", err)
	}

	if err = c.createViews(); err != nil {
		return fmt.Errorf("failed to create views: %w", err)
	}

	return nil
}

// job_pipeline joins each job with its newest variant and that variant's
// newest score, so the dashboard renders a whole row with a single query.
func (c *DbContext) createViews() error {
	err := c.DB.Exec(`
		CREATE VIEW IF NOT EXISTS job_pipeline AS
		SELECT j.job_id,
		       j.company,
		       j.job_title,
		       j.location,
		       j.status,
		       j.posted_date,
		       j.deadline_date,
		       v.variant_id,
		       v.variant_pdf_path,
		       s.overall_score,
		       s.grade,
		       s.passed,
		       a.application_id,
		       a.status AS application_status,
		       a.applied_at
		FROM jobs j
		LEFT JOIN variants v ON v.variant_id = (
			SELECT v2.variant_id FROM variants v2
			WHERE v2.job_id = j.job_id
			ORDER BY v2.generated_at DESC LIMIT 1
		)
		LEFT JOIN ats_scores s ON s.score_id = (
			SELECT s2.score_id FROM ats_scores s2
			WHERE s2.variant_id = v.variant_id
			ORDER BY s2.scored_at DESC LIMIT 1
		)
		LEFT JOIN applications a ON a.application_id = (
			SELECT a2.application_id FROM applications a2
			WHERE a2.job_id = j.job_id
			ORDER BY a2.updated_at DESC LIMIT 1
		)`).Error
	if err != nil {
		return err
	}

	return c.DB.Exec(`
		CREATE VIEW IF NOT EXISTS active_applications AS
		SELECT a.application_id,
		       a.job_id,
		       a.variant_id,
		       a.status,
		       a.applied_at,
		       a.follow_up_at,
		       j.company,
		       j.job_title
		FROM applications a
		JOIN jobs j ON j.job_id = a.job_id
		WHERE a.status NOT IN ('rejected', 'withdrawn')`).Error
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
