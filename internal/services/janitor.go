package services

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type archivedJobsRepository interface {
	RemoveArchivedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type activityCleanupRepository interface {
	RemoveOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Janitor removes archived jobs, stale activity records and orphaned
// variant directories on a nightly schedule.
type Janitor struct {
	jobs          archivedJobsRepository
	activities    activityCleanupRepository
	knownVariants func(ctx context.Context) (map[string]bool, error)
	outputDir     string
	retentionDays int
	cron          *cron.Cron
}

func NewJanitor(jobs archivedJobsRepository, activities activityCleanupRepository,
	knownVariants func(ctx context.Context) (map[string]bool, error),
	outputDir string, retentionDays int) (*Janitor, error) {

	if retentionDays <= 0 {
		return nil, errors.New("retention in days must be greater than zero")
	}

	j := &Janitor{
		jobs:          jobs,
		activities:    activities,
		knownVariants: knownVariants,
		outputDir:     outputDir,
		retentionDays: retentionDays,
		cron:          cron.New(),
	}

	_, err := j.cron.AddFunc("0 0 * * *", j.run)
	if err != nil {
		return nil, err
	}

	j.cron.Start()
	log.Infof("janitor started, retention in days: %d", retentionDays)
	return j, nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}

func (j *Janitor) run() {
	ctx := context.Background()
	cutoff := time.Now().Add(-time.Duration(j.retentionDays) * 24 * time.Hour)

	if removed, err := j.jobs.RemoveArchivedBefore(ctx, cutoff); err != nil {
		log.Errorf("failed to remove archived jobs: %v", err)
	} else if removed > 0 {
		log.Infof("removed %v archived jobs older than %v days", removed, j.retentionDays)
	}

	if removed, err := j.activities.RemoveOlderThan(ctx, cutoff); err != nil {
		log.Errorf("failed to remove old activity records: %v", err)
	} else if removed > 0 {
		log.Infof("removed %v old activity records", removed)
	}

	if removed, err := j.removeOrphanedFiles(ctx); err != nil {
		log.Errorf("failed to remove orphaned variant files: %v", err)
	} else if removed > 0 {
		log.Infof("removed %v orphaned variant directories", removed)
	}
}

// removeOrphanedFiles deletes output directories whose variant no
// longer exists in the database.
func (j *Janitor) removeOrphanedFiles(ctx context.Context) (int, error) {

	known, err := j.knownVariants(ctx)
	if err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(j.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || known[entry.Name()] {
			continue
		}
		if err := os.RemoveAll(filepath.Join(j.outputDir, entry.Name())); err != nil {
			log.Errorf("failed to remove %v: %v", entry.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}
