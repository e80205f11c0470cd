package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akimenko/resume-pilot/internal/clients/linkedin"
	"github.com/akimenko/resume-pilot/internal/entities"
	"github.com/akimenko/resume-pilot/internal/events"
	"github.com/akimenko/resume-pilot/internal/logger"
	"github.com/akimenko/resume-pilot/internal/metrics"
	"github.com/akimenko/resume-pilot/internal/scraper"
	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const maxHistoryEntries = 20

type jobCardSource interface {
	GetJobCards(ctx context.Context, parameters linkedin.SearchParameters) ([]linkedin.JobCard, error)
	GetJobDescription(ctx context.Context, externalID string) (string, error)
}

type scrapeJobsRepository interface {
	Add(ctx context.Context, job *entities.Job) error
	GetByURL(ctx context.Context, url string) (*entities.Job, error)
}

type ScrapeRequest struct {
	Keywords string `json:"keywords" binding:"required"`
	Location string `json:"location"`
	MaxPages int    `json:"max_pages"`
}

type ScrapeRun struct {
	TaskID     string     `json:"task_id"`
	Keywords   string     `json:"keywords"`
	Location   string     `json:"location"`
	Found      int        `json:"found"`
	Duplicates int        `json:"duplicates"`
	Imported   int        `json:"imported"`
	Status     TaskStatus `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
}

type ScrapeSummary struct {
	Found      int `json:"found"`
	New        int `json:"new"`
	Duplicates int `json:"duplicates"`
}

// ScrapeService fetches job cards from the guest search endpoints,
// normalizes and deduplicates them, and holds the results as a preview
// until the user picks which ones to import.
type ScrapeService struct {
	client     jobCardSource
	normalizer *scraper.Normalizer
	dedup      *scraper.Deduplicator
	jobs       scrapeJobsRepository
	activities activityRecorder
	bus        EventBus.Bus
	tasks      *TaskTracker
	previews   *gocache.Cache
	maxPages   int

	mu      sync.Mutex
	history []ScrapeRun
}

func NewScrapeService(client jobCardSource, jobs scrapeJobsRepository, activities activityRecorder,
	bus EventBus.Bus, tasks *TaskTracker, fuzzyThreshold int, maxPages int) *ScrapeService {

	return &ScrapeService{
		client:     client,
		normalizer: scraper.NewNormalizer(),
		dedup:      scraper.NewDeduplicator(fuzzyThreshold),
		jobs:       jobs,
		activities: activities,
		bus:        bus,
		tasks:      tasks,
		previews:   gocache.New(1*time.Hour, 10*time.Minute),
		maxPages:   maxPages,
	}
}

// StartScrape launches a scrape in the background and returns the task
// to poll. Results land in the preview cache under the task ID.
func (s *ScrapeService) StartScrape(ctx context.Context, request ScrapeRequest) (*Task, error) {

	if request.Keywords == "" {
		return nil, errors.New("keywords must not be empty")
	}
	pages := request.MaxPages
	if pages <= 0 || pages > s.maxPages {
		pages = s.maxPages
	}

	task := s.tasks.Start("scrape", fmt.Sprintf("searching for %q", request.Keywords))
	s.recordRun(ScrapeRun{
		TaskID:    task.ID,
		Keywords:  request.Keywords,
		Location:  request.Location,
		Status:    TaskRunning,
		StartedAt: task.StartedAt,
	})

	go func() {
		start := time.Now()
		summary, err := s.scrape(context.Background(), task.ID, request, pages)
		metrics.ScrapeDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeScrape).
				Errorf("scrape %v failed: %v", task.ID, err)
			s.updateRun(task.ID, func(run *ScrapeRun) { run.Status = TaskFailed })
			s.tasks.Fail(task.ID, err)
			return
		}

		s.updateRun(task.ID, func(run *ScrapeRun) {
			run.Status = TaskCompleted
			run.Found = summary.Found
			run.Duplicates = summary.Duplicates
		})
		s.tasks.Complete(task.ID, summary)
	}()

	return task, nil
}

func (s *ScrapeService) scrape(ctx context.Context, taskID string, request ScrapeRequest, pages int) (*ScrapeSummary, error) {

	var collected []scraper.ScrapedJob

	for page := 0; page < pages; page++ {
		cards, err := s.client.GetJobCards(ctx, linkedin.SearchParameters{
			Keywords: request.Keywords,
			Location: request.Location,
			Start:    page * linkedin.CardsPerPage,
		})
		if err != nil {
			return nil, err
		}
		if len(cards) == 0 {
			break
		}

		s.tasks.Update(taskID, (page+1)*80/pages, fmt.Sprintf("fetched page %v, %v cards", page+1, len(cards)))

		for _, card := range cards {
			description, err := s.client.GetJobDescription(ctx, card.ExternalID)
			if err != nil {
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeScrape).
					Warnf("failed to fetch description for %v: %v", card.ExternalID, err)
			}

			job := s.normalizer.Normalize(card, description)
			job.TempID = uuid.NewString()
			collected = append(collected, job)
		}
	}

	duplicates := s.dedup.MarkDuplicates(collected)
	s.markExisting(ctx, collected)
	s.tasks.Update(taskID, 90, fmt.Sprintf("found %v jobs, %v duplicates", len(collected), duplicates))

	metrics.ScrapedJobsCounter.Add(float64(len(collected)))
	metrics.DuplicateJobsCounter.Add(float64(duplicates))

	s.previews.Set(taskID, collected, gocache.DefaultExpiration)

	newCount := 0
	for _, job := range collected {
		if !job.Duplicate {
			newCount++
		}
	}
	return &ScrapeSummary{Found: len(collected), New: newCount, Duplicates: len(collected) - newCount}, nil
}

// markExisting flags scraped jobs already present in the database so
// the preview shows them as duplicates too.
func (s *ScrapeService) markExisting(ctx context.Context, jobs []scraper.ScrapedJob) {
	for i := range jobs {
		if jobs[i].Duplicate {
			continue
		}
		existing, err := s.jobs.GetByURL(ctx, jobs[i].URL)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to check existing job: %v", err)
			continue
		}
		if existing != nil {
			jobs[i].Duplicate = true
			jobs[i].DuplicateOf = "already imported"
		}
	}
}

// Preview returns the scraped jobs held for a finished scrape task.
func (s *ScrapeService) Preview(taskID string) ([]scraper.ScrapedJob, bool) {
	cached, found := s.previews.Get(taskID)
	if !found {
		return nil, false
	}
	return cached.([]scraper.ScrapedJob), true
}

// Import persists the chosen preview entries. An empty tempIDs slice
// imports every non-duplicate job from the preview.
func (s *ScrapeService) Import(ctx context.Context, taskID string, tempIDs []string) (*events.JobsImported, error) {

	preview, found := s.Preview(taskID)
	if !found {
		return nil, errors.Errorf("no preview found for task %v", taskID)
	}

	wanted := map[string]bool{}
	for _, id := range tempIDs {
		wanted[id] = true
	}

	result := events.JobsImported{}
	companies := map[string]bool{}

	for _, job := range preview {
		if len(wanted) > 0 && !wanted[job.TempID] {
			continue
		}
		if len(wanted) == 0 && job.Duplicate {
			result.Skipped++
			continue
		}

		entity := &entities.Job{
			Company:     job.Company,
			Title:       job.Title,
			Location:    job.Location,
			URL:         job.URL,
			Description: job.Description,
			SalaryRange: job.SalaryRange,
			PostedDate:  job.PostedDate,
			Source:      "linkedin",
			Status:      entities.JobStatusNew,
		}

		if err := s.jobs.Add(ctx, entity); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to import job %v at %v: %v", job.Title, job.Company, err)
			result.Skipped++
			continue
		}

		result.Imported++
		if !companies[job.Company] {
			companies[job.Company] = true
			result.Companies = append(result.Companies, job.Company)
		}

		jobID := entity.ID
		activity := &entities.Activity{
			Kind:    entities.ActivityJobImported,
			JobID:   &jobID,
			Message: fmt.Sprintf("Imported %v at %v", job.Title, job.Company),
		}
		if err := s.activities.Add(ctx, activity); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to record activity: %v", err)
		}
	}

	s.updateRun(taskID, func(run *ScrapeRun) { run.Imported = result.Imported })

	if result.Imported > 0 {
		s.bus.Publish(events.JobsImportedTopic, result)
	}
	return &result, nil
}

// History lists recent scrape runs, newest first.
func (s *ScrapeService) History() []ScrapeRun {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ScrapeRun, len(s.history))
	copy(out, s.history)
	return out
}

func (s *ScrapeService) recordRun(run ScrapeRun) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append([]ScrapeRun{run}, s.history...)
	if len(s.history) > maxHistoryEntries {
		s.history = s.history[:maxHistoryEntries]
	}
}

func (s *ScrapeService) updateRun(taskID string, apply func(run *ScrapeRun)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.history {
		if s.history[i].TaskID == taskID {
			apply(&s.history[i])
			return
		}
	}
}
