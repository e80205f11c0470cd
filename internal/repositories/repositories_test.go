package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akimenko/resume-pilot/internal/entities"
)

func newTestContext(t *testing.T) *DbContext {
	t.Helper()

	dbCtx, err := NewDbContext(":memory:")
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())

	t.Cleanup(func() {
		_ = dbCtx.Close()
	})
	return dbCtx
}

func addTestJob(t *testing.T, jobs *Jobs, company, title string) *entities.Job {
	t.Helper()

	posted := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	job := &entities.Job{
		Company:     company,
		Title:       title,
		Description: "Build and run Go services.",
		URL:         "https://example.com/jobs/" + title,
		PostedDate:  &posted,
		Location:    "Remote",
		Source:      "linkedin",
	}
	require.NoError(t, jobs.Add(context.Background(), job))
	return job
}

func Test_Jobs_AddAndGet(t *testing.T) {
	dbCtx := newTestContext(t)
	jobs := NewJobsRepository(dbCtx.DB)

	job := addTestJob(t, jobs, "Acme", "Backend Engineer")
	require.NotZero(t, job.ID)

	got, err := jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, entities.JobStatusNew, got.Status)

	missing, err := jobs.GetByID(context.Background(), 99999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func Test_Jobs_IdentityUniqueness(t *testing.T) {
	dbCtx := newTestContext(t)
	jobs := NewJobsRepository(dbCtx.DB)

	addTestJob(t, jobs, "Acme", "Backend Engineer")

	posted := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	dup := &entities.Job{Company: "Acme", Title: "Backend Engineer", PostedDate: &posted}
	assert.Error(t, jobs.Add(context.Background(), dup))
}

func Test_Jobs_FilterByStatusAndSearch(t *testing.T) {
	dbCtx := newTestContext(t)
	jobs := NewJobsRepository(dbCtx.DB)

	first := addTestJob(t, jobs, "Acme", "Backend Engineer")
	addTestJob(t, jobs, "Globex", "Data Engineer")

	require.NoError(t, jobs.UpdateStatus(context.Background(), first.ID, entities.JobStatusApplied))

	applied, total, err := jobs.Get(context.Background(), JobFilter{Status: entities.JobStatusApplied, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, applied, 1)
	assert.Equal(t, "Acme", applied[0].Company)

	found, total, err := jobs.Get(context.Background(), JobFilter{Search: "Data", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, "Globex", found[0].Company)
}

func Test_Variants_ScoresRoundTrip(t *testing.T) {
	dbCtx := newTestContext(t)
	jobs := NewJobsRepository(dbCtx.DB)
	variants := NewVariantsRepository(dbCtx.DB)

	job := addTestJob(t, jobs, "Acme", "Backend Engineer")

	variant := &entities.Variant{
		ID:            "acme_backend_20260820",
		JobID:         job.ID,
		LatexPath:     "output/variants/acme.tex",
		PDFPath:       "output/variants/acme.pdf",
		TotalBullets:  18,
		KeywordsAdded: entities.StringList{"kubernetes", "grpc"},
	}
	require.NoError(t, variants.Add(context.Background(), variant))

	require.NoError(t, variants.AddScore(context.Background(), &entities.ATSScore{
		VariantID:    variant.ID,
		OverallScore: 82.5,
		Grade:        "B+",
		Passed:       true,
	}))

	got, err := variants.GetByID(context.Background(), variant.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entities.StringList{"kubernetes", "grpc"}, got.KeywordsAdded)
	require.Len(t, got.Scores, 1)
	assert.Equal(t, 82.5, got.Scores[0].OverallScore)

	latest, err := variants.LatestScore(context.Background(), variant.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "B+", latest.Grade)
}

func Test_Applications_StatusTimestamps(t *testing.T) {
	dbCtx := newTestContext(t)
	jobs := NewJobsRepository(dbCtx.DB)
	applications := NewApplicationsRepository(dbCtx.DB)

	job := addTestJob(t, jobs, "Acme", "Backend Engineer")

	app := &entities.Application{JobID: job.ID}
	require.NoError(t, applications.Add(context.Background(), app))

	require.NoError(t, applications.UpdateStatus(context.Background(), app.ID, entities.ApplicationStatusApplied))

	got, err := applications.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entities.ApplicationStatusApplied, got.Status)
	assert.NotNil(t, got.AppliedAt)
	assert.Nil(t, got.ResponseAt)

	require.NoError(t, applications.UpdateStatus(context.Background(), app.ID, entities.ApplicationStatusInterview))
	got, err = applications.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.InterviewAt)
}

func Test_ActiveApplicationsView_ExcludesClosed(t *testing.T) {
	dbCtx := newTestContext(t)
	jobs := NewJobsRepository(dbCtx.DB)
	applications := NewApplicationsRepository(dbCtx.DB)

	job := addTestJob(t, jobs, "Acme", "Backend Engineer")
	other := addTestJob(t, jobs, "Globex", "Data Engineer")

	active := &entities.Application{JobID: job.ID, Status: entities.ApplicationStatusApplied}
	closed := &entities.Application{JobID: other.ID, Status: entities.ApplicationStatusRejected}
	require.NoError(t, applications.Add(context.Background(), active))
	require.NoError(t, applications.Add(context.Background(), closed))

	rows, err := applications.GetActive(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].Company)
}

func Test_PipelineView_JoinsLatestVariantAndScore(t *testing.T) {
	dbCtx := newTestContext(t)
	jobs := NewJobsRepository(dbCtx.DB)
	variants := NewVariantsRepository(dbCtx.DB)
	stats := NewStatsRepository(dbCtx.DB)

	job := addTestJob(t, jobs, "Acme", "Backend Engineer")

	older := &entities.Variant{ID: "v_old", JobID: job.ID, GeneratedAt: time.Now().Add(-time.Hour)}
	newer := &entities.Variant{ID: "v_new", JobID: job.ID, GeneratedAt: time.Now()}
	require.NoError(t, variants.Add(context.Background(), older))
	require.NoError(t, variants.Add(context.Background(), newer))

	require.NoError(t, variants.AddScore(context.Background(), &entities.ATSScore{
		VariantID: "v_new", OverallScore: 77, Grade: "B", Passed: true,
	}))

	rows, err := stats.GetPipeline(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "v_new", rows[0].VariantID)
	require.NotNil(t, rows[0].OverallScore)
	assert.Equal(t, float64(77), *rows[0].OverallScore)
}

func Test_Stats_Counters(t *testing.T) {
	dbCtx := newTestContext(t)
	jobs := NewJobsRepository(dbCtx.DB)
	applications := NewApplicationsRepository(dbCtx.DB)
	stats := NewStatsRepository(dbCtx.DB)

	job := addTestJob(t, jobs, "Acme", "Backend Engineer")
	addTestJob(t, jobs, "Globex", "Data Engineer")

	app := &entities.Application{JobID: job.ID}
	require.NoError(t, applications.Add(context.Background(), app))
	require.NoError(t, applications.UpdateStatus(context.Background(), app.ID, entities.ApplicationStatusApplied))
	require.NoError(t, applications.UpdateStatus(context.Background(), app.ID, entities.ApplicationStatusRejected))

	counts, err := stats.CountJobsByStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.EqualValues(t, 2, counts[0].Count)

	applied, responded, err := stats.CountResponses(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, applied)
	assert.EqualValues(t, 1, responded)
}
