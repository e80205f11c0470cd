package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akimenko/resume-pilot/internal/ats"
	"github.com/akimenko/resume-pilot/internal/clients/linkedin"
	"github.com/akimenko/resume-pilot/internal/config"
	"github.com/akimenko/resume-pilot/internal/entities"
	"github.com/akimenko/resume-pilot/internal/repositories"
	"github.com/akimenko/resume-pilot/internal/services"
)

type stubCardSource struct {
	cards []linkedin.JobCard
}

func (s *stubCardSource) GetJobCards(_ context.Context, parameters linkedin.SearchParameters) ([]linkedin.JobCard, error) {
	if parameters.Start > 0 {
		return nil, nil
	}
	return s.cards, nil
}

func (s *stubCardSource) GetJobDescription(context.Context, string) (string, error) {
	return "Platform engineering role. Requirements: Kafka, Kubernetes.", nil
}

type testEnv struct {
	server *Server
	dbCtx  *repositories.DbContext
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbCtx, err := repositories.NewDbContext(":memory:")
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())
	t.Cleanup(func() { _ = dbCtx.Close() })

	jobs := repositories.NewJobsRepository(dbCtx.DB)
	variants := repositories.NewVariantsRepository(dbCtx.DB)
	applications := repositories.NewApplicationsRepository(dbCtx.DB)
	activities := repositories.NewActivitiesRepository(dbCtx.DB)
	stats := repositories.NewStatsRepository(dbCtx.DB)

	bus := EventBus.New()
	tasks := services.NewTaskTracker(time.Hour)

	resumesDir := t.TempDir()
	generationCfg := config.GenerationConfig{
		BaseResumePath:     "../resume/testdata/base_resume.tex",
		ResumesDir:         resumesDir,
		OutputDir:          t.TempDir(),
		PdflatexPath:       "pdflatex-not-installed-for-tests",
		TargetBullets:      18,
		MinBulletsPerJob:   2,
		MaxBulletsPerJob:   15,
		MinConfidence:      0.7,
		MaxEnhancedBullets: 5,
	}

	generator := services.NewVariantGenerator(generationCfg, nil, jobs, variants, activities, bus, tasks)
	scraper := services.NewScrapeService(&stubCardSource{cards: []linkedin.JobCard{{
		ExternalID: "101",
		Title:      "Platform Engineer",
		Company:    "Acme",
		Location:   "Berlin, Germany",
		URL:        "https://example.com/jobs/101",
	}}}, jobs, activities, bus, tasks, 90, 2)
	statsService := services.NewStatsService(stats, activities, nil)

	srv := New(
		config.ServerConfig{Port: 8080, Mode: "test"},
		config.AuthConfig{
			Username:      "admin",
			Password:      "secret",
			JWTSecret:     "test-secret",
			TokenTTLHours: 1,
			CookieName:    "dashboard_token",
		},
		Dependencies{
			Jobs:         jobs,
			Variants:     variants,
			Applications: applications,
			Generator:    generator,
			Scraper:      scraper,
			Stats:        statsService,
			Tasks:        tasks,
			ResumesDir:   resumesDir,
		})

	env := &testEnv{server: srv, dbCtx: dbCtx}
	env.token = env.login(t)
	return env
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	response := e.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin", "password": "secret",
	}, "")
	require.Equal(t, http.StatusOK, response.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	require.NotEmpty(t, body["token"])
	return body["token"]
}

func (e *testEnv) request(t *testing.T, method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	e.server.Engine().ServeHTTP(recorder, req)
	return recorder
}

func (e *testEnv) authed(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	return e.request(t, method, path, payload, e.token)
}

func createJobViaAPI(t *testing.T, env *testEnv) int {
	t.Helper()

	response := env.authed(t, http.MethodPost, "/api/jobs", map[string]interface{}{
		"company":         "Initech",
		"job_title":       "Senior Platform Engineer",
		"job_description": "Requirements: 5+ years with Kafka and Kubernetes. Terraform a plus.",
		"location":        "Berlin, Germany",
	})
	require.Equal(t, http.StatusCreated, response.Code)

	var job entities.Job
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &job))
	require.NotZero(t, job.ID)
	return job.ID
}

func Test_Server_HealthIsPublic(t *testing.T) {
	env := newTestEnv(t)

	response := env.request(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, response.Code)
}

func Test_Server_RejectsUnauthenticatedRequests(t *testing.T) {
	env := newTestEnv(t)

	response := env.request(t, http.MethodGet, "/api/jobs", nil, "")
	assert.Equal(t, http.StatusUnauthorized, response.Code)
	assert.Contains(t, response.Body.String(), "authentication required")
}

func Test_Server_LoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	response := env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, response.Code)
}

func Test_Server_LoginSetsCookie(t *testing.T) {
	env := newTestEnv(t)

	response := env.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin", "password": "secret",
	}, "")
	require.Equal(t, http.StatusOK, response.Code)

	cookies := response.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "dashboard_token", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)

	// cookie works as auth on its own
	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.AddCookie(cookies[0])
	recorder := httptest.NewRecorder()
	env.server.Engine().ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func Test_Server_JobsCRUD(t *testing.T) {
	env := newTestEnv(t)
	jobID := createJobViaAPI(t, env)

	list := env.authed(t, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "Initech")

	get := env.authed(t, http.MethodGet, fmt.Sprintf("/api/jobs/%d", jobID), nil)
	require.Equal(t, http.StatusOK, get.Code)

	patch := env.authed(t, http.MethodPatch, fmt.Sprintf("/api/jobs/%d", jobID), map[string]string{
		"status": entities.JobStatusApplied,
		"notes":  "phone screen on Friday",
	})
	require.Equal(t, http.StatusOK, patch.Code)

	var updated entities.Job
	require.NoError(t, json.Unmarshal(patch.Body.Bytes(), &updated))
	assert.Equal(t, entities.JobStatusApplied, updated.Status)
	assert.Equal(t, "phone screen on Friday", updated.Notes)

	// clearing a field to its zero value must persist
	cleared := env.authed(t, http.MethodPatch, fmt.Sprintf("/api/jobs/%d", jobID), map[string]string{
		"notes": "",
	})
	require.Equal(t, http.StatusOK, cleared.Code)

	fetched := env.authed(t, http.MethodGet, fmt.Sprintf("/api/jobs/%d", jobID), nil)
	require.Equal(t, http.StatusOK, fetched.Code)
	assert.NotContains(t, fetched.Body.String(), "phone screen on Friday")

	filtered := env.authed(t, http.MethodGet, "/api/jobs?status=applied", nil)
	require.Equal(t, http.StatusOK, filtered.Code)
	assert.Contains(t, filtered.Body.String(), `"total":1`)

	deleted := env.authed(t, http.MethodDelete, fmt.Sprintf("/api/jobs/%d", jobID), nil)
	require.Equal(t, http.StatusOK, deleted.Code)

	missing := env.authed(t, http.MethodGet, fmt.Sprintf("/api/jobs/%d", jobID), nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func Test_Server_JobValidation(t *testing.T) {
	env := newTestEnv(t)

	response := env.authed(t, http.MethodPost, "/api/jobs", map[string]string{"company": "NoTitle Inc"})
	assert.Equal(t, http.StatusBadRequest, response.Code)

	response = env.authed(t, http.MethodGet, "/api/jobs/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func Test_Server_JobFitReport(t *testing.T) {
	env := newTestEnv(t)
	jobID := createJobViaAPI(t, env)

	response := env.authed(t, http.MethodGet, fmt.Sprintf("/api/jobs/%d/fit", jobID), nil)
	require.Equal(t, http.StatusOK, response.Code)

	var body struct {
		Fit            ats.FitReport `json:"fit"`
		GoodFit        bool          `json:"good_fit"`
		Recommendation string        `json:"recommendation"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	assert.Greater(t, body.Fit.OverallFit, 0.0)
	assert.NotEmpty(t, body.Fit.Level)
	assert.NotEmpty(t, body.Recommendation)
	assert.False(t, body.Fit.EvaluatedAt.IsZero())

	// a job without a description has nothing to assess against
	created := env.authed(t, http.MethodPost, "/api/jobs", map[string]string{
		"company": "Acme", "job_title": "Engineer",
	})
	require.Equal(t, http.StatusCreated, created.Code)
	var bare entities.Job
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &bare))

	missing := env.authed(t, http.MethodGet, fmt.Sprintf("/api/jobs/%d/fit", bare.ID), nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func Test_Server_GenerationFlow(t *testing.T) {
	env := newTestEnv(t)
	jobID := createJobViaAPI(t, env)

	start := env.authed(t, http.MethodPost, "/api/generate/start", map[string]interface{}{
		"job_id": jobID,
	})
	require.Equal(t, http.StatusAccepted, start.Code)

	var task services.Task
	require.NoError(t, json.Unmarshal(start.Body.Bytes(), &task))
	require.NotEmpty(t, task.ID)

	require.Eventually(t, func() bool {
		status := env.authed(t, http.MethodGet, "/api/generate/status/"+task.ID, nil)
		if status.Code != http.StatusOK {
			return false
		}
		var polled services.Task
		if err := json.Unmarshal(status.Body.Bytes(), &polled); err != nil {
			return false
		}
		return polled.Status == services.TaskCompleted
	}, 10*time.Second, 100*time.Millisecond)

	variants := env.authed(t, http.MethodGet, fmt.Sprintf("/api/jobs/%d/variants", jobID), nil)
	require.Equal(t, http.StatusOK, variants.Code)
	assert.Contains(t, variants.Body.String(), "variant_id")
}

func Test_Server_GenerationUnknownJob(t *testing.T) {
	env := newTestEnv(t)

	response := env.authed(t, http.MethodPost, "/api/generate/start", map[string]interface{}{"job_id": 404})
	assert.Equal(t, http.StatusNotFound, response.Code)
}

func Test_Server_GenerationFromUploadedResume(t *testing.T) {
	env := newTestEnv(t)
	jobID := createJobViaAPI(t, env)

	source, err := os.ReadFile("../resume/testdata/base_resume.tex")
	require.NoError(t, err)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "tailored_base.tex")
	require.NoError(t, err)
	_, err = part.Write(source)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/resumes", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	recorder := httptest.NewRecorder()
	env.server.Engine().ServeHTTP(recorder, req)
	require.Equal(t, http.StatusCreated, recorder.Code)

	start := env.authed(t, http.MethodPost, "/api/generate/start", map[string]interface{}{
		"job_id": jobID,
		"resume": "tailored_base.tex",
	})
	require.Equal(t, http.StatusAccepted, start.Code)

	var task services.Task
	require.NoError(t, json.Unmarshal(start.Body.Bytes(), &task))

	require.Eventually(t, func() bool {
		status := env.authed(t, http.MethodGet, "/api/generate/status/"+task.ID, nil)
		if status.Code != http.StatusOK {
			return false
		}
		var polled services.Task
		if err := json.Unmarshal(status.Body.Bytes(), &polled); err != nil {
			return false
		}
		return polled.Status == services.TaskCompleted
	}, 10*time.Second, 100*time.Millisecond)

	variants := env.authed(t, http.MethodGet, fmt.Sprintf("/api/jobs/%d/variants", jobID), nil)
	require.Equal(t, http.StatusOK, variants.Code)
	assert.Contains(t, variants.Body.String(), "tailored_base.tex")

	missing := env.authed(t, http.MethodPost, "/api/generate/start", map[string]interface{}{
		"job_id": jobID,
		"resume": "never_uploaded.tex",
	})
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func Test_Server_ScrapeFlow(t *testing.T) {
	env := newTestEnv(t)

	start := env.authed(t, http.MethodPost, "/api/scraper/start", map[string]string{
		"keywords": "platform engineer",
	})
	require.Equal(t, http.StatusAccepted, start.Code)

	var task services.Task
	require.NoError(t, json.Unmarshal(start.Body.Bytes(), &task))

	require.Eventually(t, func() bool {
		status := env.authed(t, http.MethodGet, "/api/scraper/status/"+task.ID, nil)
		var polled services.Task
		return status.Code == http.StatusOK &&
			json.Unmarshal(status.Body.Bytes(), &polled) == nil &&
			polled.Status == services.TaskCompleted
	}, 5*time.Second, 50*time.Millisecond)

	preview := env.authed(t, http.MethodGet, "/api/scraper/preview/"+task.ID, nil)
	require.Equal(t, http.StatusOK, preview.Code)
	assert.Contains(t, preview.Body.String(), "Platform Engineer")

	imported := env.authed(t, http.MethodPost, "/api/scraper/import/"+task.ID, map[string][]string{})
	require.Equal(t, http.StatusOK, imported.Code)
	assert.Contains(t, imported.Body.String(), `"imported":1`)

	history := env.authed(t, http.MethodGet, "/api/scraper/history", nil)
	require.Equal(t, http.StatusOK, history.Code)
	assert.Contains(t, history.Body.String(), "platform engineer")

	jobs := env.authed(t, http.MethodGet, "/api/jobs?source=linkedin", nil)
	require.Equal(t, http.StatusOK, jobs.Code)
	assert.Contains(t, jobs.Body.String(), "Acme")
}

func Test_Server_ScrapeValidation(t *testing.T) {
	env := newTestEnv(t)

	response := env.authed(t, http.MethodPost, "/api/scraper/start", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, response.Code)

	response = env.authed(t, http.MethodGet, "/api/scraper/preview/unknown", nil)
	assert.Equal(t, http.StatusNotFound, response.Code)
}

func Test_Server_StatsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	createJobViaAPI(t, env)

	overview := env.authed(t, http.MethodGet, "/api/stats/overview", nil)
	require.Equal(t, http.StatusOK, overview.Code)
	assert.Contains(t, overview.Body.String(), "total_jobs")
	assert.Contains(t, overview.Body.String(), "score_buckets")

	activity := env.authed(t, http.MethodGet, "/api/stats/recent-activity", nil)
	assert.Equal(t, http.StatusOK, activity.Code)

	trends := env.authed(t, http.MethodGet, "/api/stats/ats-trends", nil)
	assert.Equal(t, http.StatusOK, trends.Code)

	ai := env.authed(t, http.MethodGet, "/api/stats/ai", nil)
	require.Equal(t, http.StatusOK, ai.Code)
	assert.Contains(t, ai.Body.String(), `"enabled":false`)
}

func Test_Server_VariantNotFound(t *testing.T) {
	env := newTestEnv(t)

	response := env.authed(t, http.MethodGet, "/api/variants/nope", nil)
	assert.Equal(t, http.StatusNotFound, response.Code)

	response = env.authed(t, http.MethodGet, "/api/variants/nope/download", nil)
	assert.Equal(t, http.StatusNotFound, response.Code)
}

func Test_Server_ResumeUpload(t *testing.T) {
	env := newTestEnv(t)

	upload := func(filename string) *httptest.ResponseRecorder {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(`\documentclass{article}`))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/files/resumes", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+env.token)
		recorder := httptest.NewRecorder()
		env.server.Engine().ServeHTTP(recorder, req)
		return recorder
	}

	accepted := upload("base_resume.tex")
	assert.Equal(t, http.StatusCreated, accepted.Code)

	rejected := upload("resume.pdf")
	assert.Equal(t, http.StatusBadRequest, rejected.Code)

	list := env.authed(t, http.MethodGet, "/api/files/resumes", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "base_resume.tex")
}

func Test_Server_ApplicationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	jobID := createJobViaAPI(t, env)

	created := env.authed(t, http.MethodPost, "/api/applications", map[string]interface{}{
		"job_id": jobID,
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var application entities.Application
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &application))
	assert.Equal(t, entities.ApplicationStatusDraft, application.Status)

	patched := env.authed(t, http.MethodPatch, fmt.Sprintf("/api/applications/%d", application.ID), map[string]string{
		"status": entities.ApplicationStatusApplied,
	})
	require.Equal(t, http.StatusOK, patched.Code)

	var updated entities.Application
	require.NoError(t, json.Unmarshal(patched.Body.Bytes(), &updated))
	assert.Equal(t, entities.ApplicationStatusApplied, updated.Status)
	assert.NotNil(t, updated.AppliedAt)

	// job status follows the application
	job := env.authed(t, http.MethodGet, fmt.Sprintf("/api/jobs/%d", jobID), nil)
	require.Equal(t, http.StatusOK, job.Code)
	assert.Contains(t, job.Body.String(), `"status":"applied"`)

	active := env.authed(t, http.MethodGet, "/api/applications", nil)
	require.Equal(t, http.StatusOK, active.Code)
	assert.Contains(t, active.Body.String(), "Initech")

	badStatus := env.authed(t, http.MethodPatch, fmt.Sprintf("/api/applications/%d", application.ID), map[string]string{
		"status": "hired-on-the-spot",
	})
	assert.Equal(t, http.StatusBadRequest, badStatus.Code)
}

func Test_Server_ApplicationUnknownJob(t *testing.T) {
	env := newTestEnv(t)

	response := env.authed(t, http.MethodPost, "/api/applications", map[string]interface{}{"job_id": 404})
	assert.Equal(t, http.StatusNotFound, response.Code)
}

func Test_Server_Export(t *testing.T) {
	env := newTestEnv(t)
	createJobViaAPI(t, env)

	response := env.authed(t, http.MethodGet, "/api/files/export", nil)
	require.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, response.Body.String(), "Initech")
}
