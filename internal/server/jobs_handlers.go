package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/akimenko/resume-pilot/internal/entities"
	"github.com/akimenko/resume-pilot/internal/logger"
	"github.com/akimenko/resume-pilot/internal/repositories"
)

type createJobRequest struct {
	Company      string     `json:"company" binding:"required"`
	Title        string     `json:"job_title" binding:"required"`
	Description  string     `json:"job_description"`
	URL          string     `json:"job_url"`
	Location     string     `json:"location"`
	SalaryRange  string     `json:"salary_range"`
	PostedDate   *time.Time `json:"posted_date"`
	DeadlineDate *time.Time `json:"deadline_date"`
	Source       string     `json:"source"`
	Notes        string     `json:"notes"`
}

type updateJobRequest struct {
	Status       *string    `json:"status"`
	Notes        *string    `json:"notes"`
	Description  *string    `json:"job_description"`
	Location     *string    `json:"location"`
	SalaryRange  *string    `json:"salary_range"`
	DeadlineDate *time.Time `json:"deadline_date"`
}

func (s *Server) listJobs(c *gin.Context) {

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := repositories.JobFilter{
		Status:  c.Query("status"),
		Company: c.Query("company"),
		Source:  c.Query("source"),
		Search:  c.Query("search"),
		Limit:   limit,
		Offset:  offset,
	}

	jobs, total, err := s.jobs.Get(c.Request.Context(), filter)
	if err != nil {
		s.dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": total})
}

func (s *Server) createJob(c *gin.Context) {

	var request createJobRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source := request.Source
	if source == "" {
		source = "manual"
	}

	job := &entities.Job{
		Company:      request.Company,
		Title:        request.Title,
		Description:  request.Description,
		URL:          request.URL,
		Location:     request.Location,
		SalaryRange:  request.SalaryRange,
		PostedDate:   request.PostedDate,
		DeadlineDate: request.DeadlineDate,
		Source:       source,
		Status:       entities.JobStatusNew,
		Notes:        request.Notes,
	}

	if err := s.jobs.Add(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "job already exists or could not be saved"})
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (s *Server) getJob(c *gin.Context) {

	id, ok := s.jobIDParam(c)
	if !ok {
		return
	}

	job, err := s.jobs.GetByID(c.Request.Context(), id)
	if err != nil {
		s.dbError(c, err)
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) updateJob(c *gin.Context) {

	id, ok := s.jobIDParam(c)
	if !ok {
		return
	}

	var request updateJobRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := s.jobs.GetByID(c.Request.Context(), id)
	if err != nil {
		s.dbError(c, err)
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	fields := map[string]any{}
	if request.Status != nil {
		job.Status = *request.Status
		fields["status"] = *request.Status
	}
	if request.Notes != nil {
		job.Notes = *request.Notes
		fields["notes"] = *request.Notes
	}
	if request.Description != nil {
		job.Description = *request.Description
		fields["job_description"] = *request.Description
	}
	if request.Location != nil {
		job.Location = *request.Location
		fields["location"] = *request.Location
	}
	if request.SalaryRange != nil {
		job.SalaryRange = *request.SalaryRange
		fields["salary_range"] = *request.SalaryRange
	}
	if request.DeadlineDate != nil {
		job.DeadlineDate = request.DeadlineDate
		fields["deadline_date"] = request.DeadlineDate
	}

	if err := s.jobs.Update(c.Request.Context(), job.ID, fields); err != nil {
		s.dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) deleteJob(c *gin.Context) {

	id, ok := s.jobIDParam(c)
	if !ok {
		return
	}

	job, err := s.jobs.GetByID(c.Request.Context(), id)
	if err != nil {
		s.dbError(c, err)
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	if err := s.jobs.Remove(c.Request.Context(), id); err != nil {
		s.dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) jobFit(c *gin.Context) {

	id, ok := s.jobIDParam(c)
	if !ok {
		return
	}

	report, err := s.generator.AssessJobFit(c.Request.Context(), id, c.Query("resume"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"fit":            report,
		"good_fit":       report.GoodFit(),
		"recommendation": report.Recommendation(),
	})
}

func (s *Server) listJobVariants(c *gin.Context) {

	id, ok := s.jobIDParam(c)
	if !ok {
		return
	}

	variants, err := s.variants.GetByJob(c.Request.Context(), id)
	if err != nil {
		s.dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variants": variants})
}

func (s *Server) jobIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return 0, false
	}
	return id, true
}

func (s *Server) dbError(c *gin.Context, err error) {
	log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
