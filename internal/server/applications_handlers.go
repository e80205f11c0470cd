package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/akimenko/resume-pilot/internal/entities"
	"github.com/akimenko/resume-pilot/internal/logger"
)

type createApplicationRequest struct {
	JobID      int        `json:"job_id" binding:"required"`
	VariantID  string     `json:"variant_id"`
	Status     string     `json:"status"`
	FollowUpAt *time.Time `json:"follow_up_at"`
	Notes      string     `json:"notes"`
}

type updateApplicationRequest struct {
	Status     *string    `json:"status"`
	FollowUpAt *time.Time `json:"follow_up_at"`
	Notes      *string    `json:"notes"`
}

func (s *Server) listApplications(c *gin.Context) {

	if c.Query("due") != "" {
		rows, err := s.applications.GetDueFollowUps(c.Request.Context(), time.Now())
		if err != nil {
			s.dbError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"applications": rows})
		return
	}

	rows, err := s.applications.GetActive(c.Request.Context())
	if err != nil {
		s.dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": rows})
}

func (s *Server) createApplication(c *gin.Context) {

	var request createApplicationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := s.jobs.GetByID(c.Request.Context(), request.JobID)
	if err != nil {
		s.dbError(c, err)
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	status := request.Status
	if status == "" {
		status = entities.ApplicationStatusDraft
	}
	if !entities.IsValidApplicationStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown application status"})
		return
	}

	application := &entities.Application{
		JobID:      request.JobID,
		VariantID:  request.VariantID,
		Status:     status,
		FollowUpAt: request.FollowUpAt,
		Notes:      request.Notes,
	}
	if err := s.applications.Add(c.Request.Context(), application); err != nil {
		s.dbError(c, err)
		return
	}

	if status == entities.ApplicationStatusApplied {
		if err := s.applications.UpdateStatus(c.Request.Context(), application.ID, status); err != nil {
			s.dbError(c, err)
			return
		}
		if err := s.jobs.UpdateStatus(c.Request.Context(), request.JobID, entities.JobStatusApplied); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to update job %v status: %v", request.JobID, err)
		}
	}
	c.JSON(http.StatusCreated, application)
}

func (s *Server) updateApplication(c *gin.Context) {

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	var request updateApplicationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	application, err := s.applications.GetByID(c.Request.Context(), id)
	if err != nil {
		s.dbError(c, err)
		return
	}
	if application == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return
	}

	if request.Status != nil {
		if !entities.IsValidApplicationStatus(*request.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown application status"})
			return
		}
		if err := s.applications.UpdateStatus(c.Request.Context(), id, *request.Status); err != nil {
			s.dbError(c, err)
			return
		}
		if *request.Status == entities.ApplicationStatusApplied {
			if err := s.jobs.UpdateStatus(c.Request.Context(), application.JobID, entities.JobStatusApplied); err != nil {
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
					Errorf("failed to update job %v status: %v", application.JobID, err)
			}
		}
	}

	if request.FollowUpAt != nil || request.Notes != nil {
		if request.FollowUpAt != nil {
			application.FollowUpAt = request.FollowUpAt
		}
		if request.Notes != nil {
			application.Notes = *request.Notes
		}
		if err := s.applications.Update(c.Request.Context(), application); err != nil {
			s.dbError(c, err)
			return
		}
	}

	updated, err := s.applications.GetByID(c.Request.Context(), id)
	if err != nil {
		s.dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
