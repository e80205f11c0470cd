package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akimenko/resume-pilot/internal/services"
)

type importRequest struct {
	TempIDs []string `json:"temp_ids"`
}

func (s *Server) startScrape(c *gin.Context) {

	var request services.ScrapeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.scraper.StartScrape(c.Request.Context(), request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, task)
}

func (s *Server) scrapeHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"runs": s.scraper.History()})
}

func (s *Server) scrapePreview(c *gin.Context) {

	jobs, found := s.scraper.Preview(c.Param("task_id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "preview not found or expired"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (s *Server) importScraped(c *gin.Context) {

	var request importRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := s.scraper.Import(c.Request.Context(), c.Param("task_id"), request.TempIDs)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
