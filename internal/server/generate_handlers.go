package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akimenko/resume-pilot/internal/services"
)

func (s *Server) startGeneration(c *gin.Context) {

	var options services.GenerateOptions
	if err := c.ShouldBindJSON(&options); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.generator.StartGeneration(c.Request.Context(), options)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, task)
}

// taskStatus serves both generation and scrape polling.
func (s *Server) taskStatus(c *gin.Context) {

	task, found := s.tasks.Get(c.Param("task_id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found or expired"})
		return
	}
	c.JSON(http.StatusOK, task)
}
