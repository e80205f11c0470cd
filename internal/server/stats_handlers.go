package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) statsOverview(c *gin.Context) {

	overview, err := s.stats.Overview(c.Request.Context())
	if err != nil {
		s.dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Server) recentActivity(c *gin.Context) {

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	activities, err := s.stats.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		s.dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

func (s *Server) atsTrends(c *gin.Context) {

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	points, err := s.stats.ScoreTrends(c.Request.Context(), limit)
	if err != nil {
		s.dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (s *Server) aiStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.stats.AI(c.Request.Context()))
}
