package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/akimenko/resume-pilot/internal/entities"
)

func (s *Server) listVariants(c *gin.Context) {

	if jobParam := c.Query("job_id"); jobParam != "" {
		jobID, err := strconv.Atoi(jobParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
			return
		}
		variants, err := s.variants.GetByJob(c.Request.Context(), jobID)
		if err != nil {
			s.dbError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"variants": variants})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	variants, err := s.variants.Get(c.Request.Context(), limit, offset)
	if err != nil {
		s.dbError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variants": variants})
}

func (s *Server) getVariant(c *gin.Context) {
	variant, ok := s.variantByID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, variant)
}

func (s *Server) deleteVariant(c *gin.Context) {

	variant, ok := s.variantByID(c)
	if !ok {
		return
	}

	if err := s.variants.Remove(c.Request.Context(), variant.ID); err != nil {
		s.dbError(c, err)
		return
	}

	// variant files live in their own directory named after the id
	if variant.LatexPath != "" {
		_ = os.RemoveAll(filepath.Dir(variant.LatexPath))
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) downloadVariantPDF(c *gin.Context) {

	variant, ok := s.variantByID(c)
	if !ok {
		return
	}
	if variant.PDFPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "variant has no compiled PDF"})
		return
	}
	s.serveFile(c, variant.PDFPath, "application/pdf")
}

func (s *Server) downloadVariantTex(c *gin.Context) {

	variant, ok := s.variantByID(c)
	if !ok {
		return
	}
	if variant.LatexPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "variant has no source file"})
		return
	}
	s.serveFile(c, variant.LatexPath, "application/x-tex")
}

func (s *Server) variantByID(c *gin.Context) (*entities.Variant, bool) {

	variant, err := s.variants.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.dbError(c, err)
		return nil, false
	}
	if variant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "variant not found"})
		return nil, false
	}
	return variant, true
}

func (s *Server) serveFile(c *gin.Context, path string, contentType string) {
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found on disk"})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(path))
	c.Header("Content-Type", contentType)
	c.File(path)
}
