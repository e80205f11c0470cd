package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type resumeFile struct {
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

func (s *Server) listResumes(c *gin.Context) {

	entries, err := os.ReadDir(s.resumesDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, gin.H{"resumes": []resumeFile{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read resumes directory"})
		return
	}

	resumes := []resumeFile{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tex") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		resumes = append(resumes, resumeFile{
			Name:       entry.Name(),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"resumes": resumes})
}

func (s *Server) uploadResume(c *gin.Context) {

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if !strings.HasSuffix(file.Filename, ".tex") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .tex files are accepted"})
		return
	}

	name := filepath.Base(file.Filename)
	if err := os.MkdirAll(s.resumesDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create resumes directory"})
		return
	}
	if err := c.SaveUploadedFile(file, filepath.Join(s.resumesDir, name)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": name})
}

func (s *Server) exportData(c *gin.Context) {

	jobs, err := s.jobs.GetAllWithRelations(c.Request.Context())
	if err != nil {
		s.dbError(c, err)
		return
	}

	filename := fmt.Sprintf("export_%v.json", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.JSON(http.StatusOK, gin.H{
		"exported_at": time.Now(),
		"jobs":        jobs,
	})
}
