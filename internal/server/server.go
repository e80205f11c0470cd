package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/akimenko/resume-pilot/internal/config"
	"github.com/akimenko/resume-pilot/internal/repositories"
	"github.com/akimenko/resume-pilot/internal/services"
)

type Server struct {
	config config.ServerConfig
	auth   *authenticator

	jobs         *repositories.Jobs
	variants     *repositories.Variants
	applications *repositories.Applications

	generator *services.VariantGenerator
	scraper   *services.ScrapeService
	stats     *services.StatsService
	tasks     *services.TaskTracker

	resumesDir string
	engine     *gin.Engine
}

type Dependencies struct {
	Jobs         *repositories.Jobs
	Variants     *repositories.Variants
	Applications *repositories.Applications
	Generator    *services.VariantGenerator
	Scraper      *services.ScrapeService
	Stats        *services.StatsService
	Tasks        *services.TaskTracker
	ResumesDir   string
}

func New(serverCfg config.ServerConfig, authCfg config.AuthConfig, deps Dependencies) *Server {

	gin.SetMode(ginMode(serverCfg.Mode))

	s := &Server{
		config:       serverCfg,
		auth:         newAuthenticator(authCfg),
		jobs:         deps.Jobs,
		variants:     deps.Variants,
		applications: deps.Applications,
		generator:    deps.Generator,
		scraper:      deps.Scraper,
		stats:        deps.Stats,
		tasks:        deps.Tasks,
		resumesDir:   deps.ResumesDir,
	}
	s.engine = s.buildRouter()
	return s
}

func ginMode(mode string) string {
	switch mode {
	case "debug", "test":
		return mode
	default:
		return gin.ReleaseMode
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) buildRouter() *gin.Engine {

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(s.config.CorsOrigins) > 0 {
		corsConfig.AllowOrigins = s.config.CorsOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	corsConfig.AddAllowHeaders("Authorization")
	engine.Use(cors.New(corsConfig))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	api.POST("/auth/login", s.login)
	api.POST("/auth/logout", s.logout)

	authorized := api.Group("", s.authRequired())

	jobs := authorized.Group("/jobs")
	jobs.GET("", s.listJobs)
	jobs.POST("", s.createJob)
	jobs.GET("/:id", s.getJob)
	jobs.PATCH("/:id", s.updateJob)
	jobs.DELETE("/:id", s.deleteJob)
	jobs.GET("/:id/variants", s.listJobVariants)
	jobs.GET("/:id/fit", s.jobFit)

	applications := authorized.Group("/applications")
	applications.GET("", s.listApplications)
	applications.POST("", s.createApplication)
	applications.PATCH("/:id", s.updateApplication)

	variants := authorized.Group("/variants")
	variants.GET("", s.listVariants)
	variants.GET("/:id", s.getVariant)
	variants.DELETE("/:id", s.deleteVariant)
	variants.GET("/:id/download", s.downloadVariantPDF)
	variants.GET("/:id/download-tex", s.downloadVariantTex)

	generate := authorized.Group("/generate")
	generate.POST("/start", s.startGeneration)
	generate.GET("/status/:task_id", s.taskStatus)

	scraper := authorized.Group("/scraper")
	scraper.POST("/start", s.startScrape)
	scraper.GET("/status/:task_id", s.taskStatus)
	scraper.GET("/history", s.scrapeHistory)
	scraper.GET("/preview/:task_id", s.scrapePreview)
	scraper.POST("/import/:task_id", s.importScraped)

	stats := authorized.Group("/stats")
	stats.GET("/overview", s.statsOverview)
	stats.GET("/recent-activity", s.recentActivity)
	stats.GET("/ats-trends", s.atsTrends)
	stats.GET("/ai", s.aiStatus)

	files := authorized.Group("/files")
	files.GET("/resumes", s.listResumes)
	files.POST("/resumes", s.uploadResume)
	files.GET("/export", s.exportData)

	return engine
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("dashboard API listening on %v", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugf("%v %v %v %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
