package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"

	"github.com/akimenko/resume-pilot/internal/clients/gemini"
	"github.com/akimenko/resume-pilot/internal/clients/linkedin"
	"github.com/akimenko/resume-pilot/internal/clients/ollama"
	"github.com/akimenko/resume-pilot/internal/config"
	"github.com/akimenko/resume-pilot/internal/logger"
	"github.com/akimenko/resume-pilot/internal/metrics"
	"github.com/akimenko/resume-pilot/internal/repositories"
	"github.com/akimenko/resume-pilot/internal/server"
	"github.com/akimenko/resume-pilot/internal/services"
)

func newAIService(ctx context.Context, cfg config.AIConfig) *services.AIService {

	if !cfg.Enabled {
		return nil
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.GeminiKey, gemini.Model15Flash)
		if err != nil {
			log.Fatalf("can't create gemini client: %v", err)
		}
		client.SetTemperature(float32(cfg.Temperature))
		client.SetMaxOutputTokens(int32(cfg.MaxTokens))
		client.SetMinuteRateLimit(cfg.MaxRequestsPerMinute)
		client.SetDayRateLimit(cfg.MaxRequestsPerDay)
		return services.NewAIService(client, string(cfg.Provider))

	default:
		client := ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel, ollama.Options{
			Temperature: cfg.Temperature,
			NumPredict:  cfg.MaxTokens,
		})
		client.SetMinuteRateLimit(cfg.MaxRequestsPerMinute)
		client.SetDayRateLimit(cfg.MaxRequestsPerDay)
		return services.NewAIService(client, string(cfg.Provider))
	}
}

func knownVariantsLoader(variants *repositories.Variants) func(ctx context.Context) (map[string]bool, error) {
	return func(ctx context.Context) (map[string]bool, error) {
		known := map[string]bool{}
		offset := 0
		for {
			batch, err := variants.Get(ctx, 500, offset)
			if err != nil {
				return nil, err
			}
			if len(batch) == 0 {
				return known, nil
			}
			for _, variant := range batch {
				known[variant.ID] = true
			}
			offset += len(batch)
		}
	}
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Server.MetricsAddr)

	dbContext, err := repositories.NewDbContext(cfg.DB.Path)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	if err := dbContext.Migrate(); err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	jobs := repositories.NewJobsRepository(dbContext.DB)
	variants := repositories.NewVariantsRepository(dbContext.DB)
	applications := repositories.NewApplicationsRepository(dbContext.DB)
	activities := repositories.NewActivitiesRepository(dbContext.DB)
	stats := repositories.NewStatsRepository(dbContext.DB)

	bus := EventBus.New()
	tasks := services.NewTaskTracker(time.Duration(cfg.Generation.TaskTTLMinutes) * time.Minute)

	aiService := newAIService(ctx, cfg.AI)
	generator := services.NewVariantGenerator(cfg.Generation, aiService, jobs, variants, activities, bus, tasks)

	linkedinClient := linkedin.NewClient(cfg.Scraper.UserAgent)
	linkedinClient.SetRateLimit(cfg.Scraper.MaxRequestsPerSecond)
	scrapeService := services.NewScrapeService(linkedinClient, jobs, activities, bus, tasks,
		int(cfg.Scraper.FuzzyThreshold), cfg.Scraper.MaxPages)

	statsService := services.NewStatsService(stats, activities, aiService)

	if _, err := services.NewNotifier(cfg.Notify, bus); err != nil {
		log.Fatalf("can't create notifier: %v", err)
	}

	janitor, err := services.NewJanitor(jobs, activities, knownVariantsLoader(variants),
		cfg.Generation.OutputDir, cfg.Generation.RetentionDays)
	if err != nil {
		log.Fatalf("can't create janitor: %v", err)
	}
	defer janitor.Stop()

	srv := server.New(cfg.Server, cfg.Auth, server.Dependencies{
		Jobs:         jobs,
		Variants:     variants,
		Applications: applications,
		Generator:    generator,
		Scraper:      scrapeService,
		Stats:        statsService,
		Tasks:        tasks,
		ResumesDir:   cfg.Generation.ResumesDir,
	})

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Info("Services stopped.")
}
