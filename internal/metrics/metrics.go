package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	ScrapeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_scrape_duration_seconds",
			Help:    "Duration of each scrape run in seconds.",
			Buckets: []float64{5, 15, 30, 60, 180, 600},
		},
	)
	GenerationStepDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "dashboard_variant_generation_step_duration_seconds",
			Help:       "Duration of each step in the variant generation pipeline.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step"},
	)
	ScrapedJobsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_jobs_scraped_total",
			Help: "Total number of jobs fetched by the scraper.",
		},
	)
	DuplicateJobsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_jobs_duplicates_total",
			Help: "Total number of scraped jobs dropped as duplicates.",
		},
	)
	GeneratedVariantsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_variants_generated_total",
			Help: "Total number of resume variants generated.",
		},
	)
	EnhancedBulletsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_bullets_ai_enhanced_total",
			Help: "Total number of bullets rewritten by AI.",
		},
	)
)

func StartMetricsServer(addr string) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(ScrapeDuration)
	prometheus.MustRegister(GenerationStepDuration)
	prometheus.MustRegister(ScrapedJobsCounter)
	prometheus.MustRegister(DuplicateJobsCounter)
	prometheus.MustRegister(GeneratedVariantsCounter)
	prometheus.MustRegister(EnhancedBulletsCounter)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(addr, nil))
	}()
}
