package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akimenko/resume-pilot/internal/ats"
	"github.com/akimenko/resume-pilot/internal/config"
	"github.com/akimenko/resume-pilot/internal/entities"
	"github.com/akimenko/resume-pilot/internal/events"
	"github.com/akimenko/resume-pilot/internal/logger"
	"github.com/akimenko/resume-pilot/internal/metrics"
	"github.com/akimenko/resume-pilot/internal/resume"
	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type jobsRepository interface {
	GetByID(ctx context.Context, id int) (*entities.Job, error)
}

type variantsRepository interface {
	Add(ctx context.Context, variant *entities.Variant) error
	AddScore(ctx context.Context, score *entities.ATSScore) error
}

type activityRecorder interface {
	Add(ctx context.Context, activity *entities.Activity) error
}

type GenerateOptions struct {
	JobID int `json:"job_id" binding:"required"`
	// Resume selects an uploaded base resume by file name. Empty means
	// the configured default.
	Resume    string `json:"resume"`
	UseAI     bool   `json:"use_ai"`
	ScoreOnly bool   `json:"score_only"`
}

type GenerateResult struct {
	VariantID string     `json:"variant_id"`
	LatexPath string     `json:"latex_path"`
	PDFPath   string     `json:"pdf_path,omitempty"`
	Score     ats.Score  `json:"score"`
	Grade     string     `json:"grade"`
	Enhanced  int        `json:"bullets_enhanced"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// VariantGenerator runs the tailoring pipeline: parse the base resume,
// pick bullets for the job, optionally rewrite them through the AI
// provider, render and compile LaTeX, then score the result.
type VariantGenerator struct {
	config    config.GenerationConfig
	parser    *resume.Parser
	compiler  *resume.PDFCompiler
	extractor *ats.KeywordExtractor
	scorer    *ats.Scorer
	fit       *ats.FitScorer
	selector  *BulletSelector
	enhancer  *BulletEnhancer
	ai        *AIService

	jobs       jobsRepository
	variants   variantsRepository
	activities activityRecorder
	bus        EventBus.Bus
	tasks      *TaskTracker
}

func NewVariantGenerator(cfg config.GenerationConfig, ai *AIService, jobs jobsRepository,
	variants variantsRepository, activities activityRecorder, bus EventBus.Bus, tasks *TaskTracker) *VariantGenerator {

	return &VariantGenerator{
		config:   cfg,
		parser:   resume.NewParser(),
		compiler: resume.NewPDFCompiler(cfg.PdflatexPath),
		extractor: ats.NewKeywordExtractor(),
		scorer:    ats.NewScorer(),
		fit:       ats.NewFitScorer(),
		selector: NewBulletSelector(SelectorConfig{
			TargetBullets:    cfg.TargetBullets,
			MinPerExperience: cfg.MinBulletsPerJob,
			MaxPerExperience: cfg.MaxBulletsPerJob,
		}),
		enhancer: NewBulletEnhancer(ai, EnhancerConfig{
			MinConfidence: cfg.MinConfidence,
			MaxEnhanced:   cfg.MaxEnhancedBullets,
		}),
		ai:         ai,
		jobs:       jobs,
		variants:   variants,
		activities: activities,
		bus:        bus,
		tasks:      tasks,
	}
}

// StartGeneration launches the pipeline in the background and returns a
// task the caller can poll.
func (g *VariantGenerator) StartGeneration(ctx context.Context, options GenerateOptions) (*Task, error) {

	job, err := g.jobs.GetByID(ctx, options.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, errors.Errorf("job %v not found", options.JobID)
	}
	if _, err := g.resolveBaseResume(options.Resume); err != nil {
		return nil, err
	}

	task := g.tasks.Start("generation", fmt.Sprintf("generating variant for %v at %v", job.Title, job.Company))

	go func() {
		result, err := g.Generate(context.Background(), job, options, func(progress int, message string) {
			g.tasks.Update(task.ID, progress, message)
		})
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeLatex).
				Errorf("generation for job %v failed: %v", job.ID, err)
			g.tasks.Fail(task.ID, err)
			return
		}
		g.tasks.Complete(task.ID, result)
	}()

	return task, nil
}

// AssessJobFit evaluates a base resume against a stored job without
// generating a variant.
func (g *VariantGenerator) AssessJobFit(ctx context.Context, jobID int, resumeName string) (*ats.FitReport, error) {

	job, err := g.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, errors.Errorf("job %v not found", jobID)
	}
	if strings.TrimSpace(job.Description) == "" {
		return nil, errors.Errorf("job %v has no description to assess against", jobID)
	}

	basePath, err := g.resolveBaseResume(resumeName)
	if err != nil {
		return nil, err
	}
	parsed, err := g.parser.ParseFile(basePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse base resume")
	}

	report := g.fit.AssessFit(parsed, job.Description, ats.JobMetadata{
		Title:    job.Title,
		Company:  job.Company,
		Location: job.Location,
	})
	return &report, nil
}

func (g *VariantGenerator) Generate(ctx context.Context, job *entities.Job, options GenerateOptions,
	progress func(progress int, message string)) (*GenerateResult, error) {

	report := func(percent int, message string) {
		log.Debugf("job %v generation: %v%% %v", job.ID, percent, message)
		if progress != nil {
			progress(percent, message)
		}
	}

	basePath, err := g.resolveBaseResume(options.Resume)
	if err != nil {
		return nil, err
	}

	parsed, err := timedStep("parse", func() (*resume.ParsedResume, error) {
		return g.parser.ParseFile(basePath)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse base resume")
	}
	report(20, "parsed base resume")

	keywords := g.extractor.ExtractKeywords(job.Description)
	if len(keywords) > 30 {
		keywords = keywords[:30]
	}

	selected := g.selector.Select(parsed, keywords)
	if len(selected) == 0 {
		return nil, errors.New("no bullet points selected from base resume")
	}
	report(35, fmt.Sprintf("selected %v bullets", len(selected)))

	var warnings []string
	enhanced := map[string]EnhancedBullet{}
	if options.UseAI && g.aiReady(ctx) {
		enhanced, err = timedStep("enhance", func() (map[string]EnhancedBullet, error) {
			return g.enhancer.EnhanceBullets(ctx, selected, job.Title, keywords), nil
		})
		if err == nil && len(enhanced) == 0 {
			warnings = append(warnings, "AI enhancement produced no usable rewrites")
		}
	} else if options.UseAI {
		warnings = append(warnings, "AI provider unavailable, bullets kept as written")
	}
	report(55, fmt.Sprintf("enhanced %v bullets", len(enhanced)))

	summary := g.buildSummary(ctx, parsed, job, keywords, options.UseAI)

	variantID := uuid.NewString()
	bullets, keywordsAdded := renderBullets(selected, enhanced)

	latexPath, err := timedStep("render", func() (string, error) {
		outputDir := filepath.Join(g.config.OutputDir, variantID)
		return resume.NewTemplateEngine(basePath).
			GenerateLatex(outputDir, "resume.tex", summary, bullets, keywordTexts(keywords))
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render variant")
	}
	report(70, "rendered LaTeX")

	pdfPath := ""
	if !options.ScoreOnly {
		pdfPath, err = timedStep("compile", func() (string, error) {
			return g.compiler.Compile(ctx, latexPath)
		})
		if err != nil {
			if !errors.Is(err, resume.ErrCompilerUnavailable) {
				return nil, errors.Wrap(err, "failed to compile variant")
			}
			warnings = append(warnings, "pdflatex not installed, PDF skipped")
			pdfPath = ""
		}
	}
	report(85, "compiled PDF")

	score, err := timedStep("score", func() (ats.Score, error) {
		generated, parseErr := g.parser.ParseFile(latexPath)
		if parseErr != nil {
			return ats.Score{}, parseErr
		}
		return g.scorer.ScoreResume(generated, job.Description, ats.JobMetadata{
			Title:    job.Title,
			Company:  job.Company,
			Location: job.Location,
		}), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to score variant")
	}

	metadataPath := g.writeMetadata(filepath.Dir(latexPath), job, selected, enhanced, keywords)

	if err := g.persist(ctx, variantID, job, basePath, latexPath, pdfPath, metadataPath, options, len(selected), enhanced, keywordsAdded, score); err != nil {
		return nil, err
	}
	report(100, "variant ready")

	metrics.GeneratedVariantsCounter.Inc()
	g.bus.Publish(events.VariantGeneratedTopic, events.VariantGenerated{
		VariantID: variantID,
		JobTitle:  job.Title,
		Company:   job.Company,
		Score:     score.OverallScore,
		Grade:     score.Grade(),
	})

	return &GenerateResult{
		VariantID: variantID,
		LatexPath: latexPath,
		PDFPath:   pdfPath,
		Score:     score,
		Grade:     score.Grade(),
		Enhanced:  len(enhanced),
		Warnings:  warnings,
	}, nil
}

// resolveBaseResume maps an uploaded resume name to its path under the
// resumes directory. Names with path separators are rejected.
func (g *VariantGenerator) resolveBaseResume(name string) (string, error) {
	if name == "" {
		return g.config.BaseResumePath, nil
	}
	if filepath.Base(name) != name || !strings.EqualFold(filepath.Ext(name), ".tex") {
		return "", errors.Errorf("invalid resume name %q", name)
	}

	path := filepath.Join(g.config.ResumesDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", errors.Errorf("resume %v not found", name)
	}
	return path, nil
}

func (g *VariantGenerator) aiReady(ctx context.Context) bool {
	return g.ai != nil && g.ai.IsAvailable(ctx)
}

// buildSummary prefers an AI-written summary and degrades to keyword
// injection, then to a generic line, when the provider cannot help.
func (g *VariantGenerator) buildSummary(ctx context.Context, parsed *resume.ParsedResume,
	job *entities.Job, keywords []ats.Keyword, useAI bool) string {

	if useAI && g.aiReady(ctx) {
		summary, err := g.ai.GenerateSummary(ctx, parsed, job.Title, keywords)
		if err == nil && summary != "" {
			return summary
		}
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
				Warnf("summary generation failed: %v", err)
		}
	}

	if parsed.Summary != "" && len(keywords) > 0 {
		injected := joinKeywordTexts(keywords, 3)
		return strings.TrimRight(parsed.Summary, ". ") + ". Specialized in " + injected + "."
	}
	if parsed.Summary != "" {
		return parsed.Summary
	}

	skills := append([]string{}, parsed.Skills.Technical...)
	if len(skills) > 5 {
		skills = skills[:5]
	}
	if len(skills) == 0 {
		return ""
	}
	return "Experienced professional with expertise in " + strings.Join(skills, ", ") + "."
}

type variantMetadata struct {
	JobID           int                       `json:"job_id"`
	JobTitle        string                    `json:"job_title"`
	Company         string                    `json:"company"`
	GeneratedAt     time.Time                 `json:"generated_at"`
	SelectedBullets []SelectedBullet          `json:"selected_bullets"`
	EnhancedBullets map[string]EnhancedBullet `json:"enhanced_bullets,omitempty"`
	Keywords        []string                  `json:"keywords"`
}

// writeMetadata records how the variant was assembled next to its .tex
// file. Failures are logged, not fatal.
func (g *VariantGenerator) writeMetadata(dir string, job *entities.Job, selected []SelectedBullet,
	enhanced map[string]EnhancedBullet, keywords []ats.Keyword) string {

	meta := variantMetadata{
		JobID:           job.ID,
		JobTitle:        job.Title,
		Company:         job.Company,
		GeneratedAt:     time.Now(),
		SelectedBullets: selected,
		EnhancedBullets: enhanced,
		Keywords:        keywordTexts(keywords),
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err == nil {
		path := filepath.Join(dir, "metadata.json")
		if err = os.WriteFile(path, data, 0o644); err == nil {
			return path
		}
	}

	log.Warnf("failed to write variant metadata: %v", err)
	return ""
}

func (g *VariantGenerator) persist(ctx context.Context, variantID string, job *entities.Job,
	basePath string, latexPath string, pdfPath string, metadataPath string, options GenerateOptions, totalBullets int,
	enhanced map[string]EnhancedBullet, keywordsAdded []string, score ats.Score) error {

	variant := &entities.Variant{
		ID:              variantID,
		JobID:           job.ID,
		BaseResumePath:  basePath,
		LatexPath:       latexPath,
		PDFPath:         pdfPath,
		MetadataPath:    metadataPath,
		TargetBullets:   g.config.TargetBullets,
		AIEnhanced:      options.UseAI,
		BulletsEnhanced: len(enhanced),
		TotalBullets:    totalBullets,
		KeywordsAdded:   keywordsAdded,
	}
	if err := g.variants.Add(ctx, variant); err != nil {
		return errors.Wrap(err, "failed to save variant")
	}

	record := &entities.ATSScore{
		VariantID:       variantID,
		OverallScore:    score.OverallScore,
		Grade:           score.Grade(),
		Passed:          score.Passed(),
		KeywordScore:    score.KeywordScore,
		ExperienceScore: score.ExperienceScore,
		SkillsScore:     score.SkillsScore,
		EducationScore:  score.EducationScore,
		FormatScore:     score.FormatScore,
		MatchedKeywords: matchedKeywordTexts(score.MatchedKeywords),
		MissingKeywords: keywordTexts(score.MissingKeywords),
		MissingCritical: score.CriticalGaps,
		Recommendations: score.Improvements,
		KeywordsMatched: score.MatchedCount,
		KeywordsTotal:   score.TotalKeywords,
		RequiredFound:   score.RequiredFound,
		RequiredTotal:   score.RequiredTotal,
		OptionalFound:   score.OptionalFound,
	}
	if err := g.variants.AddScore(ctx, record); err != nil {
		return errors.Wrap(err, "failed to save score")
	}

	jobID := job.ID
	activity := &entities.Activity{
		Kind:      entities.ActivityVariantGenerated,
		JobID:     &jobID,
		VariantID: variantID,
		Message: fmt.Sprintf("Generated variant for %v at %v (score %.1f, grade %v)",
			job.Title, job.Company, score.OverallScore, score.Grade()),
	}
	if err := g.activities.Add(ctx, activity); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to record activity: %v", err)
	}
	return nil
}

func timedStep[T any](step string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	metrics.GenerationStepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	return result, err
}

func renderBullets(selected []SelectedBullet, enhanced map[string]EnhancedBullet) ([]string, []string) {
	var bullets []string
	var keywordsAdded []string
	for _, candidate := range selected {
		if rewrite, found := enhanced[candidate.Bullet.ID]; found {
			bullets = append(bullets, rewrite.Enhanced)
			keywordsAdded = append(keywordsAdded, rewrite.AddedKeywords...)
			continue
		}
		bullets = append(bullets, candidate.Bullet.Text)
	}
	return bullets, dedupe(keywordsAdded)
}

func matchedKeywordTexts(matches []ats.KeywordMatch) []string {
	var texts []string
	for _, match := range matches {
		texts = append(texts, match.Keyword.Text)
	}
	return texts
}

func keywordTexts(keywords []ats.Keyword) []string {
	var texts []string
	for _, keyword := range keywords {
		texts = append(texts, keyword.Text)
	}
	return texts
}

func dedupe(items []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
