package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type GenerationConfig struct {
	BaseResumePath    string  `mapstructure:"base_resume_path"`
	ResumesDir        string  `mapstructure:"resumes_dir"`
	OutputDir         string  `mapstructure:"output_dir"`
	PdflatexPath      string  `mapstructure:"pdflatex_path"`
	TargetBullets     int     `mapstructure:"target_bullets"`
	MinBulletsPerJob  int     `mapstructure:"min_bullets_per_job"`
	MaxBulletsPerJob  int     `mapstructure:"max_bullets_per_job"`
	MinConfidence     float64 `mapstructure:"min_confidence"`
	MaxEnhancedBullets int    `mapstructure:"max_enhanced_bullets"`
	TaskTTLMinutes    int     `mapstructure:"task_ttl_minutes"`
	RetentionDays     int     `mapstructure:"retention_days"`
}

func (config *GenerationConfig) applyDefaults() {
	if config.ResumesDir == "" {
		config.ResumesDir = "./output/resumes"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output/variants"
	}
	if config.PdflatexPath == "" {
		config.PdflatexPath = "pdflatex"
	}
	if config.TargetBullets == 0 {
		config.TargetBullets = 18
	}
	if config.MinBulletsPerJob == 0 {
		config.MinBulletsPerJob = 3
	}
	if config.MaxBulletsPerJob == 0 {
		config.MaxBulletsPerJob = 15
	}
	if config.MinConfidence == 0 {
		config.MinConfidence = 0.7
	}
	if config.MaxEnhancedBullets == 0 {
		config.MaxEnhancedBullets = 5
	}
	if config.TaskTTLMinutes == 0 {
		config.TaskTTLMinutes = 60
	}
	if config.RetentionDays == 0 {
		config.RetentionDays = 30
	}
}

func (config GenerationConfig) validate() error {
	if config.BaseResumePath == "" {
		return fmt.Errorf("missing variable: base_resume_path")
	}
	return nil
}

func (config GenerationConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("generation.base_resume_path", "BASE_RESUME_PATH"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("generation.output_dir", "VARIANTS_OUTPUT_DIR"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
