package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	summaryBlockPattern    = regexp.MustCompile(`(?s)(\\section\*?\{Summary\}\s*\n)(.*?)(\n\s*%-+[A-Z\s]+-+)`)
	bulletListBlockPattern = regexp.MustCompile(`(?s)(\\resumeItemListStart\s*\n)(.*?)(\s*\\resumeItemListEnd)`)
	skillLinePattern       = regexp.MustCompile(`(\\textbf\{[^}]+\}\{:\s*)([^}]+)(\})`)
	aiArtifactPattern      = regexp.MustCompile(`\s*\[X\]\s*\.?`)
)

// TemplateEngine produces variant documents by rewriting targeted blocks of
// the base resume, leaving the rest of the template byte for byte intact so
// custom preamble and macros survive.
type TemplateEngine struct {
	baseResumePath string
}

func NewTemplateEngine(baseResumePath string) *TemplateEngine {
	return &TemplateEngine{baseResumePath: baseResumePath}
}

// GenerateLatex writes a variant .tex file with the given summary and
// experience bullets substituted into the base template. Skills that match
// the given keywords are moved to the front of their category line.
func (e *TemplateEngine) GenerateLatex(outputDir string, filename string, summary string, bullets []string, keywords []string) (string, error) {
	original, err := os.ReadFile(e.baseResumePath)
	if err != nil {
		return "", fmt.Errorf("read base resume: %w", err)
	}

	content := string(original)
	if summary != "" {
		content = e.replaceSummary(content, summary)
	}
	content = e.replaceBullets(content, bullets)
	if len(keywords) > 0 {
		content = e.reorderSkills(content, keywords)
	}

	if err = os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	latexPath := filepath.Join(outputDir, filename)
	if err = os.WriteFile(latexPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write variant latex: %w", err)
	}

	log.Infof("latex written to %s", latexPath)
	return latexPath, nil
}

func (e *TemplateEngine) replaceSummary(content string, summary string) string {
	match := summaryBlockPattern.FindStringSubmatchIndex(content)
	if match == nil {
		log.Warn("summary section not found in base template")
		return content
	}

	var sb strings.Builder
	sb.WriteString(content[:match[3]])
	sb.WriteString(EscapeLatex(summary))
	sb.WriteString("\n")
	sb.WriteString(content[match[6]:match[7]])
	sb.WriteString(content[match[1]:])
	return sb.String()
}

func (e *TemplateEngine) reorderSkills(content string, keywords []string) string {
	lowered := make([]string, len(keywords))
	for i, keyword := range keywords {
		lowered[i] = strings.ToLower(keyword)
	}

	return skillLinePattern.ReplaceAllStringFunc(content, func(line string) string {
		parts := skillLinePattern.FindStringSubmatch(line)
		items := strings.Split(parts[2], ",")

		var matched, rest []string
		for _, item := range items {
			trimmed := strings.TrimSpace(item)
			if trimmed == "" {
				continue
			}
			if skillMatchesAny(trimmed, lowered) {
				matched = append(matched, trimmed)
			} else {
				rest = append(rest, trimmed)
			}
		}

		return parts[1] + strings.Join(append(matched, rest...), ", ") + parts[3]
	})
}

func skillMatchesAny(skill string, keywords []string) bool {
	lowered := strings.ToLower(skill)
	for _, keyword := range keywords {
		if strings.Contains(keyword, lowered) || strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func (e *TemplateEngine) replaceBullets(content string, bullets []string) string {
	match := bulletListBlockPattern.FindStringSubmatchIndex(content)
	if match == nil {
		log.Warn("experience bullet block not found in base template")
		return content
	}

	lines := make([]string, 0, len(bullets))
	for _, bullet := range bullets {
		text := strings.TrimSpace(aiArtifactPattern.ReplaceAllString(bullet, ""))
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf(`      \resumeItem{%s}`, EscapeLatex(text)))
	}

	var sb strings.Builder
	sb.WriteString(content[:match[3]])
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n")
	sb.WriteString(content[match[6]:match[7]])
	sb.WriteString(content[match[1]:])
	return sb.String()
}
