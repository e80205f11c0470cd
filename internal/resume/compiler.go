package resume

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/akimenko/resume-pilot/internal/logger"
)

// ErrCompilerUnavailable is returned when no pdflatex binary can be found.
// Variant generation continues without a PDF in that case.
var ErrCompilerUnavailable = errors.New("pdflatex not found in PATH")

const compileTimeout = 30 * time.Second

type PDFCompiler struct {
	pdflatexPath string
}

func NewPDFCompiler(pdflatexPath string) *PDFCompiler {
	if pdflatexPath == "" {
		pdflatexPath = "pdflatex"
	}
	return &PDFCompiler{pdflatexPath: pdflatexPath}
}

func (c *PDFCompiler) Available() bool {
	_, err := exec.LookPath(c.pdflatexPath)
	return err == nil
}

// Compile runs pdflatex twice so cross references settle, removes the
// auxiliary files and returns the path of the produced PDF.
func (c *PDFCompiler) Compile(ctx context.Context, latexPath string) (string, error) {
	if !c.Available() {
		return "", ErrCompilerUnavailable
	}

	dir := filepath.Dir(latexPath)

	for pass := 0; pass < 2; pass++ {
		runCtx, cancel := context.WithTimeout(ctx, compileTimeout)
		cmd := exec.CommandContext(runCtx, c.pdflatexPath,
			"-interaction=nonstopmode",
			"-output-directory", dir,
			latexPath,
		)
		output, err := cmd.CombinedOutput()
		cancel()

		// pdflatex exits nonzero on recoverable warnings, only a missing
		// PDF counts as failure.
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeLatex).
				Debugf("pdflatex pass %d: %v: %s", pass+1, err, lastLines(string(output), 5))
		}
	}

	pdfPath := strings.TrimSuffix(latexPath, filepath.Ext(latexPath)) + ".pdf"
	if _, err := os.Stat(pdfPath); err != nil {
		return "", errors.Errorf("pdf was not produced for %s", latexPath)
	}

	c.cleanup(latexPath)

	log.Infof("pdf compiled: %s", pdfPath)
	return pdfPath, nil
}

func (c *PDFCompiler) cleanup(latexPath string) {
	base := strings.TrimSuffix(latexPath, filepath.Ext(latexPath))
	for _, ext := range []string{".aux", ".log", ".out"} {
		if err := os.Remove(base + ext); err != nil && !os.IsNotExist(err) {
			log.Debugf("cleanup %s: %v", base+ext, err)
		}
	}
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
