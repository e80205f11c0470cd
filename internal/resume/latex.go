package resume

import (
	"regexp"
	"sort"
	"strings"
)

type latexSection struct {
	Level   int
	Title   string
	Content string
	Start   int
	End     int
}

var (
	sectionPatterns = []struct {
		level   int
		pattern *regexp.Regexp
	}{
		{1, regexp.MustCompile(`(?i)\\section\*?\s*\{([^}]+)\}`)},
		{2, regexp.MustCompile(`(?i)\\subsection\*?\s*\{([^}]+)\}`)},
		{3, regexp.MustCompile(`(?i)\\subsubsection\*?\s*\{([^}]+)\}`)},
	}

	itemizePattern = regexp.MustCompile(`(?is)\\begin\{itemize\}(?:\[[^\]]*\])?(.*?)\\end\{itemize\}`)
	itemSplitter   = regexp.MustCompile(`\\item\s+`)

	commandWithArg = regexp.MustCompile(`\\(?:textbf|textit|emph|texttt|underline|small|footnotesize|mbox|href)\s*\{([^{}]*)\}`)
	bareCommand    = regexp.MustCompile(`\\[a-zA-Z]+\*?`)
	commentLine    = regexp.MustCompile(`(?m)(^|[^\\])%.*$`)
)

// extractBalancedBraces returns the content of the brace group starting at
// pos and the index of its closing brace. pos must point at an opening brace.
func extractBalancedBraces(text string, pos int) (string, int) {
	if pos >= len(text) || text[pos] != '{' {
		return "", pos
	}

	depth := 0
	for i := pos; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[pos+1 : i], i
			}
		}
	}

	return text[pos+1:], len(text)
}

func skipWhitespace(text string, pos int) int {
	for pos < len(text) && (text[pos] == ' ' || text[pos] == '\t' || text[pos] == '\n') {
		pos++
	}
	return pos
}

// latexToText strips comments and formatting commands, keeping their
// visible arguments.
func latexToText(text string) string {
	text = commentLine.ReplaceAllString(text, "$1")
	for commandWithArg.MatchString(text) {
		text = commandWithArg.ReplaceAllString(text, "$1")
	}

	text = regexp.MustCompile(`\\[a-zA-Z]+\s*\{([^{}]*)\}`).ReplaceAllString(text, "$1")
	text = bareCommand.ReplaceAllString(text, "")
	text = strings.NewReplacer(
		`\&`, "&", `\%`, "%", `\$`, "$", `\#`, "#", `\_`, "_",
		"{", " ", "}", " ", "~", " ", `\\`, " ",
	).Replace(text)

	return strings.Join(strings.Fields(text), " ")
}

func extractSections(content string) []latexSection {
	var markers []latexSection
	for _, sp := range sectionPatterns {
		for _, loc := range sp.pattern.FindAllStringSubmatchIndex(content, -1) {
			markers = append(markers, latexSection{
				Level: sp.level,
				Title: strings.TrimSpace(content[loc[2]:loc[3]]),
				Start: loc[0],
				End:   loc[1],
			})
		}
	}

	sort.Slice(markers, func(i, j int) bool { return markers[i].Start < markers[j].Start })

	for i := range markers {
		end := len(content)
		for _, next := range markers[i+1:] {
			if next.Level <= markers[i].Level {
				end = next.Start
				break
			}
		}
		markers[i].Content = strings.TrimSpace(content[markers[i].End:end])
	}

	return markers
}

func findSection(sections []latexSection, namePattern string) *latexSection {
	pattern := regexp.MustCompile(`(?i)` + namePattern)
	for i := range sections {
		if pattern.MatchString(sections[i].Title) {
			return &sections[i]
		}
	}
	return nil
}

func extractItemizeItems(content string) []string {
	var items []string
	for _, block := range itemizePattern.FindAllStringSubmatch(content, -1) {
		parts := itemSplitter.Split(block[1], -1)
		for _, part := range parts[1:] {
			if text := strings.TrimSpace(part); text != "" {
				items = append(items, text)
			}
		}
	}
	return items
}

var latexEscaper = strings.NewReplacer(
	"&", `\&`, "%", `\%`, "$", `\$`, "#", `\#`, "_", `\_`,
)

// EscapeLatex escapes special characters in plain text destined for a
// generated document. Text that already contains a backslash is assumed to
// carry its own markup and passes through untouched.
func EscapeLatex(text string) string {
	if strings.Contains(text, `\`) {
		return text
	}
	return latexEscaper.Replace(text)
}
