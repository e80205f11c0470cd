package resume

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T) *ParsedResume {
	t.Helper()

	parser := NewParser()
	parsed, err := parser.ParseFile(filepath.Join("testdata", "base_resume.tex"))
	require.NoError(t, err)
	return parsed
}

func Test_Parser_PersonalInfo(t *testing.T) {
	parsed := parseFixture(t)

	assert.Equal(t, "Jane Smith", parsed.Personal.Name)
	assert.Equal(t, "jane.smith@example.com", parsed.Personal.Email)
	assert.Equal(t, "janesmith", parsed.Personal.LinkedIn)
	assert.Equal(t, "janesmith", parsed.Personal.GitHub)
	assert.NotEmpty(t, parsed.Personal.Phone)
}

func Test_Parser_Summary(t *testing.T) {
	parsed := parseFixture(t)

	assert.Contains(t, parsed.Summary, "Platform engineer")
	assert.Contains(t, parsed.Summary, "Apache Kafka")
	assert.NotContains(t, parsed.Summary, "%")
	assert.NotContains(t, parsed.Summary, `\section`)
}

func Test_Parser_Experience(t *testing.T) {
	parsed := parseFixture(t)

	require.Len(t, parsed.Experience, 2)

	acme := parsed.Experience[0]
	assert.Equal(t, "Senior Platform Engineer", acme.Title)
	assert.Equal(t, "Acme Corp", acme.Company)
	assert.Equal(t, "Berlin, Germany", acme.Location)
	assert.Equal(t, "Mar 2021", acme.StartDate)
	assert.Equal(t, "Present", acme.EndDate)
	assert.True(t, acme.IsCurrent())

	require.Len(t, acme.Bullets, 3)
	assert.Equal(t, "acme_corp_0", acme.Bullets[0].ID)
	assert.Contains(t, acme.Bullets[0].Text, "99.99% availability")
	assert.True(t, acme.Bullets[0].IsModifiable)
	assert.Equal(t, "experience", acme.Bullets[0].Section)
	assert.Equal(t, "Acme Corp", acme.Bullets[0].Subsection)

	globex := parsed.Experience[1]
	assert.Equal(t, "Globex", globex.Company)
	assert.False(t, globex.IsCurrent())
	assert.Len(t, globex.Bullets, 2)
}

func Test_Parser_Education(t *testing.T) {
	parsed := parseFixture(t)

	require.Len(t, parsed.Education, 1)
	edu := parsed.Education[0]
	assert.Equal(t, "State University", edu.Institution)
	assert.Equal(t, "Bachelor of Science in Computer Science", edu.Degree)
	assert.Equal(t, "Springfield, IL", edu.Location)
	assert.Equal(t, "Sep 2014 -- May 2018", edu.GraduationDate)
}

func Test_Parser_Skills(t *testing.T) {
	parsed := parseFixture(t)

	assert.Contains(t, parsed.Skills.Technical, "Python")
	assert.Contains(t, parsed.Skills.Technical, "Kafka")
	assert.Contains(t, parsed.Skills.Tools, "Kubernetes")
	assert.Contains(t, parsed.Skills.Tools, "Terraform")
	assert.Contains(t, parsed.Skills.Languages, "English")
	assert.NotContains(t, parsed.Skills.Technical, "Kubernetes")
}

func Test_Parser_Certifications(t *testing.T) {
	parsed := parseFixture(t)

	require.Len(t, parsed.Certifications, 2)
	assert.Contains(t, parsed.Certifications[1], "CKA")
}

func Test_Parser_AllBullets(t *testing.T) {
	parsed := parseFixture(t)

	bullets := parsed.AllBullets()
	assert.Len(t, bullets, 5)
	assert.Len(t, parsed.ModifiableBullets(), 5)
}

func Test_Parser_MissingFile(t *testing.T) {
	_, err := NewParser().ParseFile(filepath.Join("testdata", "nope.tex"))
	assert.Error(t, err)
}

func Test_ExtractBalancedBraces(t *testing.T) {
	content, end := extractBalancedBraces(`{outer {inner} tail} rest`, 0)
	assert.Equal(t, "outer {inner} tail", content)
	assert.Equal(t, 19, end)

	content, _ = extractBalancedBraces("no braces", 0)
	assert.Empty(t, content)

	content, end = extractBalancedBraces("{unbalanced", 0)
	assert.Equal(t, "unbalanced", content)
	assert.Equal(t, len("{unbalanced"), end)
}

func Test_LatexToText(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{`\textbf{Kafka} cluster`, "Kafka cluster"},
		{`cut costs by 25\%`, "cut costs by 25%"},
		{`\href{https://example.com}{link text}`, "https://example.com link text"},
		{`plain text`, "plain text"},
		{`before % trailing comment`, "before"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, latexToText(tc.in))
	}
}
