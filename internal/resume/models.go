package resume

import "strings"

type BulletPoint struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Section      string `json:"section"`
	Subsection   string `json:"subsection,omitempty"`
	IsModifiable bool   `json:"is_modifiable"`
	OriginalText string `json:"original_text,omitempty"`
	LineNumber   int    `json:"line_number,omitempty"`
}

type ExperienceEntry struct {
	Title     string        `json:"title"`
	Company   string        `json:"company"`
	Location  string        `json:"location,omitempty"`
	StartDate string        `json:"start_date,omitempty"`
	EndDate   string        `json:"end_date,omitempty"`
	Bullets   []BulletPoint `json:"bullets"`
}

func (e ExperienceEntry) IsCurrent() bool {
	return strings.Contains(strings.ToLower(e.EndDate), "present")
}

type EducationEntry struct {
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`
	Location       string `json:"location,omitempty"`
	GraduationDate string `json:"graduation_date,omitempty"`
}

type SkillsSection struct {
	Technical []string `json:"technical"`
	Tools     []string `json:"tools"`
	Languages []string `json:"languages"`
}

type PersonalInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

type ParsedResume struct {
	SourceFile     string            `json:"source_file"`
	Personal       PersonalInfo      `json:"personal"`
	Summary        string            `json:"summary,omitempty"`
	Experience     []ExperienceEntry `json:"experience"`
	Education      []EducationEntry  `json:"education"`
	Skills         SkillsSection     `json:"skills"`
	Certifications []string          `json:"certifications"`
}

// AllBullets returns every experience bullet in document order.
func (r *ParsedResume) AllBullets() []BulletPoint {
	var bullets []BulletPoint
	for _, exp := range r.Experience {
		bullets = append(bullets, exp.Bullets...)
	}
	return bullets
}

func (r *ParsedResume) ModifiableBullets() []BulletPoint {
	var bullets []BulletPoint
	for _, bullet := range r.AllBullets() {
		if bullet.IsModifiable {
			bullets = append(bullets, bullet)
		}
	}
	return bullets
}
