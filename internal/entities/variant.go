package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// StringList is stored as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return errors.Errorf("cannot scan %T into StringList", value)
	}
}

type Variant struct {
	ID              string     `gorm:"primaryKey;column:variant_id" json:"variant_id"`
	JobID           int        `gorm:"not null;index" json:"job_id"`
	BaseResumePath  string     `json:"base_resume_path"`
	LatexPath       string     `gorm:"column:variant_latex_path" json:"variant_latex_path"`
	PDFPath         string     `gorm:"column:variant_pdf_path" json:"variant_pdf_path"`
	MetadataPath    string     `gorm:"column:metadata_json_path" json:"metadata_json_path,omitempty"`
	TargetBullets   int        `gorm:"default:18" json:"target_bullets"`
	AIEnhanced      bool       `gorm:"column:ai_enhancement_enabled" json:"ai_enhancement_enabled"`
	BulletsEnhanced int        `json:"bullets_enhanced"`
	TotalBullets    int        `json:"total_bullets"`
	KeywordsAdded   StringList `gorm:"type:text" json:"keywords_added"`
	GeneratedAt     time.Time  `gorm:"autoCreateTime" json:"generated_at"`

	Job    *Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Scores []ATSScore `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE" json:"scores,omitempty"`
}
