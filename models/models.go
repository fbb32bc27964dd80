package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Типизированные значения для jsonb-колонок. Раньше такие поля хранились
// как непрозрачный текст и разбирались на фронтенде; теперь схема явная.

// TextChunks — постраничный текст документа, индексация страниц с 1.
type TextChunks []string

// RequirementCheck — результат проверки одного требования RFP.
type RequirementCheck struct {
	Requirement string `json:"requirement"`
	Compliant   bool   `json:"compliant"`
	Note        string `json:"note"`
}

type RequirementChecks []RequirementCheck

// Annotation — фрагмент документа, отмеченный ИИ для проверки человеком.
// Page заполняется после сверки цитаты с постраничным текстом.
type Annotation struct {
	Quote              string `json:"quote"`
	Reason             string `json:"reason"`
	Page               *int   `json:"page,omitempty"`
	ReviewerNotes      string `json:"reviewerNotes,omitempty"`
	VerificationStatus string `json:"verificationStatus,omitempty"`
}

type Annotations []Annotation

// CommercialTerms — коммерческие условия, извлечённые из документа.
type CommercialTerms struct {
	QuotedPrice    *float64 `json:"quotedPrice,omitempty"`
	Currency       string   `json:"currency,omitempty"`
	Rate           *float64 `json:"rate,omitempty"`
	RateUnit       string   `json:"rateUnit,omitempty"`
	ValidityPeriod string   `json:"validityPeriod,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// ExtractedVendor — реквизиты компании из текста предложения.
type ExtractedVendor struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Website string `json:"website,omitempty"`
	Domain  string `json:"domain,omitempty"`
}

// ExtractedRep — контактное лицо поставщика.
type ExtractedRep struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Designation string `json:"designation,omitempty"`
}

// Extraction — полный результат работы извлекающего коллаборатора.
type Extraction struct {
	Vendor          ExtractedVendor `json:"vendor"`
	Representatives []ExtractedRep  `json:"representatives"`
	CommercialTerms CommercialTerms `json:"commercialTerms"`
}

// Evaluation — результат оценки предложения (ИИ или мок).
type Evaluation struct {
	Score       float64           `json:"score"`
	Reasoning   string            `json:"reasoning"`
	Source      string            `json:"evaluationSource"`
	Breakdown   RequirementChecks `json:"requirementsBreakdown"`
	Annotations Annotations       `json:"annotations"`
}

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func jsonScan(dst any, src any) error {
	switch s := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(s, dst)
	case string:
		return json.Unmarshal([]byte(s), dst)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dst)
	}
}

func (c TextChunks) Value() (driver.Value, error) {
	if c == nil {
		c = TextChunks{}
	}
	return jsonValue(c)
}
func (c *TextChunks) Scan(src any) error { return jsonScan(c, src) }

func (r RequirementChecks) Value() (driver.Value, error) {
	if r == nil {
		r = RequirementChecks{}
	}
	return jsonValue(r)
}
func (r *RequirementChecks) Scan(src any) error { return jsonScan(r, src) }

func (a Annotations) Value() (driver.Value, error) {
	if a == nil {
		a = Annotations{}
	}
	return jsonValue(a)
}
func (a *Annotations) Scan(src any) error { return jsonScan(a, src) }

func (t CommercialTerms) Value() (driver.Value, error) { return jsonValue(t) }
func (t *CommercialTerms) Scan(src any) error          { return jsonScan(t, src) }
