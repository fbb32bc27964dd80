// Package ai реализует внешних коллабораторов оценки и извлечения данных.
// Вызов модели может упасть или быть не настроен — тогда подставляется
// детерминированный мок, а источник результата фиксируется в ответе.
package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"procure/models"
)

// Источники результата оценки
const (
	SourceOpenAI = "openai"
	SourceMock   = "mock"
)

// Обрезка текста для контекста модели
const maxPromptChars = 6000

// Service — фасад над клиентом модели с фолбэком на мок.
// При client == nil всегда работает мок.
type Service struct {
	client *Client
}

func NewService(client *Client) *Service {
	return &Service{client: client}
}

// Provider возвращает настроенный источник оценки ("openai" | "mock").
func (s *Service) Provider() string {
	if s.client != nil {
		return SourceOpenAI
	}
	return SourceMock
}

const evaluateSystemPrompt = `You are a procurement expert. Analyze the Vendor's Bid against the RFP Requirements. ` +
	`Return ONLY a valid JSON object, no other text or markdown. The JSON must have: ` +
	`"score" (number 0-100), ` +
	`"reasoning" (string, 2-4 sentences explaining the score), ` +
	`"requirements_breakdown" (array of objects, each with "requirement" (short string), "compliant" (boolean), "note" (string)), ` +
	`"annotations" (array of objects, each with "quote" (verbatim excerpt from the bid needing human review) and "reason" (string)). ` +
	`List each distinct requirement from the RFP and whether the bid complies, with a brief note.`

// EvaluateBid сравнивает текст предложения с требованиями RFP.
// Никогда не возвращает ошибку: при сбое модели подставляется мок.
func (s *Service) EvaluateBid(ctx context.Context, rfpText, bidText, reviewerNotes string) models.Evaluation {
	if s.client == nil {
		return MockEvaluate(rfpText, bidText)
	}
	eval, err := s.llmEvaluate(ctx, rfpText, bidText, reviewerNotes)
	if err != nil {
		log.Printf("AI evaluation failed, using mock: %v", err)
		return MockEvaluate(rfpText, bidText)
	}
	return eval
}

func (s *Service) llmEvaluate(ctx context.Context, rfpText, bidText, reviewerNotes string) (models.Evaluation, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "RFP requirements:\n%s\n\nBid text (extracted):\n%s\n",
		clip(rfpText), clip(bidText))
	if reviewerNotes != "" {
		fmt.Fprintf(&sb, "\nReviewer notes to take into account:\n%s\n", clip(reviewerNotes))
	}
	sb.WriteString("\nReturn only the JSON object with keys score, reasoning, requirements_breakdown, and annotations.")

	text, err := s.client.Chat(ctx, evaluateSystemPrompt, sb.String())
	if err != nil {
		return models.Evaluation{}, err
	}

	var raw struct {
		Score     *float64 `json:"score"`
		Reasoning string   `json:"reasoning"`
		Breakdown []struct {
			Requirement string `json:"requirement"`
			Compliant   bool   `json:"compliant"`
			Note        string `json:"note"`
		} `json:"requirements_breakdown"`
		Annotations []struct {
			Quote  string `json:"quote"`
			Reason string `json:"reason"`
		} `json:"annotations"`
	}
	if err := unmarshalLoose(text, &raw); err != nil {
		// Последний шанс: достать хотя бы score и reasoning
		score, reasoning, ok := rescueScore(text)
		if !ok {
			return models.Evaluation{}, err
		}
		return models.Evaluation{
			Score:     clampScore(score),
			Reasoning: reasoning,
			Source:    SourceOpenAI,
		}, nil
	}

	eval := models.Evaluation{
		Reasoning: raw.Reasoning,
		Source:    SourceOpenAI,
	}
	if raw.Score != nil {
		eval.Score = clampScore(*raw.Score)
	}
	for _, b := range raw.Breakdown {
		eval.Breakdown = append(eval.Breakdown, models.RequirementCheck{
			Requirement: b.Requirement,
			Compliant:   b.Compliant,
			Note:        b.Note,
		})
	}
	for _, a := range raw.Annotations {
		eval.Annotations = append(eval.Annotations, models.Annotation{Quote: a.Quote, Reason: a.Reason})
	}
	return eval, nil
}

const summarizeSystemPrompt = `You summarize procurement bid documents for a review dashboard. ` +
	`Return 2-3 plain sentences covering scope, pricing and compliance claims. No JSON, no markdown.`

// Summarize строит краткую выжимку документа для карточки предложения.
// Никогда не возвращает ошибку: при сбое модели — детерминированная обрезка.
func (s *Service) Summarize(ctx context.Context, text string) string {
	if s.client == nil {
		return MockSummarize(text)
	}
	out, err := s.client.Chat(ctx, summarizeSystemPrompt, "Bid text:\n"+clip(text))
	if err != nil {
		log.Printf("AI summarization failed, using mock: %v", err)
		return MockSummarize(text)
	}
	return strings.TrimSpace(out)
}

const extractSystemPrompt = `You extract vendor identity data from procurement bid documents. ` +
	`Return ONLY a valid JSON object with keys: ` +
	`"vendor" ({"name", "address", "website", "domain"}), ` +
	`"representatives" (array of {"name", "email", "phone", "designation"}), ` +
	`"commercial_terms" ({"quoted_price" number, "currency", "rate" number, "rate_unit", "validity_period", "notes"}). ` +
	`Use empty strings for unknown fields.`

// ExtractVendor вытаскивает реквизиты поставщика и коммерческие условия
// из текста предложения. При сбое модели — детерминированный мок.
func (s *Service) ExtractVendor(ctx context.Context, bidText string) models.Extraction {
	if s.client == nil {
		return MockExtract(bidText)
	}
	ext, err := s.llmExtract(ctx, bidText)
	if err != nil {
		log.Printf("AI extraction failed, using mock: %v", err)
		return MockExtract(bidText)
	}
	return ext
}

func (s *Service) llmExtract(ctx context.Context, bidText string) (models.Extraction, error) {
	user := "Bid text:\n" + clip(bidText) + "\n\nReturn only the JSON object."
	text, err := s.client.Chat(ctx, extractSystemPrompt, user)
	if err != nil {
		return models.Extraction{}, err
	}

	var raw struct {
		Vendor struct {
			Name    string `json:"name"`
			Address string `json:"address"`
			Website string `json:"website"`
			Domain  string `json:"domain"`
		} `json:"vendor"`
		Representatives []struct {
			Name        string `json:"name"`
			Email       string `json:"email"`
			Phone       string `json:"phone"`
			Designation string `json:"designation"`
		} `json:"representatives"`
		CommercialTerms struct {
			QuotedPrice    *float64 `json:"quoted_price"`
			Currency       string   `json:"currency"`
			Rate           *float64 `json:"rate"`
			RateUnit       string   `json:"rate_unit"`
			ValidityPeriod string   `json:"validity_period"`
			Notes          string   `json:"notes"`
		} `json:"commercial_terms"`
	}
	if err := unmarshalLoose(text, &raw); err != nil {
		return models.Extraction{}, err
	}

	ext := models.Extraction{
		Vendor: models.ExtractedVendor{
			Name:    raw.Vendor.Name,
			Address: raw.Vendor.Address,
			Website: raw.Vendor.Website,
			Domain:  raw.Vendor.Domain,
		},
		CommercialTerms: models.CommercialTerms{
			QuotedPrice:    raw.CommercialTerms.QuotedPrice,
			Currency:       raw.CommercialTerms.Currency,
			Rate:           raw.CommercialTerms.Rate,
			RateUnit:       raw.CommercialTerms.RateUnit,
			ValidityPeriod: raw.CommercialTerms.ValidityPeriod,
			Notes:          raw.CommercialTerms.Notes,
		},
	}
	for _, r := range raw.Representatives {
		ext.Representatives = append(ext.Representatives, models.ExtractedRep{
			Name:        r.Name,
			Email:       r.Email,
			Phone:       r.Phone,
			Designation: r.Designation,
		})
	}
	return ext, nil
}

func clip(s string) string {
	if len(s) > maxPromptChars {
		return s[:maxPromptChars]
	}
	return s
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
