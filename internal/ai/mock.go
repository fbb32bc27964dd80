package ai

import (
	"fmt"
	"regexp"
	"strings"

	"procure/models"
)

// Детерминированные моки: одинаковый вход всегда даёт одинаковый выход,
// никаких обращений к сети. Используются, когда модель не настроена или упала.

const mockBaseScore = 85.5

// MockEvaluate строит оценку из простого сопоставления строк требований
// с текстом предложения.
func MockEvaluate(rfpText, bidText string) models.Evaluation {
	reqs := requirementLines(rfpText)
	if len(reqs) == 0 {
		return models.Evaluation{
			Score: mockBaseScore,
			Reasoning: "The bid meets most requirements but is missing the specific certification details mentioned in the RFP. " +
				"Good budget alignment.",
			Source:    SourceMock,
			Breakdown: models.RequirementChecks{},
		}
	}

	lowerBid := strings.ToLower(bidText)
	breakdown := make(models.RequirementChecks, 0, len(reqs))
	compliant := 0
	for _, req := range reqs {
		ok := mentionsRequirement(lowerBid, req)
		note := "No mention found in the bid text."
		if ok {
			note = "The bid text addresses this requirement."
			compliant++
		}
		breakdown = append(breakdown, models.RequirementCheck{
			Requirement: req,
			Compliant:   ok,
			Note:        note,
		})
	}

	score := 50 + 50*float64(compliant)/float64(len(reqs))
	return models.Evaluation{
		Score: score,
		Reasoning: fmt.Sprintf("Keyword screening matched %d of %d requirements against the bid text. "+
			"Scores from the mock evaluator are indicative only.", compliant, len(reqs)),
		Source:    SourceMock,
		Breakdown: breakdown,
	}
}

// requirementLines разбивает текст требований на отдельные пункты.
func requirementLines(rfpText string) []string {
	var out []string
	for _, line := range strings.Split(rfpText, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•0123456789. \t"))
		if len(line) >= 3 {
			out = append(out, line)
		}
	}
	return out
}

// mentionsRequirement: требование считается затронутым, если хотя бы одно
// значимое слово из него встречается в тексте предложения.
func mentionsRequirement(lowerBid, req string) bool {
	for _, word := range strings.Fields(strings.ToLower(req)) {
		word = strings.Trim(word, ".,:;()\"'")
		if len(word) < 4 {
			continue
		}
		if strings.Contains(lowerBid, word) {
			return true
		}
	}
	return false
}

const mockSummaryChars = 280

// MockSummarize обрезает текст до короткой выжимки по границе слова.
func MockSummarize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= mockSummaryChars {
		return text
	}
	cut := text[:mockSummaryChars]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

var (
	emailRe   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	websiteRe = regexp.MustCompile(`(?:https?://)?(?:www\.)[A-Za-z0-9\-]+\.[A-Za-z]{2,}[^\s]*`)
	phoneRe   = regexp.MustCompile(`\+?[0-9][0-9\s\-\(\)\.]{8,18}[0-9]`)
)

// MockExtract сканирует текст регулярками вместо вызова модели.
// Имя поставщика из чистого текста надёжно не достать, его подставит
// вызывающая сторона из формы загрузки.
func MockExtract(bidText string) models.Extraction {
	var ext models.Extraction

	email := emailRe.FindString(bidText)
	if email != "" {
		ext.Representatives = append(ext.Representatives, models.ExtractedRep{Email: email})
		if at := strings.LastIndexByte(email, '@'); at >= 0 {
			ext.Vendor.Domain = email[at+1:]
		}
	}
	if site := websiteRe.FindString(bidText); site != "" {
		ext.Vendor.Website = site
		if ext.Vendor.Domain == "" {
			ext.Vendor.Domain = strings.TrimPrefix(strings.TrimPrefix(strings.TrimPrefix(site, "https://"), "http://"), "www.")
		}
	}
	if phone := phoneRe.FindString(bidText); phone != "" {
		if len(ext.Representatives) > 0 {
			ext.Representatives[0].Phone = phone
		} else {
			ext.Representatives = append(ext.Representatives, models.ExtractedRep{Phone: phone})
		}
	}
	return ext
}
