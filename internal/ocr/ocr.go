// Package ocr извлекает текст из загруженных PDF-документов.
package ocr

import (
	"fmt"
	"strings"

	"github.com/dslipak/pdf"
)

// ExtractPages возвращает текст документа постранично, в порядке страниц.
// Индекс в срезе = номер страницы - 1; нечитаемая страница даёт пустую строку.
func ExtractPages(path string) ([]string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	total := r.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return pages, nil
}

// JoinPages склеивает постраничный текст в один документ.
func JoinPages(pages []string) string {
	return strings.TrimSpace(strings.Join(pages, "\n"))
}
