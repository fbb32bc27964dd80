package lifecycle

import (
	"strings"

	"procure/models"
)

// CorrectPages сверяет цитаты аннотаций с постраничным текстом документа.
// Модель не видит границ страниц, поэтому её указание страницы не берётся
// на веру: каждой аннотации присваивается первая страница, текст которой
// содержит цитату (точное совпадение подстроки, с учётом регистра).
// Если цитата не найдена ни на одной странице, Page остаётся пустым.
func CorrectPages(anns models.Annotations, chunks models.TextChunks) models.Annotations {
	if len(anns) == 0 {
		return anns
	}
	out := make(models.Annotations, len(anns))
	for i, a := range anns {
		a.Page = nil
		if a.Quote != "" {
			for pageIdx, chunk := range chunks {
				if strings.Contains(chunk, a.Quote) {
					page := pageIdx + 1 // страницы нумеруются с 1
					a.Page = &page
					break
				}
			}
		}
		out[i] = a
	}
	return out
}
