package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Модели регулярно ломают JSON: заборы кода, текст вокруг объекта,
// висячие запятые. Разбор терпимый: сначала вырезаем объект, потом
// пробуем строгий парсинг, потом чиним типичные ошибки.

var (
	trailingCommaObj = regexp.MustCompile(`,\s*}`)
	trailingCommaArr = regexp.MustCompile(`,\s*]`)
)

// extractObject вырезает первый JSON-объект из текста ответа модели.
func extractObject(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "```json"); i >= 0 {
		text = text[i+len("```json"):]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
		text = strings.TrimSpace(text)
	} else if i := strings.Index(text, "```"); i >= 0 {
		text = text[i+len("```"):]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
		text = strings.TrimSpace(text)
	}
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return text
	}
	// Скобки внутри строковых значений не считаются
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return text[start:]
}

func fixTrailingCommas(s string) string {
	s = trailingCommaObj.ReplaceAllString(s, "}")
	s = trailingCommaArr.ReplaceAllString(s, "]")
	return s
}

// unmarshalLoose разбирает JSON-объект из сырого ответа модели.
func unmarshalLoose(text string, v any) error {
	obj := extractObject(text)
	if err := json.Unmarshal([]byte(obj), v); err == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(fixTrailingCommas(obj)), v); err == nil {
		return nil
	}
	return fmt.Errorf("could not extract valid JSON from model response")
}

var (
	scoreRe     = regexp.MustCompile(`"score"\s*:\s*(\d+(?:\.\d+)?)`)
	reasoningRe = regexp.MustCompile(`"reasoning"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// rescueScore — последняя попытка: вытащить score и reasoning регулярками,
// чтобы не терять ответ модели из-за сломанного JSON.
func rescueScore(text string) (float64, string, bool) {
	var score float64
	var reasoning string
	found := false
	if m := scoreRe.FindStringSubmatch(text); m != nil {
		fmt.Sscanf(m[1], "%f", &score)
		found = true
	}
	if m := reasoningRe.FindStringSubmatch(text); m != nil {
		if s, err := strconv.Unquote(`"` + m[1] + `"`); err == nil {
			reasoning = s
		} else {
			reasoning = m[1]
		}
		found = true
	}
	return score, reasoning, found
}
