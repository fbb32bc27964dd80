// Package verify — лёгкие проверки реквизитов поставщика: доступность
// сайта и формат телефона/почты. Результат трёхзначный: true/false/nil
// (nil — проверка не выполнялась, значения не было).
package verify

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var (
	// E.164 или свободный формат с разделителями
	phoneE164  = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	phoneLoose = regexp.MustCompile(`^[\d\s\-\(\)\+\.]{10,20}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	stripRe    = regexp.MustCompile(`[\s\-\.]`)
)

const websiteTimeout = 10 * time.Second

var defaultClient = &http.Client{Timeout: websiteTimeout}

// Website делает HEAD-запрос на сайт. Без headless-браузера: просто
// проверка, что адрес отвечает. client == nil — клиент по умолчанию.
func Website(ctx context.Context, client *http.Client, url string) *bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	if client == nil {
		client = defaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return boolPtr(false)
	}
	req.Header.Set("User-Agent", "procure-poc/1.0")
	resp, err := client.Do(req)
	if err != nil {
		return boolPtr(false)
	}
	defer resp.Body.Close()
	return boolPtr(resp.StatusCode >= 200 && resp.StatusCode < 400)
}

// Phone проверяет правдоподобность формата номера телефона.
func Phone(phone string) *bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	stripped := stripRe.ReplaceAllString(phone, "")
	if phoneE164.MatchString(stripped) {
		return boolPtr(true)
	}
	return boolPtr(phoneLoose.MatchString(phone))
}

// Email проверяет формат адреса почты.
func Email(email string) *bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	return boolPtr(emailRe.MatchString(email))
}

func boolPtr(b bool) *bool { return &b }
