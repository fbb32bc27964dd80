// Package testutils — вспомогательные функции для тестов обработчиков.
package testutils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
)

// WithChiURLParams кладёт параметры пути в контекст маршрутизации chi,
// чтобы вызывать обработчик напрямую, без полного роутера.
func WithChiURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for name, value := range params {
		rctx.URLParams.Add(name, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// JSONRequest собирает запрос с JSON-телом и параметрами пути.
func JSONRequest(method, target, body string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return WithChiURLParams(req, params)
}
