package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"procure/internal/ai"
	"procure/internal/lifecycle"
)

// Handler оборачивает хранилище и коллабораторов ИИ для обработчиков HTTP.
type Handler struct {
	Store     StorageInterface
	AI        *ai.Service
	UploadDir string
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface, aiSvc *ai.Service, uploadDir string) *Handler {
	return &Handler{Store: store, AI: aiSvc, UploadDir: uploadDir}
}

// HealthHandler отвечает статусом сервиса и настроенным источником оценки.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"service":    "procure-api",
		"aiProvider": h.AI.Provider(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// persona достаёт персону из заголовка X-Persona (с дефолтом для операции)
// и проверяет её права. При отказе сама пишет ответ и возвращает ok=false.
func (h *Handler) persona(w http.ResponseWriter, r *http.Request, action, fallback string) (string, bool) {
	p := r.Header.Get("X-Persona")
	if p == "" {
		p = fallback
	}
	if !lifecycle.ValidPersona(p) {
		http.Error(w, "Unknown persona", http.StatusBadRequest)
		return "", false
	}
	if err := lifecycle.Authorize(p, action); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return "", false
	}
	return p, true
}

// policyError переводит нарушение политики жизненного цикла в HTTP-ответ.
// Возвращает true, если ошибка была обработана.
func policyError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, lifecycle.ErrRFPLocked),
		errors.Is(err, lifecycle.ErrBidTerminal),
		errors.Is(err, lifecycle.ErrBadTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, lifecycle.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
	return true
}

// notFound: true, если ошибка хранилища — отсутствие строки.
func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
