package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"procure/db"
	"procure/internal/lifecycle"
)

// GetQAHandler возвращает вопросы и ответы по RFP.
func (h *Handler) GetQAHandler(w http.ResponseWriter, r *http.Request) {
	rfpID, err := strconv.Atoi(chi.URLParam(r, "rfpId"))
	if err != nil || rfpID <= 0 {
		http.Error(w, "Invalid rfpId", http.StatusBadRequest)
		return
	}
	if _, err := h.Store.GetRFP(r.Context(), rfpID); err != nil {
		if notFound(err) {
			http.Error(w, "RFP not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get RFP", http.StatusInternalServerError)
		return
	}
	items, err := h.Store.GetQAForRFP(r.Context(), rfpID)
	if err != nil {
		http.Error(w, "Failed to get Q&A", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateQAHandler принимает вопрос поставщика по RFP.
func (h *Handler) CreateQAHandler(w http.ResponseWriter, r *http.Request) {
	rfpID, err := strconv.Atoi(chi.URLParam(r, "rfpId"))
	if err != nil || rfpID <= 0 {
		http.Error(w, "Invalid rfpId", http.StatusBadRequest)
		return
	}

	var input struct {
		VendorName string `json:"vendorName"`
		Question   string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	input.VendorName = strings.TrimSpace(input.VendorName)
	input.Question = strings.TrimSpace(input.Question)
	if input.VendorName == "" || input.Question == "" {
		http.Error(w, "vendorName and question are required", http.StatusBadRequest)
		return
	}

	if _, err := h.Store.GetRFP(r.Context(), rfpID); err != nil {
		if notFound(err) {
			http.Error(w, "RFP not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get RFP", http.StatusInternalServerError)
		return
	}

	qa := &db.VendorQA{
		RFPID:      rfpID,
		VendorName: input.VendorName,
		Question:   input.Question,
		Status:     "Unanswered",
	}
	if err := h.Store.CreateQA(r.Context(), qa); err != nil {
		http.Error(w, "Failed to create question", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, qa)
}

// AnswerQAHandler обрабатывает PATCH /api/qa/{qaId} запрос (ответ менеджера).
func (h *Handler) AnswerQAHandler(w http.ResponseWriter, r *http.Request) {
	qaID, err := strconv.Atoi(chi.URLParam(r, "qaId"))
	if err != nil || qaID <= 0 {
		http.Error(w, "Invalid qaId", http.StatusBadRequest)
		return
	}
	if _, ok := h.persona(w, r, lifecycle.ActionAnswerQA, lifecycle.PersonaBidManager); !ok {
		return
	}

	var input struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if strings.TrimSpace(input.Answer) == "" {
		http.Error(w, "answer is required", http.StatusBadRequest)
		return
	}

	qa, err := h.Store.GetQA(r.Context(), qaID)
	if err != nil {
		if notFound(err) {
			http.Error(w, "Q&A not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get Q&A", http.StatusInternalServerError)
		return
	}

	qa.Answer = input.Answer
	if err := h.Store.AnswerQA(r.Context(), qa); err != nil {
		http.Error(w, "Failed to answer question", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, qa)
}
