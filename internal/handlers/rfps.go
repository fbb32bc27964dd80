package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"procure/db"
	"procure/internal/lifecycle"
)

// Стадии процесса по порядку
var rfpStages = []string{"Draft", "Published", "Q&A", "Review", "Decision"}

type rfpCreateRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Requirements       string     `json:"requirements"`
	Budget             *float64   `json:"budget"`
	ProcessType        string     `json:"processType"`
	WeightTechnical    float64    `json:"weightTechnical"`
	WeightFinancial    float64    `json:"weightFinancial"`
	WeightCompliance   float64    `json:"weightCompliance"`
	PublishDate        *time.Time `json:"publishDate"`
	QADeadline         *time.Time `json:"qaDeadline"`
	SubmissionDeadline *time.Time `json:"submissionDeadline"`
	ReviewDate         *time.Time `json:"reviewDate"`
	DecisionDate       *time.Time `json:"decisionDate"`
	ClosingDate        *time.Time `json:"closingDate"`
}

// CreateRFPHandler обрабатывает POST /api/rfps запрос
func (h *Handler) CreateRFPHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.persona(w, r, lifecycle.ActionManageRFP, lifecycle.PersonaBidManager); !ok {
		return
	}

	// Ограничение размера тела, чтобы избежать DoS
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input rfpCreateRequest
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if input.Title == "" || len(input.Title) > 255 {
		http.Error(w, "title is required and max length 255", http.StatusBadRequest)
		return
	}

	// Веса по умолчанию 40/30/30; заданные явно должны давать в сумме 100
	if input.WeightTechnical == 0 && input.WeightFinancial == 0 && input.WeightCompliance == 0 {
		input.WeightTechnical, input.WeightFinancial, input.WeightCompliance = 40, 30, 30
	}
	if err := validateWeights(input.WeightTechnical, input.WeightFinancial, input.WeightCompliance); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	processType := input.ProcessType
	if processType == "" {
		processType = "Direct RFP"
	}

	rfp := &db.RFP{
		Title:              input.Title,
		Description:        input.Description,
		Requirements:       input.Requirements,
		Budget:             input.Budget,
		Status:             lifecycle.RFPStatusDraft,
		ProcessType:        processType,
		CurrentStage:       "Draft",
		WeightTechnical:    input.WeightTechnical,
		WeightFinancial:    input.WeightFinancial,
		WeightCompliance:   input.WeightCompliance,
		PublishDate:        input.PublishDate,
		QADeadline:         input.QADeadline,
		SubmissionDeadline: input.SubmissionDeadline,
		ReviewDate:         input.ReviewDate,
		DecisionDate:       input.DecisionDate,
		ClosingDate:        input.ClosingDate,
	}
	if err := h.Store.CreateRFP(r.Context(), rfp); err != nil {
		http.Error(w, "Failed to create RFP", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rfp)
}

func validateWeights(technical, financial, compliance float64) error {
	if technical < 0 || financial < 0 || compliance < 0 {
		return errors.New("weights must be non-negative")
	}
	if math.Abs(technical+financial+compliance-100) > 1e-9 {
		return errors.New("weights must sum to 100")
	}
	return nil
}

// GetRFPsHandler возвращает список RFP, новые первыми
func (h *Handler) GetRFPsHandler(w http.ResponseWriter, r *http.Request) {
	rfps, err := h.Store.GetRFPs(r.Context())
	if err != nil {
		http.Error(w, "Failed to get RFPs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rfps)
}

func (h *Handler) GetRFPHandler(w http.ResponseWriter, r *http.Request) {
	rfpID, err := strconv.Atoi(chi.URLParam(r, "rfpId"))
	if err != nil || rfpID <= 0 {
		http.Error(w, "Invalid rfpId", http.StatusBadRequest)
		return
	}
	rfp, err := h.Store.GetRFP(r.Context(), rfpID)
	if err != nil {
		if notFound(err) {
			http.Error(w, "RFP not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get RFP", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rfp)
}

// EditRFPHandler правит RFP. Разрешено только на стадии Draft.
func (h *Handler) EditRFPHandler(w http.ResponseWriter, r *http.Request) {
	rfpID, err := strconv.Atoi(chi.URLParam(r, "rfpId"))
	if err != nil || rfpID <= 0 {
		http.Error(w, "Invalid rfpId", http.StatusBadRequest)
		return
	}
	if _, ok := h.persona(w, r, lifecycle.ActionManageRFP, lifecycle.PersonaBidManager); !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Cannot read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		Title              *string    `json:"title"`
		Description        *string    `json:"description"`
		Requirements       *string    `json:"requirements"`
		Budget             *float64   `json:"budget"`
		WeightTechnical    *float64   `json:"weightTechnical"`
		WeightFinancial    *float64   `json:"weightFinancial"`
		WeightCompliance   *float64   `json:"weightCompliance"`
		PublishDate        *time.Time `json:"publishDate"`
		QADeadline         *time.Time `json:"qaDeadline"`
		SubmissionDeadline *time.Time `json:"submissionDeadline"`
		ReviewDate         *time.Time `json:"reviewDate"`
		DecisionDate       *time.Time `json:"decisionDate"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	rfp, err := h.Store.GetRFP(r.Context(), rfpID)
	if err != nil {
		if notFound(err) {
			http.Error(w, "RFP not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get RFP", http.StatusInternalServerError)
		return
	}
	if rfp.CurrentStage != "Draft" {
		http.Error(w, "RFP can only be edited in the Draft stage", http.StatusConflict)
		return
	}

	if input.Title != nil {
		if *input.Title == "" || len(*input.Title) > 255 {
			http.Error(w, "Invalid title length", http.StatusBadRequest)
			return
		}
		rfp.Title = *input.Title
	}
	if input.Description != nil {
		rfp.Description = *input.Description
	}
	if input.Requirements != nil {
		rfp.Requirements = *input.Requirements
	}
	if input.Budget != nil {
		rfp.Budget = input.Budget
	}
	if input.WeightTechnical != nil {
		rfp.WeightTechnical = *input.WeightTechnical
	}
	if input.WeightFinancial != nil {
		rfp.WeightFinancial = *input.WeightFinancial
	}
	if input.WeightCompliance != nil {
		rfp.WeightCompliance = *input.WeightCompliance
	}
	if err := validateWeights(rfp.WeightTechnical, rfp.WeightFinancial, rfp.WeightCompliance); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if input.PublishDate != nil {
		rfp.PublishDate = input.PublishDate
	}
	if input.QADeadline != nil {
		rfp.QADeadline = input.QADeadline
	}
	if input.SubmissionDeadline != nil {
		rfp.SubmissionDeadline = input.SubmissionDeadline
	}
	if input.ReviewDate != nil {
		rfp.ReviewDate = input.ReviewDate
	}
	if input.DecisionDate != nil {
		rfp.DecisionDate = input.DecisionDate
	}

	if err := h.Store.UpdateRFP(r.Context(), rfp); err != nil {
		http.Error(w, "Failed to update RFP", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rfp)
}

// AdvanceRFPStageHandler переводит RFP на следующую стадию процесса.
func (h *Handler) AdvanceRFPStageHandler(w http.ResponseWriter, r *http.Request) {
	rfpID, err := strconv.Atoi(chi.URLParam(r, "rfpId"))
	if err != nil || rfpID <= 0 {
		http.Error(w, "Invalid rfpId", http.StatusBadRequest)
		return
	}
	if _, ok := h.persona(w, r, lifecycle.ActionManageRFP, lifecycle.PersonaBidManager); !ok {
		return
	}

	var input struct {
		Stage string `json:"stage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	rfp, err := h.Store.GetRFP(r.Context(), rfpID)
	if err != nil {
		if notFound(err) {
			http.Error(w, "RFP not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get RFP", http.StatusInternalServerError)
		return
	}

	// Стадия меняется только на непосредственно следующую
	cur := stageIndex(rfp.CurrentStage)
	next := stageIndex(input.Stage)
	if next < 0 {
		http.Error(w, "Invalid stage value", http.StatusBadRequest)
		return
	}
	if next != cur+1 {
		http.Error(w, "Invalid stage transition", http.StatusConflict)
		return
	}

	rfp.CurrentStage = input.Stage
	switch input.Stage {
	case "Published":
		rfp.Status = lifecycle.RFPStatusPublished
		if rfp.PublishDate == nil {
			now := time.Now()
			rfp.PublishDate = &now
		}
	case "Decision":
		rfp.Status = lifecycle.RFPStatusClosed
	}
	if err := h.Store.UpdateRFP(r.Context(), rfp); err != nil {
		http.Error(w, "Failed to update RFP stage", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rfp)
}

func stageIndex(stage string) int {
	for i, s := range rfpStages {
		if s == stage {
			return i
		}
	}
	return -1
}

// LockRFPBidsHandler обрабатывает PATCH /api/rfps/{rfpId}/lock запрос.
// Переход односторонний; повторная блокировка — тихий no-op с текущим
// состоянием в ответе.
func (h *Handler) LockRFPBidsHandler(w http.ResponseWriter, r *http.Request) {
	rfpID, err := strconv.Atoi(chi.URLParam(r, "rfpId"))
	if err != nil || rfpID <= 0 {
		http.Error(w, "Invalid rfpId", http.StatusBadRequest)
		return
	}
	if _, ok := h.persona(w, r, lifecycle.ActionLock, lifecycle.PersonaBidManager); !ok {
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

	rfp, err := h.Store.LockRFPBids(r.Context(), rfpID)
	if err != nil {
		http.Error(w, "Failed to lock RFP bids", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rfp)
}

// GetComparisonHandler возвращает сравнительный анализ предложений по RFP:
// только предложения, прошедшие дальше статуса Uploaded.
func (h *Handler) GetComparisonHandler(w http.ResponseWriter, r *http.Request) {
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

	rows, err := h.Store.GetComparison(r.Context(), rfpID)
	if err != nil {
		http.Error(w, "Failed to get comparison", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
