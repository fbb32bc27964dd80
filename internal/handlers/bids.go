package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"procure/db"
	"procure/internal/lifecycle"
	"procure/internal/ocr"
	"procure/internal/verify"
	"procure/models"
)

const maxUploadBytes = 32 << 20

// UploadBidHandler обрабатывает POST /api/rfps/{rfpId}/bids запрос:
// сохраняет PDF, извлекает текст постранично, прогоняет извлечение
// реквизитов поставщика и создаёт предложение в статусе Uploaded.
func (h *Handler) UploadBidHandler(w http.ResponseWriter, r *http.Request) {
	rfpID, err := strconv.Atoi(chi.URLParam(r, "rfpId"))
	if err != nil || rfpID <= 0 {
		http.Error(w, "Invalid rfpId", http.StatusBadRequest)
		return
	}
	actor, ok := h.persona(w, r, lifecycle.ActionUpload, lifecycle.PersonaBidManager)
	if !ok {
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
	// Загрузка создаёт предложение — под заблокированным RFP запрещена
	if rfp.BidsLocked {
		http.Error(w, lifecycle.ErrRFPLocked.Error(), http.StatusConflict)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}
	formVendorName := strings.TrimSpace(r.FormValue("vendor_name"))
	if formVendorName == "" {
		http.Error(w, "Missing vendor_name", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "A PDF file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		http.Error(w, "A PDF file is required", http.StatusBadRequest)
		return
	}

	// Имя файла из уникального идентификатора — коллизии исключены
	storedName := strings.ReplaceAll(uuid.NewString(), "-", "") + filepath.Ext(header.Filename)
	absPath := filepath.Join(h.UploadDir, storedName)
	dst, err := os.Create(absPath)
	if err != nil {
		http.Error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		http.Error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}
	dst.Close()

	pages, err := ocr.ExtractPages(absPath)
	if err != nil {
		// Нечитаемый PDF не блокирует загрузку: предложение без текста
		log.Printf("text extraction failed for %s: %v", storedName, err)
		pages = nil
	}
	extractedText := ocr.JoinPages(pages)

	extraction := h.AI.ExtractVendor(r.Context(), extractedText)
	vendorName := strings.TrimSpace(extraction.Vendor.Name)
	if vendorName == "" {
		vendorName = formVendorName
	}

	var summary string
	if extractedText != "" {
		summary = h.AI.Summarize(r.Context(), extractedText)
	}

	vendor, err := h.upsertVendor(r, vendorName, extraction)
	if err != nil {
		os.Remove(absPath)
		http.Error(w, "Failed to save vendor", http.StatusInternalServerError)
		return
	}

	bid := &db.Bid{
		RFPID:             rfpID,
		VendorID:          &vendor.ID,
		VendorName:        vendorName,
		Filename:          header.Filename,
		FilePath:          filepath.ToSlash(filepath.Join(h.UploadDir, storedName)),
		ExtractedText:     extractedText,
		TextChunks:        models.TextChunks(pages),
		EvaluationSummary: summary,
		Status:            lifecycle.StatusUploaded,
		CommercialTerms:   extraction.CommercialTerms,
	}
	if err := h.Store.CreateBid(r.Context(), bid, actor); err != nil {
		// Отклонённая загрузка не оставляет файла
		os.Remove(absPath)
		http.Error(w, "Failed to create bid", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

// upsertVendor находит поставщика по имени/сайту или создаёт нового
// вместе с представителями и результатами проверок.
func (h *Handler) upsertVendor(r *http.Request, name string, extraction models.Extraction) (*db.Vendor, error) {
	ctx := r.Context()
	existing, err := h.Store.FindVendor(ctx, name, extraction.Vendor.Website)
	if err == nil {
		return existing, nil
	}
	if !notFound(err) {
		return nil, err
	}

	vendor := &db.Vendor{
		Name:            name,
		Address:         extraction.Vendor.Address,
		Website:         extraction.Vendor.Website,
		Domain:          extraction.Vendor.Domain,
		WebsiteVerified: verify.Website(ctx, nil, extraction.Vendor.Website),
	}
	if err := h.Store.CreateVendor(ctx, vendor); err != nil {
		return nil, err
	}
	for _, rep := range extraction.Representatives {
		vr := &db.VendorRep{
			VendorID:      vendor.ID,
			Name:          rep.Name,
			Email:         rep.Email,
			Phone:         rep.Phone,
			Designation:   rep.Designation,
			PhoneVerified: verify.Phone(rep.Phone),
			EmailVerified: verify.Email(rep.Email),
		}
		if err := h.Store.CreateVendorRep(ctx, vr); err != nil {
			return nil, err
		}
	}
	return vendor, nil
}

// GetBidsForRFPHandler возвращает предложения по RFP, новые первыми
func (h *Handler) GetBidsForRFPHandler(w http.ResponseWriter, r *http.Request) {
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
	bids, err := h.Store.GetBidsForRFP(r.Context(), rfpID)
	if err != nil {
		http.Error(w, "Failed to get bids", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

func (h *Handler) GetAllBidsHandler(w http.ResponseWriter, r *http.Request) {
	bids, err := h.Store.GetAllBids(r.Context())
	if err != nil {
		http.Error(w, "Failed to get bids", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

type rfpRef struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Requirements string `json:"requirements"`
	BidsLocked   bool   `json:"bidsLocked"`
}

type vendorDetail struct {
	db.Vendor
	Representatives []db.VendorRep `json:"representatives"`
}

type bidDetail struct {
	db.Bid
	RFP               rfpRef                    `json:"rfp"`
	Vendor            *vendorDetail             `json:"vendor,omitempty"`
	AuditEvents       []db.BidAuditEvent        `json:"auditEvents"`
	EvaluationHistory []db.BidEvaluationHistory `json:"evaluationHistory"`
}

// GetBidHandler возвращает предложение с RFP, поставщиком, журналом аудита
// и историей оценок.
func (h *Handler) GetBidHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := strconv.Atoi(chi.URLParam(r, "bidId"))
	if err != nil || bidID <= 0 {
		http.Error(w, "Invalid bidId", http.StatusBadRequest)
		return
	}
	bid, err := h.Store.GetBid(r.Context(), bidID)
	if err != nil {
		if notFound(err) {
			http.Error(w, "Bid not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get bid", http.StatusInternalServerError)
		return
	}
	rfp, err := h.Store.GetRFP(r.Context(), bid.RFPID)
	if err != nil {
		http.Error(w, "Failed to get RFP", http.StatusInternalServerError)
		return
	}

	detail := bidDetail{
		Bid: *bid,
		RFP: rfpRef{
			ID:           rfp.ID,
			Title:        rfp.Title,
			Requirements: rfp.Requirements,
			BidsLocked:   rfp.BidsLocked,
		},
	}
	if bid.VendorID != nil {
		vendor, err := h.Store.GetVendor(r.Context(), *bid.VendorID)
		if err == nil {
			reps, _ := h.Store.GetVendorReps(r.Context(), vendor.ID)
			detail.Vendor = &vendorDetail{Vendor: *vendor, Representatives: reps}
		}
	}
	events, err := h.Store.GetAuditEvents(r.Context(), bidID)
	if err != nil {
		http.Error(w, "Failed to get audit events", http.StatusInternalServerError)
		return
	}
	detail.AuditEvents = events
	history, err := h.Store.GetEvaluationHistory(r.Context(), bidID)
	if err != nil {
		http.Error(w, "Failed to get evaluation history", http.StatusInternalServerError)
		return
	}
	detail.EvaluationHistory = history

	writeJSON(w, http.StatusOK, detail)
}

// EvaluateBidHandler обрабатывает POST /api/bids/{bidId}/evaluate запрос.
// Первая оценка переводит Uploaded -> Evaluated; повторная сначала
// снимает текущие поля в историю, затем перезаписывает их. Снимок,
// перезапись и событие аудита коммитятся одной транзакцией.
func (h *Handler) EvaluateBidHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := strconv.Atoi(chi.URLParam(r, "bidId"))
	if err != nil || bidID <= 0 {
		http.Error(w, "Invalid bidId", http.StatusBadRequest)
		return
	}
	actor, ok := h.persona(w, r, lifecycle.ActionEvaluate, lifecycle.PersonaReviewer)
	if !ok {
		return
	}

	// Тело необязательное: {"humanNotesContext": "..."}
	var input struct {
		HumanNotesContext string `json:"humanNotesContext"`
	}
	if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &input); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}
	defer r.Body.Close()

	bid, err := h.Store.GetBid(r.Context(), bidID)
	if err != nil {
		if notFound(err) {
			http.Error(w, "Bid not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get bid", http.StatusInternalServerError)
		return
	}
	rfp, err := h.Store.GetRFP(r.Context(), bid.RFPID)
	if err != nil {
		http.Error(w, "Failed to get RFP", http.StatusInternalServerError)
		return
	}
	if policyError(w, lifecycle.CanMutate(rfp, bid)) {
		return
	}

	var snapshot *db.BidEvaluationHistory
	if lifecycle.IsReevaluation(bid) {
		s := lifecycle.Snapshot(bid)
		snapshot = &s
	}

	rfpText := strings.TrimSpace(rfp.Requirements + "\n" + rfp.Description)
	start := time.Now()
	eval := h.AI.EvaluateBid(r.Context(), rfpText, bid.ExtractedText, input.HumanNotesContext)
	duration := time.Since(start).Seconds()

	// Сверка страниц аннотаций с фактической разбивкой документа
	eval.Annotations = lifecycle.CorrectPages(eval.Annotations, bid.TextChunks)

	bid.Status = lifecycle.StatusEvaluated
	bid.AIScore = &eval.Score
	bid.AIReasoning = eval.Reasoning
	bid.AIEvaluationSource = eval.Source
	bid.AIBreakdown = eval.Breakdown
	bid.AIAnnotations = eval.Annotations
	bid.LastEvalDuration = &duration

	if err := h.Store.SaveEvaluation(r.Context(), bid, snapshot, actor); err != nil {
		http.Error(w, "Failed to save evaluation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

// HumanReviewHandler обрабатывает PATCH /api/bids/{bidId} запрос:
// оценка и заметки рецензента, правки аннотаций. Статус не меняется.
func (h *Handler) HumanReviewHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := strconv.Atoi(chi.URLParam(r, "bidId"))
	if err != nil || bidID <= 0 {
		http.Error(w, "Invalid bidId", http.StatusBadRequest)
		return
	}
	actor, ok := h.persona(w, r, lifecycle.ActionReview, lifecycle.PersonaReviewer)
	if !ok {
		return
	}

	var input struct {
		HumanScore    *float64            `json:"humanScore"`
		HumanNotes    *string             `json:"humanNotes"`
		AIAnnotations *models.Annotations `json:"aiAnnotations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if input.HumanScore != nil && (*input.HumanScore < 0 || *input.HumanScore > 100) {
		http.Error(w, "humanScore must be between 0 and 100", http.StatusBadRequest)
		return
	}

	bid, err := h.Store.GetBid(r.Context(), bidID)
	if err != nil {
		if notFound(err) {
			http.Error(w, "Bid not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get bid", http.StatusInternalServerError)
		return
	}
	rfp, err := h.Store.GetRFP(r.Context(), bid.RFPID)
	if err != nil {
		http.Error(w, "Failed to get RFP", http.StatusInternalServerError)
		return
	}
	if policyError(w, lifecycle.CanMutate(rfp, bid)) {
		return
	}

	if input.HumanScore != nil {
		bid.HumanScore = input.HumanScore
	}
	if input.HumanNotes != nil {
		bid.HumanNotes = *input.HumanNotes
	}
	if input.AIAnnotations != nil {
		bid.AIAnnotations = *input.AIAnnotations
	}

	if err := h.Store.SaveHumanReview(r.Context(), bid, actor); err != nil {
		http.Error(w, "Failed to save review", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

// UpdateBidStatusHandler обрабатывает PATCH /api/bids/{bidId}/status запрос:
// перевод в Approved либо Rejected. Терминальный статус окончателен.
func (h *Handler) UpdateBidStatusHandler(w http.ResponseWriter, r *http.Request) {
	bidID, err := strconv.Atoi(chi.URLParam(r, "bidId"))
	if err != nil || bidID <= 0 {
		http.Error(w, "Invalid bidId", http.StatusBadRequest)
		return
	}
	actor, ok := h.persona(w, r, lifecycle.ActionDecide, lifecycle.PersonaApprover)
	if !ok {
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if input.Status != lifecycle.StatusApproved && input.Status != lifecycle.StatusRejected {
		http.Error(w, "status must be 'Approved' or 'Rejected'", http.StatusBadRequest)
		return
	}

	bid, err := h.Store.GetBid(r.Context(), bidID)
	if err != nil {
		if notFound(err) {
			http.Error(w, "Bid not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get bid", http.StatusInternalServerError)
		return
	}
	if policyError(w, lifecycle.CanDecide(bid, input.Status)) {
		return
	}

	bid.Status = input.Status
	if err := h.Store.SaveBidStatus(r.Context(), bid, actor); err != nil {
		http.Error(w, "Failed to update bid status", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}
