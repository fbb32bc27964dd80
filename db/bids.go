package db

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"procure/models"
)

// Bid (Предложение поставщика)
type Bid struct {
	ID                 int                      `db:"id" json:"id"`
	RFPID              int                      `db:"rfp_id" json:"rfpId"`
	VendorID           *int                     `db:"vendor_id" json:"vendorId"`
	VendorName         string                   `db:"vendor_name" json:"vendorName"`
	Filename           string                   `db:"filename" json:"filename"`
	FilePath           string                   `db:"file_path" json:"filePath"`
	ExtractedText      string                   `db:"extracted_text" json:"extractedText"`
	TextChunks         models.TextChunks        `db:"text_chunks" json:"textChunks"`
	EvaluationSummary  string                   `db:"evaluation_summary" json:"evaluationSummary"`
	Status             string                   `db:"status" json:"status"`
	AIScore            *float64                 `db:"ai_score" json:"aiScore"`
	AIReasoning        string                   `db:"ai_reasoning" json:"aiReasoning"`
	AIEvaluationSource string                   `db:"ai_evaluation_source" json:"aiEvaluationSource"`
	AIBreakdown        models.RequirementChecks `db:"ai_requirements_breakdown" json:"aiRequirementsBreakdown"`
	AIAnnotations      models.Annotations       `db:"ai_annotations" json:"aiAnnotations"`
	CommercialTerms    models.CommercialTerms   `db:"commercial_terms" json:"commercialTerms"`
	HumanScore         *float64                 `db:"human_score" json:"humanScore"`
	HumanNotes         string                   `db:"human_notes" json:"humanNotes"`
	LastEvalDuration   *float64                 `db:"last_eval_duration_seconds" json:"lastEvalDurationSeconds"`
	CreatedAt          time.Time                `db:"created_at" json:"createdAt"`
	UpdatedAt          *time.Time               `db:"updated_at" json:"updatedAt"`
}

// BidAuditEvent — запись журнала действий по предложению. Только добавление.
type BidAuditEvent struct {
	ID        int       `db:"id" json:"id"`
	BidID     int       `db:"bid_id" json:"bidId"`
	Action    string    `db:"action" json:"action"`
	Actor     string    `db:"actor" json:"actor"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// BidEvaluationHistory — снимок оценки перед повторной оценкой. Только добавление.
type BidEvaluationHistory struct {
	ID          int                      `db:"id" json:"id"`
	BidID       int                      `db:"bid_id" json:"bidId"`
	AIScore     *float64                 `db:"ai_score" json:"aiScore"`
	AIReasoning string                   `db:"ai_reasoning" json:"aiReasoning"`
	AIBreakdown models.RequirementChecks `db:"ai_requirements_breakdown" json:"aiRequirementsBreakdown"`
	HumanScore  *float64                 `db:"human_score" json:"humanScore"`
	HumanNotes  string                   `db:"human_notes" json:"humanNotes"`
	CreatedAt   time.Time                `db:"created_at" json:"createdAt"`
}

// CreateBid вставляет предложение и событие аудита "created" одной транзакцией.
func (s *Storage) CreateBid(ctx context.Context, b *Bid, actor string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO bids
            (rfp_id, vendor_id, vendor_name, filename, file_path, extracted_text,
             text_chunks, evaluation_summary, status, commercial_terms)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, query,
		b.RFPID, b.VendorID, b.VendorName, b.Filename, b.FilePath, b.ExtractedText,
		b.TextChunks, b.EvaluationSummary, b.Status, b.CommercialTerms).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return err
	}
	if err := insertAuditEvent(ctx, tx, b.ID, "created", actor); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Storage) GetBid(ctx context.Context, id int) (*Bid, error) {
	b := &Bid{}
	query := `SELECT * FROM bids WHERE id=$1`
	err := s.db.GetContext(ctx, b, query, id)
	return b, err
}

func (s *Storage) GetBidsForRFP(ctx context.Context, rfpID int) ([]Bid, error) {
	bids := []Bid{}
	query := `SELECT * FROM bids WHERE rfp_id=$1 ORDER BY created_at DESC`
	err := s.db.SelectContext(ctx, &bids, query, rfpID)
	return bids, err
}

func (s *Storage) GetAllBids(ctx context.Context) ([]Bid, error) {
	bids := []Bid{}
	query := `SELECT * FROM bids ORDER BY created_at DESC`
	err := s.db.SelectContext(ctx, &bids, query)
	return bids, err
}

// SaveEvaluation фиксирует результат оценки. Снимок истории (если это
// повторная оценка), перезапись живых полей и событие аудита коммитятся
// вместе или не коммитятся вовсе.
func (s *Storage) SaveEvaluation(ctx context.Context, b *Bid, snapshot *BidEvaluationHistory, actor string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if snapshot != nil {
		query := `
            INSERT INTO bid_evaluation_history
                (bid_id, ai_score, ai_reasoning, ai_requirements_breakdown, human_score, human_notes)
            VALUES ($1, $2, $3, $4, $5, $6)`
		_, err = tx.ExecContext(ctx, query,
			snapshot.BidID, snapshot.AIScore, snapshot.AIReasoning,
			snapshot.AIBreakdown, snapshot.HumanScore, snapshot.HumanNotes)
		if err != nil {
			return err
		}
	}

	query := `
        UPDATE bids
        SET status=$1, ai_score=$2, ai_reasoning=$3, ai_evaluation_source=$4,
            ai_requirements_breakdown=$5, ai_annotations=$6,
            last_eval_duration_seconds=$7, updated_at=NOW()
        WHERE id=$8`
	_, err = tx.ExecContext(ctx, query,
		b.Status, b.AIScore, b.AIReasoning, b.AIEvaluationSource,
		b.AIBreakdown, b.AIAnnotations, b.LastEvalDuration, b.ID)
	if err != nil {
		return err
	}
	if err := insertAuditEvent(ctx, tx, b.ID, "evaluated", actor); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveHumanReview сохраняет правки рецензента вместе с событием аудита.
func (s *Storage) SaveHumanReview(ctx context.Context, b *Bid, actor string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        UPDATE bids
        SET human_score=$1, human_notes=$2, ai_annotations=$3, updated_at=NOW()
        WHERE id=$4`
	_, err = tx.ExecContext(ctx, query, b.HumanScore, b.HumanNotes, b.AIAnnotations, b.ID)
	if err != nil {
		return err
	}
	if err := insertAuditEvent(ctx, tx, b.ID, "human_review", actor); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveBidStatus записывает терминальный статус и событие аудита
// ("approved" либо "rejected") одной транзакцией.
func (s *Storage) SaveBidStatus(ctx context.Context, b *Bid, actor string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE bids SET status=$1, updated_at=NOW() WHERE id=$2`
	if _, err = tx.ExecContext(ctx, query, b.Status, b.ID); err != nil {
		return err
	}
	if err := insertAuditEvent(ctx, tx, b.ID, strings.ToLower(b.Status), actor); err != nil {
		return err
	}
	return tx.Commit()
}

func insertAuditEvent(ctx context.Context, tx *sqlx.Tx, bidID int, action, actor string) error {
	query := `INSERT INTO bid_audit_events (bid_id, action, actor) VALUES ($1, $2, $3)`
	_, err := tx.ExecContext(ctx, query, bidID, action, actor)
	return err
}

func (s *Storage) GetAuditEvents(ctx context.Context, bidID int) ([]BidAuditEvent, error) {
	events := []BidAuditEvent{}
	query := `SELECT * FROM bid_audit_events WHERE bid_id=$1 ORDER BY created_at ASC, id ASC`
	err := s.db.SelectContext(ctx, &events, query, bidID)
	return events, err
}

func (s *Storage) GetEvaluationHistory(ctx context.Context, bidID int) ([]BidEvaluationHistory, error) {
	history := []BidEvaluationHistory{}
	query := `SELECT * FROM bid_evaluation_history WHERE bid_id=$1 ORDER BY created_at ASC, id ASC`
	err := s.db.SelectContext(ctx, &history, query, bidID)
	return history, err
}

// ComparisonRow — строка сравнительного анализа по RFP.
type ComparisonRow struct {
	BidID      int      `db:"bid_id" json:"bidId"`
	VendorName string   `db:"vendor_name" json:"vendorName"`
	Filename   string   `db:"filename" json:"filename"`
	AIScore    *float64 `db:"ai_score" json:"aiScore"`
	HumanScore *float64 `db:"human_score" json:"humanScore"`
	Status     string   `db:"status" json:"status"`
}

// GetComparison возвращает проекцию по предложениям, прошедшим дальше
// статуса Uploaded. Чистая выборка без побочных эффектов.
func (s *Storage) GetComparison(ctx context.Context, rfpID int) ([]ComparisonRow, error) {
	rows := []ComparisonRow{}
	query := `
        SELECT id AS bid_id, vendor_name, filename, ai_score, human_score, status
        FROM bids
        WHERE rfp_id = $1 AND status <> 'Uploaded'
        ORDER BY id ASC`
	err := s.db.SelectContext(ctx, &rows, query, rfpID)
	return rows, err
}

// ResetAll удаляет все строки всех таблиц. Только для сброса демо-стенда.
func (s *Storage) ResetAll(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Порядок важен из-за внешних ключей
	tables := []string{
		"bid_audit_events",
		"bid_evaluation_history",
		"bids",
		"vendor_reps",
		"vendors",
		"vendor_qa",
		"rfps",
	}
	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return err
		}
	}
	return tx.Commit()
}
