package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// RFP (Запрос предложений)
type RFP struct {
	ID                 int        `db:"id" json:"id"`
	Title              string     `db:"title" json:"title"`
	Description        string     `db:"description" json:"description"`
	Requirements       string     `db:"requirements" json:"requirements"`
	Budget             *float64   `db:"budget" json:"budget"`
	Status             string     `db:"status" json:"status"`
	BidsLocked         bool       `db:"bids_locked" json:"bidsLocked"`
	ProcessType        string     `db:"process_type" json:"processType"`
	CurrentStage       string     `db:"current_stage" json:"currentStage"`
	WeightTechnical    float64    `db:"weight_technical" json:"weightTechnical"`
	WeightFinancial    float64    `db:"weight_financial" json:"weightFinancial"`
	WeightCompliance   float64    `db:"weight_compliance" json:"weightCompliance"`
	PublishDate        *time.Time `db:"publish_date" json:"publishDate"`
	QADeadline         *time.Time `db:"qa_deadline" json:"qaDeadline"`
	SubmissionDeadline *time.Time `db:"submission_deadline" json:"submissionDeadline"`
	ReviewDate         *time.Time `db:"review_date" json:"reviewDate"`
	DecisionDate       *time.Time `db:"decision_date" json:"decisionDate"`
	ClosingDate        *time.Time `db:"closing_date" json:"closingDate"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          *time.Time `db:"updated_at" json:"updatedAt"`
}

func (s *Storage) CreateRFP(ctx context.Context, r *RFP) error {
	query := `
        INSERT INTO rfps
            (title, description, requirements, budget, status, process_type, current_stage,
             weight_technical, weight_financial, weight_compliance,
             publish_date, qa_deadline, submission_deadline, review_date, decision_date, closing_date)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query,
		r.Title, r.Description, r.Requirements, r.Budget, r.Status, r.ProcessType, r.CurrentStage,
		r.WeightTechnical, r.WeightFinancial, r.WeightCompliance,
		r.PublishDate, r.QADeadline, r.SubmissionDeadline, r.ReviewDate, r.DecisionDate, r.ClosingDate).
		Scan(&r.ID, &r.CreatedAt)
}

func (s *Storage) GetRFP(ctx context.Context, id int) (*RFP, error) {
	r := &RFP{}
	query := `SELECT * FROM rfps WHERE id=$1`
	err := s.db.GetContext(ctx, r, query, id)
	return r, err
}

func (s *Storage) GetRFPs(ctx context.Context) ([]RFP, error) {
	rfps := []RFP{}
	query := `SELECT * FROM rfps ORDER BY created_at DESC`
	err := s.db.SelectContext(ctx, &rfps, query)
	return rfps, err
}

func (s *Storage) UpdateRFP(ctx context.Context, r *RFP) error {
	query := `
        UPDATE rfps
        SET title=$1, description=$2, requirements=$3, budget=$4, status=$5,
            process_type=$6, current_stage=$7,
            weight_technical=$8, weight_financial=$9, weight_compliance=$10,
            publish_date=$11, qa_deadline=$12, submission_deadline=$13,
            review_date=$14, decision_date=$15, closing_date=$16, updated_at=NOW()
        WHERE id=$17`
	_, err := s.db.ExecContext(ctx, query,
		r.Title, r.Description, r.Requirements, r.Budget, r.Status,
		r.ProcessType, r.CurrentStage,
		r.WeightTechnical, r.WeightFinancial, r.WeightCompliance,
		r.PublishDate, r.QADeadline, r.SubmissionDeadline,
		r.ReviewDate, r.DecisionDate, r.ClosingDate, r.ID)
	return err
}

// LockRFPBids переводит bids_locked в true. Переход односторонний:
// повторный вызов ничего не меняет и не трогает updated_at.
func (s *Storage) LockRFPBids(ctx context.Context, id int) (*RFP, error) {
	query := `UPDATE rfps SET bids_locked = TRUE, updated_at = NOW() WHERE id = $1 AND NOT bids_locked`
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return nil, err
	}
	return s.GetRFP(ctx, id)
}

// Vendor (Поставщик)
type Vendor struct {
	ID              int        `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Address         string     `db:"address" json:"address"`
	Website         string     `db:"website" json:"website"`
	Domain          string     `db:"domain" json:"domain"`
	WebsiteVerified *bool      `db:"website_verified" json:"websiteVerified"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updatedAt"`
}

// VendorRep (Представитель поставщика)
type VendorRep struct {
	ID            int       `db:"id" json:"id"`
	VendorID      int       `db:"vendor_id" json:"vendorId"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	Phone         string    `db:"phone" json:"phone"`
	Designation   string    `db:"designation" json:"designation"`
	PhoneVerified *bool     `db:"phone_verified" json:"phoneVerified"`
	EmailVerified *bool     `db:"email_verified" json:"emailVerified"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

func (s *Storage) CreateVendor(ctx context.Context, v *Vendor) error {
	query := `
        INSERT INTO vendors (name, address, website, domain, website_verified)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query,
		v.Name, v.Address, v.Website, v.Domain, v.WebsiteVerified).
		Scan(&v.ID, &v.CreatedAt)
}

// FindVendor ищет поставщика по естественному ключу: имя или сайт.
func (s *Storage) FindVendor(ctx context.Context, name, website string) (*Vendor, error) {
	v := &Vendor{}
	query := `
        SELECT * FROM vendors
        WHERE lower(name) = lower($1)
           OR ($2 <> '' AND lower(website) = lower($2))
        ORDER BY id
        LIMIT 1`
	err := s.db.GetContext(ctx, v, query, name, website)
	return v, err
}

func (s *Storage) GetVendor(ctx context.Context, id int) (*Vendor, error) {
	v := &Vendor{}
	query := `SELECT * FROM vendors WHERE id=$1`
	err := s.db.GetContext(ctx, v, query, id)
	return v, err
}

func (s *Storage) GetVendors(ctx context.Context) ([]Vendor, error) {
	vendors := []Vendor{}
	query := `SELECT * FROM vendors ORDER BY name ASC`
	err := s.db.SelectContext(ctx, &vendors, query)
	return vendors, err
}

func (s *Storage) CreateVendorRep(ctx context.Context, rep *VendorRep) error {
	query := `
        INSERT INTO vendor_reps (vendor_id, name, email, phone, designation, phone_verified, email_verified)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query,
		rep.VendorID, rep.Name, rep.Email, rep.Phone, rep.Designation,
		rep.PhoneVerified, rep.EmailVerified).
		Scan(&rep.ID, &rep.CreatedAt)
}

func (s *Storage) GetVendorReps(ctx context.Context, vendorID int) ([]VendorRep, error) {
	reps := []VendorRep{}
	query := `SELECT * FROM vendor_reps WHERE vendor_id=$1 ORDER BY id`
	err := s.db.SelectContext(ctx, &reps, query, vendorID)
	return reps, err
}

// VendorQA (Вопрос поставщика по RFP)
type VendorQA struct {
	ID         int       `db:"id" json:"id"`
	RFPID      int       `db:"rfp_id" json:"rfpId"`
	VendorName string    `db:"vendor_name" json:"vendorName"`
	Question   string    `db:"question" json:"question"`
	Answer     string    `db:"answer" json:"answer"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

func (s *Storage) CreateQA(ctx context.Context, qa *VendorQA) error {
	query := `
        INSERT INTO vendor_qa (rfp_id, vendor_name, question, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query,
		qa.RFPID, qa.VendorName, qa.Question, qa.Status).
		Scan(&qa.ID, &qa.CreatedAt)
}

func (s *Storage) GetQA(ctx context.Context, id int) (*VendorQA, error) {
	qa := &VendorQA{}
	query := `SELECT * FROM vendor_qa WHERE id=$1`
	err := s.db.GetContext(ctx, qa, query, id)
	return qa, err
}

func (s *Storage) GetQAForRFP(ctx context.Context, rfpID int) ([]VendorQA, error) {
	items := []VendorQA{}
	query := `SELECT * FROM vendor_qa WHERE rfp_id=$1 ORDER BY created_at DESC`
	err := s.db.SelectContext(ctx, &items, query, rfpID)
	return items, err
}

func (s *Storage) AnswerQA(ctx context.Context, qa *VendorQA) error {
	query := `UPDATE vendor_qa SET answer=$1, status='Answered' WHERE id=$2`
	_, err := s.db.ExecContext(ctx, query, qa.Answer, qa.ID)
	if err == nil {
		qa.Status = "Answered"
	}
	return err
}
