package handlers

import (
	"context"

	"procure/db"
)

type StorageInterface interface {
	CreateRFP(ctx context.Context, r *db.RFP) error
	GetRFP(ctx context.Context, id int) (*db.RFP, error)
	GetRFPs(ctx context.Context) ([]db.RFP, error)
	UpdateRFP(ctx context.Context, r *db.RFP) error
	LockRFPBids(ctx context.Context, id int) (*db.RFP, error)
	GetComparison(ctx context.Context, rfpID int) ([]db.ComparisonRow, error)

	CreateVendor(ctx context.Context, v *db.Vendor) error
	FindVendor(ctx context.Context, name, website string) (*db.Vendor, error)
	GetVendor(ctx context.Context, id int) (*db.Vendor, error)
	GetVendors(ctx context.Context) ([]db.Vendor, error)
	CreateVendorRep(ctx context.Context, rep *db.VendorRep) error
	GetVendorReps(ctx context.Context, vendorID int) ([]db.VendorRep, error)

	CreateBid(ctx context.Context, b *db.Bid, actor string) error
	GetBid(ctx context.Context, id int) (*db.Bid, error)
	GetBidsForRFP(ctx context.Context, rfpID int) ([]db.Bid, error)
	GetAllBids(ctx context.Context) ([]db.Bid, error)
	SaveEvaluation(ctx context.Context, b *db.Bid, snapshot *db.BidEvaluationHistory, actor string) error
	SaveHumanReview(ctx context.Context, b *db.Bid, actor string) error
	SaveBidStatus(ctx context.Context, b *db.Bid, actor string) error
	GetAuditEvents(ctx context.Context, bidID int) ([]db.BidAuditEvent, error)
	GetEvaluationHistory(ctx context.Context, bidID int) ([]db.BidEvaluationHistory, error)

	CreateQA(ctx context.Context, qa *db.VendorQA) error
	GetQA(ctx context.Context, id int) (*db.VendorQA, error)
	GetQAForRFP(ctx context.Context, rfpID int) ([]db.VendorQA, error)
	AnswerQA(ctx context.Context, qa *db.VendorQA) error

	ResetAll(ctx context.Context) error
}
