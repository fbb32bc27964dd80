// Package lifecycle содержит правила жизненного цикла предложения:
// статусы, блокировку RFP, снимки истории оценок и права персон.
// Все функции чистые: (RFP, Bid, персона) -> решение, без побочных эффектов.
package lifecycle

import (
	"errors"
	"fmt"

	"procure/db"
)

// Статусы предложения
const (
	StatusUploaded  = "Uploaded"
	StatusEvaluated = "Evaluated"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
)

// Статусы RFP
const (
	RFPStatusDraft     = "draft"
	RFPStatusPublished = "published"
	RFPStatusClosed    = "closed"
)

// Ошибки политики: нарушение отклоняет операцию целиком, без частичной записи.
var (
	ErrRFPLocked     = errors.New("bids are locked for this RFP")
	ErrBidTerminal   = errors.New("bid is in a terminal status")
	ErrBadTransition = errors.New("invalid status transition")
	ErrBadPersona    = errors.New("unknown persona")
	ErrForbidden     = errors.New("persona is not allowed to perform this action")
)

// IsTerminal сообщает, достигло ли предложение финального статуса.
func IsTerminal(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

// CanMutate проверяет, допустима ли мутация предложения.
// Блокировка RFP проверяется раньше терминального статуса предложения.
func CanMutate(rfp *db.RFP, bid *db.Bid) error {
	if rfp.BidsLocked {
		return ErrRFPLocked
	}
	if IsTerminal(bid.Status) {
		return ErrBidTerminal
	}
	return nil
}

// CanDecide проверяет переход в терминальный статус. Блокировка RFP здесь
// не проверяется: заморозка фиксирует данные оценки именно для того, чтобы
// по ним можно было принять решение. Повторное решение по терминальному
// предложению — нарушение политики.
func CanDecide(bid *db.Bid, newStatus string) error {
	if newStatus != StatusApproved && newStatus != StatusRejected {
		return fmt.Errorf("%w: %q", ErrBadTransition, newStatus)
	}
	if IsTerminal(bid.Status) {
		return ErrBidTerminal
	}
	return nil
}

// Snapshot копирует текущие поля оценки в строку истории. Вызывается
// непосредственно перед тем, как повторная оценка перезапишет живые поля.
func Snapshot(b *db.Bid) db.BidEvaluationHistory {
	return db.BidEvaluationHistory{
		BidID:       b.ID,
		AIScore:     b.AIScore,
		AIReasoning: b.AIReasoning,
		AIBreakdown: b.AIBreakdown,
		HumanScore:  b.HumanScore,
		HumanNotes:  b.HumanNotes,
	}
}

// IsReevaluation: повторной считается оценка предложения, уже имеющего оценку.
func IsReevaluation(b *db.Bid) bool {
	return b.Status == StatusEvaluated
}
