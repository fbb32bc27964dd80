package lifecycle

import "fmt"

// Персоны — имитация ролей без аутентификации. Персона приходит явным
// параметром от вызывающего, глобального "текущего пользователя" нет.
const (
	PersonaBidManager = "Bid Manager"
	PersonaReviewer   = "Reviewer"
	PersonaApprover   = "Approver"
	PersonaAuditor    = "Auditor"
	PersonaAdmin      = "Admin"
)

// Действия движка жизненного цикла
const (
	ActionUpload    = "upload"
	ActionEvaluate  = "evaluate"
	ActionReview    = "review"
	ActionDecide    = "decide"
	ActionManageRFP = "manage_rfp"
	ActionLock      = "lock"
	ActionAnswerQA  = "answer_qa"
	ActionReset     = "reset"
)

var personaActions = map[string]map[string]bool{
	PersonaBidManager: {
		ActionUpload:    true,
		ActionEvaluate:  true,
		ActionManageRFP: true,
		ActionLock:      true,
		ActionAnswerQA:  true,
	},
	PersonaReviewer: {
		ActionEvaluate: true,
		ActionReview:   true,
	},
	PersonaApprover: {
		ActionDecide: true,
	},
	// Auditor только читает
	PersonaAuditor: {},
	PersonaAdmin: {
		ActionUpload:    true,
		ActionEvaluate:  true,
		ActionReview:    true,
		ActionDecide:    true,
		ActionManageRFP: true,
		ActionLock:      true,
		ActionAnswerQA:  true,
		ActionReset:     true,
	},
}

// ValidPersona проверяет, что персона известна системе.
func ValidPersona(p string) bool {
	_, ok := personaActions[p]
	return ok
}

// Authorize — чистая функция (персона, действие) -> разрешение.
func Authorize(persona, action string) error {
	allowed, ok := personaActions[persona]
	if !ok {
		return fmt.Errorf("%w: %q", ErrBadPersona, persona)
	}
	if !allowed[action] {
		return fmt.Errorf("%w: %s cannot %s", ErrForbidden, persona, action)
	}
	return nil
}
