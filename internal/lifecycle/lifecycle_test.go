package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"procure/db"
	"procure/internal/lifecycle"
	"procure/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestCanMutate(t *testing.T) {
	rfp := &db.RFP{ID: 1}
	bid := &db.Bid{ID: 1, RFPID: 1, Status: lifecycle.StatusEvaluated}

	require.NoError(t, lifecycle.CanMutate(rfp, bid))

	// Терминальный статус запрещает мутацию
	bid.Status = lifecycle.StatusApproved
	require.ErrorIs(t, lifecycle.CanMutate(rfp, bid), lifecycle.ErrBidTerminal)

	bid.Status = lifecycle.StatusRejected
	require.ErrorIs(t, lifecycle.CanMutate(rfp, bid), lifecycle.ErrBidTerminal)
}

func TestCanMutateLockCheckedBeforeTerminal(t *testing.T) {
	// Блокировка RFP проверяется раньше статуса предложения
	rfp := &db.RFP{ID: 1, BidsLocked: true}
	bid := &db.Bid{ID: 1, RFPID: 1, Status: lifecycle.StatusApproved}
	require.ErrorIs(t, lifecycle.CanMutate(rfp, bid), lifecycle.ErrRFPLocked)

	bid.Status = lifecycle.StatusUploaded
	require.ErrorIs(t, lifecycle.CanMutate(rfp, bid), lifecycle.ErrRFPLocked)
}

func TestCanDecide(t *testing.T) {
	bid := &db.Bid{ID: 1, RFPID: 1, Status: lifecycle.StatusEvaluated}

	require.NoError(t, lifecycle.CanDecide(bid, lifecycle.StatusApproved))
	require.NoError(t, lifecycle.CanDecide(bid, lifecycle.StatusRejected))
	require.ErrorIs(t, lifecycle.CanDecide(bid, "Published"), lifecycle.ErrBadTransition)

	// Решение возможно из любого нетерминального статуса
	require.NoError(t, lifecycle.CanDecide(&db.Bid{Status: lifecycle.StatusUploaded}, lifecycle.StatusRejected))

	// Повторное решение по уже решённому предложению отклоняется
	bid.Status = lifecycle.StatusApproved
	require.ErrorIs(t, lifecycle.CanDecide(bid, lifecycle.StatusApproved), lifecycle.ErrBidTerminal)
	require.ErrorIs(t, lifecycle.CanDecide(bid, lifecycle.StatusRejected), lifecycle.ErrBidTerminal)
}

func TestSnapshot(t *testing.T) {
	bid := &db.Bid{
		ID:          7,
		Status:      lifecycle.StatusEvaluated,
		AIScore:     floatPtr(72.5),
		AIReasoning: "solid bid",
		AIBreakdown: models.RequirementChecks{
			{Requirement: "ISO 9001", Compliant: true, Note: "certificate attached"},
		},
		HumanScore: floatPtr(80),
		HumanNotes: "please recheck clause 4",
	}

	snap := lifecycle.Snapshot(bid)
	require.Equal(t, 7, snap.BidID)
	require.Equal(t, bid.AIScore, snap.AIScore)
	require.Equal(t, "solid bid", snap.AIReasoning)
	require.Equal(t, bid.AIBreakdown, snap.AIBreakdown)
	require.Equal(t, bid.HumanScore, snap.HumanScore)
	require.Equal(t, "please recheck clause 4", snap.HumanNotes)
}

func TestIsReevaluation(t *testing.T) {
	require.False(t, lifecycle.IsReevaluation(&db.Bid{Status: lifecycle.StatusUploaded}))
	require.True(t, lifecycle.IsReevaluation(&db.Bid{Status: lifecycle.StatusEvaluated}))
}

func TestCorrectPages(t *testing.T) {
	chunks := models.TextChunks{"alpha beta", "gamma delta"}

	anns := lifecycle.CorrectPages(models.Annotations{
		{Quote: "gamma", Reason: "check"},
	}, chunks)
	require.NotNil(t, anns[0].Page)
	require.Equal(t, 2, *anns[0].Page)

	// Отсутствующая цитата — страница не присваивается
	anns = lifecycle.CorrectPages(models.Annotations{
		{Quote: "epsilon", Reason: "check"},
	}, chunks)
	require.Nil(t, anns[0].Page)
}

func TestCorrectPagesFirstMatchWins(t *testing.T) {
	chunks := models.TextChunks{"payment terms", "payment terms repeated"}
	anns := lifecycle.CorrectPages(models.Annotations{{Quote: "payment terms"}}, chunks)
	require.Equal(t, 1, *anns[0].Page)
}

func TestCorrectPagesCaseSensitive(t *testing.T) {
	chunks := models.TextChunks{"Gamma delta"}
	anns := lifecycle.CorrectPages(models.Annotations{{Quote: "gamma"}}, chunks)
	require.Nil(t, anns[0].Page)
}

func TestCorrectPagesOverridesModelClaim(t *testing.T) {
	// Модель не видит границ страниц: её номер страницы пересчитывается
	claimed := 9
	chunks := models.TextChunks{"alpha", "beta"}
	anns := lifecycle.CorrectPages(models.Annotations{{Quote: "beta", Page: &claimed}}, chunks)
	require.Equal(t, 2, *anns[0].Page)
}

func TestAuthorize(t *testing.T) {
	require.NoError(t, lifecycle.Authorize(lifecycle.PersonaApprover, lifecycle.ActionDecide))
	require.NoError(t, lifecycle.Authorize(lifecycle.PersonaReviewer, lifecycle.ActionReview))
	require.NoError(t, lifecycle.Authorize(lifecycle.PersonaBidManager, lifecycle.ActionUpload))
	require.NoError(t, lifecycle.Authorize(lifecycle.PersonaAdmin, lifecycle.ActionReset))

	require.ErrorIs(t, lifecycle.Authorize(lifecycle.PersonaReviewer, lifecycle.ActionDecide), lifecycle.ErrForbidden)
	require.ErrorIs(t, lifecycle.Authorize(lifecycle.PersonaAuditor, lifecycle.ActionReview), lifecycle.ErrForbidden)
	require.ErrorIs(t, lifecycle.Authorize("Hacker", lifecycle.ActionReview), lifecycle.ErrBadPersona)
}

func TestValidPersona(t *testing.T) {
	require.True(t, lifecycle.ValidPersona(lifecycle.PersonaAuditor))
	require.False(t, lifecycle.ValidPersona(""))
	require.False(t, lifecycle.ValidPersona("Root"))
}
