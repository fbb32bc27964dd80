package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockEvaluateNoRequirements(t *testing.T) {
	eval := MockEvaluate("", "any bid text")
	require.Equal(t, mockBaseScore, eval.Score)
	require.Equal(t, SourceMock, eval.Source)
	require.NotEmpty(t, eval.Reasoning)
	require.Empty(t, eval.Breakdown)
}

func TestMockEvaluateKeywordMatching(t *testing.T) {
	rfpText := "- ISO 9001 certification\n- 24/7 support hotline"
	bidText := "We hold a valid certification under ISO 9001 since 2019."

	eval := MockEvaluate(rfpText, bidText)
	require.Equal(t, SourceMock, eval.Source)
	require.Len(t, eval.Breakdown, 2)
	require.True(t, eval.Breakdown[0].Compliant)
	require.False(t, eval.Breakdown[1].Compliant)
	// Одно из двух требований закрыто
	require.Equal(t, 75.0, eval.Score)
}

func TestMockEvaluateDeterministic(t *testing.T) {
	rfpText := "- delivery within 30 days\n- local presence in Berlin"
	bidText := "Our Berlin office guarantees delivery within four weeks."

	first := MockEvaluate(rfpText, bidText)
	for i := 0; i < 3; i++ {
		require.Equal(t, first, MockEvaluate(rfpText, bidText))
	}
	require.GreaterOrEqual(t, first.Score, 0.0)
	require.LessOrEqual(t, first.Score, 100.0)
}

func TestMockExtract(t *testing.T) {
	text := "Contact: anna.keller@acme-services.de, phone +49 30 1234 5678.\n" +
		"More at www.acme-services.de/about."

	ext := MockExtract(text)
	require.Equal(t, "acme-services.de", ext.Vendor.Domain)
	require.Contains(t, ext.Vendor.Website, "www.acme-services.de")
	require.Len(t, ext.Representatives, 1)
	require.Equal(t, "anna.keller@acme-services.de", ext.Representatives[0].Email)
	require.NotEmpty(t, ext.Representatives[0].Phone)
	// Имя поставщика мок не угадывает
	require.Empty(t, ext.Vendor.Name)
}

func TestMockExtractEmptyText(t *testing.T) {
	ext := MockExtract("no contacts in here")
	require.Empty(t, ext.Vendor.Domain)
	require.Empty(t, ext.Representatives)
}

func TestMockSummarize(t *testing.T) {
	require.Empty(t, MockSummarize("   "))

	short := "We offer full office cleaning with ISO 9001 certified staff."
	require.Equal(t, short, MockSummarize(short))

	long := strings.Repeat("cleaning services for offices and warehouses ", 20)
	sum := MockSummarize(long)
	require.True(t, strings.HasSuffix(sum, "..."))
	require.LessOrEqual(t, len(sum), mockSummaryChars+3)
	require.Equal(t, sum, MockSummarize(long))
}

func TestServiceFallsBackWithoutClient(t *testing.T) {
	svc := NewService(nil)
	require.Equal(t, SourceMock, svc.Provider())

	eval := svc.EvaluateBid(context.Background(), "- warranty of 2 years", "warranty included", "")
	require.Equal(t, SourceMock, eval.Source)

	ext := svc.ExtractVendor(context.Background(), "reach us at www.example.com")
	require.Equal(t, "example.com", ext.Vendor.Domain)

	require.Equal(t, "warranty included", svc.Summarize(context.Background(), "warranty included"))
}

func TestClampScore(t *testing.T) {
	require.Equal(t, 0.0, clampScore(-5))
	require.Equal(t, 100.0, clampScore(250))
	require.Equal(t, 66.6, clampScore(66.6))
}
