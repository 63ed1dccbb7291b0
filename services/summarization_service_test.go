package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/tests/testutil"
)

type echoSummarizer struct {
	err     error
	prompts []string
}

func (e *echoSummarizer) Summarize(_ context.Context, prompt string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	e.prompts = append(e.prompts, prompt)
	return "summary of " + strings.SplitN(prompt, "\n", 2)[0], nil
}

func TestSummarization_GenerateForVendor(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateVendor(t, db, "V-SUM")
	testutil.CreateOrder(t, db, "V-SUM", "ORD-1", models.OrderTypeItemWise, 2)
	testutil.CreateOrder(t, db, "V-SUM", "ORD-2", models.OrderTypeBatchWise, 5)

	qr := NewQRService(db, textRenderer{})
	ctx := context.Background()
	_, err := qr.GenerateForOrder(ctx, "V-SUM", "ORD-1")
	require.NoError(t, err)
	_, err = qr.GenerateForOrder(ctx, "V-SUM", "ORD-2")
	require.NoError(t, err)

	summarizer := &echoSummarizer{}
	svc := NewSummarizationService(db, NewScopeLoader(db), summarizer)

	result, err := svc.GenerateForVendor(ctx, "V-SUM")
	require.NoError(t, err)
	// one vendor summary, two lots, two batches
	assert.Equal(t, &GenerationResult{VendorID: "V-SUM", Created: 5}, result)
	assert.Contains(t, summarizer.prompts[0], "Lots: 2, Batches: 2, Fittings: 2")

	all, err := svc.List(ctx, ReportFilter{VendorID: "V-SUM"})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	scopes := map[string]int{}
	for _, r := range all {
		scopes[r.Scope]++
		assert.True(t, strings.HasPrefix(r.SummaryID, "SUM-"))
		assert.True(t, strings.HasPrefix(r.SummaryText, "summary of Vendor: V-SUM - "))
	}
	assert.Equal(t, map[string]int{
		models.SummaryScopeVendor: 1,
		models.SummaryScopeLot:    2,
		models.SummaryScopeBatch:  2,
	}, scopes)

	byLot, err := svc.List(ctx, ReportFilter{LotID: "V-SUM-LOT-1"})
	require.NoError(t, err)
	assert.Len(t, byLot, 2)

	byBatch, err := svc.List(ctx, ReportFilter{BatchID: "V-SUM-LOT-2-B1"})
	require.NoError(t, err)
	require.Len(t, byBatch, 1)
	assert.Equal(t, models.SummaryScopeBatch, byBatch[0].Scope)

	limited, err := svc.List(ctx, ReportFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSummarization_Errors(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := NewSummarizationService(db, NewScopeLoader(db), &echoSummarizer{}).GenerateForVendor(ctx, "V-NONE")
	assert.ErrorIs(t, err, ErrVendorNotFound)

	testutil.CreateVendor(t, db, "V-FAIL")
	failing := &echoSummarizer{err: errors.New("upstream down")}
	_, err = NewSummarizationService(db, NewScopeLoader(db), failing).GenerateForVendor(ctx, "V-FAIL")
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.SummaryReport{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, uint64(defaultListLimit), clampLimit(0))
	assert.Equal(t, uint64(defaultListLimit), clampLimit(-4))
	assert.Equal(t, uint64(7), clampLimit(7))
	assert.Equal(t, uint64(maxListLimit), clampLimit(10_000))
}
