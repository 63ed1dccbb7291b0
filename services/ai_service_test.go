package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/tests/testutil"
)

type recordingCompleter struct {
	response json.RawMessage
	err      error
	prompts  []string
	opts     []CompletionOptions
}

func (r *recordingCompleter) Complete(_ context.Context, prompt string, opts CompletionOptions) (json.RawMessage, error) {
	r.prompts = append(r.prompts, prompt)
	r.opts = append(r.opts, opts)
	if r.err != nil {
		return nil, r.err
	}
	return r.response, nil
}

func TestAIService_VendorSummary(t *testing.T) {
	db := testutil.NewTestDB(t)
	vendor := testutil.CreateVendor(t, db, "V-AI")
	testutil.CreateWorker(t, db, "W-AI")
	order := testutil.CreateOrder(t, db, "V-AI", "ORD-AI", models.OrderTypeItemWise, 1)
	_, _, fitting := testutil.CreateFittingChain(t, db, order, 1)

	_, err := NewFieldService(db).RecordInstallation(context.Background(), InstallationInput{FittingID: fitting.FittingID, WorkerID: "W-AI"})
	require.NoError(t, err)

	completer := &recordingCompleter{response: json.RawMessage(`{"performance_score":8}`)}
	svc := NewAIService(NewScopeLoader(db), completer)

	analysis, err := svc.VendorSummary(context.Background(), "V-AI")
	require.NoError(t, err)

	scope, ok := analysis.Data.(*VendorScope)
	require.True(t, ok)
	assert.Equal(t, vendor.VendorName, scope.Vendor.VendorName)
	assert.Len(t, scope.Lots, 1)
	assert.Len(t, scope.Fittings, 1)
	assert.Len(t, scope.Installations, 1)
	assert.Equal(t, map[string]interface{}{"performance_score": float64(8)}, analysis.AIAnalysis)

	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "V-AI")
	assert.Equal(t, CompletionOptions{MaxTokens: 1500, Temperature: 0.3}, completer.opts[0])
}

func TestAIService_ScopeSummaries(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateVendor(t, db, "V-S")
	order := testutil.CreateOrder(t, db, "V-S", "ORD-S", models.OrderTypeItemWise, 1)
	lot, batch, _ := testutil.CreateFittingChain(t, db, order, 1)

	completer := &recordingCompleter{response: json.RawMessage(`"not json at all"`)}
	svc := NewAIService(NewScopeLoader(db), completer)
	ctx := context.Background()

	batchAnalysis, err := svc.BatchSummary(ctx, batch.BatchID)
	require.NoError(t, err)
	batchScope := batchAnalysis.Data.(*BatchScope)
	assert.Equal(t, lot.LotID, batchScope.Lot.LotID)
	assert.Equal(t, "ORD-S", batchScope.Order.OrderID)
	assert.Equal(t, "V-S", batchScope.Vendor.VendorID)
	assert.Equal(t, map[string]interface{}{
		"raw_response": "not json at all",
		"parse_error":  "Could not parse as JSON",
	}, batchAnalysis.AIAnalysis)

	lotAnalysis, err := svc.LotSummary(ctx, lot.LotID)
	require.NoError(t, err)
	assert.Len(t, lotAnalysis.Data.(*LotScope).Batches, 1)

	report, err := svc.PerformanceReport(ctx)
	require.NoError(t, err)
	snapshot := report.Data.(*SystemSnapshot)
	assert.Len(t, snapshot.Vendors, 1)
	assert.Len(t, snapshot.Orders, 1)

	_, err = svc.MaintenanceAlerts(ctx)
	require.NoError(t, err)

	assert.Equal(t, []CompletionOptions{
		{MaxTokens: 1000, Temperature: 0.3},
		{MaxTokens: 1200, Temperature: 0.3},
		{MaxTokens: 2000, Temperature: 0.3},
		{MaxTokens: 1000, Temperature: 0.2},
	}, completer.opts)
}

func TestAIService_Errors(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	t.Run("unknown scopes are not found", func(t *testing.T) {
		completer := &recordingCompleter{response: json.RawMessage(`{}`)}
		svc := NewAIService(NewScopeLoader(db), completer)

		_, err := svc.VendorSummary(ctx, "V-NOPE")
		assert.ErrorIs(t, err, ErrVendorNotFound)
		_, err = svc.LotSummary(ctx, "V-NOPE-LOT-1")
		assert.ErrorIs(t, err, ErrLotNotFound)
		_, err = svc.BatchSummary(ctx, "V-NOPE-LOT-1-B1")
		assert.ErrorIs(t, err, ErrBatchNotFound)
		assert.Empty(t, completer.prompts)
	})

	t.Run("owner restriction hides other vendors' records", func(t *testing.T) {
		testutil.CreateVendor(t, db, "V-OWN")
		testutil.CreateVendor(t, db, "V-OTHER")
		order := testutil.CreateOrder(t, db, "V-OTHER", "ORD-OTHER", models.OrderTypeItemWise, 1)
		lot, batch, _ := testutil.CreateFittingChain(t, db, order, 1)

		completer := &recordingCompleter{response: json.RawMessage(`{}`)}
		svc := NewAIService(NewScopeLoader(db), completer).WithOwner("V-OWN")

		_, err := svc.VendorSummary(ctx, "V-OTHER")
		assert.ErrorIs(t, err, ErrVendorNotFound)
		_, err = svc.LotSummary(ctx, lot.LotID)
		assert.ErrorIs(t, err, ErrLotNotFound)
		_, err = svc.BatchSummary(ctx, batch.BatchID)
		assert.ErrorIs(t, err, ErrBatchNotFound)
		assert.Empty(t, completer.prompts)

		owner := NewAIService(NewScopeLoader(db), completer).WithOwner("V-OTHER")
		_, err = owner.BatchSummary(ctx, batch.BatchID)
		assert.NoError(t, err)
	})

	t.Run("upstream failure is returned", func(t *testing.T) {
		testutil.CreateVendor(t, db, "V-UP")
		completer := &recordingCompleter{err: ErrAIUpstream.WithDetail("Sarvam AI API error: boom")}
		svc := NewAIService(NewScopeLoader(db), completer)

		_, err := svc.VendorSummary(ctx, "V-UP")
		assert.ErrorIs(t, err, ErrAIUpstream)
	})
}
