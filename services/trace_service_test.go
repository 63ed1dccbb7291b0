package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/tests/testutil"
)

func TestScan_RoundTripsGeneratedPayloads(t *testing.T) {
	db := testutil.NewTestDB(t)
	vendor := testutil.CreateVendor(t, db, "V-T")
	testutil.CreateOrder(t, db, "V-T", "ORD-ITEM", models.OrderTypeItemWise, 2)
	testutil.CreateOrder(t, db, "V-T", "ORD-BATCH", models.OrderTypeBatchWise, 10)

	qr := NewQRService(db, textRenderer{})
	trace := NewTraceService(db, NewFileService(db, nil))
	ctx := context.Background()

	itemCodes, err := qr.GenerateForOrder(ctx, "V-T", "ORD-ITEM")
	require.NoError(t, err)
	batchCodes, err := qr.GenerateForOrder(ctx, "V-T", "ORD-BATCH")
	require.NoError(t, err)

	for _, code := range itemCodes {
		result, err := trace.Scan(ctx, strings.TrimPrefix(code.URL, "text:"))
		require.NoError(t, err)
		assert.Equal(t, models.QRTypeItem, result.Type)
		assert.Equal(t, code.ID, result.FittingID)
		assert.Equal(t, "V-T-LOT-1-B1", result.BatchID)
		assert.Equal(t, "V-T-LOT-1", result.LotID)
		assert.Equal(t, "ORD-ITEM", result.OrderID)
		assert.Equal(t, "V-T", result.VendorID)
		assert.Equal(t, vendor.VendorName, result.VendorName)
		assert.Equal(t, models.FittingStatusNew, result.Status)
		assert.Nil(t, result.Installation)
		assert.Empty(t, result.Maintenance)
	}

	result, err := trace.Scan(ctx, strings.TrimPrefix(batchCodes[0].URL, "text:"))
	require.NoError(t, err)
	assert.Equal(t, models.QRTypeBatch, result.Type)
	assert.Empty(t, result.FittingID)
	assert.Equal(t, "V-T-LOT-2-B1", result.BatchID)
	assert.Equal(t, "ORD-BATCH", result.OrderID)
	assert.Equal(t, models.FittingStatusNew, result.Status)
}

func TestScan_IncludesInstallationAndMaintenance(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateVendor(t, db, "V-H")
	testutil.CreateWorker(t, db, "W-H")
	order := testutil.CreateOrder(t, db, "V-H", "ORD-H", models.OrderTypeItemWise, 1)
	_, batch, fitting := testutil.CreateFittingChain(t, db, order, 1)
	ctx := context.Background()

	field := NewFieldService(db)
	_, err := field.RecordInstallation(ctx, InstallationInput{FittingID: fitting.FittingID, WorkerID: "W-H", LocationLat: ptr(12.9)})
	require.NoError(t, err)
	_, err = field.ReportIssue(ctx, WorkerMaintenanceInput{FittingID: fitting.FittingID, WorkerID: "W-H", IssueDescription: "rust"})
	require.NoError(t, err)

	raw, err := EncodeQRPayload(itemPayload(&order, batch.BatchID, fitting.FittingID))
	require.NoError(t, err)

	result, err := NewTraceService(db, NewFileService(db, nil)).Scan(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, result.Installation)
	assert.Equal(t, "W-H", result.Installation.WorkerID)
	assert.Equal(t, 12.9, *result.Installation.LocationLat)
	require.Len(t, result.Maintenance, 1)
	assert.Equal(t, "rust", result.Maintenance[0].IssueDescription)
	assert.Equal(t, models.FittingStatusMaintenanceRequired, result.Status)
}

func TestScan_Rejections(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateVendor(t, db, "V-S")
	order := testutil.CreateOrder(t, db, "V-S", "ORD-S", models.OrderTypeItemWise, 1)
	_, batch, _ := testutil.CreateFittingChain(t, db, order, 1)
	trace := NewTraceService(db, NewFileService(db, nil))

	tests := []struct {
		name    string
		payload models.QRPayload
		raw     string
		wantErr error
	}{
		{name: "garbage", raw: "not a qr payload", wantErr: ErrInvalidQRData},
		{
			name:    "unknown batch",
			payload: models.QRPayload{Type: models.QRTypeBatch, BatchID: "NOPE", OrderID: "ORD-S", VendorID: "V-S"},
			wantErr: ErrBatchNotFound,
		},
		{
			name:    "vendor does not match",
			payload: models.QRPayload{Type: models.QRTypeBatch, BatchID: batch.BatchID, OrderID: "ORD-S", VendorID: "V-EVIL"},
			wantErr: ErrInvalidQRData,
		},
		{
			name:    "fitting from another batch",
			payload: models.QRPayload{Type: models.QRTypeItem, FittingID: "OTHER-ITEM-1", BatchID: batch.BatchID, OrderID: "ORD-S", VendorID: "V-S"},
			wantErr: ErrFittingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			if raw == "" {
				var err error
				raw, err = EncodeQRPayload(tt.payload)
				require.NoError(t, err)
			}
			_, err := trace.Scan(context.Background(), raw)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFittingDetails(t *testing.T) {
	db := testutil.NewTestDB(t)
	vendor := testutil.CreateVendor(t, db, "V-D")
	worker := testutil.CreateWorker(t, db, "W-D")
	testutil.CreateOfficer(t, db, "O-D")
	order := testutil.CreateOrder(t, db, "V-D", "ORD-D", models.OrderTypeItemWise, 1)
	_, batch, fitting := testutil.CreateFittingChain(t, db, order, 1)
	ctx := context.Background()

	storage := NewMockS3Service()
	trace := NewTraceService(db, NewFileService(db, storage))

	field := NewFieldService(db)
	_, err := field.RecordInstallation(ctx, InstallationInput{FittingID: fitting.FittingID, WorkerID: "W-D", Notes: ptr("north end")})
	require.NoError(t, err)
	_, err = field.LogMaintenance(ctx, OfficerMaintenanceInput{FittingID: fitting.FittingID, OfficerID: "O-D", IssueDescription: "checked", Status: models.MaintenanceStatusResolved})
	require.NoError(t, err)
	key := "attachments/" + fitting.FittingID + "/file-1_report.pdf"
	require.NoError(t, storage.UploadObject(ctx, key, "application/pdf", []byte("%PDF-1.4")))
	require.NoError(t, db.Create(&models.File{
		FileID:     "file-1",
		RelatedID:  fitting.FittingID,
		FileName:   "report.pdf",
		StorageKey: key,
	}).Error)

	details, err := trace.FittingDetails(ctx, fitting.FittingID)
	require.NoError(t, err)

	assert.Equal(t, fitting.FittingID, details.FittingID)
	assert.Equal(t, models.FittingStatusInspected, details.FittingStatus)
	assert.Equal(t, batch.BatchID, details.BatchID)
	assert.Equal(t, "ORD-D", details.OrderID)
	assert.Equal(t, vendor.VendorName, details.VendorName)
	require.NotNil(t, details.InstallerName)
	assert.Equal(t, worker.WorkerName, *details.InstallerName)
	require.NotNil(t, details.InstallationNotes)
	assert.Equal(t, "north end", *details.InstallationNotes)
	require.Len(t, details.MaintenanceRecords, 1)
	require.Len(t, details.AssociatedFiles, 1)
	require.NotNil(t, details.AssociatedFiles[0].URL)
	assert.Contains(t, *details.AssociatedFiles[0].URL, "file-1_report.pdf")

	_, err = trace.FittingDetails(ctx, "missing")
	assert.ErrorIs(t, err, ErrFittingNotFound)
}
