package services

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/vaibhavvyavahare/railtrace/logger"
	"github.com/vaibhavvyavahare/railtrace/models"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// GenerationResult reports how many rows a generation or evaluation run created
type GenerationResult struct {
	VendorID string `json:"vendorId"`
	Created  int    `json:"created"`
}

// ReportFilter narrows a summary report listing
type ReportFilter struct {
	VendorID string
	LotID    string
	BatchID  string
	Limit    int
}

// SummarizationService stores Gemini summaries for a vendor, each of its lots and each batch
type SummarizationService struct {
	db         *gorm.DB
	loader     *ScopeLoader
	summarizer Summarizer
}

// NewSummarizationService creates a summarization service
func NewSummarizationService(db *gorm.DB, loader *ScopeLoader, summarizer Summarizer) *SummarizationService {
	return &SummarizationService{db: db, loader: loader, summarizer: summarizer}
}

func newSummaryID(scopeID string) string {
	return fmt.Sprintf("SUM-%s-%s", scopeID, uuid.NewString()[:8])
}

// GenerateForVendor writes one vendor summary, one per lot and one per batch.
// All summaries are produced before any row is stored.
func (s *SummarizationService) GenerateForVendor(ctx context.Context, vendorID string) (*GenerationResult, error) {
	scope, err := s.loader.Vendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	fittingsByBatch := lo.GroupBy(scope.Fittings, func(f models.Fitting) string { return f.BatchID })
	batchesByLot := lo.GroupBy(scope.Batches, func(b models.Batch) string { return b.LotID })
	fittingBatch := lo.SliceToMap(scope.Fittings, func(f models.Fitting) (string, string) { return f.FittingID, f.BatchID })
	installsByBatch := lo.CountValuesBy(scope.Installations, func(r models.InstallationRecord) string { return fittingBatch[r.FittingID] })
	maintsByBatch := lo.CountValuesBy(scope.Maintenances, func(r models.MaintenanceRecord) string { return fittingBatch[r.FittingID] })

	counts := func(batches []models.Batch, lots int) summaryCounts {
		c := summaryCounts{Vendor: scope.Vendor, Lots: lots, Batches: len(batches)}
		for _, b := range batches {
			c.Fittings += len(fittingsByBatch[b.BatchID])
			c.Installations += installsByBatch[b.BatchID]
			c.Maintenances += maintsByBatch[b.BatchID]
		}
		return c
	}

	var reports []models.SummaryReport
	add := func(prompt, scopeID string, lotID, batchID *string, kind string) error {
		text, err := s.summarizer.Summarize(ctx, prompt)
		if err != nil {
			return err
		}
		reports = append(reports, models.SummaryReport{
			SummaryID:   newSummaryID(scopeID),
			VendorID:    vendorID,
			LotID:       lotID,
			BatchID:     batchID,
			Scope:       kind,
			SummaryText: text,
		})
		return nil
	}

	if err := add(summaryPrompt(counts(scope.Batches, len(scope.Lots))), vendorID, nil, nil, models.SummaryScopeVendor); err != nil {
		return nil, err
	}
	for _, lot := range scope.Lots {
		lotID := lot.LotID
		if err := add(summaryPrompt(counts(batchesByLot[lotID], 1)), lotID, &lotID, nil, models.SummaryScopeLot); err != nil {
			return nil, err
		}
	}
	for _, batch := range scope.Batches {
		lotID, batchID := batch.LotID, batch.BatchID
		prompt := summaryPrompt(counts([]models.Batch{batch}, len(scope.Lots)))
		if err := add(prompt, batchID, &lotID, &batchID, models.SummaryScopeBatch); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&reports, 100).Error; err != nil {
		return nil, dbError("Failed to store summaries", err)
	}

	logger.FromContext(ctx).Info().Str("vendor_id", vendorID).Int("created", len(reports)).Msg("summaries generated")
	return &GenerationResult{VendorID: vendorID, Created: len(reports)}, nil
}

// List returns stored summaries, newest first
func (s *SummarizationService) List(ctx context.Context, f ReportFilter) ([]models.SummaryReport, error) {
	where := sq.Eq{}
	if f.VendorID != "" {
		where["vendor_id"] = f.VendorID
	}
	if f.LotID != "" {
		where["lot_id"] = f.LotID
	}
	if f.BatchID != "" {
		where["batch_id"] = f.BatchID
	}

	query, args, err := sq.Select("*").
		From(models.SummaryReport{}.TableName()).
		Where(where).
		OrderBy("created_at DESC").
		Limit(clampLimit(f.Limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build summary query: %w", err)
	}

	reports := []models.SummaryReport{}
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&reports).Error; err != nil {
		return nil, dbError("Failed to list summaries", err)
	}
	return reports, nil
}

func clampLimit(limit int) uint64 {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	}
	return uint64(limit)
}
