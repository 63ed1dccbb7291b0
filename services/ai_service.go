package services

import (
	"context"

	"github.com/vaibhavvyavahare/railtrace/logger"
)

// Analysis pairs the data a prompt was built from with the model's analysis
type Analysis struct {
	Data       interface{} `json:"data"`
	AIAnalysis interface{} `json:"aiAnalysis"`
}

// AIService produces Sarvam-backed analyses for vendors, lots, batches and the whole system
type AIService struct {
	loader    *ScopeLoader
	completer TextCompleter
	ownerID   string
}

// NewAIService creates an analysis service
func NewAIService(loader *ScopeLoader, completer TextCompleter) *AIService {
	return &AIService{loader: loader, completer: completer}
}

// WithOwner restricts lot and batch analyses to one vendor's records.
// Records of other vendors are reported as not found.
func (s *AIService) WithOwner(vendorID string) *AIService {
	s.ownerID = vendorID
	return s
}

func (s *AIService) ownedBy(vendorID string) bool {
	return s.ownerID == "" || s.ownerID == vendorID
}

func (s *AIService) analyze(ctx context.Context, kind, prompt string, opts CompletionOptions) (interface{}, error) {
	raw, err := s.completer.Complete(ctx, prompt, opts)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("analysis", kind).Msg("ai completion failed")
		return nil, err
	}
	return ParseAnalysis(raw), nil
}

// VendorSummary analyzes one vendor's lots, batches, fittings and records
func (s *AIService) VendorSummary(ctx context.Context, vendorID string) (*Analysis, error) {
	if !s.ownedBy(vendorID) {
		return nil, ErrVendorNotFound
	}
	scope, err := s.loader.Vendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	analysis, err := s.analyze(ctx, "vendor", vendorPrompt(scope), CompletionOptions{MaxTokens: 1500, Temperature: 0.3})
	if err != nil {
		return nil, err
	}
	return &Analysis{Data: scope, AIAnalysis: analysis}, nil
}

// BatchSummary analyzes one batch
func (s *AIService) BatchSummary(ctx context.Context, batchID string) (*Analysis, error) {
	scope, err := s.loader.Batch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !s.ownedBy(scope.VendorID()) {
		return nil, ErrBatchNotFound
	}
	analysis, err := s.analyze(ctx, "batch", batchPrompt(scope), CompletionOptions{MaxTokens: 1000, Temperature: 0.3})
	if err != nil {
		return nil, err
	}
	return &Analysis{Data: scope, AIAnalysis: analysis}, nil
}

// LotSummary analyzes one lot
func (s *AIService) LotSummary(ctx context.Context, lotID string) (*Analysis, error) {
	scope, err := s.loader.Lot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if !s.ownedBy(scope.Lot.VendorID) {
		return nil, ErrLotNotFound
	}
	analysis, err := s.analyze(ctx, "lot", lotPrompt(scope), CompletionOptions{MaxTokens: 1200, Temperature: 0.3})
	if err != nil {
		return nil, err
	}
	return &Analysis{Data: scope, AIAnalysis: analysis}, nil
}

// PerformanceReport analyzes the whole system
func (s *AIService) PerformanceReport(ctx context.Context) (*Analysis, error) {
	snap, err := s.loader.System(ctx)
	if err != nil {
		return nil, err
	}
	analysis, err := s.analyze(ctx, "performance", performancePrompt(snap), CompletionOptions{MaxTokens: 2000, Temperature: 0.3})
	if err != nil {
		return nil, err
	}
	return &Analysis{Data: snap, AIAnalysis: analysis}, nil
}

// MaintenanceAlerts asks the model for alerts derived from all maintenance records
func (s *AIService) MaintenanceAlerts(ctx context.Context) (interface{}, error) {
	views, err := s.loader.Maintenance(ctx)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, "maintenance_alerts", maintenanceAlertsPrompt(views), CompletionOptions{MaxTokens: 1000, Temperature: 0.2})
}
