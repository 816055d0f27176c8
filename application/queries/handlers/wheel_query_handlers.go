package handlers

import (
	"context"

	"axon-backend/application/ports"
	"axon-backend/application/queries"
	"axon-backend/application/report"
	"axon-backend/domain/core/aggregates"
	pkgerrors "axon-backend/pkg/errors"

	"go.uber.org/zap"
)

func readableWheel(ctx context.Context, repo ports.WheelRepository, wheelID, userID string) (*aggregates.Wheel, error) {
	wheel, err := repo.GetByID(ctx, aggregates.WheelID(wheelID))
	if err != nil {
		return nil, err
	}
	if !wheel.CanRead(userID) {
		return nil, pkgerrors.NewAccessDeniedError("Wheel")
	}
	return wheel, nil
}

// GetWheelHandler handles the GetWheelQuery
type GetWheelHandler struct {
	repo   ports.WheelRepository
	logger *zap.Logger
}

// NewGetWheelHandler creates a new handler instance
func NewGetWheelHandler(repo ports.WheelRepository, logger *zap.Logger) *GetWheelHandler {
	return &GetWheelHandler{repo: repo, logger: logger}
}

// Handle returns the wheel document when the caller may read it
func (h *GetWheelHandler) Handle(ctx context.Context, q queries.GetWheelQuery) (aggregates.WheelDocument, error) {
	wheel, err := readableWheel(ctx, h.repo, q.WheelID, q.UserID)
	if err != nil {
		return aggregates.WheelDocument{}, err
	}
	return wheel.Document(), nil
}

// ListWheelsHandler handles the ListWheelsQuery
type ListWheelsHandler struct {
	repo   ports.WheelRepository
	logger *zap.Logger
}

// NewListWheelsHandler creates a new handler instance
func NewListWheelsHandler(repo ports.WheelRepository, logger *zap.Logger) *ListWheelsHandler {
	return &ListWheelsHandler{repo: repo, logger: logger}
}

// Handle returns the user's wheels, most recently modified first
func (h *ListWheelsHandler) Handle(ctx context.Context, q queries.ListWheelsQuery) ([]aggregates.WheelDocument, error) {
	wheels, err := h.repo.ListByOwner(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	docs := make([]aggregates.WheelDocument, 0, len(wheels))
	for _, w := range wheels {
		docs = append(docs, w.Document())
	}
	h.logger.Debug("Listed wheels", zap.String("user_id", q.UserID), zap.Int("count", len(docs)))
	return docs, nil
}

// GenerateReportHandler handles the GenerateReportQuery
type GenerateReportHandler struct {
	repo     ports.WheelRepository
	analyzer *report.Analyzer
	logger   *zap.Logger
}

// NewGenerateReportHandler creates a new handler instance
func NewGenerateReportHandler(repo ports.WheelRepository, analyzer *report.Analyzer, logger *zap.Logger) *GenerateReportHandler {
	return &GenerateReportHandler{repo: repo, analyzer: analyzer, logger: logger}
}

// Handle analyses the wheel's current diagram
func (h *GenerateReportHandler) Handle(ctx context.Context, q queries.GenerateReportQuery) (*report.Report, error) {
	wheel, err := readableWheel(ctx, h.repo, q.WheelID, q.UserID)
	if err != nil {
		return nil, err
	}
	rep, err := h.analyzer.Analyze(wheel.Title(), wheel.Graph())
	if err != nil {
		return nil, err
	}
	h.logger.Debug("Report generated",
		zap.String("wheel_id", q.WheelID),
		zap.Int("key_outcomes", len(rep.KeyOutcomes)))
	return rep, nil
}
