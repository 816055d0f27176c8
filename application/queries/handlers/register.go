package handlers

import (
	"axon-backend/application/ports"
	"axon-backend/application/queries"
	"axon-backend/application/queries/bus"
	"axon-backend/application/report"
	"axon-backend/domain/config"

	"go.uber.org/zap"
)

// Register wires every wheel query handler into b
func Register(b *bus.QueryBus, repo ports.WheelRepository, cfg *config.DomainConfig, logger *zap.Logger) error {
	get := NewGetWheelHandler(repo, logger)
	list := NewListWheelsHandler(repo, logger)
	rep := NewGenerateReportHandler(repo, report.NewAnalyzer(cfg), logger)

	if err := b.Register(queries.GetWheelQuery{}, bus.Typed(get.Handle)); err != nil {
		return err
	}
	if err := b.Register(queries.ListWheelsQuery{}, bus.Typed(list.Handle)); err != nil {
		return err
	}
	return b.Register(queries.GenerateReportQuery{}, bus.Typed(rep.Handle))
}
