// Package layout computes canvas positions for a wheel from its tier and
// parent structure. Every function here is pure: it returns a new graph and
// never touches the input, and identical input always yields identical output.
package layout

import (
	"strings"

	"axon-backend/domain/config"
	"axon-backend/domain/core/aggregates"
	pkgerrors "axon-backend/pkg/errors"

	"go.uber.org/zap"
)

// Strategy selects a layout algorithm
type Strategy string

const (
	StrategyTree   Strategy = "tree"
	StrategyRadial Strategy = "radial"
)

// ParseStrategy maps user input to a Strategy. Empty input means tree.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyTree:
		return StrategyTree, nil
	case StrategyRadial:
		return StrategyRadial, nil
	default:
		return "", pkgerrors.NewValidationError("unknown layout strategy: " + s)
	}
}

// Engine runs layouts with a fixed set of spacing rules
type Engine struct {
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewEngine creates a layout engine. A nil cfg uses the defaults and a nil
// logger discards diagnostics.
func NewEngine(cfg *config.DomainConfig, logger *zap.Logger) *Engine {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger.Named("layout")}
}

// Apply runs the given strategy. Unknown strategies leave g unchanged.
func (e *Engine) Apply(strategy Strategy, g aggregates.Graph) aggregates.Graph {
	switch strategy {
	case StrategyTree:
		return e.Tree(g)
	case StrategyRadial:
		return e.Radial(g)
	default:
		e.logger.Warn("unknown layout strategy", zap.String("strategy", string(strategy)))
		return g.Clone()
	}
}

// skip reports whether g is too small or rootless to lay out
func (e *Engine) skip(name string, g aggregates.Graph) bool {
	if len(g.Nodes) <= 1 {
		return true
	}
	if _, ok := g.Root(); !ok {
		e.logger.Warn("layout skipped: no tier-0 root",
			zap.String("layout", name),
			zap.Int("nodes", len(g.Nodes)))
		return true
	}
	return false
}
