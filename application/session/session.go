// Package session is the live editing state of one wheel: the graph being
// edited, its undo history and the glue to fetch and save it. A Session is
// an explicit value owned by its caller; nothing here is global.
package session

import (
	"context"
	"sync"

	"axon-backend/application/reconcile"
	"axon-backend/domain/config"
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/validators"
	"axon-backend/domain/layout"
	"axon-backend/domain/services"
	"axon-backend/domain/versioning"
	pkgerrors "axon-backend/pkg/errors"

	"go.uber.org/zap"
)

// Fetcher loads the authoritative copy of a wheel
type Fetcher interface {
	FetchWheel(ctx context.Context, wheelID string) (aggregates.WheelDocument, error)
}

// Saver persists a wheel's content
type Saver interface {
	SaveWheel(ctx context.Context, wheelID string, payload SavePayload) error
}

// SavePayload is the body of a save: the whole diagram plus its title
type SavePayload struct {
	Title string          `json:"title"`
	Nodes []entities.Node `json:"nodes"`
	Edges []entities.Edge `json:"edges"`
}

// Options configures a Session
type Options struct {
	Config   *config.DomainConfig
	Logger   *zap.Logger
	Strategy layout.Strategy
	Fetcher  Fetcher
	Saver    Saver
}

// Option is a functional option for configuring a Session
type Option func(*Options)

func WithConfig(cfg *config.DomainConfig) Option {
	return func(o *Options) { o.Config = cfg }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithStrategy sets the layout used on load and after adding nodes
func WithStrategy(s layout.Strategy) Option {
	return func(o *Options) { o.Strategy = s }
}

func WithFetcher(f Fetcher) Option {
	return func(o *Options) { o.Fetcher = f }
}

func WithSaver(s Saver) Option {
	return func(o *Options) { o.Saver = s }
}

// Session holds one user's edits to one wheel.
//
// All methods are safe for concurrent use. Edits are applied under a mutex;
// network calls in Refresh and Save run outside it so editing never waits on
// I/O. A refresh that resolves late is merged against the graph as it is
// when the response arrives.
type Session struct {
	mu sync.Mutex

	userID  string
	wheelID string
	title   string
	graph   aggregates.Graph
	loaded  bool

	// generation changes whenever the session switches wheels or closes;
	// refreshes issued under an older generation are dropped
	generation uint64
	// refreshSeq numbers refresh requests; appliedSeq is the newest applied
	refreshSeq uint64
	appliedSeq uint64

	savedChecksum string

	cfg        *config.DomainConfig
	strategy   layout.Strategy
	engine     *layout.Engine
	history    *versioning.History
	reconciler *reconcile.Reconciler
	votes      *services.VoteAggregator
	validator  *validators.GraphValidator
	fetcher    Fetcher
	saver      Saver
	logger     *zap.Logger
}

// New creates an empty session for userID. Load or Open must be called
// before editing.
func New(userID string, opts ...Option) *Session {
	o := Options{Strategy: layout.StrategyTree}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Config == nil {
		o.Config = config.DefaultDomainConfig()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	logger := o.Logger.Named("session").With(zap.String("user_id", userID))
	engine := layout.NewEngine(o.Config, logger)

	return &Session{
		userID:     userID,
		cfg:        o.Config,
		strategy:   o.Strategy,
		engine:     engine,
		history:    versioning.NewHistory(o.Config.HistoryLimit),
		reconciler: reconcile.NewReconciler(engine, o.Strategy, logger),
		votes:      services.NewVoteAggregator(o.Config),
		validator:  validators.NewGraphValidator(o.Config),
		fetcher:    o.Fetcher,
		saver:      o.Saver,
		logger:     logger,
	}
}

// Load replaces the session contents with doc. The graph is laid out from
// scratch, history is cleared and any refresh still in flight is dropped.
func (s *Session) Load(doc aggregates.WheelDocument) error {
	remote := doc.Graph()
	if err := s.validator.ValidateStructure(remote); err != nil {
		return err
	}
	laid := s.reconciler.Load(remote)
	sum, _ := versioning.Checksum(laid)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.wheelID = doc.ID
	s.title = doc.Title
	s.graph = laid
	s.loaded = true
	s.generation++
	s.appliedSeq = s.refreshSeq
	s.savedChecksum = sum
	s.history.Reset()

	s.logger.Info("wheel loaded",
		zap.String("wheel_id", doc.ID),
		zap.Int("nodes", len(laid.Nodes)),
		zap.Int("edges", len(laid.Edges)))
	return nil
}

// Open fetches wheelID and loads it
func (s *Session) Open(ctx context.Context, wheelID string) error {
	if s.fetcher == nil {
		return pkgerrors.NewInternalError("session has no fetcher")
	}
	doc, err := s.fetcher.FetchWheel(ctx, wheelID)
	if err != nil {
		return pkgerrors.Wrap(err, "fetch wheel")
	}
	return s.Load(doc)
}

// Close ends the session. In-flight refreshes are dropped when they return.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.generation++
	s.history.Reset()
}

// Graph returns a copy of the current graph
func (s *Session) Graph() aggregates.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Clone()
}

func (s *Session) WheelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wheelID
}

func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Loaded reports whether a wheel is open
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// Dirty reports whether the graph differs from what was last loaded or saved
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, err := versioning.Checksum(s.graph)
	return err != nil || sum != s.savedChecksum
}

// Undo restores the state before the most recent edit. It reports whether
// there was anything to undo.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.history.Undo(s.graph)
	s.graph = g
	return ok
}

// Redo reapplies the most recently undone edit
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.history.Redo(s.graph)
	s.graph = g
	return ok
}

// RefreshTicket identifies one background refresh request
type RefreshTicket struct {
	WheelID    string
	generation uint64
	seq        uint64
}

// BeginRefresh issues a ticket for a refresh of the open wheel
func (s *Session) BeginRefresh() (RefreshTicket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return RefreshTicket{}, false
	}
	s.refreshSeq++
	return RefreshTicket{WheelID: s.wheelID, generation: s.generation, seq: s.refreshSeq}, true
}

// ApplyRefresh merges doc into the current graph. It reports false and
// changes nothing when the ticket was superseded: the session moved to
// another wheel or closed, or a newer refresh was already applied.
// A session without unsaved edits is not dirty after the merge.
func (s *Session) ApplyRefresh(ticket RefreshTicket, doc aggregates.WheelDocument) bool {
	remote := doc.Graph()
	if err := s.validator.ValidateStructure(remote); err != nil {
		s.logger.Warn("dropping malformed refresh", zap.Error(err))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded || ticket.generation != s.generation || ticket.seq <= s.appliedSeq || doc.ID != s.wheelID {
		s.logger.Debug("dropping stale refresh",
			zap.String("wheel_id", ticket.WheelID),
			zap.Uint64("seq", ticket.seq))
		return false
	}

	// a clean session stays clean: the merged state is what the server holds
	before, err := versioning.Checksum(s.graph)
	clean := err == nil && before == s.savedChecksum

	res := s.reconciler.Merge(s.graph, remote)
	s.graph = res.Graph
	s.appliedSeq = ticket.seq
	if clean {
		if sum, err := versioning.Checksum(s.graph); err == nil {
			s.savedChecksum = sum
		}
	}
	if doc.Title != "" {
		s.title = doc.Title
	}
	return true
}

// Refresh fetches the open wheel and merges it into the live graph.
// It reports whether the result was applied.
func (s *Session) Refresh(ctx context.Context) (bool, error) {
	if s.fetcher == nil {
		return false, pkgerrors.NewInternalError("session has no fetcher")
	}
	ticket, ok := s.BeginRefresh()
	if !ok {
		return false, nil
	}
	doc, err := s.fetcher.FetchWheel(ctx, ticket.WheelID)
	if err != nil {
		return false, pkgerrors.Wrap(err, "refresh wheel")
	}
	return s.ApplyRefresh(ticket, doc), nil
}

// SavePayload captures what Save would send right now
func (s *Session) SavePayload() (string, SavePayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return "", SavePayload{}, pkgerrors.NewValidationError("no wheel loaded")
	}
	g := s.graph.Clone()
	return s.wheelID, SavePayload{Title: s.title, Nodes: g.Nodes, Edges: g.Edges}, nil
}

// Save writes the current graph through the Saver. Editing may continue
// while the write is in flight; Dirty stays true if it did.
func (s *Session) Save(ctx context.Context) error {
	if s.saver == nil {
		return pkgerrors.NewInternalError("session has no saver")
	}
	wheelID, payload, err := s.SavePayload()
	if err != nil {
		return err
	}
	if err := s.saver.SaveWheel(ctx, wheelID, payload); err != nil {
		return pkgerrors.Wrap(err, "save wheel")
	}

	sum, err := versioning.Checksum(aggregates.Graph{Nodes: payload.Nodes, Edges: payload.Edges})
	if err != nil {
		return nil
	}
	s.mu.Lock()
	if s.wheelID == wheelID {
		s.savedChecksum = sum
	}
	s.mu.Unlock()
	return nil
}
