package aggregates

import (
	"strings"
	"time"

	"axon-backend/domain/config"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
	"axon-backend/domain/events"
	"axon-backend/domain/services"
	pkgerrors "axon-backend/pkg/errors"

	"github.com/google/uuid"
)

// WheelID represents a unique wheel identifier
type WheelID string

// NewWheelID creates a new random WheelID
func NewWheelID() WheelID {
	return WheelID(uuid.New().String())
}

// String returns the string representation
func (id WheelID) String() string {
	return string(id)
}

// Wheel is the aggregate root for a consequence diagram.
// It owns the graph plus title, ownership and visibility.
type Wheel struct {
	id           WheelID
	title        string
	ownerID      string
	visibility   valueobjects.Visibility
	graph        Graph
	createdAt    time.Time
	lastModified time.Time
	version      int
	// version as last read from or written to storage; 0 until first saved
	persistedVersion int
	events           []events.DomainEvent
}

// NewWheel creates a private wheel whose only node is the central idea
func NewWheel(title, ownerID string, cfg *config.DomainConfig) (*Wheel, error) {
	return NewWheelWithID(NewWheelID(), title, ownerID, cfg)
}

// NewWheelWithID is NewWheel with a caller-chosen id
func NewWheelWithID(id WheelID, title, ownerID string, cfg *config.DomainConfig) (*Wheel, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("wheel id required")
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerId required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, pkgerrors.NewValidationError("title is required")
	}
	if len(title) > cfg.MaxTitleLength {
		return nil, pkgerrors.NewValidationError("title too long")
	}

	root := entities.NewNode(valueobjects.RootNodeID, title, valueobjects.RootTier, valueobjects.Origin)
	root.Type = cfg.NewNodeType
	root.Data.Color = cfg.RootColor

	now := time.Now()
	w := &Wheel{
		id:           id,
		title:        title,
		ownerID:      ownerID,
		visibility:   valueobjects.VisibilityPrivate,
		graph:        Graph{Nodes: []entities.Node{root}, Edges: []entities.Edge{}},
		createdAt:    now,
		lastModified: now,
		version:      1,
	}
	w.addEvent(events.NewWheelCreated(w.id.String(), ownerID, title, now))
	return w, nil
}

// ReconstructWheel recreates a wheel from stored data without raising events
func ReconstructWheel(
	id WheelID,
	title string,
	ownerID string,
	visibility valueobjects.Visibility,
	graph Graph,
	createdAt time.Time,
	lastModified time.Time,
	version int,
) *Wheel {
	if visibility == "" {
		visibility = valueobjects.VisibilityPrivate
	}
	return &Wheel{
		id:           id,
		title:        title,
		ownerID:      ownerID,
		visibility:   visibility,
		graph:        graph.Clone(),
		createdAt:    createdAt,
		lastModified: lastModified,
		version:      version,

		persistedVersion: version,
	}
}

func (w *Wheel) ID() WheelID                         { return w.id }
func (w *Wheel) Title() string                       { return w.title }
func (w *Wheel) OwnerID() string                     { return w.ownerID }
func (w *Wheel) Visibility() valueobjects.Visibility { return w.visibility }
func (w *Wheel) CreatedAt() time.Time                { return w.createdAt }
func (w *Wheel) LastModified() time.Time             { return w.lastModified }
func (w *Wheel) Version() int                        { return w.version }

// PersistedVersion is the version storage holds, for optimistic locking
func (w *Wheel) PersistedVersion() int { return w.persistedVersion }

// MarkPersisted records that storage now holds the current version
func (w *Wheel) MarkPersisted() { w.persistedVersion = w.version }

// Clone returns an independent copy of the wheel without pending events
func (w *Wheel) Clone() *Wheel {
	c := *w
	c.graph = w.graph.Clone()
	c.events = nil
	return &c
}

// Graph returns a copy of the wheel's graph
func (w *Wheel) Graph() Graph {
	return w.graph.Clone()
}

// IsOwner reports whether userID owns the wheel
func (w *Wheel) IsOwner(userID string) bool {
	return userID != "" && userID == w.ownerID
}

// CanRead reports whether userID may load the wheel
func (w *Wheel) CanRead(userID string) bool {
	return w.visibility.IsPublic() || w.IsOwner(userID)
}

func (w *Wheel) requireOwner(userID string) error {
	if !w.IsOwner(userID) {
		return pkgerrors.NewForbiddenError("Forbidden")
	}
	return nil
}

func (w *Wheel) touch(now time.Time) {
	w.lastModified = now
	w.version++
}

// Replace overwrites title and diagram content. Only the owner may save.
func (w *Wheel) Replace(userID, title string, graph Graph) error {
	if err := w.requireOwner(userID); err != nil {
		return err
	}
	if title = strings.TrimSpace(title); title != "" {
		w.title = title
	}
	w.graph = graph.Clone()

	now := time.Now()
	w.touch(now)
	w.addEvent(events.NewWheelSaved(w.id.String(), w.ownerID, w.title,
		len(w.graph.Nodes), len(w.graph.Edges), w.version, now))
	return nil
}

// SetVisibility publishes or hides the wheel. Only the owner may change it.
func (w *Wheel) SetVisibility(userID string, visibility valueobjects.Visibility) error {
	if err := w.requireOwner(userID); err != nil {
		return err
	}
	if visibility == w.visibility {
		return nil
	}

	from := w.visibility
	w.visibility = visibility
	now := time.Now()
	w.touch(now)
	w.addEvent(events.NewVisibilityChanged(w.id.String(), from, visibility, w.version, now))
	return nil
}

// CastVote records voterID's vote on node nodeID. Anyone who can read the
// wheel may vote.
func (w *Wheel) CastVote(agg *services.VoteAggregator, voterID string, nodeID valueobjects.NodeID, value float64) (entities.Node, error) {
	if !w.CanRead(voterID) {
		return entities.Node{}, pkgerrors.NewAccessDeniedError("Wheel")
	}
	node, ok := w.graph.Node(nodeID)
	if !ok {
		return entities.Node{}, pkgerrors.NewNotFoundError("Node")
	}

	updated, err := agg.Cast(node, voterID, value)
	if err != nil {
		return entities.Node{}, err
	}
	w.graph, _ = w.graph.UpdateNode(nodeID, func(n *entities.Node) { *n = updated })

	now := time.Now()
	w.touch(now)
	w.addEvent(events.NewVoteCast(w.id.String(), nodeID, voterID,
		updated.Data.Votes[voterID], updated.Data.Probability, w.version, now))
	return updated, nil
}

// MarkDeleted checks ownership and records the deletion event
func (w *Wheel) MarkDeleted(userID string) error {
	if err := w.requireOwner(userID); err != nil {
		return err
	}
	w.addEvent(events.NewWheelDeleted(w.id.String(), w.ownerID, w.version, time.Now()))
	return nil
}

// GetUncommittedEvents returns events raised since the last commit
func (w *Wheel) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(w.events))
	copy(out, w.events)
	return out
}

// MarkEventsAsCommitted clears the pending events
func (w *Wheel) MarkEventsAsCommitted() {
	w.events = nil
}

func (w *Wheel) addEvent(event events.DomainEvent) {
	w.events = append(w.events, event)
}

// Document returns the wire representation of the wheel
func (w *Wheel) Document() WheelDocument {
	g := w.Graph()
	return WheelDocument{
		ID:           w.id.String(),
		Title:        w.title,
		Nodes:        g.Nodes,
		Edges:        g.Edges,
		OwnerID:      w.ownerID,
		Visibility:   w.visibility,
		LastModified: w.lastModified.UnixMilli(),
	}
}

// WheelDocument is a wheel as loaded by clients: everything an editing
// session needs to start or refresh.
type WheelDocument struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	Nodes        []entities.Node         `json:"nodes"`
	Edges        []entities.Edge         `json:"edges"`
	OwnerID      string                  `json:"ownerId"`
	Visibility   valueobjects.Visibility `json:"visibility"`
	LastModified int64                   `json:"lastModified"`
}

// Graph returns a copy of the document's graph
func (d WheelDocument) Graph() Graph {
	return NewGraph(d.Nodes, d.Edges)
}
