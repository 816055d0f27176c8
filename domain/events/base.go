package events

import (
	"time"

	"axon-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events.
// Events represent something that has happened in the past.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

const (
	TypeWheelCreated      = "wheel.created"
	TypeWheelSaved        = "wheel.saved"
	TypeVisibilityChanged = "wheel.visibility_changed"
	TypeWheelDeleted      = "wheel.deleted"
	TypeVoteCast          = "wheel.vote_cast"
)

func base(wheelID, eventType string, version int, at time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: wheelID,
		EventType:   eventType,
		Timestamp:   at,
		Version:     version,
	}
}

// WheelCreated is raised when a wheel is created with its central idea
type WheelCreated struct {
	BaseEvent
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
}

// NewWheelCreated creates a WheelCreated event
func NewWheelCreated(wheelID, ownerID, title string, at time.Time) WheelCreated {
	return WheelCreated{
		BaseEvent: base(wheelID, TypeWheelCreated, 1, at),
		OwnerID:   ownerID,
		Title:     title,
	}
}

// WheelSaved is raised when the owner replaces the diagram content
type WheelSaved struct {
	BaseEvent
	OwnerID   string `json:"owner_id"`
	Title     string `json:"title"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

// NewWheelSaved creates a WheelSaved event
func NewWheelSaved(wheelID, ownerID, title string, nodeCount, edgeCount, version int, at time.Time) WheelSaved {
	return WheelSaved{
		BaseEvent: base(wheelID, TypeWheelSaved, version, at),
		OwnerID:   ownerID,
		Title:     title,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}
}

// VisibilityChanged is raised when a wheel is published or made private
type VisibilityChanged struct {
	BaseEvent
	From valueobjects.Visibility `json:"from"`
	To   valueobjects.Visibility `json:"to"`
}

// NewVisibilityChanged creates a VisibilityChanged event
func NewVisibilityChanged(wheelID string, from, to valueobjects.Visibility, version int, at time.Time) VisibilityChanged {
	return VisibilityChanged{
		BaseEvent: base(wheelID, TypeVisibilityChanged, version, at),
		From:      from,
		To:        to,
	}
}

// WheelDeleted is raised when the owner deletes a wheel
type WheelDeleted struct {
	BaseEvent
	OwnerID string `json:"owner_id"`
}

// NewWheelDeleted creates a WheelDeleted event
func NewWheelDeleted(wheelID, ownerID string, version int, at time.Time) WheelDeleted {
	return WheelDeleted{
		BaseEvent: base(wheelID, TypeWheelDeleted, version, at),
		OwnerID:   ownerID,
	}
}

// VoteCast is raised when a user rates a consequence
type VoteCast struct {
	BaseEvent
	NodeID      valueobjects.NodeID `json:"node_id"`
	UserID      string              `json:"user_id"`
	Vote        int                 `json:"vote"`
	Probability float64             `json:"probability"`
}

// NewVoteCast creates a VoteCast event
func NewVoteCast(wheelID string, nodeID valueobjects.NodeID, userID string, vote int, probability float64, version int, at time.Time) VoteCast {
	return VoteCast{
		BaseEvent:   base(wheelID, TypeVoteCast, version, at),
		NodeID:      nodeID,
		UserID:      userID,
		Vote:        vote,
		Probability: probability,
	}
}
