package commands

import (
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
	pkgerrors "axon-backend/pkg/errors"
	"axon-backend/pkg/utils"
)

// CreateWheelCommand creates a wheel whose only node is the central idea.
// WheelID is chosen by the caller so it can read the wheel back.
type CreateWheelCommand struct {
	WheelID string `json:"wheelId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
	Title   string `json:"title" validate:"required,max=200"`
}

func (c CreateWheelCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SaveWheelCommand replaces a wheel's title and diagram
type SaveWheelCommand struct {
	WheelID string          `json:"wheelId" validate:"required"`
	UserID  string          `json:"userId" validate:"required"`
	Title   string          `json:"title" validate:"max=200"`
	Nodes   []entities.Node `json:"nodes" validate:"required,min=1"`
	Edges   []entities.Edge `json:"edges"`
}

func (c SaveWheelCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SetVisibilityCommand publishes a wheel or makes it private
type SetVisibilityCommand struct {
	WheelID    string `json:"wheelId" validate:"required"`
	UserID     string `json:"userId" validate:"required"`
	Visibility string `json:"visibility" validate:"required"`
}

func (c SetVisibilityCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if _, err := valueobjects.ParseVisibility(c.Visibility); err != nil {
		return pkgerrors.NewValidationError("Invalid visibility value")
	}
	return nil
}

// DeleteWheelCommand removes a wheel
type DeleteWheelCommand struct {
	WheelID string `json:"wheelId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
}

func (c DeleteWheelCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CastVoteCommand records a user's 1..5 rating of a consequence
type CastVoteCommand struct {
	WheelID string  `json:"wheelId" validate:"required"`
	NodeID  string  `json:"nodeId" validate:"required"`
	UserID  string  `json:"userId" validate:"required"`
	Vote    float64 `json:"vote"`
}

// Validate checks presence only; the vote range is a domain rule
func (c CastVoteCommand) Validate() error {
	return utils.ValidateStruct(c)
}
