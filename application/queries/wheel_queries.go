package queries

import (
	"axon-backend/pkg/utils"
)

// GetWheelQuery loads one wheel. Public wheels are readable by anyone,
// private ones only by their owner; UserID may be empty for anonymous reads.
type GetWheelQuery struct {
	WheelID string `json:"wheelId" validate:"required"`
	UserID  string `json:"userId"`
}

func (q GetWheelQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ListWheelsQuery lists the wheels a user owns
type ListWheelsQuery struct {
	UserID string `json:"userId" validate:"required"`
}

func (q ListWheelsQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GenerateReportQuery analyses a readable wheel
type GenerateReportQuery struct {
	WheelID string `json:"wheelId" validate:"required"`
	UserID  string `json:"userId"`
}

func (q GenerateReportQuery) Validate() error {
	return utils.ValidateStruct(q)
}
