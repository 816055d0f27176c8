package valueobjects

import (
	"fmt"

	pkgerrors "axon-backend/pkg/errors"
)

// Visibility controls who besides the owner may read a wheel
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// ParseVisibility validates a visibility string
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityPrivate, VisibilityPublic:
		return Visibility(s), nil
	default:
		return "", pkgerrors.NewValidationError(
			fmt.Sprintf("visibility must be %q or %q", VisibilityPublic, VisibilityPrivate))
	}
}

// IsPublic reports whether anyone may read the wheel
func (v Visibility) IsPublic() bool {
	return v == VisibilityPublic
}
