package coach

import (
	"errors"
	"strings"
)

// MaxNameLength bounds user-editable names.
const MaxNameLength = 100

// Domain errors
var (
	ErrEmptyName    = errors.New("coach name cannot be empty")
	ErrNameTooLong  = errors.New("coach name cannot exceed 100 characters")
	ErrInvalidEmail = errors.New("coach email must be valid")
)

// Coach is a staff member whose availability is tracked.
type Coach struct {
	ID     string
	Name   string
	Email  string
	Active bool
}

// Validate checks if the Coach has valid data.
// PRE: Coach struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name must not be empty, Email must contain '@'
func (c *Coach) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !strings.Contains(c.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}
