package client

import (
	"errors"
	"strings"
)

// Business rule constants
const (
	ProgramBusiness     = "business"
	ProgramJobPlacement = "job_placement"
	ProgramBridges      = "bridges"
	ProgramGrace        = "grace"

	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusGraduated = "graduated"

	MaxNameLength = 100
)

// Domain errors
var (
	ErrEmptyName      = errors.New("client name cannot be empty")
	ErrNameTooLong    = errors.New("client name cannot exceed 100 characters")
	ErrInvalidProgram = errors.New("program must be one of: business, job_placement, bridges, grace")
	ErrInvalidStatus  = errors.New("status must be one of: active, inactive, graduated")
	ErrNotGrace       = errors.New("attendance is only tracked for grace clients")
)

// Client is a program participant.
type Client struct {
	ID      string
	Name    string
	Email   string
	Program string
	CoachID string
	Status  string
}

// Validate checks if the Client has valid data.
// PRE: Client struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	switch c.Program {
	case ProgramBusiness, ProgramJobPlacement, ProgramBridges, ProgramGrace:
	default:
		return ErrInvalidProgram
	}
	switch c.Status {
	case StatusActive, StatusInactive, StatusGraduated:
	default:
		return ErrInvalidStatus
	}
	return nil
}

// TracksAttendance reports whether daily attendance is recorded for this client.
func (c *Client) TracksAttendance() bool {
	return c.Program == ProgramGrace
}

// IsActive returns true if the client is currently active.
func (c *Client) IsActive() bool {
	return c.Status == StatusActive
}
