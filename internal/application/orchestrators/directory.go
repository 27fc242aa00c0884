package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	coachStore "itgportal/internal/adapters/storage/coach"
	"itgportal/internal/domain/client"
	"itgportal/internal/domain/coach"
)

// CoachStoreForOrchestrator defines the store interface needed by directory orchestrators.
type CoachStoreForOrchestrator interface {
	CoachLookup
	Save(ctx context.Context, c coach.Coach) error
}

// ClientStoreForOrchestrator defines the store interface needed by directory orchestrators.
type ClientStoreForOrchestrator interface {
	ClientLookup
	Save(ctx context.Context, c client.Client) error
}

// --- Create Coach ---

// CreateCoachInput carries input for adding a coach.
type CreateCoachInput struct {
	Name  string
	Email string
}

// CreateCoachDeps holds dependencies for CreateCoach.
type CreateCoachDeps struct {
	CoachStore CoachStoreForOrchestrator
	GenerateID func() string
}

// ExecuteCreateCoach adds an active coach.
// PRE: Name non-empty
// POST: Coach persisted with a new ID
func ExecuteCreateCoach(ctx context.Context, input CreateCoachInput, deps CreateCoachDeps) (coach.Coach, error) {
	c := coach.Coach{
		ID:     deps.GenerateID(),
		Name:   strings.TrimSpace(input.Name),
		Email:  strings.TrimSpace(input.Email),
		Active: true,
	}
	if err := c.Validate(); err != nil {
		return coach.Coach{}, err
	}
	if err := deps.CoachStore.Save(ctx, c); err != nil {
		return coach.Coach{}, err
	}
	slog.Info("directory_event", "event", "coach_created", "coach_id", c.ID)
	return c, nil
}

// --- Create Client ---

// CreateClientInput carries input for enrolling a client.
type CreateClientInput struct {
	Name    string
	Email   string
	Program string
	CoachID string
}

// CreateClientDeps holds dependencies for CreateClient.
type CreateClientDeps struct {
	ClientStore ClientStoreForOrchestrator
	CoachStore  CoachLookup
	GenerateID  func() string
}

// ExecuteCreateClient enrolls an active client in a program.
// PRE: Program is a known program; CoachID, when set, names an existing coach
// POST: Client persisted with a new ID and active status
func ExecuteCreateClient(ctx context.Context, input CreateClientInput, deps CreateClientDeps) (client.Client, error) {
	c := client.Client{
		ID:      deps.GenerateID(),
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Program: input.Program,
		CoachID: input.CoachID,
		Status:  client.StatusActive,
	}
	if err := c.Validate(); err != nil {
		return client.Client{}, err
	}
	if c.CoachID != "" {
		if _, err := deps.CoachStore.GetByID(ctx, c.CoachID); err != nil {
			return client.Client{}, err
		}
	}
	if err := deps.ClientStore.Save(ctx, c); err != nil {
		return client.Client{}, err
	}
	slog.Info("directory_event", "event", "client_created", "client_id", c.ID, "program", c.Program)
	return c, nil
}

// --- Seed Directory ---

// CoachStoreForSeed defines the store interface needed by SeedDirectory.
type CoachStoreForSeed interface {
	Save(ctx context.Context, c coach.Coach) error
	List(ctx context.Context, filter coachStore.ListFilter) ([]coach.Coach, error)
}

// ClientStoreForSeed defines the store interface needed by SeedDirectory.
type ClientStoreForSeed interface {
	Save(ctx context.Context, c client.Client) error
}

// SeedDirectoryDeps holds dependencies for SeedDirectory.
type SeedDirectoryDeps struct {
	CoachStore  CoachStoreForSeed
	ClientStore ClientStoreForSeed
	GenerateID  func() string
}

// ExecuteSeedDirectory creates demo coaches and clients if no coach exists.
// POST: Directory unchanged when already populated
func ExecuteSeedDirectory(ctx context.Context, deps SeedDirectoryDeps) error {
	existing, err := deps.CoachStore.List(ctx, coachStore.ListFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil // Already seeded
	}

	coaches := []coach.Coach{
		{ID: deps.GenerateID(), Name: "Alice Mercer", Email: "alice@itg.example", Active: true},
		{ID: deps.GenerateID(), Name: "Bashir Okafor", Email: "bashir@itg.example", Active: true},
	}
	for _, c := range coaches {
		if err := deps.CoachStore.Save(ctx, c); err != nil {
			return err
		}
	}

	clients := []client.Client{
		{ID: deps.GenerateID(), Name: "Dana Cole", Program: client.ProgramBusiness, CoachID: coaches[0].ID, Status: client.StatusActive},
		{ID: deps.GenerateID(), Name: "Eli Vance", Program: client.ProgramJobPlacement, CoachID: coaches[0].ID, Status: client.StatusActive},
		{ID: deps.GenerateID(), Name: "Farah Naz", Program: client.ProgramGrace, CoachID: coaches[1].ID, Status: client.StatusActive},
		{ID: deps.GenerateID(), Name: "Gus Lindqvist", Program: client.ProgramBridges, CoachID: coaches[1].ID, Status: client.StatusActive},
	}
	for _, c := range clients {
		if err := deps.ClientStore.Save(ctx, c); err != nil {
			return err
		}
	}

	slog.Info("seed_event", "event", "directory_seeded", "coaches", len(coaches), "clients", len(clients))
	return nil
}
