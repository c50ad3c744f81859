package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-admin-console/components/console"
)

type resetService interface {
	Reset(ctx context.Context, viewer console.ViewerContext, screen console.Screen) error
}

// ResetListInput forgets a viewer's search, filters, sort and page.
type ResetListInput struct {
	Viewer console.ViewerContext
	Screen console.Screen
}

// ResetListCommand drops stored list state.
type ResetListCommand struct {
	service   resetService
	telemetry Telemetry
}

// NewResetListCommand creates the command.
func NewResetListCommand(service resetService, telemetry Telemetry) *ResetListCommand {
	return &ResetListCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResetListInput] = (*ResetListCommand)(nil)

// Execute delegates to the console service.
func (c *ResetListCommand) Execute(ctx context.Context, msg ResetListInput) error {
	if c.service == nil {
		return errors.New("reset command requires service")
	}
	if err := c.service.Reset(ctx, msg.Viewer, msg.Screen); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "console.list.reset.command", map[string]any{
		"screen":  string(msg.Screen),
		"user_id": msg.Viewer.UserID,
	})
	return nil
}
