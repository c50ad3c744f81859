package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/components/console/commands"
	"github.com/goliatone/go-admin-console/components/console/queries"
	"github.com/goliatone/go-admin-console/components/otp"
)

// Executor is the transport-neutral surface the HTTP layers call.
type Executor interface {
	List(ctx context.Context, input queries.ListInput) (console.ListView, error)
	ResetList(ctx context.Context, input commands.ResetListInput) error
	Overview(ctx context.Context, viewer console.ViewerContext) (console.Overview, error)
	Navigation(ctx context.Context, viewer console.ViewerContext) ([]console.MenuItem, error)
	StartVerification(ctx context.Context, req console.StartRequest) (otp.Snapshot, error)
	EditCode(ctx context.Context, input commands.EditCodeInput) (otp.Snapshot, error)
	SubmitCode(ctx context.Context, input commands.SubmitCodeInput) (otp.Snapshot, error)
	ResendCode(ctx context.Context, sessionID string) (otp.Snapshot, error)
	CloseSession(ctx context.Context, sessionID string) error
	Session(ctx context.Context, sessionID string) (otp.Snapshot, error)
	SaveProduct(ctx context.Context, id string, in console.ProductInput) (console.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

var errNotConfigured = errors.New("httpapi: operation not configured")

// CommandExecutor implements Executor over go-command commands and queries.
// Mutations are followed by a session query so callers get the new state.
type CommandExecutor struct {
	ListQuery       gocommand.Querier[queries.ListInput, console.ListView]
	OverviewQuery   gocommand.Querier[console.ViewerContext, console.Overview]
	NavigationQuery gocommand.Querier[console.ViewerContext, []console.MenuItem]
	SessionQuery    gocommand.Querier[string, otp.Snapshot]
	Reset           gocommand.Commander[commands.ResetListInput]
	Start           gocommand.Commander[commands.StartVerificationInput]
	Edit            gocommand.Commander[commands.EditCodeInput]
	Submit          gocommand.Commander[commands.SubmitCodeInput]
	Resend          gocommand.Commander[commands.SessionInput]
	Close           gocommand.Commander[commands.SessionInput]
	Save            gocommand.Commander[commands.SaveProductInput]
	Delete          gocommand.Commander[commands.DeleteProductInput]
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires the standard commands and queries around a
// service and an auth flow. Either may be nil to leave its endpoints
// unconfigured.
func NewCommandExecutor(service *console.Service, auth *console.AuthFlow, telemetry commands.Telemetry) *CommandExecutor {
	exec := &CommandExecutor{}
	if service != nil {
		exec.ListQuery = queries.NewListScreenQuery(service)
		exec.OverviewQuery = queries.NewOverviewQuery(service)
		exec.NavigationQuery = queries.NewNavigationQuery(service)
		exec.Reset = commands.NewResetListCommand(service, telemetry)
		exec.Save = commands.NewSaveProductCommand(service, telemetry)
		exec.Delete = commands.NewDeleteProductCommand(service, telemetry)
	}
	if auth != nil {
		exec.SessionQuery = queries.NewSessionQuery(auth)
		exec.Start = commands.NewStartVerificationCommand(auth, telemetry)
		exec.Edit = commands.NewEditCodeCommand(auth, telemetry)
		exec.Submit = commands.NewSubmitCodeCommand(auth, telemetry)
		exec.Resend = commands.NewResendCodeCommand(auth, telemetry)
		exec.Close = commands.NewCloseSessionCommand(auth)
	}
	return exec
}

func (e *CommandExecutor) List(ctx context.Context, input queries.ListInput) (console.ListView, error) {
	if e.ListQuery == nil {
		return console.ListView{}, errNotConfigured
	}
	return e.ListQuery.Query(ctx, input)
}

func (e *CommandExecutor) ResetList(ctx context.Context, input commands.ResetListInput) error {
	if e.Reset == nil {
		return errNotConfigured
	}
	return e.Reset.Execute(ctx, input)
}

func (e *CommandExecutor) Overview(ctx context.Context, viewer console.ViewerContext) (console.Overview, error) {
	if e.OverviewQuery == nil {
		return console.Overview{}, errNotConfigured
	}
	return e.OverviewQuery.Query(ctx, viewer)
}

func (e *CommandExecutor) Navigation(ctx context.Context, viewer console.ViewerContext) ([]console.MenuItem, error) {
	if e.NavigationQuery == nil {
		return nil, errNotConfigured
	}
	return e.NavigationQuery.Query(ctx, viewer)
}

func (e *CommandExecutor) StartVerification(ctx context.Context, req console.StartRequest) (otp.Snapshot, error) {
	if e.Start == nil {
		return otp.Snapshot{}, errNotConfigured
	}
	var snap otp.Snapshot
	if err := e.Start.Execute(ctx, commands.StartVerificationInput{Request: req, Result: &snap}); err != nil {
		return otp.Snapshot{}, err
	}
	return snap, nil
}

func (e *CommandExecutor) EditCode(ctx context.Context, input commands.EditCodeInput) (otp.Snapshot, error) {
	if e.Edit == nil {
		return otp.Snapshot{}, errNotConfigured
	}
	if err := e.Edit.Execute(ctx, input); err != nil {
		return otp.Snapshot{}, err
	}
	return e.Session(ctx, input.SessionID)
}

func (e *CommandExecutor) SubmitCode(ctx context.Context, input commands.SubmitCodeInput) (otp.Snapshot, error) {
	if e.Submit == nil {
		return otp.Snapshot{}, errNotConfigured
	}
	var snap otp.Snapshot
	input.Result = &snap
	if err := e.Submit.Execute(ctx, input); err != nil {
		return otp.Snapshot{}, err
	}
	return snap, nil
}

func (e *CommandExecutor) ResendCode(ctx context.Context, sessionID string) (otp.Snapshot, error) {
	if e.Resend == nil {
		return otp.Snapshot{}, errNotConfigured
	}
	if err := e.Resend.Execute(ctx, commands.SessionInput{SessionID: sessionID}); err != nil {
		return otp.Snapshot{}, err
	}
	return e.Session(ctx, sessionID)
}

func (e *CommandExecutor) CloseSession(ctx context.Context, sessionID string) error {
	if e.Close == nil {
		return errNotConfigured
	}
	return e.Close.Execute(ctx, commands.SessionInput{SessionID: sessionID})
}

func (e *CommandExecutor) Session(ctx context.Context, sessionID string) (otp.Snapshot, error) {
	if e.SessionQuery == nil {
		return otp.Snapshot{}, errNotConfigured
	}
	return e.SessionQuery.Query(ctx, sessionID)
}

// SaveProduct creates the product when id is empty and updates it otherwise.
func (e *CommandExecutor) SaveProduct(ctx context.Context, id string, in console.ProductInput) (console.Product, error) {
	if e.Save == nil {
		return console.Product{}, errNotConfigured
	}
	var product console.Product
	if err := e.Save.Execute(ctx, commands.SaveProductInput{ProductID: id, Product: in, Result: &product}); err != nil {
		return console.Product{}, err
	}
	return product, nil
}

func (e *CommandExecutor) DeleteProduct(ctx context.Context, id string) error {
	if e.Delete == nil {
		return errNotConfigured
	}
	return e.Delete.Execute(ctx, commands.DeleteProductInput{ProductID: id})
}
