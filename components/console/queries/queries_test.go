package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/components/otp"
)

type stubListService struct {
	calls  int
	screen console.Screen
}

func (s *stubListService) List(_ context.Context, _ console.ViewerContext, screen console.Screen, _ console.ListQuery) (console.ListView, error) {
	s.calls++
	s.screen = screen
	return console.ListView{Screen: screen}, nil
}

type stubOverviewService struct{ calls int }

func (s *stubOverviewService) Overview(context.Context) (console.Overview, error) {
	s.calls++
	return console.Overview{}, nil
}

type stubNavigationService struct{}

func (stubNavigationService) Navigation(context.Context, console.ViewerContext) []console.MenuItem {
	return []console.MenuItem{{ID: "dashboard"}}
}

type stubSessionSource struct {
	session *otp.Session
}

func (s stubSessionSource) Session(id string) (*otp.Session, error) {
	if s.session == nil || s.session.ID() != id {
		return nil, otp.ErrSessionNotFound
	}
	return s.session, nil
}

func TestListScreenQuery(t *testing.T) {
	service := &stubListService{}
	view, err := NewListScreenQuery(service).Query(context.Background(), ListInput{Screen: console.ScreenBookings})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 || view.Screen != console.ScreenBookings {
		t.Fatalf("expected bookings query, got %d %s", service.calls, view.Screen)
	}
}

func TestOverviewQuery(t *testing.T) {
	service := &stubOverviewService{}
	if _, err := NewOverviewQuery(service).Query(context.Background(), console.ViewerContext{}); err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 {
		t.Fatalf("expected 1 call, got %d", service.calls)
	}
}

func TestNavigationQuery(t *testing.T) {
	items, err := NewNavigationQuery(stubNavigationService{}).Query(context.Background(), console.ViewerContext{})
	if err != nil || len(items) != 1 {
		t.Fatalf("unexpected navigation %v %v", items, err)
	}
}

func TestSessionQuery(t *testing.T) {
	session, err := otp.NewSession(otp.SessionOptions{
		ID:       "s1",
		Cooldown: -1,
		Verifier: otp.VerifierFunc(func(context.Context, string) error { return nil }),
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer session.Close()

	query := NewSessionQuery(stubSessionSource{session: session})
	snap, err := query.Query(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if snap.SessionID != "s1" || snap.Status != otp.StatusEntering {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if _, err := query.Query(context.Background(), "s2"); !errors.Is(err, otp.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
