package mcp_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/hireline/pkg/application"
	"github.com/felixgeelhaar/hireline/pkg/clock"
	"github.com/felixgeelhaar/hireline/pkg/mcp"
)

func TestNewServer_Initialization(t *testing.T) {
	dash := application.NewDashboard(application.Deps{
		Clock: clock.NewFake(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
	}, application.Settings{JobsTarget: 2, CandidatesTarget: 2})
	defer dash.Close()

	s, err := mcp.NewServer(dash, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.ServeHTTP(ctx, "127.0.0.1:0"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewServer_RequiresDashboard(t *testing.T) {
	if _, err := mcp.NewServer(nil, nil); err == nil {
		t.Fatal("expected error without a dashboard")
	}
}
