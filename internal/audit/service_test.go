package audit_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/carbonguardian/carbonguardian/internal/audit"
)

func newTestService() *audit.Service {
	return audit.NewService(audit.NewInMemoryRepository(), zerolog.New(io.Discard))
}

func TestService_Record(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.Record(ctx, audit.Entry{
		Direction:   audit.DirectionInbound,
		Source:      "municipal gateway",
		RequestType: "POST",
		Endpoint:    "/v1/data",
		Status:      audit.StatusSuccess,
		StatusCode:  201,
	})

	entries, err := svc.Query(ctx, audit.QueryOptions{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !strings.HasPrefix(entries[0].ID, "log_") {
		t.Errorf("expected entry ID to start with 'log_', got %q", entries[0].ID)
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("expected a timestamp to be assigned")
	}
}

func TestService_Query_Filters(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	now := time.Now()

	svc.Record(ctx, audit.Entry{
		Timestamp: now.Add(-2 * time.Hour),
		Direction: audit.DirectionInbound,
		Source:    "municipal gateway",
		Endpoint:  "/v1/data",
		Status:    audit.StatusSuccess,
	})
	svc.Record(ctx, audit.Entry{
		Timestamp: now.Add(-time.Hour),
		Direction: audit.DirectionOutbound,
		Source:    "provincial_platform",
		Endpoint:  "/api/push",
		Status:    audit.StatusError,
	})
	svc.Record(ctx, audit.Entry{
		Timestamp: now,
		Direction: audit.DirectionOutbound,
		Source:    "provincial_platform",
		Endpoint:  "/api/heartbeat",
		Status:    audit.StatusSuccess,
	})

	outbound, err := svc.Query(ctx, audit.QueryOptions{Direction: audit.DirectionOutbound})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(outbound) != 2 {
		t.Fatalf("expected 2 outbound entries, got %d", len(outbound))
	}
	// Newest first.
	if outbound[0].Endpoint != "/api/heartbeat" {
		t.Errorf("expected newest entry first, got %q", outbound[0].Endpoint)
	}

	failed, err := svc.Query(ctx, audit.QueryOptions{Status: audit.StatusError})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(failed) != 1 || failed[0].Endpoint != "/api/push" {
		t.Errorf("expected only the failed push, got %d", len(failed))
	}

	windowed, err := svc.Query(ctx, audit.QueryOptions{
		From: now.Add(-90 * time.Minute),
		To:   now.Add(-30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(windowed) != 1 || windowed[0].Endpoint != "/api/push" {
		t.Errorf("expected only the mid-window entry, got %d", len(windowed))
	}

	limited, err := svc.Query(ctx, audit.QueryOptions{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected limit to cap results at 2, got %d", len(limited))
	}
}

func TestService_Prune(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	now := time.Now()

	svc.Record(ctx, audit.Entry{
		Timestamp: now.Add(-100 * 24 * time.Hour),
		Direction: audit.DirectionInbound,
		Source:    "old caller",
		Endpoint:  "/v1/data",
	})
	svc.Record(ctx, audit.Entry{
		Timestamp: now.Add(-time.Hour),
		Direction: audit.DirectionInbound,
		Source:    "recent caller",
		Endpoint:  "/v1/data",
	})

	pruned, err := svc.Prune(ctx, 90*24*time.Hour, now)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 1 {
		t.Errorf("expected 1 entry pruned, got %d", pruned)
	}

	remaining, err := svc.Query(ctx, audit.QueryOptions{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Source != "recent caller" {
		t.Errorf("expected only the recent entry to survive, got %d", len(remaining))
	}
}

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code int
		want audit.Status
	}{
		{200, audit.StatusSuccess},
		{201, audit.StatusSuccess},
		{302, audit.StatusWarning},
		{404, audit.StatusWarning},
		{500, audit.StatusError},
		{503, audit.StatusError},
	}

	for _, tt := range tests {
		if got := audit.StatusForCode(tt.code); got != tt.want {
			t.Errorf("code %d: expected %q, got %q", tt.code, tt.want, got)
		}
	}
}
