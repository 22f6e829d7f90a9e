package apikey_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/carbonguardian/carbonguardian/internal/apikey"
)

func newTestService() *apikey.Service {
	return apikey.NewService(apikey.NewInMemoryRepository())
}

func TestService_Issue(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	issued, err := svc.Issue(ctx, "收费系统对接", []apikey.Permission{apikey.PermissionRead, apikey.PermissionWrite})
	if err != nil {
		t.Fatalf("failed to issue key: %v", err)
	}

	if !strings.HasPrefix(issued.Key.ID, "key_") {
		t.Errorf("expected key ID to start with 'key_', got %q", issued.Key.ID)
	}
	if !strings.HasPrefix(issued.Secret, "cg_") {
		t.Errorf("expected secret to start with 'cg_', got %q", issued.Secret)
	}
	if !strings.HasPrefix(issued.Secret, "cg_"+issued.Key.Prefix+"_") {
		t.Errorf("expected secret to embed prefix %q, got %q", issued.Key.Prefix, issued.Secret)
	}
	if issued.Key.SecretHash == issued.Secret {
		t.Error("secret must not be stored in plaintext")
	}
	if issued.Key.Status != apikey.StatusActive {
		t.Errorf("expected new key to be active, got %q", issued.Key.Status)
	}
}

func TestService_Issue_ValidationErrors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "", []apikey.Permission{apikey.PermissionRead}); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := svc.Issue(ctx, "no perms", nil); err == nil {
		t.Error("expected error for empty permission set")
	}
	if _, err := svc.Issue(ctx, "bad perm", []apikey.Permission{"admin"}); err == nil {
		t.Error("expected error for unknown permission")
	}
}

func TestService_Authenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	issued, err := svc.Issue(ctx, "integration", []apikey.Permission{apikey.PermissionRead})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	key, err := svc.Authenticate(ctx, issued.Secret)
	if err != nil {
		t.Fatalf("failed to authenticate with issued secret: %v", err)
	}
	if key.ID != issued.Key.ID {
		t.Errorf("expected key %q, got %q", issued.Key.ID, key.ID)
	}
	if key.LastUsedAt == nil {
		t.Error("expected LastUsedAt to be set after authentication")
	}
}

func TestService_Authenticate_Rejections(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	issued, err := svc.Issue(ctx, "integration", []apikey.Permission{apikey.PermissionRead})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name   string
		secret string
	}{
		{name: "empty secret", secret: ""},
		{name: "wrong scheme", secret: "sk_" + issued.Key.Prefix + "_abcdef"},
		{name: "unknown prefix", secret: "cg_000000000000_abcdef"},
		{name: "right prefix wrong secret", secret: "cg_" + issued.Key.Prefix + "_forgedforgedforged"},
		{name: "truncated", secret: issued.Secret[:len(issued.Secret)-5]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Authenticate(ctx, tt.secret); !errors.Is(err, apikey.ErrUnauthorized) {
				t.Errorf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestService_Revoke_FailsImmediately(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	issued, err := svc.Issue(ctx, "soon revoked", []apikey.Permission{apikey.PermissionWrite})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := svc.Revoke(ctx, issued.Key.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, err := svc.Authenticate(ctx, issued.Secret); !errors.Is(err, apikey.ErrUnauthorized) {
		t.Errorf("expected revoked key to fail authentication, got %v", err)
	}
}

func TestService_Authorize(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	issued, err := svc.Issue(ctx, "read only", []apikey.Permission{apikey.PermissionRead})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := svc.Authorize(issued.Key, apikey.PermissionRead); err != nil {
		t.Errorf("expected read to be allowed, got %v", err)
	}
	if err := svc.Authorize(issued.Key, apikey.PermissionWrite); !errors.Is(err, apikey.ErrForbidden) {
		t.Errorf("expected ErrForbidden for write, got %v", err)
	}
	if err := svc.Authorize(nil, apikey.PermissionRead); !errors.Is(err, apikey.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for nil key, got %v", err)
	}
}

func TestService_ListAndGet(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Issue(ctx, "first", []apikey.Permission{apikey.PermissionRead})
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	if _, err := svc.Issue(ctx, "second", []apikey.Permission{apikey.PermissionWrite}); err != nil {
		t.Fatalf("issue second: %v", err)
	}

	keys, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected 2 keys, got %d", len(keys))
	}

	got, err := svc.Get(ctx, first.Key.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "first" {
		t.Errorf("expected name 'first', got %q", got.Name)
	}

	if _, err := svc.Get(ctx, "key_missing"); !errors.Is(err, apikey.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}
