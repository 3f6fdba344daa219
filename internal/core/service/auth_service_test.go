package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/willslawrence/sfla-tracker/internal/core/domain"
)

type stubAuthRepo struct {
	byUsername map[string]*domain.Operator
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{byUsername: make(map[string]*domain.Operator)}
}

func (r *stubAuthRepo) FindByUsername(_ context.Context, username string) (*domain.Operator, error) {
	op, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrOperatorNotFound
	}
	clone := *op
	return &clone, nil
}

func (r *stubAuthRepo) Create(_ context.Context, op *domain.Operator) (*domain.Operator, error) {
	if _, exists := r.byUsername[op.Username]; exists {
		return nil, domain.ErrOperatorExists
	}
	clone := *op
	clone.ID = "op-1"
	r.byUsername[op.Username] = &clone
	return &clone, nil
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newStubAuthRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	op, err := svc.Register(context.Background(), "willy", "hunter2", "w@thc.sa", domain.RoleOperator)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if op.Role != domain.RoleOperator {
		t.Errorf("expected operator role, got %q", op.Role)
	}

	token, logged, err := svc.Login(context.Background(), "willy", "hunter2")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Error("expected a signed token")
	}
	if logged.Username != "willy" {
		t.Errorf("wrong operator returned: %+v", logged)
	}
}

func TestAuthService_Register_RejectsUnknownRole(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "test-secret", time.Hour)

	_, err := svc.Register(context.Background(), "willy", "hunter2", "", "superuser")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newStubAuthRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	if _, err := svc.Register(context.Background(), "willy", "hunter2", "", domain.RoleAdmin); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, err := svc.Login(context.Background(), "willy", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownOperator(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), "test-secret", time.Hour)

	_, _, err := svc.Login(context.Background(), "ghost", "pw")
	if !errors.Is(err, domain.ErrOperatorNotFound) {
		t.Fatalf("expected ErrOperatorNotFound, got %v", err)
	}
}
