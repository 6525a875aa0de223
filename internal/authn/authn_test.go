package authn

import (
	"context"
	"testing"

	"github.com/financepro/financepro/internal/domain"
	"github.com/financepro/financepro/internal/logger"
)

func unconfigured() *Service {
	return &Service{log: logger.New()}
}

func TestUnconfiguredFlows(t *testing.T) {
	s := unconfigured()
	ctx := context.Background()

	if s.Configured() {
		t.Fatal("service without clients must report unconfigured")
	}

	sess, errMsg := s.SignIn(ctx, "a@b.com", "pw")
	if sess != nil || errMsg != ErrMissingConfig {
		t.Errorf("SignIn = (%v, %q), want (nil, %q)", sess, errMsg, ErrMissingConfig)
	}
	if got := s.SignUp(ctx, "a@b.com", "pw", "Ana"); got != ErrMissingConfig {
		t.Errorf("SignUp = %q, want %q", got, ErrMissingConfig)
	}
	if got := s.ResetPassword(ctx, "a@b.com"); got != ErrMissingConfig {
		t.Errorf("ResetPassword = %q, want %q", got, ErrMissingConfig)
	}
	if got := s.CurrentUser(ctx, "token"); got != nil {
		t.Errorf("CurrentUser = %v, want nil", got)
	}

	// Must not panic with a nil session either.
	s.SignOut(ctx, nil)
}

func TestResolveUser(t *testing.T) {
	s := unconfigured()

	tests := []struct {
		name        string
		email       string
		displayName string
		wantName    string
	}{
		{name: "display name wins", email: "ana@loja.com", displayName: "Ana Silva", wantName: "Ana Silva"},
		{name: "falls back to mail-local part", email: "ana@loja.com", wantName: "ana"},
		{name: "falls back to placeholder", wantName: "Usuário"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := s.resolveUser(context.Background(), "uid-1", tt.email, tt.displayName)
			if u.Name != tt.wantName {
				t.Errorf("name = %q, want %q", u.Name, tt.wantName)
			}
			if u.Role != domain.RoleAdvanced {
				t.Errorf("role = %s, want ADVANCED", u.Role)
			}
		})
	}
}
