// Package authn handles sign-in, sign-up, sign-out and password reset against
// Firebase. Password flows go through the Identity Toolkit API; session
// verification and user management go through the Admin SDK.
//
// Auth errors are returned as messages for the presentation layer to show
// verbatim, never as Go errors across this boundary. An unconfigured backend
// yields the missing-configuration message on every flow.
package authn

import (
	"context"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/financepro/financepro/internal/domain"
	"github.com/financepro/financepro/internal/logger"
)

// ErrMissingConfig is surfaced when no auth backend is configured.
const ErrMissingConfig = "Configuração ausente."

// Session is one authenticated session. IDToken is what the frontend holds
// and presents on every request.
type Session struct {
	IDToken string
	User    domain.User
}

// Service is the authentication façade.
type Service struct {
	admin *fbauth.Client
	itk   *identitytoolkit.RelyingpartyService
	log   zerolog.Logger
}

// New creates a Service from the environment. FIREBASE_PROJECT selects the
// project, FIREBASE_WEB_API_KEY enables the password flows; credentials come
// from FIREBASE_SERVICE_ACCOUNT_JSON or application default credentials.
func New(ctx context.Context, log zerolog.Logger) *Service {
	s := &Service{log: logger.Component(log, "authn")}

	project := os.Getenv("FIREBASE_PROJECT")
	apiKey := os.Getenv("FIREBASE_WEB_API_KEY")
	if project == "" || apiKey == "" {
		s.log.Warn().Msg("Firebase not configured - auth flows disabled")
		return s
	}

	var opts []option.ClientOption
	if credJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: project}, opts...)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to initialize Firebase app")
		return s
	}
	admin, err := app.Auth(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to create Firebase auth client")
		return s
	}

	itkService, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to create Identity Toolkit service")
		return s
	}

	s.admin = admin
	s.itk = itkService.Relyingparty
	return s
}

// Configured reports whether an auth backend is reachable.
func (s *Service) Configured() bool {
	return s.admin != nil && s.itk != nil
}

// SignIn exchanges email and password for a session. The second return is
// the backend's error message, shown inline on the auth form.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, string) {
	if !s.Configured() {
		return nil, ErrMissingConfig
	}

	resp, err := s.itk.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		s.log.Info().Str("email", email).Msg("Sign-in rejected")
		return nil, err.Error()
	}

	user := s.resolveUser(ctx, resp.LocalId, resp.Email, resp.DisplayName)
	return &Session{IDToken: resp.IdToken, User: user}, ""
}

// SignUp registers a new account pending e-mail confirmation.
func (s *Service) SignUp(ctx context.Context, email, password, name string) string {
	if !s.Configured() {
		return ErrMissingConfig
	}

	_, err := s.itk.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       email,
		Password:    password,
		DisplayName: name,
	}).Context(ctx).Do()
	if err != nil {
		return err.Error()
	}
	return ""
}

// SignOut revokes the session's refresh tokens. Remote state is untouched.
func (s *Service) SignOut(ctx context.Context, sess *Session) {
	if !s.Configured() || sess == nil {
		return
	}
	if err := s.admin.RevokeRefreshTokens(ctx, sess.User.ID); err != nil {
		s.log.Warn().Err(err).Msg("Failed to revoke refresh tokens")
	}
}

// ResetPassword asks the backend to mail a recovery link.
func (s *Service) ResetPassword(ctx context.Context, email string) string {
	if !s.Configured() {
		return ErrMissingConfig
	}

	_, err := s.itk.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	if err != nil {
		return err.Error()
	}
	return ""
}

// CurrentUser verifies an ID token and resolves its user, or returns nil.
// Called on app start to decide whether a session is already active.
func (s *Service) CurrentUser(ctx context.Context, idToken string) *domain.User {
	if !s.Configured() || idToken == "" {
		return nil
	}

	token, err := s.admin.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil
	}

	rec, err := s.admin.GetUser(ctx, token.UID)
	if err != nil {
		user := s.resolveUser(ctx, token.UID, "", "")
		return &user
	}
	user := s.resolveUser(ctx, token.UID, rec.Email, rec.DisplayName)
	return &user
}

// resolveUser builds the domain user. The display name falls back to the
// mail-local part. Role always resolves to ADVANCED: the backend stores no
// role and no server-side tiering is enforced, a documented single-tier
// trust decision rather than an authorization scheme.
func (s *Service) resolveUser(_ context.Context, uid, email, displayName string) domain.User {
	name := displayName
	if name == "" && email != "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	if name == "" {
		name = "Usuário"
	}
	return domain.User{
		ID:    uid,
		Name:  name,
		Email: email,
		Role:  domain.RoleAdvanced,
	}
}
