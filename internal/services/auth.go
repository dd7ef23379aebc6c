package services

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/api/idtoken"

	"chatrelay-backend/internal/middleware"
	"chatrelay-backend/internal/models"
)

// IDTokenValidator verifies a Google ID token for the given audience.
// idtoken.Validate satisfies it.
type IDTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

type AuthService struct {
	validate       IDTokenValidator
	sessions       *middleware.SessionAuth
	googleClientID string
}

func NewAuthService(validate IDTokenValidator, sessions *middleware.SessionAuth, googleClientID string) *AuthService {
	if validate == nil {
		validate = idtoken.Validate
	}
	return &AuthService{
		validate:       validate,
		sessions:       sessions,
		googleClientID: googleClientID,
	}
}

// Enabled reports whether Google sign-in is configured.
func (s *AuthService) Enabled() bool {
	return s.googleClientID != "" && s.sessions != nil
}

// GoogleLogin verifies a Google ID token and issues a signed session.
// No account is stored; the session token is the whole session.
func (s *AuthService) GoogleLogin(ctx context.Context, credential string) (string, *models.Session, error) {
	if !s.Enabled() {
		return "", nil, &NotFoundError{Message: "Google sign-in is not configured"}
	}

	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", nil, &ValidationError{Message: "Google credential is required"}
	}

	payload, err := s.validate(ctx, credential, s.googleClientID)
	if err != nil {
		slog.WarnContext(ctx, "Google ID token rejected", "error", err)
		return "", nil, &UnauthorizedError{Message: "Invalid Google token"}
	}

	if !googleIssuers[payload.Issuer] {
		return "", nil, &UnauthorizedError{Message: "Google token issuer mismatch"}
	}

	email := claimString(payload.Claims, "email")
	if email == "" || payload.Subject == "" {
		return "", nil, &ValidationError{Message: "Google account missing email"}
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return "", nil, &UnauthorizedError{Message: "Google email is not verified"}
	}

	user := models.SessionUser{
		ID:      payload.Subject,
		Name:    claimString(payload.Claims, "name"),
		Email:   email,
		Picture: claimString(payload.Claims, "picture"),
	}

	return s.sessions.IssueSessionToken(user)
}

func claimString(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}
