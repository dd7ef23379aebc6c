package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"chatrelay-backend/internal/models"
)

type contextKey string

const SessionKey contextKey = "session"

const SessionCookieName = "relay_session"

type SessionAuth struct {
	Secret []byte
	MaxAge time.Duration
	now    func() time.Time
}

func NewSessionAuth(secret string, maxAge time.Duration) *SessionAuth {
	return &SessionAuth{Secret: []byte(secret), MaxAge: maxAge, now: time.Now}
}

// IssueSessionToken signs an HS256 session for user.
func (s *SessionAuth) IssueSessionToken(user models.SessionUser) (string, *models.Session, error) {
	issuedAt := s.now()
	expires := issuedAt.Add(s.MaxAge)

	claims := jwt.MapClaims{
		"sub":     user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"picture": user.Picture,
		"jti":     uuid.NewString(),
		"iat":     issuedAt.Unix(),
		"exp":     expires.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session: %w", err)
	}

	return signed, &models.Session{User: user, Expires: time.Unix(expires.Unix(), 0).UTC()}, nil
}

// ParseSessionToken verifies tokenStr and returns the session it carries.
func (s *SessionAuth) ParseSessionToken(tokenStr string) (*models.Session, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("session has no subject")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("session has no expiry")
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	picture, _ := claims["picture"].(string)

	return &models.Session{
		User:    models.SessionUser{ID: sub, Name: name, Email: email, Picture: picture},
		Expires: exp.Time.UTC(),
	}, nil
}

// SessionFromRequest reads the session cookie, falling back to a Bearer token.
func (s *SessionAuth) SessionFromRequest(r *http.Request) (*models.Session, error) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return s.ParseSessionToken(cookie.Value)
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, http.ErrNoCookie
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errors.New("invalid authorization format")
	}
	return s.ParseSessionToken(parts[1])
}

// Middleware rejects requests without a valid session and attaches the
// session to the request context.
func (s *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.SessionFromRequest(r)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "Session has expired. Please sign in again.")
			} else {
				writeError(w, http.StatusUnauthorized, "Please sign in to continue.")
			}
			return
		}

		ctx := context.WithValue(r.Context(), SessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSession extracts the session attached by Middleware.
func GetSession(ctx context.Context) *models.Session {
	session, _ := ctx.Value(SessionKey).(*models.Session)
	return session
}
