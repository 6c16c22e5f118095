package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/repository"
)

const (
	tokenLifetime = 24 * time.Hour
	cookieName    = "access_token"
)

// dummyHash is verified against on unknown-email logins so both paths
// take comparable time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummypassword12345678"), bcrypt.DefaultCost)

// Authenticator issues and validates the signed session tokens used by
// both the REST API and the websocket upgrade.
type Authenticator struct {
	users  repository.UserRepo
	secret []byte
}

func NewAuthenticator(users repository.UserRepo, secret string) *Authenticator {
	return &Authenticator{users: users, secret: []byte(secret)}
}

// HashPassword hashes a plaintext password for storage.
func (a *Authenticator) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword checks a plaintext password against the stored hash.
func (a *Authenticator) VerifyPassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// verifyDummy burns the same work as a real verification.
func (a *Authenticator) verifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// CreateToken issues a signed JWT for the user.
func (a *Authenticator) CreateToken(user *domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"plan":  string(user.Plan),
		"iat":   now.Unix(),
		"exp":   now.Add(tokenLifetime).Unix(),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves the user from an Authorization header or the
// auth cookie. Returns nil when no valid token is present.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) (*domain.User, error) {
	raw := bearerToken(r)
	if raw == "" {
		if c, err := r.Cookie(cookieName); err == nil {
			raw = c.Value
		}
	}
	if raw == "" {
		return nil, fmt.Errorf("no token")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("invalid subject")
	}

	user, err := a.users.GetByID(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("unknown user")
	}
	return user, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// authCookie builds the httpOnly session cookie carrying the token.
// maxAge <= 0 clears the cookie.
func authCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
