package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskflow/internal/backend"
	"taskflow/internal/model"
)

const tokenTTL = 30 * 24 * time.Hour

// SignIn checks credentials and returns a session with a signed token.
func (b *Backend) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	email = normalizeEmail(email)
	user, err := b.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, backend.ErrInvalidCredentials
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, backend.ErrInvalidCredentials
	}

	return b.newSession(user)
}

// SignUp registers a new account and provisions its profile.
func (b *Backend) SignUp(ctx context.Context, email, password string) (*backend.Session, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	if _, err := b.users.FindByEmail(ctx, email); err == nil {
		return nil, backend.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{Email: email, PasswordHash: string(hash)}
	if err := b.users.Create(ctx, &user); err != nil {
		return nil, err
	}
	if _, err := b.profiles.GetOrCreate(ctx, user.ID); err != nil {
		return nil, err
	}

	return b.newSession(&user)
}

// SignOut is a no-op for the local backend: tokens simply expire.
func (b *Backend) SignOut(context.Context, *backend.Session) error {
	return nil
}

// Resume validates a cached token and rebuilds its session.
func (b *Backend) Resume(ctx context.Context, token string) (*backend.Session, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(b.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, backend.ErrUnauthorized
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return nil, backend.ErrUnauthorized
	}

	user, err := b.users.FindByID(ctx, sub)
	if err != nil {
		return nil, backend.ErrUnauthorized
	}
	return &backend.Session{UserID: user.ID, Email: user.Email, AccessToken: token}, nil
}

func (b *Backend) newSession(user *model.User) (*backend.Session, error) {
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(b.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &backend.Session{UserID: user.ID, Email: user.Email, AccessToken: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
