package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"doctrack/internal/apperr"
	"doctrack/internal/model"
	"doctrack/internal/repository"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const minPasswordLength = 6

// Session is an issued access token.
type Session struct {
	Token     string     `json:"access_token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// AuthService signs users up and in, and resolves bearer tokens to users.
type AuthService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// SignOut revokes token until it would have expired anyway.
	SignOut(ctx context.Context, token string) error
	// Authenticate returns the user behind a valid, unrevoked token.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	profiles  repository.ProfileRepository
	blacklist repository.TokenBlacklist
	secret    []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewAuthService constructs a new AuthService signing HS256 tokens with secret.
func NewAuthService(profiles repository.ProfileRepository, blacklist repository.TokenBlacklist, secret string, ttl time.Duration) AuthService {
	return &authService{
		profiles:  profiles,
		blacklist: blacklist,
		secret:    []byte(secret),
		ttl:       ttl,
		now:       time.Now,
	}
}

func (s *authService) SignUp(ctx context.Context, email, password, displayName string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return nil, apperr.Validation("invalid email format")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Backend(err, "hash password")
	}

	u := &model.User{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   s.now().UTC(),
	}
	created, err := s.profiles.Create(ctx, u, string(hash))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Backend(err, "create profile")
	}
	return created, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, hash, err := s.profiles.FindCredentials(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, lookupErr(err, apperr.Authorization("invalid email or password"), "find credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, apperr.Authorization("invalid email or password")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperr.Backend(err, "sign token")
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: *u}, nil
}

func (s *authService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, apperr.Authorization("invalid or expired session")
	}
	return claims, nil
}

func (s *authService) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.blacklist.Add(ctx, token, expiresAt); err != nil {
		return apperr.Backend(err, "revoke session")
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperr.Authorization("missing session token")
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.blacklist.IsRevoked(ctx, token)
	if err != nil {
		return nil, apperr.Backend(err, "check session")
	}
	if revoked {
		return nil, apperr.Authorization("session has been signed out")
	}
	u, err := s.profiles.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, lookupErr(err, apperr.Authorization("account no longer exists"), "find profile")
	}
	return u, nil
}
