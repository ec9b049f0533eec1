package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"doctrack/internal/apperr"
	"doctrack/internal/model"
	"doctrack/internal/repository"
	repoMocks "doctrack/internal/repository/mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_SignUp(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(mProfiles *repoMocks.MockProfileRepository)
		wantKind   error
	}{
		{
			name:     "success",
			email:    " Alice@Example.com ",
			password: "secret1",
			setupMocks: func(mProfiles *repoMocks.MockProfileRepository) {
				mProfiles.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Email == "alice@example.com" && u.DisplayName == "Alice" && u.ID != ""
				}), mock.MatchedBy(func(hash string) bool {
					return bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret1")) == nil
				})).Return(&alice, nil)
			},
		},
		{
			name:       "invalid email",
			email:      "not-an-email",
			password:   "secret1",
			setupMocks: func(mProfiles *repoMocks.MockProfileRepository) {},
			wantKind:   apperr.ErrValidation,
		},
		{
			name:       "short password",
			email:      "alice@example.com",
			password:   "12345",
			setupMocks: func(mProfiles *repoMocks.MockProfileRepository) {},
			wantKind:   apperr.ErrValidation,
		},
		{
			name:     "email taken",
			email:    "alice@example.com",
			password: "secret1",
			setupMocks: func(mProfiles *repoMocks.MockProfileRepository) {
				mProfiles.On("Create", ctx, mock.Anything, mock.Anything).Return(nil, repository.ErrDuplicate)
			},
			wantKind: apperr.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mProfiles := new(repoMocks.MockProfileRepository)
			tt.setupMocks(mProfiles)

			svc := NewAuthService(mProfiles, new(repoMocks.MockTokenBlacklist), testSecret, time.Hour)
			u, err := svc.SignUp(ctx, tt.email, tt.password, "Alice")

			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
				assert.Nil(t, u)
			} else {
				require.NoError(t, err)
				assert.Equal(t, alice.ID, u.ID)
			}
			mProfiles.AssertExpectations(t)
		})
	}
}

func TestAuthService_SignIn(t *testing.T) {
	ctx := context.Background()
	hash := hashPassword(t, "secret1")

	tests := []struct {
		name       string
		password   string
		setupMocks func(mProfiles *repoMocks.MockProfileRepository)
		wantKind   error
	}{
		{
			name:     "success",
			password: "secret1",
			setupMocks: func(mProfiles *repoMocks.MockProfileRepository) {
				mProfiles.On("FindCredentials", ctx, "alice@example.com").Return(&alice, hash, nil)
			},
		},
		{
			name:     "wrong password",
			password: "nope",
			setupMocks: func(mProfiles *repoMocks.MockProfileRepository) {
				mProfiles.On("FindCredentials", ctx, "alice@example.com").Return(&alice, hash, nil)
			},
			wantKind: apperr.ErrAuthorization,
		},
		{
			name:     "unknown email",
			password: "secret1",
			setupMocks: func(mProfiles *repoMocks.MockProfileRepository) {
				mProfiles.On("FindCredentials", ctx, "alice@example.com").Return(nil, "", sql.ErrNoRows)
			},
			wantKind: apperr.ErrAuthorization,
		},
		{
			name:     "backend failure",
			password: "secret1",
			setupMocks: func(mProfiles *repoMocks.MockProfileRepository) {
				mProfiles.On("FindCredentials", ctx, "alice@example.com").Return(nil, "", errors.New("db fail"))
			},
			wantKind: apperr.ErrBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mProfiles := new(repoMocks.MockProfileRepository)
			tt.setupMocks(mProfiles)

			svc := NewAuthService(mProfiles, new(repoMocks.MockTokenBlacklist), testSecret, time.Hour)
			sess, err := svc.SignIn(ctx, "alice@example.com", tt.password)

			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
				assert.Nil(t, sess)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, sess.Token)
				assert.Equal(t, alice.ID, sess.User.ID)
				assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)
			}
			mProfiles.AssertExpectations(t)
		})
	}
}

func signedIn(t *testing.T, svc AuthService, mProfiles *repoMocks.MockProfileRepository) string {
	t.Helper()
	mProfiles.On("FindCredentials", mock.Anything, alice.Email).Return(&alice, hashPassword(t, "secret1"), nil).Once()
	sess, err := svc.SignIn(context.Background(), alice.Email, "secret1")
	require.NoError(t, err)
	return sess.Token
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		mProfiles := new(repoMocks.MockProfileRepository)
		mBlacklist := new(repoMocks.MockTokenBlacklist)
		svc := NewAuthService(mProfiles, mBlacklist, testSecret, time.Hour)
		token := signedIn(t, svc, mProfiles)

		mBlacklist.On("IsRevoked", ctx, token).Return(false, nil)
		mProfiles.On("FindByID", ctx, alice.ID).Return(&alice, nil)

		u, err := svc.Authenticate(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, alice.ID, u.ID)
		mBlacklist.AssertExpectations(t)
	})

	t.Run("revoked token", func(t *testing.T) {
		mProfiles := new(repoMocks.MockProfileRepository)
		mBlacklist := new(repoMocks.MockTokenBlacklist)
		svc := NewAuthService(mProfiles, mBlacklist, testSecret, time.Hour)
		token := signedIn(t, svc, mProfiles)

		mBlacklist.On("IsRevoked", ctx, token).Return(true, nil)

		_, err := svc.Authenticate(ctx, token)

		assert.ErrorIs(t, err, apperr.ErrAuthorization)
		mProfiles.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("blacklist unavailable", func(t *testing.T) {
		mProfiles := new(repoMocks.MockProfileRepository)
		mBlacklist := new(repoMocks.MockTokenBlacklist)
		svc := NewAuthService(mProfiles, mBlacklist, testSecret, time.Hour)
		token := signedIn(t, svc, mProfiles)

		mBlacklist.On("IsRevoked", ctx, token).Return(false, errors.New("redis down"))

		_, err := svc.Authenticate(ctx, token)

		assert.ErrorIs(t, err, apperr.ErrBackend)
	})

	t.Run("wrong secret", func(t *testing.T) {
		mProfiles := new(repoMocks.MockProfileRepository)
		other := NewAuthService(mProfiles, nil, "other-secret", time.Hour)
		token := signedIn(t, other, mProfiles)

		svc := NewAuthService(mProfiles, new(repoMocks.MockTokenBlacklist), testSecret, time.Hour)
		_, err := svc.Authenticate(ctx, token)

		assert.ErrorIs(t, err, apperr.ErrAuthorization)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   alice.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		svc := NewAuthService(new(repoMocks.MockProfileRepository), new(repoMocks.MockTokenBlacklist), testSecret, time.Hour)
		_, err = svc.Authenticate(ctx, token)

		assert.ErrorIs(t, err, apperr.ErrAuthorization)
	})

	t.Run("empty token", func(t *testing.T) {
		svc := NewAuthService(nil, nil, testSecret, time.Hour)
		_, err := svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, apperr.ErrAuthorization)
	})
}

func TestAuthService_SignOut(t *testing.T) {
	ctx := context.Background()
	mProfiles := new(repoMocks.MockProfileRepository)
	mBlacklist := new(repoMocks.MockTokenBlacklist)
	svc := NewAuthService(mProfiles, mBlacklist, testSecret, time.Hour)
	token := signedIn(t, svc, mProfiles)

	mBlacklist.On("Add", ctx, token, mock.MatchedBy(func(at time.Time) bool {
		d := time.Until(at)
		return d > 58*time.Minute && d <= time.Hour
	})).Return(nil)

	assert.NoError(t, svc.SignOut(ctx, token))
	mBlacklist.AssertExpectations(t)

	assert.ErrorIs(t, svc.SignOut(ctx, "garbage"), apperr.ErrAuthorization)
}
