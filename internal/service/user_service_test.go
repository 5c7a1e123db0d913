package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hotel/internal/auth"
	apperrors "hotel/internal/errors"
	"hotel/internal/logging"
	"hotel/internal/model"
)

func strPtr(s string) *string { return &s }

func newTestUserService(repo *MockUserRepository, tokens *MockTokenStore) (UserService, *auth.JWTService) {
	jwtService := auth.NewJWTService("test-secret")
	svc := NewUserService(repo, auth.NewBcryptHasher(bcrypt.MinCost), jwtService, tokens, logging.Nop())
	return svc, jwtService
}

func hashed(t *testing.T, plain string) string {
	t.Helper()
	h, err := auth.NewBcryptHasher(bcrypt.MinCost).Hash(plain)
	require.NoError(t, err)
	return h
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name         string
		setupMock    func(*MockUserRepository)
		expectedKind *apperrors.Error
	}{
		{
			name: "successful registration",
			setupMock: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name: "duplicate email",
			setupMock: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedKind: apperrors.ErrConflict,
		},
		{
			name: "database failure",
			setupMock: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(errors.New("connection reset"))
			},
			expectedKind: apperrors.ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)
			svc, _ := newTestUserService(repo, new(MockTokenStore))

			user, err := svc.Register(context.Background(), RegisterUserInput{
				Email:     "a@b.com",
				Password:  "pw",
				FirstName: "A",
				LastName:  "B",
			})

			if tt.expectedKind != nil {
				assert.ErrorIs(t, err, tt.expectedKind)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "a@b.com", user.Email)
				assert.False(t, user.IsAdmin)
				assert.Empty(t, user.PasswordHash)

				stored := repo.Calls[0].Arguments.Get(1).(*model.User)
				assert.True(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw")) == nil)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_RegisterConflictMessage(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
	svc, _ := newTestUserService(repo, new(MockTokenStore))

	_, err := svc.Register(context.Background(), RegisterUserInput{Email: "a@b.com", Password: "pw"})
	assert.EqualError(t, err, "Email already registered")
}

func TestUserService_Login(t *testing.T) {
	stored := &model.User{ID: 5, Email: "a@b.com", FirstName: "A", PasswordHash: hashed(t, "pw"), IsAdmin: true}

	tests := []struct {
		name         string
		email        string
		password     string
		setupMock    func(*MockUserRepository)
		expectedKind *apperrors.Error
		expectedMsg  string
	}{
		{
			name:     "successful login",
			email:    "a@b.com",
			password: "pw",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(stored, nil)
			},
		},
		{
			name:     "unknown email",
			email:    "missing@b.com",
			password: "pw",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "missing@b.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedKind: apperrors.ErrNotFound,
			expectedMsg:  "User not found",
		},
		{
			name:     "wrong password",
			email:    "a@b.com",
			password: "nope",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "a@b.com").Return(stored, nil)
			},
			expectedKind: apperrors.ErrUnauthorized,
			expectedMsg:  "Invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)
			svc, jwtService := newTestUserService(repo, new(MockTokenStore))

			token, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedKind != nil {
				assert.ErrorIs(t, err, tt.expectedKind)
				assert.EqualError(t, err, tt.expectedMsg)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				claims, err := jwtService.Verify(token)
				require.NoError(t, err)
				assert.Equal(t, auth.Payload{UserID: 5, Name: "A", Email: "a@b.com", IsAdmin: true}, claims.Payload())
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateSelf(t *testing.T) {
	original := &model.User{ID: 3, Email: "a@b.com", FirstName: "A", LastName: "B", PasswordHash: "old-hash"}

	t.Run("partial fields without password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Update", mock.Anything, uint(3)).Return(original, nil)
		svc, _ := newTestUserService(repo, new(MockTokenStore))

		user, err := svc.UpdateSelf(context.Background(), 3, model.UserPatch{LastName: strPtr("Z")})
		require.NoError(t, err)
		assert.Equal(t, "A", user.FirstName)
		assert.Equal(t, "Z", user.LastName)
		assert.Empty(t, user.PasswordHash)
		repo.AssertExpectations(t)
	})

	t.Run("password is re-hashed", func(t *testing.T) {
		var saved model.User
		repo := new(MockUserRepository)
		repo.On("Update", mock.Anything, uint(3)).Return(original, nil)
		wrapped := &capturingUserRepo{MockUserRepository: repo, saved: &saved}
		svc := NewUserService(wrapped, auth.NewBcryptHasher(bcrypt.MinCost), auth.NewJWTService("s"), new(MockTokenStore), logging.Nop())

		_, err := svc.UpdateSelf(context.Background(), 3, model.UserPatch{Password: strPtr("new-pw")})
		require.NoError(t, err)
		assert.NotEqual(t, "old-hash", saved.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("new-pw")))
	})

	t.Run("missing user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Update", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)
		svc, _ := newTestUserService(repo, new(MockTokenStore))

		_, err := svc.UpdateSelf(context.Background(), 9, model.UserPatch{FirstName: strPtr("X")})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.EqualError(t, err, "User with id 9 not found")
	})

	t.Run("email taken", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Update", mock.Anything, uint(3)).Return(nil, gorm.ErrDuplicatedKey)
		svc, _ := newTestUserService(repo, new(MockTokenStore))

		_, err := svc.UpdateSelf(context.Background(), 3, model.UserPatch{Email: strPtr("taken@b.com")})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

// capturingUserRepo records the user produced by the Update callback.
type capturingUserRepo struct {
	*MockUserRepository
	saved *model.User
}

func (r *capturingUserRepo) Update(ctx context.Context, id uint, apply func(*model.User) error) (*model.User, error) {
	user, err := r.MockUserRepository.Update(ctx, id, apply)
	if user != nil {
		*r.saved = *user
	}
	return user, err
}

func TestUserService_UpdateAdminFlag(t *testing.T) {
	t.Run("change revokes tokens", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Update", mock.Anything, uint(4)).Return(&model.User{ID: 4, IsAdmin: false}, nil)
		tokens := new(MockTokenStore)
		tokens.On("RevokeUser", mock.Anything, uint(4), mock.Anything).Return(nil)
		svc, _ := newTestUserService(repo, tokens)

		user, err := svc.UpdateAdminFlag(context.Background(), 4, true)
		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
		tokens.AssertExpectations(t)
	})

	t.Run("unchanged flag keeps tokens", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Update", mock.Anything, uint(4)).Return(&model.User{ID: 4, IsAdmin: true}, nil)
		tokens := new(MockTokenStore)
		svc, _ := newTestUserService(repo, tokens)

		user, err := svc.UpdateAdminFlag(context.Background(), 4, true)
		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
		tokens.AssertNotCalled(t, "RevokeUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("revocation failure is not fatal", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Update", mock.Anything, uint(4)).Return(&model.User{ID: 4}, nil)
		tokens := new(MockTokenStore)
		tokens.On("RevokeUser", mock.Anything, uint(4), mock.Anything).Return(errors.New("redis down"))
		svc, _ := newTestUserService(repo, tokens)

		_, err := svc.UpdateAdminFlag(context.Background(), 4, true)
		assert.NoError(t, err)
	})

	t.Run("missing user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Update", mock.Anything, uint(4)).Return(nil, gorm.ErrRecordNotFound)
		svc, _ := newTestUserService(repo, new(MockTokenStore))

		_, err := svc.UpdateAdminFlag(context.Background(), 4, true)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestUserService_Delete(t *testing.T) {
	t.Run("deletes and revokes", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Delete", mock.Anything, uint(2)).Return(nil)
		tokens := new(MockTokenStore)
		tokens.On("RevokeUser", mock.Anything, uint(2), mock.Anything).Return(nil)
		svc, _ := newTestUserService(repo, tokens)

		msg, err := svc.Delete(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, "User with id 2 deleted", msg)
		tokens.AssertExpectations(t)
	})

	t.Run("missing user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Delete", mock.Anything, uint(2)).Return(gorm.ErrRecordNotFound)
		tokens := new(MockTokenStore)
		svc, _ := newTestUserService(repo, tokens)

		msg, err := svc.Delete(context.Background(), 2)
		assert.Empty(t, msg)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.EqualError(t, err, "User with id 2 not found")
		tokens.AssertNotCalled(t, "RevokeUser", mock.Anything, mock.Anything, mock.Anything)
	})
}
