package service

import (
	"context"
	"fmt"
	"time"

	"hotel/internal/auth"
	apperrors "hotel/internal/errors"
	"hotel/internal/logging"
	"hotel/internal/model"
	"hotel/internal/repository"
)

// RegisterUserInput carries a new user's details. Password is plaintext.
type RegisterUserInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber *string
}

// UserService handles registration, authentication and account maintenance.
// Every returned user has its password hash cleared.
type UserService interface {
	Register(ctx context.Context, in RegisterUserInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	UpdateSelf(ctx context.Context, id uint, patch model.UserPatch) (*model.User, error)
	UpdateAdminFlag(ctx context.Context, id uint, isAdmin bool) (*model.User, error)
	Delete(ctx context.Context, id uint) (string, error)
}

type userService struct {
	repo       repository.UserRepository
	hasher     auth.PasswordHasher
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	log        *logging.Logger
	now        func() time.Time
}

// NewUserService builds a UserService.
func NewUserService(
	repo repository.UserRepository,
	hasher auth.PasswordHasher,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	log *logging.Logger,
) UserService {
	return &userService{
		repo:       repo,
		hasher:     hasher,
		jwtService: jwtService,
		tokenStore: tokenStore,
		log:        log.With("component", "users"),
		now:        time.Now,
	}
}

func userNotFound(id uint) *apperrors.Error {
	return apperrors.NotFound("User with id %d not found", id)
}

var errEmailTaken = apperrors.Conflict("Email already registered")

// Register hashes the password and stores a new non-admin user.
func (s *userService) Register(ctx context.Context, in RegisterUserInput) (*model.User, error) {
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Email:        in.Email,
		PasswordHash: hashed,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translate(err, "create user", nil, errEmailTaken)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return user.WithoutPassword(), nil
}

// Login checks the credentials and returns a signed access token.
func (s *userService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", translate(err, "find user", apperrors.NotFound("User not found"), nil)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Warn("login failed", "user_id", user.ID)
		return "", apperrors.Unauthorized("Invalid credentials")
	}

	token, err := s.jwtService.Issue(auth.Payload{
		UserID:  user.ID,
		Name:    user.FirstName,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	})
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return token, nil
}

// UpdateSelf applies a partial update to the caller's own record.
func (s *userService) UpdateSelf(ctx context.Context, id uint, patch model.UserPatch) (*model.User, error) {
	var hashed string
	if patch.Password != nil {
		var err error
		if hashed, err = s.hasher.Hash(*patch.Password); err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	user, err := s.repo.Update(ctx, id, func(u *model.User) error {
		patch.ApplyTo(u)
		if hashed != "" {
			u.PasswordHash = hashed
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "update user", userNotFound(id), errEmailTaken)
	}

	s.log.Info("user updated", "user_id", id)
	return user.WithoutPassword(), nil
}

// UpdateAdminFlag sets the admin flag and voids the target's outstanding tokens when it changes.
func (s *userService) UpdateAdminFlag(ctx context.Context, id uint, isAdmin bool) (*model.User, error) {
	changed := false
	user, err := s.repo.Update(ctx, id, func(u *model.User) error {
		changed = u.IsAdmin != isAdmin
		u.IsAdmin = isAdmin
		return nil
	})
	if err != nil {
		return nil, translate(err, "update admin flag", userNotFound(id), nil)
	}

	if changed {
		s.revoke(ctx, id)
		s.log.Info("admin flag changed", "user_id", id, "is_admin", isAdmin)
	}
	return user.WithoutPassword(), nil
}

// Delete removes the user and voids their outstanding tokens.
func (s *userService) Delete(ctx context.Context, id uint) (string, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return "", translate(err, "delete user", userNotFound(id), nil)
	}

	s.revoke(ctx, id)
	s.log.Info("user deleted", "user_id", id)
	return fmt.Sprintf("User with id %d deleted", id), nil
}

func (s *userService) revoke(ctx context.Context, id uint) {
	if err := s.tokenStore.RevokeUser(ctx, id, s.now()); err != nil {
		s.log.Error("revoke tokens", "user_id", id, "error", err)
	}
}
