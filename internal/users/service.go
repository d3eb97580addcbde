package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nmesfin/mesob/internal/apperror"
	"github.com/nmesfin/mesob/internal/auth"
)

// Service handles account registration, login, and profile management.
type Service struct {
	store  Store
	tokens *auth.TokenIssuer
	logger *slog.Logger
}

func NewService(store Store, tokens *auth.TokenIssuer, logger *slog.Logger) *Service {
	return &Service{store: store, tokens: tokens, logger: logger}
}

// RegisterInput carries the sign-up payload.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
	Address  string `json:"address"`
}

// Register creates an account. Display names are stripped of HTML before
// storage and the email must be unused.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	role, err := ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "hash password", err)
	}

	created, err := s.store.Insert(ctx, User{
		Name:         SanitizeName(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         role,
		Address:      input.Address,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperror.New(apperror.KindValidation, "user already exists")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "create user", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", created.ID, "role", created.Role)
	return created, nil
}

// LoginInput carries the credentials payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is a signed token plus the account it belongs to.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperror.New(apperror.KindAuthorization, "invalid credentials")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "look up user", err)
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		return nil, apperror.New(apperror.KindAuthorization, "invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "issue token", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

// Get returns the account for the given id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "user not found")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "get user", err)
	}
	return user, nil
}

// UpdateProfileInput carries optional profile changes. Empty fields keep
// their stored values.
type UpdateProfileInput struct {
	Name       string `json:"name"`
	Email      string `json:"email" validate:"omitempty,email"`
	Password   string `json:"password" validate:"omitempty,min=6"`
	ProfilePic string `json:"profile_pic"`
	Address    string `json:"address"`
}

// UpdateProfile edits an account. Callers may edit themselves; admins may
// edit anyone.
func (s *Service) UpdateProfile(ctx context.Context, ident auth.Identity, userID string, input UpdateProfileInput) (*User, error) {
	if ident.UserID != userID && Role(ident.Role) != RoleAdmin {
		return nil, apperror.New(apperror.KindAuthorization, "cannot edit another user's profile")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = SanitizeName(input.Name)
	}
	if input.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(input.Email))
	}
	if input.ProfilePic != "" {
		user.ProfilePic = input.ProfilePic
	}
	if input.Address != "" {
		user.Address = input.Address
	}
	if strings.TrimSpace(input.Password) != "" {
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindInternal, "hash password", err)
		}
		user.PasswordHash = hash
	}

	if err := s.store.Update(ctx, *user); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return nil, apperror.New(apperror.KindNotFound, "user not found")
		case errors.Is(err, ErrDuplicateEmail):
			return nil, apperror.New(apperror.KindValidation, "email already registered")
		default:
			return nil, apperror.Wrap(apperror.KindInternal, "update user", err)
		}
	}
	return user, nil
}

// List returns every account. Admin only.
func (s *Service) List(ctx context.Context, ident auth.Identity) ([]User, error) {
	if Role(ident.Role) != RoleAdmin {
		return nil, apperror.New(apperror.KindAuthorization, "admin role required")
	}

	result, err := s.store.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "list users", err)
	}
	return result, nil
}

// Delete removes an account. Admin only.
func (s *Service) Delete(ctx context.Context, ident auth.Identity, userID string) error {
	if Role(ident.Role) != RoleAdmin {
		return apperror.New(apperror.KindAuthorization, "admin role required")
	}

	if err := s.store.Delete(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperror.New(apperror.KindNotFound, "user not found")
		}
		return apperror.Wrap(apperror.KindInternal, "delete user", err)
	}

	s.logger.InfoContext(ctx, "user deleted", "user_id", userID, "by", ident.UserID)
	return nil
}

// LookupByIDs fetches the accounts for the given ids. Missing ids are
// simply absent from the result.
func (s *Service) LookupByIDs(ctx context.Context, ids []string) ([]User, error) {
	return s.store.GetMany(ctx, ids)
}
