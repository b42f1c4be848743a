package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caretech/carechart/internal/platform/auth"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const minPasswordLen = 8

type Service struct {
	repo   Repository
	tokens *auth.TokenIssuer
}

func NewService(repo Repository, tokens *auth.TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// SetupNeeded reports whether the install has no accounts yet and the
// first-run admin still has to be created.
func (s *Service) SetupNeeded(ctx context.Context) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// CreateAdmin creates the first-run admin account. It refuses to run once
// any admin exists, which keeps the unauthenticated setup endpoint from
// being used to mint extra admins later.
func (s *Service) CreateAdmin(ctx context.Context, req *CreateRequest) (*User, error) {
	admins, err := s.repo.CountAdmins(ctx)
	if err != nil {
		return nil, err
	}
	if admins > 0 {
		return nil, fmt.Errorf("an admin account already exists")
	}
	req.Role = RoleAdmin
	u, err := s.buildUser(req)
	if err != nil {
		return nil, err
	}
	u.IsTempPassword = false
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Create adds a staff account. New accounts start with a temporary
// password that must be reset at first sign-in.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*User, error) {
	if req.Role == "" {
		req.Role = RoleUser
	}
	if req.Role != RoleUser && req.Role != RoleAdmin {
		return nil, fmt.Errorf("role must be %q or %q", RoleUser, RoleAdmin)
	}
	u, err := s.buildUser(req)
	if err != nil {
		return nil, err
	}
	u.IsTempPassword = true
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) buildUser(req *CreateRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	initials := strings.TrimSpace(req.Initials)
	if initials == "" {
		initials = deriveInitials(username)
	}
	return &User{
		Username:     username,
		PasswordHash: hash,
		Role:         req.Role,
		Initials:     strings.ToUpper(initials),
	}, nil
}

// deriveInitials takes the first letter of each word of the username, or
// the first two letters when it is a single word.
func deriveInitials(username string) string {
	words := strings.Fields(username)
	if len(words) >= 2 {
		var b strings.Builder
		for _, w := range words {
			b.WriteByte(w[0])
		}
		return b.String()
	}
	if len(username) >= 2 {
		return username[:2]
	}
	return username
}

// Login verifies credentials and issues a token. The response flags
// accounts still on a temporary password so the client can force a reset.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.GetByUsername(ctx, req.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(u.Username, u.Role, u.Initials)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		Token:               token,
		Username:            u.Username,
		Role:                u.Role,
		Initials:            u.Initials,
		PasswordResetNeeded: u.IsTempPassword,
	}, nil
}

// ResetPassword replaces the account password and clears the temporary
// flag.
func (s *Service) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if len(req.NewPassword) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	err = s.repo.UpdatePassword(ctx, req.Username, hash, false)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Service) NeedsReset(ctx context.Context, username string) (bool, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return u.IsTempPassword, nil
}

func (s *Service) IsAdmin(ctx context.Context, username string) (bool, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return u.Role == RoleAdmin, nil
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if u.Role == RoleAdmin {
		admins, err := s.repo.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return fmt.Errorf("cannot delete the last admin account")
		}
	}
	return s.repo.Delete(ctx, id)
}
