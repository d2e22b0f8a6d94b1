package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/internal/users"
	pkgauth "github.com/perpusdesa/perpusdesa-backend/pkg/auth"
	"github.com/perpusdesa/perpusdesa-backend/pkg/config"
	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	pkgerrors "github.com/perpusdesa/perpusdesa-backend/pkg/errors"
	"github.com/perpusdesa/perpusdesa-backend/pkg/security"
)

const minPasswordLength = 8

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	UserRepo *users.Repository
	JWT      config.JWTConfig
	Password config.PasswordConfig
}

// Service handles member registration and credential login.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (Session, error)
	Login(ctx context.Context, input LoginInput) (Session, error)
}

type service struct {
	userRepo *users.Repository
	jwt      config.JWTConfig
	password config.PasswordConfig
	now      func() time.Time
}

// NewService builds an auth service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "jwt secret is required")
	}
	return &service{
		userRepo: params.UserRepo,
		jwt:      params.JWT,
		password: params.Password,
		now:      time.Now,
	}, nil
}

// Register creates a member account and signs them in. Accounts created
// here always hold the anggota role; administrators are provisioned out of
// band.
func (s *service) Register(ctx context.Context, input RegisterInput) (Session, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" {
		return Session{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return Session{}, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return Session{}, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return Session{}, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         enums.UserRoleMember,
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return s.newSession(user)
}

// Login verifies the credentials and mints an access token carrying the
// user id and role. The role claim is the only role source downstream.
func (s *service) Login(ctx context.Context, input LoginInput) (Session, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return Session{}, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return Session{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return s.newSession(user)
}

func (s *service) newSession(user *models.User) (Session, error) {
	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return Session{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	sanitized := *user
	sanitized.PasswordHash = ""
	return Session{Token: token, User: sanitized}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
