package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"anoa.com/droneanalytics/internal/entity"
	"anoa.com/droneanalytics/internal/modules/user/dto"
	"anoa.com/droneanalytics/internal/modules/user/repository"
	"anoa.com/droneanalytics/internal/validation"
	"anoa.com/droneanalytics/pkg/apperror"
	"anoa.com/droneanalytics/pkg/credential"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	errEmailTaken         = apperror.New(http.StatusConflict, "Email already registered", apperror.ErrConflict)
	errUsernameTaken      = apperror.New(http.StatusConflict, "Username already taken", apperror.ErrConflict)
	errInvalidCredentials = apperror.New(http.StatusUnauthorized, "Invalid email or password", apperror.ErrUnauthorized)
	errUserNotFound       = apperror.New(http.StatusNotFound, "User not found", apperror.ErrNotFound)
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.MeResponse, error)
}

type authService struct {
	repo        repository.UserRepository
	credentials *credential.Manager
}

func NewAuthService(repo repository.UserRepository, credentials *credential.Manager) AuthService {
	return &authService{
		repo:        repo,
		credentials: credentials,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error) {
	if res := validation.Registration(input); !res.Valid {
		return nil, apperror.Validation("Validation failed", res.Errors)
	}

	email := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	existing, err := s.repo.FindByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		if existing.Email == email {
			return nil, errEmailTaken
		}
		return nil, errUsernameTaken
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	hash, err := s.credentials.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleMember,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.conflictFor(ctx, email)
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("user registered")

	return s.buildAuthResponse(user, "User registered successfully")
}

// conflictFor picks the message for a unique-index violation lost to a
// concurrent registration.
func (s *authService) conflictFor(ctx context.Context, email string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return errEmailTaken
	}
	return errUsernameTaken
}

func (s *authService) Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error) {
	if res := validation.Login(input); !res.Valid {
		return nil, apperror.Validation("Validation failed", res.Errors)
	}

	user, err := s.repo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !s.credentials.VerifyPassword(input.Password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}

	return s.buildAuthResponse(user, "Login successful")
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.MeResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return &dto.MeResponse{User: user}, nil
}

func (s *authService) buildAuthResponse(user *entity.User, message string) (*dto.AuthResponse, error) {
	token, _, err := s.credentials.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Success:   true,
		Message:   message,
		User:      user,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.credentials.TTL().Seconds()),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
