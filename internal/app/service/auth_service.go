package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tangle_backend/internal/common"
	"tangle_backend/internal/common/security"
	"tangle_backend/internal/domain/model"
	"tangle_backend/internal/domain/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type AuthService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo, now: time.Now}
}

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,max=64,safe_name"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	RealName        string `json:"realname" validate:"required"`
	Email           string `json:"email" validate:"required,email,email_domain"`
	Language        string `json:"language" validate:"required"`
	School          string `json:"school" validate:"required"`
	Standard        string `json:"standard" validate:"required"`
	Board           string `json:"board" validate:"required"`
	Country         string `json:"country" validate:"required"`
	State           string `json:"state" validate:"required"`
	City            string `json:"city" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Msg      string `json:"msg"`
	UserType string `json:"usertype"`
	Token    string `json:"token"`
}

// Register validates the candidate, then rejects a taken username, then stores
// the user with a bcrypt hash. Validation runs first so a password mismatch is
// reported even for a taken username.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*common.MessageResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, common.ErrDuplicateUser
	} else if !errors.Is(err, common.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	user, err := s.newUser(req, model.RoleUser)
	if err != nil {
		return nil, err
	}
	// The unique index still guards against a concurrent registration.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.WithField("username", user.Username).Info("user registered")
	return &common.MessageResponse{Msg: "User registered successfully"}, nil
}

func (s *AuthService) newUser(req RegisterRequest, role string) (*model.User, error) {
	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	now := s.now()
	return &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		HashedPassword: hashedPassword,
		RealName:       req.RealName,
		Email:          req.Email,
		Language:       req.Language,
		School:         req.School,
		Standard:       req.Standard,
		Board:          req.Board,
		Country:        req.Country,
		State:          req.State,
		City:           req.City,
		UserType:       role,
		Coins:          0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, common.ErrInvalidCredentials // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := security.GenerateToken(user.ID, user.Username, user.UserType)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResponse{Msg: "Login successful", UserType: user.UserType, Token: token}, nil
}

// Me returns the stored profile; the password hash is never serialized.
func (s *AuthService) Me(ctx context.Context, username string) (*model.User, error) {
	return s.userRepo.FindByUsername(ctx, username)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListUsers(ctx)
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
// An existing account with that username is left as it is.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password, email string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrUserNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	admin, err := s.newUser(RegisterRequest{
		Username: username,
		Password: password,
		RealName: username,
		Email:    email,
	}, model.RoleAdmin)
	if err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			// Another instance created it between the lookup and the insert.
			return nil
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.WithField("username", username).Info("bootstrap admin created")
	return nil
}
