package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contact_book/internal/model"
	"contact_book/internal/repository"
	"contact_book/internal/utils"

	"go.uber.org/zap"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this phone number already exists")
	ErrInvalidCredentials = errors.New("invalid phone or password")
)

// AuthService provides registration and login
type AuthService interface {
	Register(ctx context.Context, phone, password string) (*model.User, error)
	Login(ctx context.Context, phone, password string) (*model.User, string, error)
}

type authService struct {
	userRepo          repository.UserRepository
	jwtUtil           *utils.JWTUtil
	initialAdminPhone string
	log               *zap.Logger
}

// NewAuthService creates a new AuthService. A registration matching
// initialAdminPhone is granted the admin role.
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, initialAdminPhone string, log *zap.Logger) AuthService {
	return &authService{
		userRepo:          userRepo,
		jwtUtil:           jwtUtil,
		initialAdminPhone: initialAdminPhone,
		log:               log,
	}
}

// Register creates a new user account. The plaintext password is staged on
// the record and hashed by the credential store before it is persisted.
func (s *authService) Register(ctx context.Context, phone, password string) (*model.User, error) {
	existingUser, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	userRole := model.RoleUser
	if s.initialAdminPhone != "" && phone == s.initialAdminPhone {
		userRole = model.RoleAdmin
		s.log.Info("registering configured admin account", zap.String("phone", phone))
	}

	user := &model.User{
		Phone:     phone,
		Role:      userRole,
		CreatedAt: time.Now(),
	}
	user.SetPassword(password)

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two registrations racing on the same phone: the constraint decides
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	return user, nil
}

// Login authenticates a user and returns a signed token. Unknown phone and
// wrong password are deliberately indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, phone, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by phone: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Roles())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}
