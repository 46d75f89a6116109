package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eventhub-be/internal/apperror"
	"eventhub-be/internal/credentials"
	"eventhub-be/internal/entities"
	"eventhub-be/internal/identity"
	"eventhub-be/internal/jwt"
	"eventhub-be/internal/logger"
	"eventhub-be/internal/models"
	"eventhub-be/internal/repository"
	"eventhub-be/internal/validation"
)

const minPasswordLength = 6

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	// Authenticate resolves a bearer token to the identity of an existing user.
	Authenticate(ctx context.Context, token string) (*identity.Identity, error)
}

type authService struct {
	userRepo   repository.UserRepository
	hasher     credentials.Hasher
	jwtService *jwt.JWTService
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, hasher credentials.Hasher, jwtService *jwt.JWTService) AuthService {
	return &authService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account and logs it in
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, apperror.NewBadRequest("Please enter all required fields")
	}

	var problems []string
	if !validation.IsEmail(email) {
		problems = append(problems, "Please use a valid email address")
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		problems = append(problems, "Password must be at least 6 characters long")
	}
	if len(problems) > 0 {
		return nil, apperror.NewValidation(problems)
	}

	// Check if user already exists
	_, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.NewBadRequest("User with this email already exists")
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperror.NewInternal("Server error", err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.NewInternal("Server error", err)
	}

	photoURL := strings.TrimSpace(req.PhotoURL)
	if photoURL == "" {
		photoURL = entities.DefaultPhotoURL
	}
	user := &entities.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		PhotoURL:     photoURL,
	}
	if msgs := user.Validate(); len(msgs) > 0 {
		return nil, apperror.NewValidation(msgs)
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			return nil, apperror.NewConflict("A user with this " + dup.Field + " already exists.")
		}
		return nil, apperror.NewInternal("Server error", err)
	}

	// Generate JWT token for automatic login after registration
	token, err := s.jwtService.GenerateToken(created.ID)
	if err != nil {
		return nil, apperror.NewInternal("Server error", err)
	}

	logger.FromContext(ctx).Info("user registered", zap.String("user_id", created.ID))
	return &models.AuthResponse{UserResponse: models.NewUserResponse(created), Token: token}, nil
}

// Login authenticates a user and returns user info with JWT token. Unknown
// emails and wrong passwords produce the same error.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperror.NewBadRequest("Please enter all fields")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NewUnauthorized("Invalid credentials")
		}
		return nil, apperror.NewInternal("Server error", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, apperror.NewUnauthorized("Invalid credentials")
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return nil, apperror.NewInternal("Server error", err)
	}

	return &models.AuthResponse{UserResponse: models.NewUserResponse(user), Token: token}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*identity.Identity, error) {
	userID, err := s.jwtService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrMissingSecret) {
			return nil, apperror.NewInternal("Server error", err)
		}
		return nil, apperror.NewUnauthorized("Not authorized, token failed")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, apperror.NewUnauthorized("Not authorized, token failed")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NewUnauthorized("Not authorized, user not found")
		}
		return nil, apperror.NewInternal("Server error", err)
	}

	return &identity.Identity{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		PhotoURL: user.PhotoURL,
	}, nil
}
