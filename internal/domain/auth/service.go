package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/appctx"
	"tradelink/internal/core/id"
	"tradelink/pkg/logger"
)

const (
	maxFailedAttempts = 5
	lockDuration      = 15 * time.Minute
)

// LoginResult is the successful login payload.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// Service provides authentication operations.
type Service struct {
	users UserRepository
	jwt   *JWTService
}

// NewService creates a new auth service.
func NewService(users UserRepository, jwtSvc *JWTService) *Service {
	return &Service{
		users: users,
		jwt:   jwtSvc,
	}
}

// Login verifies credentials and issues an access token.
// Failed attempts are counted; the account locks after too many.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			// Same message as a wrong password: no account enumeration
			return nil, apperror.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}

	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		user.RecordFailedLogin(maxFailedAttempts, lockDuration)
		if updErr := s.users.Update(ctx, user); updErr != nil {
			logger.Error(ctx, "record failed login", "error", updErr)
		}
		return nil, apperror.NewUnauthorized("invalid email or password")
	}

	user.RecordSuccessfulLogin()
	if err := s.users.Update(ctx, user); err != nil {
		logger.Error(ctx, "record successful login", "error", err)
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, name, password, role string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if len(password) < 8 {
		return nil, apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("user", "email", email)
	} else if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	user := NewUser(email, name, string(hash), role)
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// ValidateToken parses and validates an access token.
func (s *Service) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	user, err := s.jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired token")
	}
	return user, nil
}

// GetByID retrieves a user.
func (s *Service) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	return s.users.GetByID(ctx, userID)
}
