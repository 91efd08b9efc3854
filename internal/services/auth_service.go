package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/vantrack-api/internal/config"
	"github.com/sjperalta/vantrack-api/internal/jobs"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/repository"
	"github.com/sjperalta/vantrack-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// WelcomeMailer sends the account-created email.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, user *models.User) error
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
	worker   *jobs.Worker
	mailer   WelcomeMailer
	now      func() time.Time
}

// NewAuthService creates a new auth service. worker and mailer may be nil,
// in which case no welcome email is sent.
func NewAuthService(userRepo repository.UserRepository, cfg *config.Config, worker *jobs.Worker, mailer WelcomeMailer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		worker:   worker,
		mailer:   mailer,
		now:      time.Now,
	}
}

// RegisterInput is the sign-up payload
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Currency string `json:"currency"`
	Language string `json:"language"`
}

// LoginResult represents the result of a login attempt
type LoginResult struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      models.UserResponse `json:"user"`
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*LoginResult, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(input.Email))
	if err != nil {
		return nil, validationError(errors.New("email is not a valid address"))
	}
	if len(input.Password) < minPasswordLength {
		return nil, validationError(fmt.Errorf("password must be at least %d characters", minPasswordLength))
	}

	settings := models.Settings{Currency: models.DefaultCurrency, Language: models.LanguageEN}
	if models.IsSupportedCurrency(s.cfg.DefaultCurrency) {
		settings.Currency = s.cfg.DefaultCurrency
	}
	if input.Currency != "" {
		settings.Currency = strings.ToUpper(input.Currency)
	}
	if input.Language != "" {
		settings.Language = strings.ToLower(input.Language)
	}
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:             strings.ToLower(addr.Address),
		EncryptedPassword: hashed,
		FullName:          sanitizeText(input.FullName),
		Currency:          settings.Currency,
		Language:          settings.Language,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: email already registered", ErrDuplicate)
		}
		return nil, err
	}
	logger.Info("User registered", "user_id", user.ID)

	if s.worker != nil && s.mailer != nil {
		registered := *user
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.mailer.SendWelcome(ctx, &registered)
		})
	}

	return s.issue(user)
}

// Login authenticates a user and returns a token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrUnauthorized
	}
	if !VerifyPassword(password, user.EncryptedPassword) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*LoginResult, error) {
	expiresAt := s.now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)
	token, err := s.generateJWT(user, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user.ToResponse()}, nil
}

// generateJWT creates a new JWT token for a user
func (s *AuthService) generateJWT(user *models.User, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     expiresAt.Unix(),
		"iat":     s.now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// VerifyPassword compares a password with a hash
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
