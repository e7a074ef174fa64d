// internal/domain/user/service.go
package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the referenced user does not exist
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering with an existing email
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidCredentials is returned on a failed sign-in
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidPaymentMethod is returned for a payment method outside the supported set
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
)

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	jwtManager      *auth.JWTManager
	passwordManager *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		jwtManager:      auth.NewJWTManager(cfg),
		passwordManager: auth.NewPasswordManager(cfg),
	}
}

// RegisterRequest represents sign-up data
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents credential sign-in data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents a successful authentication
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SaveAddressRequest represents the shipping address form
type SaveAddressRequest struct {
	FullName      string `json:"full_name" binding:"required,max=255"`
	StreetAddress string `json:"street_address" binding:"required,max=255"`
	City          string `json:"city" binding:"required,max=100"`
	PostalCode    string `json:"postal_code" binding:"required,max=20"`
	Country       string `json:"country" binding:"required,len=2"`
}

// Register creates a new user account
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(req.Email)

	var existing User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	newUser := User{
		Name:     req.Name,
		Email:    email,
		Password: hashed,
	}
	if err := s.db.Create(&newUser).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(&newUser)
}

// Login authenticates a user with credentials
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	var u User
	err := s.db.Where("email = ?", strings.ToLower(req.Email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	s.db.Model(&u).Update("last_login_at", now)
	u.LastLoginAt = &now

	return s.issueTokens(&u)
}

// GetUser retrieves a user with their address loaded
func (s *Service) GetUser(id uint) (*User, error) {
	var u User
	if err := s.db.Preload("Address").First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

// SaveAddress creates or replaces the user's shipping address
func (s *Service) SaveAddress(userID uint, req *SaveAddressRequest) (*Address, error) {
	if _, err := s.GetUser(userID); err != nil {
		return nil, err
	}

	address := Address{
		UserID:        userID,
		FullName:      req.FullName,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Country:       strings.ToUpper(req.Country),
	}

	var existing Address
	err := s.db.Where("user_id = ?", userID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.Create(&address).Error; err != nil {
			return nil, fmt.Errorf("failed to create address: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up address: %w", err)
	default:
		address.ID = existing.ID
		address.CreatedAt = existing.CreatedAt
		if err := s.db.Save(&address).Error; err != nil {
			return nil, fmt.Errorf("failed to update address: %w", err)
		}
	}

	return &address, nil
}

// SetPaymentMethod records the user's selected payment method
func (s *Service) SetPaymentMethod(userID uint, method PaymentMethod) error {
	if !method.IsValid() {
		return ErrInvalidPaymentMethod
	}

	result := s.db.Model(&User{}).Where("id = ?", userID).Update("payment_method", method)
	if result.Error != nil {
		return fmt.Errorf("failed to set payment method: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) issueTokens(u *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
