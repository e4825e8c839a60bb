package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booknest/internal/domain"
	"booknest/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// TokenExpiration is how long an admin session token stays valid. Staff
	// sessions are short lived; there is no refresh flow, staff just log in
	// again.
	TokenExpiration = 12 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService authenticates staff accounts for the admin dashboard.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, user *domain.StaffUser, err error)
	Register(ctx context.Context, email, password, name, role string) (*domain.StaffUser, error)
	EnsureAdmin(ctx context.Context, email, name, password string) (created bool, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents the JWT claims carried by a staff session token.
type Claims struct {
	StaffID uuid.UUID `json:"staff_id"`
	Role    string    `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	staffRepo repository.StaffRepository
	jwtSecret string
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(staffRepo repository.StaffRepository, jwtSecret string) AuthService {
	return &authService{staffRepo: staffRepo, jwtSecret: jwtSecret}
}

// Login authenticates a staff account and returns a session token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.StaffUser, error) {
	user, err := s.staffRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrStaffNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find staff user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}

// Register creates a new staff account with a hashed password.
func (s *authService) Register(ctx context.Context, email, password, name, role string) (*domain.StaffUser, error) {
	existing, err := s.staffRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrStaffNotFound) {
		return nil, fmt.Errorf("failed to check existing staff user: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrStaffAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.StaffUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashed),
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	if err := s.staffRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create staff user: %w", err)
	}

	return user, nil
}

// EnsureAdmin creates the initial admin account if no staff user exists for
// the given email. Called at startup so a fresh deployment can reach the
// admin dashboard; an existing account is left untouched.
func (s *authService) EnsureAdmin(ctx context.Context, email, name, password string) (bool, error) {
	_, err := s.staffRepo.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrStaffNotFound) {
		return false, fmt.Errorf("failed to check admin account: %w", err)
	}

	if _, err := s.Register(ctx, email, password, name, "admin"); err != nil {
		return false, err
	}
	return true, nil
}

// ValidateToken validates a session token and returns its claims.
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *authService) generateToken(user *domain.StaffUser) (string, error) {
	now := time.Now()
	claims := &Claims{
		StaffID: user.ID,
		Role:    user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
