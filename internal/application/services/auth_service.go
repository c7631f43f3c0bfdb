package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/config"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/ports"
)

// tokenClaims is the JWT payload issued by /login
type tokenClaims struct {
	Username string            `json:"username"`
	Role     entities.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles login accounts and bearer tokens
type AuthService struct {
	userRepo  ports.UserRepository
	jwtConfig config.JWTConfig
	logger    *logger.Logger
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo ports.UserRepository, jwtConfig config.JWTConfig, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtConfig: jwtConfig,
		logger:    logger.WithComponent("auth"),
		now:       time.Now,
	}
}

// Login checks the credentials and issues a signed token
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			s.logger.Warnw("Login attempt with unknown username", "username", req.Username)
			return nil, entities.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.IsActive {
		s.logger.Warnw("Login attempt with inactive account", "username", req.Username, "user_id", user.ID)
		return nil, entities.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warnw("Login attempt with invalid password", "username", req.Username, "user_id", user.ID)
		return nil, entities.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Infow("User logged in", "user_id", user.ID, "username", user.Username)

	return &ports.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.jwtConfig.ExpiresIn.Seconds()),
	}, nil
}

// ValidateToken validates a JWT token and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*ports.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithIssuer(s.jwtConfig.Issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &ports.Claims{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// CreateUser adds a login account with a bcrypt-hashed password
func (s *AuthService) CreateUser(ctx context.Context, req ports.CreateUserRequest) (*entities.User, error) {
	username := strings.TrimSpace(req.Username)

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrUsernameTaken, username)
	}
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &entities.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		Role:         req.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infow("User created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}

func (s *AuthService) generateToken(user *entities.User) (string, error) {
	now := s.now()
	claims := &tokenClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.jwtConfig.Issuer,
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}
