package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"audioscribe/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Domain errors for auth flows.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmptyField         = errors.New("username and password must be non-empty")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthConfig carries token settings; the signing key lives in config, not code.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// AuthService handles user auth logic
type AuthService struct {
	authRepo repository.Authorization
	cfg      AuthConfig
}

func NewAuthService(repo repository.Authorization, cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &AuthService{authRepo: repo, cfg: cfg}
}

// SignUp validates inputs, hashes the password and creates a new user.
// Passwords are bcrypt-hashed, which salts per password; the plain unsalted
// digest the original stored is gone.
func (s *AuthService) SignUp(username, password string) (int, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return 0, ErrEmptyField
	}

	existing, err := s.authRepo.GetByUsername(username)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, ErrUsernameTaken
	}

	hash, err := hashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.authRepo.Create(username, hash)
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

// GenerateToken validates credentials and returns a signed JWT.
// Unknown user and wrong password are indistinguishable to the caller.
func (s *AuthService) GenerateToken(username, password string) (string, error) {
	u, err := s.authRepo.GetByUsername(username)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrInvalidCredentials
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(u.ID, u.Username)
}

// ParseToken parses a JWT and returns the principal it identifies.
func (s *AuthService) ParseToken(accessToken string) (Principal, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SigningKey), nil
	})
	if err != nil {
		return Principal{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	return Principal{UserID: claims.UserID, Username: claims.Username}, nil
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// helper: issue a signed JWT for a user
func (s *AuthService) issueToken(userID int, username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:   userID,
		Username: username,
	})
	return token.SignedString([]byte(s.cfg.SigningKey))
}
