package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"battle-royale-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrHostNotFound       = errors.New("host not found")
)

const tokenTTL = 24 * time.Hour

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: []byte(jwtSecret), now: time.Now}
}

// HostToken is what a host gets back from register and login.
type HostToken struct {
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIs..."`
	HostID    uint      `json:"host_id" example:"1"`
	Username  string    `json:"username" example:"host1"`
	ExpiresAt time.Time `json:"expires_at"`
}

// hostClaims are the claims of a host token.
type hostClaims struct {
	HostID uint `json:"host_id"`
	jwt.RegisteredClaims
}

// Register opens a host account and signs the host in.
func (s *AuthService) Register(username, password string) (HostToken, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 100 || len(password) < 6 {
		return HostToken{}, fmt.Errorf("%w: a 3..100 character username and a password of at least 6 characters are required", ErrInvalidCredentials)
	}

	var existing models.Host
	if err := s.db.Where("username = ?", username).First(&existing).Error; err == nil {
		return HostToken{}, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return HostToken{}, fmt.Errorf("lookup host: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return HostToken{}, err
	}

	host := models.Host{Username: username, PasswordHash: string(hash)}
	if err := s.db.Create(&host).Error; err != nil {
		return HostToken{}, fmt.Errorf("create host: %w", err)
	}
	return s.issue(host)
}

func (s *AuthService) Login(username, password string) (HostToken, error) {
	var host models.Host
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&host).Error; err != nil {
		return HostToken{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(host.PasswordHash), []byte(password)); err != nil {
		return HostToken{}, ErrInvalidCredentials
	}
	return s.issue(host)
}

// Host loads the account behind a validated host id.
func (s *AuthService) Host(id uint) (models.Host, error) {
	var host models.Host
	if err := s.db.First(&host, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Host{}, ErrHostNotFound
		}
		return models.Host{}, fmt.Errorf("load host %d: %w", id, err)
	}
	return host, nil
}

func (s *AuthService) issue(host models.Host) (HostToken, error) {
	now := s.now()
	token, err := s.sign(host.ID, now)
	if err != nil {
		return HostToken{}, err
	}
	return HostToken{
		Token:     token,
		HostID:    host.ID,
		Username:  host.Username,
		ExpiresAt: now.Add(tokenTTL),
	}, nil
}

func (s *AuthService) GenerateToken(hostID uint) (string, error) {
	return s.sign(hostID, s.now())
}

func (s *AuthService) sign(hostID uint, now time.Time) (string, error) {
	claims := hostClaims{
		HostID: hostID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) ValidateToken(tokenString string) (uint, error) {
	var claims hostClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.HostID == 0 {
		return 0, fmt.Errorf("%w: missing host_id", ErrInvalidToken)
	}
	return claims.HostID, nil
}
