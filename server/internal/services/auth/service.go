package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid client id or secret")
	ErrInvalidToken       = errors.New("invalid token")
)

// Service issues and validates bearer tokens for API clients
type Service struct {
	jwtSecret string
	tokenTTL  time.Duration
	// client id -> bcrypt hash of the client secret
	clients map[string]string
	logger  hclog.Logger
	now     func() time.Time
}

// Claims represents JWT claims
type Claims struct {
	ClientID string `json:"client_id"`
	jwt.StandardClaims
}

// New creates a new auth service
func New(jwtSecret string, tokenTTL time.Duration, clients map[string]string, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	copied := make(map[string]string, len(clients))
	for id, hash := range clients {
		copied[id] = hash
	}
	return &Service{
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		clients:   copied,
		logger:    logger,
		now:       time.Now,
	}
}

// HashSecret hashes a client secret using bcrypt
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Authenticate checks client credentials and returns a signed token and its expiry
func (s *Service) Authenticate(clientID, clientSecret string) (string, time.Time, error) {
	if clientID == "" || clientSecret == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}

	hash, ok := s.clients[clientID]
	if !ok || !verifySecret(clientSecret, hash) {
		s.logger.Warn("rejected client credentials", "client_id", clientID)
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.CreateToken(clientID)
	if err != nil {
		return "", time.Time{}, err
	}
	s.logger.Info("issued token", "client_id", clientID, "expires_at", expiresAt.Unix())
	return token, expiresAt, nil
}

// CreateToken creates a new JWT token for a client
func (s *Service) CreateToken(clientID string) (string, time.Time, error) {
	issuedAt := s.now()
	expirationTime := issuedAt.Add(s.tokenTTL)
	claims := &Claims{
		ClientID: clientID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
			IssuedAt:  issuedAt.Unix(),
			Subject:   clientID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expirationTime, nil
}

// ValidateToken validates and parses a JWT token
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.ClientID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// verifySecret verifies a secret against its bcrypt hash
func verifySecret(secret, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	return err == nil
}
