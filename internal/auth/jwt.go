package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config carries what the manager needs from the environment.
type Config struct {
	JWTSecret string
	JWTIssuer string

	// AdminUser/AdminPassword are the single operator credential pair.
	AdminUser     string
	AdminPassword string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Manager issues and verifies the admin API's bearer tokens.
type Manager struct {
	secret     []byte
	issuer     string
	adminUser  string
	adminPass  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth: JWT secret is required")
	}
	if cfg.AdminUser == "" || cfg.AdminPassword == "" {
		return nil, errors.New("auth: admin credentials are required")
	}

	m := &Manager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		adminUser:  cfg.AdminUser,
		adminPass:  cfg.AdminPassword,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
	if m.accessTTL <= 0 {
		m.accessTTL = 15 * time.Minute
	}
	if m.refreshTTL <= 0 {
		m.refreshTTL = 30 * 24 * time.Hour
	}
	return m, nil
}

var ErrBadCredentials = errors.New("auth: bad credentials")

// CheckCredentials compares a login attempt against the configured admin
// credential pair in constant time.
func (m *Manager) CheckCredentials(user, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(m.adminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.adminPass)) == 1
	if !userOK || !passOK {
		return ErrBadCredentials
	}
	return nil
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func (m *Manager) IssuePair(now time.Time, subject string) (TokenPair, error) {
	access, err := m.issue(now, TokenTypeAccess, subject, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.issue(now, TokenTypeRefresh, subject, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *Manager) Verify(tokenString string, expected TokenType, now time.Time) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}

	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30 * time.Second),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	validator := jwt.NewValidator(opts...)
	if err := validator.Validate(claims.RegisteredClaims); err != nil {
		return Claims{}, err
	}

	if claims.TokenType != expected {
		return Claims{}, errors.New("auth: token_type mismatch")
	}
	if claims.Subject == "" {
		return Claims{}, errors.New("auth: subject missing")
	}
	return claims, nil
}

func (m *Manager) issue(now time.Time, tokenType TokenType, subject string, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		TokenType: tokenType,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}
