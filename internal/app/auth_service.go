package app

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"mvp-foundry/internal/pkg/jwtutil"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrAuthDisabled      = errors.New("authentication is disabled")
	ErrInvalidCredential = errors.New("invalid bootstrap key")
)

// AuthService issues operator tokens for the write endpoints. It is only
// active when a JWT secret is configured.
type AuthService struct {
	jwtSecret     string
	jwtExpiration time.Duration
	bootstrapKey  string
}

type IssueTokenInput struct {
	Operator     string
	BootstrapKey string
}

type TokenResult struct {
	Token     string    `json:"token"`
	Operator  string    `json:"operator"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewAuthService(jwtSecret string, jwtExpiration time.Duration, bootstrapKey string) *AuthService {
	if jwtExpiration <= 0 {
		jwtExpiration = 2 * time.Hour
	}
	return &AuthService{
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		bootstrapKey:  bootstrapKey,
	}
}

func (s *AuthService) Enabled() bool {
	return s.jwtSecret != ""
}

func (s *AuthService) Secret() string {
	return s.jwtSecret
}

func (s *AuthService) IssueToken(input IssueTokenInput) (*TokenResult, error) {
	if !s.Enabled() || s.bootstrapKey == "" {
		return nil, ErrAuthDisabled
	}

	operator := strings.TrimSpace(input.Operator)
	err := validation.Validate(operator,
		validation.Required,
		validation.Length(1, 64),
	)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if subtle.ConstantTimeCompare([]byte(input.BootstrapKey), []byte(s.bootstrapKey)) != 1 {
		return nil, ErrInvalidCredential
	}

	expiresAt := time.Now().Add(s.jwtExpiration)
	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, operator)
	if err != nil {
		return nil, err
	}
	return &TokenResult{Token: token, Operator: operator, ExpiresAt: expiresAt}, nil
}
