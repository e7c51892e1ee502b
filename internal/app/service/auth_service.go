package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/maison-backend/config"
	"github.com/ikkim/maison-backend/pkg/logger"
	"github.com/ikkim/maison-backend/pkg/util"
)

var (
	ErrInvalidPasscode = errors.New("invalid passcode")
)

// AdminToken is returned by a successful back-office login.
type AdminToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthService interface {
	Login(passcode string) (*AdminToken, error)
	ValidateToken(token string) (*util.Claims, error)
}

type authService struct {
	passcodeHash string
	tokenSecret  string
	tokenExpiry  time.Duration
}

// NewAuthService prefers the configured bcrypt hash and hashes the plain
// passcode otherwise.
func NewAuthService(cfg config.AdminConfig) (AuthService, error) {
	hash := cfg.PasscodeHash
	if hash == "" {
		var err error
		hash, err = util.HashPasscode(cfg.Passcode)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin passcode: %w", err)
		}
	} else if util.NeedsRehash(hash) {
		logger.Warn("Admin passcode hash uses a weak bcrypt cost", nil)
	}

	if cfg.TokenSecret == "" {
		return nil, errors.New("admin token secret is required")
	}

	return &authService{
		passcodeHash: hash,
		tokenSecret:  cfg.TokenSecret,
		tokenExpiry:  cfg.TokenExpiry,
	}, nil
}

func (s *authService) Login(passcode string) (*AdminToken, error) {
	logger.Info("Admin login attempt", nil)

	if !util.VerifyPasscode(s.passcodeHash, passcode) {
		logger.Warn("Admin login failed: invalid passcode", nil)
		return nil, ErrInvalidPasscode
	}

	token, expiresAt, err := util.GenerateToken("admin", util.RoleAdmin, s.tokenSecret, s.tokenExpiry)
	if err != nil {
		logger.Error("Failed to issue admin token", err, nil)
		return nil, err
	}

	logger.Info("Admin logged in", map[string]interface{}{
		"expires_at": expiresAt,
	})
	return &AdminToken{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) ValidateToken(token string) (*util.Claims, error) {
	claims, err := util.ValidateToken(token, s.tokenSecret)
	if err != nil {
		return nil, err
	}
	if claims.Role != util.RoleAdmin {
		return nil, util.ErrInvalidToken
	}
	return claims, nil
}
