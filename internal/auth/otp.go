package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/saigonmart/backend/internal/customers"
	"github.com/saigonmart/backend/pkg/auth"
	"github.com/saigonmart/backend/pkg/auth/session"
	"github.com/saigonmart/backend/pkg/config"
	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/enums"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	redisclient "github.com/saigonmart/backend/pkg/redis"
)

type otpStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	OTPKey(phone string) string
	OTPAttemptsKey(phone string) string
}

type customerSource interface {
	UpsertByPhone(ctx context.Context, phone string, loginAt time.Time) (*models.Customer, error)
}

type sessionCreator interface {
	Create(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

// OTPService implements passwordless phone login: a short-lived code sent to
// the phone, exchanged for a JWT on verification.
type OTPService struct {
	store     otpStore
	sender    Sender
	customers customerSource
	sessions  sessionCreator
	jwtCfg    config.JWTConfig
	otpCfg    config.OTPConfig
	now       func() time.Time
}

// TokenResult is a successful login: the signed token and its subject.
type TokenResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Customer  *models.Customer `json:"customer"`
}

// NewOTPService builds the phone-OTP login service.
func NewOTPService(store *redisclient.Client, sender Sender, customerSrc customerSource, sessions *session.Manager, jwtCfg config.JWTConfig, otpCfg config.OTPConfig) (*OTPService, error) {
	if store == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if sender == nil {
		return nil, fmt.Errorf("otp sender required")
	}
	if customerSrc == nil {
		return nil, fmt.Errorf("customer source required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	return &OTPService{
		store:     store,
		sender:    sender,
		customers: customerSrc,
		sessions:  sessions,
		jwtCfg:    jwtCfg,
		otpCfg:    otpCfg,
		now:       time.Now,
	}, nil
}

// RequestCode issues a fresh code for the phone, applying per-phone and
// per-IP fixed-window limits. Re-requesting within the window replaces the
// pending code.
func (s *OTPService) RequestCode(ctx context.Context, phone, clientIP string) error {
	normalized, err := customers.NormalizePhone(phone)
	if err != nil {
		return err
	}

	if err := s.allow(ctx, "otp:phone:"+normalized, int64(s.otpCfg.PhoneLimit)); err != nil {
		return err
	}
	if clientIP != "" {
		if err := s.allow(ctx, "otp:ip:"+clientIP, int64(s.otpCfg.IPLimit)); err != nil {
			return err
		}
	}

	code, err := generateCode(s.otpCfg.CodeLength)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp code")
	}
	if err := s.store.Set(ctx, s.store.OTPKey(normalized), code, s.otpCfg.TTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp code")
	}
	if err := s.store.Del(ctx, s.store.OTPAttemptsKey(normalized)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset otp attempts")
	}

	if err := s.sender.SendCode(ctx, normalized, code); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send otp code")
	}
	return nil
}

// VerifyCode exchanges a pending code for a signed access token, creating the
// customer record on first login.
func (s *OTPService) VerifyCode(ctx context.Context, phone, code string) (*TokenResult, error) {
	normalized, err := customers.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}

	attempts, err := s.store.IncrWithTTL(ctx, s.store.OTPAttemptsKey(normalized), s.otpCfg.TTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count otp attempts")
	}
	if s.otpCfg.MaxAttempts > 0 && attempts > int64(s.otpCfg.MaxAttempts) {
		// burn the pending code once the attempt budget is spent
		_ = s.store.Del(ctx, s.store.OTPKey(normalized))
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many verification attempts")
	}

	stored, err := s.store.Get(ctx, s.store.OTPKey(normalized))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp code")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired code")
	}

	if err := s.store.Del(ctx, s.store.OTPKey(normalized), s.store.OTPAttemptsKey(normalized)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume otp code")
	}

	now := s.now().UTC()
	customer, err := s.customers.UpsertByPhone(ctx, normalized, now)
	if err != nil {
		return nil, err
	}

	jti := auth.NewAccessID()
	token, err := auth.MintAccessToken(s.jwtCfg, now, auth.AccessTokenPayload{
		SubjectID: customer.ID,
		Role:      enums.ActorRoleCustomer,
		Phone:     customer.Phone,
		JTI:       jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	if err := s.sessions.Create(ctx, jti); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	return &TokenResult{
		Token:     token,
		ExpiresAt: now.Add(s.jwtCfg.AccessTokenTTL()),
		Customer:  customer,
	}, nil
}

// Logout revokes the session for the provided token ID.
func (s *OTPService) Logout(ctx context.Context, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *OTPService) allow(ctx context.Context, scope string, limit int64) error {
	if limit <= 0 {
		return nil
	}
	allowed, _, err := s.store.FixedWindowAllow(ctx, scope, limit, s.otpCfg.RequestWindow)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply rate limit")
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many code requests, try again later")
	}
	return nil
}

func generateCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
