package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"geekdeals/internal/repositories"
)

// LoginThrottle limits login-start attempts per key (email, client IP).
type LoginThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type LoginChallenge struct {
	SessionToken string
	ExpiresIn    int // seconds
}

type AccessGrant struct {
	AccessToken string
	ExpiresAt   time.Time
	UserID      string
}

type ResendResult struct {
	ExpiresIn int // seconds
}

// LoginService drives the two-step login: password, then emailed code.
type LoginService struct {
	verifier   *CredentialVerifier
	store      *CodeStore
	dispatcher *CodeDispatcher
	tokens     *TokenIssuer
	users      repositories.UserRepository
	throttle   LoginThrottle
}

func NewLoginService(
	verifier *CredentialVerifier,
	store *CodeStore,
	dispatcher *CodeDispatcher,
	tokens *TokenIssuer,
	users repositories.UserRepository,
	throttle LoginThrottle,
) *LoginService {
	return &LoginService{
		verifier:   verifier,
		store:      store,
		dispatcher: dispatcher,
		tokens:     tokens,
		users:      users,
		throttle:   throttle,
	}
}

// Start checks the password and opens a pending verification.
func (s *LoginService) Start(ctx context.Context, email, password, clientIP string) (*LoginChallenge, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationf("Email e senha são obrigatórios.")
	}

	if err := s.checkThrottle(ctx, email, clientIP); err != nil {
		return nil, err
	}

	user, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}

	code, err := s.dispatcher.NewCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	entry, err := s.store.Create(user.ID, user.Email, code)
	if err != nil {
		return nil, fmt.Errorf("create pending verification: %w", err)
	}

	// entry is committed; delivery happens outside the store lock
	s.dispatcher.Dispatch(user.Email, user.Name, code)

	log.Printf("[auth][login] code issued userID=%s expires_at=%s", user.ID, entry.ExpiresAt.Format(time.RFC3339))
	return &LoginChallenge{
		SessionToken: entry.SessionToken,
		ExpiresIn:    int(s.store.TTL().Seconds()),
	}, nil
}

// Verify checks the code for a pending session and mints the access token on success.
func (s *LoginService) Verify(ctx context.Context, sessionToken, code string) (*AccessGrant, error) {
	sessionToken = strings.TrimSpace(sessionToken)
	code = strings.TrimSpace(code)
	if sessionToken == "" || code == "" {
		return nil, validationf("Token e código são obrigatórios.")
	}

	result, entry := s.store.Attempt(sessionToken, code)
	switch result {
	case AttemptMissing:
		return nil, ErrSessionExpired
	case AttemptExpired:
		log.Printf("[auth][2fa] code expired userID=%s", entry.UserID)
		return nil, ErrCodeExpired
	case AttemptExhausted:
		log.Printf("[auth][2fa] attempts exhausted userID=%s", entry.UserID)
		return nil, ErrTooManyAttempts
	case AttemptMismatch:
		remaining := s.store.MaxAttempts() - entry.Attempts
		if remaining < 0 {
			remaining = 0
		}
		log.Printf("[auth][2fa] wrong code userID=%s attempts=%d", entry.UserID, entry.Attempts)
		return nil, &InvalidCodeError{Remaining: remaining}
	}

	token, exp, err := s.tokens.Mint(entry.UserID)
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}
	log.Printf("[auth][2fa] login successful email=%q", entry.Email)
	return &AccessGrant{AccessToken: token, ExpiresAt: exp, UserID: entry.UserID}, nil
}

// Resend issues a fresh code for a pending session and resets its counters.
func (s *LoginService) Resend(ctx context.Context, sessionToken string) (*ResendResult, error) {
	sessionToken = strings.TrimSpace(sessionToken)
	if sessionToken == "" {
		return nil, validationf("Token é obrigatório.")
	}

	code, err := s.dispatcher.NewCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	entry, ok := s.store.Touch(sessionToken, code)
	if !ok {
		return nil, ErrSessionExpired
	}

	name := ""
	if user, err := s.users.GetByID(ctx, entry.UserID); err == nil {
		name = user.Name
	} else {
		log.Printf("[auth][resend] user lookup failed userID=%s: %v", entry.UserID, err)
	}
	s.dispatcher.Dispatch(entry.Email, name, code)

	log.Printf("[auth][resend] new code issued userID=%s", entry.UserID)
	return &ResendResult{ExpiresIn: int(s.store.TTL().Seconds())}, nil
}

func (s *LoginService) checkThrottle(ctx context.Context, email, clientIP string) error {
	if s.throttle == nil {
		return nil
	}
	keys := []string{"email:" + email}
	if clientIP != "" {
		keys = append(keys, "ip:"+clientIP)
	}
	for _, key := range keys {
		ok, err := s.throttle.Allow(ctx, key)
		if err != nil {
			// лимитер недоступен: не блокируем вход
			log.Printf("[auth][login] throttle unavailable key=%s: %v", key, err)
			continue
		}
		if !ok {
			log.Printf("[auth][login] throttled key=%s", key)
			return ErrLoginThrottled
		}
	}
	return nil
}
