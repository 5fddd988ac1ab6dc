package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"geekdeals/internal/utils"
)

const (
	DefaultCodeTTL       = 10 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
	DefaultMaxAttempts   = 5
)

// PendingVerification is the state between a successful password check and
// code verification. Values handed out by CodeStore are copies.
type PendingVerification struct {
	SessionToken string
	UserID       string
	Email        string
	ExpectedCode string
	Attempts     int
	ExpiresAt    time.Time
}

type AttemptResult int

const (
	AttemptMissing AttemptResult = iota
	AttemptExpired
	AttemptExhausted
	AttemptMismatch
	AttemptMatched
)

type CodeStoreConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	MaxAttempts   int
}

// CodeStore is the process-local registry of pending verifications keyed by
// session token. One mutex serializes foreground operations and the sweep.
type CodeStore struct {
	mu      sync.Mutex
	entries map[string]*PendingVerification

	ttl         time.Duration
	sweepEvery  time.Duration
	maxAttempts int

	now      func() time.Time
	newToken func() (string, error)

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewCodeStore(cfg CodeStoreConfig) (*CodeStore, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCodeTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.SweepInterval >= cfg.TTL {
		return nil, errors.New("code store: sweep interval must be shorter than TTL")
	}
	return &CodeStore{
		entries:     make(map[string]*PendingVerification),
		ttl:         cfg.TTL,
		sweepEvery:  cfg.SweepInterval,
		maxAttempts: cfg.MaxAttempts,
		now:         time.Now,
		newToken:    utils.NewSessionToken,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}, nil
}

func (s *CodeStore) TTL() time.Duration { return s.ttl }
func (s *CodeStore) MaxAttempts() int   { return s.maxAttempts }

// Create registers a new entry and returns it with its freshly generated session token.
func (s *CodeStore) Create(userID, email, code string) (PendingVerification, error) {
	token, err := s.newToken()
	if err != nil {
		return PendingVerification{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.entries[token]; taken {
		// 256 бит энтропии: сюда не попадаем, если генератор исправен
		return PendingVerification{}, errors.New("code store: session token collision")
	}
	e := &PendingVerification{
		SessionToken: token,
		UserID:       userID,
		Email:        email,
		ExpectedCode: code,
		ExpiresAt:    s.now().Add(s.ttl),
	}
	s.entries[token] = e
	return *e, nil
}

func (s *CodeStore) Get(token string) (PendingVerification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok {
		return PendingVerification{}, false
	}
	return *e, true
}

// Touch replaces the code and resets attempts and expiry.
func (s *CodeStore) Touch(token, newCode string) (PendingVerification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok {
		return PendingVerification{}, false
	}
	e.ExpectedCode = newCode
	e.Attempts = 0
	e.ExpiresAt = s.now().Add(s.ttl)
	return *e, true
}

func (s *CodeStore) Delete(token string) {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
}

// Attempt runs one verification step atomically. The budget is checked
// before the comparison, and the counter is bumped before comparing.
func (s *CodeStore) Attempt(token, code string) (AttemptResult, PendingVerification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return AttemptMissing, PendingVerification{}
	}
	if s.now().After(e.ExpiresAt) {
		delete(s.entries, token)
		return AttemptExpired, *e
	}
	if e.Attempts >= s.maxAttempts {
		delete(s.entries, token)
		return AttemptExhausted, *e
	}

	e.Attempts++
	if subtle.ConstantTimeCompare([]byte(e.ExpectedCode), []byte(code)) != 1 {
		return AttemptMismatch, *e
	}
	delete(s.entries, token)
	return AttemptMatched, *e
}

// Sweep drops every expired entry and returns how many were removed.
func (s *CodeStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for token, e := range s.entries {
		if now.After(e.ExpiresAt) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

func (s *CodeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start launches the periodic sweep. It runs until ctx is done or Stop is called.
func (s *CodeStore) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.sweepLoop(ctx)
}

// Stop ends the sweep goroutine and waits for it to exit.
func (s *CodeStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.started.Load() {
		<-s.done
	}
}

func (s *CodeStore) sweepLoop(ctx context.Context) {
	defer close(s.done)
	t := time.NewTicker(s.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("[2fa][sweep] removed %d expired entries", n)
			}
		}
	}
}
