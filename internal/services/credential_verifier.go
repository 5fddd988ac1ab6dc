package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"geekdeals/internal/models"
	"geekdeals/internal/repositories"
)

// CredentialVerifier checks an email/password pair against stored users.
// Unknown email and wrong password are indistinguishable to the caller.
type CredentialVerifier struct {
	users repositories.UserRepository
	auth  AuthService

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentialVerifier(users repositories.UserRepository, auth AuthService) *CredentialVerifier {
	return &CredentialVerifier{users: users, auth: auth}
}

func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)

	user, err := v.users.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		log.Printf("[auth][verify] unknown email=%q", email)
		// same bcrypt cost as a wrong password
		v.auth.CheckPassword(v.unknownUserHash(), password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !v.auth.CheckPassword(user.PasswordHash, password) {
		log.Printf("[auth][verify] password mismatch userID=%s", user.ID)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (v *CredentialVerifier) unknownUserHash() string {
	v.dummyOnce.Do(func() {
		h, err := v.auth.HashPassword("geekdeals-unknown-user")
		if err != nil {
			log.Printf("[auth][verify] dummy hash failed: %v", err)
			return
		}
		v.dummyHash = h
	})
	return v.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
