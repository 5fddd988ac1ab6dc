package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"geekdeals/internal/models"
	"geekdeals/internal/repositories"
)

func validRegistration() RegisterInput {
	return RegisterInput{Name: "Ana", CPF: "12345678900", Email: "Ana@Geek.com", Password: "s3cret"}
}

func TestUserService_Register(t *testing.T) {
	repo := newMemUserRepo()
	auth := NewAuthService(bcrypt.MinCost)
	svc := NewUserService(repo, auth)

	u, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ana@geek.com", u.Email)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "s3cret"))

	got, err := svc.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
}

func TestUserService_RegisterConflictWritesNothing(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo, NewAuthService(bcrypt.MinCost))
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	sameEmail := validRegistration()
	sameEmail.CPF = "99999999999"
	_, err = svc.Register(context.Background(), sameEmail)
	assert.ErrorIs(t, err, ErrConflict)

	sameCPF := validRegistration()
	sameCPF.Email = "other@geek.com"
	_, err = svc.Register(context.Background(), sameCPF)
	assert.ErrorIs(t, err, ErrConflict)

	assert.Equal(t, 1, repo.count())
}

func TestUserService_RegisterMissingFields(t *testing.T) {
	svc := NewUserService(newMemUserRepo(), NewAuthService(bcrypt.MinCost))
	for _, mutate := range []func(*RegisterInput){
		func(in *RegisterInput) { in.Name = " " },
		func(in *RegisterInput) { in.CPF = "" },
		func(in *RegisterInput) { in.Email = "" },
		func(in *RegisterInput) { in.Password = "" },
	} {
		in := validRegistration()
		mutate(&in)
		_, err := svc.Register(context.Background(), in)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "Campos obrigatórios ausentes.", ve.Message)
	}
}

// racyUserRepo passes the existence check but loses the insert to a concurrent writer.
type racyUserRepo struct {
	*memUserRepo
}

func (racyUserRepo) ExistsByEmailOrCPF(context.Context, string, string) (bool, error) {
	return false, nil
}

func (racyUserRepo) Create(context.Context, *models.User) error {
	return repositories.ErrDuplicate
}

func TestUserService_RegisterUniqueIndexRace(t *testing.T) {
	svc := NewUserService(racyUserRepo{newMemUserRepo()}, NewAuthService(bcrypt.MinCost))
	_, err := svc.Register(context.Background(), validRegistration())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserService_GetUserByIDMissing(t *testing.T) {
	svc := NewUserService(newMemUserRepo(), NewAuthService(bcrypt.MinCost))
	_, err := svc.GetUserByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
