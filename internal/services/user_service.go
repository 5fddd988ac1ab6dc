package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"geekdeals/internal/models"
	"geekdeals/internal/repositories"
)

type RegisterInput struct {
	Name     string
	CPF      string
	Email    string
	Password string
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	repo        repositories.UserRepository
	authService AuthService
}

func NewUserService(repo repositories.UserRepository, authService AuthService) UserService {
	return &userService{
		repo:        repo,
		authService: authService,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	cpf := strings.TrimSpace(in.CPF)
	email := normalizeEmail(in.Email)
	if name == "" || cpf == "" || email == "" || in.Password == "" {
		return nil, validationf("Campos obrigatórios ausentes.")
	}

	exists, err := s.repo.ExistsByEmailOrCPF(ctx, email, cpf)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	hash, err := s.authService.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		CPF:          cpf,
		Email:        email,
		PasswordHash: hash,
	}
	// the unique index still guards the race between the check and the insert
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("register user: %w", err)
	}
	log.Printf("[auth][register] user created id=%s email=%q", user.ID, user.Email)
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}
