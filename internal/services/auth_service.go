package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"foodlink/internal/domain"
	"foodlink/internal/repos"

	"github.com/google/uuid"
)

var (
	ErrBadCreds   = errors.New("invalid email or password")
	ErrEmailTaken = errors.New("email already registered")
)

type AuthService struct {
	Accounts *repos.AccountRepo
}

func (s *AuthService) Register(email, name, password, role string) (*domain.Account, error) {
	if _, err := s.Accounts.ByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	a := &domain.Account{
		ID:    uuid.NewString(),
		Email: strings.ToLower(strings.TrimSpace(email)),
		Name:  name,
		Hash:  string(h),
		Role:  role,
	}
	if err := s.Accounts.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AuthService) Login(sid, email, password string) (*domain.Account, error) {
	a, err := s.Accounts.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(a.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Accounts.BindSession(sid, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Accounts.UnbindSession(sid)
}

func (s *AuthService) CurrentAccount(sid string) (*domain.Account, error) {
	return s.Accounts.SessionAccount(sid)
}
