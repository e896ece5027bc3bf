package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sana-care/sana-cli/internal/domain"
	"go.uber.org/zap"
)

type AuthAPI interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (domain.Profile, error)
}

type AuthService struct {
	api      AuthAPI
	validate *validator.Validate
	log      *zap.Logger
}

func NewAuthService(api AuthAPI, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{
		api:      api,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      logger,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email address %q", email)
	}
	if err := s.validate.Var(password, "required"); err != nil {
		return errors.New("password is required")
	}

	if err := s.api.Login(ctx, email, password); err != nil {
		return err
	}

	s.log.Info("signed in", zap.String("email", email))
	return nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		return err
	}
	s.log.Info("signed out")
	return nil
}

// Profile fetches the signed-in user's profile and completion flags.
func (s *AuthService) Profile(ctx context.Context) (domain.Profile, error) {
	return s.api.Me(ctx)
}
