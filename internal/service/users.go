package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/port"
)

var userTracer = otel.Tracer("service/users")

// UserService manages staff accounts. Only admins reach these
// operations; the role gate lives in the HTTP middleware.
type UserService struct {
	store  port.UserStore
	logger *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(store port.UserStore, logger *zap.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

func (s *UserService) ListUsers(ctx context.Context, opts port.ListOptions) ([]domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.ListUsers")
	defer span.End()

	return s.store.ListUsers(ctx, opts)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.GetUser")
	defer span.End()

	return s.store.GetUser(ctx, id)
}

func (s *UserService) CreateUser(ctx context.Context, in *domain.UserInput) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.CreateUser")
	defer span.End()

	if err := validateUser(in, true); err != nil {
		return nil, err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.store.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing email: %w", err)
	}
	if existing != nil {
		return nil, &domain.ErrConflict{Message: fmt.Sprintf("email %s is already in use", in.Email)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, in, string(hash))
	if err != nil {
		s.logger.Error("failed to create user", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role),
	)
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, in *domain.UserInput) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.UpdateUser")
	defer span.End()

	if err := validateUser(in, false); err != nil {
		return nil, err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	user, err := s.store.UpdateUser(ctx, id, in)
	if err != nil {
		return nil, err
	}

	// A password in the payload is a reset by the admin.
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if err := s.store.SetCredential(ctx, id, string(hash)); err != nil {
			return nil, fmt.Errorf("set credential: %w", err)
		}
		if err := s.store.RevokeAllRefreshTokens(ctx, id); err != nil {
			s.logger.Warn("failed to revoke sessions after password reset",
				zap.String("user_id", id), zap.Error(err))
		}
	}

	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	ctx, span := userTracer.Start(ctx, "UserService.DeleteUser")
	defer span.End()

	if err := s.store.RevokeAllRefreshTokens(ctx, id); err != nil {
		s.logger.Warn("failed to revoke sessions before user delete",
			zap.String("user_id", id), zap.Error(err))
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

func validateUser(in *domain.UserInput, creating bool) error {
	fields := map[string]string{}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		fields["email"] = "must be a valid email"
	}
	if in.FullName == "" {
		fields["full_name"] = "required"
	}
	switch in.Role {
	case domain.RoleAdmin, domain.RoleProfessional, domain.RoleReception:
	default:
		fields["role"] = "must be admin, professional or reception"
	}
	if creating && len(in.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("must have at least %d characters", minPasswordLength)
	}
	if !creating && in.Password != "" && len(in.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("must have at least %d characters", minPasswordLength)
	}
	if len(fields) > 0 {
		return &domain.ErrValidation{Fields: fields}
	}
	return nil
}
