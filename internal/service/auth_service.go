package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type IAuthService interface {
	SignInAnonymous(ctx context.Context, req *dto.AnonymousSignInRequest) (*dto.AuthResponse, error)
	TouchLastSeen(ctx context.Context, userId uuid.UUID) error
}

type authService struct {
	uowFactory    unitofwork.RepositoryFactory
	logger        logger.ILogger
	jwtSecret     string
	tokenLifetime time.Duration
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger, jwtSecret string, tokenLifetime time.Duration) IAuthService {
	return &authService{
		uowFactory:    uowFactory,
		logger:        log,
		jwtSecret:     jwtSecret,
		tokenLifetime: tokenLifetime,
	}
}

// SignInAnonymous mints a fresh anonymous identity. No email, no
// password: the returned token is the only handle to the account, so
// losing it means starting over.
func (s *authService) SignInAnonymous(ctx context.Context, req *dto.AnonymousSignInRequest) (*dto.AuthResponse, error) {
	displayName := req.DisplayName
	if displayName == "" {
		displayName = "Guest"
	}

	now := time.Now()
	user := &entity.User{
		Id:          uuid.New(),
		DisplayName: displayName,
		Role:        entity.UserRoleUser,
		Status:      entity.UserStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
		LastSeenAt:  &now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	expiresAt := now.Add(s.tokenLifetime)
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"role":    user.Role,
		"exp":     expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("AuthService", "Anonymous user created", map[string]interface{}{"user_id": user.Id})

	return &dto.AuthResponse{
		Token:     signedToken,
		UserId:    user.Id,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *authService) TouchLastSeen(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("user not found")
	}
	if user.Status == entity.UserStatusBlocked {
		return errors.New("user account is blocked")
	}

	return uow.UserRepository().TouchLastSeen(ctx, userId)
}
