// Package auth регистрация, вход и проверка токенов.
// Пароли хранятся в bcrypt, сессии выдаются парой JWT (access + refresh).
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"taskBurst/internal/logger"
	"taskBurst/internal/models/user"
	repo "taskBurst/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrUserExists         = errors.New("пользователь с таким email уже существует")
	ErrInvalidEmail       = errors.New("некорректный email")
	ErrWeakPassword       = errors.New("пароль должен быть не короче 6 символов")
	ErrPasswordTooLong    = errors.New("пароль должен быть не длиннее 72 байт")
	ErrInvalidToken       = errors.New("недействительный токен")
	ErrExpiredToken       = errors.New("срок действия токена истёк")
	ErrRevokedToken       = errors.New("токен отозван")
)

type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Service struct {
	users       UserRepository
	hasher      *PasswordHasher
	jwt         *JWTManager
	revocations Revocations
}

func NewService(users UserRepository, hasher *PasswordHasher, jwt *JWTManager, revocations Revocations) *Service {
	return &Service{
		users:       users,
		hasher:      hasher,
		jwt:         jwt,
		revocations: revocations,
	}
}

func validateCredentials(email, password string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	// "Имя <a@b.c>" тоже парсится, но нам нужен голый адрес
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}
	return email, nil
}

func (s *Service) SignUp(ctx context.Context, email, password string) (*user.Session, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("хэширование пароля: %w", err)
	}

	u, err := s.users.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	logger.Info("Auth: пользователь зарегистрирован", zap.String("user_id", u.ID.String()))
	return s.newSession(u)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*user.Session, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		logger.Info("Auth: неудачная попытка входа", zap.String("user_id", u.ID.String()))
		return nil, ErrInvalidCredentials
	}

	return s.newSession(u)
}

// SignOut отзывает токен до конца его срока действия.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil
		}
		return err
	}

	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("отзыв токена: %w", err)
	}
	logger.Info("Auth: токен отозван", zap.String("user_id", claims.UserID), zap.String("token_type", claims.TokenType))
	return nil
}

// Refresh выдаёт новую пару токенов; старый refresh-токен больше не принимается.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*user.Session, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	u, err := s.findClaimedUser(ctx, claims)
	if err != nil {
		return nil, err
	}

	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, fmt.Errorf("отзыв refresh-токена: %w", err)
	}
	return s.newSession(u)
}

// Authenticate проверяет access-токен и возвращает его владельца.
func (s *Service) Authenticate(ctx context.Context, token string) (*user.User, error) {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return s.findClaimedUser(ctx, claims)
}

func (s *Service) CurrentUser(ctx context.Context) (*user.User, State) {
	return FromContext(ctx)
}

func (s *Service) checkRevoked(ctx context.Context, claims *Claims) error {
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("проверка отзыва токена: %w", err)
	}
	if revoked {
		return ErrRevokedToken
	}
	return nil
}

func (s *Service) findClaimedUser(ctx context.Context, claims *Claims) (*user.User, error) {
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}
	return u, nil
}

func (s *Service) newSession(u *user.User) (*user.Session, error) {
	access, err := s.jwt.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("генерация access-токена: %w", err)
	}

	refresh, err := s.jwt.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("генерация refresh-токена: %w", err)
	}

	return &user.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.jwt.AccessTokenDuration(),
		TokenType:    "Bearer",
		User:         u,
	}, nil
}
