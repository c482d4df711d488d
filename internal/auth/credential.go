// Package auth はパスワード認証とセッション管理を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/autobazar/internal/model"
	"github.com/hitoshi/autobazar/internal/repository"
)

// パスワード長の範囲（文字数）。
const (
	MinPasswordLength = 6
	MaxPasswordLength = 20
)

// bcryptが扱える最大バイト数。
const maxPasswordBytes = 72

var (
	// ErrInvalidIdentity はログインIDの形式または許可ドメインの違反。
	ErrInvalidIdentity = errors.New("auth: invalid identity")
	// ErrWeakPassword はパスワード長の違反。
	ErrWeakPassword = errors.New("auth: password length out of range")
	// ErrDuplicateIdentity はログインIDが登録済みであることを表す。
	ErrDuplicateIdentity = errors.New("auth: identity already registered")
	// ErrAuthFailure はログイン失敗。IDが未登録かパスワード誤りかは区別しない。
	ErrAuthFailure = errors.New("auth: authentication failed")
)

// CredentialConfig は資格情報ストアの設定。
type CredentialConfig struct {
	BcryptCost int
}

// CredentialStore はユーザーの資格情報を登録・照合する。
// 平文のパスワードは保存もログ出力もしない。
type CredentialStore struct {
	users  repository.UserRepository
	policy *IdentityPolicy
	cost   int
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewCredentialStore はCredentialStoreを生成する。
func NewCredentialStore(users repository.UserRepository, policy *IdentityPolicy, config CredentialConfig) *CredentialStore {
	cost := config.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &CredentialStore{
		users:  users,
		policy: policy,
		cost:   cost,
		now:    time.Now,
	}
}

// NormalizeIdentity はログインIDを検証し、正規化した値を返す。
func (s *CredentialStore) NormalizeIdentity(identity string) (string, error) {
	return s.policy.Normalize(identity)
}

// AllowedDomains は登録可能なドメインを返す。
func (s *CredentialStore) AllowedDomains() []string {
	return s.policy.AllowedDomains()
}

// ValidatePassword はパスワード長を検証する。
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength || len(password) > maxPasswordBytes {
		return ErrWeakPassword
	}
	return nil
}

// Register は新しいユーザーを登録し、そのIDを返す。
func (s *CredentialStore) Register(ctx context.Context, identity, password string) (string, error) {
	normalized, err := s.policy.Normalize(identity)
	if err != nil {
		return "", err
	}
	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	existing, err := s.users.FindByIdentity(ctx, normalized)
	if err != nil {
		return "", fmt.Errorf("failed to look up identity: %w", err)
	}
	if existing != nil {
		return "", ErrDuplicateIdentity
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Identity:     normalized,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", ErrDuplicateIdentity
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("identity", user.Identity),
	)
	return user.ID, nil
}

// Verify はログインIDとパスワードを照合し、一致したユーザーのIDを返す。
// 失敗理由はログにのみ記録し、呼び出し側には常にErrAuthFailureを返す。
func (s *CredentialStore) Verify(ctx context.Context, identity, password string) (string, error) {
	normalized, err := s.policy.Normalize(identity)
	var user *model.User
	if err == nil {
		user, err = s.users.FindByIdentity(ctx, normalized)
		if err != nil {
			return "", fmt.Errorf("failed to look up identity: %w", err)
		}
	}

	if user == nil {
		// 未登録IDでもbcrypt比較を行い、応答時間を揃える。
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		slog.Info("authentication failed", slog.String("reason", "unknown_identity"))
		return "", ErrAuthFailure
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Info("authentication failed",
			slog.String("reason", "password_mismatch"),
			slog.String("user_id", user.ID),
		)
		return "", ErrAuthFailure
	}

	return user.ID, nil
}

func (s *CredentialStore) dummy() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("autobazar-dummy-password"), s.cost)
		if err != nil {
			slog.Error("failed to prepare dummy hash", slog.String("error", err.Error()))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
