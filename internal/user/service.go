// Package user はアカウント関連のユースケースを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/autobazar/internal/auth"
	"github.com/hitoshi/autobazar/internal/metrics"
	"github.com/hitoshi/autobazar/internal/model"
	"github.com/hitoshi/autobazar/internal/repository"
)

// Credentials は資格情報の検証と登録のインターフェース。
type Credentials interface {
	NormalizeIdentity(identity string) (string, error)
	AllowedDomains() []string
	Register(ctx context.Context, identity, password string) (string, error)
	Verify(ctx context.Context, identity, password string) (string, error)
}

// Sessions はセッションの発行と破棄のインターフェース。
type Sessions interface {
	StartSession(ctx context.Context, userID string) (*model.Session, error)
	EndSession(ctx context.Context, token string) error
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Identity             string
	Password             string
	PasswordConfirmation string
}

// LoginInput はログインの入力。
type LoginInput struct {
	Identity string
	Password string
}

// LoginResult はログイン成功時の結果。
type LoginResult struct {
	User    *model.User
	Session *model.Session
}

// Service はアカウント管理のサービス層。
// 登録、ログイン、ログアウト、現在のユーザー取得を提供する。
type Service struct {
	credentials Credentials
	sessions    Sessions
	userRepo    repository.UserRepository
	auditRepo   repository.LoginAuditRepository
	metrics     metrics.MetricsCollector
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	credentials Credentials,
	sessions Sessions,
	userRepo repository.UserRepository,
	auditRepo repository.LoginAuditRepository,
	mc metrics.MetricsCollector,
) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{
		credentials: credentials,
		sessions:    sessions,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		metrics:     mc,
		now:         time.Now,
	}
}

// Register は新規ユーザーを登録する。
// 検証順序: ログインIDの形式 → パスワード長 → 確認用パスワード → 重複。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	identity, err := s.credentials.NormalizeIdentity(in.Identity)
	if err != nil {
		s.metrics.RecordRegistration("invalid")
		return nil, model.NewInvalidIdentityError(s.credentials.AllowedDomains())
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		s.metrics.RecordRegistration("invalid")
		return nil, model.NewWeakPasswordError(auth.MinPasswordLength, auth.MaxPasswordLength)
	}
	if in.Password != in.PasswordConfirmation {
		s.metrics.RecordRegistration("invalid")
		return nil, model.NewPasswordMismatchError()
	}

	userID, err := s.credentials.Register(ctx, identity, in.Password)
	switch {
	case errors.Is(err, auth.ErrDuplicateIdentity):
		s.metrics.RecordRegistration("duplicate")
		return nil, model.NewDuplicateIdentityError()
	case errors.Is(err, auth.ErrInvalidIdentity):
		s.metrics.RecordRegistration("invalid")
		return nil, model.NewInvalidIdentityError(s.credentials.AllowedDomains())
	case errors.Is(err, auth.ErrWeakPassword):
		s.metrics.RecordRegistration("invalid")
		return nil, model.NewWeakPasswordError(auth.MinPasswordLength, auth.MaxPasswordLength)
	case err != nil:
		s.metrics.RecordRegistration("error")
		return nil, fmt.Errorf("ユーザー登録に失敗しました: %w", err)
	}

	s.metrics.RecordRegistration("success")

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("登録ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("登録直後のユーザーが見つかりません: %s", userID)
	}
	return user, nil
}

// Login はログインIDとパスワードを照合し、セッションを発行する。
// ログイン成功は監査記録に追記する。監査記録の失敗はログインを失敗させない。
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	userID, err := s.credentials.Verify(ctx, in.Identity, in.Password)
	if errors.Is(err, auth.ErrAuthFailure) {
		s.metrics.RecordLogin("failure")
		return nil, model.NewAuthFailureError()
	}
	if err != nil {
		s.metrics.RecordLogin("error")
		return nil, fmt.Errorf("認証に失敗しました: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	session, err := s.sessions.StartSession(ctx, userID)
	if err != nil {
		s.metrics.RecordLogin("error")
		return nil, fmt.Errorf("セッションの発行に失敗しました: %w", err)
	}

	s.metrics.RecordLogin("success")
	s.recordAudit(ctx, user)

	return &LoginResult{User: user, Session: session}, nil
}

func (s *Service) recordAudit(ctx context.Context, user *model.User) {
	audit := &model.LoginAudit{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		Identity:   user.Identity,
		LoggedInAt: s.now().UTC(),
	}

	slog.Info("user logged in",
		slog.String("user_id", audit.UserID),
		slog.String("identity", audit.Identity),
		slog.Time("logged_in_at", audit.LoggedInAt),
	)

	if s.auditRepo == nil {
		return
	}
	if err := s.auditRepo.Append(ctx, audit); err != nil {
		slog.Error("ログイン監査記録の保存に失敗しました",
			slog.String("user_id", audit.UserID),
			slog.String("error", err.Error()),
		)
	}
}

// Logout はprincipalのセッションを破棄する。未ログインの場合は何もしない。
func (s *Service) Logout(ctx context.Context, principal model.Principal) error {
	if principal.IsAnonymous() {
		return nil
	}
	if err := s.sessions.EndSession(ctx, principal.SessionID); err != nil {
		return fmt.Errorf("ログアウトに失敗しました: %w", err)
	}
	slog.Info("user logged out", slog.String("user_id", principal.UserID))
	return nil
}

// Me は現在ログイン中のユーザーを返す。
func (s *Service) Me(ctx context.Context, principal model.Principal) (*model.User, error) {
	if principal.IsAnonymous() {
		return nil, model.NewNotAuthenticatedError()
	}

	user, err := s.userRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// RecentLogins は現在のユーザーのログイン履歴を新しい順に最大limit件返す。
func (s *Service) RecentLogins(ctx context.Context, principal model.Principal, limit int) ([]model.LoginAudit, error) {
	if principal.IsAnonymous() {
		return nil, model.NewNotAuthenticatedError()
	}
	if limit <= 0 {
		limit = 10
	}

	audits, err := s.auditRepo.ListByUserID(ctx, principal.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("ログイン履歴の取得に失敗しました: %w", err)
	}
	if audits == nil {
		audits = []model.LoginAudit{}
	}
	return audits, nil
}
