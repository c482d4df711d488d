package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/autobazar/internal/model"
	"github.com/hitoshi/autobazar/internal/repository"
)

// ErrNoUser は匿名のままセッションを開始しようとしたことを表す。
var ErrNoUser = errors.New("auth: session requires a user")

// SessionManager はセッショントークンの発行・解決・破棄を行う。
type SessionManager struct {
	sessions repository.SessionRepository
	maxAge   time.Duration
	now      func() time.Time
}

// NewSessionManager はSessionManagerを生成する。
func NewSessionManager(sessions repository.SessionRepository, maxAge time.Duration) *SessionManager {
	return &SessionManager{sessions: sessions, maxAge: maxAge, now: time.Now}
}

// MaxAge はセッションの有効期間を返す。
func (m *SessionManager) MaxAge() time.Duration {
	return m.maxAge
}

// StartSession はユーザーのセッションを発行する。
func (m *SessionManager) StartSession(ctx context.Context, userID string) (*model.Session, error) {
	if userID == "" {
		return nil, ErrNoUser
	}

	token, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := m.now().UTC()
	session := &model.Session{
		ID:        token,
		UserID:    userID,
		ExpiresAt: now.Add(m.maxAge),
		CreatedAt: now,
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// CurrentIdentity はトークンから利用者を解決する。
// 空・未知・期限切れのトークンはAnonymousとして扱い、エラーはストレージ障害時のみ返す。
func (m *SessionManager) CurrentIdentity(ctx context.Context, token string) (model.Principal, error) {
	if token == "" {
		return model.Anonymous, nil
	}

	session, err := m.sessions.FindByID(ctx, token)
	if err != nil {
		return model.Anonymous, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil || session.IsExpired(m.now()) {
		return model.Anonymous, nil
	}

	return model.Principal{UserID: session.UserID, SessionID: session.ID}, nil
}

// EndSession はセッションを破棄する。未知のトークンは何もしない。
func (m *SessionManager) EndSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.sessions.DeleteByID(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	slog.Debug("session ended")
	return nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
