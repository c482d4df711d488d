// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// 登録後は変更されない。
type User struct {
	ID           string
	Identity     string // メールアドレス形式のログインID（一意）
	PasswordHash string // bcryptハッシュ。平文は保持しない
	CreatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
// IDはCookieに載せる推測不能なトークンを兼ねる。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired はnow時点でセッションが期限切れかどうかを返す。
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Principal はリクエストに紐づく利用者を表す。
// ゼロ値は匿名（未ログイン）。
type Principal struct {
	UserID    string
	SessionID string
}

// Anonymous は未ログインの利用者を表す。
var Anonymous = Principal{}

// IsAnonymous は未ログインかどうかを返す。
func (p Principal) IsAnonymous() bool {
	return p.UserID == ""
}

// LoginAudit はログイン成功の監査記録。
// 資格情報（パスワード、ハッシュ）は決して含めない。
type LoginAudit struct {
	ID         string
	UserID     string
	Identity   string
	LoggedInAt time.Time
}
