// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/autobazar/internal/model"
)

var (
	// ErrDuplicate は一意制約違反を表す。
	ErrDuplicate = errors.New("repository: duplicate key")
	// ErrListingNotFound は削除対象の掲載が存在しないことを表す。
	ErrListingNotFound = errors.New("repository: listing not found")
	// ErrAnonymousOwner は所有者のない掲載を保存しようとしたことを表す。
	ErrAnonymousOwner = errors.New("repository: listing owner is required")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByIdentity はログインIDでユーザーを検索する。見つからない場合はnilを返す。
	FindByIdentity(ctx context.Context, identity string) (*model.User, error)

	// Create はユーザーを作成する。ログインIDが重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
	// 有効期限の判定は呼び出し側で行う。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。存在しない場合も成功とする。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpiredBefore はbefore時点で期限切れのセッションを削除し、削除件数を返す。
	DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error)
}

// ListingRepository は掲載データの永続化インターフェース。
type ListingRepository interface {
	// Create は掲載を作成する。OwnerIDが空の場合はErrAnonymousOwnerを返す。
	Create(ctx context.Context, listing *model.Listing) error

	// ListByOwner は所有者の掲載を作成日時の昇順で返す。
	ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)

	// FindByID は指定IDの掲載を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Listing, error)

	// Delete は指定IDの掲載を削除する。存在しない場合はErrListingNotFoundを返す。
	Delete(ctx context.Context, id string) error

	// WithinTx はトランザクションに束縛されたリポジトリでfnを実行する。
	// fnがnilを返せばコミットし、それ以外はロールバックする。
	WithinTx(ctx context.Context, fn func(ListingRepository) error) error
}

// LoginAuditRepository はログイン監査記録の追記専用インターフェース。
type LoginAuditRepository interface {
	// Append は監査記録を追加する。
	Append(ctx context.Context, audit *model.LoginAudit) error
	// ListByUserID はユーザーの監査記録を新しい順に最大limit件返す。
	ListByUserID(ctx context.Context, userID string, limit int) ([]model.LoginAudit, error)
}
