// Package dbtest はテスト用のマイグレーション済みSQLiteデータベースを提供する。
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/hitoshi/autobazar/internal/database"
)

// NewSQLite は t.TempDir() 上にSQLiteファイルを作成し、全マイグレーションを適用して返す。
// 接続はテスト終了時に閉じられる。
func NewSQLite(t testing.TB) *sql.DB {
	t.Helper()

	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "test.db")
	if err := database.RunMigrations(dbURL); err != nil {
		t.Fatalf("マイグレーション実行に失敗: %v", err)
	}

	db, _, err := database.Open(dbURL)
	if err != nil {
		t.Fatalf("データベースへの接続に失敗: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}
