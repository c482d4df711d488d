// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/autobazar/internal/model"
)

// SessionCookieName はセッショントークンを保持するCookieの名前。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに利用者を格納するためのキー。
var principalContextKey = contextKey("principal")

// PrincipalResolver はセッショントークンから利用者を解決するインターフェース。
// auth.SessionManagerが実装する。
type PrincipalResolver interface {
	CurrentIdentity(ctx context.Context, token string) (model.Principal, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッションを読み取り、
// 解決した利用者をリクエストコンテキストに注入するミドルウェアを返す。
// 未ログインのリクエストも拒否せずAnonymousとして通過させる。
// 認証が必要かどうかはユースケース側で判定する。
func NewSessionMiddleware(resolver PrincipalResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := model.Anonymous

			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				principal, err = resolver.CurrentIdentity(r.Context(), cookie.Value)
				if err != nil {
					slog.Error("failed to resolve session",
						slog.String("error", err.Error()),
					)
					WriteInternalServerError(w)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

// PrincipalFromContext はリクエストコンテキストから利用者を取得する。
// セッションミドルウェアを通過していない場合はAnonymousを返す。
func PrincipalFromContext(ctx context.Context) model.Principal {
	p, ok := ctx.Value(principalContextKey).(model.Principal)
	if !ok {
		return model.Anonymous
	}
	return p
}

// ContextWithPrincipal はコンテキストに利用者を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, principal model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}
