// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/autobazar/internal/middleware"
	"github.com/hitoshi/autobazar/internal/model"
	"github.com/hitoshi/autobazar/internal/user"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in user.RegisterInput) (*model.User, error)
	Login(ctx context.Context, in user.LoginInput) (*user.LoginResult, error)
	Logout(ctx context.Context, principal model.Principal) error
	Me(ctx context.Context, principal model.Principal) (*model.User, error)
	RecentLogins(ctx context.Context, principal model.Principal, limit int) ([]model.LoginAudit, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain    string
	CookieSecure    bool
	SessionMaxAge   int  // セッションCookieの有効期間（秒）
	SessionRemember bool // 偽ならブラウザを閉じると消えるCookieにする
}

// AuthHandler はアカウント関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

type registerRequest struct {
	Identity             string `json:"identity"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        string    `json:"id"`
	Identity  string    `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
}

type loginAuditResponse struct {
	ID         string    `json:"id"`
	Identity   string    `json:"identity"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// Register は新規ユーザーを登録する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.service.Register(r.Context(), user.RegisterInput{
		Identity:             req.Identity,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// Login は資格情報を検証し、セッションCookieを発行する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), user.LoginInput{
		Identity: req.Identity,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, result.Session.ID)
	writeJSON(w, http.StatusOK, toUserResponse(result.User))
}

// Logout はセッションを破棄する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if err := h.service.Logout(r.Context(), principal); err != nil {
		slog.Error("failed to logout", slog.String("error", err.Error()))
		// ログアウト失敗してもCookieはクリアする
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Me(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// RecentLogins は自分のログイン履歴を新しい順に返す。
// GET /auth/logins?limit=N
func (h *AuthHandler) RecentLogins(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
			return
		}
		limit = n
	}

	audits, err := h.service.RecentLogins(r.Context(), middleware.PrincipalFromContext(r.Context()), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]loginAuditResponse, len(audits))
	for i, a := range audits {
		resp[i] = loginAuditResponse{ID: a.ID, Identity: a.Identity, LoggedInAt: a.LoggedInAt}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if h.config.SessionRemember {
		cookie.MaxAge = h.config.SessionMaxAge
	}
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Identity:  u.Identity,
		CreatedAt: u.CreatedAt,
	}
}
