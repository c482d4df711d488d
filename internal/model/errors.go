// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, auth, authorization, not_found, conflict, system
	Field    string // 入力検証エラーの対象フィールド（該当する場合のみ）
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// エラーカテゴリ
const (
	CategoryValidation    = "validation"
	CategoryAuth          = "auth"
	CategoryAuthorization = "authorization"
	CategoryNotFound      = "not_found"
	CategoryConflict      = "conflict"
	CategorySystem        = "system"
)

// 定義済みエラーコード
const (
	ErrCodeInvalidIdentity   = "INVALID_IDENTITY"
	ErrCodeWeakPassword      = "WEAK_PASSWORD"
	ErrCodePasswordMismatch  = "PASSWORD_MISMATCH"
	ErrCodeDuplicateIdentity = "DUPLICATE_IDENTITY"
	ErrCodeAuthFailure       = "AUTH_FAILURE"
	ErrCodeNotAuthenticated  = "NOT_AUTHENTICATED"
	ErrCodeInvalidBrand      = "INVALID_BRAND"
	ErrCodeInvalidModel      = "INVALID_MODEL"
	ErrCodeInvalidYear       = "INVALID_YEAR"
	ErrCodeInvalidPrice      = "INVALID_PRICE"
	ErrCodeInvalidMileage    = "INVALID_MILEAGE"
	ErrCodeListingNotFound   = "LISTING_NOT_FOUND"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeCSRFInvalid       = "CSRF_TOKEN_INVALID"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// NewInvalidIdentityError はログインIDの形式エラーを生成する。
func NewInvalidIdentityError(allowedDomains []string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidIdentity,
		Message:  "メールアドレスの形式が正しくありません。",
		Category: CategoryValidation,
		Field:    "identity",
		Action:   fmt.Sprintf("'@'の前に6文字以上、ドメインは %v のいずれかを指定してください。", allowedDomains),
	}
}

// NewWeakPasswordError はパスワード長のエラーを生成する。
func NewWeakPasswordError(min, max int) *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  "パスワードの長さが範囲外です。",
		Category: CategoryValidation,
		Field:    "password",
		Action:   fmt.Sprintf("パスワードは%d〜%d文字で入力してください。", min, max),
	}
}

// NewPasswordMismatchError は確認用パスワード不一致のエラーを生成する。
func NewPasswordMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordMismatch,
		Message:  "確認用パスワードが一致しません。",
		Category: CategoryValidation,
		Field:    "password_confirmation",
		Action:   "同じパスワードを2回入力してください。",
	}
}

// NewDuplicateIdentityError は登録済みIDの重複エラーを生成する。
func NewDuplicateIdentityError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateIdentity,
		Message:  "このメールアドレスは既に登録されています。",
		Category: CategoryConflict,
		Field:    "identity",
		Action:   "ログインするか、別のメールアドレスで登録してください。",
	}
}

// NewAuthFailureError はログイン失敗エラーを生成する。
// IDが存在しないのかパスワード誤りなのかは区別しない。
func NewAuthFailureError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailure,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: CategoryAuth,
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewNotAuthenticatedError は未ログインエラーを生成する。
func NewNotAuthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotAuthenticated,
		Message:  "認証が必要です。",
		Category: CategoryAuth,
		Action:   "ログインしてください。",
	}
}

// NewInvalidBrandError は未知のブランドのエラーを生成する。
func NewInvalidBrandError(brand string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidBrand,
		Message:  fmt.Sprintf("無効なブランドです: %s", brand),
		Category: CategoryValidation,
		Field:    "brand",
		Action:   "ブランド一覧から選択してください。",
	}
}

// NewInvalidModelError はブランドに属さないモデルのエラーを生成する。
func NewInvalidModelError(brand, carModel string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidModel,
		Message:  fmt.Sprintf("ブランド %s に %s というモデルはありません。", brand, carModel),
		Category: CategoryValidation,
		Field:    "model",
		Action:   "選択したブランドのモデル一覧から選択してください。",
	}
}

// NewInvalidYearError は年式の範囲外エラーを生成する。
func NewInvalidYearError(min, max int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidYear,
		Message:  "年式が範囲外です。",
		Category: CategoryValidation,
		Field:    "year",
		Action:   fmt.Sprintf("年式は%d〜%dの範囲で入力してください。", min, max),
	}
}

// NewInvalidPriceError は価格の入力エラーを生成する。
func NewInvalidPriceError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPrice,
		Message:  "価格が正しくありません。",
		Category: CategoryValidation,
		Field:    "price",
		Action:   "価格は0以上の整数で入力してください。",
	}
}

// NewInvalidMileageError は走行距離の入力エラーを生成する。
func NewInvalidMileageError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMileage,
		Message:  "走行距離が正しくありません。",
		Category: CategoryValidation,
		Field:    "mileage",
		Action:   "走行距離は0以上の整数で入力してください。",
	}
}

// NewListingNotFoundError は掲載が見つからない場合のエラーを生成する。
func NewListingNotFoundError(listingID string) *APIError {
	return &APIError{
		Code:     ErrCodeListingNotFound,
		Message:  fmt.Sprintf("指定された掲載が見つかりません: %s", listingID),
		Category: CategoryNotFound,
		Action:   "掲載IDを確認してください。",
	}
}

// NewForbiddenError は所有者以外による操作のエラーを生成する。
// 実際の所有者に関する情報は含めない。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: CategoryAuthorization,
		Action:   "自分の掲載のみ操作できます。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: CategoryAuth,
		Action:   "ログインし直してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: CategoryValidation,
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewCSRFInvalidError はCSRFトークン検証失敗のエラーを生成する。
func NewCSRFInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFInvalid,
		Message:  "CSRFトークンの検証に失敗しました。",
		Category: CategoryAuthorization,
		Action:   "ページを再読み込みしてから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: CategorySystem,
		Action:   "しばらく待ってから再度お試しください。",
	}
}
