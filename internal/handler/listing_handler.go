package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/autobazar/internal/listing"
	"github.com/hitoshi/autobazar/internal/middleware"
	"github.com/hitoshi/autobazar/internal/model"
)

// ListingServiceInterface は掲載ハンドラーが必要とするサービスインターフェース。
type ListingServiceInterface interface {
	AddListing(ctx context.Context, principal model.Principal, in listing.AddListingInput) (*model.Listing, error)
	ListMyListings(ctx context.Context, principal model.Principal) ([]model.Listing, error)
	DeleteListing(ctx context.Context, principal model.Principal, listingID string) error
}

// ListingHandler は掲載管理のHTTPハンドラー。
type ListingHandler struct {
	service ListingServiceInterface
}

// NewListingHandler はListingHandlerを生成する。
func NewListingHandler(service ListingServiceInterface) *ListingHandler {
	return &ListingHandler{service: service}
}

// flexNumber はJSONの数値と文字列の両方を受け付ける数値フィールド。
// 文字列の場合は桁区切りのカンマを許容する。
type flexNumber struct {
	listing.Number
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if bytes.Equal(trimmed, []byte("null")) {
		n.Number = listing.Number{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		n.Number = listing.ParseNumber(s)
		return nil
	}
	n.Number = listing.ParseNumber(string(trimmed))
	return nil
}

type addListingRequest struct {
	Brand   string     `json:"brand"`
	Model   string     `json:"model"`
	Year    flexNumber `json:"year"`
	Price   flexNumber `json:"price"`
	Mileage flexNumber `json:"mileage"`
}

// listingResponse は掲載情報のAPIレスポンス。
type listingResponse struct {
	ID        string    `json:"id"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Price     *int      `json:"price"`
	Mileage   *int      `json:"mileage"`
	CreatedAt time.Time `json:"created_at"`
}

// AddListing は掲載を追加する。
// POST /api/listings
func (h *ListingHandler) AddListing(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal.IsAnonymous() {
		// ボディの形式より認証を先に判定する
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewNotAuthenticatedError())
		return
	}

	var req addListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.service.AddListing(r.Context(), principal, listing.AddListingInput{
		Brand:   req.Brand,
		Model:   req.Model,
		Year:    req.Year.Number,
		Price:   req.Price.Number,
		Mileage: req.Mileage.Number,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toListingResponse(created))
}

// ListMyListings は自分の掲載一覧を返す。
// GET /api/listings
func (h *ListingHandler) ListMyListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.ListMyListings(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]listingResponse, len(listings))
	for i := range listings {
		resp[i] = toListingResponse(&listings[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteListing は自分の掲載を削除する。
// DELETE /api/listings/{id}
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	if err := h.service.DeleteListing(r.Context(), middleware.PrincipalFromContext(r.Context()), listingID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toListingResponse(l *model.Listing) listingResponse {
	return listingResponse{
		ID:        l.ID,
		Brand:     l.Brand,
		Model:     l.Model,
		Year:      l.Year,
		Price:     l.Price,
		Mileage:   l.Mileage,
		CreatedAt: l.CreatedAt,
	}
}
