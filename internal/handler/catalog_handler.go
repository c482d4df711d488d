package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/autobazar/internal/catalog"
)

// CatalogReader はブランド・モデル一覧の参照インターフェース。
type CatalogReader interface {
	Brands() []catalog.Brand
	Models(brand string) []string
}

// CatalogHandler はブランド・モデル一覧のHTTPハンドラー。
// 登録フォームのプルダウン用で、認証は不要。
type CatalogHandler struct {
	catalog CatalogReader
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(c CatalogReader) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// ListBrands はブランド一覧を返す。
// GET /api/brands
func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Brands())
}

// ListModels はブランドに属するモデル一覧を返す。未知のブランドは空配列。
// GET /api/brands/{brand}/models
func (h *CatalogHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models := h.catalog.Models(chi.URLParam(r, "brand"))
	if models == nil {
		models = []string{}
	}
	writeJSON(w, http.StatusOK, models)
}
