package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/reelworks/reelit/pkg/httputil"
	"github.com/reelworks/reelit/pkg/products"
)

// ProductHandlers serves the video-to-product tagging routes.
type ProductHandlers struct {
	tagger *products.Tagger
}

func NewProductHandlers(tagger *products.Tagger) *ProductHandlers {
	return &ProductHandlers{tagger: tagger}
}

// RegisterRoutes attaches the product routes to the given router.
func (h *ProductHandlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/videos/{id}/products", h.GetVideoProducts).Methods("GET")
	r.HandleFunc("/videos/{id}/products", h.SaveVideoProducts).Methods("PUT")
	r.HandleFunc("/products/search", h.SearchProducts).Methods("GET")
}

func (h *ProductHandlers) GetVideoProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	list, err := h.tagger.GetVideoProducts(r.Context(), id)
	if err != nil {
		writeProductError(w, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

// SaveVideoProducts replaces a video's product links with the submitted
// list. An empty list clears all links.
func (h *ProductHandlers) SaveVideoProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req SaveProductsRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	for _, pid := range req.ProductIDs {
		if pid <= 0 {
			httputil.WriteValidationError(w, "product ids must be positive")
			return
		}
	}

	if err := h.tagger.SaveVideoProducts(r.Context(), id, req.ProductIDs); err != nil {
		writeProductError(w, err)
		return
	}
	httputil.WriteSuccessMessage(w, "products saved", nil)
}

func (h *ProductHandlers) SearchProducts(w http.ResponseWriter, r *http.Request) {
	term := httputil.ParseQueryString(r, "search", "")

	list, err := h.tagger.SearchProducts(r.Context(), term)
	if err != nil {
		writeProductError(w, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

func writeProductError(w http.ResponseWriter, err error) {
	if errors.Is(err, products.ErrCatalogUnavailable) {
		httputil.WriteServiceUnavailable(w, err.Error())
		return
	}
	httputil.WriteInternalError(w, err)
}
