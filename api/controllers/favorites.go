package controllers

import (
	"net/http"

	"github.com/ilmekten/shop-backend/api/responses"
	"github.com/ilmekten/shop-backend/internal/favorites"
	"github.com/ilmekten/shop-backend/pkg/logger"
)

func ListFavorites(svc *favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.List(r.Context()))
	}
}

func ToggleFavorite(svc *favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		favorited, err := svc.Toggle(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"productId": id, "favorited": favorited})
	}
}
