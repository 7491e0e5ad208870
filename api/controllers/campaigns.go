package controllers

import (
	"net/http"

	"github.com/ilmekten/shop-backend/api/responses"
	"github.com/ilmekten/shop-backend/api/validators"
	"github.com/ilmekten/shop-backend/internal/campaigns"
	"github.com/ilmekten/shop-backend/pkg/enums"
	"github.com/ilmekten/shop-backend/pkg/logger"
)

// ListActiveCampaigns feeds the storefront banner; inactive definitions stay
// admin-only.
func ListActiveCampaigns(registry *campaigns.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, registry.Active(r.Context()))
	}
}

func AdminListCampaigns(registry *campaigns.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, registry.List(r.Context()))
	}
}

type campaignRequest struct {
	Type            string `json:"type" validate:"required,oneof=gift discount"`
	Name            string `json:"name"`
	Active          bool   `json:"active"`
	MinQuantity     int64  `json:"minQuantity" validate:"min=0"`
	GiftProductID   int64  `json:"giftProductId" validate:"min=0"`
	MinAmount       int64  `json:"minAmount" validate:"min=0"`
	DiscountPercent int64  `json:"discountPercent" validate:"min=0,max=100"`
}

func (c campaignRequest) toInput() campaigns.CampaignInput {
	return campaigns.CampaignInput{
		Kind:            enums.CampaignKind(c.Type),
		Name:            c.Name,
		Active:          c.Active,
		MinQuantity:     c.MinQuantity,
		GiftProductID:   c.GiftProductID,
		MinAmount:       c.MinAmount,
		DiscountPercent: c.DiscountPercent,
	}
}

func AdminCreateCampaign(registry *campaigns.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload campaignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		campaign, err := registry.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, campaign)
	}
}

func AdminToggleCampaign(registry *campaigns.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		campaign, err := registry.Toggle(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, campaign)
	}
}

func AdminDeleteCampaign(registry *campaigns.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := registry.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
