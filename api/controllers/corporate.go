package controllers

import (
	"net/http"

	"github.com/ilmekten/shop-backend/api/responses"
	"github.com/ilmekten/shop-backend/api/validators"
	"github.com/ilmekten/shop-backend/internal/corporate"
	"github.com/ilmekten/shop-backend/pkg/logger"
)

func ListCorporateOrders(svc *corporate.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.List(r.Context()))
	}
}

type corporateRequest struct {
	Company     string   `json:"company" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Width       string   `json:"width"`
	Height      string   `json:"height"`
	Images      []string `json:"images" validate:"max=3"`
}

func (c corporateRequest) toInput() corporate.RecordInput {
	return corporate.RecordInput{
		Company:     c.Company,
		Description: c.Description,
		Width:       c.Width,
		Height:      c.Height,
		Images:      c.Images,
	}
}

func AdminCreateCorporateOrder(svc *corporate.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload corporateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

func AdminUpdateCorporateOrder(svc *corporate.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "corporateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload corporateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func AdminDeleteCorporateOrder(svc *corporate.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "corporateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
