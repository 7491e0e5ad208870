package controllers

import (
	"net/http"

	"github.com/ilmekten/shop-backend/api/responses"
	"github.com/ilmekten/shop-backend/api/validators"
	"github.com/ilmekten/shop-backend/internal/checkout"
	"github.com/ilmekten/shop-backend/pkg/enums"
	"github.com/ilmekten/shop-backend/pkg/logger"
)

type checkoutRequest struct {
	Customer struct {
		Name    string `json:"name" validate:"required"`
		Phone   string `json:"phone" validate:"required"`
		Address string `json:"address" validate:"required"`
		City    string `json:"city" validate:"required"`
		Notes   string `json:"notes"`
	} `json:"customer" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=card transfer cash"`
	Card          *struct {
		Number string `json:"number" validate:"required"`
		Expiry string `json:"expiry" validate:"required"`
		CVV    string `json:"cvv" validate:"required"`
		Name   string `json:"name" validate:"required"`
	} `json:"card"`
}

func Checkout(svc *checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkout.Input{
			Customer: checkout.CustomerInput{
				Name:    payload.Customer.Name,
				Phone:   payload.Customer.Phone,
				Address: payload.Customer.Address,
				City:    payload.Customer.City,
				Notes:   payload.Customer.Notes,
			},
			PaymentMethod: enums.PaymentMethod(payload.PaymentMethod),
		}
		if payload.Card != nil {
			input.Card = &checkout.CardInput{
				Number: payload.Card.Number,
				Expiry: payload.Card.Expiry,
				CVV:    payload.Card.CVV,
				Name:   payload.Card.Name,
			}
		}

		order, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
