package controllers

import (
	"net/http"

	"github.com/saigonmart/backend/api/responses"
	"github.com/saigonmart/backend/api/validators"
	"github.com/saigonmart/backend/internal/settings"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/logger"
)

// SettingsShow exposes the storefront settings used by the client shell.
func SettingsShow(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		current, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, current)
	}
}

type updateSettingsRequest struct {
	StoreName             string  `json:"store_name" validate:"required,max=120"`
	ShippingFee           int64   `json:"shipping_fee" validate:"min=0"`
	FreeShippingThreshold int64   `json:"free_shipping_threshold" validate:"min=0"`
	SupportPhone          *string `json:"support_phone,omitempty"`
	Announcement          *string `json:"announcement,omitempty"`
}

// AdminSettingsUpdate persists the back-office settings form.
func AdminSettingsUpdate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var payload updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), settings.UpdateInput{
			StoreName:             payload.StoreName,
			ShippingFee:           payload.ShippingFee,
			FreeShippingThreshold: payload.FreeShippingThreshold,
			SupportPhone:          payload.SupportPhone,
			Announcement:          payload.Announcement,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}
