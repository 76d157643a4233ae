package controllers

import (
	"net/http"
	"time"

	"github.com/saigonmart/backend/api/responses"
	"github.com/saigonmart/backend/api/validators"
	"github.com/saigonmart/backend/internal/coupons"
	"github.com/saigonmart/backend/pkg/enums"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/logger"
)

// AdminCouponsList pages the coupon catalog, optionally filtered by status.
func AdminCouponsList(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		limit, cursor, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, next, err := svc.List(r.Context(), coupons.ListQuery{
			Limit:    limit,
			Cursor:   cursor,
			IsActive: active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pageOf(list, next))
	}
}

// AdminCouponDetail returns one coupon.
func AdminCouponDetail(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		couponID, err := pathUUID(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.GetByID(r.Context(), couponID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coupon)
	}
}

type createCouponRequest struct {
	Code            string    `json:"code" validate:"required,max=64"`
	Description     *string   `json:"description,omitempty"`
	Kind            string    `json:"kind" validate:"required"`
	Value           int64     `json:"value" validate:"required,min=1"`
	ExpiresAt       time.Time `json:"expires_at" validate:"required"`
	EligibleItemIDs []string  `json:"eligible_item_ids,omitempty"`
	IsActive        bool      `json:"is_active"`
}

// AdminCouponCreate registers a new discount code.
func AdminCouponCreate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload createCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Create(r.Context(), coupons.CreateInput{
			Code:            payload.Code,
			Description:     payload.Description,
			Kind:            enums.CouponKind(payload.Kind),
			Value:           payload.Value,
			ExpiresAt:       payload.ExpiresAt,
			EligibleItemIDs: payload.EligibleItemIDs,
			IsActive:        payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

type updateCouponRequest struct {
	Description     *string    `json:"description,omitempty"`
	Kind            *string    `json:"kind,omitempty"`
	Value           *int64     `json:"value,omitempty" validate:"omitempty,min=1"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	EligibleItemIDs *[]string  `json:"eligible_item_ids,omitempty"`
	IsActive        *bool      `json:"is_active,omitempty"`
}

// AdminCouponUpdate applies a partial edit. Absent fields keep their value.
func AdminCouponUpdate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		couponID, err := pathUUID(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := coupons.UpdateInput{
			Description:     payload.Description,
			Value:           payload.Value,
			ExpiresAt:       payload.ExpiresAt,
			EligibleItemIDs: payload.EligibleItemIDs,
			IsActive:        payload.IsActive,
		}
		if payload.Kind != nil {
			kind := enums.CouponKind(*payload.Kind)
			input.Kind = &kind
		}

		coupon, err := svc.Update(r.Context(), couponID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coupon)
	}
}

// AdminCouponDelete removes a coupon.
func AdminCouponDelete(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		couponID, err := pathUUID(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), couponID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
