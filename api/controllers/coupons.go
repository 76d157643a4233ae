package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/saigonmart/backend/api/responses"
	"github.com/saigonmart/backend/api/validators"
	"github.com/saigonmart/backend/internal/cart"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/logger"
)

type couponPreviewRequest struct {
	Code  string                 `json:"code" validate:"required,max=64"`
	Items []couponPreviewLineReq `json:"items" validate:"required,min=1,dive"`
}

type couponPreviewLineReq struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	UnitPrice int64     `json:"unit_price" validate:"min=0"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// CouponPreview reports the discount a code would produce for a cart payload
// without mutating any stored cart.
func CouponPreview(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload couponPreviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]cart.PreviewLine, 0, len(payload.Items))
		for _, item := range payload.Items {
			lines = append(lines, cart.PreviewLine{
				ProductID: item.ProductID,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
			})
		}

		preview, err := svc.PreviewCoupon(r.Context(), payload.Code, lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, preview)
	}
}
