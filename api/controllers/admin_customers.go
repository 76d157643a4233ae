package controllers

import (
	"net/http"
	"strings"

	"github.com/saigonmart/backend/api/responses"
	"github.com/saigonmart/backend/api/validators"
	"github.com/saigonmart/backend/internal/customers"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/logger"
)

// AdminCustomersList pages registered customers, searchable by phone or name.
func AdminCustomersList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		limit, cursor, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, next, err := svc.List(r.Context(), customers.ListQuery{
			Limit:  limit,
			Cursor: cursor,
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pageOf(list, next))
	}
}

// AdminCustomerDetail returns one customer profile.
func AdminCustomerDetail(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		customerID, err := pathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.GetByID(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customer)
	}
}
