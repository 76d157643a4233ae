package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/saigonmart/backend/api/responses"
	"github.com/saigonmart/backend/api/validators"
	"github.com/saigonmart/backend/internal/catalog"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/logger"
	"github.com/saigonmart/backend/pkg/types"
)

// AdminProductsList pages the full catalog, unpublished products included.
func AdminProductsList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, cursor, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := catalog.ListProductsQuery{
			Limit:  limit,
			Cursor: cursor,
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			categoryID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid category id"))
				return
			}
			params.CategoryID = &categoryID
		}

		products, next, err := svc.ListProducts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pageOf(products, next))
	}
}

// AdminProductDetail returns one product with options and rules.
func AdminProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProductByID(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

type productRequest struct {
	Slug           string     `json:"slug" validate:"required,max=140"`
	Name           string     `json:"name" validate:"required,max=200"`
	Description    *string    `json:"description,omitempty"`
	CategoryID     *uuid.UUID `json:"category_id,omitempty"`
	BasePrice      int64      `json:"base_price" validate:"min=0"`
	CompareAtPrice *int64     `json:"compare_at_price,omitempty" validate:"omitempty,min=0"`
	ImageKeys      []string   `json:"image_keys,omitempty"`
	IsActive       bool       `json:"is_active"`
	IsFeatured     bool       `json:"is_featured"`
}

func (p productRequest) toInput() catalog.ProductInput {
	return catalog.ProductInput{
		Slug:           p.Slug,
		Name:           p.Name,
		Description:    p.Description,
		CategoryID:     p.CategoryID,
		BasePrice:      p.BasePrice,
		CompareAtPrice: p.CompareAtPrice,
		ImageKeys:      p.ImageKeys,
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
	}
}

// AdminProductCreate adds a product to the catalog.
func AdminProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminProductUpdate replaces the editable product fields.
func AdminProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminProductDelete removes a product.
func AdminProductDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type replaceOptionsRequest struct {
	Options []optionRequest `json:"options" validate:"dive"`
}

type optionRequest struct {
	Name     string         `json:"name" validate:"required,max=80"`
	Position int            `json:"position" validate:"min=0"`
	Required bool           `json:"required"`
	Values   []valueRequest `json:"values" validate:"required,min=1,dive"`
}

type valueRequest struct {
	Label      string  `json:"label" validate:"required,max=80"`
	PriceDelta int64   `json:"price_delta"`
	Position   int     `json:"position" validate:"min=0"`
	ImageKey   *string `json:"image_key,omitempty"`
}

// AdminProductReplaceOptions swaps the full variant option set in one
// transaction.
func AdminProductReplaceOptions(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload replaceOptionsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inputs := make([]catalog.OptionInput, 0, len(payload.Options))
		for _, opt := range payload.Options {
			values := make([]catalog.ValueInput, 0, len(opt.Values))
			for _, value := range opt.Values {
				values = append(values, catalog.ValueInput{
					Label:      value.Label,
					PriceDelta: value.PriceDelta,
					Position:   value.Position,
					ImageKey:   value.ImageKey,
				})
			}
			inputs = append(inputs, catalog.OptionInput{
				Name:     opt.Name,
				Position: opt.Position,
				Required: opt.Required,
				Values:   values,
			})
		}

		product, err := svc.ReplaceOptions(r.Context(), productID, inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

type replaceRulesRequest struct {
	Rules []ruleRequest `json:"rules" validate:"dive"`
}

type ruleRequest struct {
	Combination     types.Selection `json:"combination" validate:"required"`
	Available       bool            `json:"available"`
	Reason          *string         `json:"reason,omitempty"`
	PriceAdjustment *int64          `json:"price_adjustment,omitempty"`
	Position        int             `json:"position" validate:"min=0"`
}

// AdminProductReplaceRules swaps the full combination rule set.
func AdminProductReplaceRules(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload replaceRulesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inputs := make([]catalog.RuleInput, 0, len(payload.Rules))
		for _, rule := range payload.Rules {
			inputs = append(inputs, catalog.RuleInput{
				Combination:     rule.Combination,
				Available:       rule.Available,
				Reason:          rule.Reason,
				PriceAdjustment: rule.PriceAdjustment,
				Position:        rule.Position,
			})
		}

		product, err := svc.ReplaceRules(r.Context(), productID, inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminProductCombinations renders the full enumeration with price and
// availability per cell, for the back-office toggle matrix.
func AdminProductCombinations(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Combinations(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}
