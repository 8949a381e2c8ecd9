// Package handlers contains the HTTP handlers for the REST API.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inventory-backend/application/services"
	"inventory-backend/domain/product"
	"inventory-backend/pkg/common"
	apperrors "inventory-backend/pkg/errors"
	"inventory-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	service *services.ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// CreateProductRequest represents the request body for creating a product.
// Pointer fields distinguish "absent" from zero values.
type CreateProductRequest struct {
	Name     *string  `json:"name" validate:"required,min=2,max=100"`
	Quantity *int     `json:"quantity" validate:"required,gte=0,lte=10000"`
	Price    *float64 `json:"price" validate:"required,gte=0,lte=999999.99"`
	Image    *string  `json:"image" validate:"required,image_url"`
}

// UpdateProductRequest represents the partial request body for updating
// a product; omitted fields retain their previous values.
type UpdateProductRequest struct {
	Name     *string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Quantity *int     `json:"quantity,omitempty" validate:"omitempty,gte=0,lte=10000"`
	Price    *float64 `json:"price,omitempty" validate:"omitempty,gte=0,lte=999999.99"`
	Image    *string  `json:"image,omitempty" validate:"omitempty,image_url"`
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractListParams(r)

	products, total, err := h.service.ListProducts(r.Context(), params)
	if err != nil {
		h.respondError(w, err, "Failed to list products")
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Response{
		Success:    true,
		Data:       products,
		Pagination: common.BuildPageMeta(params, total),
		Filters:    params.Filters(),
	})
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "Failed to retrieve product")
		return
	}

	common.RespondData(w, http.StatusOK, p)
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		common.RespondValidationErrors(w, fields)
		return
	}

	p := &product.Product{
		Name:     *req.Name,
		Quantity: *req.Quantity,
		Price:    *req.Price,
		Image:    *req.Image,
	}

	if err := h.service.CreateProduct(r.Context(), p); err != nil {
		h.respondError(w, err, "Failed to create product")
		return
	}

	common.RespondJSON(w, http.StatusCreated, common.Response{
		Success: true,
		Message: "Product created successfully",
		Data:    p,
	})
}

// UpdateProduct handles PUT /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateProductRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		common.RespondValidationErrors(w, fields)
		return
	}

	upd := product.Update{
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
		Image:    req.Image,
	}

	p, err := h.service.UpdateProduct(r.Context(), id, upd)
	if err != nil {
		h.respondError(w, err, "Failed to update product")
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Response{
		Success: true,
		Message: "Product updated successfully",
		Data:    p,
	})
}

// DeleteProduct handles DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.respondError(w, err, "Failed to delete product")
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Response{
		Success: true,
		Message: "Product deleted successfully",
	})
}

// respondError maps application errors onto the HTTP error taxonomy.
// Store failures stay generic; details go to the log, not the client.
func (h *ProductHandler) respondError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case apperrors.IsNotFound(err):
		common.RespondError(w, http.StatusNotFound, "Product not found")
	case apperrors.IsValidation(err):
		appErr, _ := apperrors.As(err)
		if len(appErr.Fields) > 0 {
			common.RespondValidationErrors(w, appErr.Fields)
			return
		}
		common.RespondError(w, http.StatusBadRequest, appErr.Message)
	default:
		h.logger.Error(logMsg, zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
