package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"customer-service/internal/api/handler/dto"
	"customer-service/internal/api/middleware"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(service customer.CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		logger:  logger.With(slog.String("component", "CustomerHandler")),
	}
}

// ListCustomers godoc
// @Summary List customers
// @Description Returns all customers in insertion order, optionally filtered by a case-sensitive name substring.
// @Tags customers
// @Produce json
// @Param name query string false "Substring to match against customer names"
// @Success 200 {array} dto.CustomerResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	nameFilter := r.URL.Query().Get("name")

	customers, err := h.service.ListCustomers(r.Context(), nameFilter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp := make([]dto.CustomerResponse, len(customers))
	for i, cust := range customers {
		resp[i] = dto.NewCustomerResponse(cust)
	}
	h.respondJSON(w, r, http.StatusOK, resp)
}

// GetCustomer godoc
// @Summary Get a customer
// @Description Returns a single customer. Regular users may only fetch their own record; admins may fetch any.
// @Tags customers
// @Produce json
// @Param customerID path int true "Customer ID"
// @Success 200 {object} dto.CustomerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /customers/{customerID} [get]
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := h.getCustomerIDFromURL(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	principal, _ := middleware.PrincipalFromContext(r.Context())

	cust, err := h.service.GetCustomer(r.Context(), principal, customerID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, dto.NewCustomerResponse(cust))
}

// CreateCustomer godoc
// @Summary Register a customer
// @Description Creates a new active customer. All field violations are reported together in a single response.
// @Tags customers
// @Accept json
// @Param request body dto.CustomerRequest true "Customer profile"
// @Success 201
// @Header 201 {string} Location "URL of the created customer"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req dto.CustomerRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	cust, err := h.service.CreateCustomer(r.Context(), req.ToProfileInput())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/customers/%d", cust.CustomerID))
	h.respondJSON(w, r, http.StatusCreated, nil)
}

// UpdateCustomer godoc
// @Summary Update a customer
// @Description Replaces a customer's name and email. Admin only.
// @Tags customers
// @Accept json
// @Param customerID path int true "Customer ID"
// @Param request body dto.CustomerRequest true "Customer profile"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /customers/{customerID} [put]
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := h.getCustomerIDFromURL(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	principal, _ := middleware.PrincipalFromContext(r.Context())

	var req dto.CustomerRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.service.UpdateCustomer(r.Context(), principal, customerID, req.ToProfileInput()); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

// DeleteCustomer godoc
// @Summary Deactivate a customer
// @Description Soft-deletes a customer by flipping its status to INACTIVE. Admin only.
// @Tags customers
// @Param customerID path int true "Customer ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /customers/{customerID} [delete]
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := h.getCustomerIDFromURL(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	principal, _ := middleware.PrincipalFromContext(r.Context())

	if err := h.service.DeactivateCustomer(r.Context(), principal, customerID); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

func (h *CustomerHandler) getCustomerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "customerID")
	customerID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || customerID <= 0 {
		return 0, fmt.Errorf("invalid customer ID format: %w", apperrors.ErrInvalidArgument)
	}
	return customerID, nil
}

func (h *CustomerHandler) decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", apperrors.ErrInvalidArgument)
	}
	return nil
}

func (h *CustomerHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.Any("error", err))
	}
}

func (h *CustomerHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var resp dto.ErrorResponse

	var appErr *apperrors.AppError
	var valErr *apperrors.ValidationError
	switch {
	case errors.As(err, &valErr):
		resp = dto.NewValidationErrorResponse(valErr)
	case errors.As(err, &appErr):
		resp = dto.ErrorResponse{
			Status:       appErr.Status,
			Message:      appErr.Message,
			InternalCode: appErr.Code,
		}
	case errors.Is(err, apperrors.ErrInvalidArgument):
		resp = dto.ErrorResponse{
			Status:       http.StatusBadRequest,
			Message:      err.Error(),
			InternalCode: apperrors.CodeInvalidArgument,
		}
	default:
		resp = dto.ErrorResponse{
			Status:       http.StatusInternalServerError,
			Message:      "An unexpected internal error occurred",
			InternalCode: apperrors.CodeInternalError,
		}
	}

	if resp.Status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed",
			slog.Int("status", resp.Status), slog.Any("error", err))
	} else {
		h.logger.WarnContext(r.Context(), "Request rejected",
			slog.Int("status", resp.Status), slog.String("internalCode", resp.InternalCode))
	}

	h.respondJSON(w, r, resp.Status, resp)
}
