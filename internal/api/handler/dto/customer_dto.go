package dto

import (
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
)

// CustomerRequest is the create/update body. It is mapped to a domain
// ProfileInput and validated there; the raw password never leaves that path
// unhashed.
type CustomerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *CustomerRequest) ToProfileInput() customer.ProfileInput {
	return customer.ProfileInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
	}
}

type CustomerResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}
	return CustomerResponse{
		ID:     cust.CustomerID,
		Name:   cust.Name,
		Email:  cust.Email,
		Status: string(cust.Status),
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the uniform failure body: HTTP status, a human message and
// a stable internal code, plus per-field violations for validation failures.
type ErrorResponse struct {
	Status       int          `json:"status"`
	Message      string       `json:"message"`
	InternalCode string       `json:"internalCode"`
	Errors       []FieldError `json:"errors,omitempty"`
}

func NewValidationErrorResponse(valErr *apperrors.ValidationError) ErrorResponse {
	fieldErrors := make([]FieldError, len(valErr.Violations))
	for i, v := range valErr.Violations {
		fieldErrors[i] = FieldError{Field: v.Field, Message: v.Message}
	}
	return ErrorResponse{
		Status:       422,
		Message:      "Invalid Request",
		InternalCode: apperrors.CodeInvalidRequest,
		Errors:       fieldErrors,
	}
}

type TokenRequest struct {
	CustomerID int64    `json:"customerId"`
	Roles      []string `json:"roles"`
}
