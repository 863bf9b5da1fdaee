package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"customer-service/internal/api/handler"
	"customer-service/internal/api/middleware"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) ListCustomers(ctx context.Context, nameFilter string) ([]*customer.Customer, error) {
	args := m.Called(ctx, nameFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, principal customer.Principal, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, principal, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, input customer.ProfileInput) (*customer.Customer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) UpdateCustomer(ctx context.Context, principal customer.Principal, customerID int64, input customer.ProfileInput) error {
	args := m.Called(ctx, principal, customerID, input)
	return args.Error(0)
}

func (m *MockCustomerService) DeactivateCustomer(ctx context.Context, principal customer.Principal, customerID int64) error {
	args := m.Called(ctx, principal, customerID)
	return args.Error(0)
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var adminPrincipal = customer.Principal{CustomerID: 99, Roles: []string{customer.RoleUser, customer.RoleAdmin}}

func setupRouter(service customer.CustomerService, principal customer.Principal) *chi.Mux {
	h := handler.NewCustomerHandler(service, testLogger)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.ContextWithPrincipal(req.Context(), principal)))
		})
	})
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.ListCustomers)
		r.Post("/", h.CreateCustomer)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Put("/", h.UpdateCustomer)
			r.Delete("/", h.DeleteCustomer)
		})
	})
	return r
}

func newTestCustomer(id int64, name, email string) *customer.Customer {
	cust := customer.NewCustomer(name, email, "$2a$10$hash")
	cust.CustomerID = id
	return cust
}

func TestListCustomers_Success(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	customers := []*customer.Customer{
		newTestCustomer(1, "Alice", "alice@example.com"),
		newTestCustomer(2, "Bob", "bob@example.com"),
	}
	mockService.On("ListCustomers", mock.Anything, "").Return(customers, nil)

	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body []map[string]any
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body, 2)
	assert.Equal(t, "Alice", body[0]["name"])
	assert.NotContains(t, body[0], "passwordHash")
	mockService.AssertExpectations(t)
}

func TestListCustomers_NameFilterForwarded(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	mockService.On("ListCustomers", mock.Anything, "li").
		Return([]*customer.Customer{newTestCustomer(1, "Alice", "alice@example.com")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/customers?name=li", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockService.AssertExpectations(t)
}

func TestListCustomers_EmptyResultIsJSONArray(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	mockService.On("ListCustomers", mock.Anything, "zzz").Return([]*customer.Customer{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/customers?name=zzz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetCustomer_Success(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	mockService.On("GetCustomer", mock.Anything, adminPrincipal, int64(5)).
		Return(newTestCustomer(5, "Alice", "alice@example.com"), nil)

	req := httptest.NewRequest(http.MethodGet, "/customers/5", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":5,"name":"Alice","email":"alice@example.com","status":"ACTIVE"}`, rr.Body.String())
	mockService.AssertExpectations(t)
}

func TestGetCustomer_NotFound(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	mockService.On("GetCustomer", mock.Anything, adminPrincipal, int64(42)).
		Return(nil, apperrors.NewCustomerNotFound(42))

	req := httptest.NewRequest(http.MethodGet, "/customers/42", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"status":404,"message":"Customer 42 not exists","internalCode":"ML-1101"}`, rr.Body.String())
}

func TestGetCustomer_AccessDenied(t *testing.T) {
	mockService := new(MockCustomerService)
	userPrincipal := customer.Principal{CustomerID: 1, Roles: []string{customer.RoleUser}}
	router := setupRouter(mockService, userPrincipal)

	mockService.On("GetCustomer", mock.Anything, userPrincipal, int64(2)).
		Return(nil, apperrors.NewAccessDenied())

	req := httptest.NewRequest(http.MethodGet, "/customers/2", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"status":403,"message":"Access denied","internalCode":"ML-1201"}`, rr.Body.String())
}

func TestGetCustomer_InvalidID(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	req := httptest.NewRequest(http.MethodGet, "/customers/abc", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body map[string]any
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ML-0002", body["internalCode"])
	mockService.AssertNotCalled(t, "GetCustomer")
}

func TestCreateCustomer_Success(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	input := customer.ProfileInput{Name: "Alice", Email: "alice@example.com", Password: "secret"}
	mockService.On("CreateCustomer", mock.Anything, input).
		Return(newTestCustomer(7, "Alice", "alice@example.com"), nil)

	payload := []byte(`{"name":"Alice","email":"alice@example.com","password":"secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/customers/7", rr.Header().Get("Location"))
	assert.Empty(t, rr.Body.String())
	mockService.AssertExpectations(t)
}

func TestCreateCustomer_ValidationErrorsAggregated(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	valErr := &apperrors.ValidationError{Violations: []apperrors.FieldViolation{
		{Field: "name", Message: "Name cannot be empty"},
		{Field: "email", Message: "Email must be a valid email address"},
		{Field: "password", Message: "Password cannot be empty"},
	}}
	mockService.On("CreateCustomer", mock.Anything, mock.Anything).Return(nil, valErr)

	payload := []byte(`{"name":"","email":"bad","password":""}`)
	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var body map[string]any
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Invalid Request", body["message"])
	assert.Equal(t, "ML-0001", body["internalCode"])
	assert.Len(t, body["errors"], 3)
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	valErr := &apperrors.ValidationError{Violations: []apperrors.FieldViolation{
		{Field: "email", Message: "Email already registered"},
	}}
	mockService.On("CreateCustomer", mock.Anything, mock.Anything).Return(nil, valErr)

	payload := []byte(`{"name":"Alice","email":"alice@example.com","password":"secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Email already registered")
}

func TestCreateCustomer_MalformedBody(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader([]byte(`{not json`)))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockService.AssertNotCalled(t, "CreateCustomer")
}

func TestCreateCustomer_UnknownFieldRejected(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	payload := []byte(`{"name":"Alice","email":"a@b.com","password":"x","role":"ADMIN"}`)
	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockService.AssertNotCalled(t, "CreateCustomer")
}

func TestUpdateCustomer_Success(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	input := customer.ProfileInput{Name: "Alice Smith", Email: "alice.smith@example.com", Password: "secret"}
	mockService.On("UpdateCustomer", mock.Anything, adminPrincipal, int64(5), input).Return(nil)

	payload := []byte(`{"name":"Alice Smith","email":"alice.smith@example.com","password":"secret"}`)
	req := httptest.NewRequest(http.MethodPut, "/customers/5", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	mockService.AssertExpectations(t)
}

func TestUpdateCustomer_NotFound(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	mockService.On("UpdateCustomer", mock.Anything, adminPrincipal, int64(123), mock.Anything).
		Return(apperrors.NewCustomerNotFound(123))

	payload := []byte(`{"name":"X","email":"x@example.com","password":"p"}`)
	req := httptest.NewRequest(http.MethodPut, "/customers/123", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Customer 123 not exists")
}

func TestDeleteCustomer_Success(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	mockService.On("DeactivateCustomer", mock.Anything, adminPrincipal, int64(5)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/customers/5", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	mockService.AssertExpectations(t)
}

func TestDeleteCustomer_Forbidden(t *testing.T) {
	mockService := new(MockCustomerService)
	userPrincipal := customer.Principal{CustomerID: 1, Roles: []string{customer.RoleUser}}
	router := setupRouter(mockService, userPrincipal)

	mockService.On("DeactivateCustomer", mock.Anything, userPrincipal, int64(5)).
		Return(apperrors.NewAccessDenied())

	req := httptest.NewRequest(http.MethodDelete, "/customers/5", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRespondError_UnexpectedErrorIsInternal(t *testing.T) {
	mockService := new(MockCustomerService)
	router := setupRouter(mockService, adminPrincipal)

	mockService.On("ListCustomers", mock.Anything, "").Return(nil, assert.AnError)

	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var body map[string]any
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ML-9999", body["internalCode"])
}
