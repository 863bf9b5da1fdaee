package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"customer-service/internal/api/handler/dto"
	"customer-service/internal/config"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"

	"github.com/golang-jwt/jwt/v5"
)

// AuthHandler issues bearer tokens for the API. Tokens carry the customer id
// as subject and a roles claim consumed by the auth middleware.
type AuthHandler struct {
	cfg    config.ServerConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthHandler(cfg config.ServerConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "AuthHandler")),
		now:    time.Now,
	}
}

// GenerateToken godoc
// @Summary Issue a bearer token
// @Description Returns a signed JWT for the given customer id and roles.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "Token subject"
// @Success 200 {object} map[string]string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) GenerateToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil || req.CustomerID <= 0 {
		h.respondError(w, r, http.StatusBadRequest, "invalid token request", apperrors.CodeInvalidArgument)
		return
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{customer.RoleUser}
	}

	token, err := h.generateBearerToken(req.CustomerID, roles)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to sign token", slog.Any("error", err))
		h.respondError(w, r, http.StatusInternalServerError, "An unexpected internal error occurred", apperrors.CodeInternalError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"token": token}); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.Any("error", err))
	}
}

func (h *AuthHandler) generateBearerToken(customerID int64, roles []string) (string, error) {
	issuedAt := h.now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(customerID, 10),
		"roles": roles,
		"iat":   issuedAt.Unix(),
		"exp":   issuedAt.Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.Auth.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (h *AuthHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := dto.ErrorResponse{Status: status, Message: message, InternalCode: code}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.Any("error", err))
	}
}
