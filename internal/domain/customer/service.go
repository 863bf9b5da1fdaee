package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"customer-service/internal/event"
	"customer-service/internal/pkg/apperrors"

	"golang.org/x/crypto/bcrypt"
)

const customerNotFoundMsg = "Customer not found by repository"

type CustomerService interface {
	// ListCustomers returns customers in insertion order, optionally
	// restricted to names containing nameFilter.
	ListCustomers(ctx context.Context, nameFilter string) ([]*Customer, error)

	// GetCustomer returns the customer when it exists and the principal is
	// either its owner or an admin.
	GetCustomer(ctx context.Context, principal Principal, customerID int64) (*Customer, error)

	CreateCustomer(ctx context.Context, input ProfileInput) (*Customer, error)

	// UpdateCustomer replaces name and email of an existing customer.
	// Admin only. Status and id are left untouched.
	UpdateCustomer(ctx context.Context, principal Principal, customerID int64, input ProfileInput) error

	// DeactivateCustomer soft-deletes: the status flips to INACTIVE and the
	// record stays retrievable. Admin only.
	DeactivateCustomer(ctx context.Context, principal Principal, customerID int64) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.Publisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, publisher event.Publisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	return &customerService{
		repo:   repo,
		pub:    publisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func newEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID: cust.CustomerID,
		Name:       cust.Name,
		Email:      cust.Email,
		Status:     string(cust.Status),
		CreateDate: cust.CreateDate,
		UpdatedAt:  cust.UpdatedAt,
	}
}

func (s *customerService) ListCustomers(ctx context.Context, nameFilter string) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to list customers", slog.String("nameFilter", nameFilter))

	customers, err := s.repo.FindAll(ctx, nameFilter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) GetCustomer(ctx context.Context, principal Principal, customerID int64) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by ID", slog.Int64("customerID", customerID))

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFoundMsg, slog.Int64("customerID", customerID))
			return nil, apperrors.NewCustomerNotFound(customerID)
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	if err := Authorize(principal, OpGet, cust.CustomerID); err != nil {
		s.logger.WarnContext(ctx, "Access denied for get customer",
			slog.Int64("principalID", principal.CustomerID),
			slog.Int64("customerID", customerID))
		return nil, err
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customer", slog.Int64("customerID", customerID))
	return cust, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, input ProfileInput) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	violations := ValidateProfile(input)
	violations, err := s.appendUniquenessViolation(ctx, violations, input.Email)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		s.logger.WarnContext(ctx, "Validation failed for create customer", slog.Int("violations", len(violations)))
		return nil, apperrors.NewValidationError(violations)
	}
	s.logger.InfoContext(ctx, "Input validation passed")

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	cust := NewCustomer(input.Name, input.Email, string(hash))

	s.logger.InfoContext(ctx, "Calling repository Save")
	if err := s.repo.Save(ctx, cust); err != nil {
		// The unique index may still reject the email when a concurrent
		// create won the race.
		if errors.Is(err, ErrDuplicateEmail) {
			s.logger.WarnContext(ctx, "Duplicate email conflict detected during save", slog.String("email", input.Email))
			return nil, apperrors.NewValidationError([]apperrors.FieldViolation{
				{Field: "email", Message: msgEmailRegistered},
			})
		}
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully saved new customer, publishing creation event",
		slog.Int64("customerID", cust.CustomerID))
	createdEvent := event.CustomerCreatedEvent{
		Timestamp: time.Now(),
		Payload:   newEventPayload(cust),
	}
	if pubErr := s.pub.PublishCustomerCreated(ctx, createdEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Successfully created new customer", slog.Int64("customerID", cust.CustomerID))
	return cust, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, principal Principal, customerID int64, input ProfileInput) error {
	s.logger.InfoContext(ctx, "Attempting to update customer", slog.Int64("customerID", customerID))

	// Existence takes priority: a missing customer is reported as 404 even
	// when the request body is invalid or the caller lacks the role.
	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFoundMsg, slog.Int64("customerID", customerID))
			return apperrors.NewCustomerNotFound(customerID)
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer for update", slog.Any("error", err))
		return fmt.Errorf("cannot find customer %d to update: %w", customerID, err)
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	violations := ValidateProfile(input)
	// A customer keeps the right to its own current email, so uniqueness is
	// only re-checked when the email actually changes.
	if input.Email != cust.Email {
		violations, err = s.appendUniquenessViolation(ctx, violations, input.Email)
		if err != nil {
			return err
		}
	}
	if len(violations) > 0 {
		s.logger.WarnContext(ctx, "Validation failed for update customer", slog.Int("violations", len(violations)))
		return apperrors.NewValidationError(violations)
	}
	s.logger.InfoContext(ctx, "Input validation passed")

	if err := Authorize(principal, OpUpdate, cust.CustomerID); err != nil {
		s.logger.WarnContext(ctx, "Access denied for update customer",
			slog.Int64("principalID", principal.CustomerID),
			slog.Int64("customerID", customerID))
		return err
	}

	cust.UpdateProfile(input.Name, input.Email)

	s.logger.InfoContext(ctx, "Calling repository Save to persist profile change")
	if err := s.repo.Save(ctx, cust); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			s.logger.WarnContext(ctx, "Duplicate email conflict detected during save", slog.String("email", input.Email))
			return apperrors.NewValidationError([]apperrors.FieldViolation{
				{Field: "email", Message: msgEmailRegistered},
			})
		}
		if errors.Is(err, ErrNotFound) {
			s.logger.ErrorContext(ctx, "Customer disappeared before save completed")
			return apperrors.NewCustomerNotFound(customerID)
		}
		s.logger.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))
		return fmt.Errorf("failed to save updated customer %d: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "Successfully updated customer, publishing update event")
	updatedEvent := event.CustomerUpdatedEvent{
		Timestamp: time.Now(),
		Payload:   newEventPayload(cust),
	}
	if pubErr := s.pub.PublishCustomerUpdated(ctx, updatedEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer updated, but FAILED to publish update event", slog.Any("error", pubErr))
	}

	return nil
}

func (s *customerService) DeactivateCustomer(ctx context.Context, principal Principal, customerID int64) error {
	s.logger.InfoContext(ctx, "Attempting to deactivate customer", slog.Int64("customerID", customerID))

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFoundMsg, slog.Int64("customerID", customerID))
			return apperrors.NewCustomerNotFound(customerID)
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer for deactivation", slog.Any("error", err))
		return fmt.Errorf("cannot find customer %d to deactivate: %w", customerID, err)
	}

	if err := Authorize(principal, OpDelete, cust.CustomerID); err != nil {
		s.logger.WarnContext(ctx, "Access denied for deactivate customer",
			slog.Int64("principalID", principal.CustomerID),
			slog.Int64("customerID", customerID))
		return err
	}

	cust.Deactivate()

	s.logger.InfoContext(ctx, "Calling repository UpdateStatus", slog.String("status", string(cust.Status)))
	if err := s.repo.UpdateStatus(ctx, customerID, cust.Status); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.ErrorContext(ctx, "Customer disappeared before status update completed")
			return apperrors.NewCustomerNotFound(customerID)
		}
		s.logger.ErrorContext(ctx, "Repository error deactivating customer", slog.Any("error", err))
		return fmt.Errorf("failed to deactivate customer %d: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "Successfully deactivated customer, publishing event")
	deactivatedEvent := event.CustomerDeactivatedEvent{
		Timestamp: time.Now(),
		Payload:   newEventPayload(cust),
	}
	if pubErr := s.pub.PublishCustomerDeactivated(ctx, deactivatedEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer deactivated, but FAILED to publish event", slog.Any("error", pubErr))
	}

	return nil
}

// appendUniquenessViolation consults the repository and, when the email is
// already taken, adds the fixed uniqueness violation to the list. The check
// runs across active and inactive customers alike.
func (s *customerService) appendUniquenessViolation(ctx context.Context, violations []apperrors.FieldViolation, email string) ([]apperrors.FieldViolation, error) {
	if email == "" {
		return violations, nil
	}
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error checking email uniqueness", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if exists {
		violations = append(violations, apperrors.FieldViolation{Field: "email", Message: msgEmailRegistered})
	}
	return violations, nil
}
