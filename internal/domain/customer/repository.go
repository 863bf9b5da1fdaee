package customer

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("customer not found")

	ErrDuplicateEmail = errors.New("email already registered to another customer")
)

type CustomerRepository interface {
	// Save inserts the customer when CustomerID is zero and updates it
	// otherwise.
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	// FindAll returns customers in insertion order. A non-empty nameFilter
	// restricts the result to names containing it as a case-sensitive
	// substring.
	FindAll(ctx context.Context, nameFilter string) ([]*Customer, error)

	// ExistsByEmail reports whether any customer, active or inactive, holds
	// the given email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	UpdateStatus(ctx context.Context, customerID int64, status Status) error

	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
