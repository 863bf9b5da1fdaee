package customer

import "time"

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

type Customer struct {
	CustomerID   int64     `json:"customerId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Status       Status    `json:"status"`
	CreateDate   time.Time `json:"createDate"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewCustomer(name, email, passwordHash string) *Customer {
	now := time.Now()
	return &Customer{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Status:       StatusActive,
		CreateDate:   now,
		UpdatedAt:    now,
	}
}

// UpdateProfile changes name and email in place. CustomerID, Status and
// PasswordHash are never touched here.
func (c *Customer) UpdateProfile(name, email string) {
	if c.Name != name || c.Email != email {
		c.Name = name
		c.Email = email
		c.UpdatedAt = time.Now()
	}
}

// Deactivate is the soft-delete transition ACTIVE -> INACTIVE. The record is
// never physically removed.
func (c *Customer) Deactivate() {
	if c.Status == StatusActive {
		c.Status = StatusInactive
		c.UpdatedAt = time.Now()
	}
}

func (c *Customer) IsActive() bool {
	return c.Status == StatusActive
}
