package batch_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"customer-service/internal/batch"
	"customer-service/internal/domain/customer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	args := m.Called(ctx, cust)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if cust, ok := args.Get(0).(*customer.Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, nameFilter string) ([]*customer.Customer, error) {
	args := m.Called(ctx, nameFilter)
	if customers, ok := args.Get(0).([]*customer.Customer); ok {
		return customers, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) UpdateStatus(ctx context.Context, customerID int64, status customer.Status) error {
	args := m.Called(ctx, customerID, status)
	return args.Error(0)
}

func (m *MockCustomerRepository) CountByStatus(ctx context.Context) (map[customer.Status]int64, error) {
	args := m.Called(ctx)
	if counts, ok := args.Get(0).(map[customer.Status]int64); ok {
		return counts, args.Error(1)
	}
	return nil, args.Error(1)
}

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestCustomerStatsJob_Run(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	job := batch.NewCustomerStatsJob(mockRepo, logger)

	counts := map[customer.Status]int64{
		customer.StatusActive:   12,
		customer.StatusInactive: 3,
	}
	mockRepo.On("CountByStatus", mock.Anything).Return(counts, nil).Once()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := job.Run(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCustomerStatsJob_Run_MissingStatusDefaultsToZero(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	job := batch.NewCustomerStatsJob(mockRepo, logger)

	counts := map[customer.Status]int64{customer.StatusActive: 5}
	mockRepo.On("CountByStatus", mock.Anything).Return(counts, nil).Once()

	err := job.Run(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCustomerStatsJob_Run_RepositoryError(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	job := batch.NewCustomerStatsJob(mockRepo, logger)

	mockRepo.On("CountByStatus", mock.Anything).Return(nil, assert.AnError).Once()

	err := job.Run(context.Background())

	assert.Error(t, err)
	assert.ErrorContains(t, err, "failed to count customers")
	mockRepo.AssertExpectations(t)
}

func TestNewCustomerStatsJob_NilDependenciesPanics(t *testing.T) {
	assert.Panics(t, func() { batch.NewCustomerStatsJob(nil, logger) })
	assert.Panics(t, func() { batch.NewCustomerStatsJob(new(MockCustomerRepository), nil) })
}
